package adapter

// ImagePreparer normalises an upload before it is sent to a vision model.
type ImagePreparer interface {
	Prepare(img Image) (Image, error)
}
