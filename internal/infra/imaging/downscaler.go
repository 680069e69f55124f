package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"ramadan-timetable-bot/internal/domain"
	"ramadan-timetable-bot/internal/domain/ports/adapter"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// MaxPixels bounds width*height of an upload before it is decoded.
const MaxPixels = 40_000_000

// Compile-time check
var _ adapter.ImagePreparer = (*Downscaler)(nil)

// Downscaler shrinks uploads so the longest side fits MaxSide and re-encodes them as JPEG.
type Downscaler struct {
	MaxSide   int
	MaxPixels int
	Quality   int
}

func NewDownscaler(maxSide int) *Downscaler {
	return &Downscaler{MaxSide: maxSide, MaxPixels: MaxPixels, Quality: 90}
}

func (d *Downscaler) Prepare(img adapter.Image) (adapter.Image, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		return img, fmt.Errorf("decode image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 ||
		(d.MaxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > int64(d.MaxPixels)) {
		return img, fmt.Errorf("%w: image is %dx%d pixels", domain.ErrUnsupportedMedia, cfg.Width, cfg.Height)
	}

	src, format, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return img, fmt.Errorf("decode image: %w", err)
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if d.MaxSide <= 0 || longest <= d.MaxSide {
		if format == "jpeg" || format == "png" {
			return img, nil
		}
		// webp and friends are not accepted by every provider
		dst := whiteCanvas(w, h)
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
		return d.encode(dst)
	}

	scale := float64(d.MaxSide) / float64(longest)
	nw, nh := int(float64(w)*scale), int(float64(h)*scale)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	dst := whiteCanvas(nw, nh)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return d.encode(dst)
}

// whiteCanvas is the backdrop for transparent sources, since JPEG has no alpha.
func whiteCanvas(w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	return dst
}

func (d *Downscaler) encode(m image.Image) (adapter.Image, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, m, &jpeg.Options{Quality: d.Quality}); err != nil {
		return adapter.Image{}, fmt.Errorf("encode jpeg: %w", err)
	}
	return adapter.Image{Data: buf.Bytes(), MIMEType: "image/jpeg"}, nil
}
