package domain

import "errors"

var (
	// Pipeline error kinds. Wrap them with fmt.Errorf("%w: ...") and test with errors.Is.
	ErrConfiguration   = errors.New("configuration error")
	ErrExtraction      = errors.New("timetable extraction failed")
	ErrMappingNotFound = errors.New("time slot not found in mapping table")
	ErrRender          = errors.New("timetable rendering failed")

	// Frontend-level errors
	ErrRateLimited      = errors.New("rate limit exceeded")
	ErrBusy             = errors.New("too many conversions in progress")
	ErrUnsupportedMedia = errors.New("unsupported media")
	ErrNothingConverted = errors.New("no entry could be converted")
	ErrInvalidArgument  = errors.New("invalid argument")
)
