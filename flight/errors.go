package flight

import "errors"

// Sentinel errors for service construction and serving.
var (
	ErrNilStore     = errors.New("flight: store is nil")
	ErrNilService   = errors.New("flight: service is nil")
	ErrNilFormatter = errors.New("flight: formatter is nil")
	ErrNilRender    = errors.New("flight: render func is nil")
	ErrNilOutput    = errors.New("flight: output is nil")

	// ErrSetFailed marks a cache write that failed after a successful
	// render. Serve still returns the rendered fragment alongside it; the
	// value was simply not cached.
	ErrSetFailed = errors.New("flight: store set failed")
)
