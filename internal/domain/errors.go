package domain

import "errors"

// Sentinel errors for the transform and driver layers.
var (
	// ErrInvalidDimensions is returned when a source has non-positive
	// dimensions, pixel size is below 1, or the working buffer would
	// collapse to zero area in either axis.
	ErrInvalidDimensions = errors.New("invalid dimensions")

	// ErrDegenerateContrast is returned for the contrast value whose
	// correction factor divides by zero.
	ErrDegenerateContrast = errors.New("degenerate contrast value")

	// ErrSourceUnavailable is returned when source media fails to decode or load.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrEncodingUnsupported is returned when no video container in the
	// preference chain accepts the requested export parameters.
	ErrEncodingUnsupported = errors.New("encoding unsupported")
)
