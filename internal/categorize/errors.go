package categorize

import "errors"

var (
	// ErrInvalidConfig is returned when thresholds or weights are out of range.
	ErrInvalidConfig = errors.New("invalid matcher config")
	// ErrInvalidInput is returned for category definitions the matcher cannot use.
	ErrInvalidInput = errors.New("invalid category definition")
)
