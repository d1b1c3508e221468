package rope

import "errors"

// Errors returned by rope operations. Out-of-range offsets and invalid
// line numbers are programmer errors and are never silently clamped.
var (
	// ErrOffsetOutOfRange indicates an offset outside [0, Len()].
	ErrOffsetOutOfRange = errors.New("offset out of range")

	// ErrRangeInvalid indicates an inverted range (to < from).
	ErrRangeInvalid = errors.New("invalid range")

	// ErrLineOutOfRange indicates a line number past the last line.
	ErrLineOutOfRange = errors.New("line out of range")

	// ErrInvalidTuning indicates structurally unusable tuning values.
	ErrInvalidTuning = errors.New("invalid tuning")
)
