package change

import "errors"

// Errors returned by change operations. All indicate violated caller
// preconditions; nothing here is retried or silently coerced.
var (
	// ErrLengthMismatch indicates two changes (or a change and a
	// document) whose lengths do not line up.
	ErrLengthMismatch = errors.New("length mismatch")

	// ErrPosOutOfRange indicates a position outside the document a
	// change applies to.
	ErrPosOutOfRange = errors.New("position out of range")

	// ErrInvalidSpec indicates an edit spec with inverted or
	// out-of-range offsets.
	ErrInvalidSpec = errors.New("invalid edit spec")

	// ErrOverlappingEdits indicates edit specs whose ranges overlap.
	ErrOverlappingEdits = errors.New("overlapping edits")

	// ErrMalformedChange indicates unparseable change notation or
	// serialized form.
	ErrMalformedChange = errors.New("malformed change")
)
