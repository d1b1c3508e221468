package rope

import (
	"fmt"
	"math"
)

// Tuning holds the structural size constants of a rope. The zero value
// is not usable; start from DefaultTuning. A Tuning is fixed at
// construction time and inherited by every rope derived from an edit.
type Tuning struct {
	// MinChunk is the minimum bytes per chunk (except the last chunk
	// of a build, which may be shorter).
	MinChunk int

	// MaxChunk is the maximum bytes per chunk before splitting.
	MaxChunk int

	// MaxChunksPerLeaf is the maximum chunks stored in one leaf node.
	MaxChunksPerLeaf int

	// MaxChildren is the maximum fan-out of an internal node.
	MaxChildren int
}

// DefaultTuning returns the tuning used when none is supplied.
func DefaultTuning() Tuning {
	return Tuning{
		MinChunk:         128,
		MaxChunk:         256,
		MaxChunksPerLeaf: 4,
		MaxChildren:      8,
	}
}

var defaultTuning = DefaultTuning()

// targetChunk is the preferred chunk size when splitting text.
func (t *Tuning) targetChunk() int {
	return (t.MinChunk + t.MaxChunk) / 2
}

// Validate reports whether the tuning is structurally usable.
func (t Tuning) Validate() error {
	if t.MinChunk < 8 || t.MaxChunk < t.MinChunk {
		return fmt.Errorf("%w: chunk bounds %d..%d", ErrInvalidTuning, t.MinChunk, t.MaxChunk)
	}
	// Per-chunk newline positions are stored as uint16.
	if t.MaxChunk > math.MaxUint16 {
		return fmt.Errorf("%w: max chunk %d exceeds %d", ErrInvalidTuning, t.MaxChunk, math.MaxUint16)
	}
	if t.MaxChunksPerLeaf < 1 {
		return fmt.Errorf("%w: max chunks per leaf %d", ErrInvalidTuning, t.MaxChunksPerLeaf)
	}
	if t.MaxChildren < 2 {
		return fmt.Errorf("%w: max children %d", ErrInvalidTuning, t.MaxChildren)
	}
	return nil
}

// Option configures rope construction. Options that produce a tuning
// rejected by Validate cause construction to panic; tunings from
// untrusted input should go through Validate first.
type Option func(*Tuning)

// WithTuning replaces the full tuning.
func WithTuning(t Tuning) Option {
	return func(dst *Tuning) { *dst = t }
}

// WithChunkBounds overrides the chunk size bounds.
func WithChunkBounds(minChunk, maxChunk int) Option {
	return func(dst *Tuning) {
		dst.MinChunk = minChunk
		dst.MaxChunk = maxChunk
	}
}

// WithFanOut overrides the leaf and branch fan-out limits.
func WithFanOut(maxChunksPerLeaf, maxChildren int) Option {
	return func(dst *Tuning) {
		dst.MaxChunksPerLeaf = maxChunksPerLeaf
		dst.MaxChildren = maxChildren
	}
}

func applyOptions(opts []Option) *Tuning {
	if len(opts) == 0 {
		return &defaultTuning
	}
	t := DefaultTuning()
	for _, opt := range opts {
		opt(&t)
	}
	if err := t.Validate(); err != nil {
		panic(err)
	}
	return &t
}
