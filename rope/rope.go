package rope

import (
	"fmt"
	"io"
	"strings"
)

// Rope is an immutable rope over UTF-8 text. Operations return new
// Rope values; the original is never modified. Edited ropes share all
// untouched subtrees with the rope they were derived from.
type Rope struct {
	root *node
	tun  *Tuning
}

// New creates an empty rope.
func New(opts ...Option) Rope {
	return Rope{root: newLeaf(), tun: applyOptions(opts)}
}

// FromString creates a rope from a string.
func FromString(s string, opts ...Option) Rope {
	tun := applyOptions(opts)
	if len(s) == 0 {
		return Rope{root: newLeaf(), tun: tun}
	}
	return Rope{root: buildFromChunkList(splitText(s, tun), tun), tun: tun}
}

// FromReader creates a rope by consuming an io.Reader.
func FromReader(r io.Reader, opts ...Option) (Rope, error) {
	b := NewBuilder(opts...)
	if _, err := b.ReadFrom(r); err != nil {
		return Rope{}, err
	}
	return b.Build(), nil
}

// FromLines creates a rope from lines, joined with '\n'.
func FromLines(lines []string, opts ...Option) Rope {
	b := NewBuilder(opts...)
	for i, line := range lines {
		b.WriteString(line)
		if i < len(lines)-1 {
			b.WriteString("\n")
		}
	}
	return b.Build()
}

// Repeat creates a rope holding s repeated n times.
func Repeat(s string, n int, opts ...Option) Rope {
	if n <= 0 || len(s) == 0 {
		return New(opts...)
	}
	b := NewBuilder(opts...)
	for i := 0; i < n; i++ {
		b.WriteString(s)
	}
	return b.Build()
}

func (r Rope) tuning() *Tuning {
	if r.tun == nil {
		return &defaultTuning
	}
	return r.tun
}

// Tuning returns the structural tuning this rope was built with, so
// derived ropes can be constructed with matching chunk geometry.
func (r Rope) Tuning() Tuning {
	return *r.tuning()
}

// Len returns the total byte length.
func (r Rope) Len() ByteOffset {
	if r.root == nil {
		return 0
	}
	return r.root.length()
}

// Lines returns the number of lines (newlines + 1).
func (r Rope) Lines() uint32 {
	if r.root == nil {
		return 1
	}
	return r.root.summary.Lines + 1
}

// IsEmpty reports whether the rope holds no text.
func (r Rope) IsEmpty() bool {
	return r.Len() == 0
}

// String materializes the full text. Use sparingly for large ropes.
func (r Rope) String() string {
	if r.root == nil {
		return ""
	}
	var sb strings.Builder
	sb.Grow(int(r.Len()))
	r.root.appendTo(&sb)
	return sb.String()
}

// Summary returns the aggregated metrics for the whole rope.
func (r Rope) Summary() TextSummary {
	if r.root == nil {
		return TextSummary{Flags: FlagASCII}
	}
	return r.root.summary
}

func (r Rope) checkRange(from, to ByteOffset) error {
	if from > to {
		return fmt.Errorf("%w: %d > %d", ErrRangeInvalid, from, to)
	}
	if from < 0 || to > r.Len() {
		return fmt.Errorf("%w: [%d, %d) in document of length %d", ErrOffsetOutOfRange, from, to, r.Len())
	}
	return nil
}

// Slice returns the text in [from, to). Inverted or out-of-range
// offsets are rejected, never clamped.
func (r Rope) Slice(from, to ByteOffset) (string, error) {
	if err := r.checkRange(from, to); err != nil {
		return "", err
	}
	if r.root == nil || from == to {
		return "", nil
	}
	var sb strings.Builder
	sb.Grow(int(to - from))
	r.root.appendRange(&sb, from, to)
	return sb.String(), nil
}

// ByteAt returns the byte at offset, or false when out of range.
func (r Rope) ByteAt(offset ByteOffset) (byte, bool) {
	if r.root == nil || offset < 0 || offset >= r.Len() {
		return 0, false
	}
	n := r.root
	for !n.isLeaf() {
		idx, childOffset := n.findChildByOffset(offset)
		n = n.children[idx]
		offset = childOffset
	}
	for _, c := range n.chunks {
		clen := ByteOffset(c.Len())
		if offset < clen {
			return c.String()[offset], true
		}
		offset -= clen
	}
	return 0, false
}

// Replace substitutes [from, to) with text, returning a new rope.
//
// An edit wholly contained in one child rebuilds only that child's
// spine and shares every sibling; edits that straddle child boundaries
// decompose the boundary nodes at the cut points and rebalance.
func (r Rope) Replace(from, to ByteOffset, text string) (Rope, error) {
	if err := r.checkRange(from, to); err != nil {
		return Rope{}, err
	}
	if from == to && len(text) == 0 {
		return r, nil
	}

	tun := r.tuning()
	if r.root == nil || r.Len() == 0 {
		return FromString(text, WithTuning(*tun)), nil
	}
	newRoot := r.root.replace(from, to, splitText(text, tun), tun)
	return Rope{root: newRoot, tun: r.tun}, nil
}

// Insert inserts text at offset, returning a new rope.
func (r Rope) Insert(offset ByteOffset, text string) (Rope, error) {
	return r.Replace(offset, offset, text)
}

// Delete removes [from, to), returning a new rope.
func (r Rope) Delete(from, to ByteOffset) (Rope, error) {
	return r.Replace(from, to, "")
}

// Split divides the rope at offset: left holds [0, offset), right
// holds [offset, end).
func (r Rope) Split(offset ByteOffset) (Rope, Rope, error) {
	if offset < 0 || offset > r.Len() {
		return Rope{}, Rope{}, fmt.Errorf("%w: split at %d in document of length %d", ErrOffsetOutOfRange, offset, r.Len())
	}
	if r.root == nil {
		return New(WithTuning(*r.tuning())), New(WithTuning(*r.tuning())), nil
	}
	left, right := r.root.split(offset, r.tuning())
	return Rope{root: left, tun: r.tun}, Rope{root: right, tun: r.tun}, nil
}

// Concat joins two ropes. The receiver's tuning wins.
func (r Rope) Concat(other Rope) Rope {
	if r.root == nil || r.Len() == 0 {
		return Rope{root: other.root, tun: r.tun}
	}
	if other.root == nil || other.Len() == 0 {
		return r
	}
	return Rope{root: concatNodes(r.root, other.root, r.tuning()), tun: r.tun}
}

// Eq reports whether two ropes hold the same text. Identical roots
// short-circuit; otherwise content is compared chunk by chunk without
// materializing either rope, tolerating different chunk boundaries and
// exiting on the first mismatch.
func (r Rope) Eq(other Rope) bool {
	if r.root == other.root {
		return true
	}
	if r.Len() != other.Len() {
		return false
	}

	a, b := r.Chunks(), other.Chunks()
	var sa, sb string
	for {
		if len(sa) == 0 {
			if !a.Next() {
				return len(sb) == 0 && !b.Next()
			}
			sa = a.Chunk().String()
		}
		if len(sb) == 0 {
			if !b.Next() {
				return false
			}
			sb = b.Chunk().String()
		}
		n := min(len(sa), len(sb))
		if sa[:n] != sb[:n] {
			return false
		}
		sa, sb = sa[n:], sb[n:]
	}
}

// Height returns the number of node levels, for balance diagnostics.
func (r Rope) Height() int {
	if r.root == nil {
		return 0
	}
	return int(r.root.height) + 1
}

// ChunkCount returns the number of chunks in the rope.
func (r Rope) ChunkCount() int {
	if r.root == nil {
		return 0
	}
	return countChunks(r.root)
}

func countChunks(n *node) int {
	if n.isLeaf() {
		return len(n.chunks)
	}
	count := 0
	for _, child := range n.children {
		count += countChunks(child)
	}
	return count
}

// OffsetToPoint converts a byte offset to a line/column position.
// Offsets past the end report the final position.
func (r Rope) OffsetToPoint(offset ByteOffset) Point {
	if r.root == nil || offset <= 0 {
		return Point{}
	}
	if offset >= r.Len() {
		lastLine := r.Lines() - 1
		start, _ := r.LineStart(lastLine)
		return Point{Line: lastLine, Column: uint32(r.Len() - start)}
	}
	c := NewCursor(r)
	c.SeekOffset(offset)
	return c.Point()
}

// PointToOffset converts a line/column position to a byte offset,
// clamping the column to the line length.
func (r Rope) PointToOffset(p Point) ByteOffset {
	if r.root == nil {
		return 0
	}
	if p.Line >= r.Lines() {
		return r.Len()
	}
	start, _ := r.LineStart(p.Line)
	end, _ := r.LineEnd(p.Line)
	if ByteOffset(p.Column) >= end-start {
		return end
	}
	return start + ByteOffset(p.Column)
}
