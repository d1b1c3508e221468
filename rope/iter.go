package rope

import (
	"fmt"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// chunkIterFrame is one level of the explicit traversal stack.
type chunkIterFrame struct {
	node     *node
	childIdx int
	chunkIdx int
	offset   ByteOffset // absolute offset at the start of this node
}

// ChunkIterator walks every chunk of a rope in order.
type ChunkIterator struct {
	rope       Rope
	stack      []chunkIterFrame
	started    bool
	chunk      Chunk
	chunkStart ByteOffset
}

// Chunks returns an iterator over all chunks in the rope.
func (r Rope) Chunks() *ChunkIterator {
	return &ChunkIterator{
		rope:  r,
		stack: make([]chunkIterFrame, 0, 16),
	}
}

// Next advances to the next chunk, reporting whether one exists.
func (it *ChunkIterator) Next() bool {
	if !it.started {
		it.started = true
		if it.rope.root == nil {
			return false
		}
		it.stack = append(it.stack, chunkIterFrame{node: it.rope.root})
		return it.findNext()
	}
	if len(it.stack) > 0 {
		frame := &it.stack[len(it.stack)-1]
		if frame.node.isLeaf() {
			frame.chunkIdx++
		}
	}
	return it.findNext()
}

func (it *ChunkIterator) findNext() bool {
	for len(it.stack) > 0 {
		frame := &it.stack[len(it.stack)-1]
		n := frame.node

		if n.isLeaf() {
			if frame.chunkIdx < len(n.chunks) {
				start := frame.offset
				for i := 0; i < frame.chunkIdx; i++ {
					start += ByteOffset(n.chunks[i].Len())
				}
				it.chunk = n.chunks[frame.chunkIdx]
				it.chunkStart = start
				return true
			}
			it.pop()
			continue
		}

		if frame.childIdx < len(n.children) {
			childOffset := frame.offset
			for i := 0; i < frame.childIdx; i++ {
				childOffset += n.childSummaries[i].Bytes
			}
			it.stack = append(it.stack, chunkIterFrame{
				node:   n.children[frame.childIdx],
				offset: childOffset,
			})
			continue
		}
		it.pop()
	}
	return false
}

func (it *ChunkIterator) pop() {
	it.stack = it.stack[:len(it.stack)-1]
	if len(it.stack) > 0 {
		it.stack[len(it.stack)-1].childIdx++
	}
}

// Chunk returns the current chunk.
func (it *ChunkIterator) Chunk() Chunk {
	return it.chunk
}

// Offset returns the byte offset where the current chunk starts.
func (it *ChunkIterator) Offset() ByteOffset {
	return it.chunkStart
}

// RangeIter yields the text of a byte range piece by piece without
// materializing it. Each piece lies within one chunk.
type RangeIter struct {
	rope Rope
	next ByteOffset
	to   ByteOffset
	text string
}

// Iter iterates the full document.
func (r Rope) Iter() *RangeIter {
	return &RangeIter{rope: r, next: 0, to: r.Len()}
}

// IterRange iterates the text in [from, to).
func (r Rope) IterRange(from, to ByteOffset) (*RangeIter, error) {
	if err := r.checkRange(from, to); err != nil {
		return nil, err
	}
	return &RangeIter{rope: r, next: from, to: to}, nil
}

// Next advances to the next piece, reporting whether one exists.
func (it *RangeIter) Next() bool {
	if it.next >= it.to || it.rope.root == nil {
		it.text = ""
		return false
	}
	n := it.rope.root
	off := it.next
	for !n.isLeaf() {
		i, childOff := n.findChildByOffset(off)
		n = n.children[i]
		off = childOff
	}
	for _, c := range n.chunks {
		clen := ByteOffset(c.Len())
		if off < clen {
			end := min(clen, off+(it.to-it.next))
			it.text = c.String()[off:end]
			it.next += end - off
			return true
		}
		off -= clen
	}
	it.text = ""
	return false
}

// Text returns the current piece.
func (it *RangeIter) Text() string {
	return it.text
}

// Pos returns the offset just past the current piece.
func (it *RangeIter) Pos() ByteOffset {
	return it.next
}

// Skip advances the iterator by n bytes without yielding the skipped
// text. Skipping past the end clamps; subsequent Next calls yield
// empty output rather than failing.
func (it *RangeIter) Skip(n ByteOffset) {
	if n <= 0 {
		return
	}
	it.next += n
	if it.next > it.to {
		it.next = it.to
	}
}

// String materializes the remainder of the range, for diagnostics.
func (it *RangeIter) String() string {
	return fmt.Sprintf("rope.RangeIter(%d..%d)", it.next, it.to)
}

// LineIterator iterates over the lines of a rope.
type LineIterator struct {
	rope    Rope
	lineNum uint32
	line    Line
	text    string
	started bool
	done    bool
}

// LineIter returns an iterator over all lines.
func (r Rope) LineIter() *LineIterator {
	return &LineIterator{rope: r}
}

// Next advances to the next line, reporting whether one exists.
func (it *LineIterator) Next() bool {
	if it.done {
		return false
	}
	if !it.started {
		it.started = true
	} else {
		it.lineNum++
		if it.lineNum >= it.rope.Lines() {
			it.done = true
			return false
		}
	}
	line, err := it.rope.Line(it.lineNum)
	if err != nil {
		it.done = true
		return false
	}
	it.line = line
	it.text, _ = it.rope.Slice(line.From, line.To)
	if it.rope.IsEmpty() {
		it.done = true
	}
	return true
}

// Text returns the current line's text without its newline.
func (it *LineIterator) Text() string {
	return it.text
}

// Line returns the current line bounds.
func (it *LineIterator) Line() Line {
	return it.line
}

// RuneIterator iterates over the runes of a rope.
type RuneIterator struct {
	it      *RangeIter
	buf     string
	offset  ByteOffset
	current rune
	size    int
}

// Runes returns an iterator over all runes.
func (r Rope) Runes() *RuneIterator {
	return &RuneIterator{it: r.Iter()}
}

// Next advances to the next rune, reporting whether one exists.
func (it *RuneIterator) Next() bool {
	it.offset += ByteOffset(it.size)
	if len(it.buf) == 0 {
		if !it.it.Next() {
			return false
		}
		it.buf = it.it.Text()
	}
	it.current, it.size = utf8.DecodeRuneInString(it.buf)
	it.buf = it.buf[it.size:]
	return it.size > 0
}

// Rune returns the current rune.
func (it *RuneIterator) Rune() rune {
	return it.current
}

// Size returns the byte size of the current rune.
func (it *RuneIterator) Size() int {
	return it.size
}

// Offset returns the byte offset of the current rune.
func (it *RuneIterator) Offset() ByteOffset {
	return it.offset
}

// ReverseRuneIterator iterates runes from the end toward the start.
type ReverseRuneIterator struct {
	rope    Rope
	offset  ByteOffset
	current rune
	size    int
}

// ReverseRunes returns a backward rune iterator.
func (r Rope) ReverseRunes() *ReverseRuneIterator {
	return &ReverseRuneIterator{rope: r, offset: r.Len()}
}

// Next moves to the previous rune, reporting whether one exists.
func (it *ReverseRuneIterator) Next() bool {
	if it.offset == 0 {
		return false
	}
	it.offset--
	for it.offset > 0 {
		b, ok := it.rope.ByteAt(it.offset)
		if !ok || isUTF8Start(b) {
			break
		}
		it.offset--
	}
	end := min(it.offset+utf8.UTFMax, it.rope.Len())
	text, err := it.rope.Slice(it.offset, end)
	if err != nil {
		return false
	}
	it.current, it.size = utf8.DecodeRuneInString(text)
	return it.size > 0
}

// Rune returns the current rune.
func (it *ReverseRuneIterator) Rune() rune {
	return it.current
}

// Offset returns the byte offset of the current rune.
func (it *ReverseRuneIterator) Offset() ByteOffset {
	return it.offset
}

// graphemeLookahead is how many bytes the grapheme iterator keeps
// buffered so a cluster spanning a chunk boundary decodes whole.
const graphemeLookahead = 256

// GraphemeIterator iterates over grapheme clusters.
type GraphemeIterator struct {
	it      *RangeIter
	buf     string
	cluster string
	offset  ByteOffset
	next    ByteOffset
	state   int
}

// Graphemes returns an iterator over the rope's grapheme clusters.
func (r Rope) Graphemes() *GraphemeIterator {
	return &GraphemeIterator{it: r.Iter(), state: -1}
}

// Next advances to the next cluster, reporting whether one exists.
func (g *GraphemeIterator) Next() bool {
	for len(g.buf) < graphemeLookahead {
		if !g.it.Next() {
			break
		}
		g.buf += g.it.Text()
	}
	if len(g.buf) == 0 {
		return false
	}
	g.offset = g.next
	g.cluster, g.buf, _, g.state = uniseg.FirstGraphemeClusterInString(g.buf, g.state)
	g.next += ByteOffset(len(g.cluster))
	return len(g.cluster) > 0
}

// Cluster returns the current grapheme cluster.
func (g *GraphemeIterator) Cluster() string {
	return g.cluster
}

// Offset returns the byte offset where the current cluster starts.
func (g *GraphemeIterator) Offset() ByteOffset {
	return g.offset
}
