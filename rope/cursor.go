package rope

import "unicode/utf8"

// Cursor walks a rope through an explicit stack of (node, child index)
// frames, giving O(log n) seeks and O(1) local movement without any
// recursion.
type Cursor struct {
	rope     Rope
	path     []cursorFrame
	offset   ByteOffset
	point    Point
	pointSet bool

	leafNode *node
	chunkIdx int
	chunkOff int
}

type cursorFrame struct {
	node     *node
	childIdx int
	offset   ByteOffset // absolute offset at the start of this node
	line     uint32     // line number at the start of this node
}

// NewCursor creates a cursor at the start of the rope.
func NewCursor(r Rope) *Cursor {
	c := &Cursor{
		rope: r,
		path: make([]cursorFrame, 0, 16),
	}
	c.seekToStart()
	return c
}

func (c *Cursor) seekToStart() {
	c.path = c.path[:0]
	c.offset = 0
	c.point = Point{}
	c.pointSet = true

	if c.rope.root == nil {
		c.leafNode = nil
		return
	}
	n := c.rope.root
	for !n.isLeaf() {
		c.path = append(c.path, cursorFrame{node: n})
		n = n.children[0]
	}
	c.leafNode = n
	c.chunkIdx = 0
	c.chunkOff = 0
}

// Offset returns the current byte offset.
func (c *Cursor) Offset() ByteOffset {
	return c.offset
}

// Point returns the current line/column position.
func (c *Cursor) Point() Point {
	if !c.pointSet {
		c.computePoint()
	}
	return c.point
}

func (c *Cursor) computePoint() {
	c.point = Point{}
	for _, frame := range c.path {
		for i := 0; i < frame.childIdx; i++ {
			c.point.Line += frame.node.childSummaries[i].Lines
		}
	}
	if c.leafNode != nil {
		for i := 0; i < c.chunkIdx; i++ {
			c.point.Line += c.leafNode.chunks[i].Summary().Lines
		}
		if c.chunkIdx < len(c.leafNode.chunks) {
			chunk := c.leafNode.chunks[c.chunkIdx]
			c.point.Line += chunk.Newlines().CountBefore(c.chunkOff)
		}
	}
	c.point.Column = uint32(c.offset - c.lineStartOffset())
	c.pointSet = true
}

// lineStartOffset finds the start of the line holding the cursor,
// searching the current leaf's newline indexes before falling back to
// a byte walk.
func (c *Cursor) lineStartOffset() ByteOffset {
	if c.offset == 0 {
		return 0
	}
	if c.leafNode != nil && c.chunkIdx < len(c.leafNode.chunks) {
		chunk := c.leafNode.chunks[c.chunkIdx]
		if pos := chunk.Newlines().Before(c.chunkOff); pos >= 0 {
			chunkStart := c.offset - ByteOffset(c.chunkOff)
			return chunkStart + ByteOffset(pos) + 1
		}
		chunkStart := c.offset - ByteOffset(c.chunkOff)
		for i := c.chunkIdx - 1; i >= 0; i-- {
			prev := c.leafNode.chunks[i]
			chunkStart -= ByteOffset(prev.Len())
			if pos := prev.Newlines().Last(); pos >= 0 {
				return chunkStart + ByteOffset(pos) + 1
			}
		}
		// Cross-leaf search.
		for off := chunkStart; off > 0; off-- {
			if b, ok := c.rope.ByteAt(off - 1); ok && b == '\n' {
				return off
			}
		}
	}
	return 0
}

// SeekOffset moves the cursor to the given byte offset. Offsets inside
// a multi-byte rune are adjusted back to the rune start.
func (c *Cursor) SeekOffset(offset ByteOffset) bool {
	if c.rope.root == nil {
		return offset == 0
	}
	ropeLen := c.rope.Len()
	if offset < 0 || offset > ropeLen {
		return false
	}

	c.path = c.path[:0]
	c.offset = offset
	c.pointSet = false

	if offset == ropeLen {
		return c.seekToEnd()
	}

	n := c.rope.root
	nodeStart := ByteOffset(0)
	nodeLine := uint32(0)
	for !n.isLeaf() {
		childStart := nodeStart
		childLine := nodeLine
		found := false
		for i, summary := range n.childSummaries {
			if childStart+summary.Bytes > offset {
				c.path = append(c.path, cursorFrame{
					node:     n,
					childIdx: i,
					offset:   childStart,
					line:     childLine,
				})
				n = n.children[i]
				nodeStart = childStart
				nodeLine = childLine
				found = true
				break
			}
			childStart += summary.Bytes
			childLine += summary.Lines
		}
		if !found {
			return false
		}
	}

	c.leafNode = n
	chunkStart := nodeStart
	for i, chunk := range n.chunks {
		clen := ByteOffset(chunk.Len())
		if chunkStart+clen > offset {
			c.chunkIdx = i
			c.chunkOff = int(offset - chunkStart)
			if c.chunkOff > 0 {
				text := chunk.String()
				for c.chunkOff < len(text) && !isUTF8Start(text[c.chunkOff]) {
					c.chunkOff--
					c.offset--
				}
			}
			return true
		}
		chunkStart += clen
	}

	c.chunkIdx = len(n.chunks) - 1
	if c.chunkIdx >= 0 {
		c.chunkOff = n.chunks[c.chunkIdx].Len()
	} else {
		c.chunkOff = 0
	}
	return true
}

func (c *Cursor) seekToEnd() bool {
	c.path = c.path[:0]
	c.offset = c.rope.Len()
	c.pointSet = false

	if c.rope.root == nil {
		c.leafNode = nil
		return true
	}
	n := c.rope.root
	pos := ByteOffset(0)
	line := uint32(0)
	for !n.isLeaf() {
		last := len(n.children) - 1
		for i := 0; i < last; i++ {
			pos += n.childSummaries[i].Bytes
			line += n.childSummaries[i].Lines
		}
		c.path = append(c.path, cursorFrame{node: n, childIdx: last, offset: pos, line: line})
		n = n.children[last]
	}
	c.leafNode = n
	if len(n.chunks) > 0 {
		c.chunkIdx = len(n.chunks) - 1
		c.chunkOff = n.chunks[c.chunkIdx].Len()
	} else {
		c.chunkIdx = 0
		c.chunkOff = 0
	}
	return true
}

// SeekLine moves the cursor to the start of the given line.
func (c *Cursor) SeekLine(line uint32) bool {
	if c.rope.root == nil {
		return line == 0
	}
	if line == 0 {
		c.seekToStart()
		return true
	}
	if line >= c.rope.Lines() {
		return false
	}

	c.path = c.path[:0]
	c.pointSet = false

	n := c.rope.root
	pos := ByteOffset(0)
	curLine := uint32(0)
	for !n.isLeaf() {
		found := false
		for i, summary := range n.childSummaries {
			if curLine+summary.Lines >= line {
				c.path = append(c.path, cursorFrame{node: n, childIdx: i, offset: pos, line: curLine})
				n = n.children[i]
				found = true
				break
			}
			pos += summary.Bytes
			curLine += summary.Lines
		}
		if !found {
			return false
		}
	}

	c.leafNode = n
	remaining := line - curLine
	for i, chunk := range n.chunks {
		summary := chunk.Summary()
		if summary.Lines >= remaining {
			nl := chunk.Newlines().NthNewline(remaining)
			if nl < 0 {
				return false
			}
			c.chunkIdx = i
			c.chunkOff = nl + 1
			c.offset = pos + ByteOffset(c.chunkOff)
			c.point = Point{Line: line}
			c.pointSet = true
			return true
		}
		remaining -= summary.Lines
		pos += ByteOffset(chunk.Len())
	}
	return false
}

// Rune returns the rune at the current position, or (0, 0) at the end.
func (c *Cursor) Rune() (rune, int) {
	if c.leafNode == nil || c.chunkIdx >= len(c.leafNode.chunks) {
		return 0, 0
	}
	chunk := c.leafNode.chunks[c.chunkIdx]
	if c.chunkOff >= chunk.Len() {
		return 0, 0
	}
	return utf8.DecodeRuneInString(chunk.String()[c.chunkOff:])
}

// Byte returns the byte at the current position, or false at the end.
func (c *Cursor) Byte() (byte, bool) {
	if c.leafNode == nil || c.chunkIdx >= len(c.leafNode.chunks) {
		return 0, false
	}
	chunk := c.leafNode.chunks[c.chunkIdx]
	if c.chunkOff >= chunk.Len() {
		return 0, false
	}
	return chunk.String()[c.chunkOff], true
}

// Next advances the cursor by one rune.
func (c *Cursor) Next() bool {
	if c.offset >= c.rope.Len() {
		return false
	}
	r, size := c.Rune()
	if size == 0 {
		return false
	}
	c.offset += ByteOffset(size)
	c.chunkOff += size

	if c.pointSet {
		if r == '\n' {
			c.point.Line++
			c.point.Column = 0
		} else {
			c.point.Column += uint32(size)
		}
	}

	if c.leafNode != nil && c.chunkIdx < len(c.leafNode.chunks) {
		if c.chunkOff >= c.leafNode.chunks[c.chunkIdx].Len() {
			c.advanceChunk()
		}
	}
	return true
}

func (c *Cursor) advanceChunk() {
	c.chunkIdx++
	c.chunkOff = 0
	if c.chunkIdx >= len(c.leafNode.chunks) {
		c.advanceLeaf()
	}
}

// advanceLeaf pops frames until a right sibling exists, then descends
// to its leftmost leaf.
func (c *Cursor) advanceLeaf() {
	for len(c.path) > 0 {
		frame := c.path[len(c.path)-1]
		c.path = c.path[:len(c.path)-1]

		nextIdx := frame.childIdx + 1
		if nextIdx >= len(frame.node.children) {
			continue
		}
		siblingOffset := frame.offset + frame.node.childSummaries[frame.childIdx].Bytes
		siblingLine := frame.line + frame.node.childSummaries[frame.childIdx].Lines
		c.path = append(c.path, cursorFrame{
			node:     frame.node,
			childIdx: nextIdx,
			offset:   siblingOffset,
			line:     siblingLine,
		})

		n := frame.node.children[nextIdx]
		for !n.isLeaf() {
			c.path = append(c.path, cursorFrame{node: n, offset: siblingOffset, line: siblingLine})
			n = n.children[0]
		}
		c.leafNode = n
		c.chunkIdx = 0
		c.chunkOff = 0
		return
	}
	c.leafNode = nil
	c.chunkIdx = 0
	c.chunkOff = 0
}

// Prev moves the cursor back by one rune.
func (c *Cursor) Prev() bool {
	if c.offset == 0 {
		return false
	}
	prev := c.offset - 1
	for prev > 0 {
		b, ok := c.rope.ByteAt(prev)
		if !ok || isUTF8Start(b) {
			break
		}
		prev--
	}
	c.SeekOffset(prev)
	return true
}

// AtEnd reports whether the cursor is at the end of the rope.
func (c *Cursor) AtEnd() bool {
	return c.offset >= c.rope.Len()
}

// AtStart reports whether the cursor is at the start of the rope.
func (c *Cursor) AtStart() bool {
	return c.offset == 0
}

// Clone copies the cursor at its current position.
func (c *Cursor) Clone() *Cursor {
	dup := &Cursor{
		rope:     c.rope,
		path:     make([]cursorFrame, len(c.path)),
		offset:   c.offset,
		point:    c.point,
		pointSet: c.pointSet,
		leafNode: c.leafNode,
		chunkIdx: c.chunkIdx,
		chunkOff: c.chunkOff,
	}
	copy(dup.path, c.path)
	return dup
}
