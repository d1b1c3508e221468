package rope

import "fmt"

// Line describes one line of a rope. Number is 0-indexed; [From, To)
// spans the line's text without its trailing newline.
type Line struct {
	Number uint32
	From   ByteOffset
	To     ByteOffset
}

// Len returns the line length in bytes, excluding the newline.
func (l Line) Len() ByteOffset {
	return l.To - l.From
}

// LineStart returns the byte offset of the start of the given line.
func (r Rope) LineStart(line uint32) (ByteOffset, error) {
	if line >= r.Lines() {
		return 0, fmt.Errorf("%w: line %d of %d", ErrLineOutOfRange, line, r.Lines())
	}
	if line == 0 || r.root == nil {
		return 0, nil
	}

	// Descend to the chunk holding the line-th newline; the line
	// starts one byte past it.
	n := r.root
	pos := ByteOffset(0)
	remaining := line
	for !n.isLeaf() {
		found := false
		for i, s := range n.childSummaries {
			if s.Lines >= remaining {
				n = n.children[i]
				found = true
				break
			}
			remaining -= s.Lines
			pos += s.Bytes
		}
		if !found {
			return r.Len(), nil
		}
	}
	for _, c := range n.chunks {
		if c.Summary().Lines >= remaining {
			p := c.Newlines().NthNewline(remaining)
			if p < 0 {
				return r.Len(), nil
			}
			return pos + ByteOffset(p) + 1, nil
		}
		remaining -= c.Summary().Lines
		pos += ByteOffset(c.Len())
	}
	return r.Len(), nil
}

// LineEnd returns the byte offset of the end of the given line, not
// including the newline character.
func (r Rope) LineEnd(line uint32) (ByteOffset, error) {
	count := r.Lines()
	if line >= count {
		return 0, fmt.Errorf("%w: line %d of %d", ErrLineOutOfRange, line, count)
	}
	if line == count-1 {
		return r.Len(), nil
	}
	next, err := r.LineStart(line + 1)
	if err != nil {
		return 0, err
	}
	return next - 1, nil
}

// Line returns the bounds of the given line.
func (r Rope) Line(line uint32) (Line, error) {
	from, err := r.LineStart(line)
	if err != nil {
		return Line{}, err
	}
	to, err := r.LineEnd(line)
	if err != nil {
		return Line{}, err
	}
	return Line{Number: line, From: from, To: to}, nil
}

// LineAt returns the line containing pos. A position on a newline
// belongs to the line the newline terminates; pos == Len() reports the
// final line.
func (r Rope) LineAt(pos ByteOffset) (Line, error) {
	if pos < 0 || pos > r.Len() {
		return Line{}, fmt.Errorf("%w: %d in document of length %d", ErrOffsetOutOfRange, pos, r.Len())
	}
	if r.root == nil {
		return Line{}, nil
	}

	// Count the newlines strictly before pos while descending.
	n := r.root
	off := pos
	var line uint32
	for !n.isLeaf() {
		i, childOff := n.findChildByOffset(off)
		for j := 0; j < i; j++ {
			line += n.childSummaries[j].Lines
		}
		n = n.children[i]
		off = childOff
	}
	for _, c := range n.chunks {
		clen := ByteOffset(c.Len())
		if off < clen {
			line += c.Newlines().CountBefore(int(off))
			break
		}
		line += c.Summary().Lines
		off -= clen
	}
	return r.Line(line)
}

// LineText returns the text of the given line without its newline.
func (r Rope) LineText(line uint32) (string, error) {
	l, err := r.Line(line)
	if err != nil {
		return "", err
	}
	return r.Slice(l.From, l.To)
}
