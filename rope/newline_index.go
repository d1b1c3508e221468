package rope

// maxInlineNewlines is the number of newline positions a NewlineIndex
// stores without allocating.
const maxInlineNewlines = 4

// NewlineIndex records the byte positions of the newlines in a chunk.
// Chunks are small, so positions fit in uint16 with plenty of headroom;
// the common case (few newlines) stays allocation-free.
type NewlineIndex struct {
	inline [maxInlineNewlines]uint16
	count  uint16
	spill  []uint16 // used only when count > maxInlineNewlines
}

// computeNewlineIndex builds the index in a single pass over s.
func computeNewlineIndex(s string) NewlineIndex {
	var idx NewlineIndex
	for i := 0; i < len(s); i++ {
		if s[i] != '\n' {
			continue
		}
		if idx.count < maxInlineNewlines {
			idx.inline[idx.count] = uint16(i)
		} else {
			if idx.count == maxInlineNewlines {
				idx.spill = append(idx.spill, idx.inline[:]...)
			}
			idx.spill = append(idx.spill, uint16(i))
		}
		idx.count++
	}
	return idx
}

// Count returns the number of newlines in the chunk.
func (idx *NewlineIndex) Count() uint32 {
	return uint32(idx.count)
}

func (idx *NewlineIndex) positions() []uint16 {
	if idx.count <= maxInlineNewlines {
		return idx.inline[:idx.count]
	}
	return idx.spill
}

// Position returns the byte offset of the nth newline (0-indexed), or
// -1 when n is out of range.
func (idx *NewlineIndex) Position(n uint32) int {
	if n >= uint32(idx.count) {
		return -1
	}
	return int(idx.positions()[n])
}

// NthNewline returns the byte offset of the nth newline (1-indexed),
// or -1 when n is 0 or past the last newline.
func (idx *NewlineIndex) NthNewline(n uint32) int {
	if n == 0 || n > uint32(idx.count) {
		return -1
	}
	return int(idx.positions()[n-1])
}

// Before returns the position of the last newline strictly before
// offset, or -1 when there is none.
func (idx *NewlineIndex) Before(offset int) int {
	pos := idx.positions()
	for i := len(pos) - 1; i >= 0; i-- {
		if int(pos[i]) < offset {
			return int(pos[i])
		}
	}
	return -1
}

// CountBefore returns how many newlines lie strictly before offset.
func (idx *NewlineIndex) CountBefore(offset int) uint32 {
	var count uint32
	for _, p := range idx.positions() {
		if int(p) >= offset {
			break
		}
		count++
	}
	return count
}

// Last returns the position of the final newline, or -1 when there is
// none.
func (idx *NewlineIndex) Last() int {
	if idx.count == 0 {
		return -1
	}
	return int(idx.positions()[idx.count-1])
}
