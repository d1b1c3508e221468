package rope

import "github.com/rivo/uniseg"

// Chunk is a bounded, immutable string stored in a leaf node. Metrics
// and newline positions are computed once at construction.
type Chunk struct {
	data     string
	summary  TextSummary
	newlines NewlineIndex
}

// NewChunk creates a chunk from a string.
func NewChunk(s string) Chunk {
	return Chunk{
		data:     s,
		summary:  ComputeSummary(s),
		newlines: computeNewlineIndex(s),
	}
}

// String returns the chunk's text.
func (c Chunk) String() string {
	return c.data
}

// Summary returns the chunk's precomputed metrics.
func (c Chunk) Summary() TextSummary {
	return c.summary
}

// Newlines returns the chunk's newline position index.
func (c Chunk) Newlines() *NewlineIndex {
	return &c.newlines
}

// Len returns the byte length of the chunk.
func (c Chunk) Len() int {
	return len(c.data)
}

// IsEmpty reports whether the chunk has no text.
func (c Chunk) IsEmpty() bool {
	return len(c.data) == 0
}

// Split divides the chunk at a byte offset. The offset must lie on a
// rune boundary; callers are expected to split only at boundaries
// produced by the rope itself.
func (c Chunk) Split(offset int) (Chunk, Chunk) {
	if offset <= 0 {
		return Chunk{}, c
	}
	if offset >= len(c.data) {
		return c, Chunk{}
	}
	return NewChunk(c.data[:offset]), NewChunk(c.data[offset:])
}

// splitText splits a string into chunks within the tuning's size
// bounds. Splits land on grapheme cluster boundaries, so a multi-byte
// code point or combining sequence never straddles two chunks.
func splitText(s string, tun *Tuning) []Chunk {
	if len(s) == 0 {
		return nil
	}
	if len(s) <= tun.MaxChunk {
		return []Chunk{NewChunk(s)}
	}

	chunks := make([]Chunk, 0, len(s)/tun.targetChunk()+1)
	remaining := s
	for len(remaining) > 0 {
		if len(remaining) <= tun.MaxChunk {
			chunks = append(chunks, NewChunk(remaining))
			break
		}
		cut := findSplitBoundary(remaining, tun)
		chunks = append(chunks, NewChunk(remaining[:cut]))
		remaining = remaining[cut:]
	}
	return chunks
}

// findSplitBoundary picks a cut point near the target chunk size. It
// prefers the position right after a nearby newline (always a cluster
// boundary), and otherwise walks grapheme clusters from the start of s,
// which is itself a boundary by construction.
func findSplitBoundary(s string, tun *Tuning) int {
	target := tun.targetChunk()
	if target >= len(s) {
		return len(s)
	}

	window := tun.MinChunk / 4
	searchEnd := min(target+window, len(s))
	for i := target; i < searchEnd; i++ {
		if s[i] == '\n' {
			return i + 1
		}
	}
	for i := target - 1; i >= target-window && i >= 0; i-- {
		if s[i] == '\n' {
			return i + 1
		}
	}

	// No newline nearby; advance by grapheme clusters up to the target.
	pos := 0
	state := -1
	rest := s
	for pos < target && len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if pos > 0 && pos+len(cluster) > target {
			break
		}
		pos += len(cluster)
	}
	if pos == 0 || pos >= len(s) {
		// Degenerate single cluster; fall back to a rune boundary.
		pos = target
		for pos < len(s) && !isUTF8Start(s[pos]) {
			pos++
		}
	}
	return pos
}

// appendChunks joins two chunks, re-splitting when the result exceeds
// the chunk bound.
func appendChunks(a, b Chunk, tun *Tuning) []Chunk {
	if a.IsEmpty() {
		if b.IsEmpty() {
			return nil
		}
		return []Chunk{b}
	}
	if b.IsEmpty() {
		return []Chunk{a}
	}
	joined := a.data + b.data
	if len(joined) <= tun.MaxChunk {
		return []Chunk{NewChunk(joined)}
	}
	return splitText(joined, tun)
}
