package rope

import (
	"io"
	"strings"
	"unicode/utf8"
)

// Builder incrementally assembles a rope. Writes are buffered and cut
// into chunks as the buffer fills; Build performs a single bottom-up
// balanced construction.
type Builder struct {
	tun      *Tuning
	chunks   []Chunk
	buffer   strings.Builder
	totalLen int
}

// NewBuilder creates a rope builder.
func NewBuilder(opts ...Option) *Builder {
	return &Builder{
		tun:    applyOptions(opts),
		chunks: make([]Chunk, 0, 64),
	}
}

// WriteString appends a string.
func (b *Builder) WriteString(s string) {
	if len(s) == 0 {
		return
	}
	b.totalLen += len(s)
	b.buffer.WriteString(s)
	if b.buffer.Len() >= b.tun.MaxChunk*2 {
		b.flush(false)
	}
}

// Write implements io.Writer.
func (b *Builder) Write(p []byte) (int, error) {
	b.WriteString(string(p))
	return len(p), nil
}

// flush seals the buffered text into chunks. Unless final, a trailing
// incomplete UTF-8 sequence is held back so a code point fed in across
// Write calls is never split between chunks.
func (b *Builder) flush(final bool) {
	if b.buffer.Len() == 0 {
		return
	}
	s := b.buffer.String()
	b.buffer.Reset()
	if !final {
		if tail := incompleteTailLen(s); tail > 0 {
			b.buffer.WriteString(s[len(s)-tail:])
			s = s[:len(s)-tail]
			if len(s) == 0 {
				return
			}
		}
	}
	b.chunks = append(b.chunks, splitText(s, b.tun)...)
}

// incompleteTailLen returns how many bytes at the end of s form the
// start of a UTF-8 sequence whose continuation bytes have not arrived
// yet, or 0 when s ends on a sequence boundary.
func incompleteTailLen(s string) int {
	for i := 1; i <= utf8.UTFMax && i <= len(s); i++ {
		c := s[len(s)-i]
		if !isUTF8Start(c) {
			continue
		}
		if c < utf8.RuneSelf {
			return 0
		}
		var want int
		switch {
		case c&0xE0 == 0xC0:
			want = 2
		case c&0xF0 == 0xE0:
			want = 3
		case c&0xF8 == 0xF0:
			want = 4
		default:
			// Invalid lead byte; no continuation is coming.
			return 0
		}
		if want > i {
			return i
		}
		return 0
	}
	return 0
}

// Len returns the number of bytes written so far.
func (b *Builder) Len() int {
	return b.totalLen
}

// Reset clears the builder for reuse.
func (b *Builder) Reset() {
	b.chunks = b.chunks[:0]
	b.buffer.Reset()
	b.totalLen = 0
}

// Build creates the rope from the accumulated text and resets the
// builder.
func (b *Builder) Build() Rope {
	b.flush(true)
	tun := b.tun
	if len(b.chunks) == 0 {
		b.Reset()
		return Rope{root: newLeaf(), tun: tun}
	}
	chunks := b.chunks
	b.chunks = nil
	b.Reset()
	return Rope{root: buildFromChunkList(chunks, tun), tun: tun}
}

// ReadFrom implements io.ReaderFrom.
func (b *Builder) ReadFrom(r io.Reader) (int64, error) {
	buf := make([]byte, 64*1024)
	var total int64
	for {
		n, err := r.Read(buf)
		if n > 0 {
			b.WriteString(string(buf[:n]))
			total += int64(n)
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}
