package rope

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"
	"unicode/utf8"
)

func TestChunkIterator(t *testing.T) {
	s := strings.Repeat("0123456789", 300)
	r := FromString(s)

	var sb strings.Builder
	var last ByteOffset
	it := r.Chunks()
	for it.Next() {
		if it.Offset() != last {
			t.Fatalf("chunk offset = %d, want %d", it.Offset(), last)
		}
		sb.WriteString(it.Chunk().String())
		last += ByteOffset(it.Chunk().Len())
	}
	if sb.String() != s {
		t.Error("chunk iteration did not reproduce the document")
	}

	if FromString("").Chunks().Next() {
		t.Error("empty rope should yield no chunks")
	}
}

func TestIterRange(t *testing.T) {
	s := strings.Repeat("abcdefghij", 200)
	r := FromString(s)

	tests := []struct {
		from, to ByteOffset
	}{
		{0, 0},
		{0, 10},
		{995, 1005}, // crosses chunk boundaries
		{0, ByteOffset(len(s))},
		{1999, 2000},
	}
	for _, tt := range tests {
		it, err := r.IterRange(tt.from, tt.to)
		if err != nil {
			t.Fatalf("IterRange(%d, %d): %v", tt.from, tt.to, err)
		}
		var sb strings.Builder
		for it.Next() {
			sb.WriteString(it.Text())
		}
		if want := s[tt.from:tt.to]; sb.String() != want {
			t.Errorf("IterRange(%d, %d) = %q, want %q", tt.from, tt.to, sb.String(), want)
		}
	}

	if _, err := r.IterRange(5, 3); !errors.Is(err, ErrRangeInvalid) {
		t.Errorf("inverted IterRange error = %v, want ErrRangeInvalid", err)
	}
	if _, err := r.IterRange(0, 99999); !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("out-of-range IterRange error = %v, want ErrOffsetOutOfRange", err)
	}
}

func TestIterSkip(t *testing.T) {
	s := strings.Repeat("x", 500) + "MARKER" + strings.Repeat("y", 500)
	r := FromString(s)

	it := r.Iter()
	it.Skip(500)
	if !it.Next() {
		t.Fatal("expected text after skip")
	}
	if !strings.HasPrefix(it.Text(), "MARKER"[:1]) {
		t.Errorf("after Skip(500) got %q", it.Text()[:1])
	}
	if it.Pos() <= 500 {
		t.Errorf("Pos() = %d after skip and one piece", it.Pos())
	}

	// Skipping past the end clamps; Next yields nothing.
	it2 := r.Iter()
	it2.Skip(ByteOffset(len(s)) + 100)
	if it2.Next() {
		t.Error("Next after over-skip should yield nothing")
	}
}

func TestLineIterator(t *testing.T) {
	r := FromString("one\ntwo\nthree")
	var lines []string
	it := r.LineIter()
	for it.Next() {
		lines = append(lines, it.Text())
	}
	want := []string{"one", "two", "three"}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d", len(lines), len(want))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestRuneIterator(t *testing.T) {
	s := "héllo 世界 🌍\nmore"
	r := FromString(s)

	var got []rune
	it := r.Runes()
	for it.Next() {
		got = append(got, it.Rune())
	}
	want := []rune(s)
	if len(got) != len(want) {
		t.Fatalf("got %d runes, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("rune %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestReverseRuneIterator(t *testing.T) {
	s := "ab💡cd"
	r := FromString(s)

	var got []rune
	it := r.ReverseRunes()
	for it.Next() {
		got = append(got, it.Rune())
	}
	want := []rune{'d', 'c', '💡', 'b', 'a'}
	if len(got) != len(want) {
		t.Fatalf("got %d runes, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("reverse rune %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestGraphemeIterator(t *testing.T) {
	// é as e+combining accent, a flag, and a ZWJ family.
	s := "é 🇺🇦 👨‍👩‍👧"
	r := FromString(s)

	var clusters []string
	it := r.Graphemes()
	for it.Next() {
		clusters = append(clusters, it.Cluster())
	}
	want := []string{"é", " ", "🇺🇦", " ", "👨‍👩‍👧"}
	if len(clusters) != len(want) {
		t.Fatalf("got %d clusters %q, want %d", len(clusters), clusters, len(want))
	}
	for i := range want {
		if clusters[i] != want[i] {
			t.Errorf("cluster %d = %q, want %q", i, clusters[i], want[i])
		}
	}
}

func TestGraphemeIteratorAcrossChunks(t *testing.T) {
	// Clusters must decode whole even when the document is chunked
	// finely.
	s := strings.Repeat("aéi", 400)
	r := FromString(s, WithChunkBounds(16, 32))

	count := 0
	it := r.Graphemes()
	for it.Next() {
		if c := it.Cluster(); c != "a" && c != "é" && c != "i" {
			t.Fatalf("unexpected cluster %q at offset %d", c, it.Offset())
		}
		count++
	}
	if count != 1200 {
		t.Errorf("cluster count = %d, want 1200", count)
	}
}

func TestCursorSeekAndPoint(t *testing.T) {
	s := "alpha\nbeta\ngamma\ndelta"
	r := FromString(s)

	tests := []struct {
		offset ByteOffset
		point  Point
	}{
		{0, Point{Line: 0, Column: 0}},
		{5, Point{Line: 0, Column: 5}},
		{6, Point{Line: 1, Column: 0}},
		{12, Point{Line: 2, Column: 1}},
		{ByteOffset(len(s)), Point{Line: 3, Column: 5}},
	}
	c := NewCursor(r)
	for _, tt := range tests {
		if !c.SeekOffset(tt.offset) {
			t.Fatalf("SeekOffset(%d) failed", tt.offset)
		}
		if c.Offset() != tt.offset {
			t.Errorf("Offset() = %d, want %d", c.Offset(), tt.offset)
		}
		if got := c.Point(); got != tt.point {
			t.Errorf("Point() at %d = %+v, want %+v", tt.offset, got, tt.point)
		}
	}

	if c.SeekOffset(-1) || c.SeekOffset(ByteOffset(len(s))+1) {
		t.Error("out-of-range seek should fail")
	}
}

func TestCursorWalk(t *testing.T) {
	s := strings.Repeat("line with some text\n", 100)
	r := FromString(s)

	c := NewCursor(r)
	var sb strings.Builder
	for !c.AtEnd() {
		rn, size := c.Rune()
		if size == 0 {
			t.Fatal("Rune() returned size 0 before end")
		}
		sb.WriteRune(rn)
		if !c.Next() {
			t.Fatal("Next() failed before end")
		}
	}
	if sb.String() != s {
		t.Error("forward walk did not reproduce the document")
	}

	// Walk back to the start.
	steps := 0
	for !c.AtStart() {
		if !c.Prev() {
			t.Fatal("Prev() failed before start")
		}
		steps++
	}
	if steps != len([]rune(s)) {
		t.Errorf("backward steps = %d, want %d", steps, len([]rune(s)))
	}
}

func TestCursorSeekLine(t *testing.T) {
	lines := makeLines(500)
	r := FromLines(lines)

	c := NewCursor(r)
	for _, ln := range []uint32{0, 1, 250, 499} {
		if !c.SeekLine(ln) {
			t.Fatalf("SeekLine(%d) failed", ln)
		}
		if got := c.Point(); got.Line != ln || got.Column != 0 {
			t.Errorf("SeekLine(%d) point = %+v", ln, got)
		}
		want, err := r.LineStart(ln)
		if err != nil {
			t.Fatal(err)
		}
		if c.Offset() != want {
			t.Errorf("SeekLine(%d) offset = %d, want %d", ln, c.Offset(), want)
		}
	}
	if c.SeekLine(500) {
		t.Error("SeekLine past last line should fail")
	}
}

func TestCursorClone(t *testing.T) {
	r := FromString("hello\nworld")
	c := NewCursor(r)
	c.SeekOffset(8)

	dup := c.Clone()
	c.Next()
	if dup.Offset() != 8 {
		t.Errorf("clone offset changed to %d", dup.Offset())
	}
	if c.Offset() != 9 {
		t.Errorf("original offset = %d, want 9", c.Offset())
	}
}

func TestBuilder(t *testing.T) {
	b := NewBuilder()
	pieces := []string{"hello ", "world", "\n", strings.Repeat("z", 5000), "", "tail"}
	var want strings.Builder
	for _, p := range pieces {
		b.WriteString(p)
		want.WriteString(p)
	}
	if b.Len() != want.Len() {
		t.Errorf("Builder.Len() = %d, want %d", b.Len(), want.Len())
	}
	r := b.Build()
	if r.String() != want.String() {
		t.Error("built rope content mismatch")
	}

	// The builder is reusable after Build.
	b.WriteString("second")
	if got := b.Build().String(); got != "second" {
		t.Errorf("reused builder = %q, want %q", got, "second")
	}
}

func TestBuilderReadFrom(t *testing.T) {
	s := strings.Repeat("stream data\n", 1000)
	b := NewBuilder()
	n, err := b.ReadFrom(strings.NewReader(s))
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if n != int64(len(s)) {
		t.Errorf("ReadFrom = %d bytes, want %d", n, len(s))
	}
	if got := b.Build().String(); got != s {
		t.Error("ReadFrom content mismatch")
	}
}

func TestFromReader(t *testing.T) {
	s := strings.Repeat("reader\n", 300)
	r, err := FromReader(strings.NewReader(s))
	if err != nil {
		t.Fatalf("FromReader: %v", err)
	}
	if r.String() != s {
		t.Error("FromReader content mismatch")
	}
}

func TestBuilderWriteSplitsRune(t *testing.T) {
	// With bounds 16..32 the buffer flushes at 64 bytes, right after
	// the lead byte of é; the continuation arrives on the next write.
	b := NewBuilder(WithChunkBounds(16, 32))
	head := strings.Repeat("x", 63)
	b.Write([]byte(head + "\xc3"))
	b.Write([]byte("\xa9tail"))

	r := b.Build()
	if want := head + "étail"; r.String() != want {
		t.Fatalf("content mismatch: got %q", r.String())
	}
	it := r.Chunks()
	for it.Next() {
		if c := it.Chunk().String(); !utf8.ValidString(c) {
			t.Fatalf("chunk %q is not valid UTF-8", c)
		}
	}
}

func TestFromReaderSplitRune(t *testing.T) {
	// One byte per read puts the flush boundary inside the é.
	s := strings.Repeat("x", 127) + "é" + strings.Repeat("y", 40)
	r, err := FromReader(iotest.OneByteReader(strings.NewReader(s)), WithChunkBounds(16, 32))
	if err != nil {
		t.Fatalf("FromReader: %v", err)
	}
	if r.String() != s {
		t.Error("FromReader content mismatch")
	}
	it := r.Chunks()
	for it.Next() {
		if c := it.Chunk().String(); !utf8.ValidString(c) {
			t.Fatalf("chunk %q is not valid UTF-8", c)
		}
	}
}
