package rope

import (
	"strings"
	"testing"
)

func setupLargeRope(b *testing.B, lines int) Rope {
	b.Helper()
	var sb strings.Builder
	line := strings.Repeat("x", 80) + "\n"
	for i := 0; i < lines; i++ {
		sb.WriteString(line)
	}
	return FromString(sb.String())
}

func BenchmarkFromString(b *testing.B) {
	s := strings.Repeat(strings.Repeat("x", 80)+"\n", 10000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = FromString(s)
	}
}

func BenchmarkSlice(b *testing.B) {
	r := setupLargeRope(b, 10000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = r.Slice(100000, 101000)
	}
}

func BenchmarkReplaceSmall(b *testing.B) {
	r := setupLargeRope(b, 10000)
	mid := r.Len() / 2
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = r.Replace(mid, mid+1, "y")
	}
}

func BenchmarkInsertSequential(b *testing.B) {
	r := New()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r, _ = r.Insert(r.Len(), "typed text ")
	}
}

func BenchmarkLineStart(b *testing.B) {
	r := setupLargeRope(b, 10000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = r.LineStart(5000)
	}
}

func BenchmarkOffsetToPoint(b *testing.B) {
	r := setupLargeRope(b, 10000)
	mid := r.Len() / 2
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = r.OffsetToPoint(mid)
	}
}

func BenchmarkEq(b *testing.B) {
	r1 := setupLargeRope(b, 2000)
	r2 := FromString(r1.String(), WithChunkBounds(64, 128))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = r1.Eq(r2)
	}
}

func BenchmarkCursorWalk(b *testing.B) {
	r := setupLargeRope(b, 1000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c := NewCursor(r)
		for c.Next() {
		}
	}
}
