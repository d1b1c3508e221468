package rope

import "unicode/utf8"

// ByteOffset is an absolute byte position in a rope. It is signed so
// that deltas and sentinel values compose without casts.
type ByteOffset int64

// Point is a 0-indexed line/column position. Column is measured in
// bytes from the start of the line.
type Point struct {
	Line   uint32
	Column uint32
}

// TextSummary holds aggregated metrics for a span of text. Summaries
// form a monoid under Add; tree nodes cache the summary of their
// subtree so lookups never rescan text.
type TextSummary struct {
	// Bytes is the UTF-8 byte count.
	Bytes ByteOffset

	// UTF16Units is the UTF-16 code unit count (LSP positions).
	UTF16Units int64

	// Lines is the number of newline characters.
	Lines uint32

	// LongestLine is the byte length of the longest line.
	LongestLine uint32

	// FirstLineLen is the byte length of the first line.
	FirstLineLen uint32

	// LastLineLen is the byte length of the last line.
	LastLineLen uint32

	// Flags records text properties used by fast paths.
	Flags TextFlags
}

// TextFlags mark properties of a text span.
type TextFlags uint8

const (
	// FlagASCII is set when every byte is ASCII.
	FlagASCII TextFlags = 1 << iota

	// FlagHasNewlines is set when the span contains '\n'.
	FlagHasNewlines

	// FlagHasTabs is set when the span contains '\t'.
	FlagHasTabs
)

// Add combines two adjacent summaries.
func (s TextSummary) Add(other TextSummary) TextSummary {
	if s.Bytes == 0 {
		return other
	}
	if other.Bytes == 0 {
		return s
	}

	result := TextSummary{
		Bytes:      s.Bytes + other.Bytes,
		UTF16Units: s.UTF16Units + other.UTF16Units,
		Lines:      s.Lines + other.Lines,
		Flags:      s.Flags & other.Flags,
	}

	if other.Lines > 0 {
		// The line straddling the join is the left side's last line
		// glued to the right side's first.
		joined := s.LastLineLen + other.FirstLineLen
		result.LongestLine = max(s.LongestLine, other.LongestLine, joined)
		if s.Lines == 0 {
			result.FirstLineLen = joined
		} else {
			result.FirstLineLen = s.FirstLineLen
		}
		result.LastLineLen = other.LastLineLen
	} else {
		// The right side extends the left side's last line.
		joined := s.LastLineLen + other.LastLineLen
		result.LongestLine = max(s.LongestLine, joined)
		if s.Lines == 0 {
			result.FirstLineLen = joined
		} else {
			result.FirstLineLen = s.FirstLineLen
		}
		result.LastLineLen = joined
	}

	result.Flags |= (s.Flags | other.Flags) & (FlagHasNewlines | FlagHasTabs)
	return result
}

// IsZero reports whether this is the identity summary.
func (s TextSummary) IsZero() bool {
	return s.Bytes == 0
}

// ComputeSummary scans a string and calculates its metrics.
func ComputeSummary(s string) TextSummary {
	if len(s) == 0 {
		return TextSummary{Flags: FlagASCII}
	}

	sum := TextSummary{
		Bytes: ByteOffset(len(s)),
		Flags: FlagASCII,
	}

	var lineLen uint32
	for _, r := range s {
		if r <= 0xFFFF {
			sum.UTF16Units++
		} else {
			sum.UTF16Units += 2 // surrogate pair
		}
		if r > 127 {
			sum.Flags &^= FlagASCII
		}

		if r == '\n' {
			sum.Lines++
			if lineLen > sum.LongestLine {
				sum.LongestLine = lineLen
			}
			if sum.Lines == 1 {
				sum.FirstLineLen = lineLen
			}
			lineLen = 0
			sum.Flags |= FlagHasNewlines
		} else {
			lineLen += uint32(utf8.RuneLen(r))
			if r == '\t' {
				sum.Flags |= FlagHasTabs
			}
		}
	}

	sum.LastLineLen = lineLen
	if sum.Lines == 0 {
		sum.FirstLineLen = lineLen
		sum.LongestLine = lineLen
	} else if lineLen > sum.LongestLine {
		sum.LongestLine = lineLen
	}
	return sum
}

// isUTF8Start reports whether b begins a UTF-8 sequence.
func isUTF8Start(b byte) bool {
	return b&0xC0 != 0x80
}
