package change

import (
	"fmt"
	"strings"
)

// SpanKind classifies one run of a change description.
type SpanKind uint8

const (
	// SpanKeep retains a stretch of the old document.
	SpanKeep SpanKind = iota

	// SpanDelete removes a stretch of the old document.
	SpanDelete

	// SpanInsert adds new content; its length is measured in the new
	// document.
	SpanInsert
)

// String returns the run-notation letter for the kind.
func (k SpanKind) String() string {
	switch k {
	case SpanKeep:
		return "k"
	case SpanDelete:
		return "d"
	case SpanInsert:
		return "i"
	default:
		return "?"
	}
}

// span is one run of a change description.
type span struct {
	kind SpanKind
	n    int64
}

// Desc is the length-only description of an edit: an ordered sequence
// of Keep/Delete/Insert runs in canonical form. The zero value is the
// empty change over an empty document. Desc values are never mutated.
type Desc struct {
	spans []span
}

// MapMode selects how MapPos treats positions inside deleted spans.
type MapMode uint8

const (
	// MapSimple clamps deleted positions to the nearest surviving
	// boundary.
	MapSimple MapMode = iota

	// MapTrackDel reports Deleted for positions strictly inside a
	// deleted span.
	MapTrackDel

	// MapTrackBefore reports Deleted when content immediately before
	// the position was touched.
	MapTrackBefore

	// MapTrackAfter reports Deleted when content immediately after
	// the position was touched.
	MapTrackAfter
)

// Deleted is the sentinel MapPos returns for positions that no longer
// exist in the new document.
const Deleted = int64(-1)

// KeepLen returns a Desc that keeps n bytes unchanged, the identity
// change for a document of length n.
func KeepLen(n int64) Desc {
	if n <= 0 {
		return Desc{}
	}
	return Desc{spans: []span{{kind: SpanKeep, n: n}}}
}

// OldLen returns the length of the document the change applies to.
func (d Desc) OldLen() int64 {
	var n int64
	for _, s := range d.spans {
		if s.kind != SpanInsert {
			n += s.n
		}
	}
	return n
}

// NewLen returns the length of the document the change produces.
func (d Desc) NewLen() int64 {
	var n int64
	for _, s := range d.spans {
		if s.kind != SpanDelete {
			n += s.n
		}
	}
	return n
}

// Empty reports whether the change leaves the document untouched.
func (d Desc) Empty() bool {
	for _, s := range d.spans {
		if s.kind != SpanKeep {
			return false
		}
	}
	return true
}

// Invert returns the description of the change that undoes this one.
func (d Desc) Invert() Desc {
	b := newRunBuilder(false)
	for _, sec := range d.sections() {
		if sec.keep {
			b.keep(sec.del)
			continue
		}
		b.del(sec.ins)
		b.ins(sec.del, "")
	}
	return b.desc()
}

// String renders the change in compact run notation, e.g. "k5i2k5"
// for "keep 5, insert 2, keep 5".
func (d Desc) String() string {
	if len(d.spans) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, s := range d.spans {
		fmt.Fprintf(&sb, "%s%d", s.kind, s.n)
	}
	return sb.String()
}

// ParseDesc parses the run notation produced by String.
func ParseDesc(s string) (Desc, error) {
	b := newRunBuilder(false)
	i := 0
	for i < len(s) {
		kind := s[i]
		i++
		start := i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if start == i {
			return Desc{}, fmt.Errorf("%w: missing length at %d in %q", ErrMalformedChange, start, s)
		}
		var n int64
		for _, c := range s[start:i] {
			n = n*10 + int64(c-'0')
		}
		switch kind {
		case 'k':
			b.keep(n)
		case 'd':
			b.del(n)
		case 'i':
			b.ins(n, "")
		default:
			return Desc{}, fmt.Errorf("%w: unknown run kind %q in %q", ErrMalformedChange, kind, s)
		}
	}
	return b.desc(), nil
}

// section is a grouped view of the runs: either a kept stretch or a
// replacement of del old bytes by ins new bytes. Canonical form puts
// Delete before Insert, so grouping is a linear scan.
type section struct {
	keep bool
	del  int64 // kept or deleted length in the old document
	ins  int64 // inserted length in the new document
}

func (d Desc) sections() []section {
	out := make([]section, 0, len(d.spans))
	for i := 0; i < len(d.spans); {
		s := d.spans[i]
		switch s.kind {
		case SpanKeep:
			out = append(out, section{keep: true, del: s.n})
			i++
		case SpanDelete:
			sec := section{del: s.n}
			i++
			if i < len(d.spans) && d.spans[i].kind == SpanInsert {
				sec.ins = d.spans[i].n
				i++
			}
			out = append(out, sec)
		case SpanInsert:
			out = append(out, section{ins: s.n})
			i++
		}
	}
	return out
}

// Compose combines this change with a change made to the document it
// produces, yielding the single change that goes from this change's
// old document straight to other's new document.
func (d Desc) Compose(other Desc) (Desc, error) {
	spans, _, err := composeRuns(d.spans, nil, other.spans, nil)
	if err != nil {
		return Desc{}, err
	}
	return Desc{spans: spans}, nil
}

// Map rebases this change over other, a concurrent change to the same
// original document, producing the shape this change takes when
// applied after other. When both insert at the same position, before
// selects whether this change's insertion ends up first.
func (d Desc) Map(other Desc, before bool) (Desc, error) {
	spans, _, err := mapRuns(d.spans, nil, other.spans, before)
	if err != nil {
		return Desc{}, err
	}
	return Desc{spans: spans}, nil
}

// MapPos maps a position in the old document to the corresponding
// position in the new one. assoc decides which side of an edit the
// position sticks to: negative associates with the content before it,
// positive with the content after. mode controls positions that fall
// inside deleted spans; every mode except MapSimple can report the
// Deleted sentinel.
func (d Desc) MapPos(pos int64, assoc int, mode MapMode) (int64, error) {
	if pos < 0 || pos > d.OldLen() {
		return 0, fmt.Errorf("%w: mapping %d through change of length %d", ErrPosOutOfRange, pos, d.OldLen())
	}

	var posA, posB int64
	for _, sec := range d.sections() {
		if sec.keep {
			endA := posA + sec.del
			if endA > pos {
				return posB + (pos - posA), nil
			}
			posB += sec.del
			posA = endA
			continue
		}

		endA := posA + sec.del
		if mode != MapSimple && endA >= pos &&
			(mode == MapTrackDel && posA < pos && endA > pos ||
				mode == MapTrackBefore && posA < pos ||
				mode == MapTrackAfter && endA > pos) {
			return Deleted, nil
		}
		if endA > pos || endA == pos && assoc < 0 && sec.del == 0 {
			if pos == posA || assoc < 0 {
				return posB, nil
			}
			return posB + sec.ins, nil
		}
		posB += sec.ins
		posA = endA
	}
	return posB, nil
}
