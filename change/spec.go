package change

import (
	"fmt"
	"sort"
)

// Spec is one requested edit against the original document: replace
// [From, To) with Insert. From == To inserts without removing; an
// empty Insert deletes.
type Spec struct {
	From   int64
	To     int64
	Insert string
}

// InsertAt returns a spec that inserts text at pos.
func InsertAt(pos int64, text string) Spec {
	return Spec{From: pos, To: pos, Insert: text}
}

// DeleteRange returns a spec that removes [from, to).
func DeleteRange(from, to int64) Spec {
	return Spec{From: from, To: to}
}

// ReplaceRange returns a spec that substitutes [from, to) with text.
func ReplaceRange(from, to int64, text string) Spec {
	return Spec{From: from, To: to, Insert: text}
}

// NewSet builds a change set over a document of docLen bytes from a
// batch of edit specs. Specs are sorted by position; ranges may touch
// but not overlap, and multiple insertions at the same position keep
// their given order. Out-of-range or inverted specs are rejected.
func NewSet(docLen int64, specs ...Spec) (Set, error) {
	for _, sp := range specs {
		if sp.From > sp.To {
			return Set{}, fmt.Errorf("%w: inverted range [%d, %d)", ErrInvalidSpec, sp.From, sp.To)
		}
		if sp.From < 0 || sp.To > docLen {
			return Set{}, fmt.Errorf("%w: [%d, %d) in document of length %d", ErrInvalidSpec, sp.From, sp.To, docLen)
		}
	}

	sorted := make([]Spec, len(specs))
	copy(sorted, specs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].From < sorted[j].From
	})

	b := newRunBuilder(true)
	var pos int64
	for _, sp := range sorted {
		if sp.From < pos {
			return Set{}, fmt.Errorf("%w: edit at %d begins before previous edit ended at %d",
				ErrOverlappingEdits, sp.From, pos)
		}
		b.keep(sp.From - pos)
		b.del(sp.To - sp.From)
		b.ins(int64(len(sp.Insert)), sp.Insert)
		pos = sp.To
	}
	b.keep(docLen - pos)

	return Set{desc: Desc{spans: b.spans}, inserted: b.texts}, nil
}
