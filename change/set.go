package change

import (
	"fmt"

	"github.com/textloom/textloom/rope"
)

// Set is a content-bearing change: a Desc plus the inserted text, one
// string per Insert run, in document order. The zero value is the
// empty change over an empty document. Set values are never mutated.
type Set struct {
	desc     Desc
	inserted []string
}

// Desc returns the length-only shape of the change.
func (s Set) Desc() Desc {
	return s.desc
}

// OldLen returns the length of the document the change applies to.
func (s Set) OldLen() int64 {
	return s.desc.OldLen()
}

// NewLen returns the length of the document the change produces.
func (s Set) NewLen() int64 {
	return s.desc.NewLen()
}

// Empty reports whether the change leaves the document untouched.
func (s Set) Empty() bool {
	return s.desc.Empty()
}

// String renders the shape of the change in run notation.
func (s Set) String() string {
	return s.desc.String()
}

// Apply runs the change against doc, returning the edited rope. The
// document length must match OldLen exactly. Edits are applied back to
// front so earlier offsets stay valid and untouched subtrees are
// shared with doc.
func (s Set) Apply(doc rope.Rope) (rope.Rope, error) {
	if int64(doc.Len()) != s.OldLen() {
		return rope.Rope{}, fmt.Errorf("%w: applying change over length %d to document of length %d",
			ErrLengthMismatch, s.OldLen(), doc.Len())
	}

	type edit struct {
		from, to int64
		text     string
	}
	var edits []edit
	s.IterChanges(func(fromA, toA, fromB, toB int64, text string) {
		edits = append(edits, edit{from: fromA, to: toA, text: text})
	})

	out := doc
	for i := len(edits) - 1; i >= 0; i-- {
		e := edits[i]
		var err error
		out, err = out.Replace(rope.ByteOffset(e.from), rope.ByteOffset(e.to), e.text)
		if err != nil {
			return rope.Rope{}, err
		}
	}
	return out, nil
}

// Invert returns the change that undoes this one. doc must be the
// document the change was applied to; the deleted stretches are read
// back from it to become the inverse's insertions.
func (s Set) Invert(doc rope.Rope) (Set, error) {
	if int64(doc.Len()) != s.OldLen() {
		return Set{}, fmt.Errorf("%w: inverting change over length %d against document of length %d",
			ErrLengthMismatch, s.OldLen(), doc.Len())
	}

	b := newRunBuilder(true)
	var posA int64
	for _, sec := range s.desc.sections() {
		if sec.keep {
			b.keep(sec.del)
			posA += sec.del
			continue
		}
		b.del(sec.ins)
		if sec.del > 0 {
			text, err := doc.Slice(rope.ByteOffset(posA), rope.ByteOffset(posA+sec.del))
			if err != nil {
				return Set{}, err
			}
			b.ins(sec.del, text)
		}
		posA += sec.del
	}
	return Set{desc: Desc{spans: b.spans}, inserted: b.texts}, nil
}

// Compose combines this change with one made to the document it
// produces, carrying the inserted text through. Text this change
// inserts and other deletes vanishes from the result.
func (s Set) Compose(other Set) (Set, error) {
	spans, texts, err := composeRuns(s.desc.spans, s.inserted, other.desc.spans, other.inserted)
	if err != nil {
		return Set{}, err
	}
	return Set{desc: Desc{spans: spans}, inserted: texts}, nil
}

// Map rebases this change over other, a concurrent change to the same
// original document. See Desc.Map for the position rules; the inserted
// text rides along unchanged.
func (s Set) Map(other Desc, before bool) (Set, error) {
	spans, texts, err := mapRuns(s.desc.spans, s.inserted, other.spans, before)
	if err != nil {
		return Set{}, err
	}
	return Set{desc: Desc{spans: spans}, inserted: texts}, nil
}

// MapPos maps a position through the change. See Desc.MapPos.
func (s Set) MapPos(pos int64, assoc int, mode MapMode) (int64, error) {
	return s.desc.MapPos(pos, assoc, mode)
}

// IterChanges calls fn for every replaced stretch, in document order.
// [fromA, toA) is the replaced range in the old document, [fromB, toB)
// the inserted range in the new one, and text the inserted content.
func (s Set) IterChanges(fn func(fromA, toA, fromB, toB int64, text string)) {
	var posA, posB int64
	ti := 0
	for _, sec := range s.desc.sections() {
		if sec.keep {
			posA += sec.del
			posB += sec.del
			continue
		}
		var text string
		if sec.ins > 0 {
			text = s.inserted[ti]
			ti++
		}
		fn(posA, posA+sec.del, posB, posB+sec.ins, text)
		posA += sec.del
		posB += sec.ins
	}
}

// IterGaps calls fn for every kept stretch, in document order. posA
// and posB are the stretch's start in the old and new documents.
func (s Set) IterGaps(fn func(posA, posB, length int64)) {
	var posA, posB int64
	for _, sec := range s.desc.sections() {
		if sec.keep {
			fn(posA, posB, sec.del)
			posA += sec.del
			posB += sec.del
			continue
		}
		posA += sec.del
		posB += sec.ins
	}
}
