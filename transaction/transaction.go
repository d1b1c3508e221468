package transaction

import (
	"time"

	"github.com/google/uuid"

	"github.com/textloom/textloom/change"
	"github.com/textloom/textloom/rope"
)

// AnnotationKey identifies one kind of transaction annotation.
type AnnotationKey string

// Effect is a positioned side payload riding on a transaction, such as
// a selection range or bracket-closing marker. From and To are offsets
// in the document the transaction starts from; after the transaction
// is built they refer to the resulting document.
type Effect struct {
	Kind  string
	From  int64
	To    int64
	Value any
}

// Transaction is one applied document update: the base document, the
// combined change set, and the document it produced. Transactions are
// built by New and never modified afterwards.
type Transaction struct {
	ID       uuid.UUID
	StartDoc rope.Rope
	Doc      rope.Rope
	Changes  change.Set
	Time     time.Time

	annotations map[AnnotationKey]any
	effects     []Effect
}

// Option configures a transaction under construction.
type Option func(*Transaction)

// WithAnnotation attaches a value under key.
func WithAnnotation(key AnnotationKey, value any) Option {
	return func(tr *Transaction) {
		if tr.annotations == nil {
			tr.annotations = make(map[AnnotationKey]any)
		}
		tr.annotations[key] = value
	}
}

// WithEffect attaches an effect whose range will be remapped through
// the transaction's changes.
func WithEffect(e Effect) Option {
	return func(tr *Transaction) {
		tr.effects = append(tr.effects, e)
	}
}

// New builds and applies a transaction over doc. Every spec is
// validated against doc's length; the specs are folded left to right
// into one combined change set, each later edit rebased over the
// changes folded in before it, and the combined set is applied once.
//
// Specs from independent sources may overlap after rebasing; folding
// resolves that by ordering earlier specs' insertions first.
func New(doc rope.Rope, specs []change.Spec, opts ...Option) (*Transaction, error) {
	docLen := int64(doc.Len())

	combined := change.Set{}
	if len(specs) > 0 {
		var err error
		combined, err = change.NewSet(docLen, specs[0])
		if err != nil {
			return nil, err
		}
		for _, sp := range specs[1:] {
			next, err := change.NewSet(docLen, sp)
			if err != nil {
				return nil, err
			}
			rebased, err := next.Map(combined.Desc(), false)
			if err != nil {
				return nil, err
			}
			combined, err = combined.Compose(rebased)
			if err != nil {
				return nil, err
			}
		}
	} else {
		var err error
		combined, err = change.NewSet(docLen)
		if err != nil {
			return nil, err
		}
	}

	newDoc, err := combined.Apply(doc)
	if err != nil {
		return nil, err
	}

	tr := &Transaction{
		ID:       uuid.New(),
		StartDoc: doc,
		Doc:      newDoc,
		Changes:  combined,
		Time:     time.Now(),
	}
	for _, opt := range opts {
		opt(tr)
	}

	if err := tr.remapEffects(); err != nil {
		return nil, err
	}
	return tr, nil
}

// remapEffects moves every effect's range into the result document.
// Effects whose content was deleted are dropped.
func (tr *Transaction) remapEffects() error {
	if len(tr.effects) == 0 {
		return nil
	}
	kept := tr.effects[:0]
	for _, e := range tr.effects {
		from, err := tr.Changes.MapPos(e.From, 1, change.MapTrackDel)
		if err != nil {
			return err
		}
		to, err := tr.Changes.MapPos(e.To, -1, change.MapTrackDel)
		if err != nil {
			return err
		}
		if from == change.Deleted || to == change.Deleted || from > to {
			continue
		}
		e.From, e.To = from, to
		kept = append(kept, e)
	}
	tr.effects = kept
	return nil
}

// Annotation returns the value stored under key, if any.
func (tr *Transaction) Annotation(key AnnotationKey) (any, bool) {
	v, ok := tr.annotations[key]
	return v, ok
}

// Effects returns the transaction's effects with ranges already
// remapped into the result document.
func (tr *Transaction) Effects() []Effect {
	return tr.effects
}

// DocChanged reports whether the transaction modified the document.
func (tr *Transaction) DocChanged() bool {
	return !tr.Changes.Empty()
}
