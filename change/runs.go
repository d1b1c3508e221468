package change

import "fmt"

// runBuilder accumulates runs in canonical form: zero-length runs are
// dropped, adjacent same-kind runs merge, and a Delete emitted right
// after an Insert is moved in front of it so replacements always read
// delete-then-insert.
type runBuilder struct {
	spans    []span
	texts    []string
	withText bool
}

func newRunBuilder(withText bool) *runBuilder {
	return &runBuilder{withText: withText}
}

func (b *runBuilder) keep(n int64) {
	if n <= 0 {
		return
	}
	if k := len(b.spans); k > 0 && b.spans[k-1].kind == SpanKeep {
		b.spans[k-1].n += n
		return
	}
	b.spans = append(b.spans, span{kind: SpanKeep, n: n})
}

func (b *runBuilder) del(n int64) {
	if n <= 0 {
		return
	}
	k := len(b.spans)
	switch {
	case k > 0 && b.spans[k-1].kind == SpanDelete:
		b.spans[k-1].n += n
	case k > 0 && b.spans[k-1].kind == SpanInsert:
		if k > 1 && b.spans[k-2].kind == SpanDelete {
			b.spans[k-2].n += n
		} else {
			ins := b.spans[k-1]
			b.spans[k-1] = span{kind: SpanDelete, n: n}
			b.spans = append(b.spans, ins)
		}
	default:
		b.spans = append(b.spans, span{kind: SpanDelete, n: n})
	}
}

func (b *runBuilder) ins(n int64, text string) {
	if n <= 0 {
		return
	}
	if k := len(b.spans); k > 0 && b.spans[k-1].kind == SpanInsert {
		b.spans[k-1].n += n
		if b.withText {
			b.texts[len(b.texts)-1] += text
		}
		return
	}
	b.spans = append(b.spans, span{kind: SpanInsert, n: n})
	if b.withText {
		b.texts = append(b.texts, text)
	}
}

func (b *runBuilder) desc() Desc {
	return Desc{spans: b.spans}
}

// runReader consumes a run sequence with partial advancement, slicing
// the matching insert text along the way when present.
type runReader struct {
	spans   []span
	texts   []string
	i       int   // current span
	off     int64 // consumed bytes within the current span
	textIdx int   // inserts passed so far
}

func newRunReader(spans []span, texts []string) *runReader {
	return &runReader{spans: spans, texts: texts}
}

func (r *runReader) done() bool {
	return r.i >= len(r.spans)
}

func (r *runReader) kind() SpanKind {
	return r.spans[r.i].kind
}

func (r *runReader) rem() int64 {
	return r.spans[r.i].n - r.off
}

// text returns the next n bytes of the current insert run's content.
func (r *runReader) text(n int64) string {
	if r.texts == nil {
		return ""
	}
	t := r.texts[r.textIdx]
	return t[r.off : r.off+n]
}

func (r *runReader) advance(n int64) {
	r.off += n
	if r.off >= r.spans[r.i].n {
		if r.spans[r.i].kind == SpanInsert {
			r.textIdx++
		}
		r.i++
		r.off = 0
	}
}

func runsOldLen(spans []span) int64 {
	var n int64
	for _, s := range spans {
		if s.kind != SpanInsert {
			n += s.n
		}
	}
	return n
}

func runsNewLen(spans []span) int64 {
	var n int64
	for _, s := range spans {
		if s.kind != SpanDelete {
			n += s.n
		}
	}
	return n
}

// composeRuns merges change a (old -> mid) with change b (mid -> new)
// into a single change old -> new. Positions a deletes are gone before
// b sees the document, so a's deletions pass straight through; b's
// insertions likewise exist only in the final document. Everything
// else is matched up positionally in the mid document: an insertion of
// a that b deletes cancels entirely.
func composeRuns(a []span, aTexts []string, b []span, bTexts []string) ([]span, []string, error) {
	if runsNewLen(a) != runsOldLen(b) {
		return nil, nil, fmt.Errorf("%w: composing change ending at length %d with change starting at length %d",
			ErrLengthMismatch, runsNewLen(a), runsOldLen(b))
	}

	ra := newRunReader(a, aTexts)
	rb := newRunReader(b, bTexts)
	out := newRunBuilder(aTexts != nil || bTexts != nil)

	for {
		if !ra.done() && ra.kind() == SpanDelete {
			out.del(ra.rem())
			ra.advance(ra.rem())
			continue
		}
		if !rb.done() && rb.kind() == SpanInsert {
			n := rb.rem()
			out.ins(n, rb.text(n))
			rb.advance(n)
			continue
		}
		if ra.done() && rb.done() {
			break
		}
		if ra.done() || rb.done() {
			return nil, nil, fmt.Errorf("%w: ragged compose", ErrLengthMismatch)
		}

		n := min(ra.rem(), rb.rem())
		switch {
		case ra.kind() == SpanKeep && rb.kind() == SpanKeep:
			out.keep(n)
		case ra.kind() == SpanKeep && rb.kind() == SpanDelete:
			out.del(n)
		case ra.kind() == SpanInsert && rb.kind() == SpanKeep:
			out.ins(n, ra.text(n))
		case ra.kind() == SpanInsert && rb.kind() == SpanDelete:
			// a's insertion immediately deleted by b: cancels.
		}
		ra.advance(n)
		rb.advance(n)
	}

	return out.spans, out.texts, nil
}

// mapRuns rebases change a over concurrent change b, both made against
// the same original document. The result applies to the document b
// produced. Stretches b deleted disappear from a's frame; stretches b
// inserted turn into kept runs. When both changes insert at the same
// point, before gives a's insertion the earlier position.
func mapRuns(a []span, aTexts []string, b []span, before bool) ([]span, []string, error) {
	if runsOldLen(a) != runsOldLen(b) {
		return nil, nil, fmt.Errorf("%w: mapping change over length %d through change over length %d",
			ErrLengthMismatch, runsOldLen(a), runsOldLen(b))
	}

	ra := newRunReader(a, aTexts)
	rb := newRunReader(b, nil)
	out := newRunBuilder(aTexts != nil)

	for {
		aIns := !ra.done() && ra.kind() == SpanInsert
		bIns := !rb.done() && rb.kind() == SpanInsert
		if aIns && (before || !bIns) {
			n := ra.rem()
			out.ins(n, ra.text(n))
			ra.advance(n)
			continue
		}
		if bIns {
			out.keep(rb.rem())
			rb.advance(rb.rem())
			continue
		}
		if ra.done() && rb.done() {
			break
		}
		if ra.done() || rb.done() {
			return nil, nil, fmt.Errorf("%w: ragged map", ErrLengthMismatch)
		}

		n := min(ra.rem(), rb.rem())
		switch {
		case ra.kind() == SpanKeep && rb.kind() == SpanKeep:
			out.keep(n)
		case ra.kind() == SpanDelete && rb.kind() == SpanKeep:
			out.del(n)
			// Keep over deleted content vanishes; Delete over deleted
			// content is already done.
		}
		ra.advance(n)
		rb.advance(n)
	}

	return out.spans, out.texts, nil
}
