// Package change describes document edits as run-length encoded spans
// and implements the algebra over them: composition, rebasing ("map"),
// position mapping, and inversion.
//
// A Desc is the length-only shape of an edit: an ordered sequence of
// Keep, Delete, and Insert runs, where Keep and Delete lengths are
// measured in the old document and Insert lengths in the new one. A
// Set pairs a Desc with the actual inserted text, one chunk per Insert
// run, and can be applied to or inverted against a rope.
//
// Values are immutable; every operation returns a new value in
// canonical form (adjacent same-kind runs merged, Delete before Insert
// inside a replacement). The algebra satisfies the laws collaborative
// editing and undo depend on: compose is associative, invert composed
// with apply restores the original document, and rebased concurrent
// edits converge on the same result in either compose order.
package change
