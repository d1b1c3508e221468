// Package rope implements an immutable, balanced tree representation of
// document text.
//
// A Rope stores text as bounded string chunks held in the leaves of a
// shallow B+ tree. Every node carries aggregated metrics (byte count,
// line count, UTF-16 length) so that offset and line lookups run in
// O(log n). All operations are persistent: editing returns a new Rope
// that shares untouched subtrees with the original, and no node is ever
// mutated after it has been published. This makes ropes safe to share
// across goroutines and cheap to snapshot.
//
// Structural size constants (chunk bounds, branch fan-out) are injected
// through Tuning rather than fixed at package level; see DefaultTuning.
package rope
