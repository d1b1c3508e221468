// Package transaction glues documents and changes together: it takes a
// base rope plus a batch of independently authored per-range edits,
// folds them into a single change set, and applies that set once.
//
// A Transaction also threads opaque metadata through the edit.
// Annotations describe the transaction itself (its origin, a user
// event label) and pass through untouched. Effects carry document
// ranges; their positions are remapped through the combined change so
// they land where the edited content moved, and effects whose range
// was deleted are dropped.
package transaction
