// Package snapshot persists the event tree as a gob-encoded list of
// (id, count) pairs in ascending id order, tagged with the sequence number
// of the last mutation it includes.
//
// Because the pairs are sorted, loading a snapshot goes through the tree's
// linear-time bulk loader rather than one insertion per pair.
package snapshot
