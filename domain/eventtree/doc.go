// Package eventtree implements the event counting index: a red-black tree
// keyed by event id and carrying a non-negative count per id.
//
// Nodes live in an arena and link to each other by index. Index 0 is the
// shared black sentinel that terminates every leaf and parents the root.
//
// A Tree is single-writer and performs no locking; callers that share a
// tree between goroutines must serialise whole operations themselves.
package eventtree
