package snapshot

import (
	"time"

	"eventcounter/domain/eventtree"
)

const FileName = "snapshot.bin"

type Snapshot struct {
	Seq     uint64
	Created time.Time
	Events  []EventEntry
}

type EventEntry struct {
	ID    int64
	Count int64
}

// Source is the read side of the tree needed to take a snapshot.
type Source interface {
	Len() int
	Ascend(fn func(eventtree.Event) bool)
}

// Sink is the write side of the tree needed to restore one.
type Sink interface {
	BuildFromSorted(events []eventtree.Event)
}
