// Package sequence hands out the mutation sequence numbers that order the
// entry WAL, the outbox and snapshots.
package sequence

import "sync/atomic"

// Sequencer generates strictly monotonic sequence IDs.
type Sequencer struct {
	last atomic.Uint64
}

// New creates a sequencer whose first Next returns start+1.
func New(start uint64) *Sequencer {
	s := &Sequencer{}
	s.last.Store(start)
	return s
}

// Next returns the next sequence ID.
func (s *Sequencer) Next() uint64 {
	return s.last.Add(1)
}

// Current returns the last issued sequence.
func (s *Sequencer) Current() uint64 {
	return s.last.Load()
}

// Reset moves the sequencer to v. Only used while recovering, when the
// snapshot or WAL replay tells us where numbering left off.
func (s *Sequencer) Reset(v uint64) {
	s.last.Store(v)
}
