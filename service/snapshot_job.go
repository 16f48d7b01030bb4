package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"eventcounter/domain/eventtree"
	"eventcounter/snapshot"
)

// frozen is a point-in-time copy of the tree, so a snapshot can be encoded
// and written without holding the service lock.
type frozen []eventtree.Event

func (f frozen) Len() int { return len(f) }

func (f frozen) Ascend(fn func(eventtree.Event) bool) {
	for _, ev := range f {
		if !fn(ev) {
			return
		}
	}
}

// SnapshotNow writes a snapshot and then drops the WAL segments and acked
// outbox entries it makes redundant. It returns the snapshot's seq.
func (s *CounterService) SnapshotNow(w *snapshot.Writer) (uint64, error) {
	s.mu.Lock()
	seq := s.seqGen.Current()
	events := make(frozen, 0, s.tree.Len())
	s.tree.Ascend(func(ev eventtree.Event) bool {
		events = append(events, ev)
		return true
	})
	s.mu.Unlock()

	if err := w.Write(seq, events); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Truncate ENTRY WAL after snapshot
	if s.wal != nil {
		if err := s.wal.TruncateBefore(seq); err != nil {
			s.log.Warn("entry WAL truncation failed", zap.Uint64("seq", seq), zap.Error(err))
		}
	}
	// GC EXIT WAL (acked only)
	if s.outbox != nil {
		if err := s.outbox.TruncateAckedUpTo(seq); err != nil {
			s.log.Warn("outbox truncation failed", zap.Uint64("seq", seq), zap.Error(err))
		}
	}
	return seq, nil
}

// StartSnapshotJob snapshots every interval until ctx is done.
func (s *CounterService) StartSnapshotJob(ctx context.Context, w *snapshot.Writer, interval time.Duration) {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		var lastSeq uint64
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}

			if s.seqGen.Current() == lastSeq {
				continue
			}
			seq, err := s.SnapshotNow(w)
			if err != nil {
				s.log.Error("snapshot failed", zap.Error(err))
				continue
			}
			lastSeq = seq
			s.log.Debug("snapshot written", zap.Uint64("seq", seq), zap.String("path", w.Path()))
		}
	}()
}
