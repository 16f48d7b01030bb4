package service

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	entrywal "eventcounter/infra/wal/entry"
)

/*
ReplayFromWAL re-applies logged mutations on top of the current tree.

IMPORTANT:
- This MUST run before accepting traffic
- Records with seq <= afterSeq are already part of the loaded snapshot
- Replayed mutations are neither re-logged nor re-published
*/
func (s *CounterService) ReplayFromWAL(walDir string, afterSeq uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	applied := 0
	lastSeq, err := entrywal.Replay(walDir, func(rec *entrywal.Record) error {
		if rec.Seq <= afterSeq {
			return nil
		}
		m, err := entrywal.DecodeMutation(rec.Data)
		if err != nil {
			return errors.Wrapf(err, "replay seq %d", rec.Seq)
		}
		switch rec.Type {
		case entrywal.RecordIncrease, entrywal.RecordReduce:
			s.apply(rec.Type, m.ID, m.Delta)
			applied++
		default:
			s.log.Warn("skipping unknown WAL record",
				zap.Uint64("seq", rec.Seq), zap.Uint8("type", uint8(rec.Type)))
		}
		return nil
	})
	if err != nil {
		return lastSeq, err
	}

	// Resume sequencing AFTER replay
	if afterSeq > lastSeq {
		lastSeq = afterSeq
	}
	s.seqGen.Reset(lastSeq)

	s.log.Info("WAL replay completed",
		zap.Uint64("last_seq", lastSeq), zap.Int("applied", applied), zap.Int("events", s.tree.Len()))
	return lastSeq, nil
}
