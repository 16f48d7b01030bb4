package service

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"eventcounter/infra/bootstrap"
	"eventcounter/snapshot"
)

type RecoverConfig struct {
	SnapshotPath  string
	BootstrapFile string
	// VerifyBootstrap rejects a seed whose ids do not strictly increase.
	VerifyBootstrap bool
	WALDir          string
}

// Recover rebuilds state before traffic is accepted: the latest snapshot
// if there is one, otherwise the bootstrap seed, then the entry WAL on top.
func (s *CounterService) Recover(cfg RecoverConfig) error {
	var afterSeq uint64

	seq, found, err := s.loadSnapshot(cfg.SnapshotPath)
	if err != nil {
		return err
	}
	if found {
		afterSeq = seq
		s.log.Info("snapshot loaded", zap.String("path", cfg.SnapshotPath), zap.Uint64("seq", seq))
	} else if cfg.BootstrapFile != "" {
		events, err := bootstrap.DecodeFile(cfg.BootstrapFile)
		if err != nil {
			return err
		}
		if cfg.VerifyBootstrap {
			if err := bootstrap.CheckSorted(events); err != nil {
				return errors.Wrapf(err, "bootstrap %s", cfg.BootstrapFile)
			}
		}
		s.Bootstrap(events)
	} else {
		s.log.Info("no snapshot or bootstrap file, starting empty")
	}

	if cfg.WALDir == "" {
		return nil
	}
	_, err = s.ReplayFromWAL(cfg.WALDir, afterSeq)
	return err
}

func (s *CounterService) loadSnapshot(path string) (uint64, bool, error) {
	if path == "" {
		return 0, false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	seq, found, err := snapshot.Load(path, s.tree)
	if err != nil {
		return 0, false, err
	}
	if found {
		s.seqGen.Reset(seq)
		s.metrics.SetEvents(s.tree.Len())
	}
	return seq, found, nil
}
