package service

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"eventcounter/domain/eventtree"
	"eventcounter/infra/logutil"
	"eventcounter/infra/metrics"
	"eventcounter/infra/sequence"
	entrywal "eventcounter/infra/wal/entry"
	exitwal "eventcounter/infra/wal/exit"
)

var ErrNegativeDelta = errors.New("service: delta must not be negative")

// EntryLog is the durable intent log written before a mutation is applied.
type EntryLog interface {
	Append(*entrywal.Record) error
	TruncateBefore(seq uint64) error
}

// Outbox receives the outcome of every applied mutation.
type Outbox interface {
	PutNew(seq uint64, c exitwal.Change) error
	TruncateAckedUpTo(seq uint64) error
}

/*
CounterService is the ONLY write entry point into the event tree.

The tree is single-writer; every public method takes mu for its whole
duration, so the service may be shared by concurrent transports.
*/
type CounterService struct {
	mu   sync.Mutex
	tree *eventtree.Tree

	seqGen  *sequence.Sequencer
	wal     EntryLog
	outbox  Outbox
	metrics *metrics.Metrics
	log     *zap.Logger
}

// NewCounterService wires all dependencies. wal and outbox may be nil, in
// which case mutations are neither logged nor published.
func NewCounterService(
	tree *eventtree.Tree,
	seqGen *sequence.Sequencer,
	wal EntryLog,
	outbox Outbox,
	m *metrics.Metrics,
	logger *zap.Logger,
) *CounterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CounterService{
		tree:    tree,
		seqGen:  seqGen,
		wal:     wal,
		outbox:  outbox,
		metrics: m,
		log:     logutil.Component(logger, "service"),
	}
}

//
// ──────────────────────────────────────────────────────────
// Commands
// ──────────────────────────────────────────────────────────
//

// Increase adds delta to id and returns the new count.
func (s *CounterService) Increase(ctx context.Context, id, delta int64) (int64, error) {
	return s.mutate(ctx, entrywal.RecordIncrease, id, delta)
}

// Reduce subtracts delta from id and returns the new count, or 0 when the
// id was removed or never existed.
func (s *CounterService) Reduce(ctx context.Context, id, delta int64) (int64, error) {
	return s.mutate(ctx, entrywal.RecordReduce, id, delta)
}

func (s *CounterService) mutate(ctx context.Context, typ entrywal.RecordType, id, delta int64) (int64, error) {
	if delta < 0 {
		return 0, errors.Wrapf(ErrNegativeDelta, "%s %d by %d", typ, id, delta)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.ObserveOp(typ.String())

	// Reducing an absent id changes nothing; keep it out of the log.
	if typ == entrywal.RecordReduce && !s.tree.Contains(id) {
		return 0, nil
	}

	seq := s.seqGen.Next()
	if s.wal != nil {
		payload := entrywal.EncodeMutation(entrywal.Mutation{ID: id, Delta: delta})
		if err := s.wal.Append(entrywal.NewRecord(typ, seq, payload)); err != nil {
			return 0, errors.Wrapf(err, "service: log %s %d", typ, id)
		}
	}

	count := s.apply(typ, id, delta)

	if s.outbox != nil {
		change := exitwal.Change{Op: opFor(typ), ID: id, Count: count}
		if err := s.outbox.PutNew(seq, change); err != nil {
			// The mutation is already durable in the entry WAL.
			s.log.Warn("outbox write failed",
				zap.Uint64("seq", seq), zap.Int64("id", id), zap.Error(err))
		}
	}
	return count, nil
}

// apply runs a mutation against the tree. Callers hold mu.
func (s *CounterService) apply(typ entrywal.RecordType, id, delta int64) int64 {
	var count int64
	switch typ {
	case entrywal.RecordIncrease:
		count = s.tree.Increase(id, delta)
	case entrywal.RecordReduce:
		count = s.tree.Reduce(id, delta)
	}
	s.metrics.SetEvents(s.tree.Len())
	return count
}

func opFor(typ entrywal.RecordType) exitwal.Op {
	if typ == entrywal.RecordReduce {
		return exitwal.OpReduce
	}
	return exitwal.OpIncrease
}

// Bootstrap replaces the tree with a sorted seed. It must run before the
// service accepts traffic.
func (s *CounterService) Bootstrap(events []eventtree.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tree.BuildFromSorted(events)
	s.metrics.SetEvents(s.tree.Len())
	s.log.Info("tree bootstrapped", zap.Int("events", len(events)))
}

//
// ──────────────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────────────
//

func (s *CounterService) Count(ctx context.Context, id int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.ObserveOp("count")
	return s.tree.Count(id), nil
}

func (s *CounterService) InRange(ctx context.Context, lo, hi int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.ObserveOp("inrange")
	return s.tree.InRange(lo, hi), nil
}

// Next returns the closest event above id, or the zero Event if none.
func (s *CounterService) Next(ctx context.Context, id int64) (eventtree.Event, error) {
	if err := ctx.Err(); err != nil {
		return eventtree.Event{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.ObserveOp("next")
	ev, _ := s.tree.Next(id)
	return ev, nil
}

// Prev returns the closest event below id, or the zero Event if none.
func (s *CounterService) Prev(ctx context.Context, id int64) (eventtree.Event, error) {
	if err := ctx.Err(); err != nil {
		return eventtree.Event{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.ObserveOp("previous")
	ev, _ := s.tree.Prev(id)
	return ev, nil
}

// Len returns the number of distinct ids held.
func (s *CounterService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Len()
}
