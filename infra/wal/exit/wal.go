// Package exit is the egress outbox. Every applied mutation leaves a
// change record here until the broadcaster has published it downstream.
package exit

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
)

// -------------------- State --------------------

type ExitState uint8

const (
	StateNew ExitState = iota
	StateSent
	StateAcked
	StateFailed
)

func (s ExitState) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateSent:
		return "SENT"
	case StateAcked:
		return "ACKED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// -------------------- Record --------------------

type Op uint8

const (
	OpIncrease Op = iota + 1
	OpReduce
)

func (o Op) String() string {
	switch o {
	case OpIncrease:
		return "increase"
	case OpReduce:
		return "reduce"
	default:
		return "unknown"
	}
}

// Change is the observable effect of one mutation: the id touched and the
// count it was left with (0 when the id was removed).
type Change struct {
	Op    Op
	ID    int64
	Count int64
}

type ExitRecord struct {
	Seq         uint64
	State       ExitState
	Retries     uint32
	LastAttempt int64
	Change      Change
}

const recordSize = 1 + 4 + 8 + 1 + 8 + 8

var ErrBadRecord = errors.New("exit wal: invalid record length")

// binary encoding: [state:1][retries:4][lastAttempt:8][op:1][id:8][count:8]
func encodeRecord(r ExitRecord) []byte {
	buf := make([]byte, recordSize)
	buf[0] = byte(r.State)
	binary.BigEndian.PutUint32(buf[1:5], r.Retries)
	binary.BigEndian.PutUint64(buf[5:13], uint64(r.LastAttempt))
	buf[13] = byte(r.Change.Op)
	binary.BigEndian.PutUint64(buf[14:22], uint64(r.Change.ID))
	binary.BigEndian.PutUint64(buf[22:30], uint64(r.Change.Count))
	return buf
}

func decodeRecord(seq uint64, b []byte) (ExitRecord, error) {
	if len(b) != recordSize {
		return ExitRecord{}, errors.Wrapf(ErrBadRecord, "seq %d: %d bytes", seq, len(b))
	}
	return ExitRecord{
		Seq:         seq,
		State:       ExitState(b[0]),
		Retries:     binary.BigEndian.Uint32(b[1:5]),
		LastAttempt: int64(binary.BigEndian.Uint64(b[5:13])),
		Change: Change{
			Op:    Op(b[13]),
			ID:    int64(binary.BigEndian.Uint64(b[14:22])),
			Count: int64(binary.BigEndian.Uint64(b[22:30])),
		},
	}, nil
}

// -------------------- WAL --------------------

type ExitWAL struct {
	db *pebble.DB
}

func Open(dir string) (*ExitWAL, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "exit wal: open %s", dir)
	}
	return &ExitWAL{db: db}, nil
}

func (w *ExitWAL) Close() error {
	return w.db.Close()
}

// -------------------- API --------------------

// PutNew records a change that has not been published yet.
func (w *ExitWAL) PutNew(seq uint64, c Change) error {
	rec := ExitRecord{State: StateNew, Change: c}
	return w.db.Set(keyFor(seq), encodeRecord(rec), pebble.Sync)
}

// UpdateState moves a record to state after a send attempt.
func (w *ExitWAL) UpdateState(seq uint64, state ExitState, retries uint32) error {
	rec, err := w.Get(seq)
	if err != nil {
		return err
	}
	rec.State = state
	rec.Retries = retries
	rec.LastAttempt = time.Now().UnixNano()
	return w.db.Set(keyFor(seq), encodeRecord(rec), pebble.Sync)
}

func (w *ExitWAL) Delete(seq uint64) error {
	return w.db.Delete(keyFor(seq), pebble.Sync)
}

// Get returns the current record for seq; pebble.ErrNotFound if absent.
func (w *ExitWAL) Get(seq uint64) (ExitRecord, error) {
	val, closer, err := w.db.Get(keyFor(seq))
	if err != nil {
		return ExitRecord{}, err
	}
	defer closer.Close()

	return decodeRecord(seq, val)
}

// -------------------- Scan --------------------

// ScanByState iterates, in seq order, all records in the given state.
func (w *ExitWAL) ScanByState(state ExitState, fn func(rec ExitRecord) error) error {
	return w.scan(func(rec ExitRecord) bool { return rec.State == state }, fn)
}

// ScanPending iterates, in seq order, every record not yet ACKED whatever
// its state. The broadcaster drains the outbox through it so changes to one
// id are always offered in the order they were applied.
func (w *ExitWAL) ScanPending(fn func(rec ExitRecord) error) error {
	return w.scan(func(rec ExitRecord) bool { return rec.State != StateAcked }, fn)
}

func (w *ExitWAL) scan(keep func(ExitRecord) bool, fn func(rec ExitRecord) error) error {
	iter, err := w.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix),
		UpperBound: []byte(keyUpper),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		seq, err := parseKey(iter.Key())
		if err != nil {
			return err
		}
		rec, err := decodeRecord(seq, iter.Value())
		if err != nil {
			return err
		}
		if !keep(rec) {
			continue
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return iter.Error()
}

// TruncateAckedUpTo deletes ACKED records with seq <= upTo.
func (w *ExitWAL) TruncateAckedUpTo(upTo uint64) error {
	batch := w.db.NewBatch()
	defer batch.Close()

	err := w.ScanByState(StateAcked, func(rec ExitRecord) error {
		if rec.Seq > upTo {
			return nil
		}
		return batch.Delete(keyFor(rec.Seq), nil)
	})
	if err != nil {
		return err
	}
	return batch.Commit(pebble.Sync)
}

// -------------------- Helpers --------------------

const (
	keyPrefix = "change/"
	keyUpper  = "change/~"
)

func keyFor(seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", keyPrefix, seq))
}

func parseKey(b []byte) (uint64, error) {
	var seq uint64
	if _, err := fmt.Sscanf(string(b), keyPrefix+"%d", &seq); err != nil {
		return 0, errors.Wrapf(err, "exit wal: bad key %q", b)
	}
	return seq, nil
}
