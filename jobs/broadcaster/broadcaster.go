// Package broadcaster drains the change outbox into Kafka.
package broadcaster

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"go.uber.org/zap"

	"eventcounter/infra/kafka"
	"eventcounter/infra/logutil"
	"eventcounter/infra/metrics"
	exitwal "eventcounter/infra/wal/exit"
)

// Outbox is the part of the exit WAL the broadcaster drives.
type Outbox interface {
	ScanPending(fn func(rec exitwal.ExitRecord) error) error
	UpdateState(seq uint64, state exitwal.ExitState, retries uint32) error
}

type Broadcaster struct {
	outbox    Outbox
	publisher kafka.Publisher
	interval  time.Duration
	metrics   *metrics.Metrics
	log       *zap.Logger
}

// Event is the message published for every change.
type Event struct {
	V     int    `json:"v"`
	Op    string `json:"op"`
	ID    int64  `json:"id"`
	Count int64  `json:"count"`
	Seq   uint64 `json:"seq"`
}

// ------------------------------------------------
// CONSTRUCTOR
// ------------------------------------------------

func New(
	outbox Outbox,
	publisher kafka.Publisher,
	interval time.Duration,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Broadcaster {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broadcaster{
		outbox:    outbox,
		publisher: publisher,
		interval:  interval,
		metrics:   m,
		log:       logutil.Component(logger, "broadcaster"),
	}
}

// ------------------------------------------------
// LOOP
// ------------------------------------------------

// Run publishes pending changes every interval until ctx is done.
func (b *Broadcaster) Run(ctx context.Context) {
	b.log.Info("started", zap.Duration("interval", b.interval))

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.log.Info("stopped")
			return
		case <-ticker.C:
			b.ReplayOnce(ctx)
		}
	}
}

// ReplayOnce offers every unacknowledged change in seq order: NEW ones,
// FAILED ones due for a retry, and SENT ones left behind by a crash between
// send and ack. Messages carry an absolute count, so once a change to an id
// fails, later changes to that id wait for the next pass.
func (b *Broadcaster) ReplayOnce(ctx context.Context) {
	blocked := make(map[int64]struct{})

	err := b.outbox.ScanPending(func(rec exitwal.ExitRecord) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, ok := blocked[rec.Change.ID]; ok {
			b.log.Debug("held behind failed change",
				zap.Uint64("seq", rec.Seq), zap.Int64("id", rec.Change.ID))
			return nil
		}
		if !b.publish(ctx, rec) {
			blocked[rec.Change.ID] = struct{}{}
		}
		return nil
	})
	if err != nil && ctx.Err() == nil {
		b.log.Warn("outbox scan failed", zap.Error(err))
	}
}

// publish reports whether rec reached the broker.
func (b *Broadcaster) publish(ctx context.Context, rec exitwal.ExitRecord) bool {
	// 1️⃣ Mark SENT (idempotent)
	if err := b.outbox.UpdateState(rec.Seq, exitwal.StateSent, rec.Retries); err != nil {
		b.log.Warn("mark sent failed", zap.Uint64("seq", rec.Seq), zap.Error(err))
		return false
	}

	value, err := json.Marshal(Event{
		V:     1,
		Op:    rec.Change.Op.String(),
		ID:    rec.Change.ID,
		Count: rec.Change.Count,
		Seq:   rec.Seq,
	})
	if err != nil {
		b.log.Error("encode change", zap.Uint64("seq", rec.Seq), zap.Error(err))
		return false
	}
	key := []byte(strconv.FormatInt(rec.Change.ID, 10))

	// 2️⃣ Publish to Kafka
	if err := b.publisher.Publish(ctx, key, value); err != nil {
		b.metrics.ObservePublish(false)
		b.log.Debug("publish failed, will retry",
			zap.Uint64("seq", rec.Seq), zap.Uint32("retries", rec.Retries+1), zap.Error(err))
		_ = b.outbox.UpdateState(rec.Seq, exitwal.StateFailed, rec.Retries+1)
		return false
	}
	b.metrics.ObservePublish(true)

	// 3️⃣ Mark ACKED
	if err := b.outbox.UpdateState(rec.Seq, exitwal.StateAcked, rec.Retries); err != nil {
		b.log.Warn("mark acked failed", zap.Uint64("seq", rec.Seq), zap.Error(err))
	}
	return true
}

// ------------------------------------------------
// SHUTDOWN
// ------------------------------------------------

func (b *Broadcaster) Close() error {
	return b.publisher.Close()
}
