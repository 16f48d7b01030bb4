package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventcounter/domain/eventtree"
	"eventcounter/infra/metrics"
	"eventcounter/infra/sequence"
	entrywal "eventcounter/infra/wal/entry"
	"eventcounter/snapshot"
)

type dirs struct {
	wal, snap, seed string
}

func newDirs(t *testing.T) dirs {
	root := t.TempDir()
	d := dirs{
		wal:  filepath.Join(root, "wal"),
		snap: filepath.Join(root, "snap"),
		seed: filepath.Join(root, "seed.txt"),
	}
	require.NoError(t, os.WriteFile(d.seed, []byte("3\n1 5\n3 7\n8 2\n"), 0o644))
	return d
}

func openService(t *testing.T, d dirs) (*CounterService, *entrywal.WAL) {
	t.Helper()
	svc := NewCounterService(eventtree.New(), sequence.New(0), nil, nil, metrics.New(), nil)
	require.NoError(t, svc.Recover(RecoverConfig{
		SnapshotPath:  filepath.Join(d.snap, snapshot.FileName),
		BootstrapFile: d.seed,
		WALDir:        d.wal,
	}))

	w, err := entrywal.Open(entrywal.Config{Dir: d.wal, SegmentSize: 1 << 20})
	require.NoError(t, err)
	svc.wal = w
	return svc, w
}

func TestRecoverFromBootstrapAndWAL(t *testing.T) {
	ctx := context.Background()
	d := newDirs(t)

	svc, w := openService(t, d)
	_, err := svc.Increase(ctx, 3, 3)
	require.NoError(t, err)
	_, err = svc.Reduce(ctx, 1, 5)
	require.NoError(t, err)
	_, err = svc.Increase(ctx, 20, 4)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	restarted, w2 := openService(t, d)
	defer w2.Close()

	c, _ := restarted.Count(ctx, 3)
	assert.Equal(t, int64(10), c)
	c, _ = restarted.Count(ctx, 1)
	assert.Equal(t, int64(0), c)
	c, _ = restarted.Count(ctx, 20)
	assert.Equal(t, int64(4), c)
	assert.Equal(t, uint64(3), restarted.seqGen.Current())
}

func TestRecoverFromSnapshotSkipsCoveredRecords(t *testing.T) {
	ctx := context.Background()
	d := newDirs(t)

	svc, w := openService(t, d)
	_, err := svc.Increase(ctx, 100, 1)
	require.NoError(t, err)

	sw := &snapshot.Writer{Dir: d.snap}
	seq, err := svc.SnapshotNow(sw)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), seq)

	_, err = svc.Increase(ctx, 100, 1)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	// The seed must be ignored once a snapshot exists.
	require.NoError(t, os.WriteFile(d.seed, []byte("1\n555 1\n"), 0o644))

	restarted, w2 := openService(t, d)
	defer w2.Close()

	c, _ := restarted.Count(ctx, 100)
	assert.Equal(t, int64(2), c)
	c, _ = restarted.Count(ctx, 555)
	assert.Equal(t, int64(0), c)
	c, _ = restarted.Count(ctx, 3)
	assert.Equal(t, int64(7), c)
	assert.Equal(t, uint64(2), restarted.seqGen.Current())
}

func TestRecoverRejectsUnsortedSeedWhenVerifying(t *testing.T) {
	d := newDirs(t)
	require.NoError(t, os.WriteFile(d.seed, []byte("2\n9 1\n4 1\n"), 0o644))

	svc := NewCounterService(eventtree.New(), sequence.New(0), nil, nil, nil, nil)
	err := svc.Recover(RecoverConfig{BootstrapFile: d.seed, VerifyBootstrap: true})
	require.Error(t, err)
}

func TestSnapshotNowTruncates(t *testing.T) {
	log := &memLog{}
	outbox := &memOutbox{}
	svc := newTestService(log, outbox)
	for i := int64(0); i < 5; i++ {
		_, err := svc.Increase(context.Background(), i, 1)
		require.NoError(t, err)
	}

	seq, err := svc.SnapshotNow(&snapshot.Writer{Dir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, uint64(5), seq)
	assert.Equal(t, uint64(5), log.truncated)
	assert.Equal(t, uint64(5), outbox.acked)
}

func TestStartSnapshotJob(t *testing.T) {
	svc := newTestService(nil, nil)
	_, err := svc.Increase(context.Background(), 1, 1)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w := &snapshot.Writer{Dir: t.TempDir()}
	svc.StartSnapshotJob(ctx, w, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		_, err := os.Stat(w.Path())
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
}
