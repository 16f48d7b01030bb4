package snapshot

import (
	"encoding/gob"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventcounter/domain/eventtree"
)

func TestWriteLoadRoundTrip(t *testing.T) {
	src := eventtree.New()
	for id := int64(-50); id <= 50; id += 5 {
		src.Increase(id, id+100)
	}

	w := &Writer{Dir: filepath.Join(t.TempDir(), "snaps")}
	require.NoError(t, w.Write(77, src))

	dst := eventtree.New()
	seq, found, err := Load(w.Path(), dst)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, uint64(77), seq)
	require.NoError(t, dst.Validate())

	assert.Equal(t, src.Len(), dst.Len())
	assert.Equal(t, src.InRange(-100, 100), dst.InRange(-100, 100))
	src.Ascend(func(ev eventtree.Event) bool {
		assert.Equal(t, ev.Count, dst.Count(ev.ID))
		return true
	})

	// no temp files left behind
	entries, err := os.ReadDir(w.Dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteOverwrites(t *testing.T) {
	w := &Writer{Dir: t.TempDir()}
	tree := eventtree.New()
	tree.Increase(1, 1)
	require.NoError(t, w.Write(1, tree))
	tree.Increase(2, 2)
	require.NoError(t, w.Write(2, tree))

	dst := eventtree.New()
	seq, _, err := Load(w.Path(), dst)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), seq)
	assert.Equal(t, 2, dst.Len())
}

func TestLoadMissing(t *testing.T) {
	dst := eventtree.New()
	seq, found, err := Load(filepath.Join(t.TempDir(), FileName), dst)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Zero(t, seq)
}

func TestLoadRejectsUnsorted(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, gob.NewEncoder(f).Encode(&Snapshot{
		Seq:    3,
		Events: []EventEntry{{ID: 5, Count: 1}, {ID: 2, Count: 1}},
	}))
	require.NoError(t, f.Close())

	_, _, err = Load(path, eventtree.New())
	assert.True(t, errors.Is(err, ErrUnsorted))
}

func TestLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("not gob"), 0o644))
	_, _, err := Load(path, eventtree.New())
	assert.Error(t, err)
}
