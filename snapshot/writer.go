package snapshot

import (
	"encoding/gob"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"

	"eventcounter/domain/eventtree"
)

type Writer struct {
	Dir string
}

// Path is where Write puts the snapshot.
func (w *Writer) Path() string {
	return filepath.Join(w.Dir, FileName)
}

// Write captures src at seq. The file is written next to the previous
// snapshot and renamed over it, so a crash leaves either the old or the
// new snapshot intact.
func (w *Writer) Write(seq uint64, src Source) error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return errors.Wrapf(err, "snapshot: create %s", w.Dir)
	}

	s := Snapshot{
		Seq:     seq,
		Created: time.Now(),
		Events:  make([]EventEntry, 0, src.Len()),
	}
	src.Ascend(func(ev eventtree.Event) bool {
		s.Events = append(s.Events, EventEntry{ID: ev.ID, Count: ev.Count})
		return true
	})

	tmp, err := os.CreateTemp(w.Dir, FileName+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "snapshot: create temp")
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(&s); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "snapshot: encode")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "snapshot: sync")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "snapshot: close")
	}
	return errors.Wrap(os.Rename(tmp.Name(), w.Path()), "snapshot: rename")
}
