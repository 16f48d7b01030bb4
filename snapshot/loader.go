package snapshot

import (
	"encoding/gob"
	"os"

	"github.com/cockroachdb/errors"

	"eventcounter/domain/eventtree"
)

var ErrUnsorted = errors.New("snapshot: events out of order")

// Load restores the snapshot at path into dst and returns its sequence
// number. A missing file is not an error: it returns (0, false, nil).
func Load(path string, dst Sink) (seq uint64, found bool, err error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrapf(err, "snapshot: open %s", path)
	}
	defer f.Close()

	var s Snapshot
	if err := gob.NewDecoder(f).Decode(&s); err != nil {
		return 0, false, errors.Wrapf(err, "snapshot: decode %s", path)
	}

	events := make([]eventtree.Event, len(s.Events))
	for i, e := range s.Events {
		if i > 0 && e.ID <= s.Events[i-1].ID {
			return 0, false, errors.Wrapf(ErrUnsorted, "%s: id %d after %d", path, e.ID, s.Events[i-1].ID)
		}
		events[i] = eventtree.Event{ID: e.ID, Count: e.Count}
	}
	dst.BuildFromSorted(events)

	return s.Seq, true, nil
}
