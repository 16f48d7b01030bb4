package entry

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
)

// scanFrames feeds every complete frame of a segment to fn and returns the
// offset just past the last one. torn is set when bytes after that offset
// stop short of a whole frame, as left by a crash mid-append.
func scanFrames(path string, fn func(*Record) error) (end int64, torn bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, false, errors.Wrapf(err, "wal: open %s", path)
	}
	defer f.Close()

	for {
		rec, err := readRecord(f)
		switch {
		case err == io.EOF:
			return end, false, nil
		case err == io.ErrUnexpectedEOF:
			return end, true, nil
		case err != nil:
			return end, false, errors.Wrapf(err, "wal: %s at offset %d", path, end)
		}
		end += int64(headerSize + len(rec.Data) + crcSize)

		if fn != nil {
			if err := fn(rec); err != nil {
				return end, false, err
			}
		}
	}
}

// maxSeqInSegment returns the highest seq among the complete frames of a
// segment. Only snapshot-based truncation uses it.
func maxSeqInSegment(path string) (uint64, error) {
	var max uint64
	_, _, err := scanFrames(path, func(r *Record) error {
		if r.Seq > max {
			max = r.Seq
		}
		return nil
	})
	return max, err
}

// repairTail cuts a torn frame off the newest segment that holds data, so a
// segment created after it never hides the tear from Replay.
func repairTail(files []string) error {
	for i := len(files) - 1; i >= 0; i-- {
		st, err := os.Stat(files[i])
		if err != nil {
			return errors.Wrapf(err, "wal: stat %s", files[i])
		}
		if st.Size() == 0 {
			continue
		}

		end, torn, err := scanFrames(files[i], nil)
		if err != nil {
			return err
		}
		if torn {
			if err := os.Truncate(files[i], end); err != nil {
				return errors.Wrapf(err, "wal: truncate torn tail of %s", files[i])
			}
		}
		return nil
	}
	return nil
}
