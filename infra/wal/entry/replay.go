package entry

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/cockroachdb/errors"
)

var (
	ErrCRCMismatch  = errors.New("wal: crc mismatch")
	ErrNonMonotonic = errors.New("wal: non-monotonic seq")
)

type ReplayHandler func(*Record) error

// Replay feeds every record in dir to fn in log order and returns the last
// sequence number seen. A torn frame at the end of the newest segment that
// holds data is treated as the end of the log.
func Replay(dir string, fn ReplayHandler) (lastSeq uint64, err error) {
	files, err := listSegments(dir)
	if err != nil {
		return 0, err
	}
	lastData, err := lastNonEmpty(files)
	if err != nil {
		return 0, err
	}

	for i, path := range files {
		lastSeq, err = replaySegment(path, i >= lastData, lastSeq, fn)
		if err != nil {
			return lastSeq, err
		}
	}
	return lastSeq, nil
}

func replaySegment(path string, tail bool, lastSeq uint64, fn ReplayHandler) (uint64, error) {
	_, torn, err := scanFrames(path, func(rec *Record) error {
		if rec.Seq <= lastSeq {
			return errors.Wrapf(ErrNonMonotonic, "seq %d after %d in %s", rec.Seq, lastSeq, path)
		}
		lastSeq = rec.Seq
		return fn(rec)
	})
	if err != nil {
		return lastSeq, err
	}
	if torn && !tail {
		return lastSeq, errors.Wrapf(io.ErrUnexpectedEOF, "wal: %s after seq %d", path, lastSeq)
	}
	return lastSeq, nil
}

// lastNonEmpty returns the index of the newest segment with data, or -1.
func lastNonEmpty(files []string) (int, error) {
	for i := len(files) - 1; i >= 0; i-- {
		st, err := os.Stat(files[i])
		if err != nil {
			return 0, errors.Wrapf(err, "wal: stat %s", files[i])
		}
		if st.Size() > 0 {
			return i, nil
		}
	}
	return -1, nil
}

func readRecord(r io.Reader) (*Record, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}

	t := RecordType(header[0])
	seq := binary.BigEndian.Uint64(header[1:9])
	ts := binary.BigEndian.Uint64(header[9:17])
	l := binary.BigEndian.Uint32(header[17:21])

	data := make([]byte, int(l)+crcSize)
	if _, err := io.ReadFull(r, data); err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	payload := data[:l]
	crc := binary.BigEndian.Uint32(data[l:])

	if !CRC32Valid(append(header, payload...), crc) {
		return nil, ErrCRCMismatch
	}

	return &Record{
		Type: t,
		Seq:  seq,
		Time: int64(ts),
		Data: payload,
	}, nil
}
