package entry

import (
	"encoding/binary"
	"os"
	"time"

	"github.com/cockroachdb/errors"
)

// Frame:
// [type:1][seq:8][time:8][len:4][payload][crc:4]
const (
	headerSize = 1 + 8 + 8 + 4
	crcSize    = 4
)

type Config struct {
	Dir             string
	SegmentSize     int64
	SegmentDuration time.Duration
	// SyncEveryWrite fsyncs the segment after each Append.
	SyncEveryWrite bool
}

type WAL struct {
	dir            string
	segSize        int64
	segDuration    time.Duration
	syncEveryWrite bool
	current        *segment
	segIndex       int
	lastRotate     time.Time
	onAppend       func()
}

// Open creates dir if needed, cuts a torn frame left by a crash off the
// newest segment and continues writing in a fresh segment after it.
func Open(cfg Config) (*WAL, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "wal: create %s", cfg.Dir)
	}

	files, err := listSegments(cfg.Dir)
	if err != nil {
		return nil, err
	}
	if err := repairTail(files); err != nil {
		return nil, err
	}
	index := 0
	if len(files) > 0 {
		if last, ok := segmentIndex(files[len(files)-1]); ok {
			index = last + 1
		}
	}

	seg, err := openSegment(cfg.Dir, index)
	if err != nil {
		return nil, err
	}

	return &WAL{
		dir:            cfg.Dir,
		segSize:        cfg.SegmentSize,
		segDuration:    cfg.SegmentDuration,
		syncEveryWrite: cfg.SyncEveryWrite,
		current:        seg,
		segIndex:       index,
		lastRotate:     time.Now(),
	}, nil
}

// OnAppend registers a hook invoked after every successful append.
func (w *WAL) OnAppend(fn func()) {
	w.onAppend = fn
}

func (w *WAL) Append(r *Record) error {
	if err := w.current.append(encodeFrame(r)); err != nil {
		return errors.Wrapf(err, "wal: append seq %d", r.Seq)
	}
	if w.syncEveryWrite {
		if err := w.current.sync(); err != nil {
			return errors.Wrapf(err, "wal: sync seq %d", r.Seq)
		}
	}
	if w.onAppend != nil {
		w.onAppend()
	}

	if w.shouldRotate() {
		return w.rotate()
	}
	return nil
}

func (w *WAL) Sync() error {
	return w.current.sync()
}

func (w *WAL) Close() error {
	if err := w.current.sync(); err != nil {
		_ = w.current.close()
		return err
	}
	return w.current.close()
}

func (w *WAL) shouldRotate() bool {
	if w.segSize > 0 && w.current.offset >= w.segSize {
		return true
	}
	return w.segDuration > 0 && time.Since(w.lastRotate) >= w.segDuration
}

func (w *WAL) rotate() error {
	_ = w.current.sync()
	_ = w.current.close()
	w.segIndex++

	seg, err := openSegment(w.dir, w.segIndex)
	if err != nil {
		return err
	}

	w.current = seg
	w.lastRotate = time.Now()
	return nil
}

// TruncateBefore removes closed segments whose records all have a
// sequence number <= seq. The segment being written is never removed.
func (w *WAL) TruncateBefore(seq uint64) error {
	files, err := listSegments(w.dir)
	if err != nil {
		return err
	}

	current := segmentPath(w.dir, w.segIndex)
	for _, path := range files {
		if path == current {
			continue
		}
		maxSeq, err := maxSeqInSegment(path)
		if err != nil {
			continue
		}
		if maxSeq <= seq {
			if err := os.Remove(path); err != nil {
				return errors.Wrapf(err, "wal: remove %s", path)
			}
		}
	}
	return nil
}

func encodeFrame(r *Record) []byte {
	payloadLen := uint32(len(r.Data))
	buf := make([]byte, headerSize+int(payloadLen)+crcSize)

	buf[0] = byte(r.Type)
	binary.BigEndian.PutUint64(buf[1:9], r.Seq)
	binary.BigEndian.PutUint64(buf[9:17], uint64(r.Time))
	binary.BigEndian.PutUint32(buf[17:21], payloadLen)
	copy(buf[headerSize:], r.Data)

	crc := CRC32(buf[:headerSize+int(payloadLen)])
	binary.BigEndian.PutUint32(buf[headerSize+int(payloadLen):], crc)
	return buf
}
