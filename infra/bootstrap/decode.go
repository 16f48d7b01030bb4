// Package bootstrap decodes the seed file used to bulk load the event tree.
//
// The file is a stream of unsigned decimal integers separated by any run of
// non-digit bytes. The first integer is the number of pairs n, followed by
// n (event id, count) pairs in strictly increasing id order.
package bootstrap

import (
	"bufio"
	"io"
	"os"

	"github.com/cockroachdb/errors"

	"eventcounter/domain/eventtree"
)

var (
	ErrEmpty     = errors.New("bootstrap: no pair count")
	ErrTruncated = errors.New("bootstrap: truncated pair list")
	ErrOverflow  = errors.New("bootstrap: integer overflows int64")
	ErrUnsorted  = errors.New("bootstrap: event ids not strictly increasing")
)

// DecodeFile opens path and decodes it.
func DecodeFile(path string) ([]eventtree.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "bootstrap: open %s", path)
	}
	defer f.Close()

	events, err := Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "bootstrap: %s", path)
	}
	return events, nil
}

// Decode reads the pair count and the pairs from r. Bytes after the last
// pair are ignored.
func Decode(r io.Reader) ([]eventtree.Event, error) {
	s := &scanner{r: bufio.NewReaderSize(r, 64<<10)}

	n, ok, err := s.next()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrEmpty
	}

	events := make([]eventtree.Event, 0, capHint(n))
	for i := int64(0); i < n; i++ {
		id, ok, err := s.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.Wrapf(ErrTruncated, "pair %d of %d: missing id", i+1, n)
		}
		count, ok, err := s.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.Wrapf(ErrTruncated, "pair %d of %d: missing count", i+1, n)
		}
		events = append(events, eventtree.Event{ID: id, Count: count})
	}
	return events, nil
}

// CheckSorted reports the first position where ids fail to strictly
// increase.
func CheckSorted(events []eventtree.Event) error {
	for i := 1; i < len(events); i++ {
		if events[i].ID <= events[i-1].ID {
			return errors.Wrapf(ErrUnsorted, "pair %d id %d follows %d",
				i+1, events[i].ID, events[i-1].ID)
		}
	}
	return nil
}

// capHint bounds the preallocation so a corrupt header can't force a huge
// allocation up front.
func capHint(n int64) int {
	const max = 1 << 20
	if n > max {
		return max
	}
	return int(n)
}

type scanner struct {
	r *bufio.Reader
}

// next returns the next integer in the stream. ok is false at a clean end
// of input.
func (s *scanner) next() (v int64, ok bool, err error) {
	for {
		c, err := s.r.ReadByte()
		if err == io.EOF {
			return v, ok, nil
		}
		if err != nil {
			return 0, false, errors.Wrap(err, "bootstrap: read")
		}
		if c >= '0' && c <= '9' {
			d := int64(c - '0')
			if v > (1<<63-1-d)/10 {
				return 0, false, ErrOverflow
			}
			v = v*10 + d
			ok = true
			continue
		}
		if ok {
			return v, true, nil
		}
	}
}
