package entry

import (
	"time"

	"github.com/cockroachdb/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

type RecordType uint8

const (
	RecordIncrease RecordType = iota + 1
	RecordReduce
)

func (t RecordType) String() string {
	switch t {
	case RecordIncrease:
		return "increase"
	case RecordReduce:
		return "reduce"
	default:
		return "unknown"
	}
}

type Record struct {
	Type RecordType
	Seq  uint64
	Time int64
	Data []byte
}

func NewRecord(t RecordType, seq uint64, data []byte) *Record {
	return &Record{
		Type: t,
		Seq:  seq,
		Time: time.Now().UnixNano(),
		Data: data,
	}
}

// Mutation is the payload of an increase or reduce record.
type Mutation struct {
	ID    int64
	Delta int64
}

const (
	fieldID    protowire.Number = 1
	fieldDelta protowire.Number = 2
)

var ErrBadPayload = errors.New("wal: malformed mutation payload")

// EncodeMutation encodes m in protobuf wire format: field 1 is the event id
// as a zigzag varint, field 2 the delta as a plain varint.
func EncodeMutation(m Mutation) []byte {
	b := make([]byte, 0, 22)
	b = protowire.AppendTag(b, fieldID, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(m.ID))
	b = protowire.AppendTag(b, fieldDelta, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Delta))
	return b
}

// DecodeMutation is the inverse of EncodeMutation. Unknown fields are
// skipped.
func DecodeMutation(b []byte) (Mutation, error) {
	var m Mutation
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Mutation{}, errors.Wrap(ErrBadPayload, protowire.ParseError(n).Error())
		}
		b = b[n:]

		if typ != protowire.VarintType {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return Mutation{}, errors.Wrap(ErrBadPayload, protowire.ParseError(n).Error())
			}
			b = b[n:]
			continue
		}

		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return Mutation{}, errors.Wrap(ErrBadPayload, protowire.ParseError(n).Error())
		}
		b = b[n:]

		switch num {
		case fieldID:
			m.ID = protowire.DecodeZigZag(v)
		case fieldDelta:
			m.Delta = int64(v)
		}
	}
	return m, nil
}
