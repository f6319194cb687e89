package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/ValentinKolb/nanoKV/lib/ops"
)

// OpCode is the first byte of every binary frame.
type OpCode byte

const (
	OpGet    OpCode = 1
	OpSet    OpCode = 2
	OpDelete OpCode = 3
	OpFlush  OpCode = 4
)

func (c OpCode) String() string {
	switch c {
	case OpGet:
		return "GET"
	case OpSet:
		return "SET"
	case OpDelete:
		return "DELETE"
	case OpFlush:
		return "FLUSH"
	default:
		return fmt.Sprintf("OpCode(0x%02x)", byte(c))
	}
}

var (
	// ErrUnsupported is returned for operations that have no binary frame.
	ErrUnsupported = errors.New("operation unsupported for serialization")
	// ErrKeyTooLong is returned for keys that do not fit the 16 bit length field.
	ErrKeyTooLong = fmt.Errorf("key exceeds %d bytes", math.MaxUint16)
	// ErrValueTooLarge is returned for values that do not fit the 32 bit length field.
	ErrValueTooLarge = fmt.Errorf("value exceeds %d bytes", uint64(math.MaxUint32))
)

// Encode serializes op into a binary frame.
func Encode(op ops.Operation) ([]byte, error) {
	return AppendEncode(nil, op)
}

// AppendEncode appends the binary frame of op to dst and returns the extended
// slice. On error dst is returned unchanged.
//
// Frame layout: [opcode:1][keylen:2 BE][key][vallen:4 BE][value].
// Get and delete frames carry a zero length value, flush is the single opcode byte.
func AppendEncode(dst []byte, op ops.Operation) ([]byte, error) {
	switch o := op.(type) {
	case ops.Get:
		return appendFrame(dst, OpGet, o.Key, nil)
	case *ops.Get:
		return appendFrame(dst, OpGet, o.Key, nil)
	case ops.Set:
		return appendFrame(dst, OpSet, o.Key, o.Value)
	case *ops.Set:
		return appendFrame(dst, OpSet, o.Key, o.Value)
	case ops.Delete:
		return appendFrame(dst, OpDelete, o.Key, nil)
	case *ops.Delete:
		return appendFrame(dst, OpDelete, o.Key, nil)
	case ops.Flush, *ops.Flush:
		return append(dst, byte(OpFlush)), nil
	case nil:
		return dst, fmt.Errorf("%w: nil operation", ErrUnsupported)
	default:
		return dst, fmt.Errorf("%w: %s", ErrUnsupported, op.Kind())
	}
}

func appendFrame(dst []byte, code OpCode, key string, value []byte) ([]byte, error) {
	if len(key) > math.MaxUint16 {
		return dst, ErrKeyTooLong
	}
	if uint64(len(value)) > math.MaxUint32 {
		return dst, ErrValueTooLarge
	}

	dst = append(dst, byte(code))
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(key)))
	dst = append(dst, key...)
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(value)))
	dst = append(dst, value...)
	return dst, nil
}
