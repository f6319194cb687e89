package serializer

import (
	"encoding/binary"
	"fmt"

	"github.com/ValentinKolb/nanoKV/rpc/common"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency
func NewBinarySerializer() IRPCSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IRPCSerializer using a custom binary format:
//
//	[msgType:1][flags:2 BE][fields present according to flags, in flag order]
//
// Strings and byte slices are prefixed with a 4 byte length, lists with a
// 4 byte element count.
type binarySerializerImpl struct {
}

// Bit flags to indicate which optional fields are present
const (
	hasKey      uint16 = 1 << 0
	hasValue    uint16 = 1 << 1
	hasOld      uint16 = 1 << 2
	hasKeys     uint16 = 1 << 3
	hasValues   uint16 = 1 << 4
	hasCount    uint16 = 1 << 5
	hasOk       uint16 = 1 << 6
	hasErr      uint16 = 1 << 7
	hasCode     uint16 = 1 << 8
	hasValueSet uint16 = 1 << 9
	hasOldSet   uint16 = 1 << 10
)

const binaryHeaderSize = 3

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	result := make([]byte, binaryHeaderSize, b.sizeBytes(msg))
	result[0] = byte(msg.MsgType)

	var flags uint16

	if msg.Key != "" {
		flags |= hasKey
		result = appendBytes(result, []byte(msg.Key))
	}
	if msg.Value != nil {
		flags |= hasValue
		result = appendBytes(result, msg.Value)
	}
	if msg.Old != nil {
		flags |= hasOld
		result = appendBytes(result, msg.Old)
	}
	if msg.Keys != nil {
		flags |= hasKeys
		result = binary.BigEndian.AppendUint32(result, uint32(len(msg.Keys)))
		for _, k := range msg.Keys {
			result = appendBytes(result, []byte(k))
		}
	}
	if msg.Values != nil {
		flags |= hasValues
		result = binary.BigEndian.AppendUint32(result, uint32(len(msg.Values)))
		for _, v := range msg.Values {
			result = appendBytes(result, v)
		}
	}
	if msg.Count > 0 {
		flags |= hasCount
		result = binary.BigEndian.AppendUint64(result, msg.Count)
	}
	if msg.Err != "" {
		flags |= hasErr
		result = appendBytes(result, []byte(msg.Err))
	}
	if msg.Code > 0 {
		flags |= hasCode
		result = binary.BigEndian.AppendUint64(result, msg.Code)
	}

	// boolean fields are carried by the flags alone
	if msg.Ok {
		flags |= hasOk
	}
	if msg.ValueSet {
		flags |= hasValueSet
	}
	if msg.OldSet {
		flags |= hasOldSet
	}

	binary.BigEndian.PutUint16(result[1:3], flags)
	return result, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, msg *common.Message) error {
	if len(data) < binaryHeaderSize {
		return fmt.Errorf("data too short for message header")
	}

	*msg = common.Message{MsgType: common.MessageType(data[0])}
	flags := binary.BigEndian.Uint16(data[1:3])
	r := binaryReader{data: data, pos: binaryHeaderSize}

	if flags&hasKey != 0 {
		msg.Key = string(r.bytes("key"))
	}
	if flags&hasValue != 0 {
		msg.Value = r.bytes("value")
	}
	if flags&hasOld != 0 {
		msg.Old = r.bytes("old")
	}
	if flags&hasKeys != 0 {
		n := r.count("keys")
		msg.Keys = make([]string, 0, n)
		for i := 0; i < n && r.err == nil; i++ {
			msg.Keys = append(msg.Keys, string(r.bytes("keys")))
		}
	}
	if flags&hasValues != 0 {
		n := r.count("values")
		msg.Values = make([][]byte, 0, n)
		for i := 0; i < n && r.err == nil; i++ {
			msg.Values = append(msg.Values, r.bytes("values"))
		}
	}
	if flags&hasCount != 0 {
		msg.Count = r.uint64("count")
	}
	if flags&hasErr != 0 {
		msg.Err = string(r.bytes("error"))
	}
	if flags&hasCode != 0 {
		msg.Code = r.uint64("code")
	}

	msg.Ok = flags&hasOk != 0
	msg.ValueSet = flags&hasValueSet != 0
	msg.OldSet = flags&hasOldSet != 0

	return r.err
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// sizeBytes calculates the total size needed for serialization
func (b binarySerializerImpl) sizeBytes(msg common.Message) int {
	size := binaryHeaderSize

	if msg.Key != "" {
		size += 4 + len(msg.Key)
	}
	if msg.Value != nil {
		size += 4 + len(msg.Value)
	}
	if msg.Old != nil {
		size += 4 + len(msg.Old)
	}
	if msg.Keys != nil {
		size += 4
		for _, k := range msg.Keys {
			size += 4 + len(k)
		}
	}
	if msg.Values != nil {
		size += 4
		for _, v := range msg.Values {
			size += 4 + len(v)
		}
	}
	if msg.Count > 0 {
		size += 8
	}
	if msg.Err != "" {
		size += 4 + len(msg.Err)
	}
	if msg.Code > 0 {
		size += 8
	}

	return size
}

func appendBytes(dst, b []byte) []byte {
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(b)))
	return append(dst, b...)
}

// binaryReader reads length-prefixed fields and keeps the first error
type binaryReader struct {
	data []byte
	pos  int
	err  error
}

func (r *binaryReader) need(n int, field string) bool {
	if r.err != nil {
		return false
	}
	if n < 0 || r.pos+n > len(r.data) {
		r.err = fmt.Errorf("data too short for %s", field)
		return false
	}
	return true
}

func (r *binaryReader) uint32(field string) uint32 {
	if !r.need(4, field) {
		return 0
	}
	v := binary.BigEndian.Uint32(r.data[r.pos : r.pos+4])
	r.pos += 4
	return v
}

func (r *binaryReader) uint64(field string) uint64 {
	if !r.need(8, field) {
		return 0
	}
	v := binary.BigEndian.Uint64(r.data[r.pos : r.pos+8])
	r.pos += 8
	return v
}

// bytes reads a length-prefixed field into a new slice (empty, not nil, for length 0)
func (r *binaryReader) bytes(field string) []byte {
	n := int(r.uint32(field))
	if !r.need(n, field) {
		return nil
	}
	b := make([]byte, n)
	copy(b, r.data[r.pos:r.pos+n])
	r.pos += n
	return b
}

// count reads a list length and rejects counts that cannot fit the remaining data
func (r *binaryReader) count(field string) int {
	n := int(r.uint32(field))
	if r.err == nil && n > (len(r.data)-r.pos)/4 {
		r.err = fmt.Errorf("data too short for %s", field)
		return 0
	}
	return n
}
