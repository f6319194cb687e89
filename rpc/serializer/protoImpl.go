package serializer

import (
	"fmt"

	"github.com/ValentinKolb/nanoKV/rpc/common"
	"google.golang.org/protobuf/encoding/protowire"
)

// NewProtoSerializer creates a new serializer using the protocol buffers wire
// format. The message layout corresponds to:
//
//	message Message {
//	  uint32 msg_type = 1;
//	  string key = 2;
//	  optional bytes value = 3;
//	  optional bytes old = 4;
//	  repeated string keys = 5;
//	  repeated bytes values = 6;
//	  uint64 count = 7;
//	  bool ok = 8;
//	  string err = 9;
//	  uint64 code = 10;
//	  bool value_set = 11;
//	  bool old_set = 12;
//	}
func NewProtoSerializer() IRPCSerializer {
	return &protoSerializerImpl{}
}

// protoSerializerImpl implements IRPCSerializer with protowire
type protoSerializerImpl struct {
}

const (
	fieldMsgType  protowire.Number = 1
	fieldKey      protowire.Number = 2
	fieldValue    protowire.Number = 3
	fieldOld      protowire.Number = 4
	fieldKeys     protowire.Number = 5
	fieldValues   protowire.Number = 6
	fieldCount    protowire.Number = 7
	fieldOk       protowire.Number = 8
	fieldErr      protowire.Number = 9
	fieldCode     protowire.Number = 10
	fieldValueSet protowire.Number = 11
	fieldOldSet   protowire.Number = 12
)

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (p protoSerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	var b []byte

	if msg.MsgType != common.MsgTUnknown {
		b = protowire.AppendTag(b, fieldMsgType, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(msg.MsgType))
	}
	if msg.Key != "" {
		b = protowire.AppendTag(b, fieldKey, protowire.BytesType)
		b = protowire.AppendString(b, msg.Key)
	}
	if msg.Value != nil {
		b = protowire.AppendTag(b, fieldValue, protowire.BytesType)
		b = protowire.AppendBytes(b, msg.Value)
	}
	if msg.Old != nil {
		b = protowire.AppendTag(b, fieldOld, protowire.BytesType)
		b = protowire.AppendBytes(b, msg.Old)
	}
	for _, k := range msg.Keys {
		b = protowire.AppendTag(b, fieldKeys, protowire.BytesType)
		b = protowire.AppendString(b, k)
	}
	for _, v := range msg.Values {
		b = protowire.AppendTag(b, fieldValues, protowire.BytesType)
		b = protowire.AppendBytes(b, v)
	}
	b = appendVarintField(b, fieldCount, msg.Count)
	b = appendBoolField(b, fieldOk, msg.Ok)
	if msg.Err != "" {
		b = protowire.AppendTag(b, fieldErr, protowire.BytesType)
		b = protowire.AppendString(b, msg.Err)
	}
	b = appendVarintField(b, fieldCode, msg.Code)
	b = appendBoolField(b, fieldValueSet, msg.ValueSet)
	b = appendBoolField(b, fieldOldSet, msg.OldSet)

	return b, nil
}

func (p protoSerializerImpl) Deserialize(b []byte, msg *common.Message) error {
	*msg = common.Message{}

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("invalid tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case typ == protowire.VarintType && (num == fieldMsgType || num == fieldCount || num == fieldCode ||
			num == fieldOk || num == fieldValueSet || num == fieldOldSet):
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return fmt.Errorf("invalid field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
			setVarintField(msg, num, v)

		case typ == protowire.BytesType && (num == fieldKey || num == fieldValue || num == fieldOld ||
			num == fieldKeys || num == fieldValues || num == fieldErr):
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return fmt.Errorf("invalid field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
			setBytesField(msg, num, v)

		default:
			// unknown fields are skipped
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return fmt.Errorf("invalid field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBoolField(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	return appendVarintField(b, num, protowire.EncodeBool(v))
}

func setVarintField(msg *common.Message, num protowire.Number, v uint64) {
	switch num {
	case fieldMsgType:
		msg.MsgType = common.MessageType(v)
	case fieldCount:
		msg.Count = v
	case fieldCode:
		msg.Code = v
	case fieldOk:
		msg.Ok = protowire.DecodeBool(v)
	case fieldValueSet:
		msg.ValueSet = protowire.DecodeBool(v)
	case fieldOldSet:
		msg.OldSet = protowire.DecodeBool(v)
	}
}

// setBytesField copies v, it aliases the input buffer
func setBytesField(msg *common.Message, num protowire.Number, v []byte) {
	switch num {
	case fieldKey:
		msg.Key = string(v)
	case fieldValue:
		msg.Value = append([]byte{}, v...)
	case fieldOld:
		msg.Old = append([]byte{}, v...)
	case fieldKeys:
		msg.Keys = append(msg.Keys, string(v))
	case fieldValues:
		msg.Values = append(msg.Values, append([]byte{}, v...))
	case fieldErr:
		msg.Err = string(v)
	}
}
