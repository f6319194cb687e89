package common

import (
	"fmt"

	"github.com/ValentinKolb/nanoKV/lib/ops"
	"github.com/ValentinKolb/nanoKV/lib/store"
)

// --------------------------------------------------------------------------
// Requests (ops.Operation -> Message)
// --------------------------------------------------------------------------

// NewRequest converts an operation into a request message.
func NewRequest(op ops.Operation) *Message {
	return ops.Visit[*Message](op, requestBuilder{})
}

type requestBuilder struct{}

func (requestBuilder) VisitGet(op ops.Get) *Message {
	return &Message{MsgType: MsgTKVGet, Key: op.Key}
}

func (requestBuilder) VisitSet(op ops.Set) *Message {
	return &Message{MsgType: MsgTKVSet, Key: op.Key, Value: op.Value, ValueSet: op.Value != nil}
}

func (requestBuilder) VisitDelete(op ops.Delete) *Message {
	return &Message{MsgType: MsgTKVDelete, Key: op.Key}
}

func (requestBuilder) VisitExists(op ops.Exists) *Message {
	return &Message{MsgType: MsgTKVExists, Key: op.Key}
}

func (requestBuilder) VisitFlush(ops.Flush) *Message {
	return &Message{MsgType: MsgTKVFlush}
}

func (requestBuilder) VisitKeys(ops.Keys) *Message {
	return &Message{MsgType: MsgTKVKeys}
}

func (requestBuilder) VisitKeysPrefix(op ops.KeysPrefix) *Message {
	return &Message{MsgType: MsgTKVKeysPrefix, Key: op.Prefix}
}

func (requestBuilder) VisitGetPrefix(op ops.GetPrefix) *Message {
	return &Message{MsgType: MsgTKVGetPrefix, Key: op.Prefix}
}

func (requestBuilder) VisitDeletePrefix(op ops.DeletePrefix) *Message {
	return &Message{MsgType: MsgTKVDeletePrefix, Key: op.Prefix}
}

func (requestBuilder) VisitValues(ops.Values) *Message {
	return &Message{MsgType: MsgTKVValues}
}

func (requestBuilder) VisitValuesPrefix(op ops.ValuesPrefix) *Message {
	return &Message{MsgType: MsgTKVValuesPrefix, Key: op.Prefix}
}

func (requestBuilder) VisitSize(ops.Size) *Message {
	return &Message{MsgType: MsgTKVSize}
}

func (requestBuilder) VisitCompareAndSwap(op ops.CompareAndSwap) *Message {
	return &Message{
		MsgType:  MsgTKVCompareAndSwap,
		Key:      op.Key,
		Old:      op.Old,
		OldSet:   op.Old != nil,
		Value:    op.New,
		ValueSet: op.New != nil,
	}
}

// Operation converts a request message back into an operation.
// Unknown and response-only message types return a validation error.
func (m *Message) Operation() (ops.Operation, error) {
	switch m.MsgType {
	case MsgTKVGet:
		return ops.Get{Key: m.Key}, nil
	case MsgTKVSet:
		return ops.Set{Key: m.Key, Value: present(m.Value, true)}, nil
	case MsgTKVDelete:
		return ops.Delete{Key: m.Key}, nil
	case MsgTKVExists:
		return ops.Exists{Key: m.Key}, nil
	case MsgTKVFlush:
		return ops.Flush{}, nil
	case MsgTKVKeys:
		return ops.Keys{}, nil
	case MsgTKVKeysPrefix:
		return ops.KeysPrefix{Prefix: m.Key}, nil
	case MsgTKVGetPrefix:
		return ops.GetPrefix{Prefix: m.Key}, nil
	case MsgTKVDeletePrefix:
		return ops.DeletePrefix{Prefix: m.Key}, nil
	case MsgTKVValues:
		return ops.Values{}, nil
	case MsgTKVValuesPrefix:
		return ops.ValuesPrefix{Prefix: m.Key}, nil
	case MsgTKVSize:
		return ops.Size{}, nil
	case MsgTKVCompareAndSwap:
		return ops.CompareAndSwap{
			Key: m.Key,
			Old: present(m.Old, m.OldSet),
			New: present(m.Value, m.ValueSet),
		}, nil
	default:
		return nil, store.NewValidationError("unsupported message type %s", m.MsgType)
	}
}

// present restores a slice whose presence was carried separately,
// serializers may turn an empty slice into nil
func present(b []byte, set bool) []byte {
	if !set {
		return nil
	}
	if b == nil {
		return []byte{}
	}
	return b
}

// --------------------------------------------------------------------------
// Responses (ops.Reply -> Message)
// --------------------------------------------------------------------------

// NewResponse converts the reply of op into a response message.
func NewResponse(op ops.Operation, reply ops.Reply) *Message {
	if reply.IsErr() {
		return NewErrorResponse(uint64(store.CodeOf(reply.Err)), reply.Err.Error())
	}

	msg := NewRequest(op)
	resp := &Message{MsgType: msg.MsgType}

	switch v := reply.Value.(type) {
	case []byte:
		resp.Value = v
		resp.ValueSet = true
		resp.Ok = reply.IsOk()
	case bool:
		resp.Ok = v
	case int:
		resp.Count = uint64(v)
	case []string:
		resp.Keys = v
	case [][]byte:
		resp.Values = v
	case map[string][]byte:
		resp.Keys = make([]string, 0, len(v))
		resp.Values = make([][]byte, 0, len(v))
		for k, val := range v {
			resp.Keys = append(resp.Keys, k)
			resp.Values = append(resp.Values, val)
		}
	}

	// a get for an absent key is answered with ok = false
	if reply.IsNotFound() {
		resp.Ok = false
	}
	return resp
}

// AsError returns the error carried by an error response, or nil.
func (m *Message) AsError() error {
	if !m.IsError() {
		return nil
	}
	return store.NewError(store.RetCode(m.Code), m.Err)
}

// Expect checks that m is a successful response of type t.
func (m *Message) Expect(t MessageType) error {
	if err := m.AsError(); err != nil {
		return err
	}
	if m.MsgType != t {
		return store.NewError(store.RetCInternalError, fmt.Sprintf("unexpected response type %s, expected %s", m.MsgType, t))
	}
	return nil
}

// Pairs returns the key-value pairs of a GetPrefix response.
func (m *Message) Pairs() (map[string][]byte, error) {
	if len(m.Keys) != len(m.Values) {
		return nil, store.NewError(store.RetCInternalError, fmt.Sprintf("malformed get_prefix response: %d keys, %d values", len(m.Keys), len(m.Values)))
	}
	pairs := make(map[string][]byte, len(m.Keys))
	for i, k := range m.Keys {
		pairs[k] = present(m.Values[i], true)
	}
	return pairs, nil
}
