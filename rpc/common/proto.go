package common

import (
	"encoding/json"
	"fmt"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the type of message.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type"`

	// Request fields
	Key      string `json:"key,omitempty"`       // Used for: Get, Set, Delete, Exists, CompareAndSwap (key) and all prefix operations (prefix)
	Value    []byte `json:"value,omitempty"`     // Used for: Set (request), CompareAndSwap (new value), Get (response)
	ValueSet bool   `json:"value_set,omitempty"` // Whether Value is present, distinguishes nil from empty for CompareAndSwap
	Old      []byte `json:"old,omitempty"`       // Used for: CompareAndSwap (expected value)
	OldSet   bool   `json:"old_set,omitempty"`   // Whether Old is present

	// Response only fields
	Keys   []string `json:"keys,omitempty"`   // Used for: Keys, KeysPrefix, GetPrefix responses
	Values [][]byte `json:"values,omitempty"` // Used for: Values, ValuesPrefix, GetPrefix responses
	Count  uint64   `json:"count,omitempty"`  // Used for: Size, DeletePrefix responses
	Ok     bool     `json:"ok,omitempty"`     // Used for: Get, Exists, CompareAndSwap responses
	Err    string   `json:"err,omitempty"`    // Empty if no error, otherwise contains the error message
	Code   uint64   `json:"code,omitempty"`   // store.RetCode of Err
}

// IsError reports whether m is an error response.
func (m *Message) IsError() bool {
	return m.MsgType == MsgTError
}

// NewErrorResponse creates a new Error response
func NewErrorResponse(code uint64, err string) *Message {
	return &Message{
		MsgType: MsgTError,
		Code:    code,
		Err:     err,
	}
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of message used in RPC communication.
type MessageType uint8

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	// General message types

	MsgTUnknown MessageType = iota
	MsgTSuccess             // Indicates a successful operation
	MsgTError               // Indicates an error occurred

	// IStore operations

	MsgTKVGet            // Get a value by key
	MsgTKVSet            // Set a key-value pair
	MsgTKVDelete         // Delete a key-value pair
	MsgTKVExists         // Check if a key exists
	MsgTKVFlush          // Remove every key
	MsgTKVKeys           // List every key
	MsgTKVKeysPrefix     // List keys with a prefix
	MsgTKVGetPrefix      // Get all pairs with a prefix
	MsgTKVDeletePrefix   // Delete all keys with a prefix
	MsgTKVValues         // List every value
	MsgTKVValuesPrefix   // List values of keys with a prefix
	MsgTKVSize           // Count keys
	MsgTKVCompareAndSwap // Conditionally replace a value
)

var messageTypeNames = map[MessageType]string{
	MsgTSuccess:          "success",
	MsgTError:            "error",
	MsgTKVGet:            "get",
	MsgTKVSet:            "set",
	MsgTKVDelete:         "delete",
	MsgTKVExists:         "exists",
	MsgTKVFlush:          "flush",
	MsgTKVKeys:           "keys",
	MsgTKVKeysPrefix:     "keys_prefix",
	MsgTKVGetPrefix:      "get_prefix",
	MsgTKVDeletePrefix:   "delete_prefix",
	MsgTKVValues:         "values",
	MsgTKVValuesPrefix:   "values_prefix",
	MsgTKVSize:           "size",
	MsgTKVCompareAndSwap: "compare_and_swap",
}

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	if name, ok := messageTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
// This allows MessageType to be serialized as a string in JSON.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
// This allows MessageType to be deserialized from a string in JSON.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	if s == "unknown" {
		*t = MsgTUnknown
		return nil
	}
	for typ, name := range messageTypeNames {
		if name == s {
			*t = typ
			return nil
		}
	}
	return fmt.Errorf("unknown message type: %s", s)
}
