package serializer

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/ValentinKolb/nanoKV/rpc/common"
)

// testSerializers is a map of serializer name to factory function
var testSerializers = map[string]func() IRPCSerializer{
	"JSON":   NewJSONSerializer,
	"GOB":    NewGOBSerializer,
	"Binary": NewBinarySerializer,
	"Proto":  NewProtoSerializer,
}

// testMessages creates a set of test messages with different fields filled.
// Empty slices are avoided, json and gob do not keep them apart from nil.
func testMessages() []common.Message {
	return []common.Message{
		// Basic message with just a type
		{MsgType: common.MsgTSuccess},

		// Set request
		{
			MsgType:  common.MsgTKVSet,
			Key:      "test-key",
			Value:    []byte("test-value"),
			ValueSet: true,
		},

		// Get response
		{
			MsgType:  common.MsgTKVGet,
			Value:    []byte("test-value"),
			ValueSet: true,
			Ok:       true,
		},

		// Keys response
		{
			MsgType: common.MsgTKVKeys,
			Keys:    []string{"a", "b", "c"},
		},

		// GetPrefix response
		{
			MsgType: common.MsgTKVGetPrefix,
			Keys:    []string{"p:1", "p:2"},
			Values:  [][]byte{[]byte("one"), []byte("two")},
		},

		// Size response
		{
			MsgType: common.MsgTKVSize,
			Count:   1 << 40,
		},

		// CompareAndSwap request
		{
			MsgType:  common.MsgTKVCompareAndSwap,
			Key:      "cas",
			Old:      []byte("old"),
			OldSet:   true,
			Value:    []byte("new"),
			ValueSet: true,
		},

		// Error response
		{
			MsgType: common.MsgTError,
			Err:     "test error message",
			Code:    2,
		},
	}
}

// TestSerializerRoundTrip tests that messages can be serialized and deserialized correctly
func TestSerializerRoundTrip(t *testing.T) {
	messages := testMessages()

	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			for i, msg := range messages {
				data, err := serializer.Serialize(msg)
				if err != nil {
					t.Errorf("Failed to serialize message %d: %v", i, err)
					continue
				}

				var result common.Message
				if err = serializer.Deserialize(data, &result); err != nil {
					t.Errorf("Failed to deserialize message %d: %v", i, err)
					continue
				}

				if !reflect.DeepEqual(msg, result) {
					t.Errorf("Message %d doesn't match after round trip:\nOriginal: %+v\nResult: %+v",
						i, msg, result)
				}
			}
		})
	}
}

// TestMessageTypes tests each message type with each serializer
func TestMessageTypes(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			for msgType := common.MsgTSuccess; msgType <= common.MsgTKVCompareAndSwap; msgType++ {
				msg := common.Message{MsgType: msgType}

				data, err := serializer.Serialize(msg)
				if err != nil {
					t.Errorf("Failed to serialize message type %s: %v", msgType.String(), err)
					continue
				}

				var result common.Message
				if err = serializer.Deserialize(data, &result); err != nil {
					t.Errorf("Failed to deserialize message type %s: %v", msgType.String(), err)
					continue
				}

				if result.MsgType != msgType {
					t.Errorf("Message type doesn't match after round trip: Expected %s, got %s",
						msgType.String(), result.MsgType.String())
				}
			}
		})
	}
}

// TestEmptySlicesKeepPresence tests that the binary and proto serializers keep
// an empty value apart from a missing one
func TestEmptySlicesKeepPresence(t *testing.T) {
	for _, name := range []string{"Binary", "Proto"} {
		serializer := testSerializers[name]()

		t.Run(name, func(t *testing.T) {
			msg := common.Message{
				MsgType: common.MsgTKVCompareAndSwap,
				Key:     "k",
				Old:     []byte{},
				Value:   nil,
				Values:  [][]byte{{}, []byte("x")},
			}

			data, err := serializer.Serialize(msg)
			if err != nil {
				t.Fatalf("Failed to serialize: %v", err)
			}

			var result common.Message
			if err = serializer.Deserialize(data, &result); err != nil {
				t.Fatalf("Failed to deserialize: %v", err)
			}

			if result.Old == nil || len(result.Old) != 0 {
				t.Errorf("Old: expected empty non-nil slice, got %#v", result.Old)
			}
			if result.Value != nil {
				t.Errorf("Value: expected nil, got %#v", result.Value)
			}
			if len(result.Values) != 2 || len(result.Values[0]) != 0 || !bytes.Equal(result.Values[1], []byte("x")) {
				t.Errorf("Values mismatch: %#v", result.Values)
			}
		})
	}
}

// TestDeserializeResetsMessage tests that fields of a reused message are cleared
func TestDeserializeResetsMessage(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			data, err := serializer.Serialize(common.Message{MsgType: common.MsgTKVFlush})
			if err != nil {
				t.Fatalf("Failed to serialize: %v", err)
			}

			result := common.Message{Key: "stale", Ok: true, Err: "stale"}
			if err = serializer.Deserialize(data, &result); err != nil {
				t.Fatalf("Failed to deserialize: %v", err)
			}
			if result.Key != "" || result.Ok || result.Err != "" {
				t.Errorf("stale fields survived: %+v", result)
			}
		})
	}
}

// TestInvalidData tests how the binary and proto serializers handle corrupt data
func TestInvalidData(t *testing.T) {
	testCases := []struct {
		name        string
		serializer  IRPCSerializer
		data        []byte
		expectError bool
	}{
		{"Binary/Empty data", NewBinarySerializer(), []byte{}, true},
		{"Binary/Too short header", NewBinarySerializer(), []byte{1, 0}, true},
		{"Binary/Valid header only", NewBinarySerializer(), []byte{1, 0, 0}, false},
		{"Binary/Invalid length for key", NewBinarySerializer(), []byte{1, 0, 1, 0, 0, 0, 5, 'a', 'b', 'c'}, true},
		{"Binary/Invalid length for value", NewBinarySerializer(), []byte{1, 0, 2, 0, 0, 0, 10}, true},
		{"Binary/Huge key count", NewBinarySerializer(), []byte{1, 0, 8, 0xFF, 0xFF, 0xFF, 0xFF}, true},
		{"Proto/Empty data", NewProtoSerializer(), []byte{}, false},
		{"Proto/Truncated varint", NewProtoSerializer(), []byte{0x08, 0x80}, true},
		{"Proto/Truncated bytes", NewProtoSerializer(), []byte{0x12, 0x05, 'a'}, true},
		{"Proto/Unknown field", NewProtoSerializer(), []byte{0xF8, 0x01, 0x01, 0x08, 0x03}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var msg common.Message
			err := tc.serializer.Deserialize(tc.data, &msg)

			if tc.expectError && err == nil {
				t.Errorf("Expected error but got none")
			} else if !tc.expectError && err != nil {
				t.Errorf("Did not expect error but got: %v", err)
			}
		})
	}
}
