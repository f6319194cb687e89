// Package serializer provides message serialization capabilities for the nanoKV
// RPC facade. It defines a common interface and multiple implementations
// for serializing and deserializing messages between client and server components.
//
// Key Components:
//
//   - IRPCSerializer: Core interface that all serializer implementations must satisfy.
//
//   - binarySerializerImpl: Custom binary format implementation optimized for speed
//     and space efficiency. Uses a flag-based approach to encode only present fields,
//     resulting in compact serialized data with minimal overhead.
//
//   - gobSerializerImpl: Implementation using Go's built-in gob encoding, offering
//     good compatibility with Go's type system but with larger serialized sizes.
//
//   - jsonSerializerImpl: Implementation using JSON encoding, useful for debugging
//     or interoperability with other systems, but with lower performance.
//
//   - protoSerializerImpl: Protocol buffers wire format written with protowire,
//     readable by any protobuf implementation given the schema documented on
//     NewProtoSerializer.
//
// Empty byte slices: json and gob decode an empty slice as nil. The Message
// carries ValueSet and OldSet so the distinction survives every serializer.
//
// Binary produces the smallest
// payloads and is the default of nkv serve. proto comes close and is portable.
// json is the easiest to inspect. gob re-sends its type description with every
// message and is the slowest.
//
// Thread Safety:
//
//	All serializer implementations are stateless and safe for concurrent use
//	across multiple goroutines without additional synchronization.
//
// Usage:
//
//	Serializers are typically created once and reused throughout the application:
//
//	  serializer := serializer.NewBinarySerializer()
//	  data, err := serializer.Serialize(message)
//	  // ... send data ...
//	  var receivedMsg common.Message
//	  err = serializer.Deserialize(receivedData, &receivedMsg)
package serializer
