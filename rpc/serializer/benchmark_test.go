package serializer

import (
	"testing"

	"github.com/ValentinKolb/nanoKV/lib/ops"
	"github.com/ValentinKolb/nanoKV/rpc/common"
)

// benchmarkMessages returns requests and responses as the RPC facade produces them
func benchmarkMessages() map[string]common.Message {
	pairs := map[string][]byte{
		"user:1": []byte("alice"),
		"user:2": []byte("bob"),
		"user:3": make([]byte, 512),
	}

	return map[string]common.Message{
		"GetRequest":     *common.NewRequest(ops.Get{Key: "session:4f1c2a"}),
		"SetSmall":       *common.NewRequest(ops.Set{Key: "key", Value: []byte("v")}),
		"Set1KB":         *common.NewRequest(ops.Set{Key: "key", Value: make([]byte, 1024)}),
		"Set16KB":        *common.NewRequest(ops.Set{Key: "key", Value: make([]byte, 16*1024)}),
		"CompareAndSwap": *common.NewRequest(ops.CompareAndSwap{Key: "counter", Old: []byte("41"), New: []byte("42")}),
		"GetResponse":    *common.NewResponse(ops.Get{Key: "k"}, ops.Ok[any]([]byte("medium length value for testing serialization"))),
		"SizeResponse":   *common.NewResponse(ops.Size{}, ops.Ok[any](123456)),
		"KeysResponse":   *common.NewResponse(ops.Keys{}, ops.Ok[any]([]string{"user:1", "user:2", "user:3", "session:abcdef", "config"})),
		"PrefixResponse": *common.NewResponse(ops.GetPrefix{Prefix: "user:"}, ops.Ok[any](pairs)),
		"ErrorResponse":  *common.NewErrorResponse(1, "store unavailable: the request could not be executed"),
	}
}

// BenchmarkSerialize benchmarks serialization for all implementations
func BenchmarkSerialize(b *testing.B) {
	for name, factory := range testSerializers {
		for msgName, msg := range benchmarkMessages() {
			b.Run(name+"/"+msgName, func(b *testing.B) {
				serializer := factory()
				b.ReportAllocs()

				for i := 0; i < b.N; i++ {
					if _, err := serializer.Serialize(msg); err != nil {
						b.Fatalf("Failed to serialize: %v", err)
					}
				}
			})
		}
	}
}

// BenchmarkDeserialize benchmarks deserialization and reports the payload size
func BenchmarkDeserialize(b *testing.B) {
	for name, factory := range testSerializers {
		for msgName, msg := range benchmarkMessages() {
			b.Run(name+"/"+msgName, func(b *testing.B) {
				serializer := factory()
				data, err := serializer.Serialize(msg)
				if err != nil {
					b.Fatalf("Failed to serialize: %v", err)
				}
				b.ReportMetric(float64(len(data)), "bytes")
				b.ReportAllocs()
				b.ResetTimer()

				var result common.Message
				for i := 0; i < b.N; i++ {
					if err := serializer.Deserialize(data, &result); err != nil {
						b.Fatalf("Failed to deserialize: %v", err)
					}
				}
			})
		}
	}
}
