package testing

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/ValentinKolb/nanoKV/lib/store"
)

// RunIStoreBenchmarks runs all benchmarks for an IStore implementation
func RunIStoreBenchmarks(b *testing.B, name string, factory StoreFactory) {
	b.Run(name, func(b *testing.B) {
		b.Run("Set", func(b *testing.B) {
			benchmarkSet(b, factory())
		})

		b.Run("Get", func(b *testing.B) {
			benchmarkGet(b, factory())
		})

		b.Run("CompareAndSwapContended", func(b *testing.B) {
			benchmarkCompareAndSwap(b, factory())
		})

		b.Run("KeysPrefix", func(b *testing.B) {
			benchmarkKeysPrefix(b, factory())
		})

		b.Run("MixedUsage", func(b *testing.B) {
			benchmarkMixedUsage(b, factory())
		})
	})
}

// fill writes n keys named key-<i> with their own name as value
func fill(s store.IStore, n int) []string {
	keys := make([]string, n)
	for i := range keys {
		keys[i] = fmt.Sprintf("key-%d", i)
		_ = s.Set(keys[i], []byte(keys[i]))
	}
	return keys
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

func benchmarkSet(b *testing.B, s store.IStore) {
	value := []byte("benchmark-value")
	keys := fill(s, 1024)

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			_ = s.Set(keys[i%len(keys)], value)
			i++
		}
	})
}

func benchmarkGet(b *testing.B, s store.IStore) {
	keys := fill(s, 1024)

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			_, _, _ = s.Get(keys[i%len(keys)])
			i++
		}
	})
}

// benchmarkCompareAndSwap increments one shared counter from all goroutines
func benchmarkCompareAndSwap(b *testing.B, s store.IStore) {
	const key = "counter"
	_ = s.Set(key, []byte("0"))

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			for {
				cur, _, _ := s.Get(key)
				n, _ := strconv.Atoi(string(cur))
				if ok, _ := s.CompareAndSwap(key, cur, []byte(strconv.Itoa(n+1))); ok {
					break
				}
			}
		}
	})
}

func benchmarkKeysPrefix(b *testing.B, s store.IStore) {
	fill(s, 10_000)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		// matches key-1, key-10..key-19, key-100.. (1111 keys)
		_, _ = s.KeysPrefix("key-1")
	}
}

func benchmarkMixedUsage(b *testing.B, s store.IStore) {
	value := []byte("benchmark-value")
	keys := fill(s, 512)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			key := keys[i%len(keys)]
			switch i % 10 {
			case 0, 1, 2:
				_ = s.Set(key, value)
			case 9:
				_ = s.Delete(key)
			default:
				_, _, _ = s.Get(key)
			}
			i++
		}
	})
}
