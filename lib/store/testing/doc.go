// Package testing provides standardised tests and benchmarks for
// store implementations that satisfy the store.IStore interface.
//
// The package contains:
//   - RunIStoreTests: a conformance suite covering the IStore contract, including
//     copy semantics, not-found handling, prefix operations, compare-and-swap and
//     concurrent access
//   - RunIStoreBenchmarks: throughput benchmarks for common operations
//
// Example usage:
//
//	factory := func() store.IStore {
//		return mstore.NewMemoryStore()
//	}
//
//	storetesting.RunIStoreTests(t, "MemoryStore", factory)
//	storetesting.RunIStoreBenchmarks(b, "MemoryStore", factory)
package testing
