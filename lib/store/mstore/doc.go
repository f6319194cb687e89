// Package mstore provides the in-memory implementation of store.IStore.
//
// Data lives in an xsync.MapOf keyed by the string key. The map is striped
// into buckets with their own locks, so operations on different keys proceed
// in parallel and there is no global mutex. Per-key read-modify-write
// operations (Set, CompareAndSwap) use Compute, which runs under the bucket
// lock and makes operations on the same key linearizable.
//
// Values are copied on the way in and on the way out; callers never share
// memory with the store.
//
// Clear, Keys and the prefix operations observe a snapshot that is consistent
// with some serialization of concurrent writes, not necessarily the latest one
// at the instant they return.
//
// Info reports the number of keys, the total size of stored values and a
// value size distribution sampled with a go-metrics histogram. The byte count
// is maintained incrementally and can briefly lag behind concurrent writes.
package mstore
