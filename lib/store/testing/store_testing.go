package testing

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/ValentinKolb/nanoKV/lib/store"
)

// StoreFactory is a function that creates a new, empty instance of an IStore implementation
type StoreFactory func() store.IStore

// RunIStoreTests runs the conformance test suite for an IStore implementation.
func RunIStoreTests(t *testing.T, name string, factory StoreFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Set&Get", func(t *testing.T) {
			testSetGet(t, factory())
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory())
		})

		t.Run("Has", func(t *testing.T) {
			testHas(t, factory())
		})

		t.Run("Clear", func(t *testing.T) {
			testClear(t, factory())
		})

		t.Run("Keys", func(t *testing.T) {
			testKeys(t, factory())
		})

		t.Run("PrefixOperations", func(t *testing.T) {
			testPrefixOperations(t, factory())
		})

		t.Run("CompareAndSwap", func(t *testing.T) {
			testCompareAndSwap(t, factory())
		})

		t.Run("EdgeCases", func(t *testing.T) {
			testEdgeCases(t, factory())
		})

		t.Run("ConcurrentDisjointWrites", func(t *testing.T) {
			testConcurrentDisjointWrites(t, factory())
		})

		t.Run("ConcurrentSameKey", func(t *testing.T) {
			testConcurrentSameKey(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// must fails the test if err is not nil
func must(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func sortedKeys(t testing.TB, keys []string, err error) []string {
	t.Helper()
	must(t, err)
	sort.Strings(keys)
	return keys
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSetGet(t *testing.T, s store.IStore) {
	testKey := "test-key"
	testValue1 := []byte("test-value1")
	testValue2 := []byte("test-value2")

	must(t, s.Set(testKey, testValue1))

	result, exists, err := s.Get(testKey)
	must(t, err)
	if !exists {
		t.Errorf("Expected key %s to exist after Set", testKey)
	}
	if !bytes.Equal(result, testValue1) {
		t.Errorf("Expected value %s, got %s", testValue1, result)
	}

	// overwrite
	must(t, s.Set(testKey, testValue2))

	result, exists, err = s.Get(testKey)
	must(t, err)
	if !exists {
		t.Errorf("Expected key %s to exist after Set", testKey)
	}
	if !bytes.Equal(result, testValue2) {
		t.Errorf("Expected value %s, got %s", testValue2, result)
	}

	// a key that was never set is not found and not an error
	_, exists, err = s.Get("nonexistent-key")
	must(t, err)
	if exists {
		t.Errorf("Expected nonexistent key to return exists=false")
	}

	// returned values must be copies
	retrievedValue, _, _ := s.Get(testKey)
	retrievedValue[0] = 'X'

	originalValue, _, _ := s.Get(testKey)
	if bytes.Equal(retrievedValue, originalValue) {
		t.Errorf("Get should return a copy, not a reference to the stored value")
	}

	// mutating the input after Set must not change the stored value
	input := []byte("mutable")
	must(t, s.Set("mutable-key", input))
	input[0] = 'X'
	stored, _, _ := s.Get("mutable-key")
	if !bytes.Equal(stored, []byte("mutable")) {
		t.Errorf("Set should copy its input, got %s", stored)
	}
}

func testDelete(t *testing.T, s store.IStore) {
	testKey := "delete-test-key"

	must(t, s.Set(testKey, []byte("delete-test-value")))

	must(t, s.Delete(testKey))

	_, exists, err := s.Get(testKey)
	must(t, err)
	if exists {
		t.Errorf("Expected key %s to not exist after Delete", testKey)
	}

	// deleting an absent key is not an error
	if err := s.Delete("nonexistent-key"); err != nil {
		t.Errorf("Delete of absent key returned error: %v", err)
	}
}

func testHas(t *testing.T, s store.IStore) {
	ok, err := s.Has("has-key")
	must(t, err)
	if ok {
		t.Errorf("Expected Has to return false for absent key")
	}

	must(t, s.Set("has-key", []byte("v")))

	ok, err = s.Has("has-key")
	must(t, err)
	if !ok {
		t.Errorf("Expected Has to return true after Set")
	}
}

func testClear(t *testing.T, s store.IStore) {
	for i := 0; i < 100; i++ {
		must(t, s.Set(fmt.Sprintf("clear-key-%d", i), []byte("v")))
	}

	must(t, s.Clear())

	keys, err := s.Keys()
	must(t, err)
	if len(keys) != 0 {
		t.Errorf("Expected no keys after Clear, got %d", len(keys))
	}

	size, err := s.Size()
	must(t, err)
	if size != 0 {
		t.Errorf("Expected size 0 after Clear, got %d", size)
	}

	// clearing an empty store is fine
	must(t, s.Clear())
}

func testKeys(t *testing.T, s store.IStore) {
	rawKeys, keysErr := s.Keys()
	keys := sortedKeys(t, rawKeys, keysErr)
	if len(keys) != 0 {
		t.Errorf("Expected empty store, got keys %v", keys)
	}

	must(t, s.Set("key1", []byte("value1")))
	must(t, s.Set("key2", []byte("value2")))

	rawKeys, keysErr = s.Keys()
	keys = sortedKeys(t, rawKeys, keysErr)
	if !equalStrings(keys, []string{"key1", "key2"}) {
		t.Errorf("Expected [key1 key2], got %v", keys)
	}

	values, err := s.Values()
	must(t, err)
	if len(values) != 2 {
		t.Errorf("Expected 2 values, got %d", len(values))
	}

	size, err := s.Size()
	must(t, err)
	if size != 2 {
		t.Errorf("Expected size 2, got %d", size)
	}
}

func testPrefixOperations(t *testing.T, s store.IStore) {
	must(t, s.Set("user:1", []byte("alice")))
	must(t, s.Set("user:2", []byte("bob")))
	must(t, s.Set("group:1", []byte("admins")))

	rawKeys, keysErr := s.KeysPrefix("user:")
	keys := sortedKeys(t, rawKeys, keysErr)
	if !equalStrings(keys, []string{"user:1", "user:2"}) {
		t.Errorf("Expected [user:1 user:2], got %v", keys)
	}

	entries, err := s.GetPrefix("user:")
	must(t, err)
	if len(entries) != 2 || string(entries["user:1"]) != "alice" || string(entries["user:2"]) != "bob" {
		t.Errorf("Unexpected GetPrefix result: %v", entries)
	}

	values, err := s.ValuesPrefix("group:")
	must(t, err)
	if len(values) != 1 || string(values[0]) != "admins" {
		t.Errorf("Unexpected ValuesPrefix result: %q", values)
	}

	removed, err := s.DeletePrefix("user:")
	must(t, err)
	if removed != 2 {
		t.Errorf("Expected DeletePrefix to remove 2 keys, removed %d", removed)
	}

	rawKeys, keysErr = s.Keys()
	keys = sortedKeys(t, rawKeys, keysErr)
	if !equalStrings(keys, []string{"group:1"}) {
		t.Errorf("Expected [group:1] after DeletePrefix, got %v", keys)
	}

	removed, err = s.DeletePrefix("nothing:")
	must(t, err)
	if removed != 0 {
		t.Errorf("Expected DeletePrefix on unknown prefix to remove 0 keys, removed %d", removed)
	}
}

func testCompareAndSwap(t *testing.T, s store.IStore) {
	key := "cas-key"

	// absent key, expect absent -> create
	swapped, err := s.CompareAndSwap(key, nil, []byte("v1"))
	must(t, err)
	if !swapped {
		t.Errorf("Expected CAS(nil -> v1) on absent key to succeed")
	}

	// present key, expect absent -> no change
	swapped, err = s.CompareAndSwap(key, nil, []byte("other"))
	must(t, err)
	if swapped {
		t.Errorf("Expected CAS(nil -> other) on present key to fail")
	}

	// mismatch -> no change
	swapped, err = s.CompareAndSwap(key, []byte("wrong"), []byte("v2"))
	must(t, err)
	if swapped {
		t.Errorf("Expected CAS with wrong old value to fail")
	}
	val, _, _ := s.Get(key)
	if string(val) != "v1" {
		t.Errorf("Expected value v1 after failed CAS, got %s", val)
	}

	// match -> replace
	swapped, err = s.CompareAndSwap(key, []byte("v1"), []byte("v2"))
	must(t, err)
	if !swapped {
		t.Errorf("Expected CAS(v1 -> v2) to succeed")
	}
	val, _, _ = s.Get(key)
	if string(val) != "v2" {
		t.Errorf("Expected value v2 after CAS, got %s", val)
	}

	// match with nil new -> delete
	swapped, err = s.CompareAndSwap(key, []byte("v2"), nil)
	must(t, err)
	if !swapped {
		t.Errorf("Expected CAS(v2 -> nil) to succeed")
	}
	_, exists, _ := s.Get(key)
	if exists {
		t.Errorf("Expected key to be deleted by CAS with nil new value")
	}

	// absent key, expect a value -> no change, key stays absent
	swapped, err = s.CompareAndSwap(key, []byte("v2"), []byte("v3"))
	must(t, err)
	if swapped {
		t.Errorf("Expected CAS on absent key with expected value to fail")
	}
	if ok, _ := s.Has(key); ok {
		t.Errorf("Failed CAS must not create the key")
	}
}

func testEdgeCases(t *testing.T, s store.IStore) {
	emptyKey := ""
	emptyKeyValue := []byte("value for empty key")

	must(t, s.Set(emptyKey, emptyKeyValue))

	result, exists, err := s.Get(emptyKey)
	must(t, err)
	if !exists {
		t.Errorf("Empty key not found after Set")
	} else if !bytes.Equal(result, emptyKeyValue) {
		t.Errorf("Value mismatch for empty key")
	}

	nilValueKey := "nil-value-key"
	must(t, s.Set(nilValueKey, nil))

	result, exists, err = s.Get(nilValueKey)
	must(t, err)
	if !exists {
		t.Errorf("Key for nil value not found after Set")
	} else if len(result) != 0 {
		t.Errorf("Nil value resulted in non-empty value: %v", result)
	}

	largeValueKey := "large-value-key"
	largeValue := make([]byte, 1024*1024)
	for i := range largeValue {
		largeValue[i] = byte(i % 256)
	}

	must(t, s.Set(largeValueKey, largeValue))

	result, exists, err = s.Get(largeValueKey)
	must(t, err)
	if !exists {
		t.Errorf("Key for large value not found after Set")
	} else if !bytes.Equal(result, largeValue) {
		t.Errorf("Large value mismatch (got %d bytes, want %d)", len(result), len(largeValue))
	}

	utf8Key := "schlüssel-🔑"
	must(t, s.Set(utf8Key, []byte("wert")))
	result, exists, _ = s.Get(utf8Key)
	if !exists || string(result) != "wert" {
		t.Errorf("UTF-8 key round trip failed: exists=%t value=%s", exists, result)
	}
}

func testConcurrentDisjointWrites(t *testing.T, s store.IStore) {
	numWorkers := 16
	keysPerWorker := 100

	var wg sync.WaitGroup
	wg.Add(numWorkers)

	for w := 0; w < numWorkers; w++ {
		go func(workerId int) {
			defer wg.Done()
			for i := 0; i < keysPerWorker; i++ {
				key := fmt.Sprintf("worker-%d-key-%d", workerId, i)
				if err := s.Set(key, []byte(key)); err != nil {
					t.Errorf("Set failed: %v", err)
					return
				}
			}
		}(w)
	}

	wg.Wait()

	// no lost writes across keys
	for w := 0; w < numWorkers; w++ {
		for i := 0; i < keysPerWorker; i++ {
			key := fmt.Sprintf("worker-%d-key-%d", w, i)
			val, ok, err := s.Get(key)
			must(t, err)
			if !ok || string(val) != key {
				t.Errorf("Key %s lost or corrupted: ok=%t value=%s", key, ok, val)
			}
		}
	}

	size, err := s.Size()
	must(t, err)
	if size != numWorkers*keysPerWorker {
		t.Errorf("Expected %d keys, got %d", numWorkers*keysPerWorker, size)
	}
}

func testConcurrentSameKey(t *testing.T, s store.IStore) {
	key := "contended-key"
	numWorkers := 8
	writesPerWorker := 200

	// every value has the same length and a worker specific fill byte,
	// a torn write would mix fill bytes
	values := make([][]byte, numWorkers)
	for w := range values {
		values[w] = bytes.Repeat([]byte{byte('a' + w)}, 256)
	}

	var wg sync.WaitGroup
	wg.Add(numWorkers * 2)

	for w := 0; w < numWorkers; w++ {
		go func(workerId int) {
			defer wg.Done()
			for i := 0; i < writesPerWorker; i++ {
				_ = s.Set(key, values[workerId])
			}
		}(w)

		go func() {
			defer wg.Done()
			for i := 0; i < writesPerWorker; i++ {
				val, ok, err := s.Get(key)
				if err != nil || !ok {
					continue
				}
				if len(val) != 256 || !bytes.Equal(val, bytes.Repeat(val[:1], 256)) {
					t.Errorf("Torn read detected: %q", val[:8])
					return
				}
			}
		}()
	}

	wg.Wait()
}
