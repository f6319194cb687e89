package store_test

import (
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/ValentinKolb/nanoKV/lib/ops"
	"github.com/ValentinKolb/nanoKV/lib/store"
	"github.com/ValentinKolb/nanoKV/lib/store/mstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingObserver records how often each kind was observed
type countingObserver struct {
	mu     sync.Mutex
	counts map[ops.Kind]int
}

func (o *countingObserver) Observe(kind ops.Kind) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.counts == nil {
		o.counts = map[ops.Kind]int{}
	}
	o.counts[kind]++
}

func TestApplyBasicOperations(t *testing.T) {
	s := mstore.NewMemoryStore()
	observer := &countingObserver{}

	r := store.Apply(s, ops.Get{Key: "hello"}, observer)
	assert.True(t, r.IsNotFound(), "get on unset key should be NotFound, got %s", r)

	r = store.Apply(s, ops.Set{Key: "hello", Value: []byte("world")}, observer)
	require.True(t, r.IsOk())
	assert.Equal(t, struct{}{}, r.Value)

	r = store.Apply(s, ops.Get{Key: "hello"}, observer)
	require.True(t, r.IsOk())
	assert.Equal(t, []byte("world"), r.Value)

	r = store.Apply(s, ops.Exists{Key: "hello"}, observer)
	require.True(t, r.IsOk())
	assert.Equal(t, true, r.Value)

	r = store.Apply(s, ops.Delete{Key: "hello"}, observer)
	require.True(t, r.IsOk())

	r = store.Apply(s, ops.Delete{Key: "hello"}, observer)
	assert.True(t, r.IsOk(), "delete of absent key is Ok")

	r = store.Apply(s, ops.Get{Key: "hello"}, observer)
	assert.True(t, r.IsNotFound())

	assert.Equal(t, 3, observer.counts[ops.KindGet])
	assert.Equal(t, 1, observer.counts[ops.KindSet])
	assert.Equal(t, 2, observer.counts[ops.KindDelete])
	assert.Equal(t, 1, observer.counts[ops.KindExists])
}

func TestApplyCollectionOperations(t *testing.T) {
	s := mstore.NewMemoryStore()

	for _, k := range []string{"a:1", "a:2", "b:1"} {
		require.True(t, store.Apply(s, ops.Set{Key: k, Value: []byte(k)}, nil).IsOk())
	}

	r := store.Apply(s, ops.Keys{}, nil)
	require.True(t, r.IsOk())
	keys := r.Value.([]string)
	sort.Strings(keys)
	assert.Equal(t, []string{"a:1", "a:2", "b:1"}, keys)

	r = store.Apply(s, ops.KeysPrefix{Prefix: "a:"}, nil)
	keys = r.Value.([]string)
	sort.Strings(keys)
	assert.Equal(t, []string{"a:1", "a:2"}, keys)

	r = store.Apply(s, ops.GetPrefix{Prefix: "b:"}, nil)
	assert.Equal(t, map[string][]byte{"b:1": []byte("b:1")}, r.Value)

	r = store.Apply(s, ops.Values{}, nil)
	assert.Len(t, r.Value.([][]byte), 3)

	r = store.Apply(s, ops.ValuesPrefix{Prefix: "a:"}, nil)
	assert.Len(t, r.Value.([][]byte), 2)

	r = store.Apply(s, ops.Size{}, nil)
	assert.Equal(t, 3, r.Value)

	r = store.Apply(s, ops.DeletePrefix{Prefix: "a:"}, nil)
	assert.Equal(t, 2, r.Value)

	r = store.Apply(s, ops.CompareAndSwap{Key: "b:1", Old: []byte("b:1"), New: []byte("x")}, nil)
	assert.Equal(t, true, r.Value)

	r = store.Apply(s, ops.Flush{}, nil)
	require.True(t, r.IsOk())

	r = store.Apply(s, ops.Keys{}, nil)
	assert.Empty(t, r.Value.([]string))
}

// failingStore returns an error for every call
type failingStore struct {
	store.IStore
}

func (failingStore) Get(string) ([]byte, bool, error) {
	return nil, false, errors.New("disk on fire")
}

func TestApplyMapsErrors(t *testing.T) {
	r := store.Apply(failingStore{}, ops.Get{Key: "k"}, nil)
	require.True(t, r.IsErr())
	assert.EqualError(t, r.Err, "disk on fire")

	r = store.Apply(nil, ops.Get{Key: "k"}, nil)
	require.True(t, r.IsErr())
	assert.Equal(t, store.RetCInternalError, store.CodeOf(r.Err))
}

func TestErrorCodes(t *testing.T) {
	assert.Equal(t, store.RetCSuccess, store.CodeOf(nil))
	assert.Equal(t, store.RetCUnsupportedOperation, store.CodeOf(store.ErrNotImplemented))
	assert.Equal(t, store.RetCInvalidOperation, store.CodeOf(store.NewValidationError("bad %s", "input")))
	assert.Equal(t, store.RetCInternalError, store.CodeOf(errors.New("plain")))

	assert.True(t, errors.Is(store.NewError(store.RetCUnsupportedOperation, "command not implemented"), store.ErrNotImplemented))
	assert.Equal(t, "command not implemented", store.ErrNotImplemented.Error())
}
