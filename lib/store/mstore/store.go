package mstore

import (
	"bytes"
	"strings"
	"sync/atomic"

	"github.com/ValentinKolb/nanoKV/lib/store"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
	gometrics "github.com/rcrowley/go-metrics"
)

var Logger = logger.GetLogger("store")

const (
	// sample size and decay of the value size histogram (same as the go-metrics defaults for timers)
	histogramReservoirSize = 1028
	histogramAlpha         = 0.015
)

type storeImpl struct {
	data       *xsync.MapOf[string, []byte]
	valueBytes atomic.Int64
	valueSizes gometrics.Histogram
}

// NewMemoryStore creates a new in-memory store.
// The store is backed by a striped concurrent hash map: operations on
// different keys run in parallel, operations on the same key are linearizable.
func NewMemoryStore() store.IStore {
	return &storeImpl{
		data:       xsync.NewMapOf[string, []byte](),
		valueSizes: gometrics.NewHistogram(gometrics.NewExpDecaySample(histogramReservoirSize, histogramAlpha)),
	}
}

// clone copies b so that callers can never alias stored data.
// nil stays nil.
func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Get(key string) ([]byte, bool, error) {
	val, ok := s.data.Load(key)
	if !ok {
		Logger.Debugf("get %q: not found", key)
		return nil, false, nil
	}
	return clone(val), true, nil
}

func (s *storeImpl) Set(key string, value []byte) error {
	// stored values are never nil so that an empty value is still a value
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	s.data.Compute(key, func(old []byte, loaded bool) ([]byte, bool) {
		s.valueBytes.Add(int64(len(valueCopy) - len(old)))
		return valueCopy, false
	})
	s.valueSizes.Update(int64(len(valueCopy)))

	Logger.Debugf("set %q (%d bytes)", key, len(valueCopy))
	return nil
}

func (s *storeImpl) Delete(key string) error {
	old, existed := s.data.LoadAndDelete(key)
	if existed {
		s.valueBytes.Add(-int64(len(old)))
		Logger.Debugf("deleted %q", key)
	} else {
		Logger.Debugf("delete %q: key did not exist", key)
	}
	return nil
}

func (s *storeImpl) Has(key string) (bool, error) {
	_, ok := s.data.Load(key)
	return ok, nil
}

func (s *storeImpl) Clear() error {
	count := s.data.Size()
	s.data.Clear()
	s.valueBytes.Store(0)
	Logger.Infof("cleared store (%d keys)", count)
	return nil
}

func (s *storeImpl) Keys() ([]string, error) {
	return s.KeysPrefix("")
}

func (s *storeImpl) KeysPrefix(prefix string) ([]string, error) {
	keys := make([]string, 0)
	s.data.Range(func(key string, _ []byte) bool {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return true
	})
	return keys, nil
}

func (s *storeImpl) GetPrefix(prefix string) (map[string][]byte, error) {
	entries := make(map[string][]byte)
	s.data.Range(func(key string, value []byte) bool {
		if strings.HasPrefix(key, prefix) {
			entries[key] = clone(value)
		}
		return true
	})
	return entries, nil
}

func (s *storeImpl) DeletePrefix(prefix string) (int, error) {
	keys, _ := s.KeysPrefix(prefix)

	removed := 0
	for _, key := range keys {
		// a concurrent delete may win the race, count only what we removed
		if old, ok := s.data.LoadAndDelete(key); ok {
			s.valueBytes.Add(-int64(len(old)))
			removed++
		}
	}

	Logger.Debugf("deleted %d keys with prefix %q", removed, prefix)
	return removed, nil
}

func (s *storeImpl) Values() ([][]byte, error) {
	return s.ValuesPrefix("")
}

func (s *storeImpl) ValuesPrefix(prefix string) ([][]byte, error) {
	values := make([][]byte, 0)
	s.data.Range(func(key string, value []byte) bool {
		if strings.HasPrefix(key, prefix) {
			values = append(values, clone(value))
		}
		return true
	})
	return values, nil
}

func (s *storeImpl) Size() (int, error) {
	return s.data.Size(), nil
}

func (s *storeImpl) CompareAndSwap(key string, oldValue, newValue []byte) (bool, error) {
	newCopy := clone(newValue)
	swapped := false

	s.data.Compute(key, func(current []byte, loaded bool) ([]byte, bool) {
		// check the expectation against the current state
		matches := (oldValue == nil && !loaded) || (oldValue != nil && loaded && bytes.Equal(current, oldValue))
		if !matches {
			// keep the current state, delete=true if there is nothing to keep
			return current, !loaded
		}

		swapped = true

		// CASE DELETE
		if newCopy == nil {
			s.valueBytes.Add(-int64(len(current)))
			return current, true
		}

		// CASE WRITE
		s.valueBytes.Add(int64(len(newCopy) - len(current)))
		return newCopy, false
	})

	if swapped && newCopy != nil {
		s.valueSizes.Update(int64(len(newCopy)))
	}

	Logger.Debugf("compare-and-swap %q: swapped=%t", key, swapped)
	return swapped, nil
}

func (s *storeImpl) Info() (store.Info, error) {
	snapshot := s.valueSizes.Snapshot()
	percentiles := snapshot.Percentiles([]float64{0.5, 0.99})

	return store.Info{
		Keys:       s.data.Size(),
		ValueBytes: s.valueBytes.Load(),
		Distribution: store.ValueSizeReport{
			Count: snapshot.Count(),
			Min:   snapshot.Min(),
			Max:   snapshot.Max(),
			Mean:  snapshot.Mean(),
			P50:   percentiles[0],
			P99:   percentiles[1],
		},
		Metadata: map[string]string{"engine": "memory"},
	}, nil
}
