package mstore

import (
	"testing"

	"github.com/ValentinKolb/nanoKV/lib/store"
	storetesting "github.com/ValentinKolb/nanoKV/lib/store/testing"
)

func Test(t *testing.T) {
	storetesting.RunIStoreTests(t, "MemoryStore", func() store.IStore {
		return NewMemoryStore()
	})
}

func Benchmark(b *testing.B) {
	storetesting.RunIStoreBenchmarks(b, "MemoryStore", func() store.IStore {
		return NewMemoryStore()
	})
}

func TestInfo(t *testing.T) {
	s := NewMemoryStore()

	_ = s.Set("a", make([]byte, 10))
	_ = s.Set("b", make([]byte, 30))
	_ = s.Set("a", make([]byte, 20)) // overwrite shrinks/grows the byte count

	info, err := s.Info()
	if err != nil {
		t.Fatalf("Info returned error: %v", err)
	}
	if info.Keys != 2 {
		t.Errorf("Expected 2 keys, got %d", info.Keys)
	}
	if info.ValueBytes != 50 {
		t.Errorf("Expected 50 value bytes, got %d", info.ValueBytes)
	}
	if info.Distribution.Count != 3 {
		t.Errorf("Expected 3 samples in value size distribution, got %d", info.Distribution.Count)
	}
	if info.Distribution.Min != 10 || info.Distribution.Max != 30 {
		t.Errorf("Unexpected min/max: %d/%d", info.Distribution.Min, info.Distribution.Max)
	}

	_ = s.Delete("b")
	info, _ = s.Info()
	if info.ValueBytes != 20 {
		t.Errorf("Expected 20 value bytes after delete, got %d", info.ValueBytes)
	}

	_ = s.Clear()
	info, _ = s.Info()
	if info.Keys != 0 || info.ValueBytes != 0 {
		t.Errorf("Expected empty info after Clear, got %+v", info)
	}
}
