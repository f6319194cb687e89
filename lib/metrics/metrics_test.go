package metrics

import (
	"bytes"
	"sync"
	"testing"

	"github.com/ValentinKolb/nanoKV/lib/ops"
	"github.com/stretchr/testify/assert"
)

func TestRegistryCountsOperations(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Observe(ops.KindGet)
			r.Observe(ops.KindSet)
		}()
	}
	wg.Wait()
	r.Observe(ops.KindFlush)
	r.Observe(ops.KindUnknown) // ignored

	assert.Equal(t, uint64(10), r.Operations(ops.KindGet))
	assert.Equal(t, uint64(10), r.Operations(ops.KindSet))
	assert.Equal(t, uint64(1), r.Operations(ops.KindFlush))
	assert.Equal(t, uint64(0), r.Operations(ops.KindDelete))
	assert.Equal(t, uint64(0), r.Operations(ops.KindUnknown))
}

func TestRegistryConnectionsAndSkippedBytes(t *testing.T) {
	r := NewRegistry()

	r.ConnectionOpened()
	r.ConnectionOpened()
	r.ConnectionClosed()
	r.AddSkippedBytes(3)
	r.AddSkippedBytes(0)

	assert.Equal(t, int64(1), r.ActiveConnections())
	assert.Equal(t, uint64(3), r.SkippedBytes())
}

func TestRegistryWritePrometheus(t *testing.T) {
	r := NewRegistry()
	r.Observe(ops.KindDelete)
	r.ConnectionOpened()

	var buf bytes.Buffer
	r.WritePrometheus(&buf)
	out := buf.String()

	assert.Contains(t, out, `nanokv_operations_total{op="delete"} 1`)
	assert.Contains(t, out, `nanokv_operations_total{op="get"} 0`)
	assert.Contains(t, out, "nanokv_connections_active 1")
	assert.Contains(t, out, "nanokv_protocol_skipped_bytes_total 0")
}
