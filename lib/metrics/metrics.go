package metrics

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/ValentinKolb/nanoKV/lib/ops"
	vm "github.com/VictoriaMetrics/metrics"
)

const (
	operationsMetric   = "nanokv_operations_total"
	skippedBytesMetric = "nanokv_protocol_skipped_bytes_total"
	connectionsMetric  = "nanokv_connections_active"
	acceptedMetric     = "nanokv_connections_accepted_total"
)

// Registry is the process-wide counter sink. It counts executed operations per
// kind and a few connection level figures. It implements store.Observer.
//
// Thread-safety: All methods are safe for concurrent use.
type Registry struct {
	set         *vm.Set
	operations  map[ops.Kind]*vm.Counter
	skipped     *vm.Counter
	accepted    *vm.Counter
	connections atomic.Int64
}

// NewRegistry creates a registry with a counter for every operation kind.
func NewRegistry() *Registry {
	r := &Registry{
		set:        vm.NewSet(),
		operations: make(map[ops.Kind]*vm.Counter, len(ops.AllKinds)),
	}

	// counters are created upfront, the map is read-only afterwards
	for _, kind := range ops.AllKinds {
		r.operations[kind] = r.set.NewCounter(fmt.Sprintf(`%s{op=%q}`, operationsMetric, kind.String()))
	}
	r.skipped = r.set.NewCounter(skippedBytesMetric)
	r.accepted = r.set.NewCounter(acceptedMetric)
	r.set.NewGauge(connectionsMetric, func() float64 {
		return float64(r.connections.Load())
	})

	return r
}

// Observe counts one executed operation of the given kind.
func (r *Registry) Observe(kind ops.Kind) {
	if c, ok := r.operations[kind]; ok {
		c.Inc()
	}
}

// Operations returns how many operations of the given kind were observed.
func (r *Registry) Operations(kind ops.Kind) uint64 {
	if c, ok := r.operations[kind]; ok {
		return c.Get()
	}
	return 0
}

// AddSkippedBytes counts bytes the protocol decoder discarded while resyncing.
func (r *Registry) AddSkippedBytes(n uint64) {
	if n > 0 {
		r.skipped.Add(int(n))
	}
}

// SkippedBytes returns the number of discarded protocol bytes.
func (r *Registry) SkippedBytes() uint64 {
	return r.skipped.Get()
}

// ConnectionOpened records a newly accepted connection.
func (r *Registry) ConnectionOpened() {
	r.accepted.Inc()
	r.connections.Add(1)
}

// ConnectionClosed records a closed connection.
func (r *Registry) ConnectionClosed() {
	r.connections.Add(-1)
}

// ActiveConnections returns the number of currently open connections.
func (r *Registry) ActiveConnections() int64 {
	return r.connections.Load()
}

// WritePrometheus writes all metrics in Prometheus text format to w.
func (r *Registry) WritePrometheus(w io.Writer) {
	r.set.WritePrometheus(w)
}
