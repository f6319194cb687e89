// Package metrics is the operation counter sink of nanoKV.
//
// A Registry holds one counter per operation kind
// (nanokv_operations_total{op="..."}), a counter for bytes skipped by the
// binary protocol decoder while resyncing, and connection figures. It is
// purely observational: the store executor and the connection handlers
// notify it, nothing reads it to make decisions.
//
// The metrics are exposed in Prometheus text format by the HTTP facade under
// /metrics.
package metrics
