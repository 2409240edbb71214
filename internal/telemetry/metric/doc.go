// Package metric provides Prometheus metrics for the lingvo client.
//
//   - prometheus.go: the client registry (request counters and latency,
//     session transitions, superseded list responses)
//   - collector.go: a collector reporting the current session state
//
// A CLI process is short lived, so instead of serving /metrics the
// registry is written to a node_exporter textfile when configured.
package metric
