// Package prometheus exposes leaseauth engine metrics as a
// client_golang Collector.
//
// [NewPrometheusExporter] wraps an [leaseauth.Engine]. Counters are named
// leaseauth_*_total; the single histogram is
// leaseauth_status_check_latency_seconds.
//
// # What this package must NOT do
//
//   - Register in the global Prometheus registry. Callers mount Handler or
//     register the exporter themselves.
//   - Mutate engine state.
package prometheus
