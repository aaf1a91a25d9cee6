// Package otel publishes leaseauth engine metrics through OpenTelemetry
// observable instruments.
//
// [NewOTelExporter] registers an Int64ObservableCounter per engine counter and
// an Int64ObservableGauge per cumulative latency bucket. One callback reads
// [leaseauth.Engine.MetricsSnapshot] on each collection.
//
// # What this package must NOT do
//
//   - Own the MeterProvider. Callers supply the Meter.
//   - Mutate engine state.
package otel
