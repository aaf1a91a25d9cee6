package internaldefs

import (
	leaseauth "github.com/MrEthical07/leaseauth"
)

// CounterDef names one engine counter for exporters.
type CounterDef struct {
	ID   leaseauth.MetricID
	Name string
	Help string
}

// HistogramDef names one engine histogram for exporters.
type HistogramDef struct {
	ID   leaseauth.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in a stable order.
var CounterDefs = []CounterDef{
	{ID: leaseauth.MetricLeaseCreated, Name: "leaseauth_lease_created_total", Help: "Remote leases created."},
	{ID: leaseauth.MetricLeaseCreateFailed, Name: "leaseauth_lease_create_failed_total", Help: "Failed remote lease creations."},
	{ID: leaseauth.MetricStatusCheck, Name: "leaseauth_status_check_total", Help: "Issued lease status checks."},
	{ID: leaseauth.MetricStatusTransientRetry, Name: "leaseauth_status_transient_retry_total", Help: "Status checks absorbed as transient server faults."},
	{ID: leaseauth.MetricStatusDiscarded, Name: "leaseauth_status_discarded_total", Help: "Status results discarded after cancellation."},
	{ID: leaseauth.MetricProgress, Name: "leaseauth_progress_total", Help: "Progress callbacks delivered."},
	{ID: leaseauth.MetricProcessAuthorized, Name: "leaseauth_process_authorized_total", Help: "Lease processes ending authorized."},
	{ID: leaseauth.MetricProcessCancelled, Name: "leaseauth_process_cancelled_total", Help: "Lease processes ending cancelled."},
	{ID: leaseauth.MetricProcessTimedOut, Name: "leaseauth_process_timed_out_total", Help: "Lease processes ending timed out."},
	{ID: leaseauth.MetricProcessFailed, Name: "leaseauth_process_failed_total", Help: "Lease processes ending failed."},
	{ID: leaseauth.MetricProcessSuperseded, Name: "leaseauth_process_superseded_total", Help: "Lease processes cancelled by a newer start."},
	{ID: leaseauth.MetricSessionPersistFailed, Name: "leaseauth_session_persist_failed_total", Help: "Session store failures after authorization."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: leaseauth.MetricStatusCheckLatency, Name: "leaseauth_status_check_latency_seconds", Help: "Lease status check latency."},
}

// AuditDroppedName is the counter for audit events dropped under backpressure.
const AuditDroppedName = "leaseauth_audit_dropped_total"

// AuditDroppedHelp describes [AuditDroppedName].
const AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."

// AuditDeliveredName is the counter for audit events handed to the sink.
const AuditDeliveredName = "leaseauth_audit_delivered_total"

// AuditDeliveredHelp describes [AuditDeliveredName].
const AuditDeliveredHelp = "Audit events delivered to the configured sink."

// HistogramBounds are the bucket upper bounds in seconds, +Inf last.
var HistogramBounds = []string{
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"1",
	"2.5",
	"5",
	"+Inf",
}

// HistogramUpperBounds are the finite bounds of [HistogramBounds] as floats.
var HistogramUpperBounds = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// HistogramBoundSuffix holds instrument-name-safe forms of [HistogramBounds].
var HistogramBoundSuffix = []string{
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"1",
	"2_5",
	"5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed eight-bucket array, padding with zeros.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
