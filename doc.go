// Package leaseauth drives cross-device ("remote") login for game clients:
// lease a pending handshake, show it to the player as a URL or QR code, and
// poll the platform until the player approves it on a second device.
//
// An [Engine] built through [Builder.Build] is safe for concurrent use.
// [Engine.StartLeaseProcess] returns an opaque [Handle]; everything else is
// reported through the callbacks in [LeaseOptions]. At most one lease process
// is meant to be live at a time, so starting a new one cancels the others.
//
// # Lifecycle guarantees
//
//   - OnComplete fires exactly once per process, with one of Authorized,
//     Cancelled, TimedOut or Failed.
//   - OnProgress never fires after OnComplete.
//   - A completed process is no longer registered; its handle is never reused.
//   - Cancellation is cooperative: an in-flight status check finishes and its
//     result is ignored.
//
// # What this package must NOT do
//
//   - Log lease nonces, redirect URLs or session tokens in full.
//   - Retry lease creation; only status polling is retried.
//   - Hold the registry lock across a network call.
package leaseauth
