// Package flows contains the pure-function orchestration behind one lease
// poll tick.
//
// [RunLeaseTick] accepts a typed dependency struct and returns the tick's
// verdict without side effects beyond those dependencies. The root scheduler
// owns waiting, callbacks, registry bookkeeping, metrics and audit.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import leaseauth (to avoid import cycles).
//   - Sleep or block beyond the injected status check and session save.
package flows
