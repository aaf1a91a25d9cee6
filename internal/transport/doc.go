// Package transport implements the JSON-over-HTTP request helper shared by the
// lease and status clients.
//
// # Architecture boundaries
//
// This package owns request encoding, response decoding and mapping of
// non-2xx responses to [StatusError]. It does NOT retry; retry policy for
// status polling lives with the scheduler.
//
// # What this package must NOT do
//
//   - Import leaseauth or any sibling package.
//   - Log request or response bodies (they carry lease nonces and session tokens).
package transport
