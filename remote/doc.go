// Package remote implements the two platform calls behind a cross-device
// login: leasing a pending handshake and checking its status.
//
// # Components
//
//   - [LeaseClient] creates a lease and returns its [Descriptor] (code, nonce,
//     display URL, QR image).
//   - [StatusClient] checks a lease and returns an [Outcome], carrying
//     [session.Credentials] once the lease is [StatusAuthorized].
//   - [Classify] decides whether a failed status check may be retried.
//
// # What this package must NOT do
//
//   - Retry lease creation or status checks; callers own the polling loop.
//   - Log nonces or tokens in full.
package remote
