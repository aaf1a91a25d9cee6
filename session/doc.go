// Package session persists the credentials produced by an authorized remote
// lease.
//
// Two [Store] implementations ship with the package: [MemoryStore] for
// single-process clients and tests, and [RedisStore] for clients that share a
// session across processes. Both index credentials by player identifier and
// track the most recently saved session.
//
// # Architecture boundaries
//
// This package owns credential storage and the TTL derived from a session
// token's expiry claim. It does NOT verify token signatures; tokens are
// issued by the platform and only read for their exp claim.
//
// # What this package must NOT do
//
//   - Import leaseauth or any sibling package (no upward imports).
//   - Log or expose session and refresh tokens.
package session
