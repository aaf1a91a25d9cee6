// Package audit implements asynchronous delivery of lease lifecycle events.
//
// # Components
//
//   - [Sink]: interface for event consumers (channel, JSON writer, no-op).
//   - [Dispatcher]: buffered relay with drop-if-full / block-if-full semantics.
//   - [Event]: lease lifecycle record: handle, lease code, status, player, error code.
//
// The dispatcher never decides which events to emit; the engine does.
// Sinks must not receive nonces or session tokens, and Event has no field
// for either.
package audit
