package leaseauth

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	internalaudit "github.com/MrEthical07/leaseauth/internal/audit"
	"github.com/MrEthical07/leaseauth/remote"
	"github.com/MrEthical07/leaseauth/session"
)

// LeaseStatus is the progress of a remote lease.
type LeaseStatus = remote.Status

const (
	LeaseStatusCreated    = remote.StatusCreated
	LeaseStatusClaimed    = remote.StatusClaimed
	LeaseStatusVerified   = remote.StatusVerified
	LeaseStatusAuthorized = remote.StatusAuthorized
	LeaseStatusCancelled  = remote.StatusCancelled
	LeaseStatusTimedOut   = remote.StatusTimedOut
	LeaseStatusFailed     = remote.StatusFailed
)

// LeaseDescriptor is what the player needs to approve a lease: a display URL
// and a QR image. Its String method redacts the nonce.
type LeaseDescriptor = remote.Descriptor

// Credentials are the session credentials of an authorized lease.
type Credentials = session.Credentials

// SessionStore receives credentials once a lease is authorized.
type SessionStore interface {
	Save(ctx context.Context, creds Credentials) error
}

// Handle identifies one lease process. The zero Handle refers to nothing.
type Handle struct {
	id uuid.UUID
}

func newHandle() (Handle, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return Handle{}, err
	}
	return Handle{id: id}, nil
}

// ParseHandle parses the form produced by [Handle.String].
func ParseHandle(s string) (Handle, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return Handle{}, err
	}
	return Handle{id: id}, nil
}

func (h Handle) String() string {
	if h.IsZero() {
		return ""
	}
	return h.id.String()
}

func (h Handle) IsZero() bool {
	return h.id == uuid.Nil
}

// ProgressUpdate is passed to OnProgress for every non-terminal status
// observation, repeats included.
type ProgressUpdate struct {
	Handle      Handle
	Status      LeaseStatus
	LastUpdated time.Time
}

// LeaseResult is passed to OnComplete exactly once.
type LeaseResult struct {
	Handle Handle
	// Status is one of Authorized, Cancelled, TimedOut or Failed.
	Status LeaseStatus
	// Credentials is set only for Authorized.
	Credentials *Credentials
	// Err is nil only for Authorized.
	Err error
	// Retries counts transient status-check failures absorbed by the process.
	Retries int
}

// LeaseOptions configures one lease process. Zero durations use the engine
// defaults; callbacks may be nil. Callbacks run on the process goroutine,
// except that a lease-creation failure reports OnComplete on the caller's
// goroutine before StartLeaseProcess returns.
type LeaseOptions struct {
	PollInterval  time.Duration
	Timeout       time.Duration
	OnLeaseIntent func(LeaseDescriptor)
	OnProgress    func(ProgressUpdate)
	OnComplete    func(LeaseResult)
}

// AuditEvent is a lease lifecycle record emitted to the configured sink.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink writes one JSON-encoded event per line.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] writing to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
