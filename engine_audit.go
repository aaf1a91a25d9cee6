package leaseauth

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/leaseauth/remote"
)

const (
	auditEventLeaseCreated      = "lease_created"
	auditEventLeaseCreateFailed = "lease_create_failed"
	auditEventLeaseSuperseded   = "lease_superseded"
	auditEventLeaseAuthorized   = "lease_authorized"
	auditEventLeaseCancelled    = "lease_cancelled"
	auditEventLeaseTimedOut     = "lease_timed_out"
	auditEventLeaseFailed       = "lease_failed"
)

// AuditErrorCode is the short error classification carried by audit events.
type AuditErrorCode string

const (
	auditErrCancelled      AuditErrorCode = "cancelled"
	auditErrTimeout        AuditErrorCode = "timeout"
	auditErrRetryExhausted AuditErrorCode = "retry_budget_exhausted"
	auditErrSessionPersist AuditErrorCode = "session_persist_failed"
	auditErrMalformed      AuditErrorCode = "malformed_response"
	auditErrLeaseRejected  AuditErrorCode = "lease_rejected"
	auditErrClientRequest  AuditErrorCode = "client_request"
	auditErrServer         AuditErrorCode = "server_error"
	auditErrInvalidOptions AuditErrorCode = "invalid_options"
	auditErrNotReady       AuditErrorCode = "engine_not_ready"
	auditErrInternal       AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	h Handle,
	leaseCode string,
	status LeaseStatus,
	playerIdentifier string,
	err error,
) {
	if e == nil || e.audit == nil {
		return
	}
	event := AuditEvent{
		Timestamp:        time.Now().UTC(),
		EventType:        eventType,
		Handle:           h.String(),
		LeaseCode:        leaseCode,
		PlayerIdentifier: playerIdentifier,
		Success:          success,
	}
	if status != remote.StatusUnknown {
		event.Status = status.String()
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}
	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	switch {
	case errors.Is(err, ErrCancelled):
		return auditErrCancelled
	case errors.Is(err, ErrTimeout):
		return auditErrTimeout
	case errors.Is(err, ErrRetryBudgetExhausted):
		return auditErrRetryExhausted
	case errors.Is(err, ErrSessionPersist):
		return auditErrSessionPersist
	case errors.Is(err, ErrMalformedResponse):
		return auditErrMalformed
	case errors.Is(err, ErrLeaseRejected):
		return auditErrLeaseRejected
	case errors.Is(err, ErrInvalidOptions):
		return auditErrInvalidOptions
	case errors.Is(err, ErrEngineNotReady):
		return auditErrNotReady
	case errors.As(err, &apiErr):
		if apiErr.ServerFault() {
			return auditErrServer
		}
		return auditErrClientRequest
	default:
		return auditErrInternal
	}
}
