package leaseauth

import (
	"errors"

	"github.com/MrEthical07/leaseauth/remote"
)

var (
	// ErrEngineNotReady is returned by a nil or closed engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrInvalidOptions is returned for negative poll intervals or timeouts.
	ErrInvalidOptions = errors.New("invalid lease options")
	// ErrLeaseCreateFailed wraps any failure to lease a remote session.
	ErrLeaseCreateFailed = errors.New("lease creation failed")
	// ErrMalformedResponse is returned when a platform response cannot be used.
	ErrMalformedResponse = remote.ErrMalformedResponse
	// ErrLeaseRejected is returned when the platform ends the lease on its side.
	ErrLeaseRejected = remote.ErrLeaseRejected
	// ErrRetryBudgetExhausted wraps the server error that exceeded the retry budget.
	ErrRetryBudgetExhausted = errors.New("lease status retry budget exhausted")
	// ErrSessionPersist wraps a session store failure after authorization.
	ErrSessionPersist = errors.New("session persist failed")
	// ErrTimeout is the error of a TimedOut result.
	ErrTimeout = errors.New("lease process timed out")
	// ErrCancelled is the error of a Cancelled result.
	ErrCancelled = errors.New("lease process cancelled")
	// ErrHandleMint is returned when a process handle cannot be generated.
	ErrHandleMint = errors.New("lease handle generation failed")
)

// APIError is a non-2xx platform response.
type APIError = remote.APIError
