package remote

import (
	"errors"

	"github.com/MrEthical07/leaseauth/internal/transport"
)

var (
	// ErrMalformedResponse is returned when a 2xx body is not a usable lease document.
	ErrMalformedResponse = transport.ErrMalformedBody
	// ErrLeaseRejected is returned when the platform reports the lease as cancelled, timed out or failed.
	ErrLeaseRejected = errors.New("lease rejected by platform")
)

// APIError is a non-2xx platform response. StatusCode drives [Classify].
type APIError = transport.StatusError
