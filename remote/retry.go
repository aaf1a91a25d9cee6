package remote

import "errors"

// DefaultRetryLimit is the number of transient status-check failures a lease
// process absorbs before failing.
const DefaultRetryLimit = 5

// RetryClass is the verdict of [Classify].
type RetryClass uint8

const (
	RetryPermanent RetryClass = iota
	RetryTransient
)

func (c RetryClass) String() string {
	if c == RetryTransient {
		return "transient"
	}
	return "permanent"
}

// Classify maps a failed status check to a retry verdict. Only server faults
// (5xx) are transient, and only while retries is below limit.
func Classify(err error, retries, limit int) RetryClass {
	if err == nil || retries >= limit {
		return RetryPermanent
	}
	if IsServerFault(err) {
		return RetryTransient
	}
	return RetryPermanent
}

// IsServerFault reports whether err carries a 5xx platform response.
func IsServerFault(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.ServerFault()
}
