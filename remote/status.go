package remote

import (
	"fmt"
	"strings"
)

// Status is the progress of a remote lease. The four terminal values end a
// lease process; the other three only report progress.
type Status uint8

const (
	StatusUnknown Status = iota
	StatusCreated
	StatusClaimed
	StatusVerified
	StatusAuthorized
	StatusCancelled
	StatusTimedOut
	StatusFailed
)

var statusNames = [...]string{
	StatusUnknown:    "Unknown",
	StatusCreated:    "Created",
	StatusClaimed:    "Claimed",
	StatusVerified:   "Verified",
	StatusAuthorized: "Authorized",
	StatusCancelled:  "Cancelled",
	StatusTimedOut:   "TimedOut",
	StatusFailed:     "Failed",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

// IsTerminal reports whether s ends a lease process.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusAuthorized, StatusCancelled, StatusTimedOut, StatusFailed:
		return true
	default:
		return false
	}
}

// ParseStatus maps a wire name to a Status, ignoring case. "Timed_Out" and
// "Canceled" spellings are accepted as well.
func ParseStatus(name string) (Status, error) {
	normalized := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "_", ""))
	switch normalized {
	case "created":
		return StatusCreated, nil
	case "claimed":
		return StatusClaimed, nil
	case "verified":
		return StatusVerified, nil
	case "authorized":
		return StatusAuthorized, nil
	case "cancelled", "canceled":
		return StatusCancelled, nil
	case "timedout":
		return StatusTimedOut, nil
	case "failed":
		return StatusFailed, nil
	}
	return StatusUnknown, fmt.Errorf("%w: unknown lease status %q", ErrMalformedResponse, name)
}

func (s Status) MarshalText() ([]byte, error) {
	if s == StatusUnknown || int(s) >= len(statusNames) {
		return nil, fmt.Errorf("cannot encode lease status %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
