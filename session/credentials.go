package session

import (
	"errors"
	"time"
)

var (
	// ErrSessionNotFound is returned when no credentials are stored for a key.
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidCredentials is returned when credentials lack a session token or player identifier.
	ErrInvalidCredentials = errors.New("invalid session credentials")
	// ErrSessionExpired is returned when saving a token whose exp claim has passed.
	ErrSessionExpired = errors.New("session token expired")
	// ErrRedisUnavailable wraps Redis transport failures.
	ErrRedisUnavailable = errors.New("redis unavailable")
)

// Credentials is the session payload returned once a remote lease is authorized.
type Credentials struct {
	SessionToken     string    `json:"session_token"`
	RefreshToken     string    `json:"refresh_token,omitempty"`
	PlayerIdentifier string    `json:"player_identifier"`
	PlayerID         int64     `json:"player_id,omitempty"`
	PlayerULID       string    `json:"player_ulid,omitempty"`
	PlayerName       string    `json:"player_name,omitempty"`
	PublicUID        string    `json:"public_uid,omitempty"`
	SeenBefore       bool      `json:"seen_before,omitempty"`
	ReceivedAt       time.Time `json:"received_at"`
}

// Validate reports whether the credentials can be stored.
func (c Credentials) Validate() error {
	if c.SessionToken == "" || c.PlayerIdentifier == "" {
		return ErrInvalidCredentials
	}
	return nil
}

// String never includes token material.
func (c Credentials) String() string {
	return "session.Credentials{player=" + c.PlayerIdentifier + "}"
}
