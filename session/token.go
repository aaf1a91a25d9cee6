package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry returns the exp claim of a JWT-shaped session token.
//
// The signature is not verified. ok is false for opaque tokens or tokens
// without an exp claim.
func TokenExpiry(token string) (exp time.Time, ok bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	numeric, err := claims.GetExpirationTime()
	if err != nil || numeric == nil {
		return time.Time{}, false
	}
	return numeric.Time, true
}

// storageTTL picks the TTL for a session token: time until its exp claim
// when present, otherwise fallback.
func storageTTL(token string, now time.Time, fallback time.Duration) (time.Duration, error) {
	exp, ok := TokenExpiry(token)
	if !ok {
		return fallback, nil
	}
	ttl := exp.Sub(now)
	if ttl <= 0 {
		return 0, ErrSessionExpired
	}
	return ttl, nil
}
