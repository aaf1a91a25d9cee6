package remote

import "net/http"

const (
	DefaultLeasePath  = "/game/session/remote/lease"
	DefaultStatusPath = "/game/session/remote"
)

// Config identifies the game to the platform. Both calls are unauthenticated;
// GameKey and GameVersion are the only credentials sent.
type Config struct {
	BaseURL     string
	GameKey     string
	GameVersion string
	LeasePath   string
	StatusPath  string
	UserAgent   string
	HTTPClient  *http.Client
}

func (c Config) leasePath() string {
	if c.LeasePath == "" {
		return DefaultLeasePath
	}
	return c.LeasePath
}

func (c Config) statusPath() string {
	if c.StatusPath == "" {
		return DefaultStatusPath
	}
	return c.StatusPath
}
