package leaseauth

import (
	"errors"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/MrEthical07/leaseauth/remote"
)

// EnvPrefix prefixes every variable read by [LoadConfigFromEnv].
const EnvPrefix = "LEASEAUTH_"

// Config holds engine configuration. Build it with [DefaultConfig] or
// [LoadConfigFromEnv], adjust, and pass it to [Builder.WithConfig].
type Config struct {
	API     APIConfig     `envPrefix:"API_"`
	Polling PollingConfig `envPrefix:"POLL_"`
	Session SessionConfig `envPrefix:"SESSION_"`
	Audit   AuditConfig   `envPrefix:"AUDIT_"`
	Metrics MetricsConfig `envPrefix:"METRICS_"`
}

/*
====================================
API CONFIG
====================================
*/

// APIConfig identifies the platform and the game. Lease calls are
// unauthenticated; GameKey and GameVersion are sent with each of them.
type APIConfig struct {
	BaseURL        string        `env:"BASE_URL"`
	GameKey        string        `env:"GAME_KEY"`
	GameVersion    string        `env:"GAME_VERSION"`
	LeasePath      string        `env:"LEASE_PATH"`
	StatusPath     string        `env:"STATUS_PATH"`
	UserAgent      string        `env:"USER_AGENT"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

/*
====================================
POLLING CONFIG
====================================
*/

// PollingConfig holds the defaults applied to [LeaseOptions].
type PollingConfig struct {
	DefaultInterval time.Duration `env:"INTERVAL"`
	MinInterval     time.Duration `env:"MIN_INTERVAL"`
	DefaultTimeout  time.Duration `env:"TIMEOUT"`
	// RetryLimit is the transient-failure budget per process. It is consumed
	// monotonically and never reset by a successful check.
	RetryLimit int `env:"RETRY_LIMIT"`
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig applies to the session stores created by the builder.
type SessionConfig struct {
	RedisPrefix string `env:"REDIS_PREFIX"`
	// DefaultTTL applies to opaque session tokens without an exp claim.
	DefaultTTL time.Duration `env:"DEFAULT_TTL"`
	// PersistTimeout bounds saving credentials after an authorized check,
	// independently of the status call that preceded it.
	PersistTimeout time.Duration `env:"PERSIST_TIMEOUT"`
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool `env:"ENABLED"`
	BufferSize int  `env:"BUFFER_SIZE"`
	DropIfFull bool `env:"DROP_IF_FULL"`
}

// MetricsConfig controls in-process counters and the status-check latency histogram.
type MetricsConfig struct {
	Enabled                 bool `env:"ENABLED"`
	EnableLatencyHistograms bool `env:"LATENCY_HISTOGRAMS"`
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns a configuration with every field but API.BaseURL and
// API.GameKey filled in.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		API: APIConfig{
			GameVersion:    "0.0.0.1",
			LeasePath:      remote.DefaultLeasePath,
			StatusPath:     remote.DefaultStatusPath,
			UserAgent:      "leaseauth-go",
			RequestTimeout: 15 * time.Second,
		},
		Polling: PollingConfig{
			DefaultInterval: time.Second,
			MinInterval:     100 * time.Millisecond,
			DefaultTimeout:  5 * time.Minute,
			RetryLimit:      remote.DefaultRetryLimit,
		},
		Session: SessionConfig{
			RedisPrefix:    "leaseauth",
			DefaultTTL:     24 * time.Hour,
			PersistTimeout: 5 * time.Second,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

// LoadConfigFromEnv returns [DefaultConfig] overlaid with LEASEAUTH_*
// environment variables, e.g. LEASEAUTH_API_BASE_URL or
// LEASEAUTH_POLL_INTERVAL=2s. The result is not validated.
func LoadConfigFromEnv() (Config, error) {
	cfg := defaultConfig()
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	// API
	if c.API.BaseURL == "" {
		return errors.New("API BaseURL is required")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.New("API BaseURL must be an absolute http(s) URL")
	}
	if c.API.GameKey == "" {
		return errors.New("API GameKey is required")
	}
	if c.API.GameVersion == "" {
		return errors.New("API GameVersion is required")
	}
	if c.API.LeasePath == "" || c.API.StatusPath == "" {
		return errors.New("API LeasePath and StatusPath are required")
	}
	if c.API.RequestTimeout <= 0 {
		return errors.New("API RequestTimeout must be > 0")
	}

	// Polling
	if c.Polling.MinInterval <= 0 {
		return errors.New("Polling MinInterval must be > 0")
	}
	if c.Polling.DefaultInterval < c.Polling.MinInterval {
		return errors.New("Polling DefaultInterval must be >= MinInterval")
	}
	if c.Polling.DefaultTimeout <= 0 {
		return errors.New("Polling DefaultTimeout must be > 0")
	}
	if c.Polling.RetryLimit < 0 {
		return errors.New("Polling RetryLimit must be >= 0")
	}

	// Session
	if c.Session.RedisPrefix == "" {
		return errors.New("Session RedisPrefix is required")
	}
	if c.Session.DefaultTTL < 0 {
		return errors.New("Session DefaultTTL must be >= 0")
	}
	if c.Session.PersistTimeout <= 0 {
		return errors.New("Session PersistTimeout must be > 0")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when Audit is enabled")
	}
	return nil
}

func (c Config) remoteConfig() remote.Config {
	return remote.Config{
		BaseURL:     c.API.BaseURL,
		GameKey:     c.API.GameKey,
		GameVersion: c.API.GameVersion,
		LeasePath:   c.API.LeasePath,
		StatusPath:  c.API.StatusPath,
		UserAgent:   c.API.UserAgent,
	}
}
