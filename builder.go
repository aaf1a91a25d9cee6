package leaseauth

import (
	"errors"
	"net/http"

	"github.com/redis/go-redis/v9"
	"pkt.systems/pslog"

	internalaudit "github.com/MrEthical07/leaseauth/internal/audit"
	"github.com/MrEthical07/leaseauth/remote"
	"github.com/MrEthical07/leaseauth/session"
)

// Builder assembles an [Engine]. A Builder can be built once.
type Builder struct {
	config     Config
	httpClient *http.Client
	store      SessionStore
	redis      redis.UniversalClient
	logger     pslog.Base
	auditSink  AuditSink

	built bool
}

// New returns a Builder preloaded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithHTTPClient sets the client used for both platform calls. Without it
// the engine uses a client whose timeout is API.RequestTimeout.
func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.httpClient = client
	return b
}

// WithSessionStore sets where authorized credentials are written. It takes
// precedence over [Builder.WithRedis].
func (b *Builder) WithSessionStore(store SessionStore) *Builder {
	b.store = store
	return b
}

// WithRedis stores authorized credentials in Redis through a
// [session.RedisStore] keyed under Session.RedisPrefix.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithLogger sets the structured logger. nil keeps the no-op logger.
func (b *Builder) WithLogger(logger pslog.Base) *Builder {
	b.logger = logger
	return b
}

// WithAuditSink sets the audit sink and enables auditing.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	if sink != nil {
		b.config.Audit.Enabled = true
	}
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and wires the engine. No network call
// is made.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// -------- TRANSPORT --------
	httpClient := b.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.API.RequestTimeout}
	}
	remoteCfg := cfg.remoteConfig()
	remoteCfg.HTTPClient = httpClient

	// -------- SESSION STORE --------
	store := b.store
	if store == nil {
		if b.redis != nil {
			store = session.NewRedisStore(b.redis, cfg.Session.RedisPrefix, cfg.Session.DefaultTTL)
		} else {
			store = session.NewMemoryStore(cfg.Session.DefaultTTL)
		}
	}

	// -------- LOGGING --------
	logger := b.logger
	if logger == nil {
		logger = pslog.NoopLogger()
	}

	// -------- AUDIT --------
	dispatcher := internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)

	b.built = true
	return &Engine{
		config:    cfg,
		leases:    remote.NewLeaseClient(remoteCfg),
		status:    remote.NewStatusClient(remoteCfg),
		store:     store,
		scheduler: newProcessScheduler(logger),
		metrics:   NewMetrics(cfg.Metrics),
		audit:     dispatcher,
		logger:    logger,
	}, nil
}
