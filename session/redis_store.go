package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const deleteSessionScript = `
redis.call("DEL", KEYS[1])
if redis.call("GET", KEYS[2]) == ARGV[1] then
  redis.call("DEL", KEYS[2])
end
return 1
`

var deleteSessionLua = redis.NewScript(deleteSessionScript)

// RedisStore is a Redis-backed [Store]. Credentials are stored as JSON under
// prefix:session:<player identifier>; prefix:latest points at the most
// recently saved player.
//
//	Performance: Save is one MULTI/EXEC with two SETs; Latest is two GETs.
type RedisStore struct {
	redis      redis.UniversalClient
	prefix     string
	defaultTTL time.Duration
	now        func() time.Time
}

// NewRedisStore creates a [RedisStore]. defaultTTL applies to opaque session
// tokens without an exp claim; 0 stores them without expiry.
func NewRedisStore(client redis.UniversalClient, prefix string, defaultTTL time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "leaseauth"
	}
	return &RedisStore{
		redis:      client,
		prefix:     prefix,
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

func (s *RedisStore) key(playerIdentifier string) string {
	return s.prefix + ":session:" + playerIdentifier
}

func (s *RedisStore) latestKey() string {
	return s.prefix + ":latest"
}

// Save writes creds and marks them as the latest session.
func (s *RedisStore) Save(ctx context.Context, creds Credentials) error {
	if err := creds.Validate(); err != nil {
		return err
	}
	ttl, err := storageTTL(creds.SessionToken, s.now(), s.defaultTTL)
	if err != nil {
		return err
	}
	data, err := json.Marshal(creds)
	if err != nil {
		return err
	}

	key := s.key(creds.PlayerIdentifier)
	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, ttl)
		pipe.Set(ctx, s.latestKey(), creds.PlayerIdentifier, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Load returns the credentials saved for playerIdentifier.
func (s *RedisStore) Load(ctx context.Context, playerIdentifier string) (Credentials, error) {
	data, err := s.redis.Get(ctx, s.key(playerIdentifier)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Credentials{}, ErrSessionNotFound
		}
		return Credentials{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, fmt.Errorf("decode session: %w", err)
	}
	return creds, nil
}

// Latest returns the most recently saved credentials.
func (s *RedisStore) Latest(ctx context.Context) (Credentials, error) {
	playerIdentifier, err := s.redis.Get(ctx, s.latestKey()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Credentials{}, ErrSessionNotFound
		}
		return Credentials{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return s.Load(ctx, playerIdentifier)
}

// Delete removes the credentials for playerIdentifier. Deleting a missing
// session is not an error.
func (s *RedisStore) Delete(ctx context.Context, playerIdentifier string) error {
	keys := []string{s.key(playerIdentifier), s.latestKey()}
	if err := deleteSessionLua.Run(ctx, s.redis, keys, playerIdentifier).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
