package session

import (
	"context"
	"sync"
	"time"
)

// Store persists authorized session credentials.
type Store interface {
	Save(ctx context.Context, creds Credentials) error
	Load(ctx context.Context, playerIdentifier string) (Credentials, error)
	Latest(ctx context.Context) (Credentials, error)
	Delete(ctx context.Context, playerIdentifier string) error
}

type memoryEntry struct {
	creds     Credentials
	expiresAt time.Time
}

// MemoryStore keeps credentials in process memory. Safe for concurrent use.
type MemoryStore struct {
	mu         sync.RWMutex
	entries    map[string]memoryEntry
	latest     string
	defaultTTL time.Duration
	now        func() time.Time
}

// NewMemoryStore returns an empty store. Entries expire at the token's exp
// claim, or after defaultTTL for opaque tokens (0 keeps them forever).
func NewMemoryStore(defaultTTL time.Duration) *MemoryStore {
	return &MemoryStore{
		entries:    make(map[string]memoryEntry),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

func (s *MemoryStore) Save(_ context.Context, creds Credentials) error {
	if err := creds.Validate(); err != nil {
		return err
	}
	now := s.now()
	ttl, err := storageTTL(creds.SessionToken, now, s.defaultTTL)
	if err != nil {
		return err
	}
	entry := memoryEntry{creds: creds}
	if ttl > 0 {
		entry.expiresAt = now.Add(ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[creds.PlayerIdentifier] = entry
	s.latest = creds.PlayerIdentifier
	return nil
}

func (s *MemoryStore) Load(_ context.Context, playerIdentifier string) (Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookupLocked(playerIdentifier)
}

func (s *MemoryStore) Latest(_ context.Context) (Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == "" {
		return Credentials{}, ErrSessionNotFound
	}
	return s.lookupLocked(s.latest)
}

func (s *MemoryStore) Delete(_ context.Context, playerIdentifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, playerIdentifier)
	if s.latest == playerIdentifier {
		s.latest = ""
	}
	return nil
}

func (s *MemoryStore) lookupLocked(playerIdentifier string) (Credentials, error) {
	entry, ok := s.entries[playerIdentifier]
	if !ok {
		return Credentials{}, ErrSessionNotFound
	}
	if !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
		return Credentials{}, ErrSessionNotFound
	}
	return entry.creds, nil
}
