// Package session holds portal identities in two tiers: a durable
// Postgres-backed tier that is the source of truth, and a volatile in-memory
// tier acting as fallback and mirror. Lookups try the durable tier first;
// an identity recovered from the volatile tier is written back so the
// durable tier converges.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// DurableTier is the persistent identity backend.
type DurableTier interface {
	IdentityLookup(ctx context.Context, key string) (email string, ok bool, err error)
	IdentityUpsert(ctx context.Context, key, email string) error
	IdentityDelete(ctx context.Context, key string) error
}

type entry struct {
	email    string
	storedAt time.Time
}

// Store resolves opaque session keys to identity emails.
type Store struct {
	durable DurableTier
	ttl     time.Duration
	logger  *slog.Logger

	mu       sync.RWMutex
	volatile map[string]entry
}

// NewStore creates a session store. ttl bounds how long a volatile entry may
// serve after its last write; zero means no volatile expiry.
func NewStore(durable DurableTier, ttl time.Duration, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		durable:  durable,
		ttl:      ttl,
		logger:   logger,
		volatile: make(map[string]entry),
	}
}

// Login records an identity under the given key in both tiers. The volatile
// tier is written unconditionally so a durable outage does not lock the
// caller out of their own fresh login.
func (s *Store) Login(ctx context.Context, key, email string) error {
	key = strings.TrimSpace(key)
	email = strings.TrimSpace(email)
	if key == "" || email == "" {
		return fmt.Errorf("session login: key and email required")
	}

	s.mu.Lock()
	s.volatile[key] = entry{email: email, storedAt: time.Now()}
	s.mu.Unlock()

	if err := s.durable.IdentityUpsert(ctx, key, email); err != nil {
		return fmt.Errorf("persist identity: %w", err)
	}
	return nil
}

// Resolve returns the identity email for a session key. The durable tier is
// authoritative; on a durable miss or error the volatile tier answers, and a
// volatile hit is written back so the durable tier recovers.
func (s *Store) Resolve(ctx context.Context, key string) (string, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", false
	}

	email, ok, err := s.durable.IdentityLookup(ctx, key)
	if err != nil {
		s.logger.Warn("durable identity lookup failed, falling back to volatile tier",
			"error", err)
	} else if ok {
		s.mu.Lock()
		s.volatile[key] = entry{email: email, storedAt: time.Now()}
		s.mu.Unlock()
		return email, true
	}

	s.mu.RLock()
	e, hit := s.volatile[key]
	s.mu.RUnlock()
	if !hit || s.expired(e) {
		return "", false
	}

	// Recovered from the volatile tier: write back so the durable tier is
	// the source of truth again. Best effort.
	if wbErr := s.durable.IdentityUpsert(ctx, key, e.email); wbErr != nil {
		s.logger.Warn("identity writeback failed", "error", wbErr)
	}
	return e.email, true
}

// Logout removes the identity from both tiers.
func (s *Store) Logout(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}

	s.mu.Lock()
	delete(s.volatile, key)
	s.mu.Unlock()

	if err := s.durable.IdentityDelete(ctx, key); err != nil {
		return fmt.Errorf("delete identity: %w", err)
	}
	return nil
}

// PruneVolatile drops expired volatile entries and returns how many were
// removed. The durable tier is purged separately by maintenance.
func (s *Store) PruneVolatile() int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, e := range s.volatile {
		if s.expired(e) {
			delete(s.volatile, key)
			removed++
		}
	}
	return removed
}

func (s *Store) expired(e entry) bool {
	return s.ttl > 0 && time.Since(e.storedAt) > s.ttl
}
