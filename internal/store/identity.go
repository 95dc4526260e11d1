package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// IdentityLookup returns the email stored under a session key.
func (s *Store) IdentityLookup(ctx context.Context, key string) (string, bool, error) {
	var (
		email     string
		updatedAt time.Time
	)
	err := s.pool.QueryRow(ctx, "identity_lookup", key).Scan(&email, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("identity lookup: %w", err)
	}
	return email, true, nil
}

// IdentityUpsert stores or refreshes the email under a session key.
func (s *Store) IdentityUpsert(ctx context.Context, key, email string) error {
	if _, err := s.pool.Exec(ctx, "identity_upsert", key, email); err != nil {
		return fmt.Errorf("identity upsert: %w", err)
	}
	return nil
}

// IdentityDelete removes a session key.
func (s *Store) IdentityDelete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, "identity_delete", key); err != nil {
		return fmt.Errorf("identity delete: %w", err)
	}
	return nil
}

// IdentityPurge deletes identities idle longer than the window and returns
// how many rows were removed.
func (s *Store) IdentityPurge(ctx context.Context, window time.Duration) (int64, error) {
	interval := fmt.Sprintf("%d seconds", int64(window.Seconds()))
	tag, err := s.pool.Exec(ctx, "identity_purge", interval)
	if err != nil {
		return 0, fmt.Errorf("identity purge: %w", err)
	}
	return tag.RowsAffected(), nil
}
