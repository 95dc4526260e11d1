// Package store is the Postgres data access layer. All hot queries run as
// prepared statements registered at connect time (see internal/db); blob
// columns come back raw and are decoded by internal/normalize.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	jsoniter "github.com/json-iterator/go"

	"github.com/vantagemgmt/portal-data/internal/db"
	"github.com/vantagemgmt/portal-data/internal/model"
	"github.com/vantagemgmt/portal-data/internal/normalize"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store wraps the pool with typed record access.
type Store struct {
	pool *db.Pool
}

// New creates a Store.
func New(pool *db.Pool) *Store {
	return &Store{pool: pool}
}

// PlayerByID returns the raw player row, blobs undecoded.
func (s *Store) PlayerByID(ctx context.Context, id int64) (normalize.RawPlayer, error) {
	return s.scanPlayer(s.pool.QueryRow(ctx, "player_by_id", id))
}

// PlayerByEmail returns the raw player row for a (case-insensitive) email.
func (s *Store) PlayerByEmail(ctx context.Context, email string) (normalize.RawPlayer, error) {
	return s.scanPlayer(s.pool.QueryRow(ctx, "player_by_email", email))
}

func (s *Store) scanPlayer(row pgx.Row) (normalize.RawPlayer, error) {
	var (
		raw      normalize.RawPlayer
		name     *string
		position *string
	)
	err := row.Scan(&raw.ID, &raw.Email, &name, &position, &raw.Bio, &raw.Highlights)
	if errors.Is(err, pgx.ErrNoRows) {
		return normalize.RawPlayer{}, ErrNotFound
	}
	if err != nil {
		return normalize.RawPlayer{}, fmt.Errorf("scan player: %w", err)
	}
	raw.Name = deref(name)
	raw.Position = deref(position)
	return raw, nil
}

// persistedClip is the stored clip shape: transient upload state stripped.
type persistedClip struct {
	Name     string `json:"name"`
	VideoURL string `json:"videoUrl"`
}

type persistedHighlights struct {
	MatchHighlights []persistedClip `json:"matchHighlights"`
	BestClips       []persistedClip `json:"bestClips"`
}

// UpdateHighlights replaces a player's highlights blob with the persisted
// form of h. In-flight clips are dropped, not stored.
func (s *Store) UpdateHighlights(ctx context.Context, playerID int64, h model.Highlights) error {
	blob, err := marshalHighlights(h)
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, "update_player_highlights", playerID, blob); err != nil {
		return fmt.Errorf("update highlights: %w", err)
	}
	return nil
}

// AppendBestClip appends one completed clip to a player's best-clips list.
// The read-modify-write runs in a transaction with the row locked so
// concurrent batch completions don't lose each other's clips.
func (s *Store) AppendBestClip(ctx context.Context, playerID int64, clip model.Clip) error {
	return s.mutateBestClips(ctx, playerID, func(clips []model.Clip) []model.Clip {
		return append(clips, model.Clip{Name: clip.Name, VideoURL: clip.VideoURL})
	})
}

// RemoveBestClip drops the clip with the given video URL.
func (s *Store) RemoveBestClip(ctx context.Context, playerID int64, videoURL string) error {
	return s.mutateBestClips(ctx, playerID, func(clips []model.Clip) []model.Clip {
		out := clips[:0]
		for _, c := range clips {
			if c.VideoURL != videoURL {
				out = append(out, c)
			}
		}
		return out
	})
}

// RenameBestClip changes the display name of the clip with the given URL.
func (s *Store) RenameBestClip(ctx context.Context, playerID int64, videoURL, newName string) error {
	return s.mutateBestClips(ctx, playerID, func(clips []model.Clip) []model.Clip {
		for i := range clips {
			if clips[i].VideoURL == videoURL {
				clips[i].Name = newName
			}
		}
		return clips
	})
}

func (s *Store) mutateBestClips(ctx context.Context, playerID int64, fn func([]model.Clip) []model.Clip) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var blob []byte
	err = tx.QueryRow(ctx,
		"SELECT highlights FROM players WHERE id = $1 FOR UPDATE", playerID).Scan(&blob)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lock player row: %w", err)
	}

	h := normalize.HighlightsBlob(blob)
	h.BestClips = fn(h.BestClips)

	next, err := marshalHighlights(h)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		"UPDATE players SET highlights = $2, updated_at = NOW() WHERE id = $1",
		playerID, next); err != nil {
		return fmt.Errorf("write highlights: %w", err)
	}
	return tx.Commit(ctx)
}

func marshalHighlights(h model.Highlights) ([]byte, error) {
	p := persistedHighlights{
		MatchHighlights: persistClips(h.MatchHighlights),
		BestClips:       persistClips(h.BestClips),
	}
	blob, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal highlights: %w", err)
	}
	return blob, nil
}

func persistClips(clips []model.Clip) []persistedClip {
	out := make([]persistedClip, 0, len(clips))
	for _, c := range clips {
		if c.InFlight() && c.VideoURL == "" {
			continue
		}
		out = append(out, persistedClip{Name: c.Name, VideoURL: c.VideoURL})
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
