package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vantagemgmt/portal-data/internal/model"
)

// ScoutingDraftsByScout returns a scout's unsubmitted drafts, most recently
// edited first.
func (s *Store) ScoutingDraftsByScout(ctx context.Context, scoutEmail string) ([]model.ScoutingDraft, error) {
	rows, err := s.pool.Query(ctx, "scouting_drafts_by_scout", scoutEmail)
	if err != nil {
		return nil, fmt.Errorf("query scouting drafts: %w", err)
	}
	defer rows.Close()

	var drafts []model.ScoutingDraft
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, d)
	}
	return drafts, rows.Err()
}

// ScoutingDraftByID returns one draft.
func (s *Store) ScoutingDraftByID(ctx context.Context, id int64) (model.ScoutingDraft, error) {
	d, err := scanDraft(s.pool.QueryRow(ctx, "scouting_draft_by_id", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ScoutingDraft{}, ErrNotFound
	}
	return d, err
}

// SaveScoutingDraft inserts a new draft (ID zero) or updates an existing one,
// returning the draft ID either way.
func (s *Store) SaveScoutingDraft(ctx context.Context, d model.ScoutingDraft) (int64, error) {
	if d.ID == 0 {
		var id int64
		err := s.pool.QueryRow(ctx, "insert_scouting_draft",
			d.ScoutEmail, d.PlayerName, d.Club, d.Position, d.Report).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("insert scouting draft: %w", err)
		}
		return id, nil
	}

	tag, err := s.pool.Exec(ctx, "update_scouting_draft",
		d.ID, d.PlayerName, d.Club, d.Position, d.Report)
	if err != nil {
		return 0, fmt.Errorf("update scouting draft: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return 0, ErrNotFound
	}
	return d.ID, nil
}

// DeleteScoutingDraft removes a draft without submitting it.
func (s *Store) DeleteScoutingDraft(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, "delete_scouting_draft", id)
	if err != nil {
		return fmt.Errorf("delete scouting draft: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SubmitScoutingDraft copies a draft into scouting_reports and removes the
// draft, atomically. Returns the new report ID.
func (s *Store) SubmitScoutingDraft(ctx context.Context, draftID int64) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	d, err := scanDraft(tx.QueryRow(ctx, "scouting_draft_by_id", draftID))
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}

	var reportID int64
	err = tx.QueryRow(ctx, "insert_scouting_report",
		d.ScoutEmail, d.PlayerName, d.Club, d.Position, d.Report).Scan(&reportID)
	if err != nil {
		return 0, fmt.Errorf("insert scouting report: %w", err)
	}
	if _, err := tx.Exec(ctx, "delete_scouting_draft", draftID); err != nil {
		return 0, fmt.Errorf("delete submitted draft: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return reportID, nil
}

// ScoutMessages returns a scout's message thread, oldest first.
func (s *Store) ScoutMessages(ctx context.Context, scoutEmail string) ([]model.ScoutMessage, error) {
	rows, err := s.pool.Query(ctx, "scout_messages", scoutEmail)
	if err != nil {
		return nil, fmt.Errorf("query scout messages: %w", err)
	}
	defer rows.Close()

	var msgs []model.ScoutMessage
	for rows.Next() {
		var m model.ScoutMessage
		if err := rows.Scan(&m.ID, &m.ScoutEmail, &m.Sender, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan scout message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// InsertScoutMessage appends a message to a scout's thread.
func (s *Store) InsertScoutMessage(ctx context.Context, m model.ScoutMessage) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, "insert_scout_message",
		m.ScoutEmail, m.Sender, m.Body).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert scout message: %w", err)
	}
	return id, nil
}

func scanDraft(row pgx.Row) (model.ScoutingDraft, error) {
	var (
		d        model.ScoutingDraft
		club     *string
		position *string
	)
	err := row.Scan(&d.ID, &d.ScoutEmail, &d.PlayerName, &club, &position,
		&d.Report, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ScoutingDraft{}, err
		}
		return model.ScoutingDraft{}, fmt.Errorf("scan scouting draft: %w", err)
	}
	d.Club = deref(club)
	d.Position = deref(position)
	return d, nil
}
