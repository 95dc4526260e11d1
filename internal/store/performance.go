package store

import (
	"context"
	"fmt"
	"time"

	"github.com/vantagemgmt/portal-data/internal/model"
	"github.com/vantagemgmt/portal-data/internal/normalize"
)

// AnalysesByPlayer returns a player's performance analyses ordered by match
// date ascending, striker stats decoded.
func (s *Store) AnalysesByPlayer(ctx context.Context, playerID int64) ([]model.Analysis, error) {
	rows, err := s.pool.Query(ctx, "analyses_by_player", playerID)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	defer rows.Close()

	var analyses []model.Analysis
	for rows.Next() {
		var (
			a      model.Analysis
			result *string
			pdf    *string
			video  *string
			stats  []byte
		)
		if err := rows.Scan(&a.ID, &a.PlayerID, &a.MatchDate, &a.Opponent, &result,
			&a.Score, &a.MinutesPlayed, &pdf, &video, &stats); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		a.Result = deref(result)
		a.PDFURL = deref(pdf)
		a.VideoURL = deref(video)
		a.StrikerStats = normalize.StatsBlob(stats)
		analyses = append(analyses, a)
	}
	return analyses, rows.Err()
}

// ActionsByAnalysis returns the action rows of one analysis.
func (s *Store) ActionsByAnalysis(ctx context.Context, analysisID int64) ([]model.Action, error) {
	rows, err := s.pool.Query(ctx, "actions_by_analysis", analysisID)
	if err != nil {
		return nil, fmt.Errorf("query actions: %w", err)
	}
	defer rows.Close()

	var actions []model.Action
	for rows.Next() {
		var a model.Action
		if err := rows.Scan(&a.ID, &a.AnalysisID, &a.Score); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

// ProgramsByPlayer returns a player's training programs with schedules and
// session plans decoded.
func (s *Store) ProgramsByPlayer(ctx context.Context, playerID int64) ([]model.Program, error) {
	rows, err := s.pool.Query(ctx, "programs_by_player", playerID)
	if err != nil {
		return nil, fmt.Errorf("query programs: %w", err)
	}
	defer rows.Close()

	var programs []model.Program
	for rows.Next() {
		var (
			p         model.Program
			schedules []byte
			sessions  []byte
		)
		if err := rows.Scan(&p.ID, &p.PlayerID, &p.Name, &schedules, &sessions); err != nil {
			return nil, fmt.Errorf("scan program: %w", err)
		}
		p.Weeks = normalize.WeekSchedulesBlob(schedules)
		p.Sessions = normalize.SessionsBlob(sessions)
		programs = append(programs, p)
	}
	return programs, rows.Err()
}

// InvoicesByPlayer returns a player's invoices, newest due date first.
func (s *Store) InvoicesByPlayer(ctx context.Context, playerID int64) ([]model.Invoice, error) {
	rows, err := s.pool.Query(ctx, "invoices_by_player", playerID)
	if err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}
	defer rows.Close()

	var invoices []model.Invoice
	for rows.Next() {
		var (
			inv      model.Invoice
			currency *string
		)
		if err := rows.Scan(&inv.ID, &inv.PlayerID, &inv.Amount, &inv.AmountPaid,
			&inv.Currency, &inv.Status, &inv.DueDate,
			&inv.ConvertedAmount, &currency); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		inv.ConvertedCurrency = deref(currency)
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

// MarkInvoicesOverdue flips pending invoices past their due date to overdue
// and returns how many rows changed.
func (s *Store) MarkInvoicesOverdue(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, "mark_invoices_overdue")
	if err != nil {
		return 0, fmt.Errorf("mark invoices overdue: %w", err)
	}
	return tag.RowsAffected(), nil
}

// TestsByPlayer returns a player's test results, newest first.
func (s *Store) TestsByPlayer(ctx context.Context, playerID int64) ([]model.TestResult, error) {
	rows, err := s.pool.Query(ctx, "tests_by_player", playerID)
	if err != nil {
		return nil, fmt.Errorf("query test results: %w", err)
	}
	defer rows.Close()

	var tests []model.TestResult
	for rows.Next() {
		var t model.TestResult
		if err := rows.Scan(&t.ID, &t.PlayerID, &t.TestName, &t.Category,
			&t.Score, &t.Status, &t.TestDate); err != nil {
			return nil, fmt.Errorf("scan test result: %w", err)
		}
		tests = append(tests, t)
	}
	return tests, rows.Err()
}

// InsertTestResult stores a new test result and returns its ID.
func (s *Store) InsertTestResult(ctx context.Context, t model.TestResult) (int64, error) {
	date := t.TestDate
	if date.IsZero() {
		date = time.Now().UTC()
	}
	status := t.Status
	if status == "" {
		status = model.TestDraft
	}
	var id int64
	err := s.pool.QueryRow(ctx, "insert_test_result",
		t.PlayerID, t.TestName, t.Category, t.Score, status, date).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert test result: %w", err)
	}
	return id, nil
}

// SubmitTestResult moves a draft test result to submitted. ErrNotFound when
// the row is missing or already submitted.
func (s *Store) SubmitTestResult(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, "submit_test_result", id)
	if err != nil {
		return fmt.Errorf("submit test result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatesByPlayer returns a player's informational updates, newest first.
func (s *Store) UpdatesByPlayer(ctx context.Context, playerID int64) ([]model.Update, error) {
	rows, err := s.pool.Query(ctx, "updates_by_player", playerID)
	if err != nil {
		return nil, fmt.Errorf("query updates: %w", err)
	}
	defer rows.Close()

	var updates []model.Update
	for rows.Next() {
		var u model.Update
		if err := rows.Scan(&u.ID, &u.PlayerID, &u.Title, &u.Body, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan update: %w", err)
		}
		updates = append(updates, u)
	}
	return updates, rows.Err()
}

// Concepts returns all tactical scheme records.
func (s *Store) Concepts(ctx context.Context) ([]model.Concept, error) {
	rows, err := s.pool.Query(ctx, "concepts_list")
	if err != nil {
		return nil, fmt.Errorf("query concepts: %w", err)
	}
	defer rows.Close()

	var concepts []model.Concept
	for rows.Next() {
		var (
			c   model.Concept
			img *string
		)
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &img); err != nil {
			return nil, fmt.Errorf("scan concept: %w", err)
		}
		c.ImageURL = deref(img)
		concepts = append(concepts, c)
	}
	return concepts, rows.Err()
}
