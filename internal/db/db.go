// Package db provides a pgxpool-based connection pool with prepared statement
// registration and health checking.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vantagemgmt/portal-data/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// registerPreparedStatements registers all statements the API and CLI use.
// Prepared statements eliminate parse overhead on every request.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// Players
		"player_by_id":    "SELECT id, email, name, position, bio, highlights FROM players WHERE id = $1",
		"player_by_email": "SELECT id, email, name, position, bio, highlights FROM players WHERE lower(email) = lower($1)",
		"update_player_highlights": "UPDATE players SET highlights = $2, updated_at = NOW() WHERE id = $1",

		// Analyses + actions
		"analyses_by_player": `
			SELECT id, player_id, match_date, opponent, result, score, minutes_played,
			       pdf_url, video_url, striker_stats
			FROM player_analysis WHERE player_id = $1 ORDER BY match_date`,
		"actions_by_analysis": "SELECT id, analysis_id, action_score FROM performance_report_actions WHERE analysis_id = $1",

		// Programs
		"programs_by_player": "SELECT id, player_id, name, weekly_schedules, sessions FROM player_programs WHERE player_id = $1 ORDER BY id",

		// Invoices
		"invoices_by_player": `
			SELECT id, player_id, amount, amount_paid, currency, status, due_date,
			       converted_amount, converted_currency
			FROM invoices WHERE player_id = $1 ORDER BY due_date DESC`,
		"mark_invoices_overdue": `
			UPDATE invoices SET status = 'overdue', updated_at = NOW()
			WHERE status = 'pending' AND due_date < NOW()`,

		// Test results
		"tests_by_player": `
			SELECT id, player_id, test_name, category, score, status, test_date
			FROM player_test_results WHERE player_id = $1 ORDER BY test_date DESC`,
		"insert_test_result": `
			INSERT INTO player_test_results (player_id, test_name, category, score, status, test_date)
			VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		"submit_test_result": `
			UPDATE player_test_results SET status = 'submitted', updated_at = NOW()
			WHERE id = $1 AND status = 'draft'`,

		// Updates and concepts (read-only informational records)
		"updates_by_player": "SELECT id, player_id, title, body, created_at FROM updates WHERE player_id = $1 ORDER BY created_at DESC",
		"concepts_list":     "SELECT id, title, description, image_url FROM tactical_schemes ORDER BY id",

		// Scouting
		"scouting_drafts_by_scout": `
			SELECT id, scout_email, player_name, club, position, report, updated_at
			FROM scouting_report_drafts WHERE lower(scout_email) = lower($1) ORDER BY updated_at DESC`,
		"scouting_draft_by_id": `
			SELECT id, scout_email, player_name, club, position, report, updated_at
			FROM scouting_report_drafts WHERE id = $1`,
		"insert_scouting_draft": `
			INSERT INTO scouting_report_drafts (scout_email, player_name, club, position, report, updated_at)
			VALUES ($1, $2, $3, $4, $5, NOW()) RETURNING id`,
		"update_scouting_draft": `
			UPDATE scouting_report_drafts
			SET player_name = $2, club = $3, position = $4, report = $5, updated_at = NOW()
			WHERE id = $1`,
		"delete_scouting_draft": "DELETE FROM scouting_report_drafts WHERE id = $1",
		"insert_scouting_report": `
			INSERT INTO scouting_reports (scout_email, player_name, club, position, report, submitted_at)
			VALUES ($1, $2, $3, $4, $5, NOW()) RETURNING id`,
		"scout_messages": `
			SELECT id, scout_email, sender, body, created_at
			FROM scout_messages WHERE lower(scout_email) = lower($1) ORDER BY created_at`,
		"insert_scout_message": `
			INSERT INTO scout_messages (scout_email, sender, body, created_at)
			VALUES ($1, $2, $3, NOW()) RETURNING id`,

		// Identities (durable session tier)
		"identity_lookup": "SELECT email, updated_at FROM portal_identities WHERE key = $1",
		"identity_upsert": `
			INSERT INTO portal_identities (key, email, updated_at) VALUES ($1, $2, NOW())
			ON CONFLICT (key) DO UPDATE SET email = EXCLUDED.email, updated_at = NOW()`,
		"identity_delete": "DELETE FROM portal_identities WHERE key = $1",
		"identity_purge":  "DELETE FROM portal_identities WHERE updated_at < NOW() - $1::interval",
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
