// Package listener provides a Postgres LISTEN/NOTIFY consumer for realtime
// record-change propagation. It holds a dedicated pgx connection (not from
// the pool) listening on the `portal_record_changed` channel.
//
// Table triggers fire pg_notify with the table name; this consumer evicts
// the affected cache entries and relays the change to the websocket hub so
// connected portal clients refetch.
package listener

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vantagemgmt/portal-data/internal/cache"
	"github.com/vantagemgmt/portal-data/internal/config"
	"github.com/vantagemgmt/portal-data/internal/realtime"
)

const (
	reconnectBackoff = 5 * time.Second
	maxReconnect     = 30 * time.Second
)

// cacheDependents maps a changed table to the cache key prefixes built from
// it. Dashboard payloads aggregate several tables, so most changes evict the
// dashboard prefix too.
var cacheDependents = map[string][]string{
	config.PlayersTable:        {"dashboard:", "player:"},
	config.AnalysesTable:       {"dashboard:"},
	config.ActionsTable:        {"dashboard:"},
	config.ProgramsTable:       {"dashboard:", "programs:"},
	config.InvoicesTable:       {"dashboard:", "invoices:"},
	config.UpdatesTable:        {"dashboard:", "updates:"},
	config.TestResultsTable:    {"dashboard:", "tests:"},
	config.ConceptsTable:       {"concepts:"},
	config.ScoutingDraftsTable: {"scouting:"},
	config.ScoutMessagesTable:  {"scouting:"},
}

// Start opens a dedicated connection and listens on the record-change
// channel. It reconnects automatically on connection loss with capped
// backoff. Blocks until ctx is cancelled. Intended to be called with `go`.
func Start(ctx context.Context, dbURL string, c *cache.Cache, hub *realtime.Hub, logger *slog.Logger) {
	backoff := reconnectBackoff

	for {
		err := listenLoop(ctx, dbURL, c, hub, logger)
		if ctx.Err() != nil {
			logger.Info("Record-change listener stopped (context cancelled)")
			return
		}

		logger.Error("Record-change listener disconnected, reconnecting...",
			"error", err, "backoff", backoff)

		select {
		case <-time.After(backoff):
			backoff = min(backoff*2, maxReconnect)
		case <-ctx.Done():
			return
		}
	}
}

// listenLoop runs a single listen session. Returns when the connection drops
// or the context is cancelled.
func listenLoop(ctx context.Context, dbURL string, c *cache.Cache, hub *realtime.Hub, logger *slog.Logger) error {
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	_, err = conn.Exec(ctx, "LISTEN "+config.ChangeChannel)
	if err != nil {
		return fmt.Errorf("LISTEN %s: %w", config.ChangeChannel, err)
	}
	logger.Info("Record-change listener connected", "channel", config.ChangeChannel)

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}

		table := strings.TrimSpace(notification.Payload)
		if table == "" {
			continue
		}
		HandleChange(table, c, hub, logger)
	}
}

// HandleChange evicts the cache entries built from a changed table and
// broadcasts the change to connected clients.
func HandleChange(table string, c *cache.Cache, hub *realtime.Hub, logger *slog.Logger) {
	evicted := 0
	prefixes, known := cacheDependents[table]
	if !known {
		// Unknown table: be safe, evict everything derived from records.
		prefixes = []string{"dashboard:"}
	}
	for _, prefix := range prefixes {
		evicted += c.InvalidatePrefix(prefix)
	}

	logger.Info("Record change received",
		"table", table, "cache_evicted", evicted, "clients", hub.ClientCount())

	hub.TableChanged(table)
}
