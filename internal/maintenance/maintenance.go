// Package maintenance runs periodic background tasks as Go tickers.
// All scheduled work is driven from Go since the service is already
// persistent and long-running (required for LISTEN/NOTIFY).
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/vantagemgmt/portal-data/internal/session"
	"github.com/vantagemgmt/portal-data/internal/store"
	"github.com/vantagemgmt/portal-data/internal/upload"
)

// Config controls maintenance task intervals. Zero duration disables a task.
type Config struct {
	InvoiceSweepInterval time.Duration // Pending invoices past due date -> overdue
	UploadPruneInterval  time.Duration // Settled upload batches and placeholders
	IdentityPurgeWindow  time.Duration // Idle identity rows and volatile entries
}

// DefaultConfig returns sensible production defaults.
func DefaultConfig() Config {
	return Config{
		InvoiceSweepInterval: 1 * time.Hour,
		UploadPruneInterval:  15 * time.Minute,
		IdentityPurgeWindow:  24 * time.Hour,
	}
}

// Start launches all configured maintenance tickers. Blocks until ctx is
// cancelled. Intended to be called with `go`.
func Start(ctx context.Context, st *store.Store, uploads *upload.Coordinator, sessions *session.Store, cfg Config, logger *slog.Logger) {
	logger.Info("Maintenance tickers started",
		"invoice_sweep", cfg.InvoiceSweepInterval,
		"upload_prune", cfg.UploadPruneInterval,
		"identity_purge", cfg.IdentityPurgeWindow)

	tickers := make([]*time.Ticker, 0, 3)
	defer func() {
		for _, t := range tickers {
			t.Stop()
		}
	}()

	if cfg.InvoiceSweepInterval > 0 {
		t := time.NewTicker(cfg.InvoiceSweepInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() { sweepInvoices(ctx, st, logger) })
	}

	if cfg.UploadPruneInterval > 0 {
		t := time.NewTicker(cfg.UploadPruneInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() { pruneUploads(uploads, cfg.UploadPruneInterval, logger) })
	}

	if cfg.IdentityPurgeWindow > 0 {
		// Purge at a fraction of the window so rows don't overstay it much.
		t := time.NewTicker(cfg.IdentityPurgeWindow / 4)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() { purgeIdentities(ctx, st, sessions, cfg.IdentityPurgeWindow, logger) })
	}

	<-ctx.Done()
	logger.Info("Maintenance tickers stopped")
}

func runLoop(ctx context.Context, ch <-chan time.Time, fn func()) {
	for {
		select {
		case <-ch:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

// --------------------------------------------------------------------------
// Task implementations
// --------------------------------------------------------------------------

// sweepInvoices flips pending invoices past their due date to overdue.
func sweepInvoices(ctx context.Context, st *store.Store, logger *slog.Logger) {
	n, err := st.MarkInvoicesOverdue(ctx)
	if err != nil {
		logger.Warn("Invoice sweep failed", "error", err)
		return
	}
	if n > 0 {
		logger.Info("Invoice sweep: marked invoices overdue", "count", n)
	}
}

// pruneUploads drops upload items and batch results that settled more than
// one prune interval ago. By then every client has had its reconciling
// refetch.
func pruneUploads(uploads *upload.Coordinator, interval time.Duration, logger *slog.Logger) {
	if n := uploads.Prune(interval); n > 0 {
		logger.Info("Upload prune: removed settled items", "count", n)
	}
}

// purgeIdentities removes idle identity rows from the durable tier and
// expired entries from the volatile one.
func purgeIdentities(ctx context.Context, st *store.Store, sessions *session.Store, window time.Duration, logger *slog.Logger) {
	n, err := st.IdentityPurge(ctx, window)
	if err != nil {
		logger.Warn("Identity purge failed", "error", err)
	} else if n > 0 {
		logger.Info("Identity purge: removed idle identities", "count", n)
	}
	if v := sessions.PruneVolatile(); v > 0 {
		logger.Info("Identity purge: dropped expired volatile entries", "count", v)
	}
}
