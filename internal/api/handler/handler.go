// Package handler provides HTTP handlers for all portal API endpoints.
// Read endpoints assemble display-ready payloads from the store and cache
// them with ETags; mutation endpoints write through the store and rely on
// the LISTEN/NOTIFY listener for cache eviction.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"

	"github.com/vantagemgmt/portal-data/internal/api/respond"
	"github.com/vantagemgmt/portal-data/internal/cache"
	"github.com/vantagemgmt/portal-data/internal/config"
	"github.com/vantagemgmt/portal-data/internal/db"
	"github.com/vantagemgmt/portal-data/internal/model"
	"github.com/vantagemgmt/portal-data/internal/normalize"
	"github.com/vantagemgmt/portal-data/internal/realtime"
	"github.com/vantagemgmt/portal-data/internal/session"
	"github.com/vantagemgmt/portal-data/internal/storage"
	"github.com/vantagemgmt/portal-data/internal/upload"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Storage is the record access surface the handlers read and write through.
// Satisfied by *store.Store.
type Storage interface {
	PlayerByID(ctx context.Context, id int64) (normalize.RawPlayer, error)
	AnalysesByPlayer(ctx context.Context, playerID int64) ([]model.Analysis, error)
	ActionsByAnalysis(ctx context.Context, analysisID int64) ([]model.Action, error)
	ProgramsByPlayer(ctx context.Context, playerID int64) ([]model.Program, error)
	InvoicesByPlayer(ctx context.Context, playerID int64) ([]model.Invoice, error)
	TestsByPlayer(ctx context.Context, playerID int64) ([]model.TestResult, error)
	InsertTestResult(ctx context.Context, t model.TestResult) (int64, error)
	SubmitTestResult(ctx context.Context, id int64) error
	UpdatesByPlayer(ctx context.Context, playerID int64) ([]model.Update, error)
	Concepts(ctx context.Context) ([]model.Concept, error)
	RemoveBestClip(ctx context.Context, playerID int64, videoURL string) error
	RenameBestClip(ctx context.Context, playerID int64, videoURL, newName string) error
	ScoutingDraftsByScout(ctx context.Context, scoutEmail string) ([]model.ScoutingDraft, error)
	ScoutingDraftByID(ctx context.Context, id int64) (model.ScoutingDraft, error)
	SaveScoutingDraft(ctx context.Context, d model.ScoutingDraft) (int64, error)
	DeleteScoutingDraft(ctx context.Context, id int64) error
	SubmitScoutingDraft(ctx context.Context, draftID int64) (int64, error)
	ScoutMessages(ctx context.Context, scoutEmail string) ([]model.ScoutMessage, error)
	InsertScoutMessage(ctx context.Context, m model.ScoutMessage) (int64, error)
}

// Deps holds shared dependencies for all endpoint handlers.
type Deps struct {
	Pool     *db.Pool
	Store    Storage
	Cache    *cache.Cache
	Sessions *session.Store
	Uploads  *upload.Coordinator
	Media    *storage.Client
	Hub      *realtime.Hub
	Logger   *slog.Logger
}

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	pool     *db.Pool
	store    Storage
	cache    *cache.Cache
	sessions *session.Store
	uploads  *upload.Coordinator
	media    *storage.Client
	hub      *realtime.Hub
	logger   *slog.Logger
	cfg      *config.Config
}

// New creates a Handler with shared dependencies.
func New(deps Deps, cfg *config.Config) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		pool:     deps.Pool,
		store:    deps.Store,
		cache:    deps.Cache,
		sessions: deps.Sessions,
		uploads:  deps.Uploads,
		media:    deps.Media,
		hub:      deps.Hub,
		logger:   logger,
		cfg:      cfg,
	}
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version, and status.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "Vantage Portal Data API",
		"version": "1.0.0",
		"status":  "running",
		"docs":    "/docs",
		"optimizations": []string{
			"pgxpool_connection_pooling",
			"prepared_statements",
			"gzip_compression",
			"in_memory_cache",
			"etag_support",
			"listen_notify_realtime",
		},
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Description Returns basic health status and timestamp.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
// @Summary Database health check
// @Description Verifies Postgres connectivity.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if err := h.pool.HealthCheck(r.Context()); err != nil {
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     "Database connection check failed",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
// @Summary Cache health check
// @Description Returns in-memory cache statistics (active keys, expired keys).
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/cache [get]
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"cache":     h.cache.Stats(),
		"clients":   h.hub.ClientCount(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// playerID extracts and validates the playerID URL parameter.
func playerID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "playerID"), 10, 64)
	return id, err == nil && id > 0
}
