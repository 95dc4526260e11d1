package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/vantagemgmt/portal-data/internal/api/handler"
	"github.com/vantagemgmt/portal-data/internal/cache"
	"github.com/vantagemgmt/portal-data/internal/config"
	"github.com/vantagemgmt/portal-data/internal/db"
	"github.com/vantagemgmt/portal-data/internal/realtime"
	"github.com/vantagemgmt/portal-data/internal/session"
	"github.com/vantagemgmt/portal-data/internal/storage"
	"github.com/vantagemgmt/portal-data/internal/store"
	"github.com/vantagemgmt/portal-data/internal/upload"
)

// Deps holds everything the router's handlers need.
type Deps struct {
	Pool     *db.Pool
	Store    *store.Store
	Cache    *cache.Cache
	Sessions *session.Store
	Uploads  *upload.Coordinator
	Media    *storage.Client
	Hub      *realtime.Hub
	Logger   *slog.Logger
}

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(deps Deps, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "If-None-Match", "Cache-Control", "X-Session-Key"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Cache", "Link", "ETag"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Handler dependencies ---
	h := handler.New(handler.Deps{
		Pool:     deps.Pool,
		Store:    deps.Store,
		Cache:    deps.Cache,
		Sessions: deps.Sessions,
		Uploads:  deps.Uploads,
		Media:    deps.Media,
		Hub:      deps.Hub,
		Logger:   deps.Logger,
	}, cfg)

	// --- Routes ---

	// Root
	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
		r.Get("/cache", h.HealthCheckCache)
	})

	// Swagger UI
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	// Realtime change feed
	r.Get("/ws", h.Subscribe)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Session
		r.Post("/session/login", h.SessionLogin)
		r.Post("/session/logout", h.SessionLogout)
		r.Get("/session", h.SessionResolve)

		// Player portal
		r.Route("/players/{playerID}", func(r chi.Router) {
			r.Get("/dashboard", h.GetDashboard)
			r.Get("/chart", h.GetChart)
			r.Get("/programs", h.GetPrograms)
			r.Get("/invoices", h.GetInvoices)
			r.Get("/updates", h.GetUpdates)
			r.Get("/tests", h.GetTests)
			r.Post("/tests", h.CreateTest)

			r.Post("/highlights", h.UploadHighlights)
			r.Post("/highlights/rename", h.RenameHighlight)
			r.Delete("/highlights", h.DeleteHighlight)
		})
		r.Post("/tests/{testID}/submit", h.SubmitTest)

		// Uploads
		r.Get("/uploads/{uploadID}", h.GetUpload)
		r.Post("/uploads/{uploadID}/retry", h.RetryUpload)
		r.Get("/uploads/batch/{batchID}", h.GetUploadBatch)

		// Tactical concepts
		r.Get("/concepts", h.GetConcepts)

		// Scout portal
		r.Route("/scouting", func(r chi.Router) {
			r.Get("/drafts", h.GetScoutingDrafts)
			r.Post("/drafts", h.SaveScoutingDraft)
			r.Delete("/drafts/{draftID}", h.DeleteScoutingDraft)
			r.Post("/drafts/{draftID}/submit", h.SubmitScoutingDraft)
			r.Get("/messages", h.GetScoutMessages)
			r.Post("/messages", h.SendScoutMessage)
		})
	})

	return r
}
