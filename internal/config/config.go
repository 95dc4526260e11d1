// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/portalctl.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Table names — single source of truth, matches schema.sql
// --------------------------------------------------------------------------

const (
	PlayersTable         = "players"
	AnalysesTable        = "player_analysis"
	ActionsTable         = "performance_report_actions"
	ProgramsTable        = "player_programs"
	InvoicesTable        = "invoices"
	UpdatesTable         = "updates"
	TestResultsTable     = "player_test_results"
	ConceptsTable        = "tactical_schemes"
	ScoutingReportsTable = "scouting_reports"
	ScoutingDraftsTable  = "scouting_report_drafts"
	ScoutMessagesTable   = "scout_messages"
	IdentitiesTable      = "portal_identities"
)

// ChangeChannel is the Postgres NOTIFY channel carrying record-change events.
const ChangeChannel = "portal_record_changed"

// --------------------------------------------------------------------------
// Config struct — populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Database
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Media storage (external host for highlight clips and report PDFs)
	StorageBaseURL    string
	StorageToken      string
	StorageReqsPerMin int

	// Cache
	CacheEnabled bool

	// Sessions
	SessionTTL time.Duration

	// Maintenance
	InvoiceSweepInterval time.Duration
	UploadPruneInterval  time.Duration
	IdentityPurgeWindow  time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	dbURL := envOr("PORTAL_DATABASE_URL", envOr("DATABASE_URL", ""))
	if dbURL == "" {
		return nil, fmt.Errorf("PORTAL_DATABASE_URL or DATABASE_URL must be set")
	}

	return &Config{
		DatabaseURL:    dbURL,
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 2),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 10),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		StorageBaseURL:    envOr("STORAGE_BASE_URL", ""),
		StorageToken:      envOr("STORAGE_TOKEN", ""),
		StorageReqsPerMin: envInt("STORAGE_REQUESTS_PER_MINUTE", 60),

		CacheEnabled: envBool("CACHE_ENABLED", true),

		SessionTTL: time.Duration(envInt("SESSION_TTL_HOURS", 24*30)) * time.Hour,

		InvoiceSweepInterval: time.Duration(envInt("INVOICE_SWEEP_MINUTES", 60)) * time.Minute,
		UploadPruneInterval:  time.Duration(envInt("UPLOAD_PRUNE_MINUTES", 15)) * time.Minute,
		IdentityPurgeWindow:  time.Duration(envInt("IDENTITY_PURGE_HOURS", 24)) * time.Hour,
	}, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
