// Package model holds the record types shared by the store, normalizers,
// and view-model packages. All records are owned by Postgres; the derived
// fields computed here (chain metrics, upload state) are transient and never
// written back.
package model

import "time"

// Player is a normalized player record. Bio keys from the persisted blob are
// merged flat into Bio; Highlights is always a well-formed pair of lists.
type Player struct {
	ID         int64          `json:"id"`
	Email      string         `json:"email"`
	Name       string         `json:"name"`
	Position   string         `json:"position"`
	Bio        map[string]any `json:"bio,omitempty"`
	Highlights Highlights     `json:"highlights"`
}

// Highlights is the canonical shape of a player's highlights blob.
type Highlights struct {
	MatchHighlights []Clip `json:"matchHighlights"`
	BestClips       []Clip `json:"bestClips"`
}

// Clip is a single highlight video. The upload-state fields are transient
// client state and absent from the persisted form.
type Clip struct {
	Name     string `json:"name"`
	VideoURL string `json:"videoUrl"`

	UploadID      string `json:"uploadId,omitempty"`
	Uploading     bool   `json:"uploading,omitempty"`
	UploadFailed  bool   `json:"uploadFailed,omitempty"`
	JustCompleted bool   `json:"justCompleted,omitempty"`
	Error         string `json:"error,omitempty"`
}

// InFlight reports whether the clip carries transient upload state that must
// survive a merge with fresh server data.
func (c Clip) InFlight() bool {
	return c.Uploading || c.UploadFailed || c.JustCompleted
}

// Analysis is one match/session performance analysis. Score is the aggregate
// R90 rating. StrikerStats holds named per-90 statistics; the enricher
// overwrites the chain keys there with values derived from action records.
type Analysis struct {
	ID            int64              `json:"id"`
	PlayerID      int64              `json:"player_id"`
	MatchDate     time.Time          `json:"match_date"`
	Opponent      string             `json:"opponent"`
	Result        string             `json:"result"`
	Score         float64            `json:"score"`
	MinutesPlayed *float64           `json:"minutes_played,omitempty"`
	PDFURL        string             `json:"pdf_url,omitempty"`
	VideoURL      string             `json:"video_url,omitempty"`
	StrikerStats  map[string]float64 `json:"striker_stats,omitempty"`
}

// Stat returns a named per-90 statistic, ok=false when absent.
func (a *Analysis) Stat(key string) (float64, bool) {
	if a.StrikerStats == nil {
		return 0, false
	}
	v, ok := a.StrikerStats[key]
	return v, ok
}

// Action is a child row of an Analysis carrying a signed contribution score.
type Action struct {
	ID         int64   `json:"id"`
	AnalysisID int64   `json:"analysis_id"`
	Score      float64 `json:"action_score"`
}

// Program is a named training plan.
type Program struct {
	ID       int64                 `json:"id"`
	PlayerID int64                 `json:"player_id"`
	Name     string                `json:"name"`
	Weeks    []WeekSchedule        `json:"weekly_schedules"`
	Sessions map[string][]Exercise `json:"sessions"`
}

// WeekSchedule is one week of a program: a start date plus a session code
// (and optional club-logo URL) per day.
type WeekSchedule struct {
	WeekStartDate string              `json:"week_start_date"`
	Days          map[string]DayEntry `json:"days"`
}

// DayEntry is a single day's plan inside a weekly schedule.
type DayEntry struct {
	Code    string `json:"code"`
	LogoURL string `json:"logo_url,omitempty"`
}

// Exercise is one entry of a session plan.
type Exercise struct {
	Name string `json:"name"`
	Reps string `json:"reps,omitempty"`
	Sets string `json:"sets,omitempty"`
	Load string `json:"load,omitempty"`
	Rest string `json:"rest,omitempty"`
}

// Invoice statuses.
const (
	InvoicePending   = "pending"
	InvoiceOverdue   = "overdue"
	InvoicePaid      = "paid"
	InvoiceCancelled = "cancelled"
)

type Invoice struct {
	ID                int64     `json:"id"`
	PlayerID          int64     `json:"player_id"`
	Amount            float64   `json:"amount"`
	AmountPaid        float64   `json:"amount_paid"`
	Currency          string    `json:"currency"`
	Status            string    `json:"status"`
	DueDate           time.Time `json:"due_date"`
	ConvertedAmount   *float64  `json:"converted_amount,omitempty"`
	ConvertedCurrency string    `json:"converted_currency,omitempty"`
}

// Remaining returns the unpaid balance, never negative.
func (i *Invoice) Remaining() float64 {
	r := i.Amount - i.AmountPaid
	if r < 0 {
		return 0
	}
	return r
}

// Test result statuses.
const (
	TestDraft     = "draft"
	TestSubmitted = "submitted"
)

type TestResult struct {
	ID       int64     `json:"id"`
	PlayerID int64     `json:"player_id"`
	TestName string    `json:"test_name"`
	Category string    `json:"category"`
	Score    string    `json:"score"`
	Status   string    `json:"status"`
	TestDate time.Time `json:"test_date"`
}

// Update is a read-only informational record shown verbatim.
type Update struct {
	ID        int64     `json:"id"`
	PlayerID  int64     `json:"player_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Concept is a tactical scheme shown verbatim.
type Concept struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url,omitempty"`
}

// ScoutingDraft is an unsubmitted scouting report owned by a scout.
type ScoutingDraft struct {
	ID         int64     `json:"id"`
	ScoutEmail string    `json:"scout_email"`
	PlayerName string    `json:"player_name"`
	Club       string    `json:"club"`
	Position   string    `json:"position"`
	Report     string    `json:"report"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ScoutingReport is a submitted scouting report.
type ScoutingReport struct {
	ID          int64     `json:"id"`
	ScoutEmail  string    `json:"scout_email"`
	PlayerName  string    `json:"player_name"`
	Club        string    `json:"club"`
	Position    string    `json:"position"`
	Report      string    `json:"report"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// ScoutMessage is a message on a scout's thread.
type ScoutMessage struct {
	ID         int64     `json:"id"`
	ScoutEmail string    `json:"scout_email"`
	Sender     string    `json:"sender"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}
