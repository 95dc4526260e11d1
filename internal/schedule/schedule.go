// Package schedule resolves a program's weekly schedule into calendar dates
// and session-code colors.
package schedule

import (
	"strings"
	"time"

	"github.com/vantagemgmt/portal-data/internal/model"
)

// Colors is the display triple for a session code.
type Colors struct {
	Background string `json:"background"`
	Text       string `json:"text"`
	Hover      string `json:"hover"`
}

// Neutral is the fallback for unrecognized session codes.
var Neutral = Colors{Background: "#e2e8f0", Text: "#334155", Hover: "#cbd5e1"}

// codeColors maps each known session code to its own triple. Prefixed codes
// ("PRE-B") are distinct entries, not variants of their base letter.
var codeColors = map[string]Colors{
	"A":        {Background: "#fee2e2", Text: "#991b1b", Hover: "#fecaca"},
	"B":        {Background: "#ffedd5", Text: "#9a3412", Hover: "#fed7aa"},
	"C":        {Background: "#fef9c3", Text: "#854d0e", Hover: "#fef08a"},
	"D":        {Background: "#dcfce7", Text: "#166534", Hover: "#bbf7d0"},
	"PRE-A":    {Background: "#fde2e7", Text: "#9f1239", Hover: "#fbcfe8"},
	"PRE-B":    {Background: "#e0e7ff", Text: "#3730a3", Hover: "#c7d2fe"},
	"PRE-C":    {Background: "#cffafe", Text: "#155e75", Hover: "#a5f3fc"},
	"MATCH":    {Background: "#dbeafe", Text: "#1e40af", Hover: "#bfdbfe"},
	"GYM":      {Background: "#f3e8ff", Text: "#6b21a8", Hover: "#e9d5ff"},
	"RECOVERY": {Background: "#d1fae5", Text: "#065f46", Hover: "#a7f3d0"},
	"TRAVEL":   {Background: "#fae8ff", Text: "#86198f", Hover: "#f5d0fe"},
	"REST":     {Background: "#f1f5f9", Text: "#64748b", Hover: "#e2e8f0"},
}

// CodeColors resolves a session code to its color triple, neutral for
// unknown codes. Never fails.
func CodeColors(code string) Colors {
	if c, ok := codeColors[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return c
	}
	return Neutral
}

// Days in schedule order; week start is Monday, offsets 0..6.
var Days = []string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

// ResolvedDay is one calendar day of a resolved week.
type ResolvedDay struct {
	Day     string     `json:"day"`
	Date    *time.Time `json:"date,omitempty"`
	Code    string     `json:"code,omitempty"`
	Colors  Colors     `json:"colors"`
	LogoURL string     `json:"logo_url,omitempty"`
}

// ResolveWeek maps a weekly schedule onto calendar dates. A week start date
// that fails to parse yields nil dates — the UI omits day numbers instead of
// crashing.
func ResolveWeek(week model.WeekSchedule) []ResolvedDay {
	start := parseWeekStart(week.WeekStartDate)

	out := make([]ResolvedDay, len(Days))
	for i, day := range Days {
		entry := week.Days[day]
		rd := ResolvedDay{
			Day:     day,
			Code:    entry.Code,
			Colors:  CodeColors(entry.Code),
			LogoURL: entry.LogoURL,
		}
		if start != nil {
			d := start.AddDate(0, 0, i)
			rd.Date = &d
		}
		out[i] = rd
	}
	return out
}

func parseWeekStart(raw string) *time.Time {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
