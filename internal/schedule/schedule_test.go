package schedule

import (
	"testing"

	"github.com/vantagemgmt/portal-data/internal/model"
)

func TestResolveWeek_MondayStartOffsets(t *testing.T) {
	week := model.WeekSchedule{
		WeekStartDate: "2024-01-01", // a Monday
		Days: map[string]model.DayEntry{
			"tuesday": {Code: "A"},
			"sunday":  {Code: "MATCH", LogoURL: "https://c/opp.png"},
		},
	}

	days := ResolveWeek(week)
	if len(days) != 7 {
		t.Fatalf("days = %d, want 7", len(days))
	}
	if days[0].Day != "monday" || days[6].Day != "sunday" {
		t.Errorf("day order = %s..%s, want monday..sunday", days[0].Day, days[6].Day)
	}

	tue := days[1]
	if tue.Date == nil || tue.Date.Format("2006-01-02") != "2024-01-02" {
		t.Errorf("tuesday date = %v, want 2024-01-02", tue.Date)
	}
	sun := days[6]
	if sun.Date == nil || sun.Date.Format("2006-01-02") != "2024-01-07" {
		t.Errorf("sunday date = %v, want 2024-01-07", sun.Date)
	}
	if sun.Code != "MATCH" || sun.LogoURL != "https://c/opp.png" {
		t.Errorf("sunday = %+v", sun)
	}
}

func TestResolveWeek_BadDateYieldsNilDates(t *testing.T) {
	week := model.WeekSchedule{
		WeekStartDate: "next monday",
		Days:          map[string]model.DayEntry{"monday": {Code: "REST"}},
	}
	for _, day := range ResolveWeek(week) {
		if day.Date != nil {
			t.Fatalf("%s date = %v, want nil for unparseable week start", day.Day, day.Date)
		}
	}
}

func TestCodeColors(t *testing.T) {
	// Prefixed codes are their own entries, not variants of the base letter.
	if CodeColors("PRE-B") == CodeColors("B") {
		t.Error("PRE-B must not share colors with B")
	}
	// Lookup is case- and whitespace-insensitive.
	if CodeColors(" match ") != CodeColors("MATCH") {
		t.Error("code lookup must normalize case and whitespace")
	}
	// Unknown codes fall back to neutral, never fail.
	if CodeColors("Z") != Neutral {
		t.Errorf("unknown code = %+v, want neutral", CodeColors("Z"))
	}
	if CodeColors("") != Neutral {
		t.Error("empty code must resolve to neutral")
	}
}
