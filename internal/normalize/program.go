package normalize

import (
	"strings"

	"github.com/vantagemgmt/portal-data/internal/model"
)

var dayNames = []string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

// WeekSchedulesBlob decodes a program's weekly_schedules blob. Two persisted
// shapes exist: flat day keys holding a code string (with an optional
// "<day>_logo" sibling), and nested day objects {code, logo_url}. Both
// coerce to the same canonical week. Malformed entries are skipped.
func WeekSchedulesBlob(raw []byte) []model.WeekSchedule {
	items := MaybeList(raw)
	if items == nil {
		return nil
	}
	weeks := make([]model.WeekSchedule, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		week := model.WeekSchedule{
			WeekStartDate: stringField(obj, "week_start_date", "weekStartDate"),
			Days:          map[string]model.DayEntry{},
		}
		for _, day := range dayNames {
			entry, ok := dayEntry(obj, day)
			if ok {
				week.Days[day] = entry
			}
		}
		weeks = append(weeks, week)
	}
	return weeks
}

func dayEntry(obj map[string]any, day string) (model.DayEntry, bool) {
	switch v := obj[day].(type) {
	case string:
		code := strings.TrimSpace(v)
		if code == "" {
			return model.DayEntry{}, false
		}
		return model.DayEntry{
			Code:    code,
			LogoURL: stringField(obj, day+"_logo", day+"_logo_url"),
		}, true
	case map[string]any:
		entry := model.DayEntry{
			Code:    stringField(v, "code", "session"),
			LogoURL: stringField(v, "logo_url", "logoUrl"),
		}
		if entry.Code == "" && entry.LogoURL == "" {
			return model.DayEntry{}, false
		}
		return entry, true
	default:
		return model.DayEntry{}, false
	}
}

// SessionsBlob decodes a program's sessions blob: session code to ordered
// exercise list. Non-list values and non-object exercises are skipped.
func SessionsBlob(raw []byte) map[string][]model.Exercise {
	obj := MaybeObject(raw)
	if obj == nil {
		return nil
	}
	sessions := make(map[string][]model.Exercise, len(obj))
	for code, v := range obj {
		items, ok := v.([]any)
		if !ok {
			continue
		}
		exercises := make([]model.Exercise, 0, len(items))
		for _, item := range items {
			ex, ok := item.(map[string]any)
			if !ok {
				continue
			}
			e := model.Exercise{
				Name: stringField(ex, "name", "exercise"),
				Reps: stringField(ex, "reps"),
				Sets: stringField(ex, "sets"),
				Load: stringField(ex, "load", "weight"),
				Rest: stringField(ex, "rest"),
			}
			if e.Name == "" {
				continue
			}
			exercises = append(exercises, e)
		}
		sessions[code] = exercises
	}
	if len(sessions) == 0 {
		return nil
	}
	return sessions
}

// MaybeList decodes raw JSON that may be a list or a JSON-encoded string
// wrapping a list. Returns nil when the input is empty, null, or not a list
// at any level.
func MaybeList(raw []byte) []any {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil
	}

	var v any
	if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
		return nil
	}
	switch t := v.(type) {
	case []any:
		return t
	case string:
		var list []any
		if err := json.Unmarshal([]byte(t), &list); err != nil {
			return nil
		}
		return list
	default:
		return nil
	}
}
