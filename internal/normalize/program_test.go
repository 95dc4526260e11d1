package normalize

import "testing"

func TestWeekSchedulesBlob_FlatDayKeys(t *testing.T) {
	raw := []byte(`[{"week_start_date":"2024-01-01","monday":"A","tuesday":"PRE-B","tuesday_logo":"https://c/logo.png"}]`)
	weeks := WeekSchedulesBlob(raw)
	if len(weeks) != 1 {
		t.Fatalf("weeks = %d, want 1", len(weeks))
	}
	w := weeks[0]
	if w.WeekStartDate != "2024-01-01" {
		t.Errorf("week_start_date = %q", w.WeekStartDate)
	}
	if w.Days["monday"].Code != "A" {
		t.Errorf("monday = %+v", w.Days["monday"])
	}
	if w.Days["tuesday"].Code != "PRE-B" || w.Days["tuesday"].LogoURL != "https://c/logo.png" {
		t.Errorf("tuesday = %+v", w.Days["tuesday"])
	}
	if _, ok := w.Days["wednesday"]; ok {
		t.Error("absent day must not appear in Days")
	}
}

func TestWeekSchedulesBlob_NestedDayObjects(t *testing.T) {
	raw := []byte(`[{"week_start_date":"2024-01-08","friday":{"code":"MATCH","logo_url":"https://c/opp.png"}}]`)
	weeks := WeekSchedulesBlob(raw)
	if len(weeks) != 1 {
		t.Fatalf("weeks = %d, want 1", len(weeks))
	}
	day := weeks[0].Days["friday"]
	if day.Code != "MATCH" || day.LogoURL != "https://c/opp.png" {
		t.Errorf("friday = %+v", day)
	}
}

func TestWeekSchedulesBlob_StringWrapped(t *testing.T) {
	raw := []byte(`"[{\"week_start_date\":\"2024-01-01\",\"monday\":\"REST\"}]"`)
	weeks := WeekSchedulesBlob(raw)
	if len(weeks) != 1 || weeks[0].Days["monday"].Code != "REST" {
		t.Errorf("weeks = %+v, want double-encoded list unwrapped", weeks)
	}
}

func TestWeekSchedulesBlob_Malformed(t *testing.T) {
	for _, raw := range []string{"", "null", "{}", "[broken"} {
		if weeks := WeekSchedulesBlob([]byte(raw)); weeks != nil {
			t.Errorf("WeekSchedulesBlob(%q) = %v, want nil", raw, weeks)
		}
	}
}

func TestSessionsBlob(t *testing.T) {
	raw := []byte(`{
		"A":[{"name":"Box finishing","reps":"10","sets":"3","rest":"90s"}],
		"PRE-B":[{"name":"Activation","load":"bodyweight"},{"noname":true}],
		"bad":"not a list"
	}`)
	sessions := SessionsBlob(raw)
	if len(sessions["A"]) != 1 || sessions["A"][0].Name != "Box finishing" {
		t.Errorf("A = %+v", sessions["A"])
	}
	if len(sessions["PRE-B"]) != 1 || sessions["PRE-B"][0].Load != "bodyweight" {
		t.Errorf("PRE-B = %+v, want nameless exercise dropped", sessions["PRE-B"])
	}
	if _, ok := sessions["bad"]; ok {
		t.Error("non-list session value must be skipped")
	}
}
