package normalize

import (
	"reflect"
	"testing"

	"github.com/vantagemgmt/portal-data/internal/model"
)

func TestBioBlob_PlainObject(t *testing.T) {
	bio := BioBlob([]byte(`{"height":"184cm","foot":"left"}`))
	if bio["height"] != "184cm" || bio["foot"] != "left" {
		t.Errorf("bio = %v, want height/foot preserved", bio)
	}
}

func TestBioBlob_DoubleEncoded(t *testing.T) {
	// Whole blob is a JSON string wrapping an object.
	bio := BioBlob([]byte(`"{\"height\":\"184cm\"}"`))
	if bio["height"] != "184cm" {
		t.Errorf("bio = %v, want unwrapped height", bio)
	}
}

func TestBioBlob_NestedBioString(t *testing.T) {
	bio := BioBlob([]byte(`{"club":"Ajax","bio":"{\"height\":\"184cm\",\"club\":\"PSV\"}"}`))
	if bio["height"] != "184cm" {
		t.Errorf("height = %v, want 184cm", bio["height"])
	}
	// Inner keys win over outer.
	if bio["club"] != "PSV" {
		t.Errorf("club = %v, want PSV (inner wins)", bio["club"])
	}
	if _, exists := bio["bio"]; exists {
		t.Error("nested bio key should be dropped after merge")
	}
}

func TestBioBlob_InnerParseFailureKeepsOuter(t *testing.T) {
	bio := BioBlob([]byte(`{"club":"Ajax","bio":"not json"}`))
	if bio["club"] != "Ajax" {
		t.Errorf("club = %v, want Ajax", bio["club"])
	}
	if bio["bio"] != "not json" {
		t.Error("unparseable inner bio should stay as-is on the outer object")
	}
}

func TestBioBlob_MalformedReturnsNil(t *testing.T) {
	for _, raw := range []string{"", "null", "{broken", "42", `["a"]`} {
		if bio := BioBlob([]byte(raw)); bio != nil {
			t.Errorf("BioBlob(%q) = %v, want nil", raw, bio)
		}
	}
}

func TestHighlightsBlob_Defaults(t *testing.T) {
	h := HighlightsBlob(nil)
	if h.MatchHighlights == nil || h.BestClips == nil {
		t.Fatal("lists must default to empty, not nil")
	}
	if len(h.MatchHighlights) != 0 || len(h.BestClips) != 0 {
		t.Errorf("lists = %d/%d, want empty", len(h.MatchHighlights), len(h.BestClips))
	}
}

func TestHighlightsBlob_CoercesClips(t *testing.T) {
	raw := []byte(`{
		"matchHighlights":[{"name":"vs Feyenoord","videoUrl":"https://m/1.mp4"}],
		"bestClips":[{"name":"volley","video_url":"https://m/2.mp4"},{"bogus":1},"junk"]
	}`)
	h := HighlightsBlob(raw)
	if len(h.MatchHighlights) != 1 || h.MatchHighlights[0].Name != "vs Feyenoord" {
		t.Errorf("matchHighlights = %v", h.MatchHighlights)
	}
	if len(h.BestClips) != 1 || h.BestClips[0].VideoURL != "https://m/2.mp4" {
		t.Errorf("bestClips = %v, want single clip with snake_case url coerced", h.BestClips)
	}
}

func TestPlayer_Idempotent(t *testing.T) {
	raw := RawPlayer{
		ID: 7, Email: "a@b.c", Name: "Nico", Position: "ST",
		Bio:        []byte(`{"club":"Ajax","bio":"{\"height\":\"184cm\"}"}`),
		Highlights: []byte(`{"bestClips":[{"name":"volley","videoUrl":"u"}]}`),
	}
	once := Player(raw)

	// Re-normalizing the normalized output must be a fixed point.
	bioBlob, _ := json.Marshal(once.Bio)
	hlBlob, _ := json.Marshal(once.Highlights)
	twice := Player(RawPlayer{
		ID: once.ID, Email: once.Email, Name: once.Name, Position: once.Position,
		Bio: bioBlob, Highlights: hlBlob,
	})

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("normalization not idempotent:\nonce  = %+v\ntwice = %+v", once, twice)
	}
}

func TestMergeHighlights_PreservesInFlight(t *testing.T) {
	local := model.Highlights{
		BestClips: []model.Clip{
			{Name: "uploading.mp4", Uploading: true, UploadID: "u1"},
			{Name: "failed.mp4", UploadFailed: true, UploadID: "u2"},
			{Name: "stale.mp4"}, // settled, not carried
		},
	}
	fresh := model.Highlights{
		BestClips: []model.Clip{{Name: "server.mp4", VideoURL: "https://m/s.mp4"}},
	}

	merged := MergeHighlights(local, fresh)
	if len(merged.BestClips) != 3 {
		t.Fatalf("merged clips = %d, want 3 (2 in-flight + 1 server)", len(merged.BestClips))
	}
	if merged.BestClips[0].Name != "uploading.mp4" || merged.BestClips[1].Name != "failed.mp4" {
		t.Errorf("in-flight clips must be prepended, got %v", merged.BestClips)
	}
	if merged.BestClips[2].Name != "server.mp4" {
		t.Errorf("server clip must follow, got %v", merged.BestClips[2])
	}
}

func TestMergeHighlights_ReconcilesJustCompleted(t *testing.T) {
	local := model.Highlights{
		BestClips: []model.Clip{{Name: "done.mp4", JustCompleted: true}},
	}
	fresh := model.Highlights{
		BestClips: []model.Clip{{Name: "done.mp4", VideoURL: "https://m/d.mp4"}},
	}

	merged := MergeHighlights(local, fresh)
	if len(merged.BestClips) != 1 {
		t.Fatalf("merged clips = %d, want 1 (reconciled to server copy)", len(merged.BestClips))
	}
	if merged.BestClips[0].JustCompleted {
		t.Error("reconciled clip must be the server copy, not the placeholder")
	}
}

func TestMaybeObject(t *testing.T) {
	if got := MaybeObject([]byte(`{"a":1}`)); got["a"] != float64(1) {
		t.Errorf("object input: got %v", got)
	}
	if got := MaybeObject([]byte(`"{\"a\":1}"`)); got["a"] != float64(1) {
		t.Errorf("string-wrapped input: got %v", got)
	}
	if got := MaybeObject([]byte(`null`)); got != nil {
		t.Errorf("null input: got %v, want nil", got)
	}
	if got := MaybeObject([]byte(`"not json"`)); got != nil {
		t.Errorf("non-object string input: got %v, want nil", got)
	}
}

func TestStatsBlob_DropsNonNumeric(t *testing.T) {
	stats := StatsBlob([]byte(`{"xG_adj_per90":0.42,"note":"good","turnovers_per90":3}`))
	if stats["xG_adj_per90"] != 0.42 || stats["turnovers_per90"] != 3 {
		t.Errorf("stats = %v", stats)
	}
	if _, exists := stats["note"]; exists {
		t.Error("non-numeric value must be dropped")
	}
}
