package metric

import (
	"testing"

	"github.com/vantagemgmt/portal-data/internal/model"
)

func withStats(stats map[string]float64) model.Analysis {
	return model.Analysis{StrikerStats: stats}
}

func TestGrade_R90Boundaries(t *testing.T) {
	r90, _ := Lookup(R90)

	tests := []struct {
		score     float64
		wantGrade string
		wantColor string
	}{
		{0.0, "U", "#dc2626"},  // first bucket [0, 0.2)
		{0.19, "U", "#dc2626"}, // still first bucket
		{0.2, "D", "#ea580c"},  // half-open: exactly the next threshold
		{1.0, "B-", "#a3e635"},
		{1.99, "A", "#14b8a6"},
		{2.0, "A+", "#d4af37"},  // top bucket starts at 2.0
		{2.5, "A+", "#d4af37"},  // top bucket is unbounded, gold
		{-0.1, "N", "#7f1d1d"}, // distinct negative bucket
	}
	for _, tt := range tests {
		grade, color := r90.Grade(tt.score)
		if grade != tt.wantGrade || color != tt.wantColor {
			t.Errorf("Grade(%v) = %q/%q, want %q/%q",
				tt.score, grade, color, tt.wantGrade, tt.wantColor)
		}
	}
}

func TestGrade_RawValueMetric(t *testing.T) {
	xc, _ := Lookup(XCTotal)
	grade, color := xc.Grade(3.25)
	if grade != "3.2" && grade != "3.3" {
		t.Errorf("raw grade = %q, want formatted number", grade)
	}
	if color != NeutralColor {
		t.Errorf("raw color = %q, want neutral %q", color, NeutralColor)
	}
}

func TestExtract_R90ReadsScore(t *testing.T) {
	r90, _ := Lookup(R90)
	a := model.Analysis{Score: 1.4}
	v, ok := r90.Extract(&a)
	if !ok || v != 1.4 {
		t.Errorf("Extract = %v/%v, want 1.4/true", v, ok)
	}
}

func TestExtract_PPTurnoversRatio(t *testing.T) {
	def, _ := Lookup(PPTurnoversRatio)

	a := withStats(map[string]float64{
		StatProgressivePasses: 9,
		StatTurnovers:         3,
	})
	v, ok := def.Extract(&a)
	if !ok || v != 3 {
		t.Errorf("ratio = %v/%v, want 3/true", v, ok)
	}

	// Zero turnovers: the ratio is absent, not infinite.
	zero := withStats(map[string]float64{
		StatProgressivePasses: 9,
		StatTurnovers:         0,
	})
	if _, ok := def.Extract(&zero); ok {
		t.Error("ratio must be absent when turnovers is 0")
	}

	missing := withStats(map[string]float64{StatTurnovers: 2})
	if _, ok := def.Extract(&missing); ok {
		t.Error("ratio must be absent without progressive passes")
	}
}

func TestLookup_CaseInsensitive(t *testing.T) {
	if _, ok := Lookup("XG"); !ok {
		t.Error("Lookup must be case-insensitive")
	}
	if _, ok := Lookup("unknown"); ok {
		t.Error("unknown key must miss")
	}
}

func TestFirstWithData(t *testing.T) {
	analyses := []model.Analysis{
		withStats(map[string]float64{StatXA: 0.3}),
	}

	// R90 always extracts, so it has data for any non-empty list.
	if got := FirstWithData(analyses, R90); got != R90 {
		t.Errorf("selected with data = %v, want r90", got)
	}

	// Selected key with data is kept even when lower in priority.
	if got := FirstWithData(analyses, XA); got != XA {
		t.Errorf("selected xa = %v, want xa", got)
	}

	// Selected key without data switches to the first with data.
	if got := FirstWithData(analyses, XCTotal); got != R90 {
		t.Errorf("auto-switch = %v, want r90", got)
	}

	// Nothing has data: the selection is returned unchanged.
	if got := FirstWithData(nil, XG); got != XG {
		t.Errorf("empty list = %v, want xg", got)
	}
}
