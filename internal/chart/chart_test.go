package chart

import (
	"testing"
	"time"

	"github.com/vantagemgmt/portal-data/internal/metric"
	"github.com/vantagemgmt/portal-data/internal/model"
)

func analysisOn(id int64, day int, score float64) model.Analysis {
	return model.Analysis{
		ID:        id,
		MatchDate: time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
		Opponent:  "Opp",
		Score:     score,
	}
}

func TestBuild_WindowsMostRecentAscending(t *testing.T) {
	// 10 analyses, deliberately out of order on input.
	var analyses []model.Analysis
	for day := 10; day >= 1; day-- {
		analyses = append(analyses, analysisOn(int64(day), day, 1.0))
	}

	data, ok := Build(analyses, metric.R90)
	if !ok {
		t.Fatal("Build returned ok=false for r90")
	}
	if len(data.Points) != Window {
		t.Fatalf("points = %d, want %d", len(data.Points), Window)
	}
	// Oldest two (days 1, 2) dropped off the front; rest ascend by date.
	if data.Points[0].Date.Day() != 3 || data.Points[Window-1].Date.Day() != 10 {
		t.Errorf("window = [%v .. %v], want days 3..10",
			data.Points[0].Date, data.Points[Window-1].Date)
	}
	for i := 1; i < len(data.Points); i++ {
		if data.Points[i].Date.Before(data.Points[i-1].Date) {
			t.Fatalf("points not ascending at %d", i)
		}
	}
}

func TestBuild_Label(t *testing.T) {
	data, _ := Build([]model.Analysis{analysisOn(1, 2, 1.5)}, metric.R90)
	if got := data.Points[0].Label; got != "Opp 02 Jan" {
		t.Errorf("label = %q, want %q", got, "Opp 02 Jan")
	}
}

func TestBuild_YMax(t *testing.T) {
	// max 2.3 -> ceil(2.53) = 3, above the 2.5 floor.
	data, _ := Build([]model.Analysis{
		analysisOn(1, 1, 2.3),
		analysisOn(2, 2, 1.1),
	}, metric.R90)
	if data.YMax != 3 {
		t.Errorf("y_max = %v, want 3", data.YMax)
	}

	// Small scores fall back to the metric floor.
	data, _ = Build([]model.Analysis{analysisOn(1, 1, 0.4)}, metric.R90)
	if data.YMax != 2.5 {
		t.Errorf("y_max = %v, want floor 2.5", data.YMax)
	}
}

func TestBuild_ReferenceLinesBounded(t *testing.T) {
	data, _ := Build([]model.Analysis{analysisOn(1, 1, 0.4)}, metric.R90)
	if len(data.ReferenceLines) == 0 {
		t.Fatal("graded metric must carry reference lines")
	}
	for _, b := range data.ReferenceLines {
		if b.Threshold > data.YMax {
			t.Errorf("reference line %v above y_max %v", b.Threshold, data.YMax)
		}
	}
	if data.AverageLine != nil {
		t.Error("graded metric must not carry an average line")
	}
}

func TestBuild_RawValueAverageLine(t *testing.T) {
	a1 := analysisOn(1, 1, 0)
	a1.StrikerStats = map[string]float64{metric.StatXCTotal: 2}
	a2 := analysisOn(2, 2, 0)
	a2.StrikerStats = map[string]float64{metric.StatXCTotal: 4}

	data, ok := Build([]model.Analysis{a1, a2}, metric.XCTotal)
	if !ok {
		t.Fatal("Build returned ok=false for xc metric")
	}
	if data.AverageLine == nil || *data.AverageLine != 3 {
		t.Errorf("average_line = %v, want 3", data.AverageLine)
	}
	if len(data.ReferenceLines) != 0 {
		t.Error("raw-value metric must not carry reference lines")
	}
}

func TestBuild_SkipsAnalysesWithoutValue(t *testing.T) {
	withStat := analysisOn(1, 1, 0)
	withStat.StrikerStats = map[string]float64{metric.StatXG: 0.7}
	without := analysisOn(2, 2, 0)

	data, _ := Build([]model.Analysis{withStat, without}, metric.XG)
	if len(data.Points) != 1 || data.Points[0].AnalysisID != 1 {
		t.Errorf("points = %+v, want only analysis 1", data.Points)
	}
}

func TestBuild_UnknownMetric(t *testing.T) {
	if _, ok := Build(nil, metric.Key("bogus")); ok {
		t.Error("unknown metric must return ok=false")
	}
}
