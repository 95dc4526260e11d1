package enrich

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/vantagemgmt/portal-data/internal/metric"
	"github.com/vantagemgmt/portal-data/internal/model"
)

type fakeActions struct {
	byAnalysis map[int64][]model.Action
	failFor    map[int64]bool
}

func (f *fakeActions) ActionsByAnalysis(_ context.Context, id int64) ([]model.Action, error) {
	if f.failFor[id] {
		return nil, errors.New("boom")
	}
	return f.byAnalysis[id], nil
}

func minutes(v float64) *float64 { return &v }

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestChainValue_SumsPositiveOnly(t *testing.T) {
	actions := []model.Action{
		{Score: 0.3}, {Score: -0.5}, {Score: 0.2}, {Score: 0},
	}
	if got := ChainValue(actions); got != 0.5 {
		t.Errorf("ChainValue = %v, want 0.5", got)
	}
}

func TestAnalyses_DerivesChainAndPer90(t *testing.T) {
	src := &fakeActions{byAnalysis: map[int64][]model.Action{
		1: {{Score: 0.4}, {Score: 0.2}, {Score: -1}},
	}}
	in := []model.Analysis{{
		ID: 1, MinutesPlayed: minutes(45),
		StrikerStats: map[string]float64{metric.StatXGChain: 99},
	}}

	out := Analyses(context.Background(), src, in, quiet())
	if len(out) != 1 {
		t.Fatalf("analyses = %d, want 1", len(out))
	}
	stats := out[0].StrikerStats
	if stats[metric.StatXGChainTotal] != 0.6 {
		t.Errorf("chain = %v, want 0.6", stats[metric.StatXGChainTotal])
	}
	// 0.6 over 45 minutes normalizes to 1.2 per 90 — the stored 99 is
	// always overridden.
	if stats[metric.StatXGChain] != 1.2 {
		t.Errorf("per90 = %v, want 1.2 (stored value overridden)", stats[metric.StatXGChain])
	}
	// Input slice untouched.
	if in[0].StrikerStats[metric.StatXGChain] != 99 {
		t.Error("input analyses must not be mutated")
	}
}

func TestAnalyses_SkipsWithoutMinutesOrActions(t *testing.T) {
	src := &fakeActions{byAnalysis: map[int64][]model.Action{}}
	in := []model.Analysis{
		{ID: 1},                             // nil minutes
		{ID: 2, MinutesPlayed: minutes(0)},  // zero minutes
		{ID: 3, MinutesPlayed: minutes(90)}, // no action rows
	}

	out := Analyses(context.Background(), src, in, quiet())
	for i, a := range out {
		if _, ok := a.StrikerStats[metric.StatXGChainTotal]; ok {
			t.Errorf("analysis %d must stay unenriched", in[i].ID)
		}
	}
}

func TestAnalyses_FailureIsolatedPerItem(t *testing.T) {
	src := &fakeActions{
		byAnalysis: map[int64][]model.Action{2: {{Score: 1}}},
		failFor:    map[int64]bool{1: true},
	}
	in := []model.Analysis{
		{ID: 1, MinutesPlayed: minutes(90)},
		{ID: 2, MinutesPlayed: minutes(90)},
	}

	out := Analyses(context.Background(), src, in, quiet())
	if _, ok := out[0].StrikerStats[metric.StatXGChainTotal]; ok {
		t.Error("failed fetch must leave its item unenriched")
	}
	if out[1].StrikerStats[metric.StatXGChainTotal] != 1 {
		t.Error("other items must still be enriched")
	}
	// Order preserved.
	if out[0].ID != 1 || out[1].ID != 2 {
		t.Errorf("order = %d,%d, want 1,2", out[0].ID, out[1].ID)
	}
}
