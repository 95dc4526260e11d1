// Package enrich derives the chain-value metric for performance analyses
// from their child action records. Derived values are recomputed on every
// fetch and always override whatever the stored blob carried — storage is
// never trusted for these keys.
package enrich

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vantagemgmt/portal-data/internal/metric"
	"github.com/vantagemgmt/portal-data/internal/model"
)

// ActionSource fetches the action rows for one analysis.
type ActionSource interface {
	ActionsByAnalysis(ctx context.Context, analysisID int64) ([]model.Action, error)
}

// Analyses returns the input list with chain metrics derived per item.
//
// For each analysis with non-null minutes played, the child actions are
// fetched and xgChain = sum of positive action scores, normalized per 90.
// Fetches fan out concurrently with no ordering dependency; the returned
// list preserves input order and is only handed back once every fetch has
// settled. A failed fetch leaves that one item unenriched rather than
// dropping it or blocking the rest.
func Analyses(ctx context.Context, src ActionSource, analyses []model.Analysis, logger *slog.Logger) []model.Analysis {
	if logger == nil {
		logger = slog.Default()
	}
	out := make([]model.Analysis, len(analyses))
	copy(out, analyses)

	var wg sync.WaitGroup
	for i := range out {
		if out[i].MinutesPlayed == nil || *out[i].MinutesPlayed <= 0 {
			continue
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a := &out[i]
			actions, err := src.ActionsByAnalysis(ctx, a.ID)
			if err != nil {
				logger.Warn("fetch actions failed, analysis left unenriched",
					"analysis_id", a.ID, "error", err)
				return
			}
			if len(actions) == 0 {
				return
			}
			chain := ChainValue(actions)
			stats := make(map[string]float64, len(a.StrikerStats)+2)
			for k, v := range a.StrikerStats {
				stats[k] = v
			}
			stats[metric.StatXGChainTotal] = chain
			stats[metric.StatXGChain] = chain / *a.MinutesPlayed * 90
			a.StrikerStats = stats
		}(i)
	}
	wg.Wait()
	return out
}

// ChainValue sums the positive action scores; negative contributions are
// excluded from the chain by definition.
func ChainValue(actions []model.Action) float64 {
	sum := 0.0
	for _, act := range actions {
		if act.Score > 0 {
			sum += act.Score
		}
	}
	return sum
}
