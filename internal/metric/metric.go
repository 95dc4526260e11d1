// Package metric is the declarative registry mapping a metric key to its
// value extractor, grade/color boundary table, display label, and chart
// floor. Every grade the portal displays comes from the one table here —
// boundary values are display contracts and must not drift.
package metric

import (
	"fmt"
	"strings"

	"github.com/vantagemgmt/portal-data/internal/model"
)

// Key identifies a chartable metric.
type Key string

const (
	R90               Key = "r90"
	XG                Key = "xg"
	XA                Key = "xa"
	Regains           Key = "regains"
	Interceptions     Key = "interceptions"
	XGChain           Key = "xgchain"
	XGBuildup         Key = "xgbuildup"
	ProgressivePasses Key = "progressivepasses"
	PPTurnoversRatio  Key = "ppturnoversratio"
	Shots             Key = "shots"
	ShotsOnTarget     Key = "shotsontarget"
	XCTotal           Key = "xctotal"
	XCDeep            Key = "xcdeep"
	XCWide            Key = "xcwide"
	XCShort           Key = "xcshort"
)

// Priority is the fixed auto-switch order: when the selected metric has no
// data across the analysis list, the first key here that does have data wins.
var Priority = []Key{
	R90, XG, XA, Regains, Interceptions, XGChain, XGBuildup,
	ProgressivePasses, PPTurnoversRatio, Shots, ShotsOnTarget,
	XCTotal, XCDeep, XCWide, XCShort,
}

// Striker-stats keys the extractors read. The chain keys are also what the
// enricher overwrites with derived values.
const (
	StatXG                = "xG_adj_per90"
	StatXA                = "xA_adj_per90"
	StatRegains           = "regains_adj_per90"
	StatInterceptions     = "interceptions_adj_per90"
	StatXGChain           = "xGChain_per90"
	StatXGChainTotal      = "xGChain"
	StatXGBuildup         = "xGBuildup_per90"
	StatProgressivePasses = "progressive_passes_per90"
	StatTurnovers         = "turnovers_per90"
	StatShots             = "shots_per90"
	StatShotsOnTarget     = "shots_on_target_per90"
	StatXCTotal           = "xC_total_per90"
	StatXCDeep            = "xC_deep_per90"
	StatXCWide            = "xC_wide_per90"
	StatXCShort           = "xC_short_per90"
)

// Boundary is one ascending grade bucket edge: scores in
// [Threshold, nextThreshold) take this letter and color; the last bucket is
// [Threshold, +inf).
type Boundary struct {
	Threshold float64 `json:"threshold"`
	Grade     string  `json:"grade"`
	Color     string  `json:"color"`
}

// Definition binds everything the dashboard needs for one metric.
type Definition struct {
	Key        Key
	Label      string
	Extract    func(*model.Analysis) (float64, bool)
	Boundaries []Boundary // nil for raw-value (xC) metrics
	RawValue   bool       // xC movement metrics: show the number, neutral color
	FloorMax   float64    // minimum chart Y-axis maximum
}

// Grades below the first threshold land in this distinct negative bucket.
const (
	NegativeGrade = "N"
	NegativeColor = "#7f1d1d"
	NeutralColor  = "#94a3b8"
)

var gradeLetters = []string{"U", "D", "C-", "C", "C+", "B-", "B", "B+", "A-", "A", "A+"}

var gradeColors = []string{
	"#dc2626", "#ea580c", "#f59e0b", "#eab308", "#facc15",
	"#a3e635", "#4ade80", "#22c55e", "#10b981", "#14b8a6", "#d4af37",
}

// scale builds the standard eleven-bucket table with thresholds
// 0, step, 2*step, …, 10*step.
func scale(step float64) []Boundary {
	out := make([]Boundary, len(gradeLetters))
	for i := range gradeLetters {
		out[i] = Boundary{
			Threshold: float64(i) * step,
			Grade:     gradeLetters[i],
			Color:     gradeColors[i],
		}
	}
	return out
}

func statExtractor(key string) func(*model.Analysis) (float64, bool) {
	return func(a *model.Analysis) (float64, bool) { return a.Stat(key) }
}

var registry = map[Key]Definition{
	R90: {
		Key: R90, Label: "R90",
		Extract:    func(a *model.Analysis) (float64, bool) { return a.Score, true },
		Boundaries: scale(0.2),
		FloorMax:   2.5,
	},
	XG: {
		Key: XG, Label: "xG per 90",
		Extract: statExtractor(StatXG), Boundaries: scale(0.1), FloorMax: 1,
	},
	XA: {
		Key: XA, Label: "xA per 90",
		Extract: statExtractor(StatXA), Boundaries: scale(0.1), FloorMax: 1,
	},
	Regains: {
		Key: Regains, Label: "Regains per 90",
		Extract: statExtractor(StatRegains), Boundaries: scale(1), FloorMax: 4,
	},
	Interceptions: {
		Key: Interceptions, Label: "Interceptions per 90",
		Extract: statExtractor(StatInterceptions), Boundaries: scale(0.5), FloorMax: 4,
	},
	XGChain: {
		Key: XGChain, Label: "xGChain per 90",
		Extract: statExtractor(StatXGChain), Boundaries: scale(0.1), FloorMax: 1,
	},
	XGBuildup: {
		Key: XGBuildup, Label: "xGBuildup per 90",
		Extract: statExtractor(StatXGBuildup), Boundaries: scale(0.1), FloorMax: 1,
	},
	ProgressivePasses: {
		Key: ProgressivePasses, Label: "Progressive passes per 90",
		Extract: statExtractor(StatProgressivePasses), Boundaries: scale(1), FloorMax: 4,
	},
	PPTurnoversRatio: {
		Key: PPTurnoversRatio, Label: "Progressive passes / turnovers",
		Extract: func(a *model.Analysis) (float64, bool) {
			pp, ok := a.Stat(StatProgressivePasses)
			if !ok {
				return 0, false
			}
			to, ok := a.Stat(StatTurnovers)
			if !ok || to == 0 {
				return 0, false
			}
			return pp / to, true
		},
		Boundaries: scale(0.5),
		FloorMax:   4,
	},
	Shots: {
		Key: Shots, Label: "Shots per 90",
		Extract: statExtractor(StatShots), Boundaries: scale(0.5), FloorMax: 4,
	},
	ShotsOnTarget: {
		Key: ShotsOnTarget, Label: "Shots on target per 90",
		Extract: statExtractor(StatShotsOnTarget), Boundaries: scale(0.25), FloorMax: 2.5,
	},
	XCTotal: {
		Key: XCTotal, Label: "xC total",
		Extract: statExtractor(StatXCTotal), RawValue: true, FloorMax: 1,
	},
	XCDeep: {
		Key: XCDeep, Label: "xC in behind",
		Extract: statExtractor(StatXCDeep), RawValue: true, FloorMax: 1,
	},
	XCWide: {
		Key: XCWide, Label: "xC wide",
		Extract: statExtractor(StatXCWide), RawValue: true, FloorMax: 1,
	},
	XCShort: {
		Key: XCShort, Label: "xC to feet",
		Extract: statExtractor(StatXCShort), RawValue: true, FloorMax: 1,
	},
}

// Lookup returns the definition for a key. Keys are matched
// case-insensitively.
func Lookup(k Key) (Definition, bool) {
	d, ok := registry[Key(strings.ToLower(string(k)))]
	return d, ok
}

// Grade maps a score to its display letter and color for this metric.
// Raw-value metrics return the formatted number and the neutral color.
// Buckets are half-open [low, high); the top bucket is unbounded; scores
// below the first threshold take the distinct negative bucket.
func (d Definition) Grade(score float64) (grade, color string) {
	if d.RawValue {
		return fmt.Sprintf("%.1f", score), NeutralColor
	}
	if len(d.Boundaries) == 0 || score < d.Boundaries[0].Threshold {
		return NegativeGrade, NegativeColor
	}
	for i := len(d.Boundaries) - 1; i >= 0; i-- {
		if score >= d.Boundaries[i].Threshold {
			return d.Boundaries[i].Grade, d.Boundaries[i].Color
		}
	}
	return NegativeGrade, NegativeColor
}

// HasData reports whether any analysis yields a value for this metric.
func (d Definition) HasData(analyses []model.Analysis) bool {
	for i := range analyses {
		if _, ok := d.Extract(&analyses[i]); ok {
			return true
		}
	}
	return false
}

// FirstWithData returns the selected key when it has data, otherwise the
// first key in priority order that does. Re-run whenever the analysis list
// changes. Falls back to the selected key when nothing has data.
func FirstWithData(analyses []model.Analysis, selected Key) Key {
	if d, ok := Lookup(selected); ok && d.HasData(analyses) {
		return selected
	}
	for _, k := range Priority {
		if d, ok := Lookup(k); ok && d.HasData(analyses) {
			return k
		}
	}
	return selected
}
