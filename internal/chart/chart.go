// Package chart windows enriched analyses into display-ready chart data for
// a selected metric: a bounded point list, axis bounds, and grade-boundary
// reference lines.
package chart

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/vantagemgmt/portal-data/internal/metric"
	"github.com/vantagemgmt/portal-data/internal/model"
)

// Window is the number of most-recent analyses charted.
const Window = 8

// Point is one chartable analysis.
type Point struct {
	AnalysisID    int64              `json:"analysis_id"`
	Date          time.Time          `json:"date"`
	Opponent      string             `json:"opponent"`
	Score         float64            `json:"score"`
	Result        string             `json:"result"`
	Label         string             `json:"label"`
	Grade         string             `json:"grade"`
	Color         string             `json:"color"`
	MinutesPlayed *float64           `json:"minutes_played,omitempty"`
	StrikerStats  map[string]float64 `json:"striker_stats,omitempty"`
}

// Data is a complete chart payload.
type Data struct {
	Metric         metric.Key        `json:"metric"`
	Label          string            `json:"label"`
	Points         []Point           `json:"points"`
	YMax           float64           `json:"y_max"`
	ReferenceLines []metric.Boundary `json:"reference_lines,omitempty"`
	AverageLine    *float64          `json:"average_line,omitempty"`
}

// Build filters analyses to those with a value for the metric, sorts
// ascending by date, and keeps the most recent Window entries (older entries
// drop off the front). ok is false for an unknown metric key.
func Build(analyses []model.Analysis, key metric.Key) (Data, bool) {
	def, found := metric.Lookup(key)
	if !found {
		return Data{}, false
	}

	points := make([]Point, 0, len(analyses))
	for i := range analyses {
		a := &analyses[i]
		score, ok := def.Extract(a)
		if !ok {
			continue
		}
		grade, color := def.Grade(score)
		points = append(points, Point{
			AnalysisID:    a.ID,
			Date:          a.MatchDate,
			Opponent:      a.Opponent,
			Score:         score,
			Result:        a.Result,
			Label:         fmt.Sprintf("%s %s", a.Opponent, a.MatchDate.Format("02 Jan")),
			Grade:         grade,
			Color:         color,
			MinutesPlayed: a.MinutesPlayed,
			StrikerStats:  a.StrikerStats,
		})
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	if len(points) > Window {
		points = points[len(points)-Window:]
	}

	data := Data{
		Metric: def.Key,
		Label:  def.Label,
		Points: points,
		YMax:   yMax(points, def.FloorMax),
	}

	if def.RawValue {
		if len(points) > 0 {
			mean := 0.0
			for _, p := range points {
				mean += p.Score
			}
			mean /= float64(len(points))
			data.AverageLine = &mean
		}
	} else {
		for _, b := range def.Boundaries {
			if b.Threshold <= data.YMax {
				data.ReferenceLines = append(data.ReferenceLines, b)
			}
		}
	}
	return data, true
}

// yMax is ceil(max score * 1.1), never below the metric's floor.
func yMax(points []Point, floor float64) float64 {
	max := 0.0
	for _, p := range points {
		if p.Score > max {
			max = p.Score
		}
	}
	y := math.Ceil(max * 1.1)
	if y < floor {
		return floor
	}
	return y
}
