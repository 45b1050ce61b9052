// Package detect turns per-country indicator series into improving trends
// and first-time milestone crossings. Every function here is pure: the same
// observations, spec and Params always give the same results.
package detect

import (
	"time"

	"github.com/KaramelBytes/goodnews-cli/internal/dataset"
	"github.com/KaramelBytes/goodnews-cli/internal/indicator"
)

// Params carries the detection thresholds for one run.
type Params struct {
	// MinYearsForTrend is both the minimum history and the trend window size.
	MinYearsForTrend int
	PValueThreshold  float64
	MinRSquared      float64
	// MilestoneRecencyYears bounds how old a crossing may be to count as news.
	MilestoneRecencyYears int
	// CurrentYear anchors the recency filter; 0 means the wall-clock year.
	CurrentYear int
}

// DefaultParams returns the stock thresholds.
func DefaultParams() Params {
	return Params{
		MinYearsForTrend:      10,
		PValueThreshold:       0.05,
		MinRSquared:           0.5,
		MilestoneRecencyYears: 10,
	}
}

func (p Params) currentYear() int {
	if p.CurrentYear > 0 {
		return p.CurrentYear
	}
	return time.Now().Year()
}

// Result bundles everything detected for one indicator.
type Result struct {
	Trends     []TrendResult
	Milestones []MilestoneResult
}

// Detect runs both detectors over every country in obs, which must be sorted
// by (country, year) as produced by dataset.Normalize.
func Detect(obs []dataset.Observation, spec indicator.Spec, p Params) Result {
	return Result{
		Trends:     DetectTrends(obs, spec, p),
		Milestones: DetectAllMilestones(obs, spec, p),
	}
}
