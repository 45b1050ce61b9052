package detect

import (
	"math"

	"github.com/KaramelBytes/goodnews-cli/internal/dataset"
	"github.com/KaramelBytes/goodnews-cli/internal/indicator"
)

// TrendResult is an accepted, statistically credible improvement.
type TrendResult struct {
	Country     string
	Indicator   string
	DisplayName string
	Direction   string
	Slope       float64
	PValue      float64
	RSquared    float64
	StartYear   int
	EndYear     int
	StartValue  float64
	EndValue    float64
	// PercentChange is computed from the raw window endpoints, not the fit.
	PercentChange float64
	Unit          string
}

// DirectionImproving is the only direction DetectTrend ever emits.
const DirectionImproving = "improving"

// DetectTrend fits a line over the last p.MinYearsForTrend observations of a
// single country's chronological series. It returns false when history is
// too short or the fit is not significant, not strong, or not improving.
func DetectTrend(series []dataset.Observation, spec indicator.Spec, p Params) (TrendResult, bool) {
	window := p.MinYearsForTrend
	if window < 2 {
		window = 2
	}
	if len(series) < window {
		return TrendResult{}, false
	}
	recent := series[len(series)-window:]

	xs := make([]float64, len(recent))
	ys := make([]float64, len(recent))
	for i, o := range recent {
		xs[i] = float64(o.Year)
		ys[i] = o.Value
	}
	fit, err := LinearRegression(xs, ys)
	if err != nil {
		return TrendResult{}, false
	}
	if fit.PValue > p.PValueThreshold || fit.RSquared < p.MinRSquared {
		return TrendResult{}, false
	}
	if !spec.GoodDirection.Improving(fit.Slope) {
		return TrendResult{}, false
	}

	first, last := recent[0], recent[len(recent)-1]
	return TrendResult{
		Country:       first.Country,
		Indicator:     spec.Name,
		DisplayName:   spec.DisplayName,
		Direction:     DirectionImproving,
		Slope:         fit.Slope,
		PValue:        fit.PValue,
		RSquared:      fit.RSquared,
		StartYear:     first.Year,
		EndYear:       last.Year,
		StartValue:    first.Value,
		EndValue:      last.Value,
		PercentChange: percentChange(first.Value, last.Value),
		Unit:          spec.Unit,
	}, true
}

// DetectTrends runs DetectTrend for every country in sorted obs.
func DetectTrends(obs []dataset.Observation, spec indicator.Spec, p Params) []TrendResult {
	var out []TrendResult
	for _, series := range dataset.GroupByCountry(obs) {
		if tr, ok := DetectTrend(series, spec, p); ok {
			out = append(out, tr)
		}
	}
	return out
}

func percentChange(start, end float64) float64 {
	if start == 0 {
		return 0
	}
	return (end - start) / math.Abs(start) * 100
}
