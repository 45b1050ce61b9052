package detect

import (
	"github.com/KaramelBytes/goodnews-cli/internal/dataset"
	"github.com/KaramelBytes/goodnews-cli/internal/indicator"
)

// MilestoneResult is the first crossing of a threshold in the good direction.
type MilestoneResult struct {
	Country        string
	Indicator      string
	DisplayName    string
	MilestoneValue float64
	CrossedYear    int
	PreviousValue  float64
	NewValue       float64
	Headline       string
	Unit           string
}

// FirstCrossing returns the index i of the first consecutive pair
// (series[i-1], series[i]) that crosses threshold in direction dir, or -1.
func FirstCrossing(series []dataset.Observation, threshold float64, dir indicator.Direction) int {
	for i := 1; i < len(series); i++ {
		prev, curr := series[i-1].Value, series[i].Value
		if dir == indicator.Down {
			if prev >= threshold && threshold > curr {
				return i
			}
		} else if prev <= threshold && threshold < curr {
			return i
		}
	}
	return -1
}

// DetectMilestones scans a country's full chronological history once per
// configured threshold. Only the first crossing counts, and only if it falls
// within p.MilestoneRecencyYears of the current year.
func DetectMilestones(series []dataset.Observation, spec indicator.Spec, p Params) []MilestoneResult {
	if len(series) < 2 {
		return nil
	}
	now := p.currentYear()
	var out []MilestoneResult
	for _, m := range spec.Milestones {
		i := FirstCrossing(series, m, spec.GoodDirection)
		if i < 0 {
			continue
		}
		prev, curr := series[i-1], series[i]
		if now-curr.Year > p.MilestoneRecencyYears {
			continue
		}
		out = append(out, MilestoneResult{
			Country:        curr.Country,
			Indicator:      spec.Name,
			DisplayName:    spec.DisplayName,
			MilestoneValue: m,
			CrossedYear:    curr.Year,
			PreviousValue:  prev.Value,
			NewValue:       curr.Value,
			Headline:       spec.Headline(m, curr.Country),
			Unit:           spec.Unit,
		})
	}
	return out
}

// DetectAllMilestones runs DetectMilestones for every country in sorted obs.
func DetectAllMilestones(obs []dataset.Observation, spec indicator.Spec, p Params) []MilestoneResult {
	var out []MilestoneResult
	for _, series := range dataset.GroupByCountry(obs) {
		out = append(out, DetectMilestones(series, spec, p)...)
	}
	return out
}
