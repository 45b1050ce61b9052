package story

import (
	"fmt"
	"math"
	"strconv"

	"github.com/KaramelBytes/goodnews-cli/internal/detect"
)

// Kind tags a Story.
type Kind string

const (
	KindTrend     Kind = "trend"
	KindMilestone Kind = "milestone"
)

// Story is the output record handed to presentation. Exactly one of the
// embedded detail pointers is set, matching Type; their fields are flattened
// into the JSON object.
type Story struct {
	Type             Kind   `json:"type"`
	Country          string `json:"country"`
	Indicator        string `json:"indicator"`
	IndicatorDisplay string `json:"indicator_display"`
	Headline         string `json:"headline"`
	Detail           string `json:"detail"`
	Year             int    `json:"year"`
	*TrendFields
	*MilestoneFields
	Unit string `json:"unit"`
}

// TrendFields are the trend-only story fields.
type TrendFields struct {
	StartYear             int     `json:"start_year"`
	StartValue            float64 `json:"start_value"`
	EndValue              float64 `json:"end_value"`
	PercentChange         float64 `json:"percent_change"`
	StatisticalConfidence float64 `json:"statistical_confidence"`
	TrendStrength         float64 `json:"trend_strength"`
}

// MilestoneFields are the milestone-only story fields.
type MilestoneFields struct {
	MilestoneValue float64 `json:"milestone_value"`
	PreviousValue  float64 `json:"previous_value"`
	NewValue       float64 `json:"new_value"`
}

// FromTrend formats an accepted trend.
func FromTrend(t detect.TrendResult) Story {
	word := "rose"
	if t.PercentChange < 0 {
		word = "fell"
	}
	return Story{
		Type:             KindTrend,
		Country:          t.Country,
		Indicator:        t.Indicator,
		IndicatorDisplay: t.DisplayName,
		Headline: fmt.Sprintf("%s's %s %s %.0f%% over %d years",
			t.Country, t.DisplayName, word, math.Abs(t.PercentChange), t.EndYear-t.StartYear),
		Detail: fmt.Sprintf("From %.1f in %d to %.1f %s in %d",
			t.StartValue, t.StartYear, t.EndValue, t.Unit, t.EndYear),
		Year: t.EndYear,
		TrendFields: &TrendFields{
			StartYear:             t.StartYear,
			StartValue:            round(t.StartValue, 2),
			EndValue:              round(t.EndValue, 2),
			PercentChange:         round(t.PercentChange, 1),
			StatisticalConfidence: round(1-t.PValue, 3),
			TrendStrength:         round(t.RSquared, 3),
		},
		Unit: t.Unit,
	}
}

// FromMilestone formats a milestone crossing.
func FromMilestone(m detect.MilestoneResult) Story {
	return Story{
		Type:             KindMilestone,
		Country:          m.Country,
		Indicator:        m.Indicator,
		IndicatorDisplay: m.DisplayName,
		Headline:         m.Headline,
		Detail:           fmt.Sprintf("Crossed from %.1f to %.1f %s", m.PreviousValue, m.NewValue, m.Unit),
		Year:             m.CrossedYear,
		MilestoneFields: &MilestoneFields{
			MilestoneValue: round(m.MilestoneValue, 2),
			PreviousValue:  round(m.PreviousValue, 2),
			NewValue:       round(m.NewValue, 2),
		},
		Unit: m.Unit,
	}
}

// round matches decimal rounding of the exact binary value, ties to even,
// so 1.115 (stored just below) gives 1.11 and 0.125 gives 0.12.
func round(v float64, places int) float64 {
	f, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', places, 64), 64)
	if err != nil {
		return v
	}
	return f
}
