package story

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/KaramelBytes/goodnews-cli/internal/detect"
)

func sampleTrend() detect.TrendResult {
	return detect.TrendResult{
		Country:       "Nepal",
		Indicator:     "child_mortality",
		DisplayName:   "child mortality rate",
		Direction:     detect.DirectionImproving,
		Slope:         -8.4,
		PValue:        0.00012,
		RSquared:      0.98765,
		StartYear:     2005,
		EndYear:       2014,
		StartValue:    120,
		EndValue:      40,
		PercentChange: (40.0 - 120.0) / 120.0 * 100,
		Unit:          "deaths per 100 live births",
	}
}

func TestFromTrendFormats(t *testing.T) {
	s := FromTrend(sampleTrend())
	if s.Headline != "Nepal's child mortality rate fell 67% over 9 years" {
		t.Fatalf("headline = %q", s.Headline)
	}
	if s.Detail != "From 120.0 in 2005 to 40.0 deaths per 100 live births in 2014" {
		t.Fatalf("detail = %q", s.Detail)
	}
	if s.Year != 2014 || s.Type != KindTrend || s.MilestoneFields != nil {
		t.Fatalf("unexpected story: %+v", s)
	}
	if s.PercentChange != -66.7 || s.StatisticalConfidence != 1.0 || s.TrendStrength != 0.988 {
		t.Fatalf("rounding: %+v", *s.TrendFields)
	}

	rising := sampleTrend()
	rising.PercentChange = 12.4
	if h := FromTrend(rising).Headline; !strings.Contains(h, "rose 12% over 9 years") {
		t.Fatalf("rising headline = %q", h)
	}
}

func TestFromMilestoneFormats(t *testing.T) {
	s := FromMilestone(detect.MilestoneResult{
		Country:        "Kenya",
		Indicator:      "child_mortality",
		DisplayName:    "child mortality rate",
		MilestoneValue: 2.5,
		CrossedYear:    2020,
		PreviousValue:  2.5449,
		NewValue:       2.4751,
		Headline:       "Kenya's child mortality fell below 25 per 1,000 for the first time",
		Unit:           "deaths per 100 live births",
	})
	if s.Detail != "Crossed from 2.5 to 2.5 deaths per 100 live births" {
		t.Fatalf("detail = %q", s.Detail)
	}
	if s.PreviousValue != 2.54 || s.NewValue != 2.48 || s.MilestoneValue != 2.5 {
		t.Fatalf("rounding: %+v", *s.MilestoneFields)
	}
	if s.Year != 2020 || s.TrendFields != nil {
		t.Fatalf("unexpected story: %+v", s)
	}
}

func TestStoryJSONShape(t *testing.T) {
	b, err := json.Marshal([]Story{FromTrend(sampleTrend()), FromMilestone(detect.MilestoneResult{Country: "Chad", CrossedYear: 2021})})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw []map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	trendKeys := []string{"type", "country", "indicator", "indicator_display", "headline", "detail", "year", "unit",
		"start_year", "start_value", "end_value", "percent_change", "statistical_confidence", "trend_strength"}
	for _, k := range trendKeys {
		if _, ok := raw[0][k]; !ok {
			t.Fatalf("trend story missing %q: %s", k, b)
		}
	}
	if _, ok := raw[0]["milestone_value"]; ok {
		t.Fatalf("trend story leaked milestone fields: %s", b)
	}
	for _, k := range []string{"milestone_value", "previous_value", "new_value", "unit"} {
		if _, ok := raw[1][k]; !ok {
			t.Fatalf("milestone story missing %q: %s", k, b)
		}
	}
	if _, ok := raw[1]["percent_change"]; ok {
		t.Fatalf("milestone story leaked trend fields: %s", b)
	}

	var back []Story
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("decode stories: %v", err)
	}
	if back[0].TrendFields == nil || back[1].MilestoneFields == nil {
		t.Fatalf("detail pointers not restored: %+v", back)
	}
}

func TestTopTrendsCapAndStableTies(t *testing.T) {
	var trends []detect.TrendResult
	for i, pct := range []float64{-10, 50, -50, 5, 50} {
		tr := sampleTrend()
		tr.Country = string(rune('A' + i))
		tr.PercentChange = pct
		trends = append(trends, tr)
	}
	got := TopTrends(trends, 3)
	want := []string{"B", "C", "E"}
	if len(got) != 3 {
		t.Fatalf("cap not applied: %d", len(got))
	}
	for i, c := range want {
		if got[i].Country != c {
			t.Fatalf("position %d = %s, want %s", i, got[i].Country, c)
		}
	}
	if trends[0].Country != "A" {
		t.Fatalf("input mutated")
	}
	if len(TopTrends(trends, 0)) != 5 {
		t.Fatalf("max <= 0 should not cap")
	}
}

func TestRankOrdersByYearStable(t *testing.T) {
	mk := func(country string, year int) detect.TrendResult {
		tr := sampleTrend()
		tr.Country = country
		tr.EndYear = year
		return tr
	}
	res := []detect.Result{
		{
			Trends:     []detect.TrendResult{mk("A", 2019), mk("B", 2021)},
			Milestones: []detect.MilestoneResult{{Country: "C", CrossedYear: 2021}},
		},
		{
			Milestones: []detect.MilestoneResult{{Country: "D", CrossedYear: 2019}, {Country: "E", CrossedYear: 2022}},
		},
	}
	got := Rank(res, DefaultMaxTrends)
	order := make([]string, len(got))
	for i, s := range got {
		order[i] = s.Country
	}
	if strings.Join(order, "") != "EBCAD" {
		t.Fatalf("order = %v", order)
	}
}

func TestRankCapsTrendsNotMilestones(t *testing.T) {
	var r detect.Result
	for i := 0; i < 30; i++ {
		tr := sampleTrend()
		tr.PercentChange = float64(-i)
		r.Trends = append(r.Trends, tr)
		r.Milestones = append(r.Milestones, detect.MilestoneResult{Country: "X", CrossedYear: 2020})
	}
	got := Rank([]detect.Result{r}, DefaultMaxTrends)
	counts := CountBy(got, func(s Story) string { return string(s.Type) })
	if counts[0].Label != "milestone" || counts[0].N != 30 || counts[1].N != 20 {
		t.Fatalf("counts = %+v", counts)
	}
}

func TestSummary(t *testing.T) {
	stories := Rank([]detect.Result{{Trends: []detect.TrendResult{sampleTrend()}}}, DefaultMaxTrends)
	out := Summary(stories, 10)
	for _, want := range []string{
		"[TOP STORIES]",
		"1. [2014] Nepal's child mortality rate fell 67% over 9 years",
		"Total stories: 1",
		"  Trends: 1",
		"  child_mortality: 1",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(Summary(nil, 10), "(no stories)") {
		t.Fatalf("empty summary should say so")
	}
}

func TestRoundHalfEvenOnBinaryValue(t *testing.T) {
	cases := []struct {
		in     float64
		places int
		want   float64
	}{
		{12.125, 2, 12.12},
		{1.115, 2, 1.11},
		{0.125, 2, 0.12},
		{-12.25, 1, -12.2},
		{0.0625, 3, 0.062},
		{2.675, 2, 2.67},
		{-66.66666, 1, -66.7},
		{0.135, 2, 0.14},
	}
	for _, c := range cases {
		if got := round(c.in, c.places); got != c.want {
			t.Fatalf("round(%v, %d) = %v, want %v", c.in, c.places, got, c.want)
		}
	}
}

func TestStoryValuesUseDecimalRounding(t *testing.T) {
	m := FromMilestone(detect.MilestoneResult{
		Country: "Peru", Indicator: "x", MilestoneValue: 12.125,
		CrossedYear: 2020, PreviousValue: 12.125, NewValue: 1.115,
	})
	if m.PreviousValue != 12.12 || m.NewValue != 1.11 || m.MilestoneValue != 12.12 {
		t.Fatalf("milestone values = %+v", *m.MilestoneFields)
	}

	tr := sampleTrend()
	tr.StartValue = 0.125
	tr.PercentChange = -12.25
	tr.RSquared = 0.0625
	s := FromTrend(tr)
	if s.StartValue != 0.12 || s.PercentChange != -12.2 || s.TrendStrength != 0.062 {
		t.Fatalf("trend values = %+v", *s.TrendFields)
	}
}
