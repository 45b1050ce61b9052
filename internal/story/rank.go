package story

import (
	"math"
	"sort"

	"github.com/KaramelBytes/goodnews-cli/internal/detect"
)

// DefaultMaxTrends caps trend stories per indicator.
const DefaultMaxTrends = 20

// TopTrends orders trends by |percent change| descending and keeps at most
// max of them. Ties keep input order. max <= 0 means no cap.
func TopTrends(trends []detect.TrendResult, max int) []detect.TrendResult {
	out := make([]detect.TrendResult, len(trends))
	copy(out, trends)
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].PercentChange) > math.Abs(out[j].PercentChange)
	})
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}

// ForIndicator converts one indicator's detections into stories: the capped
// trend list first, then every milestone.
func ForIndicator(res detect.Result, maxTrends int) []Story {
	top := TopTrends(res.Trends, maxTrends)
	out := make([]Story, 0, len(top)+len(res.Milestones))
	for _, t := range top {
		out = append(out, FromTrend(t))
	}
	for _, m := range res.Milestones {
		out = append(out, FromMilestone(m))
	}
	return out
}

// SortByYear orders stories most recent first. The sort is stable so equal
// years keep their relative order and runs are reproducible.
func SortByYear(stories []Story) {
	sort.SliceStable(stories, func(i, j int) bool {
		return stories[i].Year > stories[j].Year
	})
}

// Rank builds the final feed from per-indicator results given in
// configuration order.
func Rank(results []detect.Result, maxTrends int) []Story {
	all := []Story{}
	for _, r := range results {
		all = append(all, ForIndicator(r, maxTrends)...)
	}
	SortByYear(all)
	return all
}
