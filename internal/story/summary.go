package story

import (
	"fmt"
	"sort"
	"strings"
)

// Count is a label with its number of stories.
type Count struct {
	Label string
	N     int
}

// CountBy tallies stories by key, most common first (ties by first appearance).
func CountBy(stories []Story, key func(Story) string) []Count {
	idx := map[string]int{}
	var out []Count
	for _, s := range stories {
		k := key(s)
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, Count{Label: k})
		}
		out[i].N++
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].N > out[j].N })
	return out
}

// Summary renders a console digest: the first top stories and totals by
// type and by indicator.
func Summary(stories []Story, top int) string {
	var b strings.Builder
	b.WriteString("[TOP STORIES]\n")
	if len(stories) == 0 {
		b.WriteString("(no stories)\n")
	}
	n := top
	if n <= 0 || n > len(stories) {
		n = len(stories)
	}
	for i := 0; i < n; i++ {
		s := stories[i]
		b.WriteString(fmt.Sprintf("\n%d. [%d] %s\n", i+1, s.Year, s.Headline))
		b.WriteString(fmt.Sprintf("   %s\n", s.Detail))
	}

	var trends, milestones int
	for _, s := range stories {
		switch s.Type {
		case KindTrend:
			trends++
		case KindMilestone:
			milestones++
		}
	}
	b.WriteString("\n[SUMMARY BY INDICATOR]\n")
	b.WriteString(fmt.Sprintf("Total stories: %d\n", len(stories)))
	b.WriteString(fmt.Sprintf("  Trends: %d\n", trends))
	b.WriteString(fmt.Sprintf("  Milestones: %d\n", milestones))
	counts := CountBy(stories, func(s Story) string { return s.Indicator })
	if len(counts) > 0 {
		b.WriteString("\nBy indicator:\n")
		for _, c := range counts {
			b.WriteString(fmt.Sprintf("  %s: %d\n", c.Label, c.N))
		}
	}
	return b.String()
}
