package dataset

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Observation is one canonical (country, year, value) point.
type Observation struct {
	Country string
	Year    int
	Value   float64
}

// DefaultAggregates lists supranational and income groupings that OWID and
// World Bank exports mix in with countries.
var DefaultAggregates = []string{
	"World", "Africa", "Asia", "Europe", "North America", "South America",
	"Oceania", "European Union", "High income", "Low income", "Middle income",
	"Upper middle income", "Lower middle income", "OECD", "G20",
	"Latin America and the Caribbean", "Sub-Saharan Africa",
	"East Asia and Pacific", "Middle East and North Africa",
	"South Asia", "Europe and Central Asia", "North America (WB)",
	"African Union", "Americas (WHO)", "Eastern Mediterranean (WHO)",
	"Europe (WHO)", "South-East Asia (WHO)", "Western Pacific (WHO)",
}

// Options controls normalization.
type Options struct {
	// ValueColumn is the preferred header for the metric.
	ValueColumn string
	// Aggregates are country names to drop. Nil means DefaultAggregates.
	Aggregates []string
}

// Stats counts what normalization discarded.
type Stats struct {
	Rows       int
	Kept       int
	BadRows    int // year or value failed to coerce
	Aggregates int
	Duplicates int
}

// Result is the normalized relation plus diagnostics.
type Result struct {
	Observations []Observation
	Columns      []ColumnMatch
	Stats        Stats
}

// Countries returns the number of distinct countries in the result.
func (r *Result) Countries() int {
	n := 0
	for i, o := range r.Observations {
		if i == 0 || o.Country != r.Observations[i-1].Country {
			n++
		}
	}
	return n
}

// Normalize maps a raw table to a sorted, de-duplicated observation list.
// It fails only when a required column cannot be found; malformed rows are
// dropped and counted.
func Normalize(t *Table, opt Options) (*Result, error) {
	country, err := resolveColumn(t, RoleCountry, "")
	if err != nil {
		return nil, err
	}
	year, err := resolveColumn(t, RoleYear, "")
	if err != nil {
		return nil, err
	}
	value, err := resolveColumn(t, RoleValue, opt.ValueColumn)
	if err != nil {
		return nil, err
	}

	aggs := opt.Aggregates
	if aggs == nil {
		aggs = DefaultAggregates
	}
	excluded := make(map[string]struct{}, len(aggs))
	for _, a := range aggs {
		excluded[a] = struct{}{}
	}

	res := &Result{Columns: []ColumnMatch{country, year, value}}
	type key struct {
		country string
		year    int
	}
	pos := map[key]int{}
	obs := make([]Observation, 0, len(t.Rows))
	for _, row := range t.Rows {
		res.Stats.Rows++
		c := strings.TrimSpace(cell(row, country.Index))
		y, okY := parseYear(cell(row, year.Index))
		v, okV := parseValue(cell(row, value.Index))
		if c == "" || !okY || !okV {
			res.Stats.BadRows++
			continue
		}
		if _, agg := excluded[c]; agg {
			res.Stats.Aggregates++
			continue
		}
		k := key{c, y}
		if i, dup := pos[k]; dup {
			// Last occurrence in input order wins.
			obs[i].Value = v
			res.Stats.Duplicates++
			continue
		}
		pos[k] = len(obs)
		obs = append(obs, Observation{Country: c, Year: y, Value: v})
	}
	sort.SliceStable(obs, func(i, j int) bool {
		if obs[i].Country != obs[j].Country {
			return obs[i].Country < obs[j].Country
		}
		return obs[i].Year < obs[j].Year
	})
	res.Observations = obs
	res.Stats.Kept = len(obs)
	return res, nil
}

// GroupByCountry splits sorted observations into per-country series. Each
// series aliases the input slice.
func GroupByCountry(obs []Observation) [][]Observation {
	var out [][]Observation
	start := 0
	for i := 1; i <= len(obs); i++ {
		if i == len(obs) || obs[i].Country != obs[start].Country {
			out = append(out, obs[start:i:i])
			start = i
		}
	}
	return out
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func parseValue(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parseYear accepts integral numbers only ("2010", "2010.0").
func parseYear(s string) (int, bool) {
	f, ok := parseValue(s)
	if !ok || f != math.Trunc(f) || math.Abs(f) > 1e6 {
		return 0, false
	}
	return int(f), true
}
