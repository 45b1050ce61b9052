package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// Role names the semantic column a normalizer needs.
type Role string

const (
	RoleCountry Role = "country"
	RoleYear    Role = "year"
	RoleValue   Role = "value"
)

// Strategy names how a column was located.
type Strategy string

const (
	StrategyExact     Strategy = "exact"
	StrategySubstring Strategy = "substring"
)

// ColumnMatch records which header satisfied a role and how.
type ColumnMatch struct {
	Role     Role
	Column   string
	Index    int
	Strategy Strategy
	// Ambiguous is set when a substring strategy had more than one candidate;
	// the first in column order was used.
	Ambiguous bool
	// Candidates lists every header the winning strategy matched.
	Candidates []string
}

func (m ColumnMatch) String() string {
	s := fmt.Sprintf("%s=%q (%s)", m.Role, m.Column, m.Strategy)
	if m.Ambiguous {
		s += fmt.Sprintf(" ambiguous among %d columns", len(m.Candidates))
	}
	return s
}

// ErrSchemaMismatch is matched by every SchemaMismatchError.
var ErrSchemaMismatch = errors.New("schema mismatch")

// SchemaMismatchError reports that no header satisfied a role.
type SchemaMismatchError struct {
	Table   string
	Role    Role
	Wanted  []string
	Columns []string
}

func (e *SchemaMismatchError) Error() string {
	name := e.Table
	if name == "" {
		name = "dataset"
	}
	return fmt.Sprintf("%s: no %s column (tried %s; available: %s)",
		name, e.Role, strings.Join(e.Wanted, ", "), strings.Join(e.Columns, ", "))
}

func (e *SchemaMismatchError) Is(target error) bool { return target == ErrSchemaMismatch }

// matcher is one step of a column resolution strategy list.
type matcher struct {
	strategy Strategy
	names    []string
}

// match returns every header index this step accepts, in column order.
func (m matcher) match(t *Table) []int {
	var out []int
	switch m.strategy {
	case StrategyExact:
		// Candidate order wins over column order for exact names.
		for _, n := range m.names {
			if i := t.Column(n); i >= 0 {
				return []int{i}
			}
		}
	case StrategySubstring:
		for i, h := range t.Header {
			lh := strings.ToLower(h)
			for _, n := range m.names {
				if n != "" && strings.Contains(lh, strings.ToLower(n)) {
					out = append(out, i)
					break
				}
			}
		}
	}
	return out
}

var (
	countryColumns = []string{"Entity", "Country", "country", "entity"}
	yearColumns    = []string{"Year", "year", "date", "Date"}
)

func strategiesFor(role Role, valueColumn string) []matcher {
	switch role {
	case RoleCountry:
		return []matcher{{strategy: StrategyExact, names: countryColumns}}
	case RoleYear:
		return []matcher{{strategy: StrategyExact, names: yearColumns}}
	default:
		return []matcher{
			{strategy: StrategyExact, names: []string{valueColumn}},
			{strategy: StrategySubstring, names: []string{valueColumn}},
		}
	}
}

// resolveColumn evaluates the ordered strategies for role against header.
func resolveColumn(t *Table, role Role, valueColumn string) (ColumnMatch, error) {
	var wanted []string
	for _, m := range strategiesFor(role, valueColumn) {
		wanted = append(wanted, m.names...)
		idx := m.match(t)
		if len(idx) == 0 {
			continue
		}
		cm := ColumnMatch{Role: role, Column: t.Header[idx[0]], Index: idx[0], Strategy: m.strategy}
		for _, i := range idx {
			cm.Candidates = append(cm.Candidates, t.Header[i])
		}
		cm.Ambiguous = len(idx) > 1
		return cm, nil
	}
	return ColumnMatch{}, &SchemaMismatchError{Table: t.Name, Role: role, Wanted: dedupe(wanted), Columns: t.Header}
}

func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
