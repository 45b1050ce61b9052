package indicator

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultsValidate(t *testing.T) {
	specs := Defaults()
	if len(specs) != 5 {
		t.Fatalf("expected 5 built-in indicators, got %d", len(specs))
	}
	if err := Validate(specs); err != nil {
		t.Fatalf("built-in catalog invalid: %v", err)
	}
	// Defaults must hand out independent copies.
	specs[0].MilestoneTemplates[10] = "mutated"
	if Defaults()[0].MilestoneTemplates[10] == "mutated" {
		t.Fatalf("Defaults shares state between calls")
	}
}

func TestHeadlineTemplateAndFallback(t *testing.T) {
	s, ok := Find(Defaults(), "child_mortality")
	if !ok {
		t.Fatalf("child_mortality missing")
	}
	got := s.Headline(5, "Peru")
	if got != "Peru's child mortality fell below 50 per 1,000 for the first time" {
		t.Fatalf("unexpected headline: %q", got)
	}
	got = s.Headline(7.5, "Peru")
	if got != "Peru crossed 7.5 deaths per 100 live births milestone" {
		t.Fatalf("unexpected fallback headline: %q", got)
	}
}

func TestDirectionImproving(t *testing.T) {
	cases := []struct {
		dir   Direction
		slope float64
		want  bool
	}{
		{Down, -1, true},
		{Down, 1, false},
		{Down, 0, false},
		{Up, 1, true},
		{Up, -1, false},
		{Up, 0, false},
	}
	for _, tc := range cases {
		if got := tc.dir.Improving(tc.slope); got != tc.want {
			t.Fatalf("%s.Improving(%v) = %v, want %v", tc.dir, tc.slope, got, tc.want)
		}
	}
}

func TestLoadFileRoundTripsDefaults(t *testing.T) {
	b, err := Marshal(Defaults())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	p := filepath.Join(t.TempDir(), "indicators.yaml")
	if err := os.WriteFile(p, b, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	specs, err := LoadFile(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cm, _ := Find(specs, "child_mortality")
	if len(cm.Milestones) != 4 || cm.Milestones[2] != 2.5 {
		t.Fatalf("milestones lost order: %v", cm.Milestones)
	}
	if !strings.Contains(cm.MilestoneTemplates[2.5], "below 25 per 1,000") {
		t.Fatalf("template for 2.5 lost: %q", cm.MilestoneTemplates[2.5])
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"empty":     "indicators: []\n",
		"direction": "indicators:\n  - name: a\n    value_column: v\n    good_direction: sideways\n",
		"duplicate": "indicators:\n  - name: a\n    value_column: v\n    good_direction: up\n  - name: a\n    value_column: v\n    good_direction: up\n",
		"threshold": "indicators:\n  - name: a\n    value_column: v\n    good_direction: up\n    milestones:\n      - value: 5\n      - value: 5\n",
		"column":    "indicators:\n  - name: a\n    good_direction: up\n",
	}
	for name, body := range cases {
		if _, err := Parse([]byte(body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestParseDefaultsDisplayName(t *testing.T) {
	specs, err := Parse([]byte("indicators:\n  - name: clean_water\n    value_column: Share\n    good_direction: UP\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if specs[0].DisplayName != "clean water" {
		t.Fatalf("display name = %q", specs[0].DisplayName)
	}
	if specs[0].GoodDirection != Up {
		t.Fatalf("direction = %q", specs[0].GoodDirection)
	}
}
