package indicator

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Direction says which way an indicator has to move to count as progress.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Improving reports whether a slope of the given sign is progress for d.
func (d Direction) Improving(slope float64) bool {
	if d == Down {
		return slope < 0
	}
	return slope > 0
}

// Spec describes one indicator: where its data lives, which column holds the
// metric, which direction is good and which thresholds are newsworthy.
// A Spec is treated as read-only once a run starts.
type Spec struct {
	Name          string
	DisplayName   string
	URL           string
	ValueColumn   string
	GoodDirection Direction
	// Milestones are evaluated in this order.
	Milestones         []float64
	MilestoneTemplates map[float64]string
	Unit               string
}

// Headline renders the milestone headline for country. Thresholds without a
// configured template get a generic sentence.
func (s Spec) Headline(threshold float64, country string) string {
	tmpl, ok := s.MilestoneTemplates[threshold]
	if !ok {
		tmpl = fmt.Sprintf("{country} crossed %s %s milestone", FormatThreshold(threshold), s.Unit)
	}
	return strings.ReplaceAll(tmpl, "{country}", country)
}

// FormatThreshold prints a threshold in its shortest form (10, 2.5).
func FormatThreshold(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Validate checks a single spec for obvious configuration mistakes.
func (s Spec) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("indicator name cannot be empty")
	}
	if s.GoodDirection != Up && s.GoodDirection != Down {
		return fmt.Errorf("indicator %s: invalid good_direction %q (use up or down)", s.Name, s.GoodDirection)
	}
	if strings.TrimSpace(s.ValueColumn) == "" {
		return fmt.Errorf("indicator %s: value_column is required", s.Name)
	}
	seen := make(map[float64]struct{}, len(s.Milestones))
	for _, m := range s.Milestones {
		if _, dup := seen[m]; dup {
			return fmt.Errorf("indicator %s: duplicate milestone %s", s.Name, FormatThreshold(m))
		}
		seen[m] = struct{}{}
	}
	return nil
}

// Validate checks every spec and rejects duplicate names.
func Validate(specs []Spec) error {
	names := make(map[string]struct{}, len(specs))
	for _, s := range specs {
		if err := s.Validate(); err != nil {
			return err
		}
		if _, dup := names[s.Name]; dup {
			return fmt.Errorf("duplicate indicator name: %s", s.Name)
		}
		names[s.Name] = struct{}{}
	}
	return nil
}

// Find returns the spec with the given name.
func Find(specs []Spec, name string) (Spec, bool) {
	for _, s := range specs {
		if s.Name == name {
			return s, true
		}
	}
	return Spec{}, false
}

// fileSpec is the on-disk shape of a catalog entry.
type fileSpec struct {
	Name          string          `yaml:"name"`
	DisplayName   string          `yaml:"display_name"`
	URL           string          `yaml:"url"`
	ValueColumn   string          `yaml:"value_column"`
	GoodDirection string          `yaml:"good_direction"`
	Unit          string          `yaml:"unit"`
	Milestones    []fileMilestone `yaml:"milestones"`
}

type fileMilestone struct {
	Value    float64 `yaml:"value"`
	Headline string  `yaml:"headline,omitempty"`
}

type catalogFile struct {
	Indicators []fileSpec `yaml:"indicators"`
}

// LoadFile reads a YAML indicator catalog.
func LoadFile(path string) ([]Spec, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read indicators: %w", err)
	}
	return Parse(b)
}

// Parse decodes a YAML indicator catalog and validates it.
func Parse(b []byte) ([]Spec, error) {
	var cf catalogFile
	if err := yaml.Unmarshal(b, &cf); err != nil {
		return nil, fmt.Errorf("parse indicators: %w", err)
	}
	if len(cf.Indicators) == 0 {
		return nil, errors.New("indicator catalog is empty")
	}
	specs := make([]Spec, 0, len(cf.Indicators))
	for _, fs := range cf.Indicators {
		s := Spec{
			Name:               strings.TrimSpace(fs.Name),
			DisplayName:        fs.DisplayName,
			URL:                fs.URL,
			ValueColumn:        fs.ValueColumn,
			GoodDirection:      Direction(strings.ToLower(strings.TrimSpace(fs.GoodDirection))),
			Unit:               fs.Unit,
			MilestoneTemplates: map[float64]string{},
		}
		if s.DisplayName == "" {
			s.DisplayName = strings.ReplaceAll(s.Name, "_", " ")
		}
		for _, m := range fs.Milestones {
			s.Milestones = append(s.Milestones, m.Value)
			if m.Headline != "" {
				s.MilestoneTemplates[m.Value] = m.Headline
			}
		}
		specs = append(specs, s)
	}
	if err := Validate(specs); err != nil {
		return nil, err
	}
	return specs, nil
}

// Marshal renders specs in the catalog file format.
func Marshal(specs []Spec) ([]byte, error) {
	cf := catalogFile{Indicators: make([]fileSpec, 0, len(specs))}
	for _, s := range specs {
		fs := fileSpec{
			Name:          s.Name,
			DisplayName:   s.DisplayName,
			URL:           s.URL,
			ValueColumn:   s.ValueColumn,
			GoodDirection: string(s.GoodDirection),
			Unit:          s.Unit,
		}
		for _, m := range s.Milestones {
			fs.Milestones = append(fs.Milestones, fileMilestone{Value: m, Headline: s.MilestoneTemplates[m]})
		}
		cf.Indicators = append(cf.Indicators, fs)
	}
	b, err := yaml.Marshal(cf)
	if err != nil {
		return nil, fmt.Errorf("marshal indicators: %w", err)
	}
	return b, nil
}
