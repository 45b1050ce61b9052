package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/KaramelBytes/goodnews-cli/internal/dataset"
	"github.com/KaramelBytes/goodnews-cli/internal/detect"
	"github.com/KaramelBytes/goodnews-cli/internal/fetch"
	"github.com/KaramelBytes/goodnews-cli/internal/indicator"
	"github.com/KaramelBytes/goodnews-cli/internal/story"
)

type fakeLoader struct {
	mu     sync.Mutex
	bodies map[string]string
	calls  []string
}

func (f *fakeLoader) Load(ctx context.Context, spec indicator.Spec, refresh bool) (*dataset.Table, fetch.Source, error) {
	f.mu.Lock()
	f.calls = append(f.calls, spec.Name)
	f.mu.Unlock()
	body, ok := f.bodies[spec.Name]
	if !ok {
		return nil, fetch.SourceDownload, &fetch.UnavailableError{Indicator: spec.Name, Err: errors.New("404")}
	}
	t, err := dataset.ReadCSV(strings.NewReader(body), ',')
	if err != nil {
		return nil, fetch.SourceCache, err
	}
	return t, fetch.SourceCache, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func csvSeries(col, country string, start int, values ...float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Entity,Year,%s\n", col)
	for i, v := range values {
		fmt.Fprintf(&b, "%s,%d,%g\n", country, start+i, v)
	}
	return b.String()
}

func mortalitySpec() indicator.Spec {
	return indicator.Spec{
		Name: "child_mortality", DisplayName: "child mortality", ValueColumn: "Mortality",
		GoodDirection: indicator.Down, Milestones: []float64{50}, Unit: "per 1,000",
	}
}

func literacySpec() indicator.Spec {
	return indicator.Spec{
		Name: "literacy", DisplayName: "literacy", ValueColumn: "Literacy",
		GoodDirection: indicator.Up, Milestones: []float64{90}, Unit: "%",
	}
}

func testRunner(l Loader, workers int) *Runner {
	p := detect.DefaultParams()
	p.CurrentYear = 2020
	return &Runner{Loader: l, Params: p, MaxTrends: story.DefaultMaxTrends, Workers: workers, Logger: quietLogger()}
}

func TestRunSchemaMismatchSkipsOnlyThatIndicator(t *testing.T) {
	l := &fakeLoader{bodies: map[string]string{
		"child_mortality": csvSeries("Mortality", "Nepal", 2010, 120, 110, 100, 90, 80, 70, 60, 50, 45, 40),
		"literacy":        "Entity,Period,Literacy\nNepal,2019,80\nNepal,2020,95\n",
	}}
	rep, err := testRunner(l, 2).Run(context.Background(), []indicator.Spec{mortalitySpec(), literacySpec()})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if rep.SkippedCount() != 1 || rep.Indicators[0].Skipped() || !rep.Indicators[1].Skipped() {
		t.Fatalf("unexpected skips: %+v", rep.Indicators)
	}
	if !errors.Is(rep.Indicators[1].Err, dataset.ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", rep.Indicators[1].Err)
	}
	mort := rep.Indicators[0]
	if mort.Trends != 1 || mort.Milestones != 1 || mort.Countries != 1 || mort.Stats.Kept != 10 {
		t.Fatalf("mortality report: %+v", mort)
	}
	if len(rep.Stories) != 2 {
		t.Fatalf("expected 2 stories, got %d", len(rep.Stories))
	}
	for _, s := range rep.Stories {
		if s.Indicator != "child_mortality" {
			t.Fatalf("story from skipped indicator: %+v", s)
		}
	}
	// Trend ends 2019, milestone crossed 2018: most recent first.
	if rep.Stories[0].Type != story.KindTrend || rep.Stories[0].Year != 2019 || rep.Stories[1].Year != 2018 {
		t.Fatalf("unexpected order: %+v", rep.Stories)
	}
}

func TestRunUnavailableSkips(t *testing.T) {
	l := &fakeLoader{bodies: map[string]string{
		"literacy": csvSeries("Literacy", "Peru", 2015, 85, 88, 91),
	}}
	rep, err := testRunner(l, 4).Run(context.Background(), []indicator.Spec{mortalitySpec(), literacySpec()})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !errors.Is(rep.Indicators[0].Err, fetch.ErrUnavailable) {
		t.Fatalf("expected unavailable, got %v", rep.Indicators[0].Err)
	}
	if len(rep.Stories) != 1 || rep.Stories[0].Type != story.KindMilestone || rep.Stories[0].Year != 2017 {
		t.Fatalf("unexpected stories: %+v", rep.Stories)
	}
	if len(l.calls) != 2 {
		t.Fatalf("expected every indicator to be loaded once, got %v", l.calls)
	}
}

func TestRunIsDeterministicAcrossWorkerCounts(t *testing.T) {
	bodies := map[string]string{}
	var specs []indicator.Spec
	for i := 0; i < 6; i++ {
		s := literacySpec()
		s.Name = fmt.Sprintf("lit_%d", i)
		specs = append(specs, s)
		bodies[s.Name] = csvSeries("Literacy", "Chad", 2010+i%3, 60, 65, 70, 75, 80, 85, 88, 91, 93, 95)
	}
	l := &fakeLoader{bodies: bodies}
	one, err := testRunner(l, 1).Run(context.Background(), specs)
	if err != nil {
		t.Fatalf("run 1: %v", err)
	}
	many, err := testRunner(l, 8).Run(context.Background(), specs)
	if err != nil {
		t.Fatalf("run 8: %v", err)
	}
	if !reflect.DeepEqual(one.Stories, many.Stories) {
		t.Fatalf("worker count changed output")
	}
	again, _ := testRunner(l, 3).Run(context.Background(), specs)
	if !reflect.DeepEqual(one.Stories, again.Stories) {
		t.Fatalf("repeat run changed output")
	}
	if len(one.Stories) != 12 {
		t.Fatalf("expected a trend and a milestone per indicator, got %d", len(one.Stories))
	}
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := &fakeLoader{bodies: map[string]string{}}
	if _, err := testRunner(l, 2).Run(ctx, []indicator.Spec{literacySpec()}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRunNoSpecs(t *testing.T) {
	rep, err := testRunner(&fakeLoader{}, 4).Run(context.Background(), nil)
	if err != nil || len(rep.Stories) != 0 || len(rep.Indicators) != 0 {
		t.Fatalf("empty run: %+v %v", rep, err)
	}
}
