// Package pipeline runs the whole analysis: load each indicator's table,
// normalize it, detect trends and milestones, then rank the joined results.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/KaramelBytes/goodnews-cli/internal/dataset"
	"github.com/KaramelBytes/goodnews-cli/internal/detect"
	"github.com/KaramelBytes/goodnews-cli/internal/fetch"
	"github.com/KaramelBytes/goodnews-cli/internal/indicator"
	"github.com/KaramelBytes/goodnews-cli/internal/story"
)

// Loader supplies the raw table for an indicator. *fetch.Fetcher is the
// production implementation.
type Loader interface {
	Load(ctx context.Context, spec indicator.Spec, refresh bool) (*dataset.Table, fetch.Source, error)
}

// Runner holds everything a run needs. The zero Params is not usable; use
// detect.DefaultParams or config.Global.Params.
type Runner struct {
	Loader     Loader
	Params     detect.Params
	MaxTrends  int
	Workers    int
	Refresh    bool
	Aggregates []string
	Logger     *slog.Logger
}

// IndicatorReport describes what happened to one indicator.
type IndicatorReport struct {
	Name       string
	Source     fetch.Source
	Columns    []dataset.ColumnMatch
	Stats      dataset.Stats
	Countries  int
	Trends     int
	Milestones int
	// Err is set when the indicator was skipped.
	Err error
}

// Skipped reports whether the indicator contributed nothing because of an error.
func (r IndicatorReport) Skipped() bool { return r.Err != nil }

// Report is the outcome of a run.
type Report struct {
	Indicators []IndicatorReport
	Results    []detect.Result
	Stories    []story.Story
}

// SkippedCount is the number of indicators skipped.
func (r *Report) SkippedCount() int {
	n := 0
	for _, ir := range r.Indicators {
		if ir.Skipped() {
			n++
		}
	}
	return n
}

// Analyze runs normalization and detection for one already loaded table.
func Analyze(t *dataset.Table, spec indicator.Spec, p detect.Params, aggregates []string) (detect.Result, *dataset.Result, error) {
	norm, err := dataset.Normalize(t, dataset.Options{ValueColumn: spec.ValueColumn, Aggregates: aggregates})
	if err != nil {
		return detect.Result{}, nil, err
	}
	return detect.Detect(norm.Observations, spec, p), norm, nil
}

// Run processes specs concurrently and returns their stories in ranked
// order. Skipped indicators never fail the run; only a cancelled context does.
func (r *Runner) Run(ctx context.Context, specs []indicator.Spec) (*Report, error) {
	log := r.Logger
	if log == nil {
		log = slog.Default()
	}
	workers := r.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(specs) {
		workers = len(specs)
	}

	reports := make([]IndicatorReport, len(specs))
	results := make([]detect.Result, len(specs))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				reports[i], results[i] = r.one(ctx, log, specs[i])
			}
		}()
	}
	for i := range specs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rep := &Report{Indicators: reports, Results: results}
	rep.Stories = story.Rank(results, r.MaxTrends)
	log.Info("analysis complete",
		"indicators", len(specs),
		"skipped", rep.SkippedCount(),
		"stories", len(rep.Stories),
	)
	return rep, nil
}

func (r *Runner) one(ctx context.Context, log *slog.Logger, spec indicator.Spec) (IndicatorReport, detect.Result) {
	ir := IndicatorReport{Name: spec.Name}
	t, src, err := r.Loader.Load(ctx, spec, r.Refresh)
	ir.Source = src
	if err != nil {
		ir.Err = err
		if errors.Is(err, fetch.ErrUnavailable) {
			log.Warn("skipping indicator: dataset unavailable", "indicator", spec.Name, "err", err)
		} else {
			log.Error("skipping indicator: load failed", "indicator", spec.Name, "err", err)
		}
		return ir, detect.Result{}
	}
	log.Debug("dataset loaded", "indicator", spec.Name, "source", src, "rows", len(t.Rows))

	res, norm, err := Analyze(t, spec, r.Params, r.Aggregates)
	if err != nil {
		ir.Err = err
		if errors.Is(err, dataset.ErrSchemaMismatch) {
			log.Warn("skipping indicator: schema mismatch", "indicator", spec.Name, "err", err)
		} else {
			log.Error("skipping indicator", "indicator", spec.Name, "err", err)
		}
		return ir, detect.Result{}
	}
	for _, m := range norm.Columns {
		if m.Ambiguous {
			log.Warn("ambiguous value column", "indicator", spec.Name, "match", m.String())
		}
	}
	ir.Columns = norm.Columns
	ir.Stats = norm.Stats
	ir.Countries = norm.Countries()
	ir.Trends = len(res.Trends)
	ir.Milestones = len(res.Milestones)
	log.Info("indicator processed",
		"indicator", spec.Name,
		"countries", ir.Countries,
		"points", ir.Stats.Kept,
		"dropped", ir.Stats.BadRows,
		"trends", ir.Trends,
		"milestones", ir.Milestones,
	)
	return ir, res
}
