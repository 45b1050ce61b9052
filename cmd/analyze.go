package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	cfgpkg "github.com/KaramelBytes/goodnews-cli/internal/config"
	"github.com/KaramelBytes/goodnews-cli/internal/fetch"
	"github.com/KaramelBytes/goodnews-cli/internal/indicator"
	"github.com/KaramelBytes/goodnews-cli/internal/pipeline"
	"github.com/KaramelBytes/goodnews-cli/internal/store"
	"github.com/KaramelBytes/goodnews-cli/internal/store/sqlite"
	"github.com/KaramelBytes/goodnews-cli/internal/story"
	"github.com/KaramelBytes/goodnews-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	anRefresh bool
	anOutput  string
	anTop     int
	anJSON    bool
	anQuiet   bool
	anOnly    []string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Download (or reuse cached) datasets, detect good news, and write the story feed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		specs, err := c.Indicators()
		if err != nil {
			return err
		}
		if specs, err = selectIndicators(specs, anOnly); err != nil {
			return err
		}
		output := c.OutputFile
		if anOutput != "" {
			output = anOutput
		}
		_, err = runAnalysis(cmdContext(cmd), c, specs, analysisOptions{
			Refresh: anRefresh,
			Output:  output,
			Top:     anTop,
			JSON:    anJSON,
			Quiet:   anQuiet,
		}, cmd.OutOrStdout())
		return err
	},
}

type analysisOptions struct {
	Refresh bool
	Output  string
	Top     int
	JSON    bool
	Quiet   bool
}

// runAnalysis executes one full run, writes the feed, records history and
// prints the digest. It is shared by analyze and watch.
func runAnalysis(ctx context.Context, c *cfgpkg.Global, specs []indicator.Spec, opt analysisOptions, out io.Writer) (*pipeline.Report, error) {
	params := c.Params()
	runner := &pipeline.Runner{
		Loader:     newFetcher(c),
		Params:     params,
		MaxTrends:  c.MaxTrendsPerIndicator,
		Workers:    c.WorkerCount(),
		Refresh:    opt.Refresh,
		Aggregates: c.AggregateNames(),
		Logger:     logger,
	}
	rep, err := runner.Run(ctx, specs)
	if err != nil {
		return nil, err
	}

	if !opt.Quiet && !opt.JSON {
		for i, ir := range rep.Indicators {
			fmt.Fprintf(out, "[%d/%d] %s\n", i+1, len(rep.Indicators), ir.Name)
			if ir.Skipped() {
				fmt.Fprintf(os.Stderr, "⚠ Warning: skipped %s: %v\n", ir.Name, ir.Err)
				continue
			}
			fmt.Fprintf(out, "  Countries: %d, data points: %d (%s)\n", ir.Countries, ir.Stats.Kept, ir.Source)
			fmt.Fprintf(out, "  Found %d improving trends, %d milestones\n", ir.Trends, ir.Milestones)
		}
	}

	if opt.Output != "" {
		if err := utils.WriteJSON(opt.Output, rep.Stories); err != nil {
			return nil, fmt.Errorf("write stories: %w", err)
		}
	}

	run := store.NewRun()
	run.Indicators = len(specs)
	run.Skipped = rep.SkippedCount()
	run.CurrentYear = params.CurrentYear
	run.Tally(rep.Stories)
	if err := recordRun(ctx, c, run, rep); err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: history not saved: %v\n", err)
	}

	if opt.JSON {
		b, err := utils.PrettyJSON(rep.Stories)
		if err != nil {
			return nil, err
		}
		fmt.Fprintln(out, string(b))
		return rep, nil
	}
	if opt.Quiet {
		return rep, nil
	}
	top := opt.Top
	if top <= 0 {
		top = 10
	}
	fmt.Fprintln(out)
	fmt.Fprint(out, story.Summary(rep.Stories, top))
	if opt.Output != "" {
		fmt.Fprintf(out, "✓ Wrote %d stories to %s (run %s)\n", len(rep.Stories), opt.Output, run.ID)
	}
	return rep, nil
}

func recordRun(ctx context.Context, c *cfgpkg.Global, run store.Run, rep *pipeline.Report) error {
	st, err := openStore(c)
	if err != nil {
		return err
	}
	defer st.Close()
	return st.SaveRun(ctx, run, rep.Stories)
}

// openStore returns the sqlite history when db_path is set, else a no-op store.
func openStore(c *cfgpkg.Global) (store.Store, error) {
	if strings.TrimSpace(c.DBPath) == "" {
		return &store.NopStore{}, nil
	}
	return sqlite.New(c.DBPath)
}

func newFetcher(c *cfgpkg.Global) *fetch.Fetcher {
	return fetch.New(c.DataDir, c.HTTPTimeout(), c.RetryMaxAttempts, c.RetryBaseDelay(), c.RetryMaxDelay())
}

// selectIndicators keeps only the named indicators, in catalog order.
func selectIndicators(specs []indicator.Spec, names []string) ([]indicator.Spec, error) {
	if len(names) == 0 {
		return specs, nil
	}
	want := map[string]bool{}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if _, ok := indicator.Find(specs, n); !ok {
			return nil, fmt.Errorf("unknown indicator: %s", n)
		}
		want[n] = true
	}
	var out []indicator.Spec
	for _, s := range specs {
		if want[s.Name] {
			out = append(out, s)
		}
	}
	return out, nil
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().BoolVar(&anRefresh, "refresh", false, "re-download datasets even if cached")
	analyzeCmd.Flags().StringVarP(&anOutput, "output", "o", "", "story feed path (default from config: good_news.json)")
	analyzeCmd.Flags().IntVar(&anTop, "top", 10, "number of top stories to print")
	analyzeCmd.Flags().BoolVar(&anJSON, "json", false, "print the story feed as JSON instead of the summary")
	analyzeCmd.Flags().BoolVarP(&anQuiet, "quiet", "q", false, "suppress progress and summary output")
	analyzeCmd.Flags().StringSliceVar(&anOnly, "only", nil, "analyze only these indicators (comma-separated names)")
}
