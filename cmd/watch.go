package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	cfgpkg "github.com/KaramelBytes/goodnews-cli/internal/config"
	"github.com/KaramelBytes/goodnews-cli/internal/indicator"
	"github.com/spf13/cobra"
)

var (
	watchFile     string
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run analysis whenever the indicators file changes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		path := c.IndicatorsFile
		if watchFile != "" {
			path = watchFile
		}
		if path == "" {
			return fmt.Errorf("nothing to watch: set indicators_file or pass --file")
		}

		ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
		defer stop()

		opt := analysisOptions{Output: c.OutputFile, Top: 10}
		run := func() error {
			specs, err := indicator.LoadFile(path)
			if err != nil {
				return err
			}
			_, err = runAnalysis(ctx, c, specs, opt, cmd.OutOrStdout())
			return err
		}
		if err := run(); err != nil {
			fmt.Fprintf(os.Stderr, "⚠ Warning: initial run failed: %v\n", err)
		}
		fmt.Printf("✓ Watching %s (Ctrl+C to stop)\n", path)
		return cfgpkg.Watch(ctx, logger, path, watchDebounce, run)
	},
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchFile, "file", "", "indicators file to watch (default from config)")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "quiet period before re-running")
}
