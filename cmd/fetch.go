package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var fetchRefresh bool

var fetchCmd = &cobra.Command{
	Use:   "fetch [indicator...]",
	Short: "Download and cache indicator datasets without analyzing them",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		specs, err := c.Indicators()
		if err != nil {
			return err
		}
		if specs, err = selectIndicators(specs, args); err != nil {
			return err
		}
		f := newFetcher(c)
		failed := 0
		total := len(specs)
		for i, spec := range specs {
			fmt.Printf("[%d/%d] Fetching %s...\n", i+1, total, spec.Name)
			t, src, err := f.Load(cmdContext(cmd), spec, fetchRefresh)
			if err != nil {
				failed++
				fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
				continue
			}
			fmt.Printf("✓ %s: %d rows (%s) -> %s\n", spec.Name, len(t.Rows), src, f.CachePath(spec))
		}
		if failed == total && total > 0 {
			return fmt.Errorf("no datasets could be fetched")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().BoolVar(&fetchRefresh, "refresh", false, "re-download even if a cached copy exists")
}
