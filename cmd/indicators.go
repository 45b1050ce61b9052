package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/KaramelBytes/goodnews-cli/internal/indicator"
	"github.com/spf13/cobra"
)

var (
	indYAML   bool
	indVerify string
)

var indicatorsCmd = &cobra.Command{
	Use:   "indicators",
	Short: "List the indicators that analyze will process",
	RunE: func(cmd *cobra.Command, args []string) error {
		if indVerify != "" {
			specs, err := indicator.LoadFile(indVerify)
			if err != nil {
				return err
			}
			fmt.Printf("✓ %s: %d indicators OK\n", indVerify, len(specs))
			return nil
		}
		c, err := requireConfig()
		if err != nil {
			return err
		}
		specs, err := c.Indicators()
		if err != nil {
			return err
		}
		if indYAML {
			b, err := indicator.Marshal(specs)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(b)
			return err
		}
		for _, s := range specs {
			fmt.Printf("- %s: %s (%s is better, unit %s)\n", s.Name, s.DisplayName, s.GoodDirection, s.Unit)
			fmt.Printf("    column: %s\n", s.ValueColumn)
			if len(s.Milestones) > 0 {
				th := make([]string, len(s.Milestones))
				for i, m := range s.Milestones {
					th[i] = indicator.FormatThreshold(m)
				}
				fmt.Printf("    milestones: %s\n", strings.Join(th, ", "))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indicatorsCmd)
	indicatorsCmd.Flags().BoolVar(&indYAML, "yaml", false, "print the catalog in indicators_file format")
	indicatorsCmd.Flags().StringVar(&indVerify, "verify", "", "validate an indicators file and exit")
}
