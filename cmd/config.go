package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/goodnews-cli/internal/config"
	"github.com/KaramelBytes/goodnews-cli/internal/dataset"
	"github.com/KaramelBytes/goodnews-cli/internal/indicator"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set GoodNews configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("data_dir: %s\n", cfg.DataDir)
		fmt.Printf("output_file: %s\n", cfg.OutputFile)
		if cfg.IndicatorsFile != "" {
			fmt.Printf("indicators_file: %s\n", cfg.IndicatorsFile)
		} else {
			fmt.Printf("indicators_file: (built-in, %d indicators)\n", len(indicator.Defaults()))
		}
		if cfg.DBPath != "" {
			fmt.Printf("db_path: %s\n", cfg.DBPath)
		} else {
			fmt.Println("db_path: (history disabled)")
		}
		if len(cfg.Aggregates) > 0 {
			fmt.Printf("aggregates: %s\n", strings.Join(cfg.Aggregates, ", "))
		} else {
			fmt.Printf("aggregates: (built-in, %d names)\n", len(dataset.DefaultAggregates))
		}
		fmt.Printf("min_years_for_trend: %d\n", cfg.MinYearsForTrend)
		fmt.Printf("p_value_threshold: %.3f\n", cfg.PValueThreshold)
		fmt.Printf("min_r_squared: %.3f\n", cfg.MinRSquared)
		fmt.Printf("milestone_recency_years: %d\n", cfg.MilestoneRecencyYears)
		fmt.Printf("max_trends_per_indicator: %d\n", cfg.MaxTrendsPerIndicator)
		if cfg.CurrentYear > 0 {
			fmt.Printf("current_year: %d\n", cfg.CurrentYear)
		} else {
			fmt.Println("current_year: (wall clock)")
		}
		fmt.Printf("workers: %d\n", cfg.WorkerCount())
		fmt.Printf("http_timeout_sec: %d\n", cfg.HTTPTimeoutSec)
		fmt.Printf("retry_max_attempts: %d\n", cfg.RetryMaxAttempts)
		fmt.Printf("retry_base_delay_ms: %d\n", cfg.RetryBaseDelayMs)
		fmt.Printf("retry_max_delay_ms: %d\n", cfg.RetryMaxDelayMs)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		if err := setKey(c, args[0], args[1]); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Println("Saved config")
		return nil
	},
}

func setKey(c *cfgpkg.Global, key, val string) error {
	setInt := func(dst *int, min int) error {
		i, err := strconv.Atoi(val)
		if err != nil || i < min {
			return fmt.Errorf("invalid int for %s: %v", key, val)
		}
		*dst = i
		return nil
	}
	setUnit := func(dst *float64) error {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f < 0 || f > 1 {
			return fmt.Errorf("invalid value for %s: %v (want 0..1)", key, val)
		}
		*dst = f
		return nil
	}
	switch key {
	case "data_dir":
		c.DataDir = val
	case "output_file":
		c.OutputFile = val
	case "indicators_file":
		if val != "" {
			if _, err := indicator.LoadFile(val); err != nil {
				return err
			}
		}
		c.IndicatorsFile = val
	case "db_path":
		c.DBPath = val
	case "aggregates":
		c.Aggregates = splitList(val)
	case "min_years_for_trend":
		return setInt(&c.MinYearsForTrend, 3)
	case "p_value_threshold":
		return setUnit(&c.PValueThreshold)
	case "min_r_squared":
		return setUnit(&c.MinRSquared)
	case "milestone_recency_years":
		return setInt(&c.MilestoneRecencyYears, 0)
	case "max_trends_per_indicator":
		return setInt(&c.MaxTrendsPerIndicator, 0)
	case "current_year":
		return setInt(&c.CurrentYear, 0)
	case "workers":
		return setInt(&c.Workers, 0)
	case "http_timeout_sec":
		return setInt(&c.HTTPTimeoutSec, 1)
	case "retry_max_attempts":
		return setInt(&c.RetryMaxAttempts, 1)
	case "retry_base_delay_ms":
		return setInt(&c.RetryBaseDelayMs, 0)
	case "retry_max_delay_ms":
		return setInt(&c.RetryMaxDelayMs, 0)
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

// splitList parses a comma-separated value; empty means "use defaults".
func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
