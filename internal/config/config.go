package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/goodnews-cli/internal/detect"
	"github.com/KaramelBytes/goodnews-cli/internal/indicator"
	"github.com/KaramelBytes/goodnews-cli/internal/utils"
)

// Global configuration structure.
type Global struct {
	DataDir        string `mapstructure:"data_dir" yaml:"data_dir"`
	OutputFile     string `mapstructure:"output_file" yaml:"output_file"`
	IndicatorsFile string `mapstructure:"indicators_file" yaml:"indicators_file"`
	// DBPath enables run history when non-empty.
	DBPath string `mapstructure:"db_path" yaml:"db_path"`
	// Aggregates replaces the built-in list of non-country rows to drop.
	Aggregates []string `mapstructure:"aggregates" yaml:"aggregates,omitempty"`

	// Detection thresholds
	MinYearsForTrend      int     `mapstructure:"min_years_for_trend" yaml:"min_years_for_trend"`
	PValueThreshold       float64 `mapstructure:"p_value_threshold" yaml:"p_value_threshold"`
	MinRSquared           float64 `mapstructure:"min_r_squared" yaml:"min_r_squared"`
	MilestoneRecencyYears int     `mapstructure:"milestone_recency_years" yaml:"milestone_recency_years"`
	MaxTrendsPerIndicator int     `mapstructure:"max_trends_per_indicator" yaml:"max_trends_per_indicator"`
	CurrentYear           int     `mapstructure:"current_year" yaml:"current_year"`
	Workers               int     `mapstructure:"workers" yaml:"workers"`

	// HTTP/Retry configuration
	HTTPTimeoutSec   int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	RetryMaxAttempts int `mapstructure:"retry_max_attempts" yaml:"retry_max_attempts"`
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms" yaml:"retry_base_delay_ms"`
	RetryMaxDelayMs  int `mapstructure:"retry_max_delay_ms" yaml:"retry_max_delay_ms"`
}

// Dir is the per-user configuration directory (~/.goodnews).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".goodnews"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.goodnews/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := utils.EnsureDir(dir); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("GOODNEWS")
	v.AutomaticEnv()

	d := detect.DefaultParams()
	v.SetDefault("data_dir", "")
	v.SetDefault("output_file", "good_news.json")
	v.SetDefault("indicators_file", "")
	v.SetDefault("db_path", "")
	v.SetDefault("aggregates", []string{})
	v.SetDefault("min_years_for_trend", d.MinYearsForTrend)
	v.SetDefault("p_value_threshold", d.PValueThreshold)
	v.SetDefault("min_r_squared", d.MinRSquared)
	v.SetDefault("milestone_recency_years", d.MilestoneRecencyYears)
	v.SetDefault("max_trends_per_indicator", 20)
	v.SetDefault("current_year", 0)
	v.SetDefault("workers", 0)
	// HTTP/retry defaults
	v.SetDefault("http_timeout_sec", 30)
	v.SetDefault("retry_max_attempts", 3)
	v.SetDefault("retry_base_delay_ms", 500)
	v.SetDefault("retry_max_delay_ms", 4000)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.DataDir == "" {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		c.DataDir = filepath.Join(dir, "data")
	}
	var err error
	if c.DataDir, err = utils.ExpandHome(c.DataDir); err != nil {
		return nil, err
	}
	if c.IndicatorsFile, err = utils.ExpandHome(c.IndicatorsFile); err != nil {
		return nil, err
	}
	if c.DBPath, err = utils.ExpandHome(c.DBPath); err != nil {
		return nil, err
	}
	return &c, nil
}

// Params returns the detection thresholds for a run.
func (c *Global) Params() detect.Params {
	return detect.Params{
		MinYearsForTrend:      c.MinYearsForTrend,
		PValueThreshold:       c.PValueThreshold,
		MinRSquared:           c.MinRSquared,
		MilestoneRecencyYears: c.MilestoneRecencyYears,
		CurrentYear:           c.CurrentYear,
	}
}

// Indicators returns the catalog from indicators_file, or the built-in
// defaults when none is configured.
func (c *Global) Indicators() ([]indicator.Spec, error) {
	if c.IndicatorsFile == "" {
		return indicator.Defaults(), nil
	}
	specs, err := indicator.LoadFile(c.IndicatorsFile)
	if err != nil {
		return nil, fmt.Errorf("load indicators: %w", err)
	}
	return specs, nil
}

// AggregateNames returns the configured aggregate list, or nil to select the
// built-in defaults.
func (c *Global) AggregateNames() []string {
	if len(c.Aggregates) == 0 {
		return nil
	}
	return c.Aggregates
}

// WorkerCount resolves workers, defaulting to the number of CPUs.
func (c *Global) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

// HTTPTimeout converts http_timeout_sec to a duration.
func (c *Global) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSec) * time.Second
}

// RetryBaseDelay converts retry_base_delay_ms to a duration.
func (c *Global) RetryBaseDelay() time.Duration {
	return time.Duration(c.RetryBaseDelayMs) * time.Millisecond
}

// RetryMaxDelay converts retry_max_delay_ms to a duration.
func (c *Global) RetryMaxDelay() time.Duration {
	return time.Duration(c.RetryMaxDelayMs) * time.Millisecond
}
