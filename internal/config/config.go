package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/chartprep-cli/internal/loader"
)

// DirName is the per-user directory under $HOME holding config and recipes.
const DirName = ".chartprep"

// Global configuration structure.
type Global struct {
	// HTTP/Retry configuration
	HTTPTimeoutSec   int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec" json:"http_timeout_sec"`
	RetryMaxAttempts int `mapstructure:"retry_max_attempts" yaml:"retry_max_attempts" json:"retry_max_attempts"`
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms" yaml:"retry_base_delay_ms" json:"retry_base_delay_ms"`
	RetryMaxDelayMs  int `mapstructure:"retry_max_delay_ms" yaml:"retry_max_delay_ms" json:"retry_max_delay_ms"`

	// Fetch cache
	CacheEnabled  bool  `mapstructure:"cache_enabled" yaml:"cache_enabled" json:"cache_enabled"`
	CacheMaxBytes int64 `mapstructure:"cache_max_bytes" yaml:"cache_max_bytes" json:"cache_max_bytes"`

	// Reduction and presentation defaults
	OtherLabel   string `mapstructure:"other_label" yaml:"other_label" json:"other_label"`
	OutputFormat string `mapstructure:"output_format" yaml:"output_format" json:"output_format"`
	ChartWidth   int    `mapstructure:"chart_width" yaml:"chart_width" json:"chart_width"`
	ChartHeight  int    `mapstructure:"chart_height" yaml:"chart_height" json:"chart_height"`

	RecipesDir string `mapstructure:"recipes_dir" yaml:"recipes_dir" json:"recipes_dir"`
}

// LoaderOptions maps the HTTP and cache settings onto loader options.
func (c *Global) LoaderOptions() loader.Options {
	return loader.Options{
		HTTPTimeout:      time.Duration(c.HTTPTimeoutSec) * time.Second,
		RetryMaxAttempts: c.RetryMaxAttempts,
		RetryBaseDelay:   time.Duration(c.RetryBaseDelayMs) * time.Millisecond,
		RetryMaxDelay:    time.Duration(c.RetryMaxDelayMs) * time.Millisecond,
		CacheEnabled:     c.CacheEnabled,
		CacheMaxBytes:    c.CacheMaxBytes,
	}
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.chartprep/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, DirName)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("CHARTPREP")
	v.AutomaticEnv()

	// HTTP/retry defaults
	v.SetDefault("http_timeout_sec", 60)
	v.SetDefault("retry_max_attempts", 3)
	v.SetDefault("retry_base_delay_ms", 500)
	v.SetDefault("retry_max_delay_ms", 4000)
	v.SetDefault("cache_enabled", true)
	v.SetDefault("cache_max_bytes", 64<<20)
	v.SetDefault("other_label", "Other")
	v.SetDefault("output_format", "table")
	v.SetDefault("chart_width", 800)
	v.SetDefault("chart_height", 500)
	v.SetDefault("recipes_dir", "")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, DirName))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.RecipesDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		c.RecipesDir = filepath.Join(home, DirName, "recipes")
	}
	return &c, nil
}
