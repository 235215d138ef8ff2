// Package config loads the CLI configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Heuristic names accepted in the search section.
const (
	HeuristicCharDiff = "chardiff"
	HeuristicZero     = "zero"
)

// Config is the whole configuration file. Missing sections keep the values
// from Default.
type Config struct {
	Search  SearchConfig  `yaml:"search"`
	Cache   CacheConfig   `yaml:"cache"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// SearchConfig holds the engine options.
type SearchConfig struct {
	Timeout     time.Duration `yaml:"timeout"`
	Concurrency int           `yaml:"concurrency"`
	Verbose     bool          `yaml:"verbose"`
	ClosedSet   bool          `yaml:"closed_set"`
	Heuristic   string        `yaml:"heuristic"`

	// MaxExtraChars and MaxExtraLines prune states that grew this far past
	// the target. Negative disables the check.
	MaxExtraChars int `yaml:"max_extra_chars"`
	MaxExtraLines int `yaml:"max_extra_lines"`
}

// CacheConfig sizes the oracle result cache and the per-session replay
// snapshots.
type CacheConfig struct {
	Enabled   bool `yaml:"enabled"`
	Size      int  `yaml:"size"`
	Snapshots int  `yaml:"snapshots"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig enables the Prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Search: SearchConfig{
			Timeout:       60 * time.Second,
			Concurrency:   4,
			Heuristic:     HeuristicCharDiff,
			MaxExtraChars: -1,
			MaxExtraLines: -1,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Size:      10000,
			Snapshots: 4096,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path over Default and validates the result. An empty path
// returns Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := Parse(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data into cfg and validates it. Fields absent from data keep
// their current values.
func Parse(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg.Validate()
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if c.Search.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("search.concurrency must be at least 1, got %d", c.Search.Concurrency))
	}
	switch c.Search.Heuristic {
	case HeuristicCharDiff, HeuristicZero:
	default:
		errs = append(errs, fmt.Errorf("search.heuristic %q is not one of %q, %q", c.Search.Heuristic, HeuristicCharDiff, HeuristicZero))
	}
	if c.Cache.Size < 0 {
		errs = append(errs, fmt.Errorf("cache.size must not be negative, got %d", c.Cache.Size))
	}
	if c.Cache.Snapshots < 0 {
		errs = append(errs, fmt.Errorf("cache.snapshots must not be negative, got %d", c.Cache.Snapshots))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not one of text, json", c.Log.Format))
	}
	return errors.Join(errs...)
}
