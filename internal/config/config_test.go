package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vimgolf.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_EmptyPathReturnsDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, Default().Validate())
}

func TestLoad_OverridesOnlyGivenFields(t *testing.T) {
	path := writeFile(t, `
search:
  timeout: 30s
  concurrency: 8
  heuristic: zero
  closed_set: true
cache:
  size: 50
log:
  format: json
metrics:
  addr: ":9090"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Search.Timeout)
	assert.Equal(t, 8, cfg.Search.Concurrency)
	assert.Equal(t, HeuristicZero, cfg.Search.Heuristic)
	assert.True(t, cfg.Search.ClosedSet)
	assert.Equal(t, -1, cfg.Search.MaxExtraChars)
	assert.Equal(t, 50, cfg.Cache.Size)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 4096, cfg.Cache.Snapshots)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_MalformedYAML(t *testing.T) {
	_, err := Load(writeFile(t, "search: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero concurrency", func(c *Config) { c.Search.Concurrency = 0 }, "search.concurrency"},
		{"unknown heuristic", func(c *Config) { c.Search.Heuristic = "manhattan" }, "search.heuristic"},
		{"negative cache size", func(c *Config) { c.Cache.Size = -1 }, "cache.size"},
		{"negative snapshots", func(c *Config) { c.Cache.Snapshots = -5 }, "cache.snapshots"},
		{"unknown level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
		{"unknown format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "loud"
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.level")
	assert.Contains(t, err.Error(), "log.format")
}
