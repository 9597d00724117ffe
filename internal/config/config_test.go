package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/oncurve/internal/curve"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 7, cfg.Analysis.OpeningHandSize)
	assert.Equal(t, 2, cfg.Analysis.DefaultX)
	assert.Equal(t, "greedy", cfg.Analysis.Strategy)
	assert.Equal(t, curve.DefaultOptions().MaxHands, cfg.Analysis.MaxHands)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadOverridesOnlyGivenKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
port = 9090

[analysis]
workers = 4
strategy = "matching"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Analysis.Workers)
	assert.Equal(t, "matching", cfg.Analysis.Strategy)
	assert.Equal(t, "60s", cfg.Server.RequestTimeout)
	assert.Equal(t, 7, cfg.Analysis.OpeningHandSize)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[analysis]\nstrategy = \"random\"\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsBrokenTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server\nport = "), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := DefaultConfig()
	cfg.Log.Level = "debug"
	cfg.Cache.Enabled = false
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }},
		{"bad timeout", func(c *Config) { c.Server.RequestTimeout = "soon" }},
		{"bad level", func(c *Config) { c.Log.Level = "verbose" }},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }},
		{"bad rate limit", func(c *Config) { c.Scryfall.RateLimit = "fast" }},
		{"no concurrency", func(c *Config) { c.Scryfall.MaxConcurrent = 0 }},
		{"bad ttl", func(c *Config) { c.Cache.TTL = "forever" }},
		{"empty hand", func(c *Config) { c.Analysis.OpeningHandSize = 0 }},
		{"negative x", func(c *Config) { c.Analysis.DefaultX = -1 }},
		{"negative max lands", func(c *Config) { c.Analysis.MaxLands = -1 }},
		{"negative max hands", func(c *Config) { c.Analysis.MaxHands = -1 }},
		{"no workers", func(c *Config) { c.Analysis.Workers = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDurationGetters(t *testing.T) {
	cfg := DefaultConfig()

	timeout, err := cfg.GetRequestTimeout()
	require.NoError(t, err)
	assert.Equal(t, 60*time.Second, timeout)

	rate, err := cfg.GetRateLimit()
	require.NoError(t, err)
	assert.Equal(t, 100*time.Millisecond, rate)

	ttl, err := cfg.GetCacheTTL()
	require.NoError(t, err)
	assert.Equal(t, 168*time.Hour, ttl)
}

func TestGetCacheDBPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cache.DBPath = "/tmp/cards.db"

	path, err := cfg.GetCacheDBPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/cards.db", path)
}

func TestAnalyzerOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Analysis.Workers = 3
	cfg.Analysis.MaxHands = 5000

	opts := cfg.AnalyzerOptions()
	assert.Equal(t, 7, opts.OpeningHandSize)
	assert.Equal(t, 3, opts.Workers)
	assert.Equal(t, 40, opts.MaxLands)
	assert.Equal(t, 5000, opts.MaxHands)
}
