package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/ramonehamilton/oncurve/internal/curve"
)

// Config represents the application configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Log      LogConfig      `toml:"log"`
	Scryfall ScryfallConfig `toml:"scryfall"`
	Cache    CacheConfig    `toml:"cache"`
	Analysis AnalysisConfig `toml:"analysis"`
}

// ServerConfig contains HTTP API settings.
type ServerConfig struct {
	Port           int    `toml:"port"`
	RequestTimeout string `toml:"request_timeout"` // e.g. "60s"
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // json or console
}

// ScryfallConfig contains card database client settings.
type ScryfallConfig struct {
	BaseURL       string `toml:"base_url"`
	UserAgent     string `toml:"user_agent"`
	RateLimit     string `toml:"rate_limit"`     // Delay between requests (e.g., "100ms")
	MaxConcurrent int    `toml:"max_concurrent"` // Parallel lookups while building a deck
}

// CacheConfig contains card data caching settings.
type CacheConfig struct {
	Enabled bool   `toml:"enabled"` // Persist fetched cards to SQLite
	TTL     string `toml:"ttl"`     // Cache TTL (e.g., "168h")
	DBPath  string `toml:"db_path"` // Empty selects ~/.oncurve/cards.db
}

// AnalysisConfig contains engine settings.
type AnalysisConfig struct {
	OpeningHandSize int    `toml:"opening_hand_size"`
	DefaultX        int    `toml:"default_x"` // Value substituted for X when a request omits it
	MaxLands        int    `toml:"max_lands"` // Largest land pool accepted (0 = unlimited)
	MaxHands        int    `toml:"max_hands"` // Largest number of land subsets per run (0 = unlimited)
	Workers         int    `toml:"workers"`   // Spells analyzed in parallel
	Strategy        string `toml:"strategy"`  // greedy, exact-hand or matching
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	engine := curve.DefaultOptions()
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			RequestTimeout: "60s",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Scryfall: ScryfallConfig{
			BaseURL:       "https://api.scryfall.com",
			UserAgent:     "OnCurve/1.0",
			RateLimit:     "100ms",
			MaxConcurrent: 8,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     "168h",
			DBPath:  "",
		},
		Analysis: AnalysisConfig{
			OpeningHandSize: engine.OpeningHandSize,
			DefaultX:        2,
			MaxLands:        engine.MaxLands,
			MaxHands:        engine.MaxHands,
			Workers:         engine.Workers,
			Strategy:        string(curve.StrategyGreedy),
		},
	}
}

// DefaultPath returns ~/.oncurve/config.toml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".oncurve", "config.toml"), nil
}

// Load loads the configuration from path, or from DefaultPath when path is
// empty. A missing file yields the default configuration. Values absent from
// the file keep their defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Save writes the configuration to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if _, err := time.ParseDuration(c.Server.RequestTimeout); err != nil {
		return fmt.Errorf("invalid request timeout %q: %w", c.Server.RequestTimeout, err)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("invalid log format %q", c.Log.Format)
	}

	if _, err := time.ParseDuration(c.Scryfall.RateLimit); err != nil {
		return fmt.Errorf("invalid scryfall rate limit %q: %w", c.Scryfall.RateLimit, err)
	}
	if c.Scryfall.MaxConcurrent <= 0 {
		return fmt.Errorf("scryfall max concurrent must be positive: %d", c.Scryfall.MaxConcurrent)
	}

	if _, err := time.ParseDuration(c.Cache.TTL); err != nil {
		return fmt.Errorf("invalid cache TTL %q: %w", c.Cache.TTL, err)
	}

	if c.Analysis.OpeningHandSize <= 0 {
		return fmt.Errorf("opening hand size must be positive: %d", c.Analysis.OpeningHandSize)
	}
	if c.Analysis.DefaultX < 0 {
		return fmt.Errorf("default X cannot be negative: %d", c.Analysis.DefaultX)
	}
	if c.Analysis.MaxLands < 0 {
		return fmt.Errorf("max lands cannot be negative: %d", c.Analysis.MaxLands)
	}
	if c.Analysis.MaxHands < 0 {
		return fmt.Errorf("max hands cannot be negative: %d", c.Analysis.MaxHands)
	}
	if c.Analysis.Workers <= 0 {
		return fmt.Errorf("workers must be positive: %d", c.Analysis.Workers)
	}
	if _, err := curve.ParseStrategy(c.Analysis.Strategy); err != nil {
		return err
	}

	return nil
}

// GetRequestTimeout returns the server request timeout as a duration.
func (c *Config) GetRequestTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Server.RequestTimeout)
}

// GetRateLimit returns the delay between Scryfall requests.
func (c *Config) GetRateLimit() (time.Duration, error) {
	return time.ParseDuration(c.Scryfall.RateLimit)
}

// GetCacheTTL returns the cache TTL as a duration.
func (c *Config) GetCacheTTL() (time.Duration, error) {
	return time.ParseDuration(c.Cache.TTL)
}

// GetCacheDBPath returns the card cache database path, defaulting to
// ~/.oncurve/cards.db.
func (c *Config) GetCacheDBPath() (string, error) {
	if c.Cache.DBPath != "" {
		return c.Cache.DBPath, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".oncurve", "cards.db"), nil
}

// AnalyzerOptions converts the analysis section into engine options.
func (c *Config) AnalyzerOptions() curve.Options {
	return curve.Options{
		OpeningHandSize: c.Analysis.OpeningHandSize,
		Workers:         c.Analysis.Workers,
		MaxLands:        c.Analysis.MaxLands,
		MaxHands:        c.Analysis.MaxHands,
	}
}
