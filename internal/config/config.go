// Package config loads server settings from a YAML file with
// PORTFOLIO_* environment overrides.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "PORTFOLIO_"

type Config struct {
	Addr      string          `koanf:"addr"`
	AssetsDir string          `koanf:"assets_dir"`
	Log       LogConfig       `koanf:"log"`
	Session   SessionConfig   `koanf:"session"`
	Scroll    ScrollConfig    `koanf:"scroll"`
	Analytics AnalyticsConfig `koanf:"analytics"`
	Admin     AdminConfig     `koanf:"admin"`
}

type LogConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // text or json
}

type SessionConfig struct {
	TTL           time.Duration `koanf:"ttl"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// ScrollConfig tunes the WebSocket scroll bridge.
type ScrollConfig struct {
	// Throttle is the minimum time between evaluations. Zero evaluates on
	// every notification.
	Throttle time.Duration `koanf:"throttle"`
}

type AnalyticsConfig struct {
	Enabled   bool          `koanf:"enabled"`
	DBPath    string        `koanf:"db_path"`
	Retention time.Duration `koanf:"retention"`
}

type AdminConfig struct {
	Username string `koanf:"username"`
	Password string `koanf:"password"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		Addr:      ":8080",
		AssetsDir: "assets",
		Log:       LogConfig{Level: "info", Format: "text"},
		Session:   SessionConfig{TTL: 30 * time.Minute, SweepInterval: time.Minute},
		Analytics: AnalyticsConfig{
			Enabled:   true,
			DBPath:    "data/portfolio.db",
			Retention: 365 * 24 * time.Hour,
		},
	}
}

// Load reads path if it exists, then overlays PORTFOLIO_* environment
// variables. Nested keys use a double underscore, e.g.
// PORTFOLIO_SESSION__TTL=10m.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// PORT is what most hosting platforms set.
	if port := os.Getenv("PORT"); port != "" && !k.Exists("addr") {
		cfg.Addr = ":" + port
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("invalid log.format %q: must be text or json", c.Log.Format)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive")
	}
	if c.Session.SweepInterval <= 0 {
		return fmt.Errorf("session.sweep_interval must be positive")
	}
	if c.Scroll.Throttle < 0 {
		return fmt.Errorf("scroll.throttle must be non-negative")
	}
	if c.Analytics.Enabled && c.Analytics.DBPath == "" {
		return fmt.Errorf("analytics.db_path is required when analytics is enabled")
	}
	return nil
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("invalid log.level %q: %w", c.Log.Level, err)
	}
	return lvl, nil
}

// NewLogger builds the process logger described by Log.
func (c *Config) NewLogger() *slog.Logger {
	lvl, err := c.LogLevel()
	if err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
