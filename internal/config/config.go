// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jasonesanders/marquee/internal/event"
)

// Config captures all configuration knobs, loaded from an optional YAML file
// with MARQUEE_* environment overrides.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Scraper  ScraperConfig  `mapstructure:"scraper"`
	DB       DBConfig       `mapstructure:"db"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Venues   []event.Venue  `mapstructure:"venues"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// ScraperConfig governs fetch politeness and the retry loop.
type ScraperConfig struct {
	UserAgent       string `mapstructure:"user_agent"`
	RequestDelayMs  int    `mapstructure:"request_delay_ms"`
	MaxAttempts     int    `mapstructure:"max_attempts"`
	BackoffBaseMs   int    `mapstructure:"backoff_base_ms"`
	NavTimeoutMs    int    `mapstructure:"nav_timeout_ms"`
	StaticTimeoutMs int    `mapstructure:"static_timeout_ms"`
}

// DBConfig controls access to Postgres. An empty DSN selects the in-memory
// store.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// AdminConfig configures the health/metrics HTTP surface.
type AdminConfig struct {
	Port int `mapstructure:"port"`
}

// ScheduleConfig sets the scrape cadence for serve mode.
type ScheduleConfig struct {
	IntervalMinutes int `mapstructure:"interval_minutes"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MARQUEE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.development", true)
	v.SetDefault("scraper.user_agent", "marquee-bot/1.0 (+https://github.com/jasonesanders/marquee)")
	v.SetDefault("scraper.request_delay_ms", 2000)
	v.SetDefault("scraper.max_attempts", 3)
	v.SetDefault("scraper.backoff_base_ms", 1000)
	v.SetDefault("scraper.nav_timeout_ms", 30000)
	v.SetDefault("scraper.static_timeout_ms", 15000)
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("admin.port", 9090)
	v.SetDefault("schedule.interval_minutes", 360)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Scraper.UserAgent == "" {
		return fmt.Errorf("scraper.user_agent must be set")
	}
	if c.Scraper.MaxAttempts <= 0 {
		return fmt.Errorf("scraper.max_attempts must be > 0")
	}
	if c.Scraper.NavTimeoutMs <= 0 {
		return fmt.Errorf("scraper.nav_timeout_ms must be > 0")
	}
	if c.Admin.Port <= 0 {
		return fmt.Errorf("admin.port must be > 0")
	}
	if c.Schedule.IntervalMinutes <= 0 {
		return fmt.Errorf("schedule.interval_minutes must be > 0")
	}
	seen := map[string]bool{}
	for _, v := range c.Venues {
		if v.ID == "" || v.URL == "" {
			return fmt.Errorf("venue entries need id and url")
		}
		if seen[v.ID] {
			return fmt.Errorf("duplicate venue id %q", v.ID)
		}
		seen[v.ID] = true
	}
	return nil
}

// RequestDelay returns the fetch spacing as a duration.
func (c Config) RequestDelay() time.Duration {
	return time.Duration(c.Scraper.RequestDelayMs) * time.Millisecond
}

// BackoffBase returns the retry backoff base as a duration.
func (c Config) BackoffBase() time.Duration {
	return time.Duration(c.Scraper.BackoffBaseMs) * time.Millisecond
}

// NavTimeout returns the per-navigation timeout as a duration.
func (c Config) NavTimeout() time.Duration {
	return time.Duration(c.Scraper.NavTimeoutMs) * time.Millisecond
}

// StaticTimeout returns the static request timeout as a duration.
func (c Config) StaticTimeout() time.Duration {
	return time.Duration(c.Scraper.StaticTimeoutMs) * time.Millisecond
}

// ScrapeInterval returns the serve-mode cadence as a duration.
func (c Config) ScrapeInterval() time.Duration {
	return time.Duration(c.Schedule.IntervalMinutes) * time.Minute
}
