package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/papapumpkin/textage/internal/cache"
	"github.com/papapumpkin/textage/internal/fetch"
	"github.com/papapumpkin/textage/internal/logging"
)

// Config holds all runtime configuration for a textage run.
// Values are populated from .textage.yaml, TEXTAGE_* env vars, and CLI flags.
type Config struct {
	CacheDir    string        `mapstructure:"cache_dir"`
	BaseURL     string        `mapstructure:"base_url"`
	SourceDir   string        `mapstructure:"source_dir"`
	MaxCacheAge time.Duration `mapstructure:"max_cache_age"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	UserAgent   string        `mapstructure:"user_agent"`
	RulesFile   string        `mapstructure:"rules_file"`
	EventsFile  string        `mapstructure:"events_file"`
	DBPath      string        `mapstructure:"db_path"`
	LogLevel    string        `mapstructure:"log_level"`
	LogFormat   string        `mapstructure:"log_format"`
}

// SetDefaults registers built-in defaults with viper.
func SetDefaults() {
	viper.SetDefault("cache_dir", "./textage-data")
	viper.SetDefault("base_url", fetch.DefaultBaseURL)
	viper.SetDefault("source_dir", "")
	viper.SetDefault("max_cache_age", cache.DefaultMaxAge.String())
	viper.SetDefault("http_timeout", fetch.DefaultTimeout.String())
	viper.SetDefault("user_agent", "textage-sync")
	viper.SetDefault("rules_file", "")
	viper.SetDefault("events_file", "")
	viper.SetDefault("db_path", "textage.db")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "text")
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	SetDefaults()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	if cfg.EventsFile == "" {
		cfg.EventsFile = filepath.Join(cfg.CacheDir, "events.jsonl")
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if c.CacheDir == "" {
		return fmt.Errorf("config: cache_dir must not be empty")
	}
	if c.MaxCacheAge <= 0 {
		return fmt.Errorf("config: max_cache_age must be positive, got %v", c.MaxCacheAge)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("config: http_timeout must be positive, got %v", c.HTTPTimeout)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: log_level: %w", err)
	}
	if !logging.ValidFormat(c.LogFormat) {
		return fmt.Errorf("config: log_format must be text or json, got %q", c.LogFormat)
	}
	return nil
}
