package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

// resetViper clears all viper state between tests to avoid cross-contamination.
func resetViper() {
	viper.Reset()
}

func TestLoad_Defaults(t *testing.T) {
	resetViper()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"CacheDir", cfg.CacheDir, "./textage-data"},
		{"BaseURL", cfg.BaseURL, "https://textage.cc/score/"},
		{"SourceDir", cfg.SourceDir, ""},
		{"MaxCacheAge", cfg.MaxCacheAge, 48 * time.Hour},
		{"HTTPTimeout", cfg.HTTPTimeout, 30 * time.Second},
		{"RulesFile", cfg.RulesFile, ""},
		{"EventsFile", cfg.EventsFile, filepath.Join("./textage-data", "events.jsonl")},
		{"DBPath", cfg.DBPath, "textage.db"},
		{"LogLevel", cfg.LogLevel, "info"},
		{"LogFormat", cfg.LogFormat, "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
		field  func(Config) any
		want   any
	}{
		{
			name:   "cache_dir",
			envKey: "TEXTAGE_CACHE_DIR",
			envVal: "/tmp/textage",
			field:  func(c Config) any { return c.CacheDir },
			want:   "/tmp/textage",
		},
		{
			name:   "max_cache_age",
			envKey: "TEXTAGE_MAX_CACHE_AGE",
			envVal: "6h",
			field:  func(c Config) any { return c.MaxCacheAge },
			want:   6 * time.Hour,
		},
		{
			name:   "http_timeout",
			envKey: "TEXTAGE_HTTP_TIMEOUT",
			envVal: "5s",
			field:  func(c Config) any { return c.HTTPTimeout },
			want:   5 * time.Second,
		},
		{
			name:   "source_dir",
			envKey: "TEXTAGE_SOURCE_DIR",
			envVal: "/srv/mirror",
			field:  func(c Config) any { return c.SourceDir },
			want:   "/srv/mirror",
		},
		{
			name:   "log_format",
			envKey: "TEXTAGE_LOG_FORMAT",
			envVal: "json",
			field:  func(c Config) any { return c.LogFormat },
			want:   "json",
		},
		{
			name:   "events_file",
			envKey: "TEXTAGE_EVENTS_FILE",
			envVal: "/var/log/textage.jsonl",
			field:  func(c Config) any { return c.EventsFile },
			want:   "/var/log/textage.jsonl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper()
			// Set env prefix so TEXTAGE_* env vars map to config keys.
			viper.SetEnvPrefix("TEXTAGE")
			viper.AutomaticEnv()
			t.Setenv(tt.envKey, tt.envVal)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() returned unexpected error: %v", err)
			}
			got := tt.field(cfg)
			if got != tt.want {
				t.Errorf("%s: got %v (%T), want %v (%T)", tt.name, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	resetViper()

	path := filepath.Join(t.TempDir(), ".textage.yaml")
	doc := "cache_dir: /data/textage\nmax_cache_age: 12h\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CacheDir != "/data/textage" || cfg.MaxCacheAge != 12*time.Hour || cfg.LogLevel != "debug" {
		t.Errorf("config file values not applied: %+v", cfg)
	}
	if cfg.EventsFile != filepath.Join("/data/textage", "events.jsonl") {
		t.Errorf("EventsFile = %q, want it under cache_dir", cfg.EventsFile)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, val, wantMsg string
	}{
		{"max_cache_age", "0s", "max_cache_age"},
		{"http_timeout", "-1s", "http_timeout"},
		{"log_level", "loud", "log_level"},
		{"log_format", "xml", "log_format"},
		{"cache_dir", "", "cache_dir"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			resetViper()
			viper.Set(tt.key, tt.val)

			_, err := Load()
			if err == nil {
				t.Fatalf("Load() with %s=%q returned nil error", tt.key, tt.val)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}
