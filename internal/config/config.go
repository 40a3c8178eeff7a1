package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	str2duration "github.com/xhit/go-str2duration/v2"
	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	// CSVURL locates the source table (a published Google Sheet CSV export,
	// any other HTTP(S) CSV endpoint, or a local file path). The CSV_URL
	// environment variable overrides the file value so the secret does not
	// have to live in the config file.
	CSVURL string `yaml:"csv_url" json:"csv_url"`

	// OutDir is the directory the generated site is written to. Feeds go
	// under <out_dir>/calendars/.
	OutDir string `yaml:"out_dir" json:"out_dir"`

	// FeedsPath is the URL path prefix recorded in the manifest for each
	// feed file (e.g. "/calendars" -> "/calendars/<slug>.ics").
	FeedsPath string `yaml:"feeds_path" json:"feeds_path"`

	// Timezone is the IANA zone all date/time cells are interpreted in.
	Timezone string `yaml:"timezone" json:"timezone"`

	// DefaultDuration is the span assigned to timed events whose end is
	// missing or not after their start, in go-str2duration syntax ("1h",
	// "90m", ...).
	DefaultDuration string `yaml:"default_duration" json:"default_duration"`

	// IncludeEmptyFeeds keeps calendars whose every row failed validation
	// in the output and manifest. Default is to omit them.
	IncludeEmptyFeeds bool `yaml:"include_empty_feeds" json:"include_empty_feeds"`

	// Listen is the HTTP listen address for serve mode.
	Listen string `yaml:"listen" json:"listen"`

	// RefreshCron is a cron-style schedule (e.g. "*/15 * * * *") for
	// periodic rebuilds in serve mode.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// CacheDir holds the conditional-request cache for the CSV fetcher.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		CSVURL:          "",
		OutDir:          "public",
		FeedsPath:       "/calendars",
		Timezone:        "UTC",
		DefaultDuration: "1h",
		Listen:          "127.0.0.1:8080",
		RefreshCron:     "*/15 * * * *",
		CacheDir:        "./var/csv-cache",
		LogLevel:        "info",
	}
}

// Normalize fills in missing/zero values with defaults so partially-filled
// configs still behave correctly.
func (c *Config) Normalize() {
	if c.OutDir == "" {
		c.OutDir = "public"
	}
	if c.FeedsPath == "" {
		c.FeedsPath = "/calendars"
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if c.DefaultDuration == "" {
		c.DefaultDuration = "1h"
	}
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "*/15 * * * *"
	}
	if c.CacheDir == "" {
		c.CacheDir = "./var/csv-cache"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// ApplyEnv overlays environment variables over file values. Only CSV_URL is
// read from the environment; it wins over the config file when set.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("CSV_URL"); v != "" {
		c.CSVURL = v
	}
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Duration resolves the configured default timed-event duration.
func (c *Config) Duration() (time.Duration, error) {
	d, err := str2duration.ParseDuration(c.DefaultDuration)
	if err != nil {
		return 0, fmt.Errorf("invalid default_duration %q: %w", c.DefaultDuration, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("default_duration %q must be positive", c.DefaultDuration)
	}
	return d, nil
}

// Load loads configuration from the given YAML path.
//
// If the file does not exist a default config is written there (0600, parent
// directory created as needed) and returned. Environment overrides are
// applied in both cases.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			cfg.ApplyEnv()
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	cfg.ApplyEnv()

	return &cfg, nil
}

// Save writes the configuration to path atomically (temp file + rename) with
// 0600 permissions, creating the parent directory if needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".dyncal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
