// Package config loads gantt's settings from a TOML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/kloir-z/gantt/internal/calendar"
	"github.com/kloir-z/gantt/internal/history"
	"github.com/kloir-z/gantt/internal/scheduler"
)

// Config is the process configuration. Chart-level settings such as
// holidays live in the database, not here.
type Config struct {
	DBPath       string            `toml:"db_path"`
	DefaultChart string            `toml:"default_chart"`
	DateFormat   string            `toml:"date_format"`
	HistoryLimit int               `toml:"history_limit"`
	Propagation  PropagationConfig `toml:"propagation"`
	Log          LogConfig         `toml:"log"`
}

type PropagationConfig struct {
	Mode      string `toml:"mode"`
	MaxPasses int    `toml:"max_passes"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the configuration used when no file is present. home
// anchors the database path.
func Default(home string) Config {
	return Config{
		DBPath:       filepath.Join(home, ".gantt", "gantt.db"),
		DateFormat:   string(calendar.DefaultFormat),
		HistoryLimit: history.DefaultLimit,
		Propagation: PropagationConfig{
			Mode:      string(scheduler.ModeFixedPoint),
			MaxPasses: scheduler.DefaultMaxPasses,
		},
		Log: LogConfig{Level: "warn", Format: "text"},
	}
}

// Load reads defaults, then the config file, then the environment:
//
//	GANTT_CONFIG       config file path (default ~/.gantt/config.toml)
//	GANTT_DB           database path
//	GANTT_CHART        chart used when a command gets no --chart
//	GANTT_LOG_LEVEL    debug, info, warn or error
//	GANTT_HISTORY_LIMIT
//
// A missing config file is not an error.
func Load() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("finding home directory: %w", err)
	}
	cfg := Default(home)

	path := os.Getenv("GANTT_CONFIG")
	if path == "" {
		path = filepath.Join(home, ".gantt", "config.toml")
	}
	if err := LoadFile(&cfg, path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}

	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile overlays the TOML file at path onto cfg. Keys the file sets
// replace cfg's values; unknown keys are rejected.
func LoadFile(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return fmt.Errorf("loading config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("config file %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("GANTT_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("GANTT_CHART"); v != "" {
		cfg.DefaultChart = v
	}
	if v := os.Getenv("GANTT_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("GANTT_HISTORY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HistoryLimit = n
		}
	}
}

// Validate checks every enumerated value.
func (c Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	if _, err := calendar.ParseFormat(c.DateFormat); err != nil {
		return fmt.Errorf("date_format: %w", err)
	}
	if _, err := scheduler.ParseMode(c.Propagation.Mode); err != nil {
		return fmt.Errorf("propagation.mode: %w", err)
	}
	if c.Propagation.MaxPasses < 0 {
		return fmt.Errorf("propagation.max_passes must not be negative")
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("history_limit must not be negative")
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json", "logfmt":
	default:
		return fmt.Errorf("log.format %q must be text, json or logfmt", c.Log.Format)
	}
	return nil
}

// EngineOptions converts the propagation section. Call after Validate.
func (c Config) EngineOptions() scheduler.Options {
	mode, _ := scheduler.ParseMode(c.Propagation.Mode)
	return scheduler.Options{Mode: mode, MaxPasses: c.Propagation.MaxPasses}
}

// Format returns the default date format for new charts. Call after
// Validate.
func (c Config) Format() calendar.Format {
	f, _ := calendar.ParseFormat(c.DateFormat)
	return f
}
