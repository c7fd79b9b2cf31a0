package config

import (
	"fmt"
	"log/slog"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	HistoryLimit int     `envconfig:"HISTORY_LIMIT" default:"100"`
	HandleSize   float64 `envconfig:"HANDLE_SIZE" default:"8"`
	DefaultsFile string  `envconfig:"DEFAULTS_FILE"`
	LogLevel     string  `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads ANNOTATOR_* environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("annotator", &cfg); err != nil {
		return nil, err
	}
	if cfg.HistoryLimit <= 0 {
		return nil, fmt.Errorf("history limit must be positive, got %d", cfg.HistoryLimit)
	}
	if cfg.HandleSize <= 0 {
		return nil, fmt.Errorf("handle size must be positive, got %g", cfg.HandleSize)
	}
	return &cfg, nil
}

// Level parses LogLevel, falling back to info.
func (c *Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}
