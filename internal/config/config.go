package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port        string     `env:"PORT" envDefault:"8080"`
	Environment string     `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    slog.Level `env:"-"`
	RawLogLevel string     `env:"LOG_LEVEL" envDefault:"info"`

	RedisURL string `env:"REDIS_URL" envDefault:"redis://localhost:6379"`
	DataDir  string `env:"DATA_DIR" envDefault:"./data"`

	MaxAge         int           `env:"MAX_AGE" envDefault:"500"`
	TalentMenuSize int           `env:"TALENT_MENU_SIZE" envDefault:"10"`
	TalentPicks    int           `env:"TALENT_PICKS" envDefault:"3"`
	ArchiveTTL     time.Duration `env:"ARCHIVE_TTL" envDefault:"24h"`
	DefaultLang    string        `env:"DEFAULT_LANG" envDefault:"en"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.LogLevel = parseLogLevel(cfg.RawLogLevel)

	if cfg.MaxAge < 1 {
		return nil, fmt.Errorf("MAX_AGE must be positive, got %d", cfg.MaxAge)
	}
	if cfg.TalentPicks < 1 || cfg.TalentMenuSize < cfg.TalentPicks {
		return nil, fmt.Errorf("TALENT_MENU_SIZE (%d) must be at least TALENT_PICKS (%d), which must be positive",
			cfg.TalentMenuSize, cfg.TalentPicks)
	}
	return &cfg, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
