package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, 500, cfg.MaxAge)
	assert.Equal(t, 10, cfg.TalentMenuSize)
	assert.Equal(t, 3, cfg.TalentPicks)
	assert.Equal(t, 24*time.Hour, cfg.ArchiveTTL)
	assert.Equal(t, "en", cfg.DefaultLang)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("LOG_LEVEL", "WARNING")
	t.Setenv("MAX_AGE", "120")
	t.Setenv("ARCHIVE_TTL", "90m")
	t.Setenv("DEFAULT_LANG", "zh")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	assert.Equal(t, 120, cfg.MaxAge)
	assert.Equal(t, 90*time.Minute, cfg.ArchiveTTL)
	assert.Equal(t, "zh", cfg.DefaultLang)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric max age", "MAX_AGE", "old"},
		{"zero max age", "MAX_AGE", "0"},
		{"bad duration", "ARCHIVE_TTL", "forever"},
		{"more picks than menu", "TALENT_PICKS", "11"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, expected := range tests {
		assert.Equal(t, expected, parseLogLevel(in), in)
	}
}
