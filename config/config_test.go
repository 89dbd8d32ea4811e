package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	// Test with default values
	config := LoadConfig()
	assert.Equal(t, "https://lotv.spawningtool.com", config.BaseURL)
	assert.Equal(t, []string{"herO", "ShoWTimE", "Zoun"}, config.TargetPlayers)
	assert.Equal(t, 5, config.MaxConcurrent)
	assert.Equal(t, 15*time.Second, config.RequestTimeout)
	assert.Equal(t, 5, config.MaxPages)
	assert.Equal(t, "2025-10-01", config.AfterPlayedOn)
	assert.True(t, config.ProOnly)
	assert.Equal(t, "protoss_builds_post_patch.json", config.OutputPath)
	assert.Equal(t, time.Duration(0), config.RunInterval)
	assert.False(t, config.RedisPublish)
	assert.Zero(t, config.RateLimitBlock, "429 cooldown is off unless configured")
	assert.NoError(t, config.Validate())

	// Test with environment variables
	t.Setenv("SPAWNINGTOOL_BASE_URL", "http://localhost:8080/")
	t.Setenv("TARGET_PLAYERS", " herO , Zoun ,,")
	t.Setenv("MAX_CONCURRENT", "2")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "3")
	t.Setenv("MAX_PAGES", "1")
	t.Setenv("AFTER_PLAYED_ON", "")
	t.Setenv("PRO_ONLY", "false")
	t.Setenv("OUTPUT_PATH", "builds.yaml")

	config = LoadConfig()
	assert.Equal(t, "http://localhost:8080", config.BaseURL)
	assert.Equal(t, []string{"herO", "Zoun"}, config.TargetPlayers)
	assert.Equal(t, 2, config.MaxConcurrent)
	assert.Equal(t, 3*time.Second, config.RequestTimeout)
	assert.Equal(t, 1, config.MaxPages)
	assert.Empty(t, config.AfterPlayedOn)
	assert.True(t, config.MinimumDate().IsZero())
	assert.False(t, config.ProOnly)
	assert.Equal(t, "yaml", config.ResolvedOutputFormat())
	assert.NoError(t, config.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero concurrency", func(c *Config) { c.MaxConcurrent = 0 }},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }},
		{"zero pages", func(c *Config) { c.MaxPages = 0 }},
		{"bad date", func(c *Config) { c.AfterPlayedOn = "10/01/2025" }},
		{"bad format", func(c *Config) { c.OutputFormat = "csv" }},
		{"negative deadline", func(c *Config) { c.CrawlDeadline = -time.Second }},
		{"no streams", func(c *Config) { c.RedisPublish = true; c.RedisStreamCount = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := LoadConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestResolvedOutputFormat(t *testing.T) {
	cfg := &Config{OutputPath: "out/builds.sqlite"}
	assert.Equal(t, "sqlite", cfg.ResolvedOutputFormat())

	cfg.OutputPath = "builds.json"
	assert.Equal(t, "json", cfg.ResolvedOutputFormat())

	cfg.OutputFormat = "yaml"
	assert.Equal(t, "yaml", cfg.ResolvedOutputFormat())

	assert.Equal(t, FormatYAML, FormatFromPath("builds.YML"))
	assert.Equal(t, FormatSQLite, FormatFromPath("builds.sqlite3"))
	assert.Equal(t, FormatJSON, FormatFromPath("builds"))
}

func TestLoadTagTable(t *testing.T) {
	table, err := LoadTagTable("")
	require.NoError(t, err)
	assert.Equal(t, 728, table.Players["herO"])
	tag, ok := table.RaceTag("Protoss")
	assert.True(t, ok)
	assert.Equal(t, 17, tag)

	path := filepath.Join(t.TempDir(), "tags.yaml")
	require.NoError(t, os.WriteFile(path, []byte("players:\n  Maru: 12\n  Clem: 3400\n"), 0o644))

	table, err = LoadTagTable(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Maru": 12, "Clem": 3400}, table.Players)
	assert.Equal(t, 1, table.Races["Terran"], "races keep built-in values when absent")

	_, err = LoadTagTable(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
