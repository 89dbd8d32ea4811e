package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	apperrors "sjsage522/buildorderworker/pkg/errors"
)

// DateLayout is the layout of the minimum-date filter
const DateLayout = "2006-01-02"

// Output formats
const (
	FormatJSON   = "json"
	FormatYAML   = "yaml"
	FormatSQLite = "sqlite"
)

// FormatFromPath infers the output format from a file extension,
// defaulting to JSON.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite
	default:
		return FormatJSON
	}
}

// Config represents the application configuration
type Config struct {
	// Site configuration
	BaseURL string

	// Crawl filters
	TargetPlayers []string
	TargetRace    string
	TagTablePath  string
	MaxPages      int
	AfterPlayedOn string
	Patch         string
	ProOnly       bool

	// Fetcher configuration
	MaxConcurrent  int
	RequestTimeout time.Duration
	CrawlDeadline  time.Duration
	RateLimitBlock time.Duration

	// Output configuration
	OutputPath   string
	OutputFormat string

	// Run scheduling; zero means a single run
	RunInterval time.Duration

	// Memcache configuration; empty uses the in-process cache
	MemcacheAddr string

	// Redis configuration
	RedisPublish         bool
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamCount     int
	RedisStreamMaxLength int

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	return &Config{
		BaseURL:              strings.TrimRight(getEnv("SPAWNINGTOOL_BASE_URL", "https://lotv.spawningtool.com"), "/"),
		TargetPlayers:        splitList(getEnv("TARGET_PLAYERS", "herO,ShoWTimE,Zoun")),
		TargetRace:           getEnv("TARGET_RACE", ""),
		TagTablePath:         getEnv("TAG_TABLE_PATH", ""),
		MaxPages:             getEnvInt("MAX_PAGES", 5),
		AfterPlayedOn:        getEnv("AFTER_PLAYED_ON", "2025-10-01"),
		Patch:                getEnv("PATCH", ""),
		ProOnly:              getEnvBool("PRO_ONLY", true),
		MaxConcurrent:        getEnvInt("MAX_CONCURRENT", 5),
		RequestTimeout:       time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 15)) * time.Second,
		CrawlDeadline:        time.Duration(getEnvInt("CRAWL_DEADLINE_SECONDS", 0)) * time.Second,
		RateLimitBlock:       time.Duration(getEnvInt("RATE_LIMIT_BLOCK_SECONDS", 0)) * time.Second,
		OutputPath:           getEnv("OUTPUT_PATH", "protoss_builds_post_patch.json"),
		OutputFormat:         strings.ToLower(getEnv("OUTPUT_FORMAT", "")),
		RunInterval:          time.Duration(getEnvInt("RUN_INTERVAL_SECONDS", 0)) * time.Second,
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", ""),
		RedisPublish:         getEnvBool("REDIS_PUBLISH", false),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:              getEnvInt("REDIS_DB", 0),
		RedisStream:          getEnv("REDIS_STREAM", "buildorders"),
		RedisStreamCount:     getEnvInt("REDIS_STREAM_COUNT", 1),
		RedisStreamMaxLength: getEnvInt("REDIS_STREAM_MAX_LENGTH", 1000),
		Environment:          getEnv("BUILDORDER_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for values the crawl cannot run with
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return apperrors.NewConfiguration("base URL is empty", nil)
	}
	if c.MaxConcurrent < 1 {
		return apperrors.NewConfiguration("MAX_CONCURRENT must be at least 1, got "+strconv.Itoa(c.MaxConcurrent), nil)
	}
	if c.RequestTimeout <= 0 {
		return apperrors.NewConfiguration("REQUEST_TIMEOUT_SECONDS must be positive", nil)
	}
	if c.MaxPages < 1 {
		return apperrors.NewConfiguration("MAX_PAGES must be at least 1, got "+strconv.Itoa(c.MaxPages), nil)
	}
	if c.AfterPlayedOn != "" {
		if _, err := time.Parse(DateLayout, c.AfterPlayedOn); err != nil {
			return apperrors.NewConfiguration("AFTER_PLAYED_ON must be YYYY-MM-DD", err)
		}
	}
	if c.CrawlDeadline < 0 || c.RunInterval < 0 || c.RateLimitBlock < 0 {
		return apperrors.NewConfiguration("durations must not be negative", nil)
	}
	if c.OutputPath == "" {
		return apperrors.NewConfiguration("OUTPUT_PATH is empty", nil)
	}
	switch c.ResolvedOutputFormat() {
	case FormatJSON, FormatYAML, FormatSQLite:
	default:
		return apperrors.NewConfiguration("unsupported OUTPUT_FORMAT "+c.OutputFormat, nil)
	}
	if c.RedisPublish && c.RedisStreamCount < 1 {
		return apperrors.NewConfiguration("REDIS_STREAM_COUNT must be at least 1", nil)
	}
	return nil
}

// ResolvedOutputFormat returns OutputFormat, or the format implied by the
// output file extension when none is set.
func (c *Config) ResolvedOutputFormat() string {
	if c.OutputFormat != "" {
		return c.OutputFormat
	}
	return FormatFromPath(c.OutputPath)
}

// MinimumDate returns the parsed AfterPlayedOn filter, zero when unset
func (c *Config) MinimumDate() time.Time {
	t, err := time.Parse(DateLayout, c.AfterPlayedOn)
	if err != nil {
		return time.Time{}
	}
	return t
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	return strings.TrimSpace(value)
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return value
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
