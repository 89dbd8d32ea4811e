package logger

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestForComponentTagsOutput(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	var buf bytes.Buffer
	InitWithWriter(&buf)

	ForScanner().Info().Int("page", 3).Msg("scanned list page")

	out := buf.String()
	assert.Contains(t, out, "scanned list page")
	assert.Contains(t, out, "scanner")
	assert.Contains(t, out, "page")
}

func TestLogLevelFromEnvironment(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("BUILDORDER_ENVIRONMENT", "production")
	assert.Equal(t, zerolog.InfoLevel, getLogLevel())

	t.Setenv("BUILDORDER_ENVIRONMENT", "development")
	assert.Equal(t, zerolog.DebugLevel, getLogLevel())

	t.Setenv("LOG_LEVEL", "warn")
	assert.Equal(t, zerolog.WarnLevel, getLogLevel())

	t.Setenv("LOG_LEVEL", "not-a-level")
	assert.Equal(t, zerolog.InfoLevel, getLogLevel())
}

func TestLogErrorIncludesCause(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	var buf bytes.Buffer
	InitWithWriter(&buf)

	LogError("exporter", errors.New("disk full"), "failed to write %s", "out.json")

	assert.Contains(t, buf.String(), "disk full")
	assert.Contains(t, buf.String(), "failed to write out.json")
}
