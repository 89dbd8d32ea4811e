package errors

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatusErrorNamesURLAndStatus(t *testing.T) {
	err := NewStatus("https://example.com/123/", 503)

	assert.Equal(t, ErrorTypeStatus, err.Type)
	assert.Contains(t, err.Error(), "https://example.com/123/")
	assert.Contains(t, err.Error(), "status 503")
}

func TestNetworkErrorUnwraps(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := NewNetwork("https://example.com/replays/", "request failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestIsType(t *testing.T) {
	wrapped := fmt.Errorf("scan page 2: %w", NewRateLimit("https://example.com", time.Minute))

	assert.True(t, IsType(wrapped, ErrorTypeRateLimit))
	assert.False(t, IsType(wrapped, ErrorTypeNetwork))
	assert.False(t, IsType(fmt.Errorf("plain"), ErrorTypeRateLimit))
}

func TestCooldownErrorHasNoStatus(t *testing.T) {
	err := NewCooldown("https://example.com/2/")

	assert.Equal(t, ErrorTypeRateLimit, err.Type)
	assert.Zero(t, err.Status)
	assert.Contains(t, err.Error(), "cooldown active")
	assert.NotContains(t, err.Error(), "status 429")
}
