package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "simulated-key", cfg.APIKey)
	assert.Equal(t, 5.0, cfg.ImageRatePerSec)
	assert.Equal(t, 5, cfg.ImageBurst)
	assert.Equal(t, 10.0, cfg.TTSRatePerSec)
	assert.Equal(t, 10, cfg.TTSBurst)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 200*time.Millisecond, cfg.RetryBaseDelay)
	assert.Equal(t, 5*time.Second, cfg.RetryMaxDelay)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("SCRIPTFORGE_API_KEY", "real-key")
	t.Setenv("SCRIPTFORGE_IMAGE_RATE", "2.5")
	t.Setenv("SCRIPTFORGE_MAX_ATTEMPTS", "5")
	t.Setenv("SCRIPTFORGE_RETRY_BASE_DELAY", "50ms")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "real-key", cfg.APIKey)
	assert.Equal(t, 2.5, cfg.ImageRatePerSec)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, 50*time.Millisecond, cfg.RetryBaseDelay)
}

func TestFromEnvRejectsMalformedValues(t *testing.T) {
	t.Setenv("SCRIPTFORGE_CACHE_TTL", "not-a-duration")

	_, err := FromEnv()
	assert.Error(t, err)
}
