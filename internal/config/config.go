// Package config loads the service tunables from the environment. CLI
// flags cover presentation concerns; everything that shapes a batch run
// (credentials, rate limits, retry policy, cache TTL) defaults here.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Env holds the environment-backed defaults for one process.
type Env struct {
	// APIKey is handed to the generator providers. The simulated providers
	// only require it to be non-empty.
	APIKey string `env:"SCRIPTFORGE_API_KEY" envDefault:"simulated-key"`

	ImageRatePerSec float64 `env:"SCRIPTFORGE_IMAGE_RATE" envDefault:"5"`
	ImageBurst      int     `env:"SCRIPTFORGE_IMAGE_BURST" envDefault:"5"`
	TTSRatePerSec   float64 `env:"SCRIPTFORGE_TTS_RATE" envDefault:"10"`
	TTSBurst        int     `env:"SCRIPTFORGE_TTS_BURST" envDefault:"10"`

	MaxAttempts    int           `env:"SCRIPTFORGE_MAX_ATTEMPTS" envDefault:"3"`
	RetryBaseDelay time.Duration `env:"SCRIPTFORGE_RETRY_BASE_DELAY" envDefault:"200ms"`
	RetryMaxDelay  time.Duration `env:"SCRIPTFORGE_RETRY_MAX_DELAY" envDefault:"5s"`

	CacheTTL time.Duration `env:"SCRIPTFORGE_CACHE_TTL" envDefault:"1h"`
}

// FromEnv parses the process environment into an Env.
func FromEnv() (Env, error) {
	var cfg Env
	if err := env.Parse(&cfg); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
