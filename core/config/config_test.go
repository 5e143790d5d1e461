package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/core/config"
)

type clientConfig struct {
	BaseURL string        `env:"TEST_AUTH_API_BASE_URL" envDefault:"http://localhost:8080"`
	Timeout time.Duration `env:"TEST_AUTH_HTTP_TIMEOUT" envDefault:"10s"`
}

type requiredConfig struct {
	Secret string `env:"TEST_AUTH_REQUIRED_SECRET,required"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg clientConfig
	require.NoError(t, config.Load(&cfg))

	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
}

func TestLoad_Cached(t *testing.T) {
	var first clientConfig
	require.NoError(t, config.Load(&first))

	// Changing the environment after the first load must not affect the
	// cached value for the same type.
	t.Setenv("TEST_AUTH_API_BASE_URL", "http://changed.example.com")

	var second clientConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, first, second)
}

func TestLoad_RequiredMissing(t *testing.T) {
	var cfg requiredConfig
	err := config.Load(&cfg)
	assert.ErrorIs(t, err, config.ErrParseFailed)
}

func TestLoad_NilPointer(t *testing.T) {
	var cfg *clientConfig
	assert.ErrorIs(t, config.Load(cfg), config.ErrNilConfig)
}

func TestMustLoad_PanicsOnFailure(t *testing.T) {
	assert.Panics(t, func() {
		var cfg requiredConfig
		config.MustLoad(&cfg)
	})
}
