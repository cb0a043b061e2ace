package config_test

import (
	"testing"

	"github.com/devpubio/devpub/core/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokerConfig struct {
	MaxTopics int    `env:"TEST_BROKER_MAX_TOPICS" envDefault:"256"`
	LogLevel  string `env:"TEST_LOG_LEVEL" envDefault:"info"`
}

type overrideConfig struct {
	Value string `env:"TEST_CONFIG_OVERRIDE" envDefault:"default"`
}

type requiredConfig struct {
	Token string `env:"TEST_CONFIG_REQUIRED_TOKEN,required"`
}

func TestLoad(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		var cfg brokerConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, 256, cfg.MaxTopics)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("returns cached value on second load", func(t *testing.T) {
		var first brokerConfig
		require.NoError(t, config.Load(&first))

		var second brokerConfig
		require.NoError(t, config.Load(&second))
		assert.Equal(t, first, second)
	})

	t.Run("reads environment overrides", func(t *testing.T) {
		t.Setenv("TEST_CONFIG_OVERRIDE", "from-env")

		var cfg overrideConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "from-env", cfg.Value)
	})

	t.Run("fails on missing required variable", func(t *testing.T) {
		var cfg requiredConfig
		require.Error(t, config.Load(&cfg))
	})

	t.Run("rejects nil target", func(t *testing.T) {
		require.Error(t, config.Load[brokerConfig](nil))
	})
}

func TestMustLoad(t *testing.T) {
	t.Run("panics on failure", func(t *testing.T) {
		assert.Panics(t, func() {
			var cfg requiredConfig
			config.MustLoad(&cfg)
		})
	})

	t.Run("succeeds with defaults", func(t *testing.T) {
		assert.NotPanics(t, func() {
			var cfg brokerConfig
			config.MustLoad(&cfg)
		})
	})
}
