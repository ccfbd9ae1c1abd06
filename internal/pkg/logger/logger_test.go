package logger_test

import (
	"testing"

	"courierhub/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	t.Run("should build console and json loggers", func(t *testing.T) {
		for _, format := range []string{"console", "json"} {
			l, err := logger.New("debug", format)
			require.NoError(t, err)
			assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
		}
	})

	t.Run("should respect level", func(t *testing.T) {
		l, err := logger.New("warn", "json")
		require.NoError(t, err)
		assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
	})

	t.Run("should reject unknown level and format", func(t *testing.T) {
		_, err := logger.New("verbose", "json")
		require.Error(t, err)

		_, err = logger.New("info", "xml")
		require.Error(t, err)
	})
}

func TestComponent(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	logger.Component(zap.New(core), "ledger").Info("credited")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "ledger", logs.All()[0].ContextMap()["component"])

	assert.NotPanics(t, func() { logger.Component(nil, "x").Info("dropped") })
}
