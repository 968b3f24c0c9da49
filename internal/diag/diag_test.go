package diag

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"self-healing-kernel/internal/config"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("INFO"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("bogus"))
}

func TestNewWithWriter(t *testing.T) {
	t.Run("JSONFormat", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewWithWriter(config.LogConfig{Level: "info", Format: "json"}, &buf)

		logger.Info("server started", zap.String("addr", ":8080"))
		require.NoError(t, logger.Sync())

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "server started", line["msg"])
		assert.Equal(t, ":8080", line["addr"])
		assert.Equal(t, "info", line["level"])
	})

	t.Run("ConsoleFormat", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewWithWriter(config.LogConfig{Level: "debug", Format: "console"}, &buf)

		logger.Debug("tick", zap.Int("crashed", 3))
		require.NoError(t, logger.Sync())

		assert.Contains(t, buf.String(), "tick")
		assert.Contains(t, buf.String(), `"crashed": 3`)
	})

	t.Run("LevelFilters", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewWithWriter(config.LogConfig{Level: "warn", Format: "json"}, &buf)

		logger.Info("hidden")
		logger.Debug("hidden too")
		require.NoError(t, logger.Sync())

		assert.Empty(t, buf.String())
	})
}
