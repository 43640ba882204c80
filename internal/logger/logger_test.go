package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestConfigFor(t *testing.T) {
	tests := []struct {
		environment string
		encoding    string
		level       zapcore.Level
	}{
		{"production", "json", zapcore.InfoLevel},
		{"staging", "json", zapcore.InfoLevel},
		{"development", "console", zapcore.DebugLevel},
		{"", "console", zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			cfg := configFor(tt.environment)
			assert.Equal(t, tt.encoding, cfg.Encoding)
			assert.Equal(t, tt.level, cfg.Level.Level())
			assert.Equal(t, "caller", cfg.EncoderConfig.CallerKey)
		})
	}
}

func TestNew(t *testing.T) {
	log, err := New("development")
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))

	log, err = New("production")
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
}
