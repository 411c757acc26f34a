package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		env   string
		level string
		want  zapcore.Level
	}{
		{"dev", "debug", zapcore.DebugLevel},
		{"prod", "warn", zapcore.WarnLevel},
		{"dev", "ERROR", zapcore.ErrorLevel},
		{"dev", "nonsense", zapcore.InfoLevel},
		{"prod", "", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.env+"/"+tt.level, func(t *testing.T) {
			log, err := New(tt.env, tt.level)
			require.NoError(t, err)
			require.NotNil(t, log.Logger)

			assert.True(t, log.Core().Enabled(tt.want))
			if tt.want > zapcore.DebugLevel {
				assert.False(t, log.Core().Enabled(tt.want-1))
			}
		})
	}
}

func TestNamedAndNop(t *testing.T) {
	log := NewNop().Named("agent")
	require.NotNil(t, log)
	log.Info("ничего не пишется")
	assert.NoError(t, log.Sync())
}
