package logsvc

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/trezcool/ratiba/core"
)

func newObservedLogger() (*RollbarLogger, *observer.ObservedLogs) {
	obs, logs := observer.New(zapcore.DebugLevel)
	logger := NewRollbarLogger(zap.New(obs), &core.Config{Env: "TEST", TestMode: true})
	return logger, logs
}

func TestRollbarLogger(t *testing.T) {
	tests := []struct {
		name       string
		log        func(l *RollbarLogger)
		wantLevel  zapcore.Level
		wantFields map[string]interface{}
	}{
		{
			name:      "info with extras",
			log:       func(l *RollbarLogger) { l.Info("class saved", map[string]interface{}{"class": "Math"}) },
			wantLevel: zapcore.InfoLevel,
			wantFields: map[string]interface{}{
				"class": "Math",
			},
		},
		{
			name:      "error",
			log:       func(l *RollbarLogger) { l.Error("save failed", errors.New("boom")) },
			wantLevel: zapcore.ErrorLevel,
			wantFields: map[string]interface{}{
				"error": "boom",
			},
		},
		{
			name:      "other args",
			log:       func(l *RollbarLogger) { l.Warn("odd", 42) },
			wantLevel: zapcore.WarnLevel,
			wantFields: map[string]interface{}{
				"arg0": int64(42),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := newObservedLogger()
			tt.log(logger)

			entries := logs.AllUntimed()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.wantLevel, entries[0].Level)
			ctx := entries[0].ContextMap()
			for k, v := range tt.wantFields {
				assert.Equal(t, v, ctx[k], k)
			}
		})
	}
}
