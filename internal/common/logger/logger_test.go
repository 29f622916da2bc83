package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewHonorsLevel(t *testing.T) {
	tests := []struct {
		level        string
		debugEnabled bool
		infoEnabled  bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"warn", false, false},
		{"error", false, false},
		{"garbage", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l := New(tt.level, "json")
			assert.Equal(t, tt.debugEnabled, l.Core().Enabled(zapcore.DebugLevel))
			assert.Equal(t, tt.infoEnabled, l.Core().Enabled(zapcore.InfoLevel))
		})
	}
}

func TestNewConsoleFormat(t *testing.T) {
	// Both formats must produce a usable logger.
	require.NotNil(t, New("info", "console"))
	require.NotNil(t, New("info", "json"))
}

func TestAdapterCarriesFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := NewZapAdapter(zap.New(core))

	log.WithFields(map[string]interface{}{"component": "agent"}).
		Info("query processed", map[string]interface{}{"intent": "general_query"})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "query processed", entry.Message)

	fields := entry.ContextMap()
	assert.Equal(t, "agent", fields["component"])
	assert.Equal(t, "general_query", fields["intent"])
}

func TestAdapterWithError(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := NewZapAdapter(zap.New(core))

	log.WithError(errors.New("fetch failed")).Error("dataset fetch failed", nil)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	assert.Equal(t, "fetch failed", entry.ContextMap()["error"])
}

func TestAdapterDebugBelowThresholdDropped(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := NewZapAdapter(zap.New(core))

	log.Debug("noise", nil)
	assert.Equal(t, 0, logs.Len())
}
