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

func TestBuildConfig(t *testing.T) {
	tests := []struct {
		env        string
		level      zapcore.Level
		encoding   string
		withCaller bool
	}{
		{"development", zap.DebugLevel, "console", false},
		{"debug", zap.DebugLevel, "console", true},
		{" Production ", zap.InfoLevel, "json", false},
		{"", zap.InfoLevel, "console", false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg, withCaller := buildConfig(tt.env)
			assert.Equal(t, tt.level, cfg.Level.Level())
			assert.Equal(t, tt.encoding, cfg.Encoding)
			assert.Equal(t, tt.withCaller, withCaller)
			assert.Equal(t, "timestamp", cfg.EncoderConfig.TimeKey)
		})
	}
}

func TestNew(t *testing.T) {
	l, err := New("contactd", "production")
	require.NoError(t, err)
	require.NotNil(t, l)
	l.SafeSync()
}

func TestWithKeepsFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := NewWithCore(core).With("client_id", "c-1")
	l.Infow("hello")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "c-1", logs.All()[0].ContextMap()["client_id"])
}

func TestIsIgnorableSyncError(t *testing.T) {
	assert.False(t, isIgnorableSyncError(nil))
	assert.True(t, isIgnorableSyncError(errors.New("sync /dev/stdout: invalid argument")))
	assert.True(t, isIgnorableSyncError(errors.New("sync /dev/stdout: inappropriate ioctl for device")))
	assert.False(t, isIgnorableSyncError(errors.New("disk full")))
}

func TestNopDoesNotPanic(t *testing.T) {
	l := NewNop()
	l.Infow("ignored", "k", "v")
	l.SafeSync()

	var nilLogger *Logger
	nilLogger.SafeSync()
}
