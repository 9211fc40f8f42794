package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestToZapLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, toZapLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, toZapLevel("WARN"))
	assert.Equal(t, zapcore.InfoLevel, toZapLevel("verbose"))
}

func TestNewFromZapWritesKeysAndValues(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewFromZap(zap.New(core))

	l.Info("cache hit", "key", "abc", "size", 3)

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "cache hit", entries[0].Message)
		assert.Equal(t, map[string]any{"key": "abc", "size": int64(3)}, entries[0].ContextMap())
	}
}

func TestFromContext(t *testing.T) {
	l := NewFromZap(zap.NewNop())

	assert.Same(t, l, FromContext(WithLogger(context.Background(), l)))
	assert.NotNil(t, FromContext(context.Background()))
}
