package logging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel(" warn "))
	assert.Equal(t, LevelInfo, ParseLevel("loud"))
	assert.Equal(t, LevelInfo, ParseLevel(""))
}

func TestLoggerFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := FromZap(zap.New(core)).With("tournament_id", "t1")

	logger.Warn("autosave failed", "error", errors.New("disk full"), "attempt", 2, "dangling")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "t1", fields["tournament_id"])
	assert.Equal(t, "disk full", fields["error"])
	assert.EqualValues(t, 2, fields["attempt"])
	assert.Contains(t, fields, "dangling")
}

func TestDefaultSwap(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	previous := Default()
	SetDefault(FromZap(zap.New(core)))
	defer SetDefault(previous)

	Info("hello", "k", "v")
	Debug("filtered")
	assert.Equal(t, 1, logs.Len())

	SetDefault(nil)
	assert.NotNil(t, Default())
}
