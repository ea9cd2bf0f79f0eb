package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, level zapcore.Level) *observer.ObservedLogs {
	core, logs := observer.New(level)
	prev := CoreLogger
	SetCoreLogger(zap.New(core).Sugar())
	t.Cleanup(func() { SetCoreLogger(prev) })
	return logs
}

func TestWithRequest(t *testing.T) {
	assert := assert.New(t)
	logs := observe(t, zapcore.InfoLevel)

	WithRequest("task-1", "order-1", "AK0031").With("stage", "Matching").Infof("matched %s", "AK0031")
	WithRequest("task-1", "order-1", "AK0031").Debugf("dropped")

	entries := logs.All()
	assert.Len(entries, 1)
	assert.Equal("matched AK0031", entries[0].Message)
	assert.Equal(map[string]any{
		"taskID":  "task-1",
		"orderID": "order-1",
		"siteID":  "AK0031",
		"stage":   "Matching",
	}, entries[0].ContextMap())
}

func TestIsDebug(t *testing.T) {
	observe(t, zapcore.DebugLevel)
	assert.True(t, IsDebug())
	assert.True(t, With("k", "v").IsDebug())
}

func TestInitFile(t *testing.T) {
	prevCore, prevGin := CoreLogger, GinLogger
	t.Cleanup(func() {
		SetCoreLogger(prevCore)
		SetGinLogger(prevGin)
	})

	dir := t.TempDir()
	require.NoError(t, Init(false, false, dir, DefaultRotateConfig))
	Infof("hello %s", "world")
	require.NoError(t, CoreLogger.Sync())

	data, err := os.ReadFile(filepath.Join(dir, CoreLogFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello world")
}
