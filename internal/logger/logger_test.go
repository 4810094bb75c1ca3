package logger_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weedai/weedcoco-go/internal/logger"
)

func TestLogLevels(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		configLevel   logger.LogLevel
		logFunc       func(l logger.Logger, msg string)
		shouldContain bool
	}{
		{"debug in debug level", logger.LogLevelDebug, func(l logger.Logger, m string) { l.Debug(m) }, true},
		{"debug in info level", logger.LogLevelInfo, func(l logger.Logger, m string) { l.Debug(m) }, false},
		{"info in info level", logger.LogLevelInfo, func(l logger.Logger, m string) { l.Info(m) }, true},
		{"warn in info level", logger.LogLevelInfo, func(l logger.Logger, m string) { l.Warn(m) }, true},
		{"info in warn level", logger.LogLevelWarn, func(l logger.Logger, m string) { l.Info(m) }, false},
		{"error in error level", logger.LogLevelError, func(l logger.Logger, m string) { l.Error(m) }, true},
		{"trace in debug level", logger.LogLevelDebug, func(l logger.Logger, m string) { l.Trace(m) }, false},
		{"trace in trace level", logger.LogLevelTrace, func(l logger.Logger, m string) { l.Trace(m) }, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			l := logger.NewSlogLogger(&buf, tc.configLevel)
			tc.logFunc(l, "probe message")

			assert.Equal(t, tc.shouldContain, bytes.Contains(buf.Bytes(), []byte("probe message")))
		})
	}
}

func TestModuleAndFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := logger.NewSlogLogger(&buf, logger.LogLevelInfo).
		Module("importer").
		Module("yolo").
		With(logger.String("dataset", "weeds"))

	l.Warn("skipping annotation file",
		logger.String("file", "a.txt"),
		logger.Int("line", 3),
		logger.Duration("elapsed", 1500*time.Millisecond))

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "module=importer.yolo")
	assert.Contains(t, out, "dataset=weeds")
	assert.Contains(t, out, "file=a.txt")
	assert.Contains(t, out, "line=3")
	assert.Contains(t, out, "elapsed=1.5s")
	assert.NotContains(t, out, "time=")
}

func TestWithContextAddsRunID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := logger.WithRunID(context.Background(), "run-123")
	logger.NewSlogLogger(&buf, logger.LogLevelInfo).WithContext(ctx).Info("started")

	assert.Contains(t, buf.String(), "run_id=run-123")
	assert.Equal(t, "run-123", logger.RunIDFromContext(ctx))
	assert.Empty(t, logger.RunIDFromContext(context.Background()))
}

func TestErrorField(t *testing.T) {
	t.Parallel()

	assert.Nil(t, logger.Error(nil).Value)
	assert.Equal(t, "error", logger.Error(os.ErrNotExist).Key)
	assert.Equal(t, os.ErrNotExist.Error(), logger.Error(os.ErrNotExist).Value)
}

func TestCentralLoggerWritesJSONFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "weedcoco.log")
	cl, err := logger.NewCentralLogger(logger.LoggingConfig{
		Level:     "error",
		File:      path,
		FileLevel: "debug",
	})
	require.NoError(t, err)

	cl.Module("deepweeds").Debug("row processed", logger.Int("row", 7))
	require.NoError(t, cl.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	scanner := bufio.NewScanner(f)
	require.True(t, scanner.Scan())

	var record map[string]any
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &record))
	assert.Equal(t, "row processed", record["msg"])
	assert.Equal(t, "deepweeds", record["module"])
	assert.InDelta(t, 7, record["row"], 0)
}

func TestIsValidLevel(t *testing.T) {
	t.Parallel()

	for _, lvl := range []string{"trace", "debug", "info", "warn", "error"} {
		assert.True(t, logger.IsValidLevel(lvl), lvl)
	}
	assert.False(t, logger.IsValidLevel("verbose"))
}
