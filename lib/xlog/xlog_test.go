package xlog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func decodeLines(t *testing.T, out *bytes.Buffer) []map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	entries := make([]map[string]any, 0, len(lines))
	for _, line := range lines {
		if len(line) == 0 {
			continue
		}
		entry := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestParseLogOptions(t *testing.T) {
	testcases := []struct {
		level    string
		expected LogLevel
		hasErr   bool
	}{
		{level: "", expected: LogLevelDebug},
		{level: "info", expected: LogLevelInfo},
		{level: " Warn ", expected: LogLevelWarn},
		{level: "ERROR", expected: LogLevelError},
		{level: "trace", expected: LogLevelDebug, hasErr: true},
	}
	for _, tc := range testcases {
		lvl, err := ParseLogLevel(tc.level)
		assert.Equal(t, tc.expected, lvl)
		if tc.hasErr {
			assert.ErrorIs(t, err, ErrUnknownLogOption)
		} else {
			assert.NoError(t, err)
		}
	}

	enc, err := ParseLogEncoder("Console")
	require.NoError(t, err)
	require.Equal(t, PlainText, enc)
	enc, err = ParseLogEncoder("")
	require.NoError(t, err)
	require.Equal(t, JSON, enc)
	_, err = ParseLogEncoder("xml")
	require.ErrorIs(t, err, ErrUnknownLogOption)
	require.Equal(t, "plaintext", PlainText.String())
}

func TestXLogger_Writer(t *testing.T) {
	out := &bytes.Buffer{}
	logger, err := NewXLogger(
		WithXLoggerWriter(out),
		WithXLoggerLevel(LogLevelInfo),
		WithXLoggerEncoder(JSON),
		WithXLoggerContextFieldExtract("replay", "replayID"),
		WithXLoggerContextFieldExtract("optional", ContextKeyMapToOmitempty),
	)
	require.NoError(t, err)
	require.Equal(t, "info", logger.Level())

	logger.Debug("dropped")
	logger.Info("insert", zap.Int64("key", 1))
	logger.Error(errors.New("boom"), "failed")
	ctx := context.WithValue(context.Background(), ContextKey("replay"), "r-1")
	logger.InfoContext(ctx, "with context")
	logger.Named("Tree").Warn("named")
	logger.Logf(zapcore.ErrorLevel, "formatted %d", 42)
	require.NoError(t, logger.Sync())

	entries := decodeLines(t, out)
	require.Len(t, entries, 5)
	assert.Equal(t, "insert", entries[0]["msg"])
	assert.Equal(t, "INFO", entries[0]["lvl"])
	assert.EqualValues(t, 1, entries[0]["key"])
	assert.Contains(t, entries[0]["callAt"], "xlog_test.go")
	assert.Equal(t, "boom", entries[1]["error"])
	assert.Equal(t, "r-1", entries[2]["replayID"])
	assert.NotContains(t, entries[2], "optional")
	assert.Equal(t, "Tree", entries[3]["component"])
	assert.Equal(t, "formatted 42", entries[4]["msg"])

	out.Reset()
	logger.IncreaseLogLevel(zapcore.DebugLevel)
	logger.DebugContext(context.Background(), "now visible")
	entries = decodeLines(t, out)
	require.Len(t, entries, 1)
	assert.Equal(t, "nil", entries[0]["replayID"])
}

func TestXLogger_EnvLevel(t *testing.T) {
	t.Setenv("XLOG_LVL", "warn")
	out := &bytes.Buffer{}
	logger, err := NewXLogger(WithXLoggerWriter(out), WithXLoggerEncoder(PlainText))
	require.NoError(t, err)
	require.Equal(t, "warn", logger.Level())
	logger.Info("dropped")
	logger.Warn("kept")
	require.NoError(t, logger.Sync())
	require.NotContains(t, out.String(), "dropped")
	require.Contains(t, out.String(), "kept")
}

func TestXLogger_InvalidOptions(t *testing.T) {
	_, err := NewXLogger(WithXLoggerEncoder(_encMax))
	require.ErrorIs(t, err, ErrUnknownLogOption)
	_, err = NewXLogger(WithXLoggerWriter(nil))
	require.ErrorIs(t, err, ErrUnknownLogOption)
	_, err = NewXLogger(WithXLoggerFileWriter(string(filepath.Separator)))
	require.Error(t, err)
}

func TestXLogger_FileAndTee(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "xtree.log")
	out := &bytes.Buffer{}
	logger, err := NewXLogger(
		WithXLoggerWriter(out),
		WithXLoggerFileWriter(filename),
		WithXLoggerLevel(LogLevelDebug),
	)
	require.NoError(t, err)
	logger.Info("both cores")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	require.Contains(t, string(data), "both cores")
	require.Contains(t, out.String(), "both cores")
}

func TestXLogger_Adapters(t *testing.T) {
	out := &bytes.Buffer{}
	logger, err := NewXLogger(WithXLoggerWriter(out), WithXLoggerLevel(LogLevelDebug))
	require.NoError(t, err)

	NewAntsXLogger(logger).Printf("worker %d exits", 3)
	var nilAnts *AntsXLogger
	nilAnts.Printf("ignored")

	fxLogger := NewFxXLogger(logger)
	fxLogger.LogEvent(&fxevent.Invoking{FunctionName: "main.replay"})
	fxLogger.LogEvent(&fxevent.Invoked{FunctionName: "main.replay", Err: errors.New("invoke failed")})
	fxLogger.LogEvent(&fxevent.Started{})
	require.NoError(t, logger.Sync())

	entries := decodeLines(t, out)
	require.Len(t, entries, 4)
	assert.Equal(t, "Ants", entries[0]["component"])
	assert.Equal(t, "worker 3 exits", entries[0]["msg"])
	assert.Equal(t, "Fx", entries[1]["component"])
	assert.Equal(t, "main.replay", entries[1]["function"])
	assert.Equal(t, "invoke failed", entries[2]["error"])
	assert.Equal(t, "RUNNING", entries[3]["msg"])
}

func TestNopXLogger(t *testing.T) {
	logger := NewNopXLogger()
	logger.Info("nothing")
	logger.Named("x").Error(errors.New("nothing"), "nothing")
	require.NoError(t, logger.Sync())
}
