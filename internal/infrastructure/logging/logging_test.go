package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want slog.Level
		err  bool
	}{
		{"debug", slog.LevelDebug, false},
		{"", slog.LevelInfo, false},
		{" INFO ", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.name)
			if tt.err {
				assert.ErrorContains(t, err, "invalid log level")
				return
			}
			assert.NilError(t, err)
			assert.Equal(t, got, tt.want)
		})
	}
}

func TestSetupLoggerConsoleOnly(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := SetupLogger(Options{Level: "warn", Output: &buf})
	assert.NilError(t, err)
	defer closeFn()

	logger.Info("hidden")
	logger.Warn("shown", "table", "items")

	out := buf.String()
	assert.Assert(t, !strings.Contains(out, "hidden"))
	assert.Assert(t, strings.Contains(out, "msg=shown"))
	assert.Assert(t, strings.Contains(out, "table=items"))
}

func TestSetupLoggerRejectsLevel(t *testing.T) {
	_, _, err := SetupLogger(Options{Level: "chatty"})
	assert.ErrorContains(t, err, "chatty")
}

func TestMultiHandlerFansOut(t *testing.T) {
	var debug, warn bytes.Buffer
	multi := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&warn, &slog.HandlerOptions{Level: slog.LevelWarn}),
	}}
	assert.Assert(t, multi.Enabled(context.Background(), slog.LevelDebug))

	logger := slog.New(multi).With("table_id", "t1").WithGroup("op")
	logger.Debug("index built", "keys", "code")
	logger.Warn("seek failed", "recno", 3)

	assert.Assert(t, strings.Contains(debug.String(), "index built"))
	assert.Assert(t, strings.Contains(debug.String(), "op.keys=code"))
	assert.Assert(t, !strings.Contains(warn.String(), "index built"))
	assert.Assert(t, strings.Contains(warn.String(), "table_id=t1"))
	assert.Assert(t, strings.Contains(warn.String(), "op.recno=3"))
}
