package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorHandlerWritesAttributes(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewColorHandler(&buf, slog.LevelInfo, false))

	log.With("component", "server").Info("request served", "status", 200, "path", "/graph_recommend")

	line := buf.String()
	assert.Contains(t, line, "INFO")
	assert.Contains(t, line, "request served")
	assert.Contains(t, line, "component=server")
	assert.Contains(t, line, "status=200")
	assert.Contains(t, line, "path=/graph_recommend")
	assert.NotContains(t, line, "\033[")
}

func TestColorHandlerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewColorHandler(&buf, slog.LevelWarn, false))

	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestColorHandlerColors(t *testing.T) {
	tests := []struct {
		name  string
		level slog.Level
		msg   string
		color string
	}{
		{name: "error is red", level: slog.LevelError, msg: "failed", color: colorRed},
		{name: "warn is yellow", level: slog.LevelWarn, msg: "slow", color: colorYellow},
		{name: "graph operation is green", level: slog.LevelInfo, msg: "Querying specimen graph", color: colorGreen},
		{name: "plain info has no colour", level: slog.LevelInfo, msg: "starting", color: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := slog.New(NewColorHandler(&buf, slog.LevelDebug, true))
			log.Log(t.Context(), tt.level, tt.msg)

			if tt.color == "" {
				assert.False(t, strings.HasPrefix(buf.String(), "\033["))
				return
			}
			assert.True(t, strings.HasPrefix(buf.String(), tt.color))
			assert.Contains(t, buf.String(), colorReset)
		})
	}
}

func TestColorHandlerGroups(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewColorHandler(&buf, slog.LevelInfo, false))

	log.WithGroup("request").Info("done", "id", "abc", slog.Group("upstream", "stage", "embed"))

	assert.Contains(t, buf.String(), "request.id=abc")
	assert.Contains(t, buf.String(), "request.upstream.stage=embed")
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, "json", slog.LevelInfo)
	log.Info("hello", "key", "value")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "value", entry["key"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}
