package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dtokit/src/infra/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"chatty":  slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(config.LogConfig{Level: "info", Format: "json"}, &buf)

	WithRequestID(log, "req-1").Info("joke created", "category", "pun")
	log.Debug("hidden")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "joke created", rec["msg"])
	assert.Equal(t, "req-1", rec["request_id"])
	assert.Equal(t, "pun", rec["category"])
}

func TestNewWithWriter_Plain(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(config.LogConfig{Level: "warn", Format: "plain"}, &buf)

	WithComponent(log, "seed").WithGroup("batch").Warn("skipped", "index", 2)
	log.Info("dropped")

	assert.Equal(t, "skipped component=seed batch.index=2\n", buf.String())
}

func TestNilGuards(t *testing.T) {
	assert.NotPanics(t, func() {
		Info(nil, "x")
		Warn(nil, "x")
		Error(nil, "x")
		Debug(nil, "x")
	})
	assert.NotPanics(t, func() { Discard().Error("x") })
}
