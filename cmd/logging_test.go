package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{" error ", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, parseLevel(test.level), "level %q", test.level)
	}
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(LogConfig{Level: "warn", JSON: true}, &buf)
	l.Info().Msg("hidden")
	l.Warn().Str("symbol", "TCS").Msg("shown")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line), "exactly one JSON line")
	assert.Equal(t, "shown", line["message"])
	assert.Equal(t, "TCS", line["symbol"])
	assert.Equal(t, "warn", line["level"])
}

func TestNewLoggerConsole(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(LogConfig{}, &buf)
	l.Debug().Msg("hidden")
	l.Info().Msg("cache cleaned")
	assert.Contains(t, buf.String(), "cache cleaned")
	assert.NotContains(t, buf.String(), "hidden")
}
