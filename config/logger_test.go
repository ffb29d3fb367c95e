package config

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewLoggerLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"WARN":    zerolog.WarnLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range cases {
		logger := LogConfig{Level: in}.NewLogger(&bytes.Buffer{})
		assert.Equal(t, want, logger.GetLevel(), "level %q", in)
	}
}

func TestNewLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := LogConfig{Level: "info"}.NewLogger(&buf)

	logger.Debug().Msg("hidden")
	logger.Info().Str("store", "sqlite").Msg("Starting server")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"store":"sqlite"`)
	assert.Contains(t, out, `"message":"Starting server"`)
}
