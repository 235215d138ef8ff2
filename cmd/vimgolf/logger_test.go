package main

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger("warn", "json", &buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelError))
}

func TestNewLogger_RejectsUnknownSettings(t *testing.T) {
	_, err := newLogger("loud", "text", &bytes.Buffer{})
	assert.ErrorContains(t, err, `unknown log level "loud"`)

	_, err = newLogger("info", "xml", &bytes.Buffer{})
	assert.ErrorContains(t, err, `unknown log format "xml"`)
}
