package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWriter(&buf, "warn", "json")
	require.NoError(t, err)

	log.Info("catalog: refreshed")
	log.Warn("catalog: skipped", "dir", "sales")
	require.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("\n")))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "catalog: skipped", line["msg"])
	assert.Equal(t, "sales", line["dir"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewWriterRejectsUnknownFormat(t *testing.T) {
	_, err := NewWriter(&bytes.Buffer{}, "info", "xml")
	assert.Error(t, err)
}
