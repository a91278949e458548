package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"", slog.LevelInfo, false},
		{"WARN", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJSONLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, slog.LevelDebug, "json").WithModel("house")
	l.LogMerge(context.Background(), 0, errors.New("conflict"))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "merge failed", rec["msg"])
	assert.Equal(t, "house", rec["model"])
	assert.Equal(t, "conflict", rec["error"])
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, slog.LevelWarn, "text")
	l.LogPurge(context.Background(), 3)
	assert.Empty(t, buf.String())
	l.LogTriangulate(context.Background(), 2, errors.New("degenerate"))
	assert.Contains(t, buf.String(), "face=2")
}

func TestNoopLogger(t *testing.T) {
	l := NoopLogger()
	assert.False(t, l.Enabled(context.Background(), slog.LevelError))
}
