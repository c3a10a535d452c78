package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceHandler(t *testing.T) {
	tests := []struct {
		name       string
		minLevel   slog.Level
		logLevel   slog.Level
		wantSource bool
	}{
		{"info below warn threshold", slog.LevelWarn, slog.LevelInfo, false},
		{"warn at threshold", slog.LevelWarn, slog.LevelWarn, true},
		{"error above threshold", slog.LevelWarn, slog.LevelError, true},
		{"debug threshold shows info", slog.LevelDebug, slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			base := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
			log := slog.New(newSourceHandler(base, tt.minLevel))

			log.Log(context.Background(), tt.logLevel, "attachment removed", "attachment_id", "att_1")

			out := buf.String()
			assert.Contains(t, out, "attachment_id=att_1")
			if tt.wantSource {
				assert.Contains(t, out, "source=")
				assert.Contains(t, out, "sourcehandler_test.go")
			} else {
				assert.NotContains(t, out, "source=")
			}
		})
	}
}

func TestSourceHandler_KeepsAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	base := slog.NewTextHandler(&buf, nil)
	log := slog.New(newSourceHandler(base, slog.LevelError)).With("component", "store").WithGroup("file")

	log.Info("stored", "name", "a.txt")

	assert.Contains(t, buf.String(), "component=store")
	assert.Contains(t, buf.String(), "file.name=a.txt")
}
