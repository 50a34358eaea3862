package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestHandler_WritesAttrsAndRequestID(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, DefaultOptions)).With("component", "web").WithGroup("cycle")

	ctx := WithRequestID(context.Background(), "req-1")
	log.InfoContext(ctx, "image generated", "size", 42, Err(errors.New("boom")))

	out := buf.String()
	for _, want := range []string{"INFO", "image generated", "request_id=req-1", "component=web", "cycle.size=42", `cycle.error="boom"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestHandler_RespectsLevel(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, &Options{Level: slog.LevelWarn}))

	log.Info("hidden")
	log.Warn("shown", "reason", "two words")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record should be filtered: %q", out)
	}
	if !strings.Contains(out, `reason="two words"`) {
		t.Errorf("expected quoted value, got %q", out)
	}
}
