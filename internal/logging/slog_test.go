package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, c := range cases {
		if got := parseLevel(c.in); got != c.want {
			t.Errorf("parseLevel(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestSlogManager_LoggerBeforeSetup(t *testing.T) {
	m := NewSlogManager()
	if m.Logger() == nil {
		t.Fatal("expected default logger before Setup")
	}
}

func TestSlogManager_WritesToFileHandler(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "debug", nil)

	m.Logger().Debug("sampling window", "droneA", "Drone1", "droneB", "Drone2")

	out := buf.String()
	if !strings.Contains(out, "sampling window") {
		t.Errorf("log output missing message: %q", out)
	}
	if !strings.Contains(out, "droneA=Drone1") {
		t.Errorf("log output missing attribute: %q", out)
	}
}

func TestSlogManager_LevelFiltersFileHandler(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "warn", nil)

	m.Logger().Info("below threshold")

	if strings.Contains(buf.String(), "below threshold") {
		t.Errorf("info record should be filtered at warn level: %q", buf.String())
	}
}

func TestMultiHandler_FansOut(t *testing.T) {
	var a, b bytes.Buffer
	h := NewMultiHandler(
		slog.NewTextHandler(&a, nil),
		slog.NewTextHandler(&b, nil),
		nil,
	)

	logger := slog.New(h)
	logger.Info("fan out")

	if !strings.Contains(a.String(), "fan out") || !strings.Contains(b.String(), "fan out") {
		t.Errorf("expected record in both handlers: %q / %q", a.String(), b.String())
	}
}

func TestMultiHandler_EnabledWhenAnyHandlerEnabled(t *testing.T) {
	var buf bytes.Buffer
	h := NewMultiHandler(
		slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelError}),
		slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)

	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("expected Enabled(debug) when one handler accepts debug")
	}
}

func TestDetectorLogger_ForwardsToSlog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	dl := NewDetectorLogger(logger)
	dl.Debug("checking pair", "droneA", "a")
	dl.Info("run complete", "conflicts", 2)
	dl.Error("backend failed", "error", "boom")

	out := buf.String()
	for _, want := range []string{"checking pair", "run complete", "backend failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %q", want, out)
		}
	}
}

func TestLogFilePath(t *testing.T) {
	at := time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)
	p := LogFilePath("logs", "deconflict", at)
	if !strings.Contains(p, "deconflict.20250402_100000.log") {
		t.Errorf("unexpected path %q", p)
	}
}
