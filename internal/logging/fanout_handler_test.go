package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

var testTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("disk full") }

func TestNewFanoutHandlerCollapses(t *testing.T) {
	if _, ok := newFanoutHandler(nil, nil).(noopHandler); !ok {
		t.Fatal("expected noop handler when nothing is supplied")
	}
	single := slog.NewTextHandler(&bytes.Buffer{}, nil)
	if got := newFanoutHandler(nil, single); got != single {
		t.Fatalf("expected single handler to be returned as-is, got %T", got)
	}
}

func TestFanoutHandlerRespectsEachLevel(t *testing.T) {
	var console, file bytes.Buffer
	consoleLevel := new(slog.LevelVar)
	consoleLevel.Set(slog.LevelWarn)
	h := newFanoutHandler(
		slog.NewTextHandler(&console, &slog.HandlerOptions{Level: consoleLevel}),
		slog.NewJSONHandler(&file, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	logger := slog.New(h).With("job_id", 4).WithGroup("render")

	logger.Info("frame written", "frame", 10)
	logger.Warn("scene placeholder", "scene_index", 2)

	if strings.Contains(console.String(), "frame written") {
		t.Fatalf("console should drop info lines:\n%s", console.String())
	}
	if !strings.Contains(console.String(), "scene placeholder") {
		t.Fatalf("console missing warning:\n%s", console.String())
	}
	for _, want := range []string{"frame written", "scene placeholder", `"job_id":4`, `"render":{"frame":10}`} {
		if !strings.Contains(file.String(), want) {
			t.Fatalf("file missing %q:\n%s", want, file.String())
		}
	}
}

func TestFanoutHandlerJoinsErrors(t *testing.T) {
	var buf bytes.Buffer
	ok := slog.NewTextHandler(&buf, nil)
	h := newFanoutHandler(ok, failingHandler{ok})

	err := h.Handle(context.Background(), slog.NewRecord(testTime, slog.LevelInfo, "msg", 0))
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected handler error, got %v", err)
	}
	if !strings.Contains(buf.String(), "msg") {
		t.Fatal("healthy handler should still receive the record")
	}
}
