package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/RaduRS/automan-sub000/internal/notifications"
	"github.com/RaduRS/automan-sub000/internal/testsupport"
)

type captured struct {
	title    string
	body     string
	tags     string
	priority string
}

func newServer(t *testing.T, status int) (*httptest.Server, func() []captured) {
	t.Helper()
	var mu sync.Mutex
	var got []captured
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		got = append(got, captured{
			title:    r.Header.Get("Title"),
			body:     string(body),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
		})
		mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []captured {
		mu.Lock()
		defer mu.Unlock()
		return append([]captured(nil), got...)
	}
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	svc := notifications.NewService(cfg)
	if err := svc.NotifyRenderCompleted(context.Background(), "x", "/tmp/x.mp4", 1, time.Second); err != nil {
		t.Fatalf("noop returned %v", err)
	}
	if err := svc.TestNotification(context.Background()); err != nil {
		t.Fatalf("noop returned %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	srv, received := newServer(t, http.StatusOK)
	cfg := testsupport.NewConfig(t, testsupport.WithNtfyTopic(srv.URL))
	svc := notifications.NewService(cfg)
	ctx := context.Background()

	if err := svc.NotifyRenderCompleted(ctx, "Morning Routine", "/out/morning.mp4", 42.5, 95*time.Second); err != nil {
		t.Fatalf("NotifyRenderCompleted: %v", err)
	}
	if err := svc.NotifyNarrationTimed(ctx, "Morning Routine", 6); err != nil {
		t.Fatalf("NotifyNarrationTimed: %v", err)
	}
	if err := svc.NotifyError(ctx, errors.New("encoder stopped unexpectedly"), "render"); err != nil {
		t.Fatalf("NotifyError: %v", err)
	}

	got := received()
	if len(got) != 3 {
		t.Fatalf("received %d notifications, want 3", len(got))
	}
	want := []captured{
		{
			title:    "Automan - Render Complete",
			body:     "✅ Rendered Morning Routine (42.5s of video in 1m35s)\nFile: /out/morning.mp4",
			tags:     "automan,render,completed",
			priority: "high",
		},
		{
			title: "Automan - Narration Timed",
			body:  "🎙️ Morning Routine: narration split across 6 scenes",
			tags:  "automan,narration,timed",
		},
		{
			title:    "Automan - Error",
			body:     "❌ Error with render: encoder stopped unexpectedly",
			tags:     "automan,error,alert",
			priority: "high",
		},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("notification %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestNtfyServiceRespectsSwitches(t *testing.T) {
	srv, received := newServer(t, http.StatusOK)
	cfg := testsupport.NewConfig(t, testsupport.WithNtfyTopic(srv.URL))
	cfg.Notifications.RenderComplete = false
	cfg.Notifications.Errors = false
	svc := notifications.NewService(cfg)
	ctx := context.Background()

	_ = svc.NotifyRenderCompleted(ctx, "a", "", 1, time.Second)
	_ = svc.NotifyNarrationTimed(ctx, "a", 1)
	_ = svc.NotifyError(ctx, errors.New("boom"), "")
	if err := svc.TestNotification(ctx); err != nil {
		t.Fatalf("TestNotification: %v", err)
	}
	got := received()
	if len(got) != 1 || got[0].title != "Automan - Test" {
		t.Fatalf("expected only the test notification, got %+v", got)
	}
}

func TestNtfyServiceReportsHTTPErrors(t *testing.T) {
	srv, _ := newServer(t, http.StatusForbidden)
	cfg := testsupport.NewConfig(t, testsupport.WithNtfyTopic(srv.URL))
	err := notifications.NewService(cfg).TestNotification(context.Background())
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected 403 error, got %v", err)
	}
}
