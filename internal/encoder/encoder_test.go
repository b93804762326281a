package encoder

import (
	"context"
	"errors"
	"os/exec"
	"slices"
	"strings"
	"testing"
	"time"
)

func stubCommand(t *testing.T, script string) {
	t.Helper()
	prev := commandContext
	commandContext = func(ctx context.Context, _ string, _ ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "sh", "-c", script)
	}
	t.Cleanup(func() { commandContext = prev })
}

func testSettings() Settings {
	return Settings{
		Width:        4,
		Height:       2,
		FrameRate:    30,
		VideoCodec:   "libx264",
		Preset:       "veryfast",
		CRF:          20,
		AudioCodec:   "aac",
		AudioBitrate: "192k",
	}
}

func TestVideoArgs(t *testing.T) {
	args := VideoArgs(testSettings(), "/tmp/video.mp4")
	for _, want := range []string{"rawvideo", "rgba", "4x2", "30", "pipe:0", "libx264", "veryfast", "20", "yuv420p"} {
		if !slices.Contains(args, want) {
			t.Fatalf("video args %v missing %q", args, want)
		}
	}
	if args[len(args)-1] != "/tmp/video.mp4" {
		t.Fatalf("output path should be last, got %v", args)
	}
}

func TestMuxArgs(t *testing.T) {
	args := MuxArgs(Settings{}, "v.mp4", "a.wav", "out.mp4")
	joined := strings.Join(args, " ")
	for _, want := range []string{"-i v.mp4", "-i a.wav", "-c:v copy", "-c:a aac", "-b:a 192k", "+faststart"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("mux args %q missing %q", joined, want)
		}
	}
}

func TestVideoAcceptsFrames(t *testing.T) {
	stubCommand(t, "cat > /dev/null")
	v, err := FFmpeg{}.StartVideo(context.Background(), testSettings(), "out.mp4")
	if err != nil {
		t.Fatalf("StartVideo: %v", err)
	}
	frame := make([]byte, testSettings().FrameBytes())
	for range 3 {
		if err := v.WriteFrame(frame); err != nil {
			t.Fatalf("WriteFrame: %v", err)
		}
	}
	if err := v.Alive(); err != nil {
		t.Fatalf("Alive: %v", err)
	}
	if err := v.WriteFrame(frame[:3]); err == nil {
		t.Fatal("expected error for short frame")
	}
	if err := v.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestVideoReportsEarlyExit(t *testing.T) {
	stubCommand(t, "echo 'broken pipeline' >&2; exit 3")
	v, err := FFmpeg{}.StartVideo(context.Background(), testSettings(), "out.mp4")
	if err != nil {
		t.Fatalf("StartVideo: %v", err)
	}
	defer v.Abort()

	deadline := time.Now().Add(5 * time.Second)
	for v.Alive() == nil {
		if time.Now().After(deadline) {
			t.Fatal("encoder exit was never observed")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err := v.Alive(); !errors.Is(err, ErrStopped) || !strings.Contains(err.Error(), "broken pipeline") {
		t.Fatalf("Alive = %v, want ErrStopped with stderr", err)
	}
	if err := v.WriteFrame(make([]byte, testSettings().FrameBytes())); !errors.Is(err, ErrStopped) {
		t.Fatalf("WriteFrame = %v, want ErrStopped", err)
	}
}

func TestVideoCloseSurfacesExitError(t *testing.T) {
	stubCommand(t, "cat > /dev/null; echo boom >&2; exit 1")
	v, err := FFmpeg{}.StartVideo(context.Background(), testSettings(), "out.mp4")
	if err != nil {
		t.Fatalf("StartVideo: %v", err)
	}
	if err := v.Close(); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("Close = %v, want exit error with stderr", err)
	}
}

func TestVideoAbortKillsProcess(t *testing.T) {
	stubCommand(t, "exec sleep 30")
	v, err := FFmpeg{}.StartVideo(context.Background(), testSettings(), "out.mp4")
	if err != nil {
		t.Fatalf("StartVideo: %v", err)
	}
	done := make(chan struct{})
	go func() {
		v.Abort()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("Abort did not return")
	}
}

func TestStartVideoRejectsBadGeometry(t *testing.T) {
	s := testSettings()
	s.FrameRate = 0
	if _, err := (FFmpeg{}).StartVideo(context.Background(), s, "out.mp4"); err == nil {
		t.Fatal("expected error for zero frame rate")
	}
}

func TestMux(t *testing.T) {
	stubCommand(t, "exit 0")
	if err := (FFmpeg{}).Mux(context.Background(), testSettings(), "v.mp4", "a.wav", "out.mp4"); err != nil {
		t.Fatalf("Mux: %v", err)
	}
	stubCommand(t, "echo 'bad codec' >&2; exit 1")
	if err := (FFmpeg{}).Mux(context.Background(), testSettings(), "v.mp4", "a.wav", "out.mp4"); err == nil || !strings.Contains(err.Error(), "bad codec") {
		t.Fatalf("Mux = %v, want failure with stderr", err)
	}
}

func TestTailBufferKeepsEnd(t *testing.T) {
	tb := &tailBuffer{limit: 5}
	_, _ = tb.Write([]byte("abc"))
	_, _ = tb.Write([]byte("defgh"))
	if got := tb.String(); got != "defgh" {
		t.Fatalf("tail = %q, want %q", got, "defgh")
	}
}
