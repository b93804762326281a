package deps

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"testing"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	if err := os.WriteFile(present, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Optional", Command: "also-not-present", Optional: true},
		{Name: "Blank"},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Detail != "" {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" || results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected missing status %#v", results[1])
	}
	if results[3].Detail != "command not configured" {
		t.Fatalf("unexpected blank status %#v", results[3])
	}

	missing := Missing(results)
	if len(missing) != 2 || missing[0].Name != "Missing" || missing[1].Name != "Blank" {
		t.Fatalf("Missing = %#v", missing)
	}
}

const encoderListing = `Encoders:
 V..... = Video
 A..... = Audio
 ------
 V....D libx264              libx264 H.264 / AVC / MPEG-4 AVC (codec h264)
 V....D libx265              libx265 H.265 / HEVC (codec hevc)
 A....D aac                  AAC (Advanced Audio Coding)
`

func TestCheckEncoders(t *testing.T) {
	orig := commandContext
	t.Cleanup(func() { commandContext = orig })
	commandContext = func(ctx context.Context, _ string, _ ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "printf", "%s", encoderListing)
	}

	missing, err := CheckEncoders(context.Background(), "ffmpeg", "libx264", "aac", "copy", "libopus")
	if err != nil {
		t.Fatalf("CheckEncoders: %v", err)
	}
	if !slices.Equal(missing, []string{"libopus"}) {
		t.Fatalf("missing = %v, want [libopus]", missing)
	}
}

func TestCheckEncodersCommandFailure(t *testing.T) {
	orig := commandContext
	t.Cleanup(func() { commandContext = orig })
	commandContext = func(ctx context.Context, _ string, _ ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "false")
	}
	if _, err := CheckEncoders(context.Background(), "ffmpeg", "libx264"); err == nil {
		t.Fatal("expected error from failing ffmpeg")
	}
}

func TestParseEncodersIgnoresHeader(t *testing.T) {
	got := parseEncoders([]byte(encoderListing))
	for _, name := range []string{"libx264", "libx265", "aac"} {
		if _, ok := got[name]; !ok {
			t.Errorf("missing %s", name)
		}
	}
	if _, ok := got["="]; ok || len(got) != 3 {
		t.Errorf("unexpected entries %v", got)
	}
}
