package ffprobe

import (
	"math"
	"strings"
	"testing"
)

const sampleJSON = `{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video", "width": 1080, "height": 1920, "pix_fmt": "yuv420p", "avg_frame_rate": "30/1", "nb_frames": "270"},
    {"index": 1, "codec_name": "aac", "codec_type": "audio", "sample_rate": "48000", "channels": 2}
  ],
  "format": {"filename": "out.mp4", "nb_streams": 2, "duration": "9.010000", "size": "1000", "format_name": "mov,mp4,m4a,3gp,3g2,mj2"}
}`

func TestParseAndHelpers(t *testing.T) {
	result, err := Parse([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if result.VideoStreamCount() != 1 || result.AudioStreamCount() != 1 {
		t.Fatalf("unexpected stream counts v=%d a=%d", result.VideoStreamCount(), result.AudioStreamCount())
	}
	if result.DurationSeconds() != 9.01 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 1000 {
		t.Fatalf("unexpected size: %d", result.SizeBytes())
	}
	video, ok := result.VideoStream()
	if !ok || video.FrameRate() != 30 {
		t.Fatalf("unexpected video stream %+v", video)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse([]byte("not json")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{Format: Format{Duration: "bad", Size: "-1"}}
	if !math.IsNaN(result.DurationSeconds()) {
		t.Fatalf("expected duration NaN, got %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 0 {
		t.Fatalf("expected size 0, got %d", result.SizeBytes())
	}
	if got := (Stream{AvgFrameRate: "0/0"}).FrameRate(); got != 0 {
		t.Fatalf("expected 0 frame rate, got %v", got)
	}
}

func TestValidateRender(t *testing.T) {
	result, err := Parse([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tests := []struct {
		name    string
		result  Result
		want    Expectation
		problem string
	}{
		{"matches", result, Expectation{Width: 1080, Height: 1920, Duration: 9, HasAudio: true}, ""},
		{"wrong size", result, Expectation{Width: 720, Height: 1280}, "frame size 1080x1920"},
		{"too short", result, Expectation{Width: 1080, Height: 1920, Duration: 12}, "duration 9.01s"},
		{"missing audio", Result{Streams: result.Streams[:1], Format: result.Format}, Expectation{Width: 1080, Height: 1920, HasAudio: true}, "no audio stream"},
		{"missing video", Result{}, Expectation{Width: 1080, Height: 1920}, "no video stream"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRender(tt.result, tt.want)
			if tt.problem == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.problem) {
				t.Fatalf("error = %v, want mention of %q", err, tt.problem)
			}
		})
	}
}
