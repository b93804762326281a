package ffprobe

import (
	"fmt"
	"math"
	"strings"
)

// Expectation describes what a finished render must look like.
type Expectation struct {
	Width    int
	Height   int
	Duration float64
	// Tolerance is the allowed duration drift in seconds.
	Tolerance float64
	HasAudio  bool
}

// ValidateRender returns every mismatch between r and want, or nil.
func ValidateRender(r Result, want Expectation) error {
	var problems []string
	video, ok := r.VideoStream()
	switch {
	case !ok:
		problems = append(problems, "no video stream")
	case video.Width != want.Width || video.Height != want.Height:
		problems = append(problems, fmt.Sprintf("frame size %dx%d, want %dx%d", video.Width, video.Height, want.Width, want.Height))
	}
	if want.HasAudio && r.AudioStreamCount() == 0 {
		problems = append(problems, "no audio stream")
	}
	if want.Duration > 0 {
		got := r.DurationSeconds()
		tolerance := want.Tolerance
		if tolerance <= 0 {
			tolerance = 0.5
		}
		if math.IsNaN(got) || math.Abs(got-want.Duration) > tolerance {
			problems = append(problems, fmt.Sprintf("duration %.2fs, want %.2fs", got, want.Duration))
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("render output invalid: %s", strings.Join(problems, "; "))
}
