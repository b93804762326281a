package encoder

import (
	"context"
	"fmt"
	"strings"
)

// Muxer combines a video and an audio file into the final artifact.
type Muxer interface {
	Mux(ctx context.Context, settings Settings, videoPath, audioPath, outputPath string) error
}

// Mux implements Muxer with ffmpeg. The video stream is copied and the audio
// is encoded to the configured codec.
func (FFmpeg) Mux(ctx context.Context, settings Settings, videoPath, audioPath, outputPath string) error {
	cmd := commandContext(ctx, settings.binary(), MuxArgs(settings, videoPath, audioPath, outputPath)...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("mux: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// MuxArgs builds the ffmpeg arguments for the final mux.
func MuxArgs(s Settings, videoPath, audioPath, outputPath string) []string {
	codec := s.AudioCodec
	if codec == "" {
		codec = "aac"
	}
	bitrate := s.AudioBitrate
	if bitrate == "" {
		bitrate = "192k"
	}
	return []string{
		"-hide_banner", "-nostdin", "-loglevel", "error", "-y",
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", codec,
		"-b:a", bitrate,
		"-movflags", "+faststart",
		outputPath,
	}
}
