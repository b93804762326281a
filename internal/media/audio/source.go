package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

// Decoder turns a media reference into samples.
type Decoder interface {
	Decode(ctx context.Context, ref string) (*Clip, error)
}

// Locator maps a composition reference to something ffmpeg can open.
type Locator func(ref string) (string, bool, error)

// Source decodes audio with ffmpeg into the shared sample format.
type Source struct {
	ffmpegBinary  string
	sampleRate    int
	workDir       string
	locate        Locator
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewSource returns a decoder writing scratch WAV files under workDir.
func NewSource(ffmpegBinary string, sampleRate int, workDir string, locate Locator) *Source {
	if strings.TrimSpace(ffmpegBinary) == "" {
		ffmpegBinary = "ffmpeg"
	}
	if sampleRate <= 0 {
		sampleRate = 48000
	}
	return &Source{
		ffmpegBinary: ffmpegBinary,
		sampleRate:   sampleRate,
		workDir:      workDir,
		locate:       locate,
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Source) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Decode transcodes ref to 16-bit stereo WAV and buffers every sample.
func (s *Source) Decode(ctx context.Context, ref string) (*Clip, error) {
	input := strings.TrimSpace(ref)
	if input == "" {
		return nil, errors.New("decode audio: empty reference")
	}
	if s.locate != nil {
		located, _, err := s.locate(ref)
		if err != nil {
			return nil, fmt.Errorf("decode audio: %w", err)
		}
		input = located
	}
	if err := os.MkdirAll(s.workDir, 0o755); err != nil {
		return nil, fmt.Errorf("decode audio: ensure work dir: %w", err)
	}
	dest := filepath.Join(s.workDir, "decode-"+uuid.NewString()+".wav")
	defer os.Remove(dest)

	if err := s.run(ctx, s.ffmpegBinary, buildDecodeArgs(input, s.sampleRate, dest)...); err != nil {
		return nil, fmt.Errorf("decode audio %s: %w", ref, err)
	}
	clip, err := ReadWAV(dest, s.sampleRate)
	if err != nil {
		return nil, fmt.Errorf("decode audio %s: %w", ref, err)
	}
	return clip, nil
}

func buildDecodeArgs(input string, sampleRate int, dest string) []string {
	return []string{
		"-hide_banner", "-nostdin", "-loglevel", "error", "-y",
		"-i", input,
		"-vn",
		"-ac", "2",
		"-ar", strconv.Itoa(sampleRate),
		"-c:a", "pcm_s16le",
		"-f", "wav",
		dest,
	}
}

func (s *Source) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// ReadWAV decodes a WAV file into a clip at sampleRate, resampling when the
// file was written at another rate.
func ReadWAV(path string, sampleRate int) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	stream, format, err := wav.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("read wav: %w", err)
	}
	defer stream.Close()

	target := Format(sampleRate)
	var src beep.Streamer = stream
	if format.SampleRate != target.SampleRate {
		src = beep.Resample(4, format.SampleRate, target.SampleRate, stream)
	}
	buf := beep.NewBuffer(target)
	buf.Append(src)
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("read wav samples: %w", err)
	}
	if buf.Len() == 0 {
		return nil, errors.New("read wav: no samples")
	}
	return NewClip(buf), nil
}
