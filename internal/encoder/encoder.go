package encoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"
)

var commandContext = exec.CommandContext

// ErrStopped reports an encoder process that is no longer accepting frames.
var ErrStopped = errors.New("encoder stopped")

// Settings describe the encoded output.
type Settings struct {
	FFmpegBinary string
	Width        int
	Height       int
	FrameRate    int
	VideoCodec   string
	Preset       string
	CRF          int
	AudioCodec   string
	AudioBitrate string
}

func (s Settings) binary() string {
	if b := strings.TrimSpace(s.FFmpegBinary); b != "" {
		return b
	}
	return "ffmpeg"
}

// FrameBytes returns the size of one raw RGBA frame.
func (s Settings) FrameBytes() int { return s.Width * s.Height * 4 }

// Video consumes raw frames.
type Video interface {
	// WriteFrame appends one RGBA frame.
	WriteFrame(frame []byte) error
	// Alive returns nil while the encoder is still accepting frames.
	Alive() error
	// Close flushes the stream and waits for the encoder to finish.
	Close() error
	// Abort stops the encoder and discards its output.
	Abort()
}

// Starter launches a video encoder writing to path.
type Starter interface {
	StartVideo(ctx context.Context, settings Settings, path string) (Video, error)
}

// FFmpeg starts ffmpeg processes.
type FFmpeg struct{}

// StartVideo implements Starter.
func (FFmpeg) StartVideo(ctx context.Context, settings Settings, path string) (Video, error) {
	if settings.Width <= 0 || settings.Height <= 0 || settings.FrameRate <= 0 {
		return nil, fmt.Errorf("start encoder: invalid geometry %dx%d@%d", settings.Width, settings.Height, settings.FrameRate)
	}
	cmd := commandContext(ctx, settings.binary(), VideoArgs(settings, path)...) //nolint:gosec
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("start encoder: stdin pipe: %w", err)
	}
	p := &process{
		cmd:        cmd,
		stdin:      stdin,
		stderr:     &tailBuffer{limit: 4096},
		done:       make(chan struct{}),
		frameBytes: settings.FrameBytes(),
	}
	cmd.Stderr = p.stderr
	cmd.WaitDelay = 5 * time.Second
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start encoder: %w", err)
	}
	go func() {
		p.waitErr = cmd.Wait()
		close(p.done)
	}()
	return p, nil
}

// VideoArgs builds the ffmpeg arguments for a raw RGBA pipe encode.
func VideoArgs(s Settings, path string) []string {
	codec := s.VideoCodec
	if codec == "" {
		codec = "libx264"
	}
	args := []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", s.Width, s.Height),
		"-r", strconv.Itoa(s.FrameRate),
		"-i", "pipe:0",
		"-an",
		"-c:v", codec,
	}
	if s.Preset != "" {
		args = append(args, "-preset", s.Preset)
	}
	args = append(args,
		"-crf", strconv.Itoa(s.CRF),
		"-pix_fmt", "yuv420p",
		path,
	)
	return args
}

type process struct {
	cmd        *exec.Cmd
	stdin      io.WriteCloser
	stderr     *tailBuffer
	done       chan struct{}
	waitErr    error
	frameBytes int
	closeOnce  sync.Once
}

func (p *process) exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

func (p *process) stoppedErr() error {
	if p.waitErr != nil {
		return fmt.Errorf("%w: %v: %s", ErrStopped, p.waitErr, p.stderr.String())
	}
	return fmt.Errorf("%w: process exited", ErrStopped)
}

func (p *process) WriteFrame(frame []byte) error {
	if len(frame) != p.frameBytes {
		return fmt.Errorf("write frame: got %d bytes, want %d", len(frame), p.frameBytes)
	}
	if p.exited() {
		return p.stoppedErr()
	}
	if _, err := p.stdin.Write(frame); err != nil {
		if p.exited() {
			return p.stoppedErr()
		}
		return fmt.Errorf("%w: write frame: %v", ErrStopped, err)
	}
	return nil
}

func (p *process) Alive() error {
	if p.exited() {
		return p.stoppedErr()
	}
	return nil
}

func (p *process) Close() error {
	var closeErr error
	p.closeOnce.Do(func() { closeErr = p.stdin.Close() })
	<-p.done
	if p.waitErr != nil {
		return fmt.Errorf("encoder exit: %w: %s", p.waitErr, p.stderr.String())
	}
	if closeErr != nil && !errors.Is(closeErr, io.ErrClosedPipe) {
		return fmt.Errorf("encoder close: %w", closeErr)
	}
	return nil
}

func (p *process) Abort() {
	p.closeOnce.Do(func() { _ = p.stdin.Close() })
	if !p.exited() && p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	<-p.done
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	buf   bytes.Buffer
	limit int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf.Write(p)
	if extra := t.buf.Len() - t.limit; extra > 0 {
		t.buf.Next(extra)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.TrimSpace(t.buf.String())
}
