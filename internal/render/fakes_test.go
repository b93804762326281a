package render_test

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep"

	"github.com/RaduRS/automan-sub000/internal/encoder"
	"github.com/RaduRS/automan-sub000/internal/media/audio"
	"github.com/RaduRS/automan-sub000/internal/media/ffprobe"
)

const sampleRate = 48000

type fakeImages struct {
	fail map[string]bool
}

func (f fakeImages) Image(_ context.Context, ref string) (image.Image, error) {
	if f.fail[ref] {
		return nil, fmt.Errorf("fetch %s: 404", ref)
	}
	img := image.NewRGBA(image.Rect(0, 0, 40, 60))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	img.Set(0, 0, color.White)
	return img, nil
}

// fakeAudio decodes refs of known length into silent clips.
type fakeAudio struct {
	mu      sync.Mutex
	lengths map[string]float64
	calls   []string
}

func (f *fakeAudio) Decode(_ context.Context, ref string) (*audio.Clip, error) {
	f.mu.Lock()
	f.calls = append(f.calls, ref)
	f.mu.Unlock()
	secs, ok := f.lengths[ref]
	if !ok {
		return nil, fmt.Errorf("decode %s: no such clip", ref)
	}
	format := audio.Format(sampleRate)
	buf := beep.NewBuffer(format)
	buf.Append(beep.Silence(format.SampleRate.N(time.Duration(secs * float64(time.Second)))))
	return audio.NewClip(buf), nil
}

type mixEvent struct {
	kind  string
	voice int
	at    time.Duration
	clip  time.Duration
}

type recordingMixer struct {
	events []mixEvent
	voices int
	length time.Duration
}

func (m *recordingMixer) Start(clip *audio.Clip, at time.Duration) int {
	id := m.voices
	m.voices++
	m.events = append(m.events, mixEvent{kind: "start", voice: id, at: at, clip: clip.Duration()})
	return id
}

func (m *recordingMixer) Stop(voice int, at time.Duration) {
	m.events = append(m.events, mixEvent{kind: "stop", voice: voice, at: at})
}

func (m *recordingMixer) WriteWAV(_ context.Context, path string, length time.Duration) error {
	m.length = length
	return os.WriteFile(path, []byte("RIFF"), 0o644)
}

type fakeVideo struct {
	mu         sync.Mutex
	frames     int
	frameBytes int
	failWrite  int
	stopAfter  int
	closed     bool
	aborted    bool
}

func (v *fakeVideo) WriteFrame(frame []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(frame) != v.frameBytes {
		return fmt.Errorf("frame is %d bytes, want %d", len(frame), v.frameBytes)
	}
	if v.failWrite > 0 && v.frames >= v.failWrite {
		return fmt.Errorf("%w: broken pipe", encoder.ErrStopped)
	}
	v.frames++
	return nil
}

func (v *fakeVideo) Alive() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.stopAfter > 0 && v.frames >= v.stopAfter {
		return fmt.Errorf("%w: exit status 1", encoder.ErrStopped)
	}
	return nil
}

func (v *fakeVideo) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	return nil
}

func (v *fakeVideo) Abort() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.aborted = true
}

func (v *fakeVideo) Frames() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.frames
}

type fakeEncoder struct {
	video    *fakeVideo
	startErr error
	settings encoder.Settings
}

func (e *fakeEncoder) StartVideo(_ context.Context, settings encoder.Settings, _ string) (encoder.Video, error) {
	if e.startErr != nil {
		return nil, e.startErr
	}
	e.settings = settings
	e.video.frameBytes = settings.FrameBytes()
	return e.video, nil
}

func (e *fakeEncoder) Mux(_ context.Context, _ encoder.Settings, _, _, output string) error {
	return os.WriteFile(output, []byte("mp4"), 0o644)
}

// probeFor reports the geometry the encoder was started with and the
// duration of the frames it received.
func probeFor(e *fakeEncoder, fps int) func(context.Context, string) (ffprobe.Result, error) {
	return func(_ context.Context, path string) (ffprobe.Result, error) {
		if _, err := os.Stat(path); err != nil {
			return ffprobe.Result{}, err
		}
		return ffprobe.Result{
			Streams: []ffprobe.Stream{
				{CodecType: "video", Width: e.settings.Width, Height: e.settings.Height},
				{CodecType: "audio"},
			},
			Format: ffprobe.Format{Duration: fmt.Sprintf("%.3f", float64(e.video.Frames())/float64(fps))},
		}, nil
	}
}

// stepClock advances by step on every reading.
type stepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
	return c.now
}

var errBoom = errors.New("boom")
