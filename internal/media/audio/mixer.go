package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

// Mixer schedules clips on the render timeline.
type Mixer interface {
	// Start begins playing clip at offset and returns its voice id.
	Start(clip *Clip, at time.Duration) int
	// Stop ends voice at offset. Stopping an unknown or stopped voice is a no-op.
	Stop(voice int, at time.Duration)
	// WriteWAV mixes every voice into a track of the given length.
	WriteWAV(ctx context.Context, path string, length time.Duration) error
}

type voice struct {
	clip    *Clip
	start   int
	stop    int
	stopped bool
}

// BeepMixer sums scheduled voices with beep.
type BeepMixer struct {
	format beep.Format
	voices []voice
}

// NewMixer returns a mixer for clips in the given sample rate.
func NewMixer(sampleRate int) *BeepMixer {
	return &BeepMixer{format: Format(sampleRate)}
}

// Start implements Mixer.
func (m *BeepMixer) Start(clip *Clip, at time.Duration) int {
	m.voices = append(m.voices, voice{
		clip:  clip,
		start: m.format.SampleRate.N(max(at, 0)),
		stop:  -1,
	})
	return len(m.voices) - 1
}

// Stop implements Mixer.
func (m *BeepMixer) Stop(id int, at time.Duration) {
	if id < 0 || id >= len(m.voices) || m.voices[id].stopped {
		return
	}
	v := &m.voices[id]
	v.stop = max(m.format.SampleRate.N(max(at, 0)), v.start)
	v.stopped = true
}

// Voices returns the number of scheduled voices.
func (m *BeepMixer) Voices() int { return len(m.voices) }

// Streamer returns the mixed track, exactly total samples long.
func (m *BeepMixer) Streamer(total int) beep.Streamer {
	streams := make([]beep.Streamer, 0, len(m.voices)+1)
	for _, v := range m.voices {
		if v.clip.Len() == 0 || v.start >= total {
			continue
		}
		n := v.clip.Len()
		if v.stop >= 0 {
			n = min(n, v.stop-v.start)
		}
		if n <= 0 {
			continue
		}
		streams = append(streams, beep.Seq(beep.Silence(v.start), v.clip.streamer(n)))
	}
	streams = append(streams, beep.Silence(-1))
	return beep.Take(total, beep.Mix(streams...))
}

// WriteWAV implements Mixer.
func (m *BeepMixer) WriteWAV(ctx context.Context, path string, length time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	total := m.format.SampleRate.N(length)
	if total <= 0 {
		return errors.New("write mix: non-positive length")
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write mix: %w", err)
	}
	if err := wav.Encode(f, m.Streamer(total), m.format); err != nil {
		_ = f.Close()
		return fmt.Errorf("write mix: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write mix: %w", err)
	}
	return nil
}
