package audio

import (
	"time"

	"github.com/gopxl/beep"
)

// Format is the sample layout every clip is decoded into.
func Format(sampleRate int) beep.Format {
	return beep.Format{
		SampleRate:  beep.SampleRate(sampleRate),
		NumChannels: 2,
		Precision:   2,
	}
}

// Clip is a fully decoded audio buffer.
type Clip struct {
	buf *beep.Buffer
}

// NewClip wraps a decoded buffer.
func NewClip(buf *beep.Buffer) *Clip {
	return &Clip{buf: buf}
}

// Len returns the clip length in samples.
func (c *Clip) Len() int {
	if c == nil || c.buf == nil {
		return 0
	}
	return c.buf.Len()
}

// Format returns the clip's sample format.
func (c *Clip) Format() beep.Format {
	return c.buf.Format()
}

// Duration returns the clip length.
func (c *Clip) Duration() time.Duration {
	if c.Len() == 0 {
		return 0
	}
	return c.buf.Format().SampleRate.D(c.buf.Len())
}

// Seconds returns the clip length in seconds.
func (c *Clip) Seconds() float64 {
	return c.Duration().Seconds()
}

func (c *Clip) streamer(n int) beep.Streamer {
	n = min(n, c.buf.Len())
	return c.buf.Streamer(0, n)
}
