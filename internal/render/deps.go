package render

import (
	"context"
	"image"

	"github.com/RaduRS/automan-sub000/internal/config"
	"github.com/RaduRS/automan-sub000/internal/encoder"
	"github.com/RaduRS/automan-sub000/internal/media/assets"
	"github.com/RaduRS/automan-sub000/internal/media/audio"
	"github.com/RaduRS/automan-sub000/internal/media/ffprobe"
)

// ImageLoader fetches and decodes a scene image.
type ImageLoader interface {
	Image(ctx context.Context, ref string) (image.Image, error)
}

// Prober inspects an encoded file.
type Prober func(ctx context.Context, path string) (ffprobe.Result, error)

// Dependencies are the collaborators a Renderer drives.
type Dependencies struct {
	Images   ImageLoader
	Audio    audio.Decoder
	NewMixer func(sampleRate int) audio.Mixer
	Encoder  encoder.Starter
	Muxer    encoder.Muxer
	Probe    Prober
	Clock    Clock
}

// DefaultDependencies wires the ffmpeg-backed collaborators. Relative media
// references resolve against baseDir and scratch audio goes to workDir.
func DefaultDependencies(cfg *config.Config, baseDir, workDir string) Dependencies {
	fetcher := assets.NewFetcher(cfg.FetchTimeout(), baseDir)
	return Dependencies{
		Images: fetcher,
		Audio:  audio.NewSource(cfg.FFmpegBinary(), cfg.Render.SampleRate, workDir, fetcher.Locate),
	}
}

func (d Dependencies) withDefaults(cfg *config.Config) Dependencies {
	if d.NewMixer == nil {
		d.NewMixer = func(rate int) audio.Mixer { return audio.NewMixer(rate) }
	}
	if d.Encoder == nil {
		d.Encoder = encoder.FFmpeg{}
	}
	if d.Muxer == nil {
		d.Muxer = encoder.FFmpeg{}
	}
	if d.Probe == nil {
		binary := cfg.FFprobeBinary()
		d.Probe = func(ctx context.Context, path string) (ffprobe.Result, error) {
			return ffprobe.Inspect(ctx, binary, path)
		}
	}
	if d.Clock == nil {
		d.Clock = systemClock{}
	}
	return d
}
