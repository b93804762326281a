package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/RaduRS/automan-sub000/internal/canvas"
	"github.com/RaduRS/automan-sub000/internal/composition"
	"github.com/RaduRS/automan-sub000/internal/logging"
	"github.com/RaduRS/automan-sub000/internal/media/audio"
	"github.com/RaduRS/automan-sub000/internal/services"
	"github.com/RaduRS/automan-sub000/internal/timing"
)

type prepared struct {
	source       timing.Source
	plan         *composition.Plan
	surface      *canvas.Surface
	layers       []*canvas.Layer
	clips        []*audio.Clip
	narration    *audio.Clip
	placeholders []int
	silent       []int
}

func (p *prepared) timings() []timing.SceneTiming {
	out := make([]timing.SceneTiming, p.plan.SceneCount())
	for i := range out {
		out[i] = p.plan.SceneRange(i)
	}
	return out
}

func (r *Renderer) prepare(ctx context.Context, req Request, logger *slog.Logger) (*prepared, error) {
	n := len(req.Scenes)
	if n == 0 {
		return nil, r.stageErr(services.ErrValidation, MsgPrepare, timing.ErrNoScenes)
	}
	if r.deps.Images == nil || r.deps.Audio == nil {
		return nil, r.stageErr(services.ErrConfiguration, MsgPrepare, errors.New("image and audio loaders required"))
	}

	fallback := r.cfg.Render.PlaceholderSeconds
	source, reason := timing.Resolve(n, req.ContinuousAudio, nil, fallback)
	if reason != "" {
		logging.WarnWithContext(logger, "continuous timings rejected", "timing_fallback",
			logging.String("reason", reason),
			logging.String(logging.FieldErrorHint, "regenerate narration timings for the current scenes"),
			logging.String(logging.FieldImpact, "scenes use their own clip durations"),
		)
	}
	continuous, isContinuous := source.(timing.Continuous)

	images := make([]image.Image, n)
	clips := make([]*audio.Clip, n)
	var narration *audio.Clip

	tasks := n
	if isContinuous {
		tasks++
	} else {
		for _, scene := range req.Scenes {
			if strings.TrimSpace(scene.VoiceURL) != "" {
				tasks++
			}
		}
	}
	var done atomic.Int64
	loaded := func(what string) {
		d := done.Add(1)
		r.progress(StatePreparing, preparingEnd*float64(d)/float64(tasks), fmt.Sprintf("loaded %s (%d/%d)", what, d, tasks))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.cfg.Render.LoadConcurrency, 1))
	for i, scene := range req.Scenes {
		g.Go(func() error {
			img, err := r.deps.Images.Image(gctx, scene.ImageURL)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				logging.WarnWithContext(logger, "scene image unavailable, using placeholder", "scene_image_failed",
					logging.Scene(i),
					logging.String("image_url", scene.ImageURL),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check the scene imageUrl"),
					logging.String(logging.FieldImpact, "scene renders as a placeholder"),
				)
			} else {
				images[i] = img
			}
			loaded(fmt.Sprintf("scene %d image", i+1))
			return nil
		})
		if isContinuous || strings.TrimSpace(scene.VoiceURL) == "" {
			continue
		}
		g.Go(func() error {
			clip, err := r.deps.Audio.Decode(gctx, scene.VoiceURL)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				logging.WarnWithContext(logger, "scene audio unavailable, using default duration", "scene_audio_failed",
					logging.Scene(i),
					logging.String("voice_url", scene.VoiceURL),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check the scene voiceUrl"),
					logging.String(logging.FieldImpact, "scene is silent with the placeholder duration"),
				)
			} else {
				clips[i] = clip
			}
			loaded(fmt.Sprintf("scene %d audio", i+1))
			return nil
		})
	}
	if isContinuous {
		g.Go(func() error {
			clip, err := r.deps.Audio.Decode(gctx, continuous.AudioURL)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				logging.WarnWithContext(logger, "narration audio unavailable, rendering silent track", "narration_audio_failed",
					logging.String("audio_url", continuous.AudioURL),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check continuousAudio.audioUrl"),
					logging.String(logging.FieldImpact, "video keeps narration timings without sound"),
				)
			} else {
				narration = clip
			}
			loaded("narration")
			return nil
		})
	}
	if err := g.Wait(); err != nil || ctx.Err() != nil {
		if ctx.Err() != nil {
			return nil, r.stageErr(services.ErrCancelled, MsgCancelled, ctx.Err())
		}
		return nil, r.stageErr(services.ErrTransient, MsgPrepare, err)
	}

	p := &prepared{clips: clips, narration: narration}
	if isContinuous {
		p.source = source
		if narration == nil {
			p.silent = allScenes(n)
		}
	} else {
		durations := make([]float64, n)
		for i, clip := range clips {
			if clip != nil {
				durations[i] = clip.Seconds()
			} else {
				p.silent = append(p.silent, i)
			}
		}
		p.source, _ = timing.Resolve(n, nil, durations, fallback)
	}

	plan, err := composition.NewPlan(req.Scenes, p.source, r.planOptions(req.Captions))
	if err != nil {
		return nil, r.stageErr(services.ErrValidation, MsgPrepare, err)
	}
	p.plan = plan

	if err := r.buildLayers(p, images); err != nil {
		return nil, err
	}
	for i, img := range images {
		if img == nil {
			p.placeholders = append(p.placeholders, i)
		}
	}
	return p, nil
}

func (r *Renderer) buildLayers(p *prepared, images []image.Image) error {
	highlight, err := canvas.ParseHex(r.cfg.Captions.HighlightRGBA)
	if err != nil {
		return r.stageErr(services.ErrConfiguration, MsgPrepare, err)
	}
	surface, err := canvas.New(canvas.Options{
		Width:        r.cfg.Render.Width,
		Height:       r.cfg.Render.Height,
		FontSize:     r.cfg.Captions.FontSize,
		MinFontSize:  r.cfg.Captions.MinFontSize,
		BottomMargin: r.cfg.Captions.BottomMargin,
		Highlight:    highlight,
	})
	if err != nil {
		return r.stageErr(services.ErrConfiguration, MsgPrepare, err)
	}

	zoom := r.cfg.Render.ZoomFactor
	layers := make([]*canvas.Layer, len(images))
	for i, img := range images {
		if img != nil {
			layers[i] = canvas.NewLayer(img, r.cfg.Render.Width, r.cfg.Render.Height, zoom)
			continue
		}
		if layers[i], err = surface.Placeholder(i, zoom); err != nil {
			surface.Close()
			return r.stageErr(services.ErrTransient, MsgPrepare, err)
		}
	}
	p.surface = surface
	p.layers = layers
	return nil
}

func (r *Renderer) planOptions(captions bool) composition.Options {
	return composition.Options{
		FrameRate:        r.cfg.Render.FrameRate,
		ZoomFactor:       r.cfg.Render.ZoomFactor,
		PanCycles:        r.cfg.Render.PanCycles,
		Crossfade:        r.cfg.CrossfadeDuration(),
		Captions:         captions,
		CaptionBatch:     r.cfg.Captions.BatchSize,
		CaptionMaxLines:  r.cfg.Captions.MaxLines,
		CaptionLookahead: time.Duration(r.cfg.Captions.LookaheadMS) * time.Millisecond,
	}
}

func allScenes(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
