package render

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/RaduRS/automan-sub000/internal/fileutil"
	"github.com/RaduRS/automan-sub000/internal/media/audio"
	"github.com/RaduRS/automan-sub000/internal/media/ffprobe"
	"github.com/RaduRS/automan-sub000/internal/services"
)

func (r *Renderer) finalize(ctx context.Context, req Request, rec *recording, mixer audio.Mixer) error {
	if err := rec.video.Close(); err != nil {
		return r.stageErr(services.ErrExternalTool, MsgEncoderFinalize, err)
	}
	fps := float64(r.cfg.Render.FrameRate)
	length := float64(rec.frames) / fps

	r.progress(StateFinalizing, 92, "mixing audio")
	audioPath := filepath.Join(req.WorkDir, "audio.wav")
	if err := mixer.WriteWAV(ctx, audioPath, seconds(length)); err != nil {
		if ctx.Err() != nil {
			return r.stageErr(services.ErrCancelled, MsgCancelled, ctx.Err())
		}
		return r.stageErr(services.ErrExternalTool, MsgAudioMix, err)
	}

	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0o755); err != nil {
		return r.stageErr(services.ErrConfiguration, MsgMux, err)
	}
	partial := filepath.Join(req.WorkDir, partialName(req.OutputPath))
	keep := false
	defer func() {
		if !keep {
			_ = os.Remove(partial)
		}
	}()

	r.progress(StateFinalizing, 95, "assembling output")
	if err := r.deps.Muxer.Mux(ctx, r.encoderSettings(), rec.videoPath, audioPath, partial); err != nil {
		if ctx.Err() != nil {
			return r.stageErr(services.ErrCancelled, MsgCancelled, ctx.Err())
		}
		return r.stageErr(services.ErrExternalTool, MsgMux, err)
	}

	r.progress(StateFinalizing, 98, "validating output")
	probe, err := r.deps.Probe(ctx, partial)
	if err != nil {
		return r.stageErr(services.ErrValidation, MsgValidation, err)
	}
	want := ffprobe.Expectation{
		Width:     r.cfg.Render.Width,
		Height:    r.cfg.Render.Height,
		Duration:  length,
		Tolerance: max(0.5, 2/fps),
		HasAudio:  true,
	}
	if err := ffprobe.ValidateRender(probe, want); err != nil {
		return r.stageErr(services.ErrValidation, MsgValidation, err)
	}

	if err := fileutil.MoveFile(partial, req.OutputPath); err != nil {
		return r.stageErr(services.ErrExternalTool, MsgMux, err)
	}
	keep = true
	return nil
}

// partialName keeps the container extension so the muxer picks the right
// format.
func partialName(output string) string {
	base := filepath.Base(output)
	ext := filepath.Ext(base)
	if ext == "" {
		return base + ".partial"
	}
	return strings.TrimSuffix(base, ext) + ".partial" + ext
}

// IsStage reports whether err is a StageError with the given message.
func IsStage(err error, message string) bool {
	var stage *StageError
	return errors.As(err, &stage) && stage.Message == message
}
