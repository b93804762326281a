package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/RaduRS/automan-sub000/internal/config"
	"github.com/RaduRS/automan-sub000/internal/encoder"
	"github.com/RaduRS/automan-sub000/internal/logging"
	"github.com/RaduRS/automan-sub000/internal/media/audio"
	"github.com/RaduRS/automan-sub000/internal/services"
	"github.com/RaduRS/automan-sub000/internal/timing"
)

// Request describes one render.
type Request struct {
	Scenes          []timing.Scene
	ContinuousAudio *timing.ContinuousAudio
	Captions        bool
	OutputPath      string
	// WorkDir holds scratch files and is removed when the render ends.
	WorkDir string
}

// Result describes a finished render.
type Result struct {
	OutputPath   string
	Frames       int
	Duration     float64
	TimingMode   string
	Timings      []timing.SceneTiming
	Placeholders []int
	SilentScenes []int
	// Truncated is set when the safety timeout finalized the render early.
	Truncated bool
}

// Renderer runs renders one at a time. It is not safe for concurrent use.
type Renderer struct {
	cfg    *config.Config
	deps   Dependencies
	logger *slog.Logger

	mu    sync.Mutex
	state State

	reportMu sync.Mutex
	percent  float64
	report   Reporter
}

// New returns a renderer. Missing encoder, muxer, mixer, probe and clock
// dependencies default to the ffmpeg-backed implementations.
func New(cfg *config.Config, deps Dependencies, logger *slog.Logger) *Renderer {
	return &Renderer{
		cfg:    cfg,
		deps:   deps.withDefaults(cfg),
		logger: logging.NewComponentLogger(logger, "render"),
		state:  StateIdle,
	}
}

// State returns the current lifecycle state.
func (r *Renderer) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Render draws req into req.OutputPath. report may be nil.
func (r *Renderer) Render(ctx context.Context, req Request, report Reporter) (*Result, error) {
	r.mu.Lock()
	r.state = StateIdle
	r.mu.Unlock()
	r.reportMu.Lock()
	r.percent, r.report = 0, report
	r.reportMu.Unlock()

	logger := logging.WithContext(ctx, r.logger)
	started := time.Now()

	if strings.TrimSpace(req.OutputPath) == "" {
		return nil, r.fail(r.stageErr(services.ErrValidation, MsgPrepare, errors.New("output path required")))
	}
	if strings.TrimSpace(req.WorkDir) == "" {
		return nil, r.fail(r.stageErr(services.ErrConfiguration, MsgPrepare, errors.New("work directory required")))
	}
	if err := os.MkdirAll(req.WorkDir, 0o755); err != nil {
		return nil, r.fail(r.stageErr(services.ErrConfiguration, MsgPrepare, err))
	}
	defer os.RemoveAll(req.WorkDir)

	r.transition(StatePreparing, 0, "loading media")
	logger.Info("render preparing",
		logging.Int("scene_count", len(req.Scenes)),
		logging.Bool("captions", req.Captions),
		logging.String("output", req.OutputPath),
	)
	prep, err := r.prepare(ctx, req, logger)
	if err != nil {
		return nil, r.fail(err)
	}
	defer prep.surface.Close()

	mixer := r.deps.NewMixer(r.cfg.Render.SampleRate)
	r.transition(StateRecording, preparingEnd, "starting encoder")
	logger.Info("render recording",
		logging.Int("total_frames", prep.plan.TotalFrames()),
		logging.Float64("duration_seconds", prep.plan.Duration()),
		logging.String("timing_mode", prep.source.Mode()),
	)
	rec, err := r.record(ctx, req, prep, mixer, logger)
	if err != nil {
		return nil, r.fail(err)
	}

	r.transition(StateFinalizing, recordingEnd, "flushing encoder")
	if err := r.finalize(ctx, req, rec, mixer); err != nil {
		return nil, r.fail(err)
	}

	result := &Result{
		OutputPath:   req.OutputPath,
		Frames:       rec.frames,
		Duration:     float64(rec.frames) / float64(prep.plan.FrameRate()),
		TimingMode:   prep.source.Mode(),
		Timings:      prep.timings(),
		Placeholders: prep.placeholders,
		SilentScenes: prep.silent,
		Truncated:    rec.truncated,
	}
	r.transition(StateComplete, finalizingEnd, "render complete")
	logger.Info("render complete",
		logging.String("output", result.OutputPath),
		logging.Int("frames", result.Frames),
		logging.Float64("duration_seconds", result.Duration),
		logging.Int("placeholders", len(result.Placeholders)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return result, nil
}

type recording struct {
	frames    int
	truncated bool
	videoPath string
	video     encoder.Video
}

func (r *Renderer) record(ctx context.Context, req Request, prep *prepared, mixer audio.Mixer, logger *slog.Logger) (*recording, error) {
	videoPath := filepath.Join(req.WorkDir, "video.mp4")
	video, err := r.deps.Encoder.StartVideo(ctx, r.encoderSettings(), videoPath)
	if err != nil {
		return nil, r.stageErr(services.ErrExternalTool, MsgEncoderStart, err)
	}
	finished := false
	defer func() {
		if !finished {
			video.Abort()
		}
	}()

	plan := prep.plan
	total := plan.TotalFrames()
	fps := float64(plan.FrameRate())
	interval := max(r.cfg.Render.EncoderCheckIntervalFrames, 1)
	timeout := r.cfg.SafetyTimeout()
	began := r.deps.Clock.Now()

	if prep.narration != nil {
		mixer.Start(prep.narration, 0)
	}
	_, perScene := prep.source.(timing.PerScene)
	voice := -1

	frames := 0
	truncated := false
	lastPercent := -1
	for f := range total {
		if err := ctx.Err(); err != nil {
			return nil, r.stageErr(services.ErrCancelled, MsgCancelled, err)
		}
		if timeout > 0 && r.deps.Clock.Now().Sub(began) > timeout {
			if frames == 0 {
				return nil, r.stageErr(services.ErrTimeout, MsgNoFrames, fmt.Errorf("safety timeout of %s elapsed", timeout))
			}
			logging.WarnWithContext(logger, "safety timeout reached, finalizing early", "render_safety_timeout",
				logging.Int("frames", frames),
				logging.Int("total_frames", total),
				logging.Duration("timeout", timeout),
				logging.String(logging.FieldErrorHint, "raise render.safety_timeout_seconds for long compositions"),
				logging.String(logging.FieldImpact, "output is shorter than the composition"),
			)
			truncated = true
			break
		}

		st := plan.Tick(f)
		if perScene && st.SceneStart() {
			at := seconds(st.Time)
			if voice >= 0 {
				mixer.Stop(voice, at)
				voice = -1
			}
			if clip := prep.clips[st.SceneIndex]; clip != nil {
				voice = mixer.Start(clip, at)
			}
		}

		if err := prep.surface.Draw(st, prep.layers); err != nil {
			return nil, r.stageErr(services.ErrValidation, MsgPrepare, err)
		}
		if err := video.WriteFrame(prep.surface.Frame().Pix); err != nil {
			return nil, r.stageErr(services.ErrExternalTool, MsgEncoderStopped, err)
		}
		frames++
		if frames%interval == 0 {
			if err := video.Alive(); err != nil {
				return nil, r.stageErr(services.ErrExternalTool, MsgEncoderStopped, err)
			}
		}

		percent := preparingEnd + (recordingEnd-preparingEnd)*float64(frames)/float64(total)
		if int(percent) != lastPercent {
			lastPercent = int(percent)
			r.progress(StateRecording, percent, fmt.Sprintf("frame %d/%d", frames, total))
		}
	}
	if voice >= 0 {
		mixer.Stop(voice, seconds(float64(frames)/fps))
	}
	if frames == 0 {
		return nil, r.stageErr(services.ErrExternalTool, MsgNoFrames, nil)
	}
	finished = true
	return &recording{frames: frames, truncated: truncated, videoPath: videoPath, video: video}, nil
}

func (r *Renderer) encoderSettings() encoder.Settings {
	rc := r.cfg.Render
	return encoder.Settings{
		FFmpegBinary: r.cfg.FFmpegBinary(),
		Width:        rc.Width,
		Height:       rc.Height,
		FrameRate:    rc.FrameRate,
		VideoCodec:   rc.VideoCodec,
		Preset:       rc.Preset,
		CRF:          rc.CRF,
		AudioCodec:   rc.AudioCodec,
		AudioBitrate: rc.AudioBitrate,
	}
}

func (r *Renderer) transition(state State, percent float64, message string) {
	r.mu.Lock()
	r.state = state
	r.mu.Unlock()
	r.progress(state, percent, message)
}

func (r *Renderer) progress(state State, percent float64, message string) {
	r.reportMu.Lock()
	defer r.reportMu.Unlock()
	percent = max(percent, r.percent)
	r.percent = percent
	if r.report != nil {
		r.report(Progress{State: state, Percent: percent, Message: message})
	}
}

func (r *Renderer) stageErr(marker error, message string, err error) *StageError {
	return &StageError{State: r.State(), Message: message, Err: err, marker: marker}
}

// fail moves to Failed and reports the stage message in place of progress.
func (r *Renderer) fail(err error) error {
	var stage *StageError
	if !errors.As(err, &stage) {
		stage = r.stageErr(services.ErrTransient, MsgPrepare, err)
	}
	r.mu.Lock()
	r.state = StateFailed
	r.mu.Unlock()
	r.reportMu.Lock()
	if r.report != nil {
		r.report(Progress{State: StateFailed, Percent: r.percent, Message: stage.Message})
	}
	r.reportMu.Unlock()
	logging.ErrorWithContext(r.logger, "render failed", "render_failed",
		logging.String(logging.FieldStage, stage.State.String()),
		logging.String("stage_message", stage.Message),
		logging.Error(stage.Err),
		logging.String(logging.FieldErrorHint, hintFor(stage)),
	)
	return stage
}

func hintFor(stage *StageError) string {
	if stage.Message == MsgValidation {
		return "inspect the output with ffprobe"
	}
	return services.Hint(stage)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
