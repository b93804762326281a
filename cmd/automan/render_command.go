package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/RaduRS/automan-sub000/internal/composition"
	"github.com/RaduRS/automan-sub000/internal/config"
	"github.com/RaduRS/automan-sub000/internal/logging"
	"github.com/RaduRS/automan-sub000/internal/notifications"
	"github.com/RaduRS/automan-sub000/internal/preflight"
	"github.com/RaduRS/automan-sub000/internal/queue"
	"github.com/RaduRS/automan-sub000/internal/render"
	"github.com/RaduRS/automan-sub000/internal/services"
	"github.com/RaduRS/automan-sub000/internal/textutil"
	"github.com/RaduRS/automan-sub000/internal/timing"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var outputPath string
	var captions bool
	var noCaptions bool
	var skipPreflight bool

	cmd := &cobra.Command{
		Use:   "render <composition>",
		Short: "Render a composition to an MP4 video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			doc, err := composition.LoadDocument(args[0])
			if err != nil {
				return err
			}
			if err := doc.Validate(); err != nil {
				return err
			}

			if !skipPreflight {
				if failed := preflight.Failed(preflight.RunAll(cmd.Context(), cfg)); len(failed) > 0 {
					parts := make([]string, len(failed))
					for i, r := range failed {
						parts[i] = fmt.Sprintf("%s: %s", r.Name, r.Detail)
					}
					return fmt.Errorf("preflight failed (%s); run `automan deps` for details", strings.Join(parts, "; "))
				}
			}

			job := renderJob{
				cfg:      cfg,
				logger:   logger,
				doc:      doc,
				docPath:  args[0],
				captions: doc.CaptionsEnabled(cfg.Render.Captions),
			}
			if cmd.Flags().Changed("captions") {
				job.captions = captions
			}
			if noCaptions {
				job.captions = false
			}
			if job.title = strings.TrimSpace(doc.Title); job.title == "" {
				job.title = textutil.TitleFromPath(args[0])
			}
			if job.output, err = resolveOutputPath(cfg, outputPath, job.title); err != nil {
				return err
			}

			return ctx.withStore(func(store *queue.Store) error {
				return job.run(cmd, store)
			})
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output MP4 path (defaults to <output_dir>/<title>.mp4)")
	cmd.Flags().BoolVar(&captions, "captions", true, "Draw captions (overrides the composition and config)")
	cmd.Flags().BoolVar(&noCaptions, "no-captions", false, "Disable captions")
	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Skip encoder and directory checks")
	return cmd
}

func outputLockPath(output string) string {
	return output + ".lock"
}

// renderActive reports whether another process still holds the output lock
// of job. Jobs without a lock file belong to a render that has exited.
func renderActive(job *queue.Job) bool {
	path := outputLockPath(job.OutputPath)
	if _, err := os.Stat(path); err != nil {
		return false
	}
	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil || !locked {
		return true
	}
	_ = lock.Unlock()
	return false
}

type renderJob struct {
	cfg      *config.Config
	logger   *slog.Logger
	doc      *composition.Document
	docPath  string
	title    string
	output   string
	captions bool
}

func (j renderJob) run(cmd *cobra.Command, store *queue.Store) error {
	lock := flock.New(outputLockPath(j.output))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock output: %w", err)
	}
	if !locked {
		return fmt.Errorf("another render is writing %s", j.output)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lock.Path())
	}()

	if n, err := store.FailInterrupted(cmd.Context(), renderActive); err != nil {
		return err
	} else if n > 0 {
		logging.WarnWithContext(j.logger, "marked interrupted renders as failed", "jobs_interrupted",
			logging.Int64("count", n),
			logging.String(logging.FieldImpact, "previous renders must be re-run"),
			logging.String(logging.FieldErrorHint, "run automan jobs list to review them"),
		)
	}

	source, _ := timing.Resolve(len(j.doc.Scenes), j.doc.ContinuousAudio, nil, j.cfg.Render.PlaceholderSeconds)
	runID := uuid.NewString()
	job, err := store.NewJob(cmd.Context(), queue.NewJobParams{
		Title:           j.title,
		CompositionPath: absPath(j.docPath),
		OutputPath:      j.output,
		SceneCount:      len(j.doc.Scenes),
		Captions:        j.captions,
		TimingMode:      source.Mode(),
		CorrelationID:   runID,
	})
	if err != nil {
		return err
	}

	runCtx := services.WithJobID(services.WithRequestID(cmd.Context(), runID), job.ID)
	logger := logging.WithContext(runCtx, j.logger)
	workDir := filepath.Join(j.cfg.Paths.WorkDir, runID)
	renderer := render.New(j.cfg, render.DefaultDependencies(j.cfg, j.doc.Dir(), workDir), logger)

	printer := newProgressPrinter(cmd.ErrOrStderr(), logger)
	report := func(p render.Progress) {
		if p.State == render.StateFailed {
			return
		}
		if err := store.UpdateProgress(runCtx, job.ID, queue.Progress{
			Status:  p.State.QueueStatus(),
			Stage:   textutil.Label(p.State.String()),
			Percent: p.Percent,
			Message: p.Message,
		}); err != nil && !errors.Is(err, context.Canceled) {
			logger.Debug("progress update failed", logging.Error(err))
		}
		printer.update(p)
	}

	started := time.Now()
	result, err := renderer.Render(runCtx, render.Request{
		Scenes:          j.doc.Scenes,
		ContinuousAudio: j.doc.ContinuousAudio,
		Captions:        j.captions,
		OutputPath:      j.output,
		WorkDir:         workDir,
	}, report)
	printer.finish()

	finalCtx := context.WithoutCancel(runCtx)
	if err != nil {
		if markErr := store.MarkFailed(finalCtx, job.ID, services.FailureStatus(err), err.Error()); markErr != nil {
			logger.Warn("record failure", logging.Error(markErr))
		}
		notifyError(finalCtx, j.cfg, err, "render "+j.title)
		return err
	}

	timingsJSON, err := json.Marshal(result.Timings)
	if err != nil {
		return fmt.Errorf("encode timings: %w", err)
	}
	if err := store.MarkCompleted(finalCtx, job.ID, queue.Outcome{
		OutputPath:       result.OutputPath,
		FramesRendered:   result.Frames,
		PlaceholderCount: len(result.Placeholders),
		Truncated:        result.Truncated,
		TimingsJSON:      string(timingsJSON),
	}); err != nil {
		return err
	}

	elapsed := time.Since(started)
	if err := notifications.NewService(j.cfg).NotifyRenderCompleted(finalCtx, j.title, result.OutputPath, result.Duration, elapsed); err != nil {
		logging.WarnWithContext(logger, "notification failed", "notify_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
		)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Rendered %s\n", result.OutputPath)
	fmt.Fprintf(out, "  job %d: %d frames, %.2fs, %s timing, captions %s, %s elapsed\n",
		job.ID, result.Frames, result.Duration, result.TimingMode, yesNo(j.captions), elapsed.Round(time.Second))
	if len(result.Placeholders) > 0 {
		fmt.Fprintf(out, "  placeholder scenes: %s\n", sceneList(result.Placeholders))
	}
	if len(result.SilentScenes) > 0 {
		fmt.Fprintf(out, "  silent scenes: %s\n", sceneList(result.SilentScenes))
	}
	if result.Truncated {
		fmt.Fprintln(out, "  warning: safety timeout reached, output is shorter than the composition")
	}
	return nil
}

func resolveOutputPath(cfg *config.Config, flagValue, title string) (string, error) {
	path := strings.TrimSpace(flagValue)
	if path == "" {
		path = filepath.Join(cfg.Paths.OutputDir, textutil.Slug(title, "short")+".mp4")
	}
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return "", fmt.Errorf("resolve output path: %w", err)
	}
	if filepath.Ext(expanded) == "" {
		expanded += ".mp4"
	}
	return absPath(expanded), nil
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// sceneList formats zero-based scene indexes as 1-based scene numbers.
func sceneList(indexes []int) string {
	parts := make([]string, len(indexes))
	for i, idx := range indexes {
		parts[i] = fmt.Sprintf("%d", idx+1)
	}
	return strings.Join(parts, ", ")
}

func notifyError(ctx context.Context, cfg *config.Config, err error, label string) {
	if errors.Is(err, services.ErrCancelled) {
		return
	}
	_ = notifications.NewService(cfg).NotifyError(ctx, err, label)
}
