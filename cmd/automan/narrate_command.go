package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/RaduRS/automan-sub000/internal/composition"
	"github.com/RaduRS/automan-sub000/internal/logging"
	"github.com/RaduRS/automan-sub000/internal/notifications"
	"github.com/RaduRS/automan-sub000/internal/services"
	"github.com/RaduRS/automan-sub000/internal/textutil"
	"github.com/RaduRS/automan-sub000/internal/timing"
	"github.com/RaduRS/automan-sub000/internal/transcribe"
)

// minScriptCoverage is the share of script words the transcript must contain
// before the narration is trusted to belong to the composition.
const minScriptCoverage = 0.5

func newNarrateCommand(ctx *commandContext) *cobra.Command {
	var audioRef string
	var outputPath string
	var wordsOut string

	cmd := &cobra.Command{
		Use:   "narrate <composition>",
		Short: "Transcribe narration audio and time it across the composition's scenes",
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
			logger = logging.NewComponentLogger(logger, "narrate")

			doc, err := composition.LoadDocument(args[0])
			if err != nil {
				return err
			}
			if err := doc.Validate(); err != nil {
				return err
			}
			audioRef = strings.TrimSpace(audioRef)
			if audioRef == "" && doc.ContinuousAudio != nil {
				audioRef = doc.ContinuousAudio.AudioURL
			}
			if audioRef == "" {
				return fmt.Errorf("narration audio required: pass --audio or set continuousAudio.audioUrl")
			}

			runID := uuid.NewString()
			runCtx := services.WithRequestID(services.WithStage(cmd.Context(), "narrate"), runID)
			workDir := filepath.Join(cfg.Paths.WorkDir, "narrate-"+runID)
			defer os.RemoveAll(workDir)

			source := resolveLocal(doc.Dir(), audioRef)
			svc := transcribe.New(cfg.Transcription, cfg.FFmpegBinary())
			logging.WithContext(runCtx, logger).Info("transcribing narration",
				logging.String("audio", source),
				logging.String("model", svc.Model()),
				logging.Int("scene_count", len(doc.Scenes)),
			)
			words, err := svc.Transcribe(runCtx, source, workDir)
			if err != nil {
				notifyError(runCtx, cfg, err, "narration")
				return err
			}

			checkCoverage(logging.WithContext(runCtx, logger), doc.Scenes, words)

			timings, err := newSegmenter(cfg).Segment(words, len(doc.Scenes))
			if err != nil {
				return err
			}
			doc.ContinuousAudio = continuousAudio(audioRef, timings)

			target := strings.TrimSpace(outputPath)
			if target == "" {
				target = args[0]
			}
			if err := doc.Save(target); err != nil {
				return err
			}
			if strings.TrimSpace(wordsOut) != "" {
				if err := writeJSON(cmd, wordsOut, words); err != nil {
					return err
				}
			}

			title := doc.Title
			if title == "" {
				title = textutil.TitleFromPath(args[0])
			}
			if err := notifications.NewService(cfg).NotifyNarrationTimed(runCtx, title, len(timings)); err != nil {
				logging.WarnWithContext(logger, "notification failed", "notify_failed",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
				)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Timed %d words across %d scenes (%.2fs) -> %s\n",
				len(words), len(timings), doc.ContinuousAudio.TotalDuration, target)
			return nil
		},
	}

	cmd.Flags().StringVar(&audioRef, "audio", "", "Narration audio path or URL (defaults to continuousAudio.audioUrl)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the updated composition here instead of in place")
	cmd.Flags().StringVar(&wordsOut, "words-out", "", "Also save the transcribed words as JSON")
	return cmd
}

// resolveLocal joins relative file references onto dir and leaves URLs alone.
func resolveLocal(dir, ref string) string {
	if strings.Contains(ref, "://") || filepath.IsAbs(ref) || dir == "" {
		return ref
	}
	return filepath.Join(dir, ref)
}

// checkCoverage warns when the transcript misses most of the scene text and
// returns the measured coverage.
func checkCoverage(logger *slog.Logger, scenes []timing.Scene, words []timing.Word) float64 {
	script := make([]string, len(scenes))
	for i, s := range scenes {
		script[i] = s.Text
	}
	spoken := make([]string, len(words))
	for i, w := range words {
		spoken[i] = w.Text
	}
	coverage := textutil.Coverage(strings.Join(script, " "), strings.Join(spoken, " "))
	if coverage < minScriptCoverage {
		logging.WarnWithContext(logger, "narration does not match the scene text", "narration_mismatch",
			logging.Float64("coverage", coverage),
			logging.String(logging.FieldErrorHint, "check that --audio is the narration for this composition"),
			logging.String(logging.FieldImpact, "scene boundaries may not line up with the script"),
		)
	}
	return coverage
}
