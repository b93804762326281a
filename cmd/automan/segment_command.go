package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RaduRS/automan-sub000/internal/composition"
	"github.com/RaduRS/automan-sub000/internal/config"
	"github.com/RaduRS/automan-sub000/internal/timing"
)

func newSegmentCommand(ctx *commandContext) *cobra.Command {
	var compositionPath string
	var sceneCount int
	var outputPath string
	var audioURL string

	cmd := &cobra.Command{
		Use:   "segment <words.json>",
		Short: "Split transcript words into per-scene timings",
		Long: "Reads a word list (plain array or WhisperX JSON) and places scene boundaries at natural\n" +
			"breaks near an even split. With --composition and --audio the composition is updated in\n" +
			"place with a continuousAudio block.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read words: %w", err)
			}
			words, err := timing.ParseWords(data)
			if err != nil {
				return err
			}

			var doc *composition.Document
			if strings.TrimSpace(compositionPath) != "" {
				if doc, err = composition.LoadDocument(compositionPath); err != nil {
					return err
				}
				sceneCount = len(doc.Scenes)
			}
			if sceneCount <= 0 {
				return errors.New("scene count required: pass --composition or --scenes")
			}

			timings, err := newSegmenter(cfg).Segment(words, sceneCount)
			if err != nil {
				return err
			}

			if doc != nil && strings.TrimSpace(audioURL) != "" {
				doc.ContinuousAudio = continuousAudio(audioURL, timings)
				if err := doc.Save(compositionPath); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Updated %s with %d scene timings\n", compositionPath, len(timings))
			}
			return writeJSON(cmd, outputPath, timings)
		},
	}

	cmd.Flags().StringVar(&compositionPath, "composition", "", "Composition file supplying the scene count")
	cmd.Flags().IntVar(&sceneCount, "scenes", 0, "Number of scenes when no composition is given")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write timings JSON here instead of stdout")
	cmd.Flags().StringVar(&audioURL, "audio", "", "Narration audio reference to store in the composition")
	return cmd
}

func newSegmenter(cfg *config.Config) *timing.Segmenter {
	sc := cfg.Segmenter
	return timing.NewSegmenter(timing.Weights{
		SearchWindow:     sc.SearchWindow,
		Sentence:         sc.SentenceWeight,
		Comma:            sc.CommaWeight,
		Pause:            sc.PauseWeight,
		Distance:         sc.DistancePenalty,
		FallbackDuration: sc.FallbackDuration,
	})
}

func continuousAudio(audioURL string, timings []timing.SceneTiming) *timing.ContinuousAudio {
	total := 0.0
	if n := len(timings); n > 0 {
		total = timings[n-1].EndTime
	}
	return &timing.ContinuousAudio{
		AudioURL:      strings.TrimSpace(audioURL),
		SceneTimings:  timings,
		TotalDuration: total,
	}
}

func writeJSON(cmd *cobra.Command, path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	data = append(data, '\n')
	if strings.TrimSpace(path) == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
