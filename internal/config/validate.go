package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/RaduRS/automan-sub000/internal/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateCaptions(); err != nil {
		return err
	}
	if err := c.validateSegmenter(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		return errors.New("paths.work_dir must be set")
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	return nil
}

func (c *Config) validateRender() error {
	r := c.Render
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("render.width and render.height must be positive (got %dx%d)", r.Width, r.Height)
	}
	if r.Width%2 != 0 || r.Height%2 != 0 {
		return fmt.Errorf("render dimensions must be even for yuv420p output (got %dx%d)", r.Width, r.Height)
	}
	if r.FrameRate <= 0 || r.FrameRate > 120 {
		return fmt.Errorf("render.frame_rate must be between 1 and 120 (got %d)", r.FrameRate)
	}
	if r.ZoomFactor < 1 {
		return fmt.Errorf("render.zoom_factor must be at least 1 (got %.3f)", r.ZoomFactor)
	}
	if r.PanCycles < 0 {
		return errors.New("render.pan_cycles must be non-negative")
	}
	if r.CrossfadeMillis < 0 {
		return errors.New("render.crossfade_ms must be non-negative")
	}
	if r.PlaceholderSeconds <= 0 {
		return errors.New("render.placeholder_seconds must be positive")
	}
	if r.SafetyTimeoutSeconds <= 0 {
		return errors.New("render.safety_timeout_seconds must be positive")
	}
	if r.EncoderCheckIntervalFrames <= 0 {
		return errors.New("render.encoder_check_interval_frames must be positive")
	}
	if r.CRF < 0 || r.CRF > 51 {
		return fmt.Errorf("render.crf must be between 0 and 51 (got %d)", r.CRF)
	}
	switch r.SampleRate {
	case 22050, 44100, 48000:
	default:
		return fmt.Errorf("render.sample_rate must be 22050, 44100 or 48000 (got %d)", r.SampleRate)
	}
	return nil
}

func (c *Config) validateCaptions() error {
	if c.Captions.BatchSize <= 0 {
		return errors.New("captions.batch_size must be positive")
	}
	if c.Captions.MaxLines <= 0 {
		return errors.New("captions.max_lines must be positive")
	}
	if c.Captions.LookaheadMS < 0 {
		return errors.New("captions.lookahead_ms must be non-negative")
	}
	if c.Captions.FontSize <= 0 {
		return errors.New("captions.font_size must be positive")
	}
	if c.Captions.MinFontSize > c.Captions.FontSize {
		return errors.New("captions.min_font_size must not exceed captions.font_size")
	}
	if c.Captions.BottomMargin < 0 || c.Captions.BottomMargin >= 1 {
		return errors.New("captions.bottom_margin must be between 0 and 1")
	}
	if !strings.HasPrefix(c.Captions.HighlightRGBA, "#") || (len(c.Captions.HighlightRGBA) != 7 && len(c.Captions.HighlightRGBA) != 9) {
		return fmt.Errorf("captions.highlight_color must be #rrggbb or #rrggbbaa (got %q)", c.Captions.HighlightRGBA)
	}
	return nil
}

func (c *Config) validateSegmenter() error {
	s := c.Segmenter
	if s.SearchWindow < 0 {
		return errors.New("segmenter.search_window must be non-negative")
	}
	if s.SentenceWeight < 0 || s.CommaWeight < 0 || s.PauseWeight < 0 || s.DistancePenalty < 0 {
		return errors.New("segmenter weights must be non-negative")
	}
	if s.FallbackDuration <= 0 {
		return errors.New("segmenter.fallback_duration must be positive")
	}
	return nil
}

func (c *Config) validateTranscription() error {
	switch c.Transcription.VADMethod {
	case "silero", "pyannote":
	default:
		return fmt.Errorf("transcription.whisperx_vad_method must be silero or pyannote (got %q)", c.Transcription.VADMethod)
	}
	if c.Transcription.VADMethod == "pyannote" && c.Transcription.HFToken == "" {
		return errors.New("transcription.whisperx_hf_token is required when whisperx_vad_method is pyannote")
	}
	if !language.Transcribes(c.Transcription.Language) {
		return fmt.Errorf("transcription.language %q is not supported", c.Transcription.Language)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error (got %q)", c.Logging.Level)
	}
	return nil
}
