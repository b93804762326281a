package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains working, output, and log directory configuration.
type Paths struct {
	WorkDir   string `toml:"work_dir"`
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
	StatePath string `toml:"state_path"`
}

// Render contains frame, encoder, and compositing settings for the renderer.
type Render struct {
	Width                      int     `toml:"width"`
	Height                     int     `toml:"height"`
	FrameRate                  int     `toml:"frame_rate"`
	ZoomFactor                 float64 `toml:"zoom_factor"`
	PanCycles                  float64 `toml:"pan_cycles"`
	CrossfadeMillis            int     `toml:"crossfade_ms"`
	PlaceholderSeconds         float64 `toml:"placeholder_seconds"`
	SafetyTimeoutSeconds       int     `toml:"safety_timeout_seconds"`
	EncoderCheckIntervalFrames int     `toml:"encoder_check_interval_frames"`
	VideoCodec                 string  `toml:"video_codec"`
	Preset                     string  `toml:"preset"`
	CRF                        int     `toml:"crf"`
	AudioCodec                 string  `toml:"audio_codec"`
	AudioBitrate               string  `toml:"audio_bitrate"`
	SampleRate                 int     `toml:"sample_rate"`
	LoadConcurrency            int     `toml:"load_concurrency"`
	FetchTimeoutSeconds        int     `toml:"fetch_timeout_seconds"`
	Captions                   bool    `toml:"captions"`
}

// Captions contains caption layout settings.
type Captions struct {
	BatchSize     int     `toml:"batch_size"`
	MaxLines      int     `toml:"max_lines"`
	LookaheadMS   int     `toml:"lookahead_ms"`
	FontSize      float64 `toml:"font_size"`
	MinFontSize   float64 `toml:"min_font_size"`
	BottomMargin  float64 `toml:"bottom_margin"`
	HighlightRGBA string  `toml:"highlight_color"`
}

// Segmenter contains the scoring weights used to place scene boundaries.
type Segmenter struct {
	SearchWindow     int     `toml:"search_window"`
	SentenceWeight   float64 `toml:"sentence_weight"`
	CommaWeight      float64 `toml:"comma_weight"`
	PauseWeight      float64 `toml:"pause_weight"`
	DistancePenalty  float64 `toml:"distance_penalty"`
	FallbackDuration float64 `toml:"fallback_duration"`
}

// Transcription contains WhisperX settings for the narration transcriber.
type Transcription struct {
	Model       string `toml:"whisperx_model"`
	CUDAEnabled bool   `toml:"whisperx_cuda_enabled"`
	VADMethod   string `toml:"whisperx_vad_method"`
	HFToken     string `toml:"whisperx_hf_token"`
	Language    string `toml:"language"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	RenderComplete bool   `toml:"render_complete"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for automan.
//
// Configuration sections by subsystem:
//   - Paths: work, output, log directories and the job database
//   - Render: frame geometry, timing constants, encoder settings
//   - Captions: caption batching and layout
//   - Segmenter: boundary scoring weights
//   - Transcription: WhisperX narration transcription
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Render        Render        `toml:"render"`
	Captions      Captions      `toml:"captions"`
	Segmenter     Segmenter     `toml:"segmenter"`
	Transcription Transcription `toml:"transcription"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/automan/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("automan.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the work, output, and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.OutputDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if dir := filepath.Dir(c.Paths.StatePath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name used for decoding and encoding.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for media validation.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

// CrossfadeDuration returns the scene cross-fade length.
func (c *Config) CrossfadeDuration() time.Duration {
	return time.Duration(c.Render.CrossfadeMillis) * time.Millisecond
}

// SafetyTimeout returns the wall-clock ceiling for the recording phase.
func (c *Config) SafetyTimeout() time.Duration {
	return time.Duration(c.Render.SafetyTimeoutSeconds) * time.Second
}

// FetchTimeout returns the per-request timeout for remote media.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Render.FetchTimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
