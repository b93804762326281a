package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/RaduRS/automan-sub000/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("HF_TOKEN", "")
	t.Setenv("HUGGING_FACE_HUB_TOKEN", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantWork := filepath.Join(tempHome, ".local", "share", "automan", "work")
	if cfg.Paths.WorkDir != wantWork {
		t.Fatalf("unexpected work dir: got %q want %q", cfg.Paths.WorkDir, wantWork)
	}
	if cfg.Paths.OutputDir != filepath.Join(tempHome, "Videos", "automan") {
		t.Fatalf("unexpected output dir: %q", cfg.Paths.OutputDir)
	}
	if cfg.Render.FrameRate != 30 {
		t.Fatalf("expected 30 fps default, got %d", cfg.Render.FrameRate)
	}
	if cfg.Render.CrossfadeMillis != 300 {
		t.Fatalf("expected 300ms cross-fade default, got %d", cfg.Render.CrossfadeMillis)
	}
	if cfg.Captions.BatchSize != 6 || cfg.Captions.MaxLines != 2 {
		t.Fatalf("unexpected caption defaults: %+v", cfg.Captions)
	}
	if cfg.Segmenter.SearchWindow != 8 || cfg.Segmenter.FallbackDuration != 30 {
		t.Fatalf("unexpected segmenter defaults: %+v", cfg.Segmenter)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.WorkDir, cfg.Paths.OutputDir, cfg.Paths.LogDir, filepath.Dir(cfg.Paths.StatePath)} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be a directory", dir)
		}
	}
}

func TestLoadCustomConfig(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(t.TempDir(), "config.toml")
	payload := struct {
		Paths struct {
			WorkDir   string `toml:"work_dir"`
			OutputDir string `toml:"output_dir"`
		} `toml:"paths"`
		Render struct {
			FrameRate  int     `toml:"frame_rate"`
			ZoomFactor float64 `toml:"zoom_factor"`
		} `toml:"render"`
		Segmenter struct {
			SearchWindow int `toml:"search_window"`
		} `toml:"segmenter"`
	}{}
	payload.Paths.WorkDir = "~/work"
	payload.Paths.OutputDir = "~/out"
	payload.Render.FrameRate = 24
	payload.Render.ZoomFactor = 1.3
	payload.Segmenter.SearchWindow = 4

	data, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config to exist")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Paths.WorkDir != filepath.Join(tempHome, "work") {
		t.Fatalf("unexpected work dir: %q", cfg.Paths.WorkDir)
	}
	if cfg.Render.FrameRate != 24 || cfg.Render.ZoomFactor != 1.3 {
		t.Fatalf("unexpected render overrides: %+v", cfg.Render)
	}
	if cfg.Segmenter.SearchWindow != 4 {
		t.Fatalf("unexpected search window: %d", cfg.Segmenter.SearchWindow)
	}
	if cfg.Segmenter.SentenceWeight != 10 {
		t.Fatalf("expected untouched weight default, got %v", cfg.Segmenter.SentenceWeight)
	}
}

func TestNormalizeReadsEnvFallbacks(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("HF_TOKEN", "hf-secret")
	t.Setenv("AUTOMAN_NTFY_TOPIC", "https://ntfy.example/renders")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Transcription.HFToken != "hf-secret" {
		t.Fatalf("expected HF token from env, got %q", cfg.Transcription.HFToken)
	}
	if cfg.Notifications.NtfyTopic != "https://ntfy.example/renders" {
		t.Fatalf("expected ntfy topic from env, got %q", cfg.Notifications.NtfyTopic)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"odd width", func(c *config.Config) { c.Render.Width = 1081 }, "even"},
		{"zero frame rate", func(c *config.Config) { c.Render.FrameRate = 0 }, "render.frame_rate"},
		{"zoom below one", func(c *config.Config) { c.Render.ZoomFactor = 0.9 }, "render.zoom_factor"},
		{"negative crossfade", func(c *config.Config) { c.Render.CrossfadeMillis = -1 }, "render.crossfade_ms"},
		{"zero check interval", func(c *config.Config) { c.Render.EncoderCheckIntervalFrames = 0 }, "encoder_check_interval_frames"},
		{"bad sample rate", func(c *config.Config) { c.Render.SampleRate = 8000 }, "render.sample_rate"},
		{"zero batch", func(c *config.Config) { c.Captions.BatchSize = 0 }, "captions.batch_size"},
		{"bad colour", func(c *config.Config) { c.Captions.HighlightRGBA = "yellow" }, "captions.highlight_color"},
		{"negative weight", func(c *config.Config) { c.Segmenter.CommaWeight = -1 }, "segmenter weights"},
		{"zero fallback", func(c *config.Config) { c.Segmenter.FallbackDuration = 0 }, "segmenter.fallback_duration"},
		{"pyannote without token", func(c *config.Config) {
			c.Transcription.VADMethod = "pyannote"
			c.Transcription.HFToken = ""
		}, "whisperx_hf_token"},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error to mention %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestCreateSampleWritesParseableConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	if cfg.Render.Width != 1080 || cfg.Render.Height != 1920 {
		t.Fatalf("unexpected sample dimensions: %dx%d", cfg.Render.Width, cfg.Render.Height)
	}
}
