package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/RaduRS/automan-sub000/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Frame geometry is shrunk so renders in tests stay cheap.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.WorkDir = filepath.Join(base, "work")
	cfgVal.Paths.OutputDir = filepath.Join(base, "out")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.StatePath = filepath.Join(base, "state", "jobs.db")
	cfgVal.Render.Width = 64
	cfgVal.Render.Height = 96
	cfgVal.Captions.FontSize = 12
	cfgVal.Captions.MinFontSize = 6
	cfgVal.Notifications.NtfyTopic = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithFrameRate overrides the render frame rate on the test config.
func WithFrameRate(fps int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Render.FrameRate = fps
	}
}

// WithNtfyTopic points notifications at the given endpoint.
func WithNtfyTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
	}
}

// WithStubbedBinaries writes stub executables for names (default ffmpeg,
// ffprobe and uvx) and puts them first on PATH for the test. The ffmpeg stub
// answers -encoders with the codecs configured at the time the option runs.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe", "uvx"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		for _, name := range names {
			script := "#!/bin/sh\nexit 0\n"
			if name == "ffmpeg" {
				script = fmt.Sprintf("#!/bin/sh\ncat <<'EOF'\nEncoders:\n ------\n V....D %s stub video\n A....D %s stub audio\nEOF\n",
					b.cfg.Render.VideoCodec, b.cfg.Render.AudioCodec)
			}
			if err := os.WriteFile(filepath.Join(binDir, name), []byte(script), 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}
		b.t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WorkDir)
}
