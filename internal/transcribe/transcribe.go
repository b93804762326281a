package transcribe

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/RaduRS/automan-sub000/internal/config"
	"github.com/RaduRS/automan-sub000/internal/language"
	"github.com/RaduRS/automan-sub000/internal/services"
	"github.com/RaduRS/automan-sub000/internal/timing"
)

// WhisperX invocation constants.
const (
	UVXCommand        = "uvx"
	DefaultModel      = "large-v3-turbo"
	CUDAIndexURL      = "https://download.pytorch.org/whl/cu128"
	PypiIndexURL      = "https://pypi.org/simple"
	BatchSize         = "4"
	ChunkSize         = "15"
	BeamSize          = "5"
	Temperature       = "0.0"
	OutputFormat      = "json"
	CPUDevice         = "cpu"
	CUDADevice        = "cuda"
	CPUComputeType    = "float32"
	VADMethodPyannote = "pyannote"
	VADMethodSilero   = "silero"

	extractName = "narration.wav"
)

// CommandRunner launches an external process and waits for it.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// Service transcribes narration with WhisperX.
type Service struct {
	cfg           config.Transcription
	ffmpegBinary  string
	commandRunner CommandRunner
}

// New returns a service using the given settings and ffmpeg binary.
func New(cfg config.Transcription, ffmpegBinary string) *Service {
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	return &Service{cfg: cfg, ffmpegBinary: ffmpegBinary}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner CommandRunner) *Service {
	s.commandRunner = runner
	return s
}

// Model returns the configured model name for logging.
func (s *Service) Model() string {
	if s.cfg.Model != "" {
		return s.cfg.Model
	}
	return DefaultModel
}

// Transcribe extracts source (a path or URL ffmpeg can read) into workDir and
// returns the aligned words WhisperX produced for it.
func (s *Service) Transcribe(ctx context.Context, source, workDir string) ([]timing.Word, error) {
	if strings.TrimSpace(source) == "" {
		return nil, services.Wrap(services.ErrValidation, "transcribe", "input", "narration audio required", nil)
	}
	if strings.TrimSpace(workDir) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "transcribe", "input", "work directory required", nil)
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "transcribe", "ensure work dir", "", err)
	}

	wav := filepath.Join(workDir, extractName)
	if err := s.run(ctx, s.ffmpegBinary, extractArgs(source, wav)...); err != nil {
		return nil, s.wrapRun(ctx, "ffmpeg extract", err)
	}
	if err := s.run(ctx, UVXCommand, s.buildArgs(wav, workDir)...); err != nil {
		return nil, s.wrapRun(ctx, "whisperx", err)
	}

	jsonPath := filepath.Join(workDir, strings.TrimSuffix(extractName, filepath.Ext(extractName))+".json")
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "transcribe", "read whisperx output", "", err)
	}
	words, err := timing.ParseWords(data)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "transcribe", "parse whisperx output", "", err)
	}
	if len(words) == 0 {
		return nil, services.Wrap(services.ErrValidation, "transcribe", "parse whisperx output", "no words recognized", nil)
	}
	return words, nil
}

func (s *Service) wrapRun(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		return services.Wrap(services.ErrCancelled, "transcribe", op, "", ctx.Err())
	}
	return services.Wrap(services.ErrExternalTool, "transcribe", op, "", err)
}

func extractArgs(source, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	}
}

func (s *Service) buildArgs(source, outputDir string) []string {
	args := make([]string, 0, 32)
	if s.cfg.CUDAEnabled {
		args = append(args, "--index-url", CUDAIndexURL, "--extra-index-url", PypiIndexURL)
	} else {
		args = append(args, "--index-url", PypiIndexURL)
	}

	args = append(args,
		"whisperx",
		source,
		"--model", s.Model(),
		"--batch_size", BatchSize,
		"--chunk_size", ChunkSize,
		"--beam_size", BeamSize,
		"--temperature", Temperature,
		"--output_dir", outputDir,
		"--output_format", OutputFormat,
	)

	vad := s.cfg.VADMethod
	if vad == "" {
		vad = VADMethodSilero
	}
	args = append(args, "--vad_method", vad)
	if vad == VADMethodPyannote && s.cfg.HFToken != "" {
		args = append(args, "--hf_token", s.cfg.HFToken)
	}

	if lang := language.ToISO2(s.cfg.Language); lang != "" {
		args = append(args, "--language", lang)
	}

	if s.cfg.CUDAEnabled {
		args = append(args, "--device", CUDADevice)
	} else {
		args = append(args, "--device", CPUDevice, "--compute_type", CPUComputeType)
	}
	return args
}

func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec

	// Torch 2.6 loads checkpoints with weights_only=true, which pyannote
	// models bundled with WhisperX cannot satisfy.
	if os.Getenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD") == "" {
		cmd.Env = append(os.Environ(), "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1")
	}

	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
