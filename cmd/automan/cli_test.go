package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"
	"github.com/pelletier/go-toml/v2"

	"github.com/RaduRS/automan-sub000/internal/composition"
	"github.com/RaduRS/automan-sub000/internal/config"
	"github.com/RaduRS/automan-sub000/internal/preflight"
	"github.com/RaduRS/automan-sub000/internal/queue"
	"github.com/RaduRS/automan-sub000/internal/testsupport"
	"github.com/RaduRS/automan-sub000/internal/timing"
)

type cliEnv struct {
	cfg        *config.Config
	configPath string
	dir        string
}

func setupCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	t.Setenv("AUTOMAN_NTFY_TOPIC", "")
	cfg := testsupport.NewConfig(t)
	dir := testsupport.BaseDir(cfg)
	configPath := filepath.Join(dir, "config.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliEnv{cfg: cfg, configPath: configPath, dir: dir}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func (e *cliEnv) store(t *testing.T) *queue.Store {
	t.Helper()
	return testsupport.MustOpenStore(t, e.cfg)
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "config.toml")

	out, _, err := runCLI(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("expected output to name %s, got %q", target, out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config missing: %v", err)
	}

	if _, _, err := runCLI(t, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected second init without --overwrite to fail")
	}
	if _, _, err := runCLI(t, "", "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	env := setupCLIEnv(t)

	out, _, err := runCLI(t, env.configPath, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	for _, want := range []string{env.configPath, "64x96", "Configuration valid"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got %q", want, out)
		}
	}
}

func TestConfigValidateRejectsBadValues(t *testing.T) {
	env := setupCLIEnv(t)
	env.cfg.Render.FrameRate = -1
	writeTestConfig(t, env.configPath, env.cfg)

	if _, _, err := runCLI(t, env.configPath, "config", "validate"); err == nil {
		t.Fatal("expected validation error for negative frame rate")
	}
}

func writeWords(t *testing.T, dir string) string {
	t.Helper()
	words := []timing.Word{
		{Text: "hello", PunctuatedText: "Hello", Start: 0, End: 0.5},
		{Text: "world", PunctuatedText: "world.", Start: 0.5, End: 1.0},
		{Text: "bye", PunctuatedText: "Bye", Start: 1.2, End: 1.6},
		{Text: "now", PunctuatedText: "now.", Start: 1.6, End: 2.0},
	}
	data, err := json.Marshal(words)
	if err != nil {
		t.Fatalf("marshal words: %v", err)
	}
	path := filepath.Join(dir, "words.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write words: %v", err)
	}
	return path
}

func TestSegmentPrintsContiguousTimings(t *testing.T) {
	env := setupCLIEnv(t)
	wordsPath := writeWords(t, env.dir)

	out, _, err := runCLI(t, env.configPath, "segment", wordsPath, "--scenes", "2")
	if err != nil {
		t.Fatalf("segment: %v", err)
	}
	var timings []timing.SceneTiming
	if err := json.Unmarshal([]byte(out), &timings); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if len(timings) != 2 {
		t.Fatalf("expected 2 timings, got %d", len(timings))
	}
	if timings[0].StartTime != 0 {
		t.Fatalf("first scene should start at 0, got %v", timings[0].StartTime)
	}
	if timings[0].EndTime != timings[1].StartTime {
		t.Fatalf("timings not contiguous: %+v", timings)
	}
	if timings[1].EndTime != 2.0 {
		t.Fatalf("last scene should end with the last word, got %v", timings[1].EndTime)
	}
}

func TestSegmentRequiresSceneCount(t *testing.T) {
	env := setupCLIEnv(t)
	wordsPath := writeWords(t, env.dir)

	_, _, err := runCLI(t, env.configPath, "segment", wordsPath)
	if err == nil || !strings.Contains(err.Error(), "scene count required") {
		t.Fatalf("expected scene count error, got %v", err)
	}
}

func TestSegmentUpdatesComposition(t *testing.T) {
	env := setupCLIEnv(t)
	wordsPath := writeWords(t, env.dir)

	docPath := filepath.Join(env.dir, "short.json")
	doc := &composition.Document{
		Title: "Two Scenes",
		Scenes: []timing.Scene{
			{ID: 1, Text: "Hello world.", ImageURL: "a.png"},
			{ID: 2, Text: "Bye now.", ImageURL: "b.png"},
		},
	}
	if err := doc.Save(docPath); err != nil {
		t.Fatalf("save composition: %v", err)
	}
	timingsPath := filepath.Join(env.dir, "timings.json")

	_, stderr, err := runCLI(t, env.configPath, "segment", wordsPath,
		"--composition", docPath, "--audio", "narration.mp3", "-o", timingsPath)
	if err != nil {
		t.Fatalf("segment: %v", err)
	}
	if !strings.Contains(stderr, "Updated") {
		t.Fatalf("expected update notice, got %q", stderr)
	}

	updated, err := composition.LoadDocument(docPath)
	if err != nil {
		t.Fatalf("reload composition: %v", err)
	}
	ca := updated.ContinuousAudio
	if ca == nil {
		t.Fatal("expected continuousAudio to be written")
	}
	if ca.AudioURL != "narration.mp3" || len(ca.SceneTimings) != 2 || ca.TotalDuration != 2.0 {
		t.Fatalf("unexpected continuousAudio: %+v", ca)
	}
	if _, err := os.Stat(timingsPath); err != nil {
		t.Fatalf("timings file missing: %v", err)
	}
}

func TestJobsListShowAndClear(t *testing.T) {
	env := setupCLIEnv(t)
	store := env.store(t)
	first := testsupport.NewJob(t, store, "first-short")
	second := testsupport.NewJob(t, store, "second-short")
	ctx := context.Background()
	if err := store.MarkCompleted(ctx, first.ID, queue.Outcome{
		OutputPath:     first.OutputPath,
		FramesRendered: 90,
		TimingsJSON:    `[{"sceneIndex":0,"startTime":0,"endTime":3}]`,
	}); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}

	out, _, err := runCLI(t, env.configPath, "jobs", "list")
	if err != nil {
		t.Fatalf("jobs list: %v", err)
	}
	for _, want := range []string{"first-short", "second-short", "completed", "pending"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in list, got:\n%s", want, out)
		}
	}

	out, _, err = runCLI(t, env.configPath, "jobs", "list", "--status", "pending")
	if err != nil {
		t.Fatalf("jobs list --status: %v", err)
	}
	if strings.Contains(out, "first-short") || !strings.Contains(out, "second-short") {
		t.Fatalf("status filter not applied:\n%s", out)
	}

	if _, _, err := runCLI(t, env.configPath, "jobs", "list", "--status", "bogus"); err == nil {
		t.Fatal("expected unknown status to fail")
	}

	out, _, err = runCLI(t, env.configPath, "jobs", "show", "1", "--timings")
	if err != nil {
		t.Fatalf("jobs show: %v", err)
	}
	for _, want := range []string{"first-short", "Frames:", "90", `"endTime":3`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in show output, got:\n%s", want, out)
		}
	}

	out, _, err = runCLI(t, env.configPath, "jobs", "clear")
	if err != nil {
		t.Fatalf("jobs clear: %v", err)
	}
	if !strings.Contains(out, "Cleared 1 jobs") {
		t.Fatalf("expected one finished job cleared, got %q", out)
	}
	if job, err := store.GetByID(ctx, second.ID); err != nil || job == nil {
		t.Fatalf("pending job should survive clear: job=%v err=%v", job, err)
	}
}

func TestJobsShowAndRemoveMissing(t *testing.T) {
	env := setupCLIEnv(t)

	if _, _, err := runCLI(t, env.configPath, "jobs", "show", "42"); err == nil {
		t.Fatal("expected missing job error")
	}
	if _, _, err := runCLI(t, env.configPath, "jobs", "remove", "abc"); err == nil {
		t.Fatal("expected invalid id error")
	}
}

func TestJobsRemove(t *testing.T) {
	env := setupCLIEnv(t)
	store := env.store(t)
	job := testsupport.NewJob(t, store, "doomed")

	out, _, err := runCLI(t, env.configPath, "jobs", "remove", "1")
	if err != nil {
		t.Fatalf("jobs remove: %v", err)
	}
	if !strings.Contains(out, "Removed job 1") {
		t.Fatalf("unexpected output %q", out)
	}
	if got, _ := store.GetByID(context.Background(), job.ID); got != nil {
		t.Fatal("job should be gone")
	}
}

func TestRecoveryKeepsLockedRenders(t *testing.T) {
	env := setupCLIEnv(t)
	store := env.store(t)
	ctx := context.Background()

	newRecording := func(name string) *queue.Job {
		job, err := store.NewJob(ctx, queue.NewJobParams{
			Title:      name,
			OutputPath: filepath.Join(env.dir, name+".mp4"),
			SceneCount: 1,
		})
		if err != nil {
			t.Fatalf("NewJob: %v", err)
		}
		if err := store.UpdateProgress(ctx, job.ID, queue.Progress{Status: queue.StatusRecording}); err != nil {
			t.Fatalf("UpdateProgress: %v", err)
		}
		return job
	}
	live := newRecording("live")
	crashed := newRecording("crashed")
	stale := newRecording("stale")

	held := flock.New(outputLockPath(live.OutputPath))
	if ok, err := held.TryLock(); err != nil || !ok {
		t.Fatalf("lock live output: ok=%v err=%v", ok, err)
	}
	t.Cleanup(func() { _ = held.Unlock() })
	// A lock file left behind by a killed process is not held by anyone.
	if err := os.WriteFile(outputLockPath(stale.OutputPath), nil, 0o644); err != nil {
		t.Fatalf("write stale lock: %v", err)
	}

	n, err := store.FailInterrupted(ctx, renderActive)
	if err != nil {
		t.Fatalf("FailInterrupted: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 interrupted renders, got %d", n)
	}
	tests := []struct {
		job  *queue.Job
		want queue.Status
	}{
		{live, queue.StatusRecording},
		{crashed, queue.StatusFailed},
		{stale, queue.StatusFailed},
	}
	for _, tt := range tests {
		got, err := store.GetByID(ctx, tt.job.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.Status != tt.want {
			t.Errorf("%s: status = %s, want %s", tt.job.Title, got.Status, tt.want)
		}
	}
}

func TestTestNotifyWithoutTopic(t *testing.T) {
	env := setupCLIEnv(t)

	out, _, err := runCLI(t, env.configPath, "test-notify")
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	if !strings.Contains(out, "disabled") {
		t.Fatalf("expected disabled notice, got %q", out)
	}
}

func TestResolveOutputPath(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	got, err := resolveOutputPath(cfg, "", "My Great Short")
	if err != nil {
		t.Fatalf("resolveOutputPath: %v", err)
	}
	if filepath.Dir(got) != cfg.Paths.OutputDir || filepath.Ext(got) != ".mp4" {
		t.Fatalf("unexpected default output %q", got)
	}

	explicit := filepath.Join(t.TempDir(), "clip")
	got, err = resolveOutputPath(cfg, explicit, "ignored")
	if err != nil {
		t.Fatalf("resolveOutputPath: %v", err)
	}
	if got != explicit+".mp4" {
		t.Fatalf("expected extension to be added, got %q", got)
	}
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		percent float64
		want    string
	}{
		{0, "[....]"},
		{50, "[##..]"},
		{100, "[####]"},
		{150, "[####]"},
		{-5, "[....]"},
	}
	for _, tt := range tests {
		if got := progressBar(tt.percent, 4); got != tt.want {
			t.Errorf("progressBar(%v) = %q, want %q", tt.percent, got, tt.want)
		}
	}
}

func TestCheckLine(t *testing.T) {
	tests := []struct {
		result preflight.Result
		want   string
	}{
		{preflight.Result{Name: "Work directory", Passed: true, Detail: "/tmp/work"}, "  Work directory:      [OK] /tmp/work"},
		{preflight.Result{Name: "FFmpeg encoders", Detail: "missing libx264"}, "  FFmpeg encoders:     [FAIL] missing libx264"},
		{preflight.Result{Name: "Output directory", Passed: true}, "  Output directory:    [OK]"},
	}
	for _, tt := range tests {
		if got := checkLine(tt.result, false); got != tt.want {
			t.Errorf("checkLine(%s) = %q, want %q", tt.result.Name, got, tt.want)
		}
	}
	// Colour codes depend on NO_COLOR and TERM, only the text is stable.
	colored := checkLine(preflight.Result{Name: "ntfy", Detail: "unreachable"}, true)
	if !strings.Contains(colored, "[FAIL] unreachable") {
		t.Errorf("expected failure line, got %q", colored)
	}
}

func TestJobTone(t *testing.T) {
	tests := []struct {
		status queue.Status
		want   tone
	}{
		{queue.StatusPending, toneNeutral},
		{queue.StatusRecording, toneBusy},
		{queue.StatusFinalizing, toneBusy},
		{queue.StatusCompleted, toneGood},
		{queue.StatusFailed, toneBad},
		{queue.StatusCancelled, toneBad},
	}
	for _, tt := range tests {
		if got := jobTone(tt.status); got != tt.want {
			t.Errorf("jobTone(%s) = %d, want %d", tt.status, got, tt.want)
		}
	}
	if got := paint("completed", toneGood, false); got != "completed" {
		t.Errorf("paint without colour changed text: %q", got)
	}
}

func TestDepsReportsStubbedTools(t *testing.T) {
	t.Setenv("AUTOMAN_NTFY_TOPIC", "")
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)

	out, _, err := runCLI(t, configPath, "deps")
	if err != nil {
		t.Fatalf("deps: %v\n%s", err, out)
	}
	for _, want := range []string{"FFmpeg", "FFprobe", "uvx", "available", "Preflight", "FFmpeg encoders", "[OK]"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in deps output:\n%s", want, out)
		}
	}
}

func TestDepsFailsWithoutEncoders(t *testing.T) {
	t.Setenv("AUTOMAN_NTFY_TOPIC", "")
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	cfg.Render.VideoCodec = "libsvtav1"
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)

	out, _, err := runCLI(t, configPath, "deps")
	if err == nil || !strings.Contains(err.Error(), "FFmpeg encoders") {
		t.Fatalf("expected encoder failure, got %v\n%s", err, out)
	}
	if !strings.Contains(out, "missing libsvtav1") {
		t.Fatalf("expected missing encoder detail:\n%s", out)
	}
}
