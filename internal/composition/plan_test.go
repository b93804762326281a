package composition_test

import (
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/RaduRS/automan-sub000/internal/composition"
	"github.com/RaduRS/automan-sub000/internal/timing"
)

const tolerance = 1e-9

func twelveWords() string {
	return "one two three four five six seven eight nine ten eleven twelve"
}

func scenes(n int) []timing.Scene {
	out := make([]timing.Scene, n)
	for i := range out {
		out[i] = timing.Scene{ID: i + 1, Text: twelveWords()}
	}
	return out
}

func options() composition.Options {
	opts := composition.DefaultOptions()
	opts.FrameRate = 10
	return opts
}

func newPlan(t *testing.T, n int, opts composition.Options) *composition.Plan {
	t.Helper()
	durations := make([]float64, n)
	for i := range durations {
		durations[i] = 1
	}
	plan, err := composition.NewPlan(scenes(n), timing.PerScene{Durations: durations}, opts)
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}
	return plan
}

func TestFrameCount(t *testing.T) {
	tests := []struct {
		seconds float64
		fps     int
		want    int
	}{
		{9, 30, 270},
		{1.01, 30, 30},
		{1.02, 30, 31},
		{0.001, 30, 1},
	}
	for _, tt := range tests {
		if got := composition.FrameCount(tt.seconds, tt.fps); got != tt.want {
			t.Fatalf("FrameCount(%v, %d) = %d, want %d", tt.seconds, tt.fps, got, tt.want)
		}
	}
}

func TestNewPlanRejectsBadInput(t *testing.T) {
	if _, err := composition.NewPlan(nil, timing.PerScene{Durations: []float64{1}}, options()); err == nil {
		t.Fatal("expected error for empty scenes")
	}
	if _, err := composition.NewPlan(scenes(2), timing.PerScene{Durations: []float64{1}}, options()); err == nil {
		t.Fatal("expected error for scene count mismatch")
	}
	opts := options()
	opts.FrameRate = 0
	if _, err := composition.NewPlan(scenes(1), timing.PerScene{Durations: []float64{1}}, opts); err == nil {
		t.Fatal("expected error for zero frame rate")
	}
	if _, err := composition.NewPlan(scenes(1), timing.PerScene{Durations: []float64{0}}, options()); err == nil {
		t.Fatal("expected error for zero total duration")
	}
}

func TestTickSceneSelection(t *testing.T) {
	plan := newPlan(t, 4, options())
	if got := plan.TotalFrames(); got != 40 {
		t.Fatalf("TotalFrames = %d, want 40", got)
	}

	tests := []struct {
		frame        int
		scene        int
		frameInScene int
		progress     float64
	}{
		{0, 0, 0, 0},
		{5, 0, 5, 0.5},
		{9, 0, 9, 0.9},
		{10, 1, 0, 0},
		{25, 2, 5, 0.5},
		{39, 3, 9, 0.9},
		{-3, 0, 0, 0},
		{500, 3, 9, 0.9},
	}
	for _, tt := range tests {
		st := plan.Tick(tt.frame)
		if st.SceneIndex != tt.scene || st.FrameInScene != tt.frameInScene {
			t.Fatalf("Tick(%d) scene=%d frameInScene=%d, want %d/%d", tt.frame, st.SceneIndex, st.FrameInScene, tt.scene, tt.frameInScene)
		}
		if math.Abs(st.SceneProgress-tt.progress) > 1e-6 {
			t.Fatalf("Tick(%d) progress=%v, want %v", tt.frame, st.SceneProgress, tt.progress)
		}
	}
	if !plan.Tick(10).SceneStart() || plan.Tick(11).SceneStart() {
		t.Fatal("SceneStart should be true only on the first frame of a scene")
	}
}

func TestTickIsDeterministic(t *testing.T) {
	plan := newPlan(t, 3, options())
	for f := range plan.TotalFrames() {
		if a, b := plan.Tick(f), plan.Tick(f); !reflect.DeepEqual(a, b) {
			t.Fatalf("Tick(%d) not deterministic", f)
		}
	}
}

func TestSceneFrames(t *testing.T) {
	plan := newPlan(t, 3, options())
	total := 0
	for i := range plan.SceneCount() {
		first, count := plan.SceneFrames(i)
		if first != i*10 || count != 10 {
			t.Fatalf("SceneFrames(%d) = (%d, %d), want (%d, 10)", i, first, count, i*10)
		}
		total += count
	}
	if total != plan.TotalFrames() {
		t.Fatalf("scene frames sum to %d, want %d", total, plan.TotalFrames())
	}
}

func TestTickGapSelectsLatestStartedScene(t *testing.T) {
	src := timing.Continuous{
		AudioURL: "narration.mp3",
		Timings: []timing.SceneTiming{
			{SceneIndex: 0, StartTime: 0, EndTime: 1},
			{SceneIndex: 1, StartTime: 2, EndTime: 3},
		},
		Total: 3,
	}
	plan, err := composition.NewPlan(scenes(2), src, options())
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}
	if st := plan.Tick(15); st.SceneIndex != 0 || st.SceneProgress != 1 {
		t.Fatalf("gap frame scene=%d progress=%v, want scene 0 at 1", st.SceneIndex, st.SceneProgress)
	}
	if st := plan.Tick(20); st.SceneIndex != 1 || st.FrameInScene != 0 {
		t.Fatalf("frame 20 scene=%d frameInScene=%d, want 1/0", st.SceneIndex, st.FrameInScene)
	}
}

func TestTickCrossfade(t *testing.T) {
	plan := newPlan(t, 3, options())

	if cf := plan.Tick(0).Crossfade; cf.Active || cf.CurrentOpacity != 1 {
		t.Fatalf("first scene should not fade in, got %+v", cf)
	}
	cf := plan.Tick(10).Crossfade
	if !cf.Active || cf.PreviousScene != 0 || cf.CurrentOpacity != 0 || cf.PreviousOpacity != 1 {
		t.Fatalf("Tick(10) crossfade = %+v", cf)
	}
	cf = plan.Tick(11).Crossfade
	if !cf.Active || math.Abs(cf.CurrentOpacity-1.0/3) > tolerance || math.Abs(cf.PreviousOpacity-2.0/3) > tolerance {
		t.Fatalf("Tick(11) crossfade = %+v", cf)
	}
	if cf := plan.Tick(14).Crossfade; cf.Active || cf.CurrentOpacity != 1 {
		t.Fatalf("Tick(14) crossfade should be finished, got %+v", cf)
	}

	opts := options()
	opts.Crossfade = 0
	if cf := newPlan(t, 3, opts).Tick(10).Crossfade; cf.Active {
		t.Fatalf("disabled crossfade reported active: %+v", cf)
	}
}

func TestTickPanFollowsGlobalProgress(t *testing.T) {
	plan := newPlan(t, 4, options())
	tests := []struct {
		frame int
		want  float64
	}{
		{0, 0},
		{10, 1},
		{20, 0},
		{30, -1},
	}
	for _, tt := range tests {
		pan := plan.Tick(tt.frame).Pan
		if math.Abs(pan.Offset-tt.want) > 1e-6 {
			t.Fatalf("Tick(%d) pan offset = %v, want %v", tt.frame, pan.Offset, tt.want)
		}
		if pan.Zoom != 1.15 {
			t.Fatalf("Tick(%d) zoom = %v, want 1.15", tt.frame, pan.Zoom)
		}
	}

	opts := options()
	opts.ZoomFactor = 1
	if pan := newPlan(t, 4, opts).Tick(10).Pan; pan.Offset != 0 {
		t.Fatalf("unzoomed image should not pan, got %+v", pan)
	}
}

func TestTickCaptions(t *testing.T) {
	plan := newPlan(t, 2, options())

	st := plan.Tick(0)
	if st.WordIndex != 1 {
		t.Fatalf("Tick(0) word index = %d, want 1 with look-ahead", st.WordIndex)
	}
	if got := captionText(st.Caption); got != "one two three|four five six" {
		t.Fatalf("Tick(0) caption = %q", got)
	}

	st = plan.Tick(6)
	if st.WordIndex != 8 {
		t.Fatalf("Tick(6) word index = %d, want 8", st.WordIndex)
	}
	if got := captionText(st.Caption); got != "seven eight nine|ten eleven twelve" {
		t.Fatalf("Tick(6) caption = %q", got)
	}
	if !st.Caption.Lines[0][2].Highlighted || st.Caption.Lines[0][1].Highlighted {
		t.Fatal("expected only 'nine' to be highlighted")
	}

	if st := plan.Tick(9); st.WordIndex != 11 {
		t.Fatalf("Tick(9) word index = %d, want clamp to 11", st.WordIndex)
	}

	opts := options()
	opts.Captions = false
	st = newPlan(t, 2, opts).Tick(5)
	if st.WordIndex != -1 || st.Caption.Visible() {
		t.Fatalf("captions disabled but got index %d visible %v", st.WordIndex, st.Caption.Visible())
	}
}

func TestLayout(t *testing.T) {
	words := strings.Fields("a b c d e f g")
	tests := []struct {
		name     string
		words    []string
		current  int
		batch    int
		maxLines int
		want     string
	}{
		{"full batch", words, 2, 6, 2, "a b c|d e f"},
		{"tail batch", words, 6, 6, 2, "g"},
		{"short input", words[:5], 4, 6, 2, "a b c|d e"},
		{"single line", words, 0, 6, 1, "a b c d e f"},
		{"out of range clamps", words, 99, 6, 2, "g"},
		{"empty", nil, 0, 6, 2, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := composition.Layout(tt.words, tt.current, tt.batch, tt.maxLines)
			if got := captionText(c); got != tt.want {
				t.Fatalf("Layout = %q, want %q", got, tt.want)
			}
			if len(c.Lines) > tt.maxLines {
				t.Fatalf("Layout produced %d lines, max %d", len(c.Lines), tt.maxLines)
			}
		})
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := composition.DefaultOptions()
	if opts.FrameRate != 30 || opts.Crossfade != 300*time.Millisecond || opts.CaptionLookahead != 100*time.Millisecond {
		t.Fatalf("unexpected defaults %+v", opts)
	}
}

func captionText(c composition.Caption) string {
	lines := make([]string, 0, len(c.Lines))
	for _, line := range c.Lines {
		parts := make([]string, 0, len(line))
		for _, w := range line {
			parts = append(parts, w.Text)
		}
		lines = append(lines, strings.Join(parts, " "))
	}
	return strings.Join(lines, "|")
}
