package composition

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/RaduRS/automan-sub000/internal/timing"
)

// Options are the frame-level constants for a render.
type Options struct {
	FrameRate        int
	ZoomFactor       float64
	PanCycles        float64
	Crossfade        time.Duration
	Captions         bool
	CaptionBatch     int
	CaptionMaxLines  int
	CaptionLookahead time.Duration
}

// DefaultOptions returns the stock frame constants.
func DefaultOptions() Options {
	return Options{
		FrameRate:        30,
		ZoomFactor:       1.15,
		PanCycles:        1,
		Crossfade:        300 * time.Millisecond,
		Captions:         true,
		CaptionBatch:     6,
		CaptionMaxLines:  2,
		CaptionLookahead: 100 * time.Millisecond,
	}
}

// Plan is the immutable per-render lookup table behind Tick.
type Plan struct {
	opts        Options
	timeline    *timing.Timeline
	words       [][]string
	totalFrames int
	sceneAt     []int
	firstFrame  []int
}

// NewPlan validates inputs and precomputes the frame-to-scene table.
func NewPlan(scenes []timing.Scene, src timing.Source, opts Options) (*Plan, error) {
	if len(scenes) == 0 {
		return nil, errors.New("composition: no scenes")
	}
	if src == nil {
		return nil, errors.New("composition: timing source required")
	}
	if opts.FrameRate <= 0 {
		return nil, fmt.Errorf("composition: invalid frame rate %d", opts.FrameRate)
	}
	if opts.ZoomFactor < 1 {
		opts.ZoomFactor = 1
	}
	if opts.CaptionBatch <= 0 {
		opts.CaptionBatch = DefaultOptions().CaptionBatch
	}
	if opts.CaptionMaxLines <= 0 {
		opts.CaptionMaxLines = DefaultOptions().CaptionMaxLines
	}

	timeline := timing.NewTimeline(src)
	if timeline.SceneCount() != len(scenes) {
		return nil, fmt.Errorf("composition: timing source has %d scenes, composition has %d", timeline.SceneCount(), len(scenes))
	}
	total := timeline.Total()
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return nil, fmt.Errorf("composition: invalid total duration %v", total)
	}

	p := &Plan{
		opts:        opts,
		timeline:    timeline,
		words:       make([][]string, len(scenes)),
		totalFrames: FrameCount(total, opts.FrameRate),
		firstFrame:  make([]int, len(scenes)),
	}
	for i, scene := range scenes {
		p.words[i] = strings.Fields(scene.Text)
		p.firstFrame[i] = -1
	}
	p.sceneAt = make([]int, p.totalFrames)
	for f := range p.sceneAt {
		idx := timeline.Locate(p.FrameTime(f))
		p.sceneAt[f] = idx
		if p.firstFrame[idx] < 0 {
			p.firstFrame[idx] = f
		}
	}
	return p, nil
}

// FrameCount returns round(seconds * fps), never less than one frame.
func FrameCount(seconds float64, fps int) int {
	n := int(math.Round(seconds * float64(fps)))
	if n < 1 {
		return 1
	}
	return n
}

// TotalFrames returns the number of frames the render produces.
func (p *Plan) TotalFrames() int { return p.totalFrames }

// Duration returns the timeline length in seconds.
func (p *Plan) Duration() float64 { return p.timeline.Total() }

// FrameRate returns the frames per second.
func (p *Plan) FrameRate() int { return p.opts.FrameRate }

// Options returns the options the plan was built with.
func (p *Plan) Options() Options { return p.opts }

// SceneCount returns the number of scenes.
func (p *Plan) SceneCount() int { return len(p.words) }

// FrameTime returns the presentation time of frame in seconds.
func (p *Plan) FrameTime(frame int) float64 {
	return float64(frame) / float64(p.opts.FrameRate)
}

// SceneFrames returns the first frame showing scene i and the number of
// frames it stays on screen. Scenes that never become active report (-1, 0).
func (p *Plan) SceneFrames(i int) (first, count int) {
	first = p.firstFrame[i]
	if first < 0 {
		return -1, 0
	}
	for f := first; f < p.totalFrames && p.sceneAt[f] == i; f++ {
		count++
	}
	return first, count
}

// SceneRange returns the timing range of scene i.
func (p *Plan) SceneRange(i int) timing.SceneTiming {
	return p.timeline.Range(i)
}
