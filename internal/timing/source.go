package timing

import (
	"fmt"
	"strings"
)

// Source is the timing variant resolved once per render pass: either
// Continuous narration timings or PerScene clip durations.
type Source interface {
	// Ranges returns one contiguous-or-not range per scene, in scene order.
	Ranges() []SceneTiming
	// TotalDuration is the length of the rendered timeline in seconds.
	TotalDuration() float64
	// Mode names the variant for logs and job records.
	Mode() string
	isSource()
}

// Continuous drives every scene from one narration track.
type Continuous struct {
	AudioURL string
	Timings  []SceneTiming
	Total    float64
}

// PerScene drives each scene from its own clip length.
type PerScene struct {
	Durations []float64
}

func (Continuous) isSource() {}
func (PerScene) isSource()   {}

// Mode implements Source.
func (Continuous) Mode() string { return "continuous" }

// Mode implements Source.
func (PerScene) Mode() string { return "per_scene" }

// Ranges implements Source.
func (c Continuous) Ranges() []SceneTiming {
	out := make([]SceneTiming, len(c.Timings))
	copy(out, c.Timings)
	return out
}

// TotalDuration implements Source. A zero Total defaults to the last range end.
func (c Continuous) TotalDuration() float64 {
	if c.Total > 0 {
		return c.Total
	}
	end := 0.0
	for _, t := range c.Timings {
		end = max(end, t.EndTime)
	}
	return end
}

// Ranges implements Source using a cumulative-duration table.
func (p PerScene) Ranges() []SceneTiming {
	out := make([]SceneTiming, len(p.Durations))
	cursor := 0.0
	for i, d := range p.Durations {
		out[i] = SceneTiming{SceneIndex: i, StartTime: cursor, EndTime: cursor + d}
		cursor += d
	}
	return out
}

// TotalDuration implements Source.
func (p PerScene) TotalDuration() float64 {
	total := 0.0
	for _, d := range p.Durations {
		total += d
	}
	return total
}

// Resolve picks the timing variant for a render. Continuous timings are used
// only when they name an audio track and cover every scene in order with
// positive durations; otherwise PerScene is built from clipDurations, with
// fallback standing in for any non-positive entry. The returned reason is
// empty when continuous timings were accepted or not supplied.
func Resolve(sceneCount int, continuous *ContinuousAudio, clipDurations []float64, fallback float64) (Source, string) {
	if continuous == nil {
		return perScene(sceneCount, clipDurations, fallback), ""
	}
	if reason := validateContinuous(sceneCount, continuous); reason != "" {
		return perScene(sceneCount, clipDurations, fallback), reason
	}
	return Continuous{
		AudioURL: continuous.AudioURL,
		Timings:  append([]SceneTiming(nil), continuous.SceneTimings...),
		Total:    continuous.TotalDuration,
	}, ""
}

func perScene(sceneCount int, clipDurations []float64, fallback float64) PerScene {
	durations := make([]float64, sceneCount)
	for i := range durations {
		d := 0.0
		if i < len(clipDurations) {
			d = clipDurations[i]
		}
		if d <= 0 {
			d = fallback
		}
		durations[i] = d
	}
	return PerScene{Durations: durations}
}

func validateContinuous(sceneCount int, c *ContinuousAudio) string {
	if strings.TrimSpace(c.AudioURL) == "" {
		return "continuous audio has no audioUrl"
	}
	if len(c.SceneTimings) != sceneCount {
		return fmt.Sprintf("continuous audio has %d scene timings for %d scenes", len(c.SceneTimings), sceneCount)
	}
	for i, t := range c.SceneTimings {
		if t.SceneIndex != i {
			return fmt.Sprintf("scene timing %d has sceneIndex %d", i, t.SceneIndex)
		}
		if t.EndTime <= t.StartTime {
			return fmt.Sprintf("scene timing %d has non-positive duration", i)
		}
	}
	return ""
}

// Timeline answers which scene is active at a point in time.
type Timeline struct {
	ranges []SceneTiming
	total  float64
}

// NewTimeline builds a lookup table for src.
func NewTimeline(src Source) *Timeline {
	return &Timeline{ranges: src.Ranges(), total: src.TotalDuration()}
}

// SceneCount returns the number of scenes on the timeline.
func (t *Timeline) SceneCount() int { return len(t.ranges) }

// Total returns the timeline length in seconds.
func (t *Timeline) Total() float64 { return t.total }

// Range returns the time range of scene i.
func (t *Timeline) Range(i int) SceneTiming { return t.ranges[i] }

// Locate returns the scene active at seconds. A time inside a range selects
// that range; a time between ranges selects the latest range that has already
// started; a time before every range selects scene 0.
func (t *Timeline) Locate(seconds float64) int {
	if len(t.ranges) == 0 {
		return 0
	}
	latest := -1
	for i, r := range t.ranges {
		if seconds >= r.StartTime && seconds < r.EndTime {
			return i
		}
		if r.StartTime <= seconds && (latest < 0 || r.StartTime >= t.ranges[latest].StartTime) {
			latest = i
		}
	}
	if latest < 0 {
		return 0
	}
	return latest
}

// Progress returns how far through scene i the given time is, clamped to [0,1].
func (t *Timeline) Progress(i int, seconds float64) float64 {
	r := t.ranges[i]
	d := r.EndTime - r.StartTime
	if d <= 0 {
		if seconds >= r.EndTime {
			return 1
		}
		return 0
	}
	return clamp01((seconds - r.StartTime) / d)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
