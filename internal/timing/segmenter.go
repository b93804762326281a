package timing

import (
	"errors"
	"math"
	"strings"
)

// ErrNoScenes is returned when segmentation is asked for zero scenes.
var ErrNoScenes = errors.New("segment: at least one scene is required")

// Weights controls how candidate boundary words are scored.
type Weights struct {
	// SearchWindow is how many words either side of the even-split target are considered.
	SearchWindow int
	// Sentence is added when the word ends a sentence.
	Sentence float64
	// Comma is added when the word contains a comma.
	Comma float64
	// Pause is multiplied by the silence (seconds) before the next word.
	Pause float64
	// Distance is multiplied by the word distance from the target and subtracted.
	Distance float64
	// FallbackDuration is the total length used when there are no words.
	FallbackDuration float64
}

// DefaultWeights returns the stock scoring constants.
func DefaultWeights() Weights {
	return Weights{
		SearchWindow:     8,
		Sentence:         10,
		Comma:            5,
		Pause:            2,
		Distance:         0.1,
		FallbackDuration: 30,
	}
}

// Segmenter partitions transcript words into scene time ranges.
type Segmenter struct {
	weights Weights
}

// NewSegmenter returns a Segmenter using w. Non-positive fallback durations
// fall back to the default.
func NewSegmenter(w Weights) *Segmenter {
	if w.FallbackDuration <= 0 {
		w.FallbackDuration = DefaultWeights().FallbackDuration
	}
	if w.SearchWindow < 0 {
		w.SearchWindow = 0
	}
	return &Segmenter{weights: w}
}

// Segment returns one SceneTiming per scene. Each scene starts at its first
// word, except scene 0 which starts at 0 so leading silence belongs to the
// first scene. Every scene ends where the next begins and the last scene ends
// with its last word, so the ranges cover [0, end of last word] without gaps.
func (s *Segmenter) Segment(words []Word, sceneCount int) ([]SceneTiming, error) {
	if sceneCount <= 0 {
		return nil, ErrNoScenes
	}
	if len(words) == 0 {
		return evenTimings(sceneCount, s.weights.FallbackDuration), nil
	}

	breaks := s.BreakPoints(words, sceneCount)
	m := len(words)
	timings := make([]SceneTiming, sceneCount)
	for i := range timings {
		first, last := wordRange(breaks, m, i)
		start := words[first].Start
		if i == 0 {
			start = 0
		}
		timings[i] = SceneTiming{SceneIndex: i, StartTime: start, EndTime: words[last].End}
		if i > 0 {
			timings[i-1].EndTime = start
		}
	}
	for i := range timings {
		if timings[i].EndTime < timings[i].StartTime {
			timings[i].EndTime = timings[i].StartTime
		}
	}
	return timings, nil
}

// wordRange returns the inclusive word indexes covered by scene i given the
// break points from BreakPoints. The last index is kept past the first where
// words remain.
func wordRange(breaks []int, wordCount, i int) (first, last int) {
	if wordCount == 0 || i < 0 || i >= len(breaks) {
		return 0, -1
	}
	first = min(breaks[i], wordCount-1)
	last = wordCount - 1
	if i+1 < len(breaks) {
		last = breaks[i+1] - 1
	}
	if last <= first {
		last = first + 1
	}
	return first, min(last, wordCount-1)
}

// BreakPoints returns the index of the first word of every scene. When there
// are at least as many words as scenes the result is strictly increasing.
func (s *Segmenter) BreakPoints(words []Word, sceneCount int) []int {
	m := len(words)
	breaks := make([]int, sceneCount)
	if sceneCount <= 1 || m == 0 {
		return breaks
	}
	perScene := m / sceneCount

	for i := 1; i < sceneCount; i++ {
		prev := breaks[i-1]
		boundary := s.bestCandidate(words, i*perScene) + 1
		if boundary <= prev {
			boundary = prev + 1
		}
		remainingScenes := sceneCount - i
		if boundary > m-remainingScenes {
			splitEvenly(breaks, i-1, m)
			break
		}
		breaks[i] = boundary
	}
	return breaks
}

// splitEvenly spreads words [breaks[from], m) across scenes from..len(breaks)-1.
func splitEvenly(breaks []int, from, m int) {
	base := breaks[from]
	remaining := m - base
	scenes := len(breaks) - from
	for k := 1; k < scenes; k++ {
		breaks[from+k] = base + k*remaining/scenes
	}
}

func (s *Segmenter) bestCandidate(words []Word, target int) int {
	m := len(words)
	lo := max(0, target-s.weights.SearchWindow)
	hi := min(m-1, target+s.weights.SearchWindow)
	best := min(max(target, 0), m-1)
	bestScore := math.Inf(-1)
	bestDist := math.MaxInt
	for c := lo; c <= hi; c++ {
		score := s.Score(words, c, target)
		dist := abs(c - target)
		if score > bestScore || (score == bestScore && dist < bestDist) {
			best, bestScore, bestDist = c, score, dist
		}
	}
	return best
}

// Score rates words[c] as the last word of a scene whose ideal end is target.
func (s *Segmenter) Score(words []Word, c, target int) float64 {
	text := trimClosers(words[c].Display())
	score := 0.0
	if endsSentence(text) {
		score += s.weights.Sentence
	}
	if strings.Contains(text, ",") {
		score += s.weights.Comma
	}
	if c+1 < len(words) {
		if gap := words[c+1].Start - words[c].End; gap > 0 {
			score += gap * s.weights.Pause
		}
	}
	score -= s.weights.Distance * float64(abs(c-target))
	return score
}

func evenTimings(sceneCount int, total float64) []SceneTiming {
	per := total / float64(sceneCount)
	timings := make([]SceneTiming, sceneCount)
	for i := range timings {
		timings[i] = SceneTiming{
			SceneIndex: i,
			StartTime:  float64(i) * per,
			EndTime:    float64(i+1) * per,
		}
	}
	timings[sceneCount-1].EndTime = total
	return timings
}

func endsSentence(text string) bool {
	if text == "" {
		return false
	}
	switch text[len(text)-1] {
	case '.', '!', '?':
		return true
	}
	return strings.HasSuffix(text, "…")
}

func trimClosers(text string) string {
	return strings.TrimRight(strings.TrimSpace(text), "\"')]}»”’")
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
