package composition

import "math"

// State is everything needed to draw one frame.
type State struct {
	Frame         int
	Time          float64
	SceneIndex    int
	SceneProgress float64
	FrameInScene  int
	// WordIndex is the highlighted caption word within the scene, or -1.
	WordIndex int
	Caption   Caption
	Pan       Pan
	Crossfade Crossfade
}

// SceneStart reports whether this frame is the first one of its scene.
func (s State) SceneStart() bool { return s.FrameInScene == 0 }

// Caption is the visible word batch laid out in lines.
type Caption struct {
	Lines [][]CaptionWord
}

// Visible reports whether any caption text should be drawn.
func (c Caption) Visible() bool { return len(c.Lines) > 0 }

// CaptionWord is one word of the visible batch.
type CaptionWord struct {
	Text        string
	Index       int
	Highlighted bool
}

// Pan describes the oversized image placement. Offset is in [-1, 1] and is
// scaled by half the overflow along the horizontal axis.
type Pan struct {
	Zoom   float64
	Offset float64
}

// Crossfade holds the opacities of the incoming scene and the scene drawn
// beneath it.
type Crossfade struct {
	Active          bool
	PreviousScene   int
	PreviousOpacity float64
	CurrentOpacity  float64
}

// Tick computes the state of frame. Frames outside the render clamp to the
// first or last frame.
func (p *Plan) Tick(frame int) State {
	if frame < 0 {
		frame = 0
	}
	if frame >= p.totalFrames {
		frame = p.totalFrames - 1
	}
	t := p.FrameTime(frame)
	scene := p.sceneAt[frame]

	st := State{
		Frame:         frame,
		Time:          t,
		SceneIndex:    scene,
		SceneProgress: p.timeline.Progress(scene, t),
		FrameInScene:  frame - p.firstFrame[scene],
		WordIndex:     -1,
		Pan:           p.pan(t),
		Crossfade:     Crossfade{PreviousScene: -1, CurrentOpacity: 1},
	}

	if p.opts.Captions {
		lookahead := p.opts.CaptionLookahead.Seconds()
		st.WordIndex, st.Caption = p.caption(scene, p.timeline.Progress(scene, t+lookahead))
	}

	first := p.firstFrame[scene]
	if fade := p.opts.Crossfade.Seconds(); first > 0 && fade > 0 {
		elapsed := float64(st.FrameInScene) / float64(p.opts.FrameRate)
		if elapsed < fade {
			current := elapsed / fade
			st.Crossfade = Crossfade{
				Active:          true,
				PreviousScene:   p.sceneAt[first-1],
				PreviousOpacity: 1 - current,
				CurrentOpacity:  current,
			}
		}
	}
	return st
}

func (p *Plan) pan(t float64) Pan {
	pan := Pan{Zoom: p.opts.ZoomFactor}
	if p.opts.ZoomFactor <= 1 || p.opts.PanCycles == 0 {
		return pan
	}
	global := t / p.timeline.Total()
	pan.Offset = math.Sin(2 * math.Pi * p.opts.PanCycles * global)
	return pan
}

func (p *Plan) caption(scene int, progress float64) (int, Caption) {
	words := p.words[scene]
	if len(words) == 0 {
		return -1, Caption{}
	}
	idx := int(math.Floor(progress * float64(len(words))))
	idx = min(max(idx, 0), len(words)-1)
	return idx, Layout(words, idx, p.opts.CaptionBatch, p.opts.CaptionMaxLines)
}

// Layout returns the batch of batchSize words containing current, split
// evenly over at most maxLines lines.
func Layout(words []string, current, batchSize, maxLines int) Caption {
	if len(words) == 0 || batchSize <= 0 || maxLines <= 0 {
		return Caption{}
	}
	current = min(max(current, 0), len(words)-1)
	start := (current / batchSize) * batchSize
	end := min(start+batchSize, len(words))
	batch := words[start:end]

	lineCount := min(maxLines, len(batch))
	perLine := (len(batch) + lineCount - 1) / lineCount
	lines := make([][]CaptionWord, 0, lineCount)
	for i := 0; i < len(batch); i += perLine {
		stop := min(i+perLine, len(batch))
		line := make([]CaptionWord, 0, stop-i)
		for j := i; j < stop; j++ {
			idx := start + j
			line = append(line, CaptionWord{Text: batch[j], Index: idx, Highlighted: idx == current})
		}
		lines = append(lines, line)
	}
	return Caption{Lines: lines}
}
