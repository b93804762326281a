package timing

import "strings"

// Scene is one visual segment of a composition. ID is 1-based.
type Scene struct {
	ID       int    `json:"id" yaml:"id"`
	Text     string `json:"text" yaml:"text"`
	ImageURL string `json:"imageUrl" yaml:"imageUrl"`
	VoiceURL string `json:"voiceUrl,omitempty" yaml:"voiceUrl,omitempty"`
}

// Word is a transcribed word with its timing in seconds.
type Word struct {
	Text           string  `json:"text" yaml:"text"`
	PunctuatedText string  `json:"punctuatedText,omitempty" yaml:"punctuatedText,omitempty"`
	Start          float64 `json:"start" yaml:"start"`
	End            float64 `json:"end" yaml:"end"`
}

// Display returns the punctuated form when present.
func (w Word) Display() string {
	if s := strings.TrimSpace(w.PunctuatedText); s != "" {
		return s
	}
	return strings.TrimSpace(w.Text)
}

// SceneTiming is the time range a scene occupies on the narration track.
type SceneTiming struct {
	SceneIndex int     `json:"sceneIndex" yaml:"sceneIndex"`
	StartTime  float64 `json:"startTime" yaml:"startTime"`
	EndTime    float64 `json:"endTime" yaml:"endTime"`
}

// Duration returns EndTime - StartTime.
func (t SceneTiming) Duration() float64 {
	return t.EndTime - t.StartTime
}

// ContinuousAudio is a single narration track with per-scene timings.
type ContinuousAudio struct {
	AudioURL      string        `json:"audioUrl" yaml:"audioUrl"`
	SceneTimings  []SceneTiming `json:"sceneTimings" yaml:"sceneTimings"`
	TotalDuration float64       `json:"totalDuration" yaml:"totalDuration"`
}
