package timing

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

type whisperXWord struct {
	Word  string   `json:"word"`
	Start *float64 `json:"start"`
	End   *float64 `json:"end"`
}

type whisperXPayload struct {
	Segments []struct {
		Words []whisperXWord `json:"words"`
	} `json:"segments"`
	WordSegments []whisperXWord `json:"word_segments"`
}

// ParseWords decodes a transcript in either the plain word-array form
// ([{text, punctuatedText, start, end}]) or WhisperX JSON output. Words
// WhisperX could not align (no timestamps) inherit the previous word's end.
func ParseWords(data []byte) ([]Word, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("parse words: empty input")
	}
	if trimmed[0] == '[' {
		var words []Word
		if err := json.Unmarshal(trimmed, &words); err != nil {
			return nil, fmt.Errorf("parse words: %w", err)
		}
		return NormalizeWords(words), nil
	}

	var payload whisperXPayload
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return nil, fmt.Errorf("parse whisperx words: %w", err)
	}
	var raw []whisperXWord
	for _, seg := range payload.Segments {
		raw = append(raw, seg.Words...)
	}
	if len(raw) == 0 {
		raw = payload.WordSegments
	}
	return NormalizeWords(fromWhisperX(raw)), nil
}

func fromWhisperX(raw []whisperXWord) []Word {
	words := make([]Word, 0, len(raw))
	cursor := 0.0
	for _, w := range raw {
		text := strings.TrimSpace(w.Word)
		if text == "" {
			continue
		}
		start, end := cursor, cursor
		if w.Start != nil {
			start = *w.Start
		}
		if w.End != nil {
			end = *w.End
		}
		if end < start {
			end = start
		}
		cursor = end
		words = append(words, Word{Text: stripPunctuation(text), PunctuatedText: text, Start: start, End: end})
	}
	return words
}

// NormalizeWords drops empty entries and orders words by start time.
func NormalizeWords(words []Word) []Word {
	out := make([]Word, 0, len(words))
	for _, w := range words {
		if strings.TrimSpace(w.Text) == "" && strings.TrimSpace(w.PunctuatedText) == "" {
			continue
		}
		if w.End < w.Start {
			w.End = w.Start
		}
		out = append(out, w)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

func stripPunctuation(text string) string {
	return strings.TrimFunc(text, func(r rune) bool {
		return strings.ContainsRune(".,!?;:\"'()[]{}…«»“”‘’", r)
	})
}
