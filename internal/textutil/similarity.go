package textutil

import (
	"math"
	"regexp"
	"strings"
)

var tokenSplitPattern = regexp.MustCompile(`[^\p{L}\p{N}']+`)

// Tokenize lowercases text and splits it into words, dropping tokens shorter
// than three runes.
func Tokenize(text string) []string {
	raw := tokenSplitPattern.Split(strings.ToLower(text), -1)
	out := make([]string, 0, len(raw))
	for _, token := range raw {
		token = strings.Trim(token, "'")
		if len([]rune(token)) < 3 {
			continue
		}
		out = append(out, token)
	}
	return out
}

type termVector struct {
	counts map[string]float64
	norm   float64
}

func newTermVector(text string) termVector {
	tokens := Tokenize(text)
	v := termVector{counts: make(map[string]float64, len(tokens))}
	for _, token := range tokens {
		v.counts[token]++
	}
	for _, c := range v.counts {
		v.norm += c * c
	}
	v.norm = math.Sqrt(v.norm)
	return v
}

// Similarity is the cosine similarity of the term-frequency vectors of a and
// b, in [0, 1]. Texts without usable tokens score 0.
func Similarity(a, b string) float64 {
	va, vb := newTermVector(a), newTermVector(b)
	if va.norm == 0 || vb.norm == 0 {
		return 0
	}
	var dot float64
	for token, c := range va.counts {
		dot += c * vb.counts[token]
	}
	return min(dot/(va.norm*vb.norm), 1)
}

// Coverage is the fraction of distinct script tokens that appear in
// transcript. An empty script is fully covered.
func Coverage(script, transcript string) float64 {
	want := newTermVector(script)
	if len(want.counts) == 0 {
		return 1
	}
	have := newTermVector(transcript)
	found := 0
	for token := range want.counts {
		if have.counts[token] > 0 {
			found++
		}
	}
	return float64(found) / float64(len(want.counts))
}
