// Package textutil holds small text helpers shared by the CLI and the
// narration pipeline: output file naming, display labels, and a bag-of-words
// similarity used to check that a transcript matches its script.
package textutil
