// Package timing turns word-level transcript timestamps into per-scene time
// ranges and answers "which scene is on screen at time t".
//
// Segmenter places scene boundaries near an even split of the words, pulled
// toward sentence ends, commas, and pauses. Source is the resolved timing
// variant for one render pass (Continuous narration timings or PerScene clip
// durations) and Timeline is its lookup table. Everything here is pure and
// safe for concurrent use.
package timing
