// Package ffprobe wraps ffprobe JSON output.
//
// Inspect runs ffprobe against a file and returns a typed Result. Duration
// probes clip lengths for per-scene timing, and ValidateRender checks a
// finished composition against the frame geometry it was rendered with.
package ffprobe
