// Package deps checks for the external binaries automan shells out to:
// ffmpeg and ffprobe for rendering, and uvx for WhisperX transcription.
package deps
