// Package transcribe turns narration audio into word timings.
//
// The narration is downmixed with ffmpeg to mono 16 kHz WAV and handed to
// WhisperX (run through uvx) with word alignment. The resulting JSON is parsed
// into timing.Word values ready for the segmenter.
//
// Tests swap the process launcher with WithCommandRunner.
package transcribe
