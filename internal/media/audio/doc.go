// Package audio decodes narration clips and mixes them into the render's
// soundtrack.
//
// Source turns a media reference into a Clip of PCM samples by having ffmpeg
// transcode it to WAV and decoding that with beep. Mixer schedules clips
// against the render clock: each voice starts at a time offset and may be
// stopped later, and WriteWAV sums every voice into one track of a fixed
// length. All clips share one sample format so voices can be mixed without
// resampling at mix time.
package audio
