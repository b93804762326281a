// Package render turns a composition into a finished MP4.
//
// A Renderer walks Idle, Preparing, Recording, Finalizing and Complete, and
// stops in Failed on any fatal error. Preparing loads every scene's image and
// audio concurrently; a scene whose media fails to load renders with a
// placeholder instead of aborting. Recording ticks the composition plan frame
// by frame, draws into the canvas, feeds the video encoder and schedules audio
// voices on the mixer. Finalizing closes the encoder, writes the mixed
// soundtrack, muxes both into the output and validates the result with
// ffprobe.
//
// Fatal failures are returned as *StageError values whose Message is the
// short human-readable stage description shown to users.
package render
