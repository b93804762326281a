// Package services holds the failure markers and context annotations shared
// by the render, narration and transcription steps.
//
// Errors are tagged with a marker through Wrap so the CLI can decide between
// failed and cancelled job statuses and suggest a next step with Hint. The
// context helpers carry the job ID, step name and correlation ID that the
// logging package stamps on every line.
package services
