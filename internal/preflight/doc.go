// Package preflight provides readiness checks for the binaries, encoders,
// directories and services automan depends on.
//
// The render command runs RunAll before starting so a missing ffmpeg encoder
// or unwritable output directory fails fast instead of after media loading.
// The deps command prints the same checks as a table.
package preflight
