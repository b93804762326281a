// Package main hosts the automan CLI.
//
// The Cobra command tree covers the whole narrated-short workflow: segmenting
// word timings into scene ranges (segment), transcribing a narration track
// and writing the timings back into a composition (narrate), rendering a
// composition to MP4 (render), and inspecting the SQLite job history (jobs).
// Configuration resolution, log setup and store access are centralized in
// commandContext so subcommands only deal with their own flags and output.
//
// Heavy lifting belongs in the internal packages; commands here translate
// flags into calls and results into terminal output.
package main
