// Package logging assembles structured slog loggers and formatting helpers used
// across automan.
//
// It owns the console and JSON handlers, fans console output and the JSON log
// file out from a single logger, and exposes context-aware helpers so render
// code tags log lines with job IDs, stages, and correlation IDs automatically.
// ProgressSampler keeps frame-by-frame progress from flooding the log.
package logging
