package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/RaduRS/automan-sub000/internal/queue"
)

// Failure markers. Wrap tags an error with one of these so callers can
// classify it with errors.Is regardless of the message.
var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
	ErrCancelled     = errors.New("cancelled")
)

var hints = []struct {
	marker error
	hint   string
}{
	{ErrCancelled, "re-run the command"},
	{ErrConfiguration, "run automan config validate"},
	{ErrExternalTool, "run automan deps to check ffmpeg and uvx"},
	{ErrValidation, "check the composition and its media files"},
	{ErrTimeout, "raise render.safety_timeout_seconds or shorten the composition"},
}

// Wrap joins stage, operation and message into one context string and tags
// the result with marker. A nil marker means ErrTransient.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrTransient
	}
	var parts []string
	for _, p := range []string{stage, operation, message} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	detail := strings.Join(parts, ": ")
	if detail == "" {
		detail = "service failure"
	}
	if err == nil {
		return fmt.Errorf("%w: %s", marker, detail)
	}
	return fmt.Errorf("%w: %s: %w", marker, detail, err)
}

// FailureStatus maps a render error to the job status persisted after the
// render stops.
func FailureStatus(err error) queue.Status {
	if errors.Is(err, ErrCancelled) {
		return queue.StatusCancelled
	}
	return queue.StatusFailed
}

// Hint suggests an operator next step for err based on its marker.
func Hint(err error) string {
	for _, h := range hints {
		if errors.Is(err, h.marker) {
			return h.hint
		}
	}
	return "check logs for details"
}
