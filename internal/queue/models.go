package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a render job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusPreparing  Status = "preparing"
	StatusRecording  Status = "recording"
	StatusFinalizing Status = "finalizing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// InterruptedReason is the error message set on jobs left processing by a
// previous run that exited without finishing them.
const InterruptedReason = "render interrupted"

var allStatuses = []Status{
	StatusPending,
	StatusPreparing,
	StatusRecording,
	StatusFinalizing,
	StatusCompleted,
	StatusFailed,
	StatusCancelled,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusPreparing:  {},
	StatusRecording:  {},
	StatusFinalizing: {},
}

// ParseStatus converts a user-supplied string into a known status.
func ParseStatus(value string) (Status, bool) {
	status := Status(strings.ToLower(strings.TrimSpace(value)))
	_, ok := statusSet[status]
	return status, ok
}

// AllStatuses returns every known status in lifecycle order.
func AllStatuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// IsProcessing reports whether the status represents an active render.
func (s Status) IsProcessing() bool {
	_, ok := processingStatuses[s]
	return ok
}

// IsTerminal reports whether the job has stopped for good.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// Timing mode labels recorded on jobs.
const (
	TimingContinuous = "continuous"
	TimingPerScene   = "per_scene"
)

// Job represents a render job persisted in SQLite.
type Job struct {
	ID               int64
	Title            string
	CompositionPath  string
	OutputPath       string
	Status           Status
	SceneCount       int
	Captions         bool
	TimingMode       string
	CorrelationID    string
	ProgressStage    string
	ProgressPercent  float64
	ProgressMessage  string
	ErrorMessage     string
	FramesRendered   int
	PlaceholderCount int
	Truncated        bool
	TimingsJSON      string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	StartedAt        *time.Time
	CompletedAt      *time.Time
}

// Elapsed returns the wall-clock duration of the render, or zero if it has
// not started.
func (j *Job) Elapsed() time.Duration {
	if j == nil || j.StartedAt == nil {
		return 0
	}
	end := time.Now().UTC()
	if j.CompletedAt != nil {
		end = *j.CompletedAt
	}
	if end.Before(*j.StartedAt) {
		return 0
	}
	return end.Sub(*j.StartedAt)
}

// NewJobParams describes a render job at creation time.
type NewJobParams struct {
	Title           string
	CompositionPath string
	OutputPath      string
	SceneCount      int
	Captions        bool
	TimingMode      string
	CorrelationID   string
}

// Progress is a single progress update for a job.
type Progress struct {
	Status  Status
	Stage   string
	Percent float64
	Message string
}

// Outcome captures the result of a successful render.
type Outcome struct {
	OutputPath       string
	FramesRendered   int
	PlaceholderCount int
	Truncated        bool
	TimingsJSON      string
}

// HealthSummary describes aggregated job counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Failed     int
	Completed  int
}
