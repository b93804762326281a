package render

import (
	"fmt"
	"strings"

	"github.com/RaduRS/automan-sub000/internal/queue"
)

// State is a renderer lifecycle step.
type State int

const (
	StateIdle State = iota
	StatePreparing
	StateRecording
	StateFinalizing
	StateComplete
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:       "idle",
	StatePreparing:  "preparing",
	StateRecording:  "recording",
	StateFinalizing: "finalizing",
	StateComplete:   "complete",
	StateFailed:     "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// QueueStatus maps a state onto the persisted job status.
func (s State) QueueStatus() queue.Status {
	switch s {
	case StatePreparing:
		return queue.StatusPreparing
	case StateRecording:
		return queue.StatusRecording
	case StateFinalizing:
		return queue.StatusFinalizing
	case StateComplete:
		return queue.StatusCompleted
	case StateFailed:
		return queue.StatusFailed
	default:
		return queue.StatusPending
	}
}

// Progress is a coarse progress sample.
type Progress struct {
	State   State
	Percent float64
	Message string
}

// Reporter receives progress samples. Calls are serialized, and percentages
// never decrease within one render.
type Reporter func(Progress)

// Progress bands per state.
const (
	preparingEnd  = 10.0
	recordingEnd  = 90.0
	finalizingEnd = 100.0
)

// StageError is a fatal render failure.
type StageError struct {
	State   State
	Message string
	Err     error
	marker  error
}

func (e *StageError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the classification marker and the cause.
func (e *StageError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.marker != nil {
		errs = append(errs, e.marker)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Stage messages surfaced to users.
const (
	MsgEncoderStart    = "failed to start encoder"
	MsgEncoderStopped  = "encoder stopped unexpectedly"
	MsgNoFrames        = "no frames captured"
	MsgCancelled       = "render cancelled"
	MsgValidation      = "output validation failed"
	MsgPrepare         = "failed to prepare composition"
	MsgAudioMix        = "failed to mix audio"
	MsgMux             = "failed to assemble output"
	MsgEncoderFinalize = "failed to finalize encoder"
)
