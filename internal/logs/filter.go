package logs

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/RaduRS/automan-sub000/internal/logging"
)

// Filter selects structured log lines. The zero value matches everything.
type Filter struct {
	JobID int64
	// Level is the minimum level name (debug, info, warn, error).
	Level string
}

var levelRank = map[string]int{"debug": 0, "info": 1, "warn": 2, "error": 3}

// Match reports whether line passes the filter. Lines that are not JSON only
// pass an empty filter.
func (f Filter) Match(line string) bool {
	if f.JobID == 0 && f.Level == "" {
		return true
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		return false
	}
	if f.JobID != 0 {
		id, ok := entry[logging.FieldJobID].(float64)
		if !ok || int64(id) != f.JobID {
			return false
		}
	}
	if floor, ok := levelRank[strings.ToLower(f.Level)]; ok {
		level, _ := entry[slog.LevelKey].(string)
		if levelRank[strings.ToLower(level)] < floor {
			return false
		}
	}
	return true
}
