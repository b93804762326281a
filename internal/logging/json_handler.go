package logging

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
)

// newJSONHandler writes one object per line with "ts" timestamps in UTC,
// lower-case levels, short source locations and human-readable durations.
func newJSONHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       lvl,
		AddSource:   addSource,
		ReplaceAttr: jsonAttr,
	})
}

func jsonAttr(_ []string, attr slog.Attr) slog.Attr {
	v := attr.Value
	switch {
	case attr.Key == slog.TimeKey && v.Kind() == slog.KindTime:
		return slog.String("ts", v.Time().UTC().Format(time.RFC3339Nano))
	case attr.Key == slog.LevelKey:
		return slog.String(attr.Key, strings.ToLower(v.String()))
	case attr.Key == slog.SourceKey:
		if src, ok := v.Any().(*slog.Source); ok && src != nil {
			return slog.String(attr.Key, fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
		}
	case v.Kind() == slog.KindDuration:
		return slog.String(attr.Key, v.Duration().Round(time.Millisecond).String())
	}
	return attr
}
