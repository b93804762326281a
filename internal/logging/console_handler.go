package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// prettyHandler writes a header line per record followed by indented fields.
// Info and above show a curated field list; debug shows everything.
type prettyHandler struct {
	mu        *sync.Mutex
	writer    io.Writer
	level     *slog.LevelVar
	attrs     []slog.Attr
	groups    []string
	addSource bool
}

func newPrettyHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &prettyHandler{mu: &sync.Mutex{}, writer: w, level: lvl, addSource: addSource}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// headerKeys are lifted out of the field list into the header subject.
var headerKeys = map[string]bool{
	FieldComponent:  true,
	FieldJobID:      true,
	FieldStage:      true,
	FieldSceneIndex: true,
}

func (h *prettyHandler) Handle(_ context.Context, record slog.Record) error {
	if !h.Enabled(context.Background(), record.Level) {
		return nil
	}

	fields := flatten(make([]kv, 0, record.NumAttrs()+len(h.attrs)), h.groups, h.attrs...)
	record.Attrs(func(attr slog.Attr) bool {
		fields = flatten(fields, h.groups, attr)
		return true
	})
	fields = dedupe(fields)

	header := make(map[string]string, len(headerKeys))
	body := fields[:0:0]
	for _, f := range fields {
		if headerKeys[f.key] {
			header[f.key] = rawValue(f.value)
			if f.key != FieldSceneIndex {
				continue
			}
		}
		body = append(body, f)
	}

	var buf bytes.Buffer
	buf.Grow(256 + len(body)*32)
	h.writeHeader(&buf, record, header)
	if record.Level < slog.LevelInfo {
		writeDebugFields(&buf, body)
	} else {
		writeInfoFields(&buf, body)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf.Bytes())
	return err
}

func (h *prettyHandler) writeHeader(buf *bytes.Buffer, record slog.Record, header map[string]string) {
	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	buf.WriteString(formatTimestamp(ts))
	buf.WriteByte(' ')
	buf.WriteString(levelLabel(record.Level))
	if c := header[FieldComponent]; c != "" {
		fmt.Fprintf(buf, " [%s]", c)
	}
	if s := subject(header[FieldJobID], header[FieldStage], header[FieldSceneIndex]); s != "" {
		buf.WriteByte(' ')
		buf.WriteString(s)
	}
	message := strings.TrimSpace(record.Message)
	if message == "" {
		message = "(no message)"
	}
	buf.WriteString(" - ")
	buf.WriteString(message)
	if h.addSource {
		if src := record.Source(); src != nil && src.File != "" {
			fmt.Fprintf(buf, " [%s:%d]", filepath.Base(src.File), src.Line)
		}
	}
	buf.WriteByte('\n')
}

func writeInfoFields(buf *bytes.Buffer, attrs []kv) {
	fields, hidden := selectInfoFields(attrs)
	for _, field := range fields {
		fmt.Fprintf(buf, "    - %s: %s\n", field.label, field.value)
	}
	switch {
	case hidden == 1:
		buf.WriteString("    + 1 more field hidden\n")
	case hidden > 1:
		fmt.Fprintf(buf, "    + %d more fields hidden\n", hidden)
	}
}

func writeDebugFields(buf *bytes.Buffer, attrs []kv) {
	for _, f := range attrs {
		fmt.Fprintf(buf, "    %s: %s\n", f.key, formatValue(f.value))
	}
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...)
	return &clone
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(h.groups[:len(h.groups):len(h.groups)], name)
	return &clone
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
