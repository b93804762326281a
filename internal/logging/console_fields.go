package logging

import (
	"log/slog"
	"strconv"
	"strings"
)

type infoField struct {
	label string
	value string
}

// infoHighlightKeys lists the attributes shown on info lines, in display order.
// Everything else is counted as hidden and only printed at debug level.
var infoHighlightKeys = []string{
	FieldEventType,
	FieldProgressStage,
	FieldProgressPercent,
	FieldProgressMessage,
	FieldErrorHint,
	FieldImpact,
	"error",
	"scene_count",
	"word_count",
	"timing_mode",
	"total_duration",
	"total_frames",
	"frames_rendered",
	"placeholders",
	"truncated",
	"output",
	"composition",
	"duration",
	"reason",
}

var infoSkipKeys = map[string]struct{}{
	FieldCorrelationID: {},
	FieldSceneIndex:    {},
}

func selectInfoFields(attrs []kv) ([]infoField, int) {
	if len(attrs) == 0 {
		return nil, 0
	}
	used := make([]bool, len(attrs))
	result := make([]infoField, 0, len(infoHighlightKeys))
	for _, key := range infoHighlightKeys {
		for idx, attr := range attrs {
			if used[idx] || attr.key != key {
				continue
			}
			used[idx] = true
			result = append(result, infoField{label: displayLabel(attr.key), value: formatValueForKey(attr.key, attr.value)})
			break
		}
	}
	hidden := 0
	for idx, attr := range attrs {
		if used[idx] {
			continue
		}
		if _, skip := infoSkipKeys[attr.key]; skip {
			continue
		}
		hidden++
	}
	return result, hidden
}

// proseKeys hold free text that reads better unquoted on highlight lines.
var proseKeys = map[string]struct{}{
	FieldProgressMessage: {},
	FieldErrorHint:       {},
	FieldImpact:          {},
	"error":              {},
	"reason":             {},
}

func formatValueForKey(key string, v slog.Value) string {
	v = v.Resolve()
	if key == FieldProgressPercent && v.Kind() == slog.KindFloat64 {
		return strconv.FormatFloat(v.Float64(), 'f', 1, 64) + "%"
	}
	if _, ok := proseKeys[key]; ok {
		if s := rawValue(v); s != "" && !strings.ContainsAny(s, "\n\r") {
			return s
		}
	}
	return formatValue(v)
}

func displayLabel(key string) string {
	switch key {
	case FieldProgressStage:
		return "Stage"
	case FieldProgressPercent:
		return "Progress"
	case FieldProgressMessage:
		return "Status"
	}
	parts := strings.Split(key, "_")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}
