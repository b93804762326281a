package logging

import (
	"log/slog"
	"strings"
)

type kv struct {
	key   string
	value slog.Value
}

// flatten appends attrs to dst with group names folded into dotted keys.
func flatten(dst []kv, groups []string, attrs ...slog.Attr) []kv {
	for _, attr := range attrs {
		if attr.Equal(slog.Attr{}) {
			continue
		}
		value := attr.Value.Resolve()
		if value.Kind() == slog.KindGroup {
			inner := groups
			if attr.Key != "" {
				inner = append(groups[:len(groups):len(groups)], attr.Key)
			}
			dst = flatten(dst, inner, value.Group()...)
			continue
		}
		key := attr.Key
		if len(groups) > 0 {
			key = strings.Join(append(groups[:len(groups):len(groups)], key), ".")
			key = strings.TrimSuffix(key, ".")
		}
		dst = append(dst, kv{key: key, value: value})
	}
	return dst
}

// dedupe keeps the first position of each key with its last value.
func dedupe(attrs []kv) []kv {
	if len(attrs) < 2 {
		return attrs
	}
	index := make(map[string]int, len(attrs))
	out := attrs[:0:0]
	for _, attr := range attrs {
		if attr.key == "" {
			continue
		}
		if i, ok := index[attr.key]; ok {
			out[i].value = attr.value
			continue
		}
		index[attr.key] = len(out)
		out = append(out, attr)
	}
	return out
}
