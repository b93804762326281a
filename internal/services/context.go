package services

import "context"

type contextKey int

const (
	jobIDKey contextKey = iota
	stageKey
	requestIDKey
)

// WithJobID annotates ctx with the render job identifier.
func WithJobID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, jobIDKey, id)
}

// WithStage annotates ctx with a pipeline step name. Blank names are ignored.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// WithRequestID annotates ctx with a correlation identifier. Blank IDs are
// ignored.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

func JobIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(jobIDKey).(int64)
	return id, ok
}

func StageFromContext(ctx context.Context) (string, bool) {
	return nonEmpty(ctx, stageKey)
}

func RequestIDFromContext(ctx context.Context) (string, bool) {
	return nonEmpty(ctx, requestIDKey)
}

func nonEmpty(ctx context.Context, key contextKey) (string, bool) {
	s, ok := ctx.Value(key).(string)
	return s, ok && s != ""
}
