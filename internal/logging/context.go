package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID identifies one preprocessing run across all of its log lines.
	FieldRunID = "run_id"
	// FieldKey is the structure document key an event refers to.
	FieldKey = "key"
	// FieldComponentID is the third key segment used to locate a descriptor.
	FieldComponentID = "component_id"
	// FieldPath is a filesystem path related to the event.
	FieldPath = "path"
	// FieldEventType is a stable machine-readable name for the event.
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to do next.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
)

type runIDKey struct{}

// WithRunID stores the run identifier on ctx.
func WithRunID(ctx context.Context, runID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunIDFromContext returns the run identifier stored by WithRunID.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(runIDKey{}).(string)
	return id, ok && id != ""
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if id, ok := RunIDFromContext(ctx); ok {
		return logger.With(slog.String(FieldRunID, id))
	}
	return logger
}
