package logging

import (
	"context"
	"log/slog"

	"aaxconv/internal/services"
)

const (
	// FieldComponent is the structured logging key for component names.
	FieldComponent = "component"
	// FieldSource is the structured logging key for the input file path.
	FieldSource = "source"
	// FieldStage is the structured logging key for pipeline state names.
	FieldStage = "stage"
	// FieldChapter is the structured logging key for 1-based chapter ordinals.
	FieldChapter = "chapter"
	// FieldCorrelationID is the structured logging key for batch run identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldEventType classifies a log line for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests a next step to the operator.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if src, ok := services.SourceFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldSource, src))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
