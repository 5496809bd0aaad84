package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrExtraction    = errors.New("extraction error")
	ErrTranscode     = errors.New("transcode error")
	ErrNotFound      = errors.New("not found")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Classify returns a short label for the marker carried by err, used for
// history rows and the batch summary.
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNotFound):
		return "validation"
	case errors.Is(err, ErrExtraction):
		return "extraction"
	case errors.Is(err, ErrTranscode):
		return "transcode"
	case errors.Is(err, ErrExternalTool):
		return "tool"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "failed"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "conversion failure"
	}
	return strings.Join(parts, ": ")
}
