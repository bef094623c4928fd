package logging

import (
	"context"
	"maps"
	"strings"

	"github.com/goliatone/go-dgen/pkg/interfaces"
)

// Field keys shared by every generator log entry.
const (
	FieldModule    = "module"
	FieldRunID     = "run_id"
	FieldSource    = "source"
	FieldTarget    = "target"
	FieldAction    = "action"
	FieldFieldPath = "field_path"
)

// WithFields attaches fields when logger implements interfaces.FieldsLogger.
// Other loggers are returned unchanged.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(maps.Clone(fields))
	}
	return logger
}

// FromContext binds logger to ctx and copies the fields carried by ctx, so
// entries written by scaffold, template and markdown code during a command
// carry that command's run_id.
func FromContext(logger interfaces.Logger, ctx context.Context) interfaces.Logger {
	if logger == nil || ctx == nil {
		return logger
	}
	return WithFields(logger.WithContext(ctx), ContextFields(ctx))
}

// WithCopyContext tags logger with the source and target of a copy or render.
// Blank values are left out.
func WithCopyContext(logger interfaces.Logger, source, target, action string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(source); trimmed != "" {
		fields[FieldSource] = trimmed
	}
	if trimmed := strings.TrimSpace(target); trimmed != "" {
		fields[FieldTarget] = trimmed
	}
	if trimmed := strings.TrimSpace(action); trimmed != "" {
		fields[FieldAction] = trimmed
	}
	return WithFields(logger, fields)
}

// WithFieldPath tags logger with the dotted document path being converted.
func WithFieldPath(logger interfaces.Logger, path string) interfaces.Logger {
	if strings.TrimSpace(path) == "" {
		return logger
	}
	return WithFields(logger, map[string]any{FieldFieldPath: path})
}
