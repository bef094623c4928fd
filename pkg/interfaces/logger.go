package interfaces

import "context"

// Logger is the leveled logger handed to scaffolding, template, markdown and
// command code. Arguments after msg are key/value pairs.
//
// There is no Fatal level: generator code reports failures as errors and
// leaves process exit to the caller.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// LoggerProvider returns the logger for a module name such as
// "dgen.scaffold" or "dgen.commands.generate".
type LoggerProvider interface {
	GetLogger(name string) Logger
}

// FieldsLogger is implemented by loggers that can carry fields such as
// source, target, field_path or run_id on every entry.
type FieldsLogger interface {
	WithFields(fields map[string]any) Logger
}
