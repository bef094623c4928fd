package logging

import (
	"context"

	"github.com/goliatone/go-dgen/pkg/interfaces"
)

const (
	rootModule     = "dgen"
	scaffoldModule = "dgen.scaffold"
	templateModule = "dgen.templates"
	markdownModule = "dgen.markdown"
	dataModule     = "dgen.datafile"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{FieldModule: module})
}

// ScaffoldLogger returns the logger namespace reserved for directory and file scaffolding.
func ScaffoldLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, scaffoldModule)
}

// TemplateLogger returns the logger namespace reserved for template processing.
func TemplateLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, templateModule)
}

// DataLogger returns the logger namespace reserved for data file loading.
func DataLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, dataModule)
}

// MarkdownLogger returns the logger namespace reserved for markdown workflows.
func MarkdownLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, markdownModule)
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
