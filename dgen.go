// Package dgen is the public entry point of the generator toolkit. A Module
// wires the scaffolder, the template processor, the markdown field converter
// and the command handlers from a single Config.
package dgen

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/afero"

	"github.com/goliatone/go-dgen/internal/commands"
	generatecmd "github.com/goliatone/go-dgen/internal/commands/generate"
	"github.com/goliatone/go-dgen/internal/datafile"
	"github.com/goliatone/go-dgen/internal/logging"
	"github.com/goliatone/go-dgen/internal/logging/console"
	"github.com/goliatone/go-dgen/internal/logging/gologger"
	"github.com/goliatone/go-dgen/internal/markdown"
	"github.com/goliatone/go-dgen/internal/runtimeconfig"
	"github.com/goliatone/go-dgen/internal/scaffold"
	"github.com/goliatone/go-dgen/internal/templates"
	"github.com/goliatone/go-dgen/internal/validation"
	"github.com/goliatone/go-dgen/pkg/interfaces"
)

type (
	// Scaffolder exports the directory scaffolding service.
	Scaffolder = scaffold.Scaffolder
	// CopyDirOptions exports the directory copy options.
	CopyDirOptions = scaffold.CopyDirOptions
	// TemplateProcessor exports the template file processor.
	TemplateProcessor = templates.Processor
	// TemplateOptions exports the template location options.
	TemplateOptions = templates.TemplateOptions
	// MarkdownService exports the markdown rendering and field conversion service.
	MarkdownService = markdown.Service
	// NonStringPolicy exports the converter policy for non-text values.
	NonStringPolicy = markdown.NonStringPolicy
	// CommandHandlers exports the generate command handler set.
	CommandHandlers = generatecmd.HandlerSet
)

const (
	NonStringCoerce = markdown.NonStringCoerce
	NonStringSkip   = markdown.NonStringSkip
	NonStringStrict = markdown.NonStringStrict
)

var (
	ErrNonStringField  = markdown.ErrNonStringField
	ErrSourceMissing   = scaffold.ErrSourceMissing
	ErrTargetExists    = scaffold.ErrTargetExists
	ErrTreeExists      = generatecmd.ErrTreeExists
	ErrDocumentInvalid = validation.ErrDocumentInvalid
)

// Option customises Module construction.
type Option func(*moduleOptions)

type moduleOptions struct {
	fs       afero.Fs
	provider interfaces.LoggerProvider
	parser   interfaces.MarkdownParser
	registry commands.CommandRegistry
}

// WithFs replaces the host filesystem, typically with afero.NewMemMapFs in tests.
func WithFs(fs afero.Fs) Option {
	return func(o *moduleOptions) {
		if fs != nil {
			o.fs = fs
		}
	}
}

// WithLoggerProvider overrides the provider built from Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(o *moduleOptions) {
		if provider != nil {
			o.provider = provider
		}
	}
}

// WithMarkdownParser overrides the goldmark parser.
func WithMarkdownParser(parser interfaces.MarkdownParser) Option {
	return func(o *moduleOptions) {
		if parser != nil {
			o.parser = parser
		}
	}
}

// WithCommandRegistry registers the generate command handlers with registry.
func WithCommandRegistry(registry commands.CommandRegistry) Option {
	return func(o *moduleOptions) {
		o.registry = registry
	}
}

// Module is the generator runtime facade.
type Module struct {
	cfg        Config
	fs         afero.Fs
	provider   interfaces.LoggerProvider
	scaffolder *scaffold.Scaffolder
	processor  *templates.Processor
	markdown   *markdown.Service
	handlers   *generatecmd.HandlerSet
	dataLogger interfaces.Logger
}

// New validates cfg and wires the generator services.
func New(cfg Config, opts ...Option) (*Module, error) {
	options := moduleOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if options.fs == nil {
		options.fs = afero.NewOsFs()
	}
	if options.provider == nil {
		provider, err := NewLoggerProvider(cfg.Logging)
		if err != nil {
			return nil, err
		}
		options.provider = provider
	}

	dirMode, err := runtimeconfig.ParseFileMode(cfg.Scaffold.DirMode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScaffoldDirModeInvalid, err)
	}
	fileMode, err := runtimeconfig.ParseFileMode(cfg.Templates.FileMode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplatesFileModeInvalid, err)
	}

	markdownService := markdown.NewService(markdown.Config{
		Parser:          cfg.Markdown.Parser.ParseOptions(),
		Fields:          append([]string(nil), cfg.Markdown.Fields...),
		NonStringPolicy: cfg.Markdown.Policy(),
		Concurrency:     cfg.Markdown.Concurrency,
	}, options.parser, logging.MarkdownLogger(options.provider))

	scaffolder := scaffold.New(options.fs,
		scaffold.WithLogger(logging.ScaffoldLogger(options.provider)),
		scaffold.WithDirMode(dirMode),
	)

	processor := templates.NewProcessor(options.fs,
		templates.WithProcessorLogger(logging.TemplateLogger(options.provider)),
		templates.WithFileMode(fileMode),
		templates.WithRendererOptions(
			templates.WithMarkdownRenderer(interfaces.MarkdownRendererFunc(markdownService.RenderString)),
			templates.WithStrictKeys(cfg.Templates.StrictKeys),
		),
	)

	timeout := cfg.Commands.Timeout
	handlers, err := generatecmd.RegisterGenerateCommands(options.registry, generatecmd.Dependencies{
		Scaffolder: scaffolder,
		Templates:  processor,
		Markdown:   markdownService,
		Fs:         options.fs,
	}, options.provider,
		generatecmd.WithCreateTreeHandlerOptions(commands.WithTimeout[generatecmd.CreateTreeCommand](timeout)),
		generatecmd.WithCopyDirHandlerOptions(commands.WithTimeout[generatecmd.CopyDirCommand](timeout)),
		generatecmd.WithCopyFileHandlerOptions(commands.WithTimeout[generatecmd.CopyFileCommand](timeout)),
		generatecmd.WithProcessTemplateHandlerOptions(commands.WithTimeout[generatecmd.ProcessTemplateCommand](timeout)),
		generatecmd.WithConvertMarkdownHandlerOptions(commands.WithTimeout[generatecmd.ConvertMarkdownCommand](timeout)),
	)
	if err != nil {
		return nil, err
	}

	return &Module{
		cfg:        cfg,
		fs:         options.fs,
		provider:   options.provider,
		scaffolder: scaffolder,
		processor:  processor,
		markdown:   markdownService,
		handlers:   handlers,
		dataLogger: logging.DataLogger(options.provider),
	}, nil
}

// NewLoggerProvider builds the provider named by cfg.Provider.
func NewLoggerProvider(cfg LoggingConfig) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "console":
		return console.NewProvider(console.Options{Config: cfg}), nil
	case "gologger":
		provider, err := gologger.NewProvider(cfg)
		if err != nil {
			return nil, err
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, cfg.Provider)
	}
}

// Config returns the configuration the module was built with.
func (m *Module) Config() Config {
	return m.cfg
}

// Fs returns the filesystem shared by every service.
func (m *Module) Fs() afero.Fs {
	return m.fs
}

// LoggerProvider returns the provider used for module loggers.
func (m *Module) LoggerProvider() interfaces.LoggerProvider {
	return m.provider
}

// Scaffold returns the directory scaffolder.
func (m *Module) Scaffold() *Scaffolder {
	return m.scaffolder
}

// Templates returns the template processor.
func (m *Module) Templates() *TemplateProcessor {
	return m.processor
}

// Markdown returns the markdown service.
func (m *Module) Markdown() *MarkdownService {
	return m.markdown
}

// Commands returns the generate command handlers.
func (m *Module) Commands() *CommandHandlers {
	return m.handlers
}

// ConvertFields converts the named fields of doc. Without fields the
// configured markdown.fields list is used.
func (m *Module) ConvertFields(ctx context.Context, doc map[string]any, fields ...string) (map[string]any, error) {
	if len(fields) == 0 {
		return m.markdown.ConvertDefaultFields(ctx, doc)
	}
	return m.markdown.ConvertFields(ctx, doc, fields)
}

// LoadData reads and merges data files from the module filesystem.
func (m *Module) LoadData(paths ...string) (map[string]any, error) {
	doc, err := datafile.LoadData(m.fs, paths...)
	if err != nil {
		m.dataLogger.Error("datafile.load.failed", "source", paths, "error", err)
		return nil, err
	}
	m.dataLogger.Debug("datafile.load.completed", "source", paths, "keys", len(doc))
	return doc, nil
}

// ValidateDocument checks doc against the schema stored at schemaPath.
func (m *Module) ValidateDocument(schemaPath string, doc map[string]any) error {
	schema, err := validation.LoadSchema(m.fs, schemaPath)
	if err != nil {
		return err
	}
	if err := validation.ValidateDocument(schema, doc); err != nil {
		m.dataLogger.Warn("datafile.validate.failed", "schema", schemaPath, "issues", len(validation.Issues(err)))
		return err
	}
	return nil
}
