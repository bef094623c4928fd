package generatecmd

import (
	"errors"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	"github.com/spf13/afero"

	"github.com/goliatone/go-dgen/internal/commands"
	"github.com/goliatone/go-dgen/pkg/interfaces"
)

// Dependencies carries the services the generate handlers delegate to.
type Dependencies struct {
	Scaffolder Scaffolder
	Templates  TemplateProcessor
	Markdown   MarkdownConverter
	// Fs is used to read data and schema files for ConvertMarkdownCommand.
	Fs afero.Fs
}

// HandlerSet groups the handlers produced by RegisterGenerateCommands.
type HandlerSet struct {
	CreateTree      *CreateTreeHandler
	CopyDir         *CopyDirHandler
	CopyFile        *CopyFileHandler
	ProcessTemplate *ProcessTemplateHandler
	ConvertMarkdown *ConvertMarkdownHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	createTreeOpts      []commands.HandlerOption[CreateTreeCommand]
	copyDirOpts         []commands.HandlerOption[CopyDirCommand]
	copyFileOpts        []commands.HandlerOption[CopyFileCommand]
	processTemplateOpts []commands.HandlerOption[ProcessTemplateCommand]
	convertMarkdownOpts []commands.HandlerOption[ConvertMarkdownCommand]
}

// WithCreateTreeHandlerOptions forwards options to the CreateTreeHandler constructor.
func WithCreateTreeHandlerOptions(opts ...commands.HandlerOption[CreateTreeCommand]) Option {
	return func(cfg *options) {
		cfg.createTreeOpts = append(cfg.createTreeOpts, opts...)
	}
}

// WithCopyDirHandlerOptions forwards options to the CopyDirHandler constructor.
func WithCopyDirHandlerOptions(opts ...commands.HandlerOption[CopyDirCommand]) Option {
	return func(cfg *options) {
		cfg.copyDirOpts = append(cfg.copyDirOpts, opts...)
	}
}

// WithCopyFileHandlerOptions forwards options to the CopyFileHandler constructor.
func WithCopyFileHandlerOptions(opts ...commands.HandlerOption[CopyFileCommand]) Option {
	return func(cfg *options) {
		cfg.copyFileOpts = append(cfg.copyFileOpts, opts...)
	}
}

// WithProcessTemplateHandlerOptions forwards options to the ProcessTemplateHandler constructor.
func WithProcessTemplateHandlerOptions(opts ...commands.HandlerOption[ProcessTemplateCommand]) Option {
	return func(cfg *options) {
		cfg.processTemplateOpts = append(cfg.processTemplateOpts, opts...)
	}
}

// WithConvertMarkdownHandlerOptions forwards options to the ConvertMarkdownHandler constructor.
func WithConvertMarkdownHandlerOptions(opts ...commands.HandlerOption[ConvertMarkdownCommand]) Option {
	return func(cfg *options) {
		cfg.convertMarkdownOpts = append(cfg.convertMarkdownOpts, opts...)
	}
}

// RegisterGenerateCommands builds the generate handlers and registers them with reg. A nil
// registry only builds the handlers. The returned HandlerSet lets callers wire dispatcher or
// cron integrations.
func RegisterGenerateCommands(reg commands.CommandRegistry, deps Dependencies, provider interfaces.LoggerProvider, opts ...Option) (*HandlerSet, error) {
	if deps.Scaffolder == nil {
		return nil, errors.New("generate command registration: scaffolder is nil")
	}
	if deps.Templates == nil {
		return nil, errors.New("generate command registration: template processor is nil")
	}
	if deps.Markdown == nil {
		return nil, errors.New("generate command registration: markdown converter is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, "generate")

	set := &HandlerSet{
		CreateTree:      NewCreateTreeHandler(deps.Scaffolder, logger, cfg.createTreeOpts...),
		CopyDir:         NewCopyDirHandler(deps.Scaffolder, logger, cfg.copyDirOpts...),
		CopyFile:        NewCopyFileHandler(deps.Scaffolder, logger, cfg.copyFileOpts...),
		ProcessTemplate: NewProcessTemplateHandler(deps.Templates, logger, cfg.processTemplateOpts...),
		ConvertMarkdown: NewConvertMarkdownHandler(deps.Markdown, deps.Fs, logger, cfg.convertMarkdownOpts...),
	}

	if reg != nil {
		for _, handler := range set.handlers() {
			if err := reg.RegisterCommand(handler); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}

func (s *HandlerSet) handlers() []any {
	return []any{s.CreateTree, s.CopyDir, s.CopyFile, s.ProcessTemplate, s.ConvertMarkdown}
}

// Subscribe attaches every handler in the set to the global go-command dispatcher. Failed
// executions are retried up to maxRetries times.
func (s *HandlerSet) Subscribe(maxRetries int) []commands.CommandSubscription {
	if s == nil {
		return nil
	}
	if maxRetries <= 0 {
		return []commands.CommandSubscription{
			dispatcher.SubscribeCommand(s.CreateTree),
			dispatcher.SubscribeCommand(s.CopyDir),
			dispatcher.SubscribeCommand(s.CopyFile),
			dispatcher.SubscribeCommand(s.ProcessTemplate),
			dispatcher.SubscribeCommand(s.ConvertMarkdown),
		}
	}
	return []commands.CommandSubscription{
		dispatcher.SubscribeCommand(s.CreateTree, runner.WithMaxRetries(maxRetries)),
		dispatcher.SubscribeCommand(s.CopyDir, runner.WithMaxRetries(maxRetries)),
		dispatcher.SubscribeCommand(s.CopyFile, runner.WithMaxRetries(maxRetries)),
		dispatcher.SubscribeCommand(s.ProcessTemplate, runner.WithMaxRetries(maxRetries)),
		dispatcher.SubscribeCommand(s.ConvertMarkdown, runner.WithMaxRetries(maxRetries)),
	}
}
