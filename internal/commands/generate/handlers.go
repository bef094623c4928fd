package generatecmd

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	command "github.com/goliatone/go-command"
	"github.com/spf13/afero"

	"github.com/goliatone/go-dgen/internal/commands"
	"github.com/goliatone/go-dgen/internal/datafile"
	"github.com/goliatone/go-dgen/internal/logging"
	"github.com/goliatone/go-dgen/internal/scaffold"
	"github.com/goliatone/go-dgen/internal/templates"
	"github.com/goliatone/go-dgen/internal/validation"
	"github.com/goliatone/go-dgen/pkg/interfaces"
)

const (
	createTreeOperation      = "scaffold.create_tree"
	copyDirOperation         = "scaffold.copy_dir"
	copyFileOperation        = "scaffold.copy_file"
	processTemplateOperation = "templates.process"
	convertMarkdownOperation = "markdown.convert"
)

var (
	// ErrTreeExists is returned when the tree root exists and removal was not requested.
	ErrTreeExists = errors.New("generate command: tree root already exists")
)

var (
	_ command.Commander[CreateTreeCommand]      = (*CreateTreeHandler)(nil)
	_ command.Commander[CopyDirCommand]         = (*CopyDirHandler)(nil)
	_ command.Commander[CopyFileCommand]        = (*CopyFileHandler)(nil)
	_ command.Commander[ProcessTemplateCommand] = (*ProcessTemplateHandler)(nil)
	_ command.Commander[ConvertMarkdownCommand] = (*ConvertMarkdownHandler)(nil)
)

// Scaffolder is the subset of scaffold.Scaffolder used by the handlers.
type Scaffolder interface {
	CreateDirectoryTree(ctx context.Context, rootDir string, tree []string, removeIfExist bool) (bool, error)
	CopyDir(ctx context.Context, opts scaffold.CopyDirOptions) error
	CopyFile(ctx context.Context, fileName, sourceBaseDir, targetBaseDir string) error
}

// TemplateProcessor renders template files.
type TemplateProcessor interface {
	ProcessTemplate(ctx context.Context, data any, opts templates.TemplateOptions) (string, error)
}

// MarkdownConverter converts document fields and exposes its default field list.
type MarkdownConverter interface {
	ConvertFields(ctx context.Context, doc map[string]any, fields []string) (map[string]any, error)
	Fields() []string
}

// CreateTreeHandler creates directory trees.
type CreateTreeHandler struct {
	inner *commands.Handler[CreateTreeCommand]
}

// NewCreateTreeHandler binds a handler to scaffolder.
func NewCreateTreeHandler(scaffolder Scaffolder, logger interfaces.Logger, opts ...commands.HandlerOption[CreateTreeCommand]) *CreateTreeHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg CreateTreeCommand) error {
		created, err := scaffolder.CreateDirectoryTree(ctx, msg.Root, msg.Tree, msg.RemoveIfExist)
		if err != nil {
			return err
		}
		if !created {
			return fmt.Errorf("%w: %s", ErrTreeExists, msg.Root)
		}
		logging.WithFields(baseLogger, map[string]any{
			"path":          msg.Root,
			"created_count": len(msg.Tree),
		}).Info("generate.command.create_tree.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[CreateTreeCommand]{
		commands.WithLogger[CreateTreeCommand](baseLogger),
		commands.WithOperation[CreateTreeCommand](createTreeOperation),
		commands.WithMessageFields(func(msg CreateTreeCommand) map[string]any {
			fields := map[string]any{"path": msg.Root}
			if msg.RemoveIfExist {
				fields["remove_if_exist"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[CreateTreeCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CreateTreeHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[CreateTreeCommand].
func (h *CreateTreeHandler) Execute(ctx context.Context, msg CreateTreeCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CopyDirHandler copies directories.
type CopyDirHandler struct {
	inner *commands.Handler[CopyDirCommand]
}

// NewCopyDirHandler binds a handler to scaffolder.
func NewCopyDirHandler(scaffolder Scaffolder, logger interfaces.Logger, opts ...commands.HandlerOption[CopyDirCommand]) *CopyDirHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg CopyDirCommand) error {
		copyOpts := scaffold.CopyDirOptions{
			SourceBaseDir:     msg.SourceBaseDir,
			TargetBaseDir:     msg.TargetBaseDir,
			DirName:           msg.DirName,
			ForceDelete:       msg.ForceDelete,
			ExcludeHiddenUnix: msg.ExcludeHiddenUnix,
			PreserveFiles:     msg.PreserveFiles,
			InflateSymlinks:   msg.InflateSymlinks,
			Glob:              msg.Glob,
			Whitelist:         msg.Whitelist,
		}
		if msg.Filter != "" {
			filter, err := regexp.Compile(msg.Filter)
			if err != nil {
				return err
			}
			copyOpts.Filter = filter
		}
		return scaffolder.CopyDir(ctx, copyOpts)
	}

	handlerOpts := []commands.HandlerOption[CopyDirCommand]{
		commands.WithLogger[CopyDirCommand](baseLogger),
		commands.WithOperation[CopyDirCommand](copyDirOperation),
		commands.WithMessageFields(func(msg CopyDirCommand) map[string]any {
			fields := map[string]any{
				"source": msg.SourceBaseDir,
				"target": msg.TargetBaseDir,
				"path":   msg.DirName,
			}
			if msg.ForceDelete {
				fields["force_delete"] = true
			}
			if msg.PreserveFiles {
				fields["preserve_files"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[CopyDirCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CopyDirHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[CopyDirCommand].
func (h *CopyDirHandler) Execute(ctx context.Context, msg CopyDirCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CopyFileHandler copies single files.
type CopyFileHandler struct {
	inner *commands.Handler[CopyFileCommand]
}

// NewCopyFileHandler binds a handler to scaffolder.
func NewCopyFileHandler(scaffolder Scaffolder, logger interfaces.Logger, opts ...commands.HandlerOption[CopyFileCommand]) *CopyFileHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg CopyFileCommand) error {
		return scaffolder.CopyFile(ctx, msg.FileName, msg.SourceBaseDir, msg.TargetBaseDir)
	}

	handlerOpts := []commands.HandlerOption[CopyFileCommand]{
		commands.WithLogger[CopyFileCommand](baseLogger),
		commands.WithOperation[CopyFileCommand](copyFileOperation),
		commands.WithMessageFields(func(msg CopyFileCommand) map[string]any {
			return map[string]any{
				"source": msg.SourceBaseDir,
				"target": msg.TargetBaseDir,
				"path":   msg.FileName,
			}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[CopyFileCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CopyFileHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[CopyFileCommand].
func (h *CopyFileHandler) Execute(ctx context.Context, msg CopyFileCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ProcessTemplateHandler renders template files.
type ProcessTemplateHandler struct {
	inner *commands.Handler[ProcessTemplateCommand]
}

// NewProcessTemplateHandler binds a handler to processor.
func NewProcessTemplateHandler(processor TemplateProcessor, logger interfaces.Logger, opts ...commands.HandlerOption[ProcessTemplateCommand]) *ProcessTemplateHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg ProcessTemplateCommand) error {
		target, err := processor.ProcessTemplate(ctx, msg.Data, templates.TemplateOptions{
			SourceBaseDir: msg.SourceBaseDir,
			Template:      msg.Template,
			TargetBaseDir: msg.TargetBaseDir,
			Target:        msg.Target,
			PartialsDir:   msg.PartialsDir,
		})
		if err != nil {
			return err
		}
		if msg.ResultCallback != nil {
			msg.ResultCallback(target)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[ProcessTemplateCommand]{
		commands.WithLogger[ProcessTemplateCommand](baseLogger),
		commands.WithOperation[ProcessTemplateCommand](processTemplateOperation),
		commands.WithMessageFields(func(msg ProcessTemplateCommand) map[string]any {
			fields := map[string]any{
				"template": msg.Template,
				"source":   msg.SourceBaseDir,
				"target":   msg.TargetBaseDir,
			}
			if msg.PartialsDir != "" {
				fields["partials_dir"] = msg.PartialsDir
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ProcessTemplateCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ProcessTemplateHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[ProcessTemplateCommand].
func (h *ProcessTemplateHandler) Execute(ctx context.Context, msg ProcessTemplateCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ConvertMarkdownHandler loads, validates and converts documents.
type ConvertMarkdownHandler struct {
	inner *commands.Handler[ConvertMarkdownCommand]
}

// NewConvertMarkdownHandler binds a handler to converter. Data and schema
// files are read from fs.
func NewConvertMarkdownHandler(converter MarkdownConverter, fs afero.Fs, logger interfaces.Logger, opts ...commands.HandlerOption[ConvertMarkdownCommand]) *ConvertMarkdownHandler {
	baseLogger := commands.EnsureLogger(logger)
	if fs == nil {
		fs = afero.NewOsFs()
	}

	exec := func(ctx context.Context, msg ConvertMarkdownCommand) error {
		doc := msg.Document
		if doc == nil {
			loaded, err := datafile.LoadData(fs, msg.DataFiles...)
			if err != nil {
				return err
			}
			doc = loaded
		}

		if msg.SchemaPath != "" {
			schema, err := validation.LoadSchema(fs, msg.SchemaPath)
			if err != nil {
				return err
			}
			if err := validation.ValidateDocument(schema, doc); err != nil {
				return err
			}
		}

		fields := msg.Fields
		if len(fields) == 0 {
			fields = converter.Fields()
		}
		converted, err := converter.ConvertFields(ctx, doc, fields)
		if err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{
			"field_count": len(fields),
		}).Info("generate.command.convert_markdown.completed")
		if msg.ResultCallback != nil {
			msg.ResultCallback(converted)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[ConvertMarkdownCommand]{
		commands.WithLogger[ConvertMarkdownCommand](baseLogger),
		commands.WithOperation[ConvertMarkdownCommand](convertMarkdownOperation),
		commands.WithMessageFields(func(msg ConvertMarkdownCommand) map[string]any {
			fields := map[string]any{}
			if len(msg.DataFiles) > 0 {
				fields["source"] = msg.DataFiles
			}
			if len(msg.Fields) > 0 {
				fields["fields"] = msg.Fields
			}
			if msg.SchemaPath != "" {
				fields["schema"] = msg.SchemaPath
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ConvertMarkdownCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ConvertMarkdownHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[ConvertMarkdownCommand].
func (h *ConvertMarkdownHandler) Execute(ctx context.Context, msg ConvertMarkdownCommand) error {
	return h.inner.Execute(ctx, msg)
}
