package templates

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/goliatone/go-dgen/internal/logging"
	"github.com/goliatone/go-dgen/pkg/interfaces"
)

var (
	// ErrTemplateRequired is returned when TemplateOptions.Template is empty.
	ErrTemplateRequired = errors.New("templates: template name is required")
)

// TemplateOptions locates a template and its output.
type TemplateOptions struct {
	// SourceBaseDir holds the template and, unless PartialsDir is set, its partials.
	SourceBaseDir string
	Template      string
	TargetBaseDir string
	// Target defaults to Template.
	Target      string
	PartialsDir string
}

func (o TemplateOptions) templatePath() string {
	return filepath.Join(o.SourceBaseDir, o.Template)
}

func (o TemplateOptions) targetPath() string {
	target := strings.TrimSpace(o.Target)
	if target == "" {
		target = o.Template
	}
	return filepath.Join(o.TargetBaseDir, target)
}

func (o TemplateOptions) partialsDir() string {
	if dir := strings.TrimSpace(o.PartialsDir); dir != "" {
		return dir
	}
	return o.SourceBaseDir
}

// Processor renders template files into target files.
type Processor struct {
	fs       afero.Fs
	logger   interfaces.Logger
	options  []RendererOption
	fileMode os.FileMode
	dirMode  os.FileMode
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithProcessorLogger sets the logger.
func WithProcessorLogger(logger interfaces.Logger) ProcessorOption {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithRendererOptions forwards options to the Renderer built for each call.
func WithRendererOptions(opts ...RendererOption) ProcessorOption {
	return func(p *Processor) {
		p.options = append(p.options, opts...)
	}
}

// WithFileMode sets the permission bits of written files.
func WithFileMode(mode os.FileMode) ProcessorOption {
	return func(p *Processor) {
		if mode != 0 {
			p.fileMode = mode
		}
	}
}

// NewProcessor returns a Processor bound to filesystem. A nil filesystem uses
// the host OS filesystem.
func NewProcessor(filesystem afero.Fs, opts ...ProcessorOption) *Processor {
	if filesystem == nil {
		filesystem = afero.NewOsFs()
	}
	p := &Processor{
		fs:       filesystem,
		logger:   logging.NoOp(),
		fileMode: 0o644,
		dirMode:  0o755,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessTemplate renders SourceBaseDir/Template with data and writes the
// result to TargetBaseDir/Target. Every file below the partials directory is
// registered as a partial keyed by its base filename. Files that do not parse
// as templates are skipped unless the template includes them. The written
// path is returned.
func (p *Processor) ProcessTemplate(ctx context.Context, data any, opts TemplateOptions) (string, error) {
	if strings.TrimSpace(opts.Template) == "" {
		return "", ErrTemplateRequired
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	source := opts.templatePath()
	target := opts.targetPath()
	logger := logging.WithCopyContext(logging.FromContext(p.logger, ctx), source, target, "process_template")

	raw, err := afero.ReadFile(p.fs, source)
	if err != nil {
		return "", fmt.Errorf("templates: read %s: %w", source, err)
	}

	partials, err := LoadPartials(p.fs, opts.partialsDir())
	if err != nil {
		return "", err
	}

	renderer := NewRenderer(append([]RendererOption{WithRendererLogger(logger)}, p.options...)...)
	if err := renderer.RegisterPartials(partials); err != nil {
		return "", err
	}
	logger.Debug("templates.partials.registered", "count", len(partials))

	output, err := renderer.RenderString(string(raw), data)
	if err != nil {
		return "", fmt.Errorf("templates: render %s: %w", source, err)
	}

	if err := p.fs.MkdirAll(filepath.Dir(target), p.dirMode); err != nil {
		return "", fmt.Errorf("templates: create %s: %w", filepath.Dir(target), err)
	}
	if err := afero.WriteFile(p.fs, target, []byte(output), p.fileMode); err != nil {
		return "", fmt.Errorf("templates: write %s: %w", target, err)
	}
	logger.Info("templates.render.completed", "template", opts.Template)
	return target, nil
}
