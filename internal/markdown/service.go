package markdown

import (
	"context"

	"github.com/goliatone/go-dgen/internal/logging"
	"github.com/goliatone/go-dgen/pkg/interfaces"
)

// Config controls parsing defaults and field conversion behaviour.
type Config struct {
	Parser interfaces.ParseOptions
	// Fields lists the field names converted by ConvertDefaultFields.
	Fields          []string
	NonStringPolicy NonStringPolicy
	Concurrency     int
}

// Service exposes markdown rendering and document field conversion.
type Service struct {
	cfg       Config
	parser    interfaces.MarkdownParser
	converter *FieldConverter
	logger    interfaces.Logger
}

// NewService constructs a markdown service. When parser is nil, a goldmark
// parser with the configured default options is created.
func NewService(cfg Config, parser interfaces.MarkdownParser, logger interfaces.Logger) *Service {
	if parser == nil {
		parser = NewGoldmarkParser(cfg.Parser)
	}
	if logger == nil {
		logger = logging.NoOp()
	}

	s := &Service{
		cfg:    cfg,
		parser: parser,
		logger: logger,
	}
	s.converter = NewFieldConverter(
		interfaces.MarkdownRendererFunc(s.RenderString),
		WithNonStringPolicy(cfg.NonStringPolicy),
		WithConcurrency(cfg.Concurrency),
		WithFieldLogger(logger),
	)
	return s
}

// Render parses Markdown bytes into HTML using the configured parser.
func (s *Service) Render(ctx context.Context, markdown []byte, opts interfaces.ParseOptions) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return s.parser.ParseWithOptions(markdown, mergeParseOptions(s.cfg.Parser, opts))
}

// RenderString renders text with the service defaults. It satisfies
// interfaces.MarkdownRenderer.
func (s *Service) RenderString(text string) (string, error) {
	html, err := s.parser.ParseWithOptions([]byte(text), s.cfg.Parser)
	if err != nil {
		return "", err
	}
	return string(html), nil
}

// ConvertFields converts the named fields of doc. A nil or empty doc, or an
// empty fields list, returns an unchanged copy.
func (s *Service) ConvertFields(ctx context.Context, doc map[string]any, fields []string) (map[string]any, error) {
	return s.converter.Convert(ctx, doc, fields)
}

// ConvertDefaultFields converts the fields listed in Config.Fields.
func (s *Service) ConvertDefaultFields(ctx context.Context, doc map[string]any) (map[string]any, error) {
	return s.ConvertFields(ctx, doc, s.cfg.Fields)
}

// Fields returns the configured default field names.
func (s *Service) Fields() []string {
	return append([]string(nil), s.cfg.Fields...)
}

func mergeParseOptions(base, override interfaces.ParseOptions) interfaces.ParseOptions {
	result := base
	if len(override.Extensions) > 0 {
		result.Extensions = append([]string(nil), override.Extensions...)
	}
	if override.Sanitize {
		result.Sanitize = true
	}
	if override.HardWraps {
		result.HardWraps = true
	}
	if override.SafeMode {
		result.SafeMode = true
	}
	if override.HeadingIDs {
		result.HeadingIDs = true
	}
	return result
}
