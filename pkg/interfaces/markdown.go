package interfaces

import "context"

// MarkdownParser defines how raw Markdown bytes are converted into HTML.
type MarkdownParser interface {
	// Parse converts Markdown into HTML using the parser's default settings.
	Parse(markdown []byte) ([]byte, error)
	// ParseWithOptions converts Markdown into HTML using the supplied overrides.
	ParseWithOptions(markdown []byte, opts ParseOptions) ([]byte, error)
}

// ParseOptions customises Markdown parsing behaviour, keeping option names
// readable for configuration unmarshalling and CLI flags.
type ParseOptions struct {
	Extensions []string
	Sanitize   bool
	HardWraps  bool
	SafeMode   bool
	// HeadingIDs toggles automatic id attributes on rendered headings.
	HeadingIDs bool
}

// MarkdownRenderer renders a single text value into markup. It is the
// collaborator invoked once per eligible document field.
type MarkdownRenderer interface {
	Render(text string) (string, error)
}

// MarkdownRendererFunc adapts a plain function into a MarkdownRenderer.
type MarkdownRendererFunc func(text string) (string, error)

// Render satisfies MarkdownRenderer.
func (fn MarkdownRendererFunc) Render(text string) (string, error) {
	return fn(text)
}

// MarkdownFieldConverter converts markdown-formatted fields of a nested
// document into rendered markup. Implementations never mutate doc.
type MarkdownFieldConverter interface {
	Convert(ctx context.Context, doc map[string]any, fields []string) (map[string]any, error)
}
