// Package templates renders text templates against a data context and
// writes the results to disk. Partials are registered as named templates
// and can be included with {{ template "name" . }} or {{ partial "name" . }}.
package templates

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"sort"
	"strings"
	"sync"
	"text/template"
	"text/template/parse"

	"github.com/Masterminds/sprig/v3"
	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-dgen/internal/logging"
	"github.com/goliatone/go-dgen/internal/markdown"
	"github.com/goliatone/go-dgen/pkg/interfaces"
)

const rootTemplateName = "inline"

var (
	// ErrPartialNameRequired is returned when a partial is registered without a name.
	ErrPartialNameRequired = errors.New("templates: partial name is required")
	// ErrPartialInvalid is returned when a template uses a partial that does not parse.
	ErrPartialInvalid = errors.New("templates: partial does not parse")
)

// Renderer implements interfaces.TemplateRenderer on text/template with the
// sprig function map plus slug and markdown helpers.
type Renderer struct {
	mu       sync.RWMutex
	partials map[string]string
	funcs    template.FuncMap
	markdown interfaces.MarkdownRenderer
	logger   interfaces.Logger
	strict   bool
}

var _ interfaces.TemplateRenderer = (*Renderer)(nil)

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithMarkdownRenderer sets the renderer behind the markdown helper.
func WithMarkdownRenderer(renderer interfaces.MarkdownRenderer) RendererOption {
	return func(r *Renderer) {
		if renderer != nil {
			r.markdown = renderer
		}
	}
}

// WithRendererLogger sets the logger that reports skipped partials.
func WithRendererLogger(logger interfaces.Logger) RendererOption {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithFuncs adds helpers to the function map. Later entries replace earlier ones.
func WithFuncs(funcs template.FuncMap) RendererOption {
	return func(r *Renderer) {
		maps.Copy(r.funcs, funcs)
	}
}

// WithStrictKeys makes missing map keys fail the render instead of printing
// "<no value>".
func WithStrictKeys(strict bool) RendererOption {
	return func(r *Renderer) {
		r.strict = strict
	}
}

// NewRenderer returns a Renderer with no partials registered.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{
		partials: map[string]string{},
		funcs:    template.FuncMap{},
		markdown: markdown.NewParserRenderer(nil, nil),
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterPartial stores content under name, replacing any previous partial.
func (r *Renderer) RegisterPartial(name, content string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrPartialNameRequired
	}
	r.mu.Lock()
	r.partials[name] = content
	r.mu.Unlock()
	return nil
}

// RegisterPartials stores every entry of partials.
func (r *Renderer) RegisterPartials(partials map[string]string) error {
	for _, name := range sortedNames(partials) {
		if err := r.RegisterPartial(name, partials[name]); err != nil {
			return err
		}
	}
	return nil
}

// Partials returns the registered partial names in lexical order.
func (r *Renderer) Partials() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedNames(r.partials)
}

// RenderString parses content, executes it against data and returns the
// output. When out is supplied the output is written there instead and the
// returned string is empty.
func (r *Renderer) RenderString(content string, data any, out ...io.Writer) (string, error) {
	tpl, err := r.compile(content)
	if err != nil {
		return "", err
	}

	var writer io.Writer
	var buffer *bytes.Buffer
	if len(out) > 0 && out[0] != nil {
		writer = out[0]
	} else {
		buffer = &bytes.Buffer{}
		writer = buffer
	}

	if err := tpl.Execute(writer, data); err != nil {
		return "", fmt.Errorf("templates: execute: %w", err)
	}
	if buffer != nil {
		return buffer.String(), nil
	}
	return "", nil
}

// compile parses content together with every partial that parses on its
// own. Partials that fail are skipped unless content reaches them through
// {{ template }}; the partial helper reports them when called.
func (r *Renderer) compile(content string) (*template.Template, error) {
	root := template.New(rootTemplateName)
	if r.strict {
		root = root.Option("missingkey=error")
	}
	broken := map[string]error{}
	root = root.Funcs(r.funcMap(root, broken))

	r.mu.RLock()
	for _, name := range sortedNames(r.partials) {
		if _, err := root.New(name).Parse(r.partials[name]); err != nil {
			broken[name] = err
			r.logger.Debug("templates.partial.skipped", "partial", name, "error", err)
		}
	}
	r.mu.RUnlock()

	if _, err := root.Parse(content); err != nil {
		return nil, fmt.Errorf("templates: parse: %w", err)
	}
	for _, name := range referencedTemplates(root) {
		if err, ok := broken[name]; ok {
			return nil, fmt.Errorf("%w: %s: %v", ErrPartialInvalid, name, err)
		}
	}
	return root, nil
}

// referencedTemplates lists the template names reachable from root through
// {{ template }} actions, in lexical order.
func referencedTemplates(root *template.Template) []string {
	seen := map[string]bool{}
	var visit func(name string)
	var walk func(node parse.Node)
	walk = func(node parse.Node) {
		switch n := node.(type) {
		case *parse.ListNode:
			if n == nil {
				return
			}
			for _, child := range n.Nodes {
				walk(child)
			}
		case *parse.IfNode:
			walk(n.List)
			walk(n.ElseList)
		case *parse.RangeNode:
			walk(n.List)
			walk(n.ElseList)
		case *parse.WithNode:
			walk(n.List)
			walk(n.ElseList)
		case *parse.TemplateNode:
			visit(n.Name)
		}
	}
	visit = func(name string) {
		if seen[name] {
			return
		}
		seen[name] = true
		if tpl := root.Lookup(name); tpl != nil && tpl.Tree != nil {
			walk(tpl.Tree.Root)
		}
	}
	visit(root.Name())

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Renderer) funcMap(root *template.Template, broken map[string]error) template.FuncMap {
	funcs := sprig.TxtFuncMap()
	funcs["slug"] = func(value string) (string, error) {
		return slug.Normalize(value)
	}
	funcs["markdown"] = func(value string) (string, error) {
		return r.markdown.Render(value)
	}
	funcs["partial"] = func(name string, data any) (string, error) {
		if err, ok := broken[name]; ok {
			return "", fmt.Errorf("%w: %s: %v", ErrPartialInvalid, name, err)
		}
		var buf bytes.Buffer
		if err := root.ExecuteTemplate(&buf, name, data); err != nil {
			return "", err
		}
		return buf.String(), nil
	}
	maps.Copy(funcs, r.funcs)
	return funcs
}
