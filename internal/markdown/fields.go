package markdown

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"dario.cat/mergo"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-dgen/internal/logging"
	"github.com/goliatone/go-dgen/pkg/interfaces"
)

// ErrNonStringField is returned under NonStringStrict when an eligible field
// holds a value that is not text.
var ErrNonStringField = errors.New("markdown fields: eligible value is not a string")

// NonStringPolicy decides what happens to eligible fields whose value is not
// a string.
type NonStringPolicy int

const (
	// NonStringCoerce renders booleans, numbers and fmt.Stringer values through
	// their string form. nil values and sequences are left untouched.
	NonStringCoerce NonStringPolicy = iota
	// NonStringSkip renders string values only.
	NonStringSkip
	// NonStringStrict fails the conversion with ErrNonStringField.
	NonStringStrict
)

// String returns the configuration name of the policy.
func (p NonStringPolicy) String() string {
	switch p {
	case NonStringSkip:
		return "skip"
	case NonStringStrict:
		return "strict"
	default:
		return "coerce"
	}
}

// ParseNonStringPolicy maps a configuration name onto a policy.
func ParseNonStringPolicy(name string) (NonStringPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "coerce":
		return NonStringCoerce, nil
	case "skip":
		return NonStringSkip, nil
	case "strict":
		return NonStringStrict, nil
	default:
		return NonStringCoerce, fmt.Errorf("markdown fields: unknown non-string policy %q", name)
	}
}

// FieldPath identifies a leaf inside a nested document by its key segments.
type FieldPath []string

// String joins the segments with dots, e.g. "methods.GET.summary".
func (p FieldPath) String() string {
	return strings.Join(p, ".")
}

// Name returns the last segment, the bare field name.
func (p FieldPath) Name() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// FieldConverter renders markdown-formatted fields of nested documents.
// A FieldConverter holds no per-call state and is safe for concurrent use.
type FieldConverter struct {
	renderer    interfaces.MarkdownRenderer
	policy      NonStringPolicy
	concurrency int
	logger      interfaces.Logger
}

var _ interfaces.MarkdownFieldConverter = (*FieldConverter)(nil)

// FieldConverterOption configures a FieldConverter.
type FieldConverterOption func(*FieldConverter)

// WithNonStringPolicy overrides the default NonStringCoerce policy.
func WithNonStringPolicy(policy NonStringPolicy) FieldConverterOption {
	return func(c *FieldConverter) {
		c.policy = policy
	}
}

// WithConcurrency renders up to n matched fields in parallel. Values below 2
// keep rendering sequential.
func WithConcurrency(n int) FieldConverterOption {
	return func(c *FieldConverter) {
		c.concurrency = n
	}
}

// WithFieldLogger injects the logger used for debug output.
func WithFieldLogger(logger interfaces.Logger) FieldConverterOption {
	return func(c *FieldConverter) {
		if logger == nil {
			logger = logging.NoOp()
		}
		c.logger = logger
	}
}

// NewFieldConverter builds a converter around renderer. A nil renderer falls
// back to goldmark with the default parse options.
func NewFieldConverter(renderer interfaces.MarkdownRenderer, opts ...FieldConverterOption) *FieldConverter {
	if renderer == nil {
		renderer = NewParserRenderer(NewGoldmarkParser(interfaces.ParseOptions{}), nil)
	}
	c := &FieldConverter{
		renderer: renderer,
		policy:   NonStringCoerce,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ConvertFields converts the named fields of doc with renderer using the
// default policy. See FieldConverter.Convert.
func ConvertFields(doc map[string]any, fields []string, renderer interfaces.MarkdownRenderer) (map[string]any, error) {
	return NewFieldConverter(renderer).Convert(context.Background(), doc, fields)
}

type fieldMatch struct {
	path  FieldPath
	value any
}

type renderedField struct {
	path FieldPath
	html string
	ok   bool
}

// Convert returns a copy of doc where every leaf whose key is listed in
// fields holds the rendered markup of its original value. All other values
// are copied unchanged and doc is never modified. Rendered output is not
// scanned again. Renderer errors are returned wrapped with the field path.
func (c *FieldConverter) Convert(ctx context.Context, doc map[string]any, fields []string) (map[string]any, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	result := CloneDocument(doc)
	targets := fieldSet(fields)
	if len(result) == 0 || len(targets) == 0 {
		return result, nil
	}

	var matches []fieldMatch
	walkLeaves(doc, nil, func(path FieldPath, value any) {
		if _, ok := targets[path.Name()]; ok {
			matches = append(matches, fieldMatch{path: path, value: value})
		}
	})
	if len(matches) == 0 {
		return result, nil
	}

	rendered, err := c.renderMatches(ctx, matches)
	if err != nil {
		return nil, err
	}

	overlay := buildOverlay(rendered)
	if len(overlay) == 0 {
		return result, nil
	}
	if err := mergo.Merge(&result, overlay, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("markdown fields: merge rendered fields: %w", err)
	}

	logging.FromContext(c.logger, ctx).Debug("markdown.fields.converted", "matched", len(matches), "rendered", len(overlayPaths(rendered)))
	return result, nil
}

func (c *FieldConverter) renderMatches(ctx context.Context, matches []fieldMatch) ([]renderedField, error) {
	out := make([]renderedField, len(matches))

	if c.concurrency < 2 || len(matches) < 2 {
		for i, match := range matches {
			field, err := c.renderMatch(ctx, match)
			if err != nil {
				return nil, err
			}
			out[i] = field
		}
		return out, nil
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(c.concurrency)
	for i, match := range matches {
		group.Go(func() error {
			field, err := c.renderMatch(groupCtx, match)
			if err != nil {
				return err
			}
			out[i] = field
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *FieldConverter) renderMatch(ctx context.Context, match fieldMatch) (renderedField, error) {
	if err := ctx.Err(); err != nil {
		return renderedField{}, err
	}

	text, ok, err := c.textFor(match)
	if err != nil || !ok {
		return renderedField{path: match.path}, err
	}

	html, err := c.renderer.Render(text)
	if err != nil {
		return renderedField{}, fmt.Errorf("markdown fields: render %s: %w", match.path, err)
	}
	logging.WithFieldPath(logging.FromContext(c.logger, ctx), match.path.String()).Trace("markdown.fields.rendered")
	return renderedField{path: match.path, html: html, ok: true}, nil
}

func (c *FieldConverter) textFor(match fieldMatch) (string, bool, error) {
	if text, ok := match.value.(string); ok {
		return text, true, nil
	}

	switch c.policy {
	case NonStringSkip:
		return "", false, nil
	case NonStringStrict:
		return "", false, fmt.Errorf("%w: %s holds %T", ErrNonStringField, match.path, match.value)
	}

	switch v := match.value.(type) {
	case nil:
		return "", false, nil
	case bool:
		return strconv.FormatBool(v), true, nil
	case fmt.Stringer:
		return v.String(), true, nil
	}

	switch reflect.ValueOf(match.value).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return fmt.Sprint(match.value), true, nil
	default:
		return "", false, nil
	}
}

// LeafPaths lists every leaf path of doc in depth-first, key-sorted order.
func LeafPaths(doc map[string]any) []FieldPath {
	var paths []FieldPath
	walkLeaves(doc, nil, func(path FieldPath, _ any) {
		paths = append(paths, path)
	})
	return paths
}

// MatchingPaths lists the leaf paths of doc whose last segment is in fields.
func MatchingPaths(doc map[string]any, fields []string) []FieldPath {
	targets := fieldSet(fields)
	if len(targets) == 0 {
		return nil
	}
	var paths []FieldPath
	walkLeaves(doc, nil, func(path FieldPath, _ any) {
		if _, ok := targets[path.Name()]; ok {
			paths = append(paths, path)
		}
	})
	return paths
}

func walkLeaves(node map[string]any, prefix FieldPath, visit func(FieldPath, any)) {
	keys := make([]string, 0, len(node))
	for key := range node {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := node[key]
		path := make(FieldPath, len(prefix)+1)
		copy(path, prefix)
		path[len(prefix)] = key

		if child, ok := asDocument(value); ok {
			walkLeaves(child, path, visit)
			continue
		}
		visit(path, value)
	}
}

func buildOverlay(fields []renderedField) map[string]any {
	overlay := map[string]any{}
	for _, field := range fields {
		if !field.ok || len(field.path) == 0 {
			continue
		}
		node := overlay
		for _, segment := range field.path[:len(field.path)-1] {
			next, ok := node[segment].(map[string]any)
			if !ok {
				next = map[string]any{}
				node[segment] = next
			}
			node = next
		}
		node[field.path.Name()] = field.html
	}
	return overlay
}

func overlayPaths(fields []renderedField) []FieldPath {
	paths := make([]FieldPath, 0, len(fields))
	for _, field := range fields {
		if field.ok {
			paths = append(paths, field.path)
		}
	}
	return paths
}

func fieldSet(fields []string) map[string]struct{} {
	set := make(map[string]struct{}, len(fields))
	for _, name := range fields {
		if name == "" {
			continue
		}
		set[name] = struct{}{}
	}
	return set
}
