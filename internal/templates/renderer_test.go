package templates

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"text/template"

	"github.com/goliatone/go-dgen/pkg/interfaces"
)

func TestRendererRenderString(t *testing.T) {
	renderer := NewRenderer()

	out, err := renderer.RenderString(`{{ .name | upper }} v{{ .version | default "0.0.0" }}`, map[string]any{"name": "isAlive"})
	if err != nil {
		t.Fatalf("RenderString: %v", err)
	}
	if out != "ISALIVE v0.0.0" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRendererWritesToProvidedWriter(t *testing.T) {
	renderer := NewRenderer()
	var buf bytes.Buffer

	out, err := renderer.RenderString(`hello {{ .who }}`, map[string]any{"who": "world"}, &buf)
	if err != nil {
		t.Fatalf("RenderString: %v", err)
	}
	if out != "" {
		t.Fatalf("expected empty return when writing to out, got %q", out)
	}
	if buf.String() != "hello world" {
		t.Fatalf("unexpected writer content %q", buf.String())
	}
}

func TestRendererPartials(t *testing.T) {
	renderer := NewRenderer()
	if err := renderer.RegisterPartials(map[string]string{
		"header.hb": `# {{ .title }}`,
		"item.hb":   `- {{ . }}`,
	}); err != nil {
		t.Fatalf("RegisterPartials: %v", err)
	}

	tpl := `{{ template "header.hb" . }}
{{ range .items }}{{ partial "item.hb" . | trim }}
{{ end }}`
	out, err := renderer.RenderString(tpl, map[string]any{
		"title": "Services",
		"items": []string{"monitoring", "billing"},
	})
	if err != nil {
		t.Fatalf("RenderString: %v", err)
	}
	want := "# Services\n- monitoring\n- billing\n"
	if out != want {
		t.Fatalf("unexpected output:\nwant %q\ngot  %q", want, out)
	}

	names := renderer.Partials()
	if len(names) != 2 || names[0] != "header.hb" || names[1] != "item.hb" {
		t.Fatalf("unexpected partial names %v", names)
	}
}

func TestRendererSkipsBrokenPartials(t *testing.T) {
	renderer := NewRenderer()
	if err := renderer.RegisterPartials(map[string]string{
		"broken.js": `{{ if }}`,
		"nested.hb": `{{ if .deep }}{{ template "broken.js" . }}{{ end }}`,
		"ok.hb":     `ok {{ . }}`,
	}); err != nil {
		t.Fatalf("RegisterPartials: %v", err)
	}

	out, err := renderer.RenderString(`{{ partial "ok.hb" .name }}`, map[string]any{"name": "x"})
	if err != nil {
		t.Fatalf("RenderString: %v", err)
	}
	if out != "ok x" {
		t.Fatalf("unexpected output %q", out)
	}

	cases := []struct {
		name string
		tpl  string
	}{
		{name: "template action", tpl: `{{ template "broken.js" . }}`},
		{name: "through another partial", tpl: `{{ range .items }}{{ template "nested.hb" . }}{{ end }}`},
		{name: "partial helper", tpl: `{{ partial "broken.js" . }}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := renderer.RenderString(tc.tpl, map[string]any{"items": []any{map[string]any{"deep": true}}})
			if !errors.Is(err, ErrPartialInvalid) {
				t.Fatalf("expected ErrPartialInvalid, got %v", err)
			}
		})
	}
}

func TestRendererRegisterPartialRequiresName(t *testing.T) {
	if err := NewRenderer().RegisterPartial("  ", "x"); !errors.Is(err, ErrPartialNameRequired) {
		t.Fatalf("expected ErrPartialNameRequired, got %v", err)
	}
}

func TestRendererHelpers(t *testing.T) {
	renderer := NewRenderer(WithFuncs(template.FuncMap{
		"shout": func(s string) string { return s + "!" },
	}))

	out, err := renderer.RenderString(`{{ markdown .summary }}|{{ shout "hi" }}|{{ slug .title }}`, map[string]any{
		"summary": "List *all*",
		"title":   "Service Overview",
	})
	if err != nil {
		t.Fatalf("RenderString: %v", err)
	}
	parts := strings.Split(out, "|")
	if len(parts) != 3 {
		t.Fatalf("unexpected output %q", out)
	}
	if parts[0] != "<p>List <em>all</em></p>\n" {
		t.Fatalf("unexpected markdown output %q", parts[0])
	}
	if parts[1] != "hi!" {
		t.Fatalf("unexpected custom func output %q", parts[1])
	}
	if parts[2] == "" || strings.ContainsAny(parts[2], " SO") {
		t.Fatalf("expected normalised slug, got %q", parts[2])
	}
}

func TestRendererCustomMarkdown(t *testing.T) {
	renderer := NewRenderer(WithMarkdownRenderer(interfaces.MarkdownRendererFunc(func(s string) (string, error) {
		return "<md>" + s + "</md>", nil
	})))

	out, err := renderer.RenderString(`{{ markdown "x" }}`, nil)
	if err != nil {
		t.Fatalf("RenderString: %v", err)
	}
	if out != "<md>x</md>" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRendererErrors(t *testing.T) {
	cases := []struct {
		name     string
		renderer *Renderer
		tpl      string
		data     any
	}{
		{name: "parse", renderer: NewRenderer(), tpl: `{{ .name `},
		{name: "missing partial", renderer: NewRenderer(), tpl: `{{ template "nope" . }}`},
		{name: "strict keys", renderer: NewRenderer(WithStrictKeys(true)), tpl: `{{ .missing }}`, data: map[string]any{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.renderer.RenderString(tc.tpl, tc.data); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
