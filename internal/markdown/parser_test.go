package markdown

import (
	"strings"
	"testing"

	"github.com/goliatone/go-dgen/pkg/interfaces"
)

func TestGoldmarkParser_Parse(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{})

	html, err := parser.Parse([]byte("# Heading\n\nHello **world**"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	got := string(html)
	if !strings.Contains(got, "<h1>Heading</h1>") {
		t.Fatalf("expected rendered HTML to include <h1>Heading</h1>, got %q", got)
	}
	if !strings.Contains(got, "<strong>world</strong>") {
		t.Fatalf("expected rendered HTML to include <strong>, got %q", got)
	}
}

func TestGoldmarkParser_ParseWithOptions(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{})

	html, err := parser.ParseWithOptions([]byte("line one\nline two"), interfaces.ParseOptions{
		HardWraps: true,
	})
	if err != nil {
		t.Fatalf("ParseWithOptions: %v", err)
	}

	if !strings.Contains(string(html), "line one<br>") {
		t.Fatalf("expected hard wraps in HTML output, got %q", string(html))
	}
}

func TestGoldmarkParser_HeadingIDs(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{HeadingIDs: true})

	html, err := parser.Parse([]byte("# Service Overview"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !strings.Contains(string(html), `id="service-overview"`) {
		t.Fatalf("expected heading id attribute, got %q", string(html))
	}
}

func TestGoldmarkParser_SafeModeDropsRawHTML(t *testing.T) {
	source := []byte("<div class=\"note\">raw</div>")

	unsafe, err := NewGoldmarkParser(interfaces.ParseOptions{}).Parse(source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !strings.Contains(string(unsafe), `<div class="note">raw</div>`) {
		t.Fatalf("expected raw HTML passthrough by default, got %q", string(unsafe))
	}

	safe, err := NewGoldmarkParser(interfaces.ParseOptions{SafeMode: true}).Parse(source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if strings.Contains(string(safe), "<div") {
		t.Fatalf("expected raw HTML to be omitted in safe mode, got %q", string(safe))
	}
}

func TestParserRenderer(t *testing.T) {
	renderer := NewParserRenderer(nil, nil)

	html, err := renderer.Render("List *all* the **customers**")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if html != "<p>List <em>all</em> the <strong>customers</strong></p>\n" {
		t.Fatalf("unexpected HTML %q", html)
	}
}

func TestKnownExtension(t *testing.T) {
	if !KnownExtension(" GFM ") {
		t.Fatal("expected gfm to be registered")
	}
	if KnownExtension("mermaid") {
		t.Fatal("expected unknown extension to be rejected")
	}
}
