package markdown

import (
	"context"
	"strings"
	"testing"

	"github.com/goliatone/go-dgen/pkg/interfaces"
)

func TestServiceRenderMergesOptions(t *testing.T) {
	svc := NewService(Config{}, nil, nil)

	html, err := svc.Render(context.Background(), []byte("first\nsecond"), interfaces.ParseOptions{HardWraps: true})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(html), "first<br>") {
		t.Fatalf("expected override to enable hard wraps, got %q", string(html))
	}
}

func TestServiceRenderHonoursContext(t *testing.T) {
	svc := NewService(Config{}, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.Render(ctx, []byte("text"), interfaces.ParseOptions{}); err == nil {
		t.Fatal("expected cancelled context error")
	}
}

func TestServiceConvertDefaultFields(t *testing.T) {
	svc := NewService(Config{
		Fields: []string{"description", "summary", "details"},
	}, nil, nil)

	result, err := svc.ConvertDefaultFields(context.Background(), serviceDocument())
	if err != nil {
		t.Fatalf("ConvertDefaultFields: %v", err)
	}

	get := result["methods"].(map[string]any)["GET"].(map[string]any)
	if get["summary"] != "<p>List <em>all</em> the <strong>customers</strong></p>\n" {
		t.Fatalf("unexpected summary %q", get["summary"])
	}
	if got := svc.Fields(); len(got) != 3 || got[0] != "description" {
		t.Fatalf("unexpected default fields %v", got)
	}
}

func TestServiceConvertFieldsUsesInjectedParser(t *testing.T) {
	parser := stubParser{prefix: "<x>"}
	svc := NewService(Config{}, parser, nil)

	result, err := svc.ConvertFields(context.Background(), map[string]any{"details": "body"}, []string{"details"})
	if err != nil {
		t.Fatalf("ConvertFields: %v", err)
	}
	if result["details"] != "<x>body" {
		t.Fatalf("expected injected parser output, got %v", result["details"])
	}
}

type stubParser struct {
	prefix string
}

func (p stubParser) Parse(markdown []byte) ([]byte, error) {
	return append([]byte(p.prefix), markdown...), nil
}

func (p stubParser) ParseWithOptions(markdown []byte, _ interfaces.ParseOptions) ([]byte, error) {
	return p.Parse(markdown)
}
