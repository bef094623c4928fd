package validation

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func serviceSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []any{"name", "description"},
		"properties": map[string]any{
			"name":        map[string]any{"type": "string"},
			"description": map[string]any{"type": "string", "minLength": 3},
			"methods": map[string]any{
				"type": "object",
				"additionalProperties": map[string]any{
					"type":     "object",
					"required": []any{"summary"},
				},
			},
		},
	}
}

func TestValidateDocumentAcceptsValidDocument(t *testing.T) {
	doc := map[string]any{
		"name":        "Customers",
		"description": "The **customer** collection",
		"methods": map[string]any{
			"GET": map[string]any{"summary": "List *all*", "statusCode": 200},
		},
		"updated": time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	if err := ValidateDocument(serviceSchema(), doc); err != nil {
		t.Fatalf("expected document to validate, got %v", err)
	}
}

func TestValidateDocumentReportsIssues(t *testing.T) {
	doc := map[string]any{
		"name":        "Customers",
		"description": "x",
		"methods": map[string]any{
			"GET": map[string]any{"overview": "no summary"},
		},
	}
	err := ValidateDocument(serviceSchema(), doc)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, ErrDocumentInvalid) {
		t.Fatalf("expected ErrDocumentInvalid, got %v", err)
	}
	var docErr *DocumentValidationError
	if !errors.As(err, &docErr) {
		t.Fatalf("expected *DocumentValidationError, got %T", err)
	}

	locations := map[string]bool{}
	for _, issue := range Issues(err) {
		locations[issue.Location] = true
	}
	if !locations["/description"] || !locations["/methods/GET"] {
		t.Fatalf("expected issues at /description and /methods/GET, got %+v", docErr.Issues)
	}
	if !strings.Contains(err.Error(), "#/description") {
		t.Fatalf("expected formatted location in error, got %q", err.Error())
	}
}

func TestValidateDocumentFieldShorthand(t *testing.T) {
	schema := map[string]any{
		"fields": []any{
			map[string]any{"name": "summary", "type": "string", "required": true},
			map[string]any{"name": "count", "type": "integer"},
			"notes",
		},
	}

	if err := ValidateDocument(schema, map[string]any{"summary": "ok", "count": 3, "notes": true}); err != nil {
		t.Fatalf("expected valid document, got %v", err)
	}
	if err := ValidateDocument(schema, map[string]any{"count": "three"}); !errors.Is(err, ErrDocumentInvalid) {
		t.Fatalf("expected ErrDocumentInvalid, got %v", err)
	}
	if issues := Issues(ValidateDocument(schema, map[string]any{"count": "three"})); len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %+v", issues)
	}
}

func TestValidateDocumentEmptySchema(t *testing.T) {
	if err := ValidateDocument(nil, map[string]any{"anything": 1}); err != nil {
		t.Fatalf("expected nil schema to accept, got %v", err)
	}
	if err := ValidateDocument(map[string]any{"title": "no schema keys"}, nil); err != nil {
		t.Fatalf("expected non-schema map to accept, got %v", err)
	}
}

func TestValidateSchema(t *testing.T) {
	if err := ValidateSchema(serviceSchema()); err != nil {
		t.Fatalf("expected schema to compile, got %v", err)
	}
	bad := map[string]any{"type": "object", "properties": map[string]any{"name": map[string]any{"type": 12}}}
	if err := ValidateSchema(bad); !errors.Is(err, ErrSchemaInvalid) {
		t.Fatalf("expected ErrSchemaInvalid, got %v", err)
	}
	if err := ValidateDocument(bad, map[string]any{}); !errors.Is(err, ErrSchemaInvalid) {
		t.Fatalf("expected ErrSchemaInvalid from ValidateDocument, got %v", err)
	}
}

func TestValidateDocumentEncodingError(t *testing.T) {
	err := ValidateDocument(serviceSchema(), map[string]any{"name": func() {}})
	if !errors.Is(err, ErrDocumentEncoding) {
		t.Fatalf("expected ErrDocumentEncoding, got %v", err)
	}
}

func TestLoadSchema(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "schema.yml", []byte("type: object\nrequired: [name]\n"), 0o644)

	schema, err := LoadSchema(fs, "schema.yml")
	if err != nil {
		t.Fatalf("LoadSchema: %v", err)
	}
	if err := ValidateDocument(schema, map[string]any{}); !errors.Is(err, ErrDocumentInvalid) {
		t.Fatalf("expected missing name to fail, got %v", err)
	}
	if _, err := LoadSchema(fs, "missing.yml"); err == nil {
		t.Fatal("expected missing schema to fail")
	}
}
