// Package validation checks documents against JSON schemas before they are
// converted or rendered.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/spf13/afero"

	"github.com/goliatone/go-dgen/internal/datafile"
)

var (
	ErrSchemaInvalid    = errors.New("schema invalid")
	ErrDocumentInvalid  = errors.New("document validation failed")
	ErrDocumentEncoding = errors.New("document is not json encodable")
)

const schemaResource = "schema.json"

// Issue captures a single validation failure.
type Issue struct {
	Location string
	Message  string
}

// DocumentValidationError lists every failing location of a document.
type DocumentValidationError struct {
	Issues []Issue
	Cause  error
}

func (e *DocumentValidationError) Error() string {
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return e.Cause.Error()
		}
		return ErrDocumentInvalid.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := strings.TrimSpace(issue.Location)
		if location == "" {
			location = "#"
		} else if !strings.HasPrefix(location, "#") {
			location = "#" + location
		}
		if issue.Message == "" {
			parts = append(parts, location)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return strings.Join(parts, "; ")
}

func (e *DocumentValidationError) Unwrap() error {
	return ErrDocumentInvalid
}

// Issues extracts validation issues from an error.
func Issues(err error) []Issue {
	if err == nil {
		return nil
	}
	var docErr *DocumentValidationError
	if errors.As(err, &docErr) && docErr != nil {
		return docErr.Issues
	}
	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) && validationErr != nil {
		return collectIssues(validationErr)
	}
	return []Issue{{Message: err.Error()}}
}

// LoadSchema reads a schema from any format the datafile package decodes.
func LoadSchema(fs afero.Fs, path string) (map[string]any, error) {
	schema, err := datafile.LoadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	return schema, nil
}

// ValidateSchema ensures the schema can be compiled.
func ValidateSchema(schema map[string]any) error {
	normalized := NormalizeSchema(schema)
	if normalized == nil {
		return nil
	}
	if _, err := compileSchema(normalized); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	return nil
}

// ValidateDocument validates doc against schema. An empty schema accepts
// every document. Failures are reported as *DocumentValidationError.
func ValidateDocument(schema map[string]any, doc map[string]any) error {
	normalized := NormalizeSchema(schema)
	if normalized == nil {
		return nil
	}
	compiled, err := compileSchema(normalized)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	instance, err := jsonValue(doc)
	if err != nil {
		return err
	}
	if err := compiled.Validate(instance); err != nil {
		return &DocumentValidationError{
			Issues: Issues(err),
			Cause:  err,
		}
	}
	return nil
}

// NormalizeSchema returns a JSON schema for schema. Besides plain JSON
// schemas it accepts a shorthand listing fields:
//
//	fields:
//	  - name: description
//	    type: string
//	    required: true
func NormalizeSchema(schema map[string]any) map[string]any {
	if len(schema) == 0 {
		return nil
	}
	if isJSONSchema(schema) {
		return schema
	}
	fields, ok := schema["fields"]
	if !ok {
		return nil
	}
	properties, required := normalizeFields(fields)
	if len(properties) == 0 {
		return nil
	}
	normalized := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if allowed, ok := schema["additionalProperties"].(bool); ok {
		normalized["additionalProperties"] = allowed
	}
	if len(required) > 0 {
		normalized["required"] = required
	}
	return normalized
}

func isJSONSchema(schema map[string]any) bool {
	for _, key := range []string{"$schema", "type", "properties", "oneOf", "anyOf", "allOf", "$ref"} {
		if _, ok := schema[key]; ok {
			return true
		}
	}
	return false
}

func normalizeFields(fields any) (map[string]any, []any) {
	properties := make(map[string]any)
	required := make([]any, 0)

	entries, _ := fields.([]any)
	for _, entry := range entries {
		switch typed := entry.(type) {
		case map[string]any:
			addField(properties, &required, typed)
		case string:
			addField(properties, &required, map[string]any{"name": typed})
		}
	}
	return properties, required
}

func addField(properties map[string]any, required *[]any, field map[string]any) {
	name, _ := field["name"].(string)
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	switch {
	case field["schema"] != nil:
		if schema, ok := field["schema"].(map[string]any); ok {
			properties[name] = schema
		}
	case field["type"] != nil:
		fieldType, _ := field["type"].(string)
		if jsonType := normalizeJSONType(fieldType); jsonType != "" {
			properties[name] = map[string]any{"type": jsonType}
		} else {
			properties[name] = map[string]any{}
		}
	default:
		properties[name] = map[string]any{}
	}
	if flag, ok := field["required"].(bool); ok && flag {
		*required = append(*required, name)
	}
}

func normalizeJSONType(value string) string {
	switch normalized := strings.ToLower(strings.TrimSpace(value)); normalized {
	case "string", "number", "integer", "boolean", "object", "array", "null":
		return normalized
	default:
		return ""
	}
}

func compileSchema(schema map[string]any) (*jsonschema.Schema, error) {
	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaResource, bytes.NewReader(encoded)); err != nil {
		return nil, err
	}
	return compiler.Compile(schemaResource)
}

// jsonValue round trips doc through encoding/json so decoder specific leaf
// types (timestamps, typed slices) reach the validator as plain JSON values.
func jsonValue(doc map[string]any) (any, error) {
	if doc == nil {
		doc = map[string]any{}
	}
	encoded, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentEncoding, err)
	}
	decoder := json.NewDecoder(bytes.NewReader(encoded))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentEncoding, err)
	}
	return value, nil
}

func collectIssues(err *jsonschema.ValidationError) []Issue {
	issues := []Issue{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, Issue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}
