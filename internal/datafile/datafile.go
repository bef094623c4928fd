// Package datafile loads structured documents from yaml, json, toml and
// markdown files into map[string]any trees.
package datafile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/BurntSushi/toml"
	"github.com/adrg/frontmatter"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-dgen/internal/markdown"
)

// BodyKey holds the markdown body of a front matter document.
const BodyKey = "body"

var (
	// ErrUnsupportedFormat is returned for files whose extension has no decoder.
	ErrUnsupportedFormat = errors.New("datafile: unsupported format")
	// ErrNotAMapping is returned when a file decodes to something other than a mapping.
	ErrNotAMapping = errors.New("datafile: document root is not a mapping")
)

// Format identifies a decoder.
type Format string

const (
	FormatYAML     Format = "yaml"
	FormatJSON     Format = "json"
	FormatTOML     Format = "toml"
	FormatMarkdown Format = "markdown"
)

// FormatFor resolves the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// LoadFile reads and decodes a single file.
func LoadFile(fs afero.Fs, path string) (map[string]any, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("datafile: read %s: %w", path, err)
	}
	doc, err := Decode(format, raw)
	if err != nil {
		return nil, fmt.Errorf("datafile: decode %s: %w", path, err)
	}
	return doc, nil
}

// LoadData loads every path in order and deep merges them. Keys from later
// files override earlier ones; nested mappings are merged key by key.
func LoadData(fs afero.Fs, paths ...string) (map[string]any, error) {
	result := map[string]any{}
	for _, path := range paths {
		doc, err := LoadFile(fs, path)
		if err != nil {
			return nil, err
		}
		if err := mergo.Merge(&result, doc, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("datafile: merge %s: %w", path, err)
		}
	}
	return result, nil
}

// Decode parses raw according to format.
func Decode(format Format, raw []byte) (map[string]any, error) {
	var (
		decoded any
		err     error
	)
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(raw, &decoded)
	case FormatJSON:
		if len(bytes.TrimSpace(raw)) > 0 {
			err = json.Unmarshal(raw, &decoded)
		}
	case FormatTOML:
		var doc map[string]any
		err = toml.Unmarshal(raw, &doc)
		decoded = doc
	case FormatMarkdown:
		return decodeMarkdown(raw)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	return asDocument(decoded)
}

func decodeMarkdown(raw []byte) (map[string]any, error) {
	meta := map[string]any{}
	body, err := frontmatter.Parse(bytes.NewReader(raw), &meta)
	if err != nil {
		return nil, fmt.Errorf("parse front matter: %w", err)
	}
	doc, err := asDocument(meta)
	if err != nil {
		return nil, err
	}
	doc[BodyKey] = string(body)
	return doc, nil
}

func asDocument(value any) (map[string]any, error) {
	if value == nil {
		return map[string]any{}, nil
	}
	doc, ok := markdown.ToDocument(value)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrNotAMapping, value)
	}
	return doc, nil
}
