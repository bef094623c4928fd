package dgen_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-dgen"
)

func TestDefaultConfigMatchesRuntimeDefaults(t *testing.T) {
	cfg := dgen.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Logging.Provider != "console" {
		t.Fatalf("expected console logging provider, got %q", cfg.Logging.Provider)
	}
	if len(cfg.Markdown.Fields) == 0 {
		t.Fatal("expected default markdown fields")
	}
}

func TestConfigValidationErrorsAreExported(t *testing.T) {
	cfg := dgen.DefaultConfig()
	cfg.Scaffold.DirMode = "rwx"
	if err := cfg.Validate(); !errors.Is(err, dgen.ErrScaffoldDirModeInvalid) {
		t.Fatalf("expected ErrScaffoldDirModeInvalid, got %v", err)
	}

	cfg = dgen.DefaultConfig()
	cfg.Commands.MaxRetries = -1
	if err := cfg.Validate(); !errors.Is(err, dgen.ErrCommandsRetriesInvalid) {
		t.Fatalf("expected ErrCommandsRetriesInvalid, got %v", err)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dgen.yml")
	content := "markdown:\n  fields: [notes]\n  non_string_policy: skip\ntemplates:\n  strict_keys: true\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := dgen.LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.Markdown.Fields) != 1 || cfg.Markdown.Fields[0] != "notes" {
		t.Fatalf("unexpected fields %v", cfg.Markdown.Fields)
	}
	if cfg.Markdown.Policy() != dgen.NonStringSkip {
		t.Fatalf("expected skip policy, got %v", cfg.Markdown.Policy())
	}
	if !cfg.Templates.StrictKeys {
		t.Fatal("expected strict keys enabled")
	}
	if cfg.Scaffold.DirMode != "0755" {
		t.Fatalf("expected default dir mode, got %q", cfg.Scaffold.DirMode)
	}
}
