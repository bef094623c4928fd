package runtimeconfig_test

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/goliatone/go-dgen/internal/markdown"
	"github.com/goliatone/go-dgen/internal/runtimeconfig"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
	if len(cfg.Markdown.Fields) != 3 || cfg.Markdown.Fields[0] != "description" {
		t.Fatalf("unexpected default fields %v", cfg.Markdown.Fields)
	}
	if cfg.Markdown.Policy() != markdown.NonStringCoerce {
		t.Fatalf("expected coerce policy by default")
	}
}

func TestConfigValidateErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*runtimeconfig.Config)
		want   error
	}{
		{"policy", func(c *runtimeconfig.Config) { c.Markdown.NonStringPolicy = "explode" }, runtimeconfig.ErrMarkdownPolicyInvalid},
		{"concurrency", func(c *runtimeconfig.Config) { c.Markdown.Concurrency = -1 }, runtimeconfig.ErrMarkdownConcurrencyInvalid},
		{"extension", func(c *runtimeconfig.Config) { c.Markdown.Parser.Extensions = []string{"gfm", "mermaid"} }, runtimeconfig.ErrMarkdownExtensionUnknown},
		{"dir mode", func(c *runtimeconfig.Config) { c.Scaffold.DirMode = "rwx" }, runtimeconfig.ErrScaffoldDirModeInvalid},
		{"file mode", func(c *runtimeconfig.Config) { c.Templates.FileMode = "1777" }, runtimeconfig.ErrTemplatesFileModeInvalid},
		{"provider", func(c *runtimeconfig.Config) { c.Logging.Provider = "syslog" }, runtimeconfig.ErrLoggingProviderUnknown},
		{"level", func(c *runtimeconfig.Config) { c.Logging.Level = "loud" }, runtimeconfig.ErrLoggingLevelInvalid},
		{"format", func(c *runtimeconfig.Config) {
			c.Logging.Provider = "gologger"
			c.Logging.Format = "xml"
		}, runtimeconfig.ErrLoggingFormatInvalid},
		{"timeout", func(c *runtimeconfig.Config) { c.Commands.Timeout = -time.Second }, runtimeconfig.ErrCommandsTimeoutInvalid},
		{"retries", func(c *runtimeconfig.Config) { c.Commands.MaxRetries = -2 }, runtimeconfig.ErrCommandsRetriesInvalid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := runtimeconfig.DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestParseFileMode(t *testing.T) {
	mode, err := runtimeconfig.ParseFileMode("0750")
	if err != nil || mode != os.FileMode(0o750) {
		t.Fatalf("expected 0750, got %v (%v)", mode, err)
	}
	if mode, err := runtimeconfig.ParseFileMode(""); err != nil || mode != 0 {
		t.Fatalf("expected zero mode for empty input, got %v (%v)", mode, err)
	}
}

func TestLoadFS_FileAndEnvironment(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := `
markdown:
  fields: [summary]
  non_string_policy: strict
  concurrency: 2
  parser:
    extensions: [gfm, footnote]
    heading_ids: true
scaffold:
  exclude_hidden_unix: true
logging:
  provider: gologger
  format: json
commands:
  timeout: 5s
`
	if err := afero.WriteFile(fs, "dgen.yaml", []byte(content), 0o600); err != nil {
		t.Fatalf("seed: %v", err)
	}
	t.Setenv("DGEN_LOGGING_LEVEL", "debug")
	t.Setenv("DGEN_MARKDOWN_FIELDS", "summary, details")

	cfg, err := runtimeconfig.LoadFS(fs, "dgen.yaml")
	if err != nil {
		t.Fatalf("LoadFS: %v", err)
	}

	if len(cfg.Markdown.Fields) != 2 || cfg.Markdown.Fields[1] != "details" {
		t.Fatalf("expected env fields to override, got %v", cfg.Markdown.Fields)
	}
	if cfg.Markdown.Policy() != markdown.NonStringStrict || cfg.Markdown.Concurrency != 2 {
		t.Fatalf("unexpected markdown section %+v", cfg.Markdown)
	}
	opts := cfg.Markdown.Parser.ParseOptions()
	if !opts.HeadingIDs || len(opts.Extensions) != 2 {
		t.Fatalf("unexpected parse options %+v", opts)
	}
	if !cfg.Scaffold.ExcludeHiddenUnix || cfg.Scaffold.DirMode != "0755" {
		t.Fatalf("unexpected scaffold section %+v", cfg.Scaffold)
	}
	if cfg.Logging.Provider != "gologger" || cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Fatalf("unexpected logging section %+v", cfg.Logging)
	}
	if cfg.Commands.Timeout != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %v", cfg.Commands.Timeout)
	}
}

func TestLoadFS_DefaultsWithoutFile(t *testing.T) {
	cfg, err := runtimeconfig.LoadFS(afero.NewMemMapFs(), "")
	if err != nil {
		t.Fatalf("LoadFS: %v", err)
	}
	defaults := runtimeconfig.DefaultConfig()
	if cfg.Logging.Level != defaults.Logging.Level || cfg.Commands.Timeout != defaults.Commands.Timeout {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if len(cfg.Markdown.Fields) != len(defaults.Markdown.Fields) {
		t.Fatalf("expected default fields, got %v", cfg.Markdown.Fields)
	}
}

func TestLoadFS_Errors(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "bad.yaml", []byte("logging:\n  level: loud\n"), 0o600)
	_ = afero.WriteFile(fs, "broken.yaml", []byte("markdown: [\n"), 0o600)

	if _, err := runtimeconfig.LoadFS(fs, "missing.yaml"); err == nil {
		t.Fatal("expected missing file to fail")
	}
	if _, err := runtimeconfig.LoadFS(fs, "bad.yaml"); !errors.Is(err, runtimeconfig.ErrLoggingLevelInvalid) {
		t.Fatalf("expected ErrLoggingLevelInvalid, got %v", err)
	}
	if _, err := runtimeconfig.LoadFS(fs, "broken.yaml"); err == nil {
		t.Fatal("expected malformed yaml to fail")
	}
}
