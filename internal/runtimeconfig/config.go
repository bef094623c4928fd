package runtimeconfig

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-dgen/internal/markdown"
	"github.com/goliatone/go-dgen/pkg/interfaces"
)

var (
	ErrMarkdownPolicyInvalid      = errors.New("dgen config: markdown non-string policy is invalid")
	ErrMarkdownConcurrencyInvalid = errors.New("dgen config: markdown concurrency must be zero or positive")
	ErrMarkdownExtensionUnknown   = errors.New("dgen config: markdown extension is unknown")
	ErrScaffoldDirModeInvalid     = errors.New("dgen config: scaffold dir mode is invalid")
	ErrTemplatesFileModeInvalid   = errors.New("dgen config: templates file mode is invalid")
	ErrLoggingProviderUnknown     = errors.New("dgen config: logging provider is invalid")
	ErrLoggingLevelInvalid        = errors.New("dgen config: logging level is invalid")
	ErrLoggingFormatInvalid       = errors.New("dgen config: logging format is invalid")
	ErrCommandsTimeoutInvalid     = errors.New("dgen config: command timeout must be zero or positive")
	ErrCommandsRetriesInvalid     = errors.New("dgen config: command retries must be zero or positive")
)

// DefaultMarkdownFields are converted when no field list is configured.
var DefaultMarkdownFields = []string{"description", "summary", "details"}

// Config aggregates generator behaviour. Every section maps onto a top level
// key of the yaml config file.
type Config struct {
	Markdown  MarkdownConfig  `koanf:"markdown"`
	Scaffold  ScaffoldConfig  `koanf:"scaffold"`
	Templates TemplatesConfig `koanf:"templates"`
	Logging   LoggingConfig   `koanf:"logging"`
	Commands  CommandsConfig  `koanf:"commands"`
}

// MarkdownConfig controls field conversion.
type MarkdownConfig struct {
	Fields          []string             `koanf:"fields"`
	NonStringPolicy string               `koanf:"non_string_policy"`
	Concurrency     int                  `koanf:"concurrency"`
	Parser          MarkdownParserConfig `koanf:"parser"`
}

// MarkdownParserConfig mirrors interfaces.ParseOptions for runtime configuration.
type MarkdownParserConfig struct {
	Extensions []string `koanf:"extensions"`
	Sanitize   bool     `koanf:"sanitize"`
	HardWraps  bool     `koanf:"hard_wraps"`
	SafeMode   bool     `koanf:"safe_mode"`
	HeadingIDs bool     `koanf:"heading_ids"`
}

// ScaffoldConfig holds defaults for tree creation and copies.
type ScaffoldConfig struct {
	DirMode           string `koanf:"dir_mode"`
	ExcludeHiddenUnix bool   `koanf:"exclude_hidden_unix"`
	PreserveFiles     bool   `koanf:"preserve_files"`
	InflateSymlinks   bool   `koanf:"inflate_symlinks"`
}

// TemplatesConfig holds template rendering defaults.
type TemplatesConfig struct {
	PartialsDir string `koanf:"partials_dir"`
	FileMode    string `koanf:"file_mode"`
	StrictKeys  bool   `koanf:"strict_keys"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `koanf:"provider"`
	Level     string   `koanf:"level"`
	Format    string   `koanf:"format"`
	AddSource bool     `koanf:"add_source"`
	Focus     []string `koanf:"focus"`
}

// CommandsConfig captures command handler behaviour.
type CommandsConfig struct {
	Timeout    time.Duration `koanf:"timeout"`
	MaxRetries int           `koanf:"max_retries"`
}

// DefaultConfig returns the defaults used when no file or environment
// overrides are present.
func DefaultConfig() Config {
	return Config{
		Markdown: MarkdownConfig{
			Fields:          append([]string(nil), DefaultMarkdownFields...),
			NonStringPolicy: markdown.NonStringCoerce.String(),
		},
		Scaffold: ScaffoldConfig{
			DirMode: "0755",
		},
		Templates: TemplatesConfig{
			FileMode: "0644",
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		Commands: CommandsConfig{
			Timeout: 30 * time.Second,
		},
	}
}

// applyDefaults fills zero values left after unmarshalling.
func applyDefaults(cfg *Config) {
	defaults := DefaultConfig()
	if len(cfg.Markdown.Fields) == 0 {
		cfg.Markdown.Fields = defaults.Markdown.Fields
	}
	if strings.TrimSpace(cfg.Markdown.NonStringPolicy) == "" {
		cfg.Markdown.NonStringPolicy = defaults.Markdown.NonStringPolicy
	}
	if strings.TrimSpace(cfg.Scaffold.DirMode) == "" {
		cfg.Scaffold.DirMode = defaults.Scaffold.DirMode
	}
	if strings.TrimSpace(cfg.Templates.FileMode) == "" {
		cfg.Templates.FileMode = defaults.Templates.FileMode
	}
	if strings.TrimSpace(cfg.Logging.Provider) == "" {
		cfg.Logging.Provider = defaults.Logging.Provider
	}
	if strings.TrimSpace(cfg.Logging.Level) == "" {
		cfg.Logging.Level = defaults.Logging.Level
	}
	if cfg.Commands.Timeout == 0 {
		cfg.Commands.Timeout = defaults.Commands.Timeout
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if _, err := markdown.ParseNonStringPolicy(cfg.Markdown.NonStringPolicy); err != nil {
		return fmt.Errorf("%w: %s", ErrMarkdownPolicyInvalid, cfg.Markdown.NonStringPolicy)
	}
	if cfg.Markdown.Concurrency < 0 {
		return ErrMarkdownConcurrencyInvalid
	}
	for _, ext := range cfg.Markdown.Parser.Extensions {
		if !markdown.KnownExtension(ext) {
			return fmt.Errorf("%w: %s", ErrMarkdownExtensionUnknown, ext)
		}
	}
	if _, err := ParseFileMode(cfg.Scaffold.DirMode); err != nil {
		return fmt.Errorf("%w: %v", ErrScaffoldDirModeInvalid, err)
	}
	if _, err := ParseFileMode(cfg.Templates.FileMode); err != nil {
		return fmt.Errorf("%w: %v", ErrTemplatesFileModeInvalid, err)
	}
	provider := normalizeProvider(cfg.Logging.Provider)
	if provider != "" && !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	if cfg.Commands.Timeout < 0 {
		return ErrCommandsTimeoutInvalid
	}
	if cfg.Commands.MaxRetries < 0 {
		return ErrCommandsRetriesInvalid
	}
	return nil
}

// ParseFileMode parses an octal permission string such as "0755". An empty
// value yields zero so callers fall back to their own default.
func ParseFileMode(value string) (os.FileMode, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	mode, err := strconv.ParseUint(value, 8, 32)
	if err != nil {
		return 0, err
	}
	if mode > 0o777 {
		return 0, fmt.Errorf("mode %s exceeds 0777", value)
	}
	return os.FileMode(mode), nil
}

// Policy returns the parsed markdown policy, defaulting to coerce.
func (c MarkdownConfig) Policy() markdown.NonStringPolicy {
	policy, err := markdown.ParseNonStringPolicy(c.NonStringPolicy)
	if err != nil {
		return markdown.NonStringCoerce
	}
	return policy
}

// ParseOptions converts the parser section into interfaces.ParseOptions.
func (c MarkdownParserConfig) ParseOptions() interfaces.ParseOptions {
	return interfaces.ParseOptions{
		Extensions: append([]string(nil), c.Extensions...),
		Sanitize:   c.Sanitize,
		HardWraps:  c.HardWraps,
		SafeMode:   c.SafeMode,
		HeadingIDs: c.HeadingIDs,
	}
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
