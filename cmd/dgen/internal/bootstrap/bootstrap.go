package bootstrap

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/afero"

	"github.com/goliatone/go-dgen"
	"github.com/goliatone/go-dgen/internal/logging/console"
	"github.com/goliatone/go-dgen/pkg/interfaces"
)

// Options captures configuration for CLI bootstraps.
type Options struct {
	// ConfigPath points at a yaml config file. Empty loads defaults plus
	// DGEN_ environment overrides.
	ConfigPath string
	LogLevel   string
	// LogFormat selects a go-logger format (json, console, pretty) and
	// switches the provider to gologger.
	LogFormat      string
	LogWriter      io.Writer
	LoggerProvider interfaces.LoggerProvider
	Fs             afero.Fs
}

// BuildModule loads configuration, applies flag overrides and constructs a
// generator module.
func BuildModule(opts Options) (*dgen.Module, error) {
	cfg, err := dgen.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		cfg.Logging.Level = level
	}
	if format := strings.TrimSpace(opts.LogFormat); format != "" {
		cfg.Logging.Provider = "gologger"
		cfg.Logging.Format = format
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	provider := opts.LoggerProvider
	if provider == nil && strings.EqualFold(strings.TrimSpace(cfg.Logging.Provider), "console") {
		writer := opts.LogWriter
		if writer == nil {
			writer = os.Stderr
		}
		provider = console.NewProvider(console.Options{Writer: writer, Config: cfg.Logging})
	}

	moduleOpts := []dgen.Option{}
	if provider != nil {
		moduleOpts = append(moduleOpts, dgen.WithLoggerProvider(provider))
	}
	if opts.Fs != nil {
		moduleOpts = append(moduleOpts, dgen.WithFs(opts.Fs))
	}

	module, err := dgen.New(cfg, moduleOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise dgen module: %w", err)
	}
	return module, nil
}

// SplitList parses a comma separated list into a trimmed slice.
func SplitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
