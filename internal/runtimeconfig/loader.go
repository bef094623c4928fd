package runtimeconfig

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/afero"
)

// EnvPrefix marks environment variables read by Load.
const EnvPrefix = "DGEN_"

const maxConfigFileSize = 1024 * 1024

// listKeys are split on commas when set through the environment.
var listKeys = map[string]struct{}{
	"markdown.fields": {},
	"logging.focus":   {},
}

// Load reads configuration from the yaml file at path and then applies
// environment overrides. An empty path skips the file.
//
// Precedence (highest to lowest):
//  1. Environment variables (DGEN_LOGGING_LEVEL, DGEN_MARKDOWN_FIELDS, ...)
//  2. The yaml file
//  3. DefaultConfig values
//
// Environment keys drop the prefix and split on the first underscore only:
//
//	DGEN_MARKDOWN_NON_STRING_POLICY -> markdown.non_string_policy
//	DGEN_COMMANDS_TIMEOUT           -> commands.timeout
func Load(path string) (Config, error) {
	return LoadFS(afero.NewOsFs(), path)
}

// LoadFS is Load on an arbitrary filesystem.
func LoadFS(fs afero.Fs, path string) (Config, error) {
	k := koanf.New(".")

	if strings.TrimSpace(path) != "" {
		info, err := fs.Stat(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to stat config file: %w", err)
		}
		if info.Size() > maxConfigFileSize {
			return Config{}, fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileSize)
		}
		content, err := afero.ReadFile(fs, path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKeyValue), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func envKeyValue(key, value string) (string, any) {
	lower := strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower, value
	}
	name := parts[0] + "." + parts[1]
	if _, ok := listKeys[name]; ok {
		items := []string{}
		for _, item := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				items = append(items, trimmed)
			}
		}
		return name, items
	}
	return name, value
}
