package dgen

import "github.com/goliatone/go-dgen/internal/runtimeconfig"

var (
	ErrMarkdownPolicyInvalid      = runtimeconfig.ErrMarkdownPolicyInvalid
	ErrMarkdownConcurrencyInvalid = runtimeconfig.ErrMarkdownConcurrencyInvalid
	ErrMarkdownExtensionUnknown   = runtimeconfig.ErrMarkdownExtensionUnknown
	ErrScaffoldDirModeInvalid     = runtimeconfig.ErrScaffoldDirModeInvalid
	ErrTemplatesFileModeInvalid   = runtimeconfig.ErrTemplatesFileModeInvalid
	ErrLoggingProviderUnknown     = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid        = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid       = runtimeconfig.ErrLoggingFormatInvalid
	ErrCommandsTimeoutInvalid     = runtimeconfig.ErrCommandsTimeoutInvalid
	ErrCommandsRetriesInvalid     = runtimeconfig.ErrCommandsRetriesInvalid
)

type (
	Config               = runtimeconfig.Config
	MarkdownConfig       = runtimeconfig.MarkdownConfig
	MarkdownParserConfig = runtimeconfig.MarkdownParserConfig
	ScaffoldConfig       = runtimeconfig.ScaffoldConfig
	TemplatesConfig      = runtimeconfig.TemplatesConfig
	LoggingConfig        = runtimeconfig.LoggingConfig
	CommandsConfig       = runtimeconfig.CommandsConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a yaml config file and applies DGEN_ environment
// overrides. An empty path loads defaults plus environment overrides.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}
