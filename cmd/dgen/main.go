// Command dgen scaffolds project trees, copies files, renders templates and
// converts markdown fields of data documents.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-command/dispatcher"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-dgen"
	"github.com/goliatone/go-dgen/cmd/dgen/internal/bootstrap"
	generatecmd "github.com/goliatone/go-dgen/internal/commands/generate"
)

var (
	version = "dev"

	moduleBuilder = bootstrap.BuildModule
)

type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:   "dgen",
		Short: "Project scaffolding and markdown document conversion",
		Long: `dgen creates directory trees, copies files and directories, renders
templates with partials and converts markdown fields of yaml, json, toml or
front matter documents into HTML.`,
		Version:      version,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to a yaml config file")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "go-logger output format (json, console, pretty)")

	root.AddCommand(
		newTreeCmd(flags),
		newCopyDirCmd(flags),
		newCopyFileCmd(flags),
		newRenderCmd(flags),
		newConvertCmd(flags),
	)
	return root
}

func (f *globalFlags) module(cmd *cobra.Command) (*dgen.Module, error) {
	module, err := moduleBuilder(bootstrap.Options{
		ConfigPath: f.configPath,
		LogLevel:   f.logLevel,
		LogFormat:  f.logFormat,
		LogWriter:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, fmt.Errorf("bootstrap module: %w", err)
	}
	return module, nil
}

// dispatch subscribes the module handlers for the duration of a single
// message so retries follow commands.max_retries.
func dispatch[T command.Message](ctx context.Context, module *dgen.Module, msg T) error {
	subs := module.Commands().Subscribe(module.Config().Commands.MaxRetries)
	defer func() {
		for _, sub := range subs {
			sub.Unsubscribe()
		}
	}()
	return dispatcher.Dispatch(ctx, msg)
}

func newTreeCmd(flags *globalFlags) *cobra.Command {
	var remove bool
	cmd := &cobra.Command{
		Use:   "tree <root> [dir...]",
		Short: "Create a directory tree",
		Long: `Create <root> and every listed directory below it, in order. Parents must
be listed before their children.

Examples:
  dgen tree out services services/monitoring services/monitoring/isAlive
  dgen tree --remove out services`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := flags.module(cmd)
			if err != nil {
				return err
			}
			msg := generatecmd.CreateTreeCommand{
				Root:          args[0],
				Tree:          args[1:],
				RemoveIfExist: remove,
			}
			if err := dispatch(cmd.Context(), module, msg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&remove, "remove", false, "remove an existing root before creating the tree")
	return cmd
}

func newCopyDirCmd(flags *globalFlags) *cobra.Command {
	var (
		force           bool
		excludeHidden   bool
		preserve        bool
		inflateSymlinks bool
		filter          string
		glob            string
		whitelist       bool
	)
	cmd := &cobra.Command{
		Use:   "copy-dir <source-base> <target-base> <dir>",
		Short: "Copy a directory recursively",
		Long: `Copy <source-base>/<dir> into <target-base>/<dir>. Filters match the slash
separated path relative to <dir>; by default matching files are skipped, with
--whitelist only matching files are copied.

Examples:
  dgen copy-dir templates out views --glob '*.tpl'
  dgen copy-dir templates out views --filter '\.html$' --whitelist --force`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := flags.module(cmd)
			if err != nil {
				return err
			}
			defaults := module.Config().Scaffold
			msg := generatecmd.CopyDirCommand{
				SourceBaseDir:     args[0],
				TargetBaseDir:     args[1],
				DirName:           args[2],
				ForceDelete:       force,
				ExcludeHiddenUnix: excludeHidden || defaults.ExcludeHiddenUnix,
				PreserveFiles:     preserve || defaults.PreserveFiles,
				InflateSymlinks:   inflateSymlinks || defaults.InflateSymlinks,
				Filter:            filter,
				Glob:              glob,
				Whitelist:         whitelist,
			}
			if err := dispatch(cmd.Context(), module, msg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "copied %s\n", args[2])
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "copy onto an existing target directory")
	cmd.Flags().BoolVar(&excludeHidden, "exclude-hidden", false, "skip dot files and directories")
	cmd.Flags().BoolVar(&preserve, "preserve", false, "keep files that already exist in the target")
	cmd.Flags().BoolVar(&inflateSymlinks, "inflate-symlinks", false, "copy symlink targets instead of the links")
	cmd.Flags().StringVar(&filter, "filter", "", "regular expression matched against relative paths")
	cmd.Flags().StringVar(&glob, "glob", "", "glob pattern matched against relative paths")
	cmd.Flags().BoolVar(&whitelist, "whitelist", false, "copy only files matching the filter or glob")
	return cmd
}

func newCopyFileCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "copy-file <file> <source-base> <target-base>",
		Short: "Copy a single file",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := flags.module(cmd)
			if err != nil {
				return err
			}
			msg := generatecmd.CopyFileCommand{
				FileName:      args[0],
				SourceBaseDir: args[1],
				TargetBaseDir: args[2],
			}
			if err := dispatch(cmd.Context(), module, msg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "copied %s\n", args[0])
			return nil
		},
	}
}

func newRenderCmd(flags *globalFlags) *cobra.Command {
	var (
		sourceDir   string
		targetDir   string
		target      string
		partialsDir string
		dataFiles   []string
	)
	cmd := &cobra.Command{
		Use:   "render <template>",
		Short: "Render a template file",
		Long: `Render <source>/<template> with the merged data files and write the result
to <target-dir>/<target>. Every file in the partials directory is available
as a named template.

Examples:
  dgen render service.tpl --source templates --target-dir out --data service.yml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := flags.module(cmd)
			if err != nil {
				return err
			}
			data := map[string]any{}
			if len(dataFiles) > 0 {
				if data, err = module.LoadData(dataFiles...); err != nil {
					return err
				}
			}
			if partialsDir == "" {
				partialsDir = module.Config().Templates.PartialsDir
			}

			var written string
			msg := generatecmd.ProcessTemplateCommand{
				Data:           data,
				SourceBaseDir:  sourceDir,
				Template:       args[0],
				TargetBaseDir:  targetDir,
				Target:         target,
				PartialsDir:    partialsDir,
				ResultCallback: func(path string) { written = path },
			}
			if err := dispatch(cmd.Context(), module, msg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rendered %s\n", written)
			return nil
		},
	}
	cmd.Flags().StringVar(&sourceDir, "source", ".", "directory holding the template")
	cmd.Flags().StringVar(&targetDir, "target-dir", ".", "directory the output is written to")
	cmd.Flags().StringVar(&target, "target", "", "output file name (defaults to the template name)")
	cmd.Flags().StringVar(&partialsDir, "partials", "", "directory holding partials (defaults to --source)")
	cmd.Flags().StringSliceVar(&dataFiles, "data", nil, "data files merged in order (yaml, json, toml, md)")
	return cmd
}

func newConvertCmd(flags *globalFlags) *cobra.Command {
	var (
		fields     string
		schemaPath string
		format     string
		output     string
	)
	cmd := &cobra.Command{
		Use:   "convert <data-file...>",
		Short: "Convert markdown fields of data documents",
		Long: `Merge the data files in order, optionally validate the result against a
schema and render every field whose name is listed in --fields (or the
configured markdown.fields) from markdown to HTML, at any nesting depth.

Examples:
  dgen convert service.yml
  dgen convert service.yml --fields description,summary --format yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(strings.TrimSpace(format))
			if format != "json" && format != "yaml" {
				return fmt.Errorf("unsupported output format %q", format)
			}
			module, err := flags.module(cmd)
			if err != nil {
				return err
			}

			var converted map[string]any
			msg := generatecmd.ConvertMarkdownCommand{
				DataFiles:      args,
				Fields:         bootstrap.SplitList(fields),
				SchemaPath:     schemaPath,
				ResultCallback: func(doc map[string]any) { converted = doc },
			}
			if err := dispatch(cmd.Context(), module, msg); err != nil {
				return err
			}

			if output != "" {
				return writeDocumentFile(module.Fs(), output, converted, format)
			}
			return writeDocument(cmd.OutOrStdout(), converted, format)
		},
	}
	cmd.Flags().StringVar(&fields, "fields", "", "comma separated field names to convert")
	cmd.Flags().StringVar(&schemaPath, "schema", "", "schema file validated before conversion")
	cmd.Flags().StringVar(&format, "format", "json", "output format (json, yaml)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the document to a file instead of stdout")
	return cmd
}

func writeDocumentFile(fs afero.Fs, path string, doc map[string]any, format string) (err error) {
	file, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()
	return writeDocument(file, doc, format)
}

func writeDocument(out io.Writer, doc map[string]any, format string) error {
	if format == "yaml" {
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		if err := encoder.Encode(doc); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return encoder.Close()
	}
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
