package generatecmd

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gobwas/glob"
)

const (
	createTreeMessageType      = "dgen.scaffold.create_tree"
	copyDirMessageType         = "dgen.scaffold.copy_dir"
	copyFileMessageType        = "dgen.scaffold.copy_file"
	processTemplateMessageType = "dgen.templates.process"
	convertMarkdownMessageType = "dgen.markdown.convert"
)

// CreateTreeCommand creates Root and every Tree entry below it.
type CreateTreeCommand struct {
	// Root is the directory that holds the tree.
	Root string `json:"root"`
	// Tree lists directories relative to Root; parents must precede children.
	Tree []string `json:"tree"`
	// RemoveIfExist removes an existing Root before recreating the tree.
	RemoveIfExist bool `json:"remove_if_exist,omitempty"`
}

// Type implements command.Message.
func (CreateTreeCommand) Type() string { return createTreeMessageType }

// Validate ensures a root is present and no tree entry is blank.
func (cmd CreateTreeCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Root, validation.Required, validation.By(notBlank("dgen.scaffold.create_tree.root_required", "root is required"))),
		validation.Field(&cmd.Tree, validation.By(func(value any) error {
			for _, entry := range value.([]string) {
				if strings.TrimSpace(entry) == "" {
					return validation.NewError("dgen.scaffold.create_tree.entry_blank", "tree entries must not be blank")
				}
			}
			return nil
		})),
	)
}

// CopyDirCommand copies SourceBaseDir/DirName to TargetBaseDir/DirName.
type CopyDirCommand struct {
	SourceBaseDir     string `json:"source_base_dir"`
	TargetBaseDir     string `json:"target_base_dir"`
	DirName           string `json:"dir_name"`
	ForceDelete       bool   `json:"force_delete,omitempty"`
	ExcludeHiddenUnix bool   `json:"exclude_hidden_unix,omitempty"`
	PreserveFiles     bool   `json:"preserve_files,omitempty"`
	InflateSymlinks   bool   `json:"inflate_symlinks,omitempty"`
	// Filter is a regular expression matched against relative file paths.
	Filter string `json:"filter,omitempty"`
	// Glob is a glob pattern matched against relative file paths.
	Glob      string `json:"glob,omitempty"`
	Whitelist bool   `json:"whitelist,omitempty"`
}

// Type implements command.Message.
func (CopyDirCommand) Type() string { return copyDirMessageType }

// Validate ensures the paths are present and the filters compile.
func (cmd CopyDirCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.SourceBaseDir, validation.Required),
		validation.Field(&cmd.TargetBaseDir, validation.Required),
		validation.Field(&cmd.DirName, validation.Required, validation.By(notBlank("dgen.scaffold.copy_dir.dir_name_required", "dir name is required"))),
		validation.Field(&cmd.Filter, validation.By(func(value any) error {
			pattern := value.(string)
			if pattern == "" {
				return nil
			}
			if _, err := regexp.Compile(pattern); err != nil {
				return validation.NewError("dgen.scaffold.copy_dir.filter_invalid", "filter must be a valid regular expression")
			}
			return nil
		})),
		validation.Field(&cmd.Glob, validation.By(func(value any) error {
			pattern := strings.TrimSpace(value.(string))
			if pattern == "" {
				return nil
			}
			if _, err := glob.Compile(pattern); err != nil {
				return validation.NewError("dgen.scaffold.copy_dir.glob_invalid", "glob must be a valid pattern")
			}
			return nil
		})),
	)
}

// CopyFileCommand copies SourceBaseDir/FileName to TargetBaseDir/FileName.
type CopyFileCommand struct {
	FileName      string `json:"file_name"`
	SourceBaseDir string `json:"source_base_dir"`
	TargetBaseDir string `json:"target_base_dir"`
}

// Type implements command.Message.
func (CopyFileCommand) Type() string { return copyFileMessageType }

// Validate ensures all paths are present.
func (cmd CopyFileCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.FileName, validation.Required, validation.By(notBlank("dgen.scaffold.copy_file.file_name_required", "file name is required"))),
		validation.Field(&cmd.SourceBaseDir, validation.Required),
		validation.Field(&cmd.TargetBaseDir, validation.Required),
	)
}

// TemplateResultCallback receives the path a template was written to.
type TemplateResultCallback func(target string)

// ProcessTemplateCommand renders a template file with Data.
type ProcessTemplateCommand struct {
	Data          map[string]any `json:"data,omitempty"`
	SourceBaseDir string         `json:"source_base_dir"`
	Template      string         `json:"template"`
	TargetBaseDir string         `json:"target_base_dir"`
	// Target defaults to Template.
	Target         string                 `json:"target,omitempty"`
	PartialsDir    string                 `json:"partials_dir,omitempty"`
	ResultCallback TemplateResultCallback `json:"-"`
}

// Type implements command.Message.
func (ProcessTemplateCommand) Type() string { return processTemplateMessageType }

// Validate ensures the template and target locations are present.
func (cmd ProcessTemplateCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Template, validation.Required, validation.By(notBlank("dgen.templates.process.template_required", "template is required"))),
		validation.Field(&cmd.TargetBaseDir, validation.Required),
	)
}

// DocumentResultCallback receives a converted document.
type DocumentResultCallback func(doc map[string]any)

// ConvertMarkdownCommand converts markdown fields of Document, or of the
// merged DataFiles when Document is nil.
type ConvertMarkdownCommand struct {
	Document  map[string]any `json:"document,omitempty"`
	DataFiles []string       `json:"data_files,omitempty"`
	// Fields defaults to the configured field list.
	Fields []string `json:"fields,omitempty"`
	// SchemaPath validates the source document before conversion.
	SchemaPath     string                 `json:"schema_path,omitempty"`
	ResultCallback DocumentResultCallback `json:"-"`
}

// Type implements command.Message.
func (ConvertMarkdownCommand) Type() string { return convertMarkdownMessageType }

// Validate ensures a document source is present.
func (cmd ConvertMarkdownCommand) Validate() error {
	errs := validation.Errors{}
	if cmd.Document == nil && len(cmd.DataFiles) == 0 {
		errs["document"] = validation.NewError("dgen.markdown.convert.source_required", "document or data_files is required")
	}
	for _, path := range cmd.DataFiles {
		if strings.TrimSpace(path) == "" {
			errs["data_files"] = validation.NewError("dgen.markdown.convert.data_file_blank", "data_files must not contain empty values")
			break
		}
	}
	for _, field := range cmd.Fields {
		if strings.TrimSpace(field) == "" {
			errs["fields"] = validation.NewError("dgen.markdown.convert.field_blank", "fields must not contain empty values")
			break
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func notBlank(code, message string) validation.RuleFunc {
	return func(value any) error {
		if strings.TrimSpace(value.(string)) == "" {
			return validation.NewError(code, message)
		}
		return nil
	}
}
