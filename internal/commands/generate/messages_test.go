package generatecmd

import (
	"testing"

	command "github.com/goliatone/go-command"
)

func TestMessageTypes(t *testing.T) {
	cases := []struct {
		msg  command.Message
		want string
	}{
		{CreateTreeCommand{}, "dgen.scaffold.create_tree"},
		{CopyDirCommand{}, "dgen.scaffold.copy_dir"},
		{CopyFileCommand{}, "dgen.scaffold.copy_file"},
		{ProcessTemplateCommand{}, "dgen.templates.process"},
		{ConvertMarkdownCommand{}, "dgen.markdown.convert"},
	}
	for _, tc := range cases {
		if got := tc.msg.Type(); got != tc.want {
			t.Fatalf("expected type %q, got %q", tc.want, got)
		}
	}
}

func TestMessageValidation(t *testing.T) {
	cases := []struct {
		name    string
		msg     interface{ Validate() error }
		wantErr bool
	}{
		{"tree valid", CreateTreeCommand{Root: "project", Tree: []string{"src"}}, false},
		{"tree without entries", CreateTreeCommand{Root: "project"}, false},
		{"tree missing root", CreateTreeCommand{Tree: []string{"src"}}, true},
		{"tree blank root", CreateTreeCommand{Root: "  "}, true},
		{"tree blank entry", CreateTreeCommand{Root: "project", Tree: []string{"src", " "}}, true},
		{"copy dir valid", CopyDirCommand{SourceBaseDir: "a", TargetBaseDir: "b", DirName: "views", Filter: `\.tpl$`, Glob: "**/*.html"}, false},
		{"copy dir missing source", CopyDirCommand{TargetBaseDir: "b", DirName: "views"}, true},
		{"copy dir missing dir name", CopyDirCommand{SourceBaseDir: "a", TargetBaseDir: "b"}, true},
		{"copy dir bad filter", CopyDirCommand{SourceBaseDir: "a", TargetBaseDir: "b", DirName: "views", Filter: "(unclosed"}, true},
		{"copy file valid", CopyFileCommand{FileName: "a.txt", SourceBaseDir: "a", TargetBaseDir: "b"}, false},
		{"copy file missing name", CopyFileCommand{SourceBaseDir: "a", TargetBaseDir: "b"}, true},
		{"template valid", ProcessTemplateCommand{Template: "index.tpl", TargetBaseDir: "out"}, false},
		{"template missing target dir", ProcessTemplateCommand{Template: "index.tpl"}, true},
		{"template missing template", ProcessTemplateCommand{TargetBaseDir: "out"}, true},
		{"convert document", ConvertMarkdownCommand{Document: map[string]any{}}, false},
		{"convert data files", ConvertMarkdownCommand{DataFiles: []string{"service.yml"}}, false},
		{"convert without source", ConvertMarkdownCommand{}, true},
		{"convert blank data file", ConvertMarkdownCommand{DataFiles: []string{""}}, true},
		{"convert blank field", ConvertMarkdownCommand{Document: map[string]any{}, Fields: []string{"description", ""}}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.msg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}
