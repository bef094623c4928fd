package templates

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
)

// LoadPartials reads every regular file below dir and keys its content by the
// base filename. When two files share a base name the one visited last in
// lexical walk order wins.
func LoadPartials(fs afero.Fs, dir string) (map[string]string, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	partials := map[string]string{}
	err := afero.Walk(fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		content, err := afero.ReadFile(fs, path)
		if err != nil {
			return err
		}
		partials[filepath.Base(path)] = string(content)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("templates: load partials from %s: %w", dir, err)
	}
	return partials, nil
}

func sortedNames(partials map[string]string) []string {
	names := make([]string, 0, len(partials))
	for name := range partials {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
