// Package testsupport holds filesystem fixture helpers shared by tests.
package testsupport

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/afero"
)

// WriteFiles seeds fs with files keyed by path. Parent directories are
// created as needed.
func WriteFiles(fs afero.Fs, files map[string]string) error {
	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		if err := afero.WriteFile(fs, path, []byte(files[path]), 0o644); err != nil {
			return fmt.Errorf("seed %s: %w", path, err)
		}
	}
	return nil
}

// LoadGolden decodes a JSON golden file into v.
func LoadGolden(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
