package scaffold

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-dgen/internal/logging"
)

// CreateDirectoryTree creates rootDir and then every entry of tree, in order,
// relative to it. Entries are created one level at a time, so parents must be
// listed before their children.
//
// When rootDir already exists the call reports false and leaves the
// filesystem untouched unless removeIfExist is set, in which case the
// existing root is removed recursively before the tree is recreated.
func (s *Scaffolder) CreateDirectoryTree(ctx context.Context, rootDir string, tree []string, removeIfExist bool) (bool, error) {
	if strings.TrimSpace(rootDir) == "" {
		return false, ErrRootRequired
	}
	root := filepath.Clean(rootDir)
	logger := logging.FromContext(s.logger, ctx)

	exists, err := s.exists(root)
	if err != nil {
		return false, fmt.Errorf("scaffold: stat %s: %w", root, err)
	}
	if exists {
		logger.Warn("scaffold.tree.exists", "path", root, "remove", removeIfExist)
		if !removeIfExist {
			return false, nil
		}
		logger.Info("scaffold.tree.remove", "path", root)
		if err := s.fs.RemoveAll(root); err != nil {
			return false, fmt.Errorf("scaffold: remove %s: %w", root, err)
		}
	}

	if err := s.fs.MkdirAll(root, s.dirMode); err != nil {
		return false, fmt.Errorf("scaffold: create root %s: %w", root, err)
	}

	for _, dir := range tree {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		target := filepath.Join(root, filepath.FromSlash(dir))
		if err := s.fs.Mkdir(target, s.dirMode); err != nil {
			return false, fmt.Errorf("scaffold: create %s: %w", target, err)
		}
		logger.Info("scaffold.directory.created", "path", target)
	}
	return true, nil
}

func (s *Scaffolder) exists(path string) (bool, error) {
	_, err := s.fs.Stat(path)
	if err == nil {
		return true, nil
	}
	if isNotExist(err) {
		return false, nil
	}
	return false, err
}
