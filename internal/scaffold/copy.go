package scaffold

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gobwas/glob"
	"github.com/spf13/afero"

	"github.com/goliatone/go-dgen/internal/logging"
)

// CopyDirOptions describes a recursive directory copy of
// SourceBaseDir/DirName into TargetBaseDir/DirName.
type CopyDirOptions struct {
	SourceBaseDir string
	TargetBaseDir string
	DirName       string
	// ForceDelete allows copying onto an existing target directory. Unless
	// PreserveFiles is set the existing target is removed first.
	ForceDelete bool
	// ExcludeHiddenUnix skips entries whose name starts with a dot.
	ExcludeHiddenUnix bool
	// PreserveFiles keeps files that already exist in the target.
	PreserveFiles bool
	// InflateSymlinks copies the content a symlink points to instead of
	// recreating the link.
	InflateSymlinks bool
	// Filter and Glob are matched against the slash separated path of each
	// file relative to the copied directory.
	Filter *regexp.Regexp
	Glob   string
	// Whitelist flips the filter polarity: only matching files are copied.
	// Without it matching files are excluded.
	Whitelist bool
}

type copyFilter struct {
	pattern   *regexp.Regexp
	glob      glob.Glob
	whitelist bool
}

func newCopyFilter(opts CopyDirOptions) (*copyFilter, error) {
	filter := &copyFilter{pattern: opts.Filter, whitelist: opts.Whitelist}
	if pattern := strings.TrimSpace(opts.Glob); pattern != "" {
		compiled, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("scaffold: compile glob %q: %w", pattern, err)
		}
		filter.glob = compiled
	}
	return filter, nil
}

func (f *copyFilter) active() bool {
	return f.pattern != nil || f.glob != nil
}

func (f *copyFilter) includes(rel string) bool {
	if !f.active() {
		return true
	}
	matched := (f.pattern != nil && f.pattern.MatchString(rel)) ||
		(f.glob != nil && f.glob.Match(rel))
	if f.whitelist {
		return matched
	}
	return !matched
}

// CopyDir recursively copies a directory according to opts.
func (s *Scaffolder) CopyDir(ctx context.Context, opts CopyDirOptions) error {
	source := filepath.Join(opts.SourceBaseDir, opts.DirName)
	target := filepath.Join(opts.TargetBaseDir, opts.DirName)
	logger := logging.WithCopyContext(logging.FromContext(s.logger, ctx), source, target, "copy_dir")

	info, err := s.fs.Stat(source)
	if err != nil {
		if isNotExist(err) {
			return fmt.Errorf("%w: %s", ErrSourceMissing, source)
		}
		return fmt.Errorf("scaffold: stat %s: %w", source, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrSourceNotDirectory, source)
	}

	filter, err := newCopyFilter(opts)
	if err != nil {
		return err
	}

	targetInfo, err := s.fs.Stat(target)
	switch {
	case err == nil && targetInfo.IsDir():
		if !opts.ForceDelete {
			return fmt.Errorf("%w: %s", ErrTargetExists, target)
		}
		if !opts.PreserveFiles {
			logger.Debug("scaffold.copy_dir.remove_target")
			if err := s.fs.RemoveAll(target); err != nil {
				return fmt.Errorf("scaffold: remove %s: %w", target, err)
			}
		}
	case err != nil && !isNotExist(err):
		return fmt.Errorf("scaffold: stat %s: %w", target, err)
	}

	logger.Info("scaffold.copy_dir.start")
	if err := s.copyTree(ctx, source, target, "", info.Mode().Perm(), opts, filter); err != nil {
		return err
	}
	logger.Info("scaffold.copy_dir.completed")
	return nil
}

func (s *Scaffolder) copyTree(ctx context.Context, source, target, rel string, mode os.FileMode, opts CopyDirOptions, filter *copyFilter) error {
	if err := s.fs.MkdirAll(target, mode|0o700); err != nil {
		return fmt.Errorf("scaffold: create %s: %w", target, err)
	}

	entries, err := afero.ReadDir(s.fs, source)
	if err != nil {
		return fmt.Errorf("scaffold: read dir %s: %w", source, err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		name := entry.Name()
		if opts.ExcludeHiddenUnix && strings.HasPrefix(name, ".") {
			continue
		}

		srcPath := filepath.Join(source, name)
		dstPath := filepath.Join(target, name)
		relPath := path.Join(rel, name)

		info := entry
		if info.Mode()&os.ModeSymlink != 0 {
			if !filter.includes(relPath) {
				continue
			}
			if !opts.InflateSymlinks {
				linked, err := s.copySymlink(srcPath, dstPath)
				if err != nil {
					return err
				}
				if linked {
					continue
				}
			}
			info, err = s.fs.Stat(srcPath)
			if err != nil {
				return fmt.Errorf("scaffold: follow symlink %s: %w", srcPath, err)
			}
		}

		if info.IsDir() {
			if err := s.copyTree(ctx, srcPath, dstPath, relPath, info.Mode().Perm(), opts, filter); err != nil {
				return err
			}
			continue
		}

		if !filter.includes(relPath) {
			continue
		}
		if opts.PreserveFiles {
			exists, err := s.exists(dstPath)
			if err != nil {
				return fmt.Errorf("scaffold: stat %s: %w", dstPath, err)
			}
			if exists {
				continue
			}
		}
		if err := s.copyFileContents(srcPath, dstPath, info.Mode().Perm()); err != nil {
			return err
		}
	}
	return nil
}

// copySymlink recreates the link at srcPath as dstPath. It reports false
// when the filesystem cannot read or create links so the caller can inflate.
func (s *Scaffolder) copySymlink(srcPath, dstPath string) (bool, error) {
	reader, ok := s.fs.(afero.LinkReader)
	if !ok {
		return false, nil
	}
	linker, ok := s.fs.(afero.Linker)
	if !ok {
		return false, nil
	}

	dest, err := reader.ReadlinkIfPossible(srcPath)
	if err != nil {
		if errors.Is(err, afero.ErrNoReadlink) {
			return false, nil
		}
		return false, fmt.Errorf("scaffold: read link %s: %w", srcPath, err)
	}
	if err := linker.SymlinkIfPossible(dest, dstPath); err != nil {
		if errors.Is(err, afero.ErrNoSymlink) {
			return false, nil
		}
		return false, fmt.Errorf("scaffold: symlink %s: %w", dstPath, err)
	}
	return true, nil
}

// CopyFile copies sourceBaseDir/fileName to targetBaseDir/fileName, creating
// missing target directories and keeping the source permission bits.
func (s *Scaffolder) CopyFile(ctx context.Context, fileName, sourceBaseDir, targetBaseDir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	source := filepath.Join(sourceBaseDir, fileName)
	target := filepath.Join(targetBaseDir, fileName)

	info, err := s.fs.Stat(source)
	if err != nil {
		if isNotExist(err) {
			return fmt.Errorf("%w: %s", ErrSourceMissing, source)
		}
		return fmt.Errorf("scaffold: stat %s: %w", source, err)
	}
	if info.IsDir() {
		return fmt.Errorf("scaffold: %s is a directory, use CopyDir", source)
	}

	if err := s.fs.MkdirAll(filepath.Dir(target), s.dirMode); err != nil {
		return fmt.Errorf("scaffold: create %s: %w", filepath.Dir(target), err)
	}
	if err := s.copyFileContents(source, target, info.Mode().Perm()); err != nil {
		return err
	}
	logging.WithCopyContext(logging.FromContext(s.logger, ctx), source, target, "copy_file").Info("scaffold.copy_file.completed")
	return nil
}

func (s *Scaffolder) copyFileContents(source, target string, mode os.FileMode) error {
	data, err := afero.ReadFile(s.fs, source)
	if err != nil {
		return fmt.Errorf("scaffold: read %s: %w", source, err)
	}
	if err := afero.WriteFile(s.fs, target, data, mode); err != nil {
		return fmt.Errorf("scaffold: write %s: %w", target, err)
	}
	return nil
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
