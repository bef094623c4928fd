// Package scaffold creates project directory trees and copies files and
// directories on top of an afero filesystem.
package scaffold

import (
	"errors"
	"os"

	"github.com/spf13/afero"

	"github.com/goliatone/go-dgen/internal/logging"
	"github.com/goliatone/go-dgen/pkg/interfaces"
)

const (
	defaultDirMode os.FileMode = 0o755
)

var (
	// ErrSourceMissing is returned when the copy source cannot be found.
	ErrSourceMissing = errors.New("scaffold: source does not exist")
	// ErrSourceNotDirectory is returned when CopyDir is pointed at a file.
	ErrSourceNotDirectory = errors.New("scaffold: source is not a directory")
	// ErrTargetExists is returned when a copy target directory exists and
	// ForceDelete was not requested.
	ErrTargetExists = errors.New("scaffold: target directory already exists")
	// ErrRootRequired is returned when CreateDirectoryTree gets an empty root.
	ErrRootRequired = errors.New("scaffold: root directory is required")
)

// Scaffolder performs directory and file scaffolding against an afero.Fs.
// It is safe for concurrent use on disjoint paths.
type Scaffolder struct {
	fs      afero.Fs
	logger  interfaces.Logger
	dirMode os.FileMode
}

// Option configures a Scaffolder.
type Option func(*Scaffolder)

// WithLogger injects the logger used for progress output.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Scaffolder) {
		if logger == nil {
			logger = logging.NoOp()
		}
		s.logger = logger
	}
}

// WithDirMode overrides the permission bits used for created directories.
func WithDirMode(mode os.FileMode) Option {
	return func(s *Scaffolder) {
		if mode != 0 {
			s.dirMode = mode
		}
	}
}

// New returns a Scaffolder bound to filesystem. A nil filesystem uses the
// host OS filesystem.
func New(filesystem afero.Fs, opts ...Option) *Scaffolder {
	if filesystem == nil {
		filesystem = afero.NewOsFs()
	}
	s := &Scaffolder{
		fs:      filesystem,
		logger:  logging.NoOp(),
		dirMode: defaultDirMode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fs returns the underlying filesystem.
func (s *Scaffolder) Fs() afero.Fs {
	return s.fs
}
