package commands

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-dgen/internal/logging"
	"github.com/goliatone/go-dgen/pkg/interfaces"
)

// EnsureLogger returns logger, or a no-op logger when it is nil.
func EnsureLogger(logger interfaces.Logger) interfaces.Logger {
	if logger == nil {
		return logging.NoOp()
	}
	return logger
}

// startRun derives the context one command execution runs in. A nil ctx
// becomes context.Background, a positive timeout bounds the run, and a fresh
// run_id is attached so scaffold, template and markdown entries logged under
// the returned context can be correlated with the command.
func startRun(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc, string) {
	if ctx == nil {
		ctx = context.Background()
	}
	cancel := context.CancelFunc(func() {})
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	}
	runID := uuid.NewString()
	return logging.ContextWithRunID(ctx, runID), cancel, runID
}
