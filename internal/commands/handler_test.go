package commands

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-dgen/pkg/interfaces"
)

type testMessage struct {
	Path string
}

func (testMessage) Type() string { return "dgen.test.message" }

func (testMessage) Validate() error { return nil }

type invalidMessage struct{}

func (invalidMessage) Type() string { return "dgen.test.invalid" }

func (invalidMessage) Validate() error {
	return errors.New("invalid")
}

type fieldsLogger struct {
	mu     sync.Mutex
	fields map[string]any
	infos  []string
	errors []string
}

var _ interfaces.Logger = (*fieldsLogger)(nil)

func (l *fieldsLogger) Trace(string, ...any) {}
func (l *fieldsLogger) Debug(string, ...any) {}
func (l *fieldsLogger) Info(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, msg)
}
func (l *fieldsLogger) Warn(string, ...any) {}
func (l *fieldsLogger) Error(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

func (l *fieldsLogger) WithFields(fields map[string]any) interfaces.Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fields == nil {
		l.fields = map[string]any{}
	}
	for k, v := range fields {
		l.fields[k] = v
	}
	return l
}

func (l *fieldsLogger) WithContext(context.Context) interfaces.Logger { return l }

func TestHandlerExecuteSuccess(t *testing.T) {
	called := false
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		called = true
		return nil
	})

	if err := h.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !called {
		t.Fatal("expected handler to be invoked")
	}
}

func TestHandlerValidationShortCircuitsExecution(t *testing.T) {
	called := false
	h := NewHandler[invalidMessage](func(ctx context.Context, msg invalidMessage) error {
		called = true
		return nil
	})

	err := h.Execute(context.Background(), invalidMessage{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when validation fails")
	}
}

func TestHandlerContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		called = true
		return nil
	})

	err := h.Execute(ctx, testMessage{})
	if err == nil {
		t.Fatal("expected context cancellation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when context is cancelled")
	}
}

func TestHandlerWrapsExecutionError(t *testing.T) {
	execErr := errors.New("boom")
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		return execErr
	})

	err := h.Execute(context.Background(), testMessage{})
	if err == nil {
		t.Fatal("expected wrapped execution error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if !errors.Is(err, execErr) {
		t.Fatalf("expected original error to stay reachable, got %v", err)
	}
}

func TestHandlerHonoursTimeoutOption(t *testing.T) {
	var status TelemetryStatus
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
			return nil
		}
	},
		WithTimeout[testMessage](10*time.Millisecond),
		WithTelemetry(func(_ context.Context, _ testMessage, info TelemetryInfo) {
			status = info.Status
		}),
	)

	err := h.Execute(context.Background(), testMessage{})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category for timeout, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if status != TelemetryStatusContextError {
		t.Fatalf("expected context_error status, got %s", status)
	}
}

func TestHandlerAttachesRunIDAndMessageFields(t *testing.T) {
	logger := &fieldsLogger{}
	var seenRunID string
	var info TelemetryInfo

	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		seenRunID = RunID(ctx)
		return nil
	},
		WithLogger[testMessage](logger),
		WithOperation[testMessage]("scaffold.tree"),
		WithMessageFields(func(msg testMessage) map[string]any {
			return map[string]any{"path": msg.Path}
		}),
		WithTelemetry(func(_ context.Context, _ testMessage, got TelemetryInfo) {
			info = got
		}),
	)

	if err := h.Execute(context.Background(), testMessage{Path: "services"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if seenRunID == "" {
		t.Fatal("expected run id on the context")
	}
	if info.RunID != seenRunID || info.Fields["run_id"] != seenRunID {
		t.Fatalf("expected telemetry run id %s, got %+v", seenRunID, info)
	}
	if info.Fields["path"] != "services" || info.Fields["operation"] != "scaffold.tree" || info.Fields["command"] != "dgen.test.message" {
		t.Fatalf("unexpected telemetry fields %+v", info.Fields)
	}
	if info.Status != TelemetryStatusSuccess {
		t.Fatalf("expected success status, got %s", info.Status)
	}
	if logger.fields["path"] != "services" {
		t.Fatalf("expected logger fields to include message fields, got %+v", logger.fields)
	}

	var second string
	h2 := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		second = RunID(ctx)
		return nil
	})
	if err := h2.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if second == "" || second == seenRunID {
		t.Fatalf("expected a fresh run id per execution, got %q and %q", seenRunID, second)
	}
}

func TestDefaultTelemetryLogsOutcome(t *testing.T) {
	logger := &fieldsLogger{}
	telemetry := DefaultTelemetry[testMessage](logger)

	telemetry(context.Background(), testMessage{}, TelemetryInfo{Status: TelemetryStatusSuccess, Fields: map[string]any{"run_id": "abc"}})
	telemetry(context.Background(), testMessage{}, TelemetryInfo{Status: TelemetryStatusFailed, Error: errors.New("x")})
	telemetry(context.Background(), testMessage{}, TelemetryInfo{Status: TelemetryStatusContextError, Error: context.Canceled})

	if len(logger.infos) != 1 || logger.infos[0] != "command.execute.success" {
		t.Fatalf("unexpected info entries %v", logger.infos)
	}
	if len(logger.errors) != 2 || logger.errors[0] != "command.execute.failed" || logger.errors[1] != "command.execute.context_error" {
		t.Fatalf("unexpected error entries %v", logger.errors)
	}
	if logger.fields["run_id"] != "abc" {
		t.Fatalf("expected telemetry fields applied, got %+v", logger.fields)
	}
}

func TestCommandLoggerScopesModule(t *testing.T) {
	logger := CommandLogger(nil, " generate ")
	if logger == nil {
		t.Fatal("expected logger")
	}
	if RunID(context.Background()) != "" {
		t.Fatal("expected empty run id without handler context")
	}
}

func TestStartRunDerivesContext(t *testing.T) {
	var parent context.Context
	ctx, cancel, runID := startRun(parent, 0)
	defer cancel()
	if ctx == nil || runID == "" {
		t.Fatalf("expected context and run id, got %v %q", ctx, runID)
	}
	if _, ok := ctx.Deadline(); ok {
		t.Fatal("expected no deadline without a timeout")
	}
	if RunID(ctx) != runID {
		t.Fatalf("expected run id %q on context, got %q", runID, RunID(ctx))
	}

	bounded, cancelBounded, _ := startRun(context.Background(), time.Minute)
	defer cancelBounded()
	if _, ok := bounded.Deadline(); !ok {
		t.Fatal("expected deadline for positive timeout")
	}
}
