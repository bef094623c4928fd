// Package console writes generator log entries as single key=value lines.
// It is the default provider and the one the dgen CLI points at stderr.
package console

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-dgen/internal/runtimeconfig"
	"github.com/goliatone/go-dgen/pkg/interfaces"
)

type level uint8

const (
	levelTrace level = iota
	levelDebug
	levelInfo
	levelWarn
	levelError
	levelFatal
)

var levelLabels = [...]string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

func parseLevel(name string) level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "warn", "warning":
		return levelWarn
	case "error":
		return levelError
	case "fatal":
		return levelFatal
	default:
		return levelInfo
	}
}

// Options configures the console provider. Config.Level sets the minimum
// severity (info when blank) and Config.Focus, when set, limits output to
// loggers whose module name starts with one of the entries.
type Options struct {
	Writer   io.Writer
	TimeFunc func() time.Time
	Config   runtimeconfig.LoggingConfig
}

type provider struct {
	writer   io.Writer
	clock    func() time.Time
	minLevel level
	focus    []string
	mu       sync.Mutex
}

// NewProvider returns a provider writing to opts.Writer, or stdout.
func NewProvider(opts Options) interfaces.LoggerProvider {
	p := &provider{
		writer:   opts.Writer,
		clock:    opts.TimeFunc,
		minLevel: parseLevel(opts.Config.Level),
	}
	if p.writer == nil {
		p.writer = os.Stdout
	}
	if p.clock == nil {
		p.clock = time.Now
	}
	for _, name := range opts.Config.Focus {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			p.focus = append(p.focus, trimmed)
		}
	}
	return p
}

func (p *provider) GetLogger(name string) interfaces.Logger {
	return &logger{
		provider: p,
		muted:    !p.focused(name),
		fields:   map[string]any{"logger": name},
	}
}

func (p *provider) focused(name string) bool {
	if len(p.focus) == 0 {
		return true
	}
	for _, prefix := range p.focus {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

type logger struct {
	provider *provider
	muted    bool
	fields   map[string]any
}

var (
	_ interfaces.Logger       = (*logger)(nil)
	_ interfaces.FieldsLogger = (*logger)(nil)
)

func (l *logger) Trace(msg string, args ...any) { l.log(levelTrace, msg, args) }
func (l *logger) Debug(msg string, args ...any) { l.log(levelDebug, msg, args) }
func (l *logger) Info(msg string, args ...any)  { l.log(levelInfo, msg, args) }
func (l *logger) Warn(msg string, args ...any)  { l.log(levelWarn, msg, args) }
func (l *logger) Error(msg string, args ...any) { l.log(levelError, msg, args) }

func (l *logger) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}
	merged := maps.Clone(l.fields)
	maps.Copy(merged, fields)
	return &logger{provider: l.provider, muted: l.muted, fields: merged}
}

// WithContext returns l. Context fields reach entries through
// logging.FromContext.
func (l *logger) WithContext(context.Context) interfaces.Logger {
	return l
}

func (l *logger) log(lvl level, msg string, args []any) {
	if l.muted || lvl < l.provider.minLevel {
		return
	}
	fields := maps.Clone(l.fields)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok || key == "" {
			key = "field_" + strconv.Itoa(i/2)
		}
		if i+1 == len(args) {
			fields[key] = nil
			break
		}
		fields[key] = args[i+1]
	}

	line := formatEntry(l.provider.clock().UTC(), levelLabels[lvl], msg, fields)

	l.provider.mu.Lock()
	defer l.provider.mu.Unlock()
	_, _ = io.WriteString(l.provider.writer, line+"\n")
}

func formatEntry(ts time.Time, label, msg string, fields map[string]any) string {
	var b strings.Builder
	b.WriteString(ts.Format(time.RFC3339Nano))
	b.WriteByte(' ')
	b.WriteString(label)
	b.WriteByte(' ')
	b.WriteString(msg)
	for _, key := range slices.Sorted(maps.Keys(fields)) {
		b.WriteByte(' ')
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(formatValue(fields[key]))
	}
	return b.String()
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return quoteIfNeeded(v)
	case error:
		return quoteIfNeeded(v.Error())
	case time.Duration:
		return v.String()
	default:
		return quoteIfNeeded(fmt.Sprint(v))
	}
}

func quoteIfNeeded(value string) string {
	if value == "" {
		return `""`
	}
	if strings.ContainsFunc(value, func(r rune) bool { return r <= 0x20 || r == '=' }) {
		return strconv.Quote(value)
	}
	return value
}
