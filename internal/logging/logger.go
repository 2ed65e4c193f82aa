// Package logging wraps zerolog with subsystem-scoped child loggers.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger carries a zerolog logger tagged with its subsystem path.
type Logger struct {
	base      zerolog.Logger // without the subsystem field
	zl        zerolog.Logger
	subsystem string
}

// Options selects the level, output style and destination of a root logger.
type Options struct {
	Level string    // trace|debug|info|warn|error|fatal|silent
	Style string    // pretty|json
	Out   io.Writer // defaults to stderr
}

// New creates a root logger writing to w at the given level.
// A nil w means pretty console output on stderr.
func New(w io.Writer, level string) *Logger {
	if w == nil {
		return NewWithOptions(Options{Level: level, Style: "pretty"})
	}
	return NewWithOptions(Options{Level: level, Style: "json", Out: w})
}

// NewWithOptions creates a root logger from explicit options.
func NewWithOptions(opts Options) *Logger {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	if opts.Style != "json" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	zl := zerolog.New(out).With().Timestamp().Logger().Level(parseLevel(opts.Level))
	return &Logger{base: zl, zl: zl}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{base: zerolog.Nop(), zl: zerolog.Nop()}
}

// Sub returns a child logger. Nested subsystems are joined with dots.
func (l *Logger) Sub(subsystem string) *Logger {
	if l.subsystem != "" {
		subsystem = l.subsystem + "." + subsystem
	}
	return newScoped(l.base, subsystem)
}

// With returns a child logger carrying an extra string field.
func (l *Logger) With(key, value string) *Logger {
	return newScoped(l.base.With().Str(key, value).Logger(), l.subsystem)
}

func newScoped(base zerolog.Logger, subsystem string) *Logger {
	zl := base
	if subsystem != "" {
		zl = base.With().Str("subsystem", subsystem).Logger()
	}
	return &Logger{base: base, zl: zl, subsystem: subsystem}
}

func (l *Logger) Trace() *zerolog.Event { return l.zl.Trace() }
func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }

// Zerolog returns the underlying zerolog.Logger for advanced use.
func (l *Logger) Zerolog() zerolog.Logger { return l.zl }

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(s) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "silent":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
