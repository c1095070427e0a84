// Package vastlog is the engine's structured logging layer, modeled on
// the teacher's own log package: a level-leveled Logger interface over
// key/value context pairs, a Handler abstraction so the same call site
// can fan out to a colored terminal stream and a rotating file, and a
// package-level root logger convention (vastlog.Info instead of every
// caller constructing its own logger).
package vastlog

import (
	"context"
	"time"
)

// Level is a log severity, ordered least to most severe.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelCrit
)

func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "trace"
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelCrit:
		return "crit"
	default:
		return "unknown"
	}
}

// Record is a single log event passed to a Handler.
type Record struct {
	Time    time.Time
	Level   Level
	Msg     string
	Ctx     []any // alternating key, value pairs
	Logger  string
}

// Handler processes a Record, e.g. by formatting and writing it.
type Handler interface {
	Log(r Record) error
}

// Logger is the engine-wide logging interface: each method takes a
// message and an even-length list of key/value context pairs, mirroring
// the teacher's own Logger.
type Logger interface {
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Crit(msg string, ctx ...any) // Crit also panics with msg after logging.

	// With returns a Logger that prepends ctx to every record it logs.
	With(ctx ...any) Logger
}

type logger struct {
	name    string
	ctx     []any
	handler Handler
}

// New returns a Logger named name, writing through handler, with an
// initial context.
func New(name string, handler Handler, ctx ...any) Logger {
	return &logger{name: name, handler: handler, ctx: ctx}
}

func (l *logger) log(level Level, msg string, ctx []any) {
	all := make([]any, 0, len(l.ctx)+len(ctx))
	all = append(all, l.ctx...)
	all = append(all, ctx...)
	_ = l.handler.Log(Record{Time: time.Now(), Level: level, Msg: msg, Ctx: all, Logger: l.name})
}

func (l *logger) Trace(msg string, ctx ...any) { l.log(LevelTrace, msg, ctx) }
func (l *logger) Debug(msg string, ctx ...any) { l.log(LevelDebug, msg, ctx) }
func (l *logger) Info(msg string, ctx ...any)  { l.log(LevelInfo, msg, ctx) }
func (l *logger) Warn(msg string, ctx ...any)  { l.log(LevelWarn, msg, ctx) }
func (l *logger) Error(msg string, ctx ...any) { l.log(LevelError, msg, ctx) }
func (l *logger) Crit(msg string, ctx ...any) {
	l.log(LevelCrit, msg, ctx)
	panic(msg)
}

func (l *logger) With(ctx ...any) Logger {
	merged := make([]any, 0, len(l.ctx)+len(ctx))
	merged = append(merged, l.ctx...)
	merged = append(merged, ctx...)
	return &logger{name: l.name, handler: l.handler, ctx: merged}
}

var root Logger = New("vast", NewTerminalHandler(LevelInfo))

// Root returns the process-wide default logger.
func Root() Logger { return root }

// SetDefault replaces the process-wide default logger.
func SetDefault(l Logger) { root = l }

func Trace(msg string, ctx ...any) { root.Trace(msg, ctx...) }
func Debug(msg string, ctx ...any) { root.Debug(msg, ctx...) }
func Info(msg string, ctx ...any)  { root.Info(msg, ctx...) }
func Warn(msg string, ctx ...any)  { root.Warn(msg, ctx...) }
func Error(msg string, ctx ...any) { root.Error(msg, ctx...) }
func Crit(msg string, ctx ...any)  { root.Crit(msg, ctx...) }

// ctxKey lets a Logger ride along on a context.Context, the way the
// teacher threads its logger through request-scoped contexts.
type ctxKey struct{}

// WithContext attaches l to ctx.
func WithContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the Logger attached to ctx, or Root() if none.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(ctxKey{}).(Logger); ok {
		return l
	}
	return Root()
}
