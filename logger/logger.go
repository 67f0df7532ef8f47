package logger

import (
	"os"
	"sync"
	"time"

	"github.com/agora-platform/agoralog/config"
	"github.com/agora-platform/agoralog/core"
	"github.com/agora-platform/agoralog/handler"
)

// callerSkip is the fixed frame depth from core.GetCaller inside
// (*Logger).log back to the application call expression.
const callerSkip = 3

// Logger is the context-bearing entry point of the pipeline. It is
// immutable: WithContext derives children, nothing mutates a built
// Logger, so concurrent use needs no synchronization.
type Logger struct {
	name        string
	level       core.Level
	service     string
	environment string
	version     string
	context     []core.Field
	handlers    []handler.Handler
	recycle     bool
}

// New creates a standalone Logger outside the registry lifecycle. The
// default context is value-copied from cfg.
func New(name string, cfg config.Config, handlers ...handler.Handler) *Logger {
	cfg.ApplyDefaults()
	return newLogger(name, cfg, cfg.DefaultContext, handlers)
}

func newLogger(name string, cfg config.Config, context []core.Field, handlers []handler.Handler) *Logger {
	ctx := make([]core.Field, len(context))
	copy(ctx, context)

	recycle := true
	for _, h := range handlers {
		rc, ok := h.(handler.Recycler)
		if !ok || !rc.CanRecycleRecord() {
			recycle = false
			break
		}
	}

	return &Logger{
		name:        name,
		level:       cfg.Level,
		service:     cfg.ServiceName,
		environment: cfg.Environment,
		version:     cfg.Version,
		context:     ctx,
		handlers:    handlers,
		recycle:     recycle,
	}
}

// Name returns the logger's registry name
func (l *Logger) Name() string {
	return l.name
}

// Context returns a copy of the logger's context fields
func (l *Logger) Context() []core.Field {
	ctx := make([]core.Field, len(l.context))
	copy(ctx, l.context)
	return ctx
}

// WithContext returns a new Logger whose context is the receiver's
// context with the given fields merged on top; later keys win. The
// receiver is never altered and the child holds independent copies, so
// neither logger can observe mutation through the other. Values of
// AnyType are stored as given; callers keeping a reference to a mutable
// Any value share it with the child.
func (l *Logger) WithContext(fields ...core.Field) *Logger {
	child := *l
	child.context = core.MergeFields(l.context, fields)
	return &child
}

// Log logs a message at the given level
func (l *Logger) Log(level core.Level, msg string, fields ...core.Field) {
	if level < l.level {
		return
	}
	l.log(level, msg, nil, fields)
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields ...core.Field) {
	if core.DebugLevel < l.level {
		return
	}
	l.log(core.DebugLevel, msg, nil, fields)
}

// Info logs an info message
func (l *Logger) Info(msg string, fields ...core.Field) {
	if core.InfoLevel < l.level {
		return
	}
	l.log(core.InfoLevel, msg, nil, fields)
}

// Warning logs a warning message
func (l *Logger) Warning(msg string, fields ...core.Field) {
	if core.WarningLevel < l.level {
		return
	}
	l.log(core.WarningLevel, msg, nil, fields)
}

// Error logs an error message with an optional error descriptor
func (l *Logger) Error(msg string, err error, fields ...core.Field) {
	if core.ErrorLevel < l.level {
		return
	}
	l.log(core.ErrorLevel, msg, core.DescribeError(err), fields)
}

// Critical logs a critical message with an optional error descriptor
func (l *Logger) Critical(msg string, err error, fields ...core.Field) {
	if core.CriticalLevel < l.level {
		return
	}
	l.log(core.CriticalLevel, msg, core.DescribeError(err), fields)
}

// ErrorInfo logs at the given level with a caller-built error descriptor
func (l *Logger) ErrorInfo(level core.Level, msg string, info *core.ErrorInfo, fields ...core.Field) {
	if level < l.level {
		return
	}
	l.log(level, msg, info, fields)
}

// log captures the call site and dispatches. Every exported log method
// sits exactly one frame above it, so callerSkip lands on application
// code, never on a pipeline helper.
func (l *Logger) log(level core.Level, msg string, errInfo *core.ErrorInfo, fields []core.Field) {
	caller := core.GetCaller(callerSkip)
	l.emit(time.Now(), level, msg, errInfo, fields, caller)
}

// emit builds the record and fans it out to every handler in order.
// Handler failures are suppressed per handler; logging never raises
// into caller code.
func (l *Logger) emit(now time.Time, level core.Level, msg string, errInfo *core.ErrorInfo, fields []core.Field, caller core.CallerInfo) {
	if len(l.handlers) == 0 {
		return
	}

	rec := core.GetRecord()
	rec.Time = now
	rec.Level = level
	rec.Message = msg
	rec.Service = l.service
	rec.Environment = l.environment
	rec.Version = l.version
	rec.Host = hostname()
	rec.LoggerName = l.name
	rec.Caller = caller
	rec.Err = errInfo
	rec.AttachContext(core.MergeFields(l.context, fields))

	for _, h := range l.handlers {
		// Emit errors are reported on the handler's side channel and
		// deliberately ignored here.
		_ = h.Emit(rec)
	}

	if l.recycle {
		core.PutRecord(rec)
	}
}

// Timer starts a monotonic clock and returns a stop function for defer.
// The stop function logs exactly one INFO record with the label as
// message and a fractional duration_ms field merged with the given
// fields, on every exit path of the guarded scope, panicking or not:
//
//	defer log.Timer("rebuild index", logger.String("table", t))()
//
// The record's source location is the Timer call expression.
func (l *Logger) Timer(label string, fields ...core.Field) func() {
	start := time.Now()
	caller := core.GetCaller(2)
	var once sync.Once
	return func() {
		once.Do(func() {
			if core.InfoLevel < l.level {
				return
			}
			elapsed := float64(time.Since(start).Nanoseconds()) / 1e6
			timed := make([]core.Field, 0, len(fields)+1)
			timed = append(timed, fields...)
			timed = append(timed, Float64("duration_ms", elapsed))
			l.emit(time.Now(), core.InfoLevel, label, nil, timed, caller)
		})
	}
}

var (
	hostOnce   sync.Once
	hostCached string
)

// hostname returns the cached machine hostname
func hostname() string {
	hostOnce.Do(func() {
		h, err := os.Hostname()
		if err != nil || h == "" {
			h = "unknown"
		}
		hostCached = h
	})
	return hostCached
}
