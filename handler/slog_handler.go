package handler

import (
	"context"
	"log/slog"

	"github.com/agora-platform/agoralog/core"
)

// SlogHandler is an adapter that implements slog.Handler on top of an
// agoralog Handler, so the pipeline can serve as a backend for the
// standard library's log/slog.
type SlogHandler struct {
	handler Handler
	level   core.Level
	service string
	attrs   []core.Field
	group   string
}

// NewSlogHandler creates a new slog.Handler adapter wrapping the given Handler.
func NewSlogHandler(h Handler, level core.Level, service string) *SlogHandler {
	return &SlogHandler{
		handler: h,
		level:   level,
		service: service,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (s *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return slogLevelToCore(level) >= s.level
}

// Handle converts a slog.Record to a core.Record and emits it through
// the wrapped handler.
func (s *SlogHandler) Handle(_ context.Context, record slog.Record) error {
	rec := core.GetRecord()
	rec.Time = record.Time
	rec.Level = slogLevelToCore(record.Level)
	rec.Message = record.Message
	rec.Service = s.service
	rec.LoggerName = s.service
	rec.Caller = core.CallerFromPC(record.PC)

	fields := make([]core.Field, 0, len(s.attrs)+record.NumAttrs())
	fields = append(fields, s.attrs...)
	record.Attrs(func(a slog.Attr) bool {
		fields = appendSlogAttr(fields, s.group, a)
		return true
	})
	rec.AttachContext(fields)

	err := s.handler.Emit(rec)

	if rc, ok := s.handler.(Recycler); ok && rc.CanRecycleRecord() {
		core.PutRecord(rec)
	}
	return err
}

// WithAttrs returns a new SlogHandler with additional attributes.
func (s *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]core.Field, len(s.attrs), len(s.attrs)+len(attrs))
	copy(newAttrs, s.attrs)
	for _, a := range attrs {
		newAttrs = appendSlogAttr(newAttrs, s.group, a)
	}
	return &SlogHandler{
		handler: s.handler,
		level:   s.level,
		service: s.service,
		attrs:   newAttrs,
		group:   s.group,
	}
}

// WithGroup returns a new SlogHandler with the given group name.
func (s *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return s
	}
	newGroup := name
	if s.group != "" {
		newGroup = s.group + "." + name
	}
	newAttrs := make([]core.Field, len(s.attrs))
	copy(newAttrs, s.attrs)
	return &SlogHandler{
		handler: s.handler,
		level:   s.level,
		service: s.service,
		attrs:   newAttrs,
		group:   newGroup,
	}
}

// slogLevelToCore converts a slog.Level to a core.Level.
func slogLevelToCore(level slog.Level) core.Level {
	switch {
	case level >= slog.LevelError:
		return core.ErrorLevel
	case level >= slog.LevelWarn:
		return core.WarningLevel
	case level >= slog.LevelInfo:
		return core.InfoLevel
	default:
		return core.DebugLevel
	}
}

// appendSlogAttr converts a slog.Attr to core fields, flattening group
// attributes into dot-prefixed members and appending the result to
// fields. Per slog semantics an empty group key inlines its members at
// the enclosing level.
func appendSlogAttr(fields []core.Field, group string, a slog.Attr) []core.Field {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		prefix := group
		if a.Key != "" {
			prefix = a.Key
			if group != "" {
				prefix = group + "." + a.Key
			}
		}
		for _, member := range a.Value.Group() {
			fields = appendSlogAttr(fields, prefix, member)
		}
		return fields
	}

	return append(fields, slogAttrToField(group, a))
}

// slogAttrToField converts a non-group slog.Attr to a core.Field,
// prepending the group prefix if present.
func slogAttrToField(group string, a slog.Attr) core.Field {
	key := a.Key
	if group != "" {
		key = group + "." + a.Key
	}

	a.Value = a.Value.Resolve()

	switch a.Value.Kind() {
	case slog.KindString:
		return core.Field{Key: key, Type: core.StringType, Str: a.Value.String()}
	case slog.KindInt64:
		return core.Field{Key: key, Type: core.Int64Type, Int64: a.Value.Int64()}
	case slog.KindFloat64:
		return core.Field{Key: key, Type: core.Float64Type, Float64: a.Value.Float64()}
	case slog.KindBool:
		val := int64(0)
		if a.Value.Bool() {
			val = 1
		}
		return core.Field{Key: key, Type: core.BoolType, Int64: val}
	case slog.KindTime:
		t := a.Value.Time()
		return core.Field{Key: key, Type: core.TimeType, Int64: t.UnixNano()}
	case slog.KindDuration:
		return core.Field{Key: key, Type: core.DurationType, Int64: int64(a.Value.Duration())}
	default:
		return core.Field{Key: key, Type: core.AnyType, Any: a.Value.Any()}
	}
}
