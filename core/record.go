package core

import (
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

// Record is the unit dispatched to handlers: one structured, immutable
// log event. Once built by the logger, ownership passes to each handler
// it is emitted to; handlers treat it as read-only.
type Record struct {
	Time        time.Time
	Level       Level
	Message     string
	Service     string
	Environment string
	Version     string
	Host        string
	LoggerName  string

	// Caller is the mandatory source-location triple. Every record
	// reaching a terminal handler carries a non-empty file, a positive
	// line, and a non-empty function name.
	Caller CallerInfo

	// Context holds the remaining caller-supplied and inherited
	// key/value pairs after reserved-key promotion. May be empty,
	// never semantically optional.
	Context []Field

	// Promoted identity fields; empty means not supplied.
	CorrelationID string
	UserID        string
	TraceID       string
	SpanID        string

	// Err is the optional error descriptor.
	Err *ErrorInfo
}

// ErrorInfo describes an error attached to a record. It is an explicit
// value constructed at the call site, not derived via reflection on
// arbitrary error graphs; Stacktrace is whatever formatted trace the
// caller chose to capture, and may be empty.
type ErrorInfo struct {
	Kind       string
	Message    string
	Stacktrace string
}

// NewErrorInfo builds an ErrorInfo with an explicit kind and trace.
func NewErrorInfo(kind, message, stacktrace string) *ErrorInfo {
	return &ErrorInfo{Kind: kind, Message: message, Stacktrace: stacktrace}
}

// DescribeError builds an ErrorInfo from a Go error. Kind is the
// dynamic type of the error, Message its Error() text.
func DescribeError(err error) *ErrorInfo {
	if err == nil {
		return nil
	}
	return &ErrorInfo{
		Kind:    fmt.Sprintf("%T", err),
		Message: err.Error(),
	}
}

// CallerInfo contains information about the log call site
type CallerInfo struct {
	File     string
	Line     int
	Function string
}

// Reserved context keys promoted from the nested context to top-level
// record fields.
const (
	KeyCorrelationID = "correlation_id"
	KeyUserID        = "user_id"
	KeyTraceID       = "trace_id"
	KeySpanID        = "span_id"
)

// AttachContext stores the merged context on the record, promoting the
// reserved identity keys to their top-level fields. Promoted keys are
// removed from the nested context so they never appear twice.
func (r *Record) AttachContext(fields []Field) {
	for _, f := range fields {
		switch f.Key {
		case KeyCorrelationID:
			r.CorrelationID = f.StringValue()
		case KeyUserID:
			r.UserID = f.StringValue()
		case KeyTraceID:
			r.TraceID = f.StringValue()
		case KeySpanID:
			r.SpanID = f.StringValue()
		default:
			r.Context = append(r.Context, f)
		}
	}
}

// recordPool is a pool of Record objects to reduce allocations on the
// synchronous path. Records handed to queueing handlers must not be
// recycled; the logger checks CanRecycleRecord before returning one.
var recordPool = sync.Pool{
	New: func() interface{} {
		return &Record{
			Context: make([]Field, 0, 8), // Pre-allocate for 8 fields
		}
	},
}

// GetRecord retrieves a Record from the pool
func GetRecord() *Record {
	r := recordPool.Get().(*Record)
	r.Context = r.Context[:0]
	return r
}

// PutRecord returns a Record to the pool
func PutRecord(r *Record) {
	if r == nil {
		return
	}
	// Re-slice to zero length; GC handles reference cleanup
	r.Context = r.Context[:0]
	r.Message = ""
	r.Caller = CallerInfo{}
	r.CorrelationID = ""
	r.UserID = ""
	r.TraceID = ""
	r.SpanID = ""
	r.Err = nil
	recordPool.Put(r)
}

// unknownCaller is the placeholder triple for unresolvable frames. The
// line is 1, not 0, so the positive-line invariant holds even then.
var unknownCaller = CallerInfo{File: "<unknown>", Line: 1, Function: "<unknown>"}

// GetCaller retrieves the source location of the call site skip frames
// above the caller of GetCaller. The triple is never left empty: when
// the runtime cannot resolve the frame, placeholder values are used so
// the record invariant still holds.
func GetCaller(skip int) CallerInfo {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return unknownCaller
	}

	funcName := "<unknown>"
	if fn := runtime.FuncForPC(pc); fn != nil {
		funcName = fn.Name()
	}
	if line <= 0 {
		line = 1
	}

	return CallerInfo{
		File:     filepath.Base(file),
		Line:     line,
		Function: funcName,
	}
}

// CallerFromPC resolves the source-location triple for a program
// counter captured elsewhere, such as the PC carried by log/slog
// records. A zero or unresolvable pc yields the same placeholders as
// GetCaller.
func CallerFromPC(pc uintptr) CallerInfo {
	if pc == 0 {
		return unknownCaller
	}

	frame, _ := runtime.CallersFrames([]uintptr{pc}).Next()
	if frame.File == "" {
		return unknownCaller
	}

	funcName := frame.Function
	if funcName == "" {
		funcName = "<unknown>"
	}
	line := frame.Line
	if line <= 0 {
		line = 1
	}

	return CallerInfo{
		File:     filepath.Base(frame.File),
		Line:     line,
		Function: funcName,
	}
}
