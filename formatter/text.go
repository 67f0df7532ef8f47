package formatter

import (
	"bytes"
	"io"
	"strconv"

	"github.com/agora-platform/agoralog/core"
)

// TextFormatter renders records as human-readable single lines:
//
//	2006-01-02 15:04:05.000 [LEVEL] [service] message key=value ...
type TextFormatter struct{}

// NewTextFormatter creates a new text formatter
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{}
}

const textTimeFormat = "2006-01-02 15:04:05.000"

// Format formats a record as text
func (f *TextFormatter) Format(rec *core.Record) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	f.formatToBuffer(rec, buf)

	// Copy buffer content to return
	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}

// FormatTo formats a record and writes it directly to the writer
func (f *TextFormatter) FormatTo(rec *core.Record, w io.Writer) error {
	buf := getBuffer()

	f.formatToBuffer(rec, buf)

	_, err := w.Write(buf.Bytes())
	putBuffer(buf)
	return err
}

// pre-formatted level strings to avoid multiple WriteString calls
func levelBracket(l core.Level) string {
	switch l {
	case core.DebugLevel:
		return " [DEBUG] "
	case core.InfoLevel:
		return " [INFO] "
	case core.WarningLevel:
		return " [WARNING] "
	case core.ErrorLevel:
		return " [ERROR] "
	case core.CriticalLevel:
		return " [CRITICAL] "
	default:
		return " [UNKNOWN] "
	}
}

// formatToBuffer writes the formatted record into the given buffer
func (f *TextFormatter) formatToBuffer(rec *core.Record, buf *bytes.Buffer) {
	// Timestamp - use AppendFormat to avoid string allocation
	buf.Write(rec.Time.UTC().AppendFormat(buf.AvailableBuffer(), textTimeFormat))

	buf.WriteString(levelBracket(rec.Level))

	buf.WriteByte('[')
	buf.WriteString(rec.Service)
	buf.WriteString("] ")

	// Message
	buf.WriteString(rec.Message)

	// Source location
	buf.WriteString(" (")
	buf.WriteString(rec.Caller.File)
	buf.WriteByte(':')
	buf.WriteString(strconv.Itoa(rec.Caller.Line))
	buf.WriteByte(')')

	// Promoted identity fields
	appendTextPair(buf, core.KeyCorrelationID, rec.CorrelationID)
	appendTextPair(buf, core.KeyUserID, rec.UserID)
	appendTextPair(buf, core.KeyTraceID, rec.TraceID)
	appendTextPair(buf, core.KeySpanID, rec.SpanID)

	// Context fields
	for _, field := range rec.Context {
		buf.WriteByte(' ')
		buf.WriteString(field.Key)
		buf.WriteByte('=')
		buf.WriteString(field.StringValue())
	}

	if rec.Err != nil {
		buf.WriteString(" Exception: ")
		buf.WriteString(rec.Err.Kind)
		buf.WriteString(": ")
		buf.WriteString(rec.Err.Message)
	}

	buf.WriteByte('\n')
}

func appendTextPair(buf *bytes.Buffer, key, val string) {
	if val == "" {
		return
	}
	buf.WriteByte(' ')
	buf.WriteString(key)
	buf.WriteByte('=')
	buf.WriteString(val)
}
