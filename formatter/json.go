package formatter

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/agora-platform/agoralog/core"
)

// JSONFormatter renders records as single-line JSON objects in the
// pipeline's wire shape: timestamp, level, message, service metadata,
// the source-location triple, promoted identity fields, the nested
// context object, and an optional exception object.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Format formats a record as JSON
func (f *JSONFormatter) Format(rec *core.Record) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	f.formatJSONToBuffer(rec, buf)

	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}

// FormatTo formats a record as JSON and writes it directly to the writer
func (f *JSONFormatter) FormatTo(rec *core.Record, w io.Writer) error {
	buf := getBuffer()

	f.formatJSONToBuffer(rec, buf)

	_, err := w.Write(buf.Bytes())
	putBuffer(buf)
	return err
}

// formatJSONToBuffer builds JSON manually into the buffer without allocations
func (f *JSONFormatter) formatJSONToBuffer(rec *core.Record, buf *bytes.Buffer) {
	buf.WriteString(`{"timestamp":"`)
	buf.Write(rec.Time.UTC().AppendFormat(buf.AvailableBuffer(), TimestampFormat))
	buf.WriteByte('"')

	buf.WriteString(`,"level":"`)
	buf.WriteString(rec.Level.String())
	buf.WriteByte('"')

	buf.WriteString(`,"message":"`)
	appendJSONString(buf, rec.Message)
	buf.WriteByte('"')

	appendStringField(buf, "service", rec.Service)
	appendStringField(buf, "environment", rec.Environment)
	appendStringField(buf, "version", rec.Version)
	appendStringField(buf, "host", rec.Host)
	appendStringField(buf, "logger_name", rec.LoggerName)

	// Source-location triple, always present
	appendStringField(buf, "file", rec.Caller.File)
	buf.WriteString(`,"line":`)
	buf.Write(strconv.AppendInt(buf.AvailableBuffer(), int64(rec.Caller.Line), 10))
	appendStringField(buf, "function", rec.Caller.Function)

	// Promoted identity fields, present only when supplied
	if rec.CorrelationID != "" {
		appendStringField(buf, core.KeyCorrelationID, rec.CorrelationID)
	}
	if rec.UserID != "" {
		appendStringField(buf, core.KeyUserID, rec.UserID)
	}
	if rec.TraceID != "" {
		appendStringField(buf, core.KeyTraceID, rec.TraceID)
	}
	if rec.SpanID != "" {
		appendStringField(buf, core.KeySpanID, rec.SpanID)
	}

	// Nested context object, always present, possibly empty
	buf.WriteString(`,"context":{`)
	for i, field := range rec.Context {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		appendJSONString(buf, field.Key)
		buf.WriteString(`":`)
		appendJSONFieldValue(buf, field)
	}
	buf.WriteByte('}')

	if rec.Err != nil {
		buf.WriteString(`,"exception":{"type":"`)
		appendJSONString(buf, rec.Err.Kind)
		buf.WriteString(`","message":"`)
		appendJSONString(buf, rec.Err.Message)
		buf.WriteString(`","stacktrace":"`)
		appendJSONString(buf, rec.Err.Stacktrace)
		buf.WriteString(`"}`)
	}

	buf.WriteString("}\n")
}

// appendStringField writes a comma-separated "key":"value" pair
func appendStringField(buf *bytes.Buffer, key, val string) {
	buf.WriteString(`,"`)
	buf.WriteString(key)
	buf.WriteString(`":"`)
	appendJSONString(buf, val)
	buf.WriteByte('"')
}

// appendJSONString writes a JSON-escaped string (without surrounding quotes) to the buffer
func appendJSONString(buf *bytes.Buffer, s string) {
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' {
			continue
		}
		// Flush unescaped prefix
		if start < i {
			buf.WriteString(s[start:i])
		}
		switch c {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			buf.WriteString(`\u00`)
			buf.WriteByte(hexChars[c>>4])
			buf.WriteByte(hexChars[c&0x0f])
		}
		start = i + 1
	}
	// Flush remaining
	if start < len(s) {
		buf.WriteString(s[start:])
	}
}

var hexChars = [16]byte{'0', '1', '2', '3', '4', '5', '6', '7', '8', '9', 'a', 'b', 'c', 'd', 'e', 'f'}

// appendJSONFieldValue writes a JSON-encoded field value to the buffer
func appendJSONFieldValue(buf *bytes.Buffer, field core.Field) {
	switch field.Type {
	case core.StringType:
		buf.WriteByte('"')
		appendJSONString(buf, field.Str)
		buf.WriteByte('"')
	case core.IntType, core.Int64Type:
		buf.Write(strconv.AppendInt(buf.AvailableBuffer(), field.Int64, 10))
	case core.Float64Type:
		buf.Write(strconv.AppendFloat(buf.AvailableBuffer(), field.Float64, 'f', -1, 64))
	case core.BoolType:
		buf.Write(strconv.AppendBool(buf.AvailableBuffer(), field.Int64 == 1))
	case core.TimeType:
		buf.WriteByte('"')
		buf.Write(time.Unix(0, field.Int64).UTC().AppendFormat(buf.AvailableBuffer(), TimestampFormat))
		buf.WriteByte('"')
	case core.DurationType:
		buf.Write(strconv.AppendInt(buf.AvailableBuffer(), field.Int64, 10))
	case core.AnyType:
		// Nested maps, lists, and arbitrary values go through the
		// standard encoder; a value it rejects degrades to its string
		// form rather than corrupting the line.
		if data, err := json.Marshal(field.Any); err == nil {
			buf.Write(data)
		} else {
			buf.WriteByte('"')
			appendJSONString(buf, field.StringValue())
			buf.WriteByte('"')
		}
	default:
		buf.WriteByte('"')
		appendJSONString(buf, field.StringValue())
		buf.WriteByte('"')
	}
}
