package formatter

import (
	"bytes"
	"io"
	"sync"

	"github.com/agora-platform/agoralog/core"
)

// Formatter defines the interface for log serializers. The pipeline
// hands a finished Record to a Formatter and receives the rendered
// bytes, including the trailing newline.
type Formatter interface {
	// Format formats a log record into bytes
	Format(rec *core.Record) ([]byte, error)
}

// WriterFormatter is an optional interface that formatters can implement
// to write directly to a writer without intermediate byte slice allocation.
type WriterFormatter interface {
	// FormatTo formats a log record and writes it directly to the writer
	FormatTo(rec *core.Record, w io.Writer) error
}

// TimestampFormat is the wire format for record timestamps: ISO 8601,
// UTC, microsecond precision.
const TimestampFormat = "2006-01-02T15:04:05.000000Z07:00"

// bufferPool is a pool of bytes.Buffer to reduce allocations
var bufferPool = &sync.Pool{
	New: func() interface{} {
		b := new(bytes.Buffer)
		b.Grow(256)
		return b
	},
}

func getBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func putBuffer(buf *bytes.Buffer) {
	if buf.Cap() > 64*1024 { // Don't keep very large buffers
		return
	}
	bufferPool.Put(buf)
}
