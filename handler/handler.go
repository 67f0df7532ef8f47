package handler

import (
	"fmt"
	"io"
	"os"

	"github.com/agora-platform/agoralog/core"
)

// Handler defines the interface implemented by every output stage.
type Handler interface {
	// Emit writes one log record. Returned errors are advisory: no
	// caller in the pipeline propagates them into application code;
	// they are reported on the handler's side channel instead.
	Emit(rec *core.Record) error

	// Flush writes out any buffered records
	Flush() error

	// Close flushes and releases resources
	Close() error
}

// Recycler is an optional interface reporting whether a handler is done
// with a record when Emit returns. Queueing handlers keep records past
// Emit and must answer false.
type Recycler interface {
	CanRecycleRecord() bool
}

// reportError writes a handler-internal failure to the side channel.
// Logging must never raise into caller code, so this is the only place
// emit/flush/close problems surface.
func reportError(w io.Writer, prefix string, err error) {
	if err == nil {
		return
	}
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, "agoralog: %s: %v\n", prefix, err)
}
