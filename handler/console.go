package handler

import (
	"bytes"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"

	"github.com/agora-platform/agoralog/core"
	"github.com/agora-platform/agoralog/formatter"
)

// ConsoleHandler writes log records to stdout/stderr, as JSON or
// human-readable text with optional ANSI level colors.
type ConsoleHandler struct {
	writer    io.Writer
	formatter formatter.Formatter
	colors    bool
	mu        sync.Mutex
	errOutput io.Writer
}

// ConsoleConfig holds configuration for the console handler
type ConsoleConfig struct {
	// Writer to write to (default: os.Stdout)
	Writer io.Writer
	// Format selects "json" or "text" output (default: "json")
	Format string
	// Colors enables ANSI level colors for text output. Ignored when
	// the writer is not a terminal.
	Colors bool
	// Formatter overrides Format when set
	Formatter formatter.Formatter
	// ErrOutput receives internal I/O failures (default: os.Stderr)
	ErrOutput io.Writer
}

// NewConsoleHandler creates a new console handler
func NewConsoleHandler(cfg ConsoleConfig) *ConsoleHandler {
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}
	if cfg.ErrOutput == nil {
		cfg.ErrOutput = os.Stderr
	}

	text := cfg.Format == "text"
	if cfg.Formatter == nil {
		if text {
			cfg.Formatter = formatter.NewTextFormatter()
		} else {
			cfg.Formatter = formatter.NewJSONFormatter()
		}
	}

	colors := cfg.Colors && text
	if colors {
		if f, ok := cfg.Writer.(*os.File); ok && !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
			colors = false
		}
	}

	return &ConsoleHandler{
		writer:    cfg.Writer,
		formatter: cfg.Formatter,
		colors:    colors,
		errOutput: cfg.ErrOutput,
	}
}

// ANSI color codes per level, applied to text output only
func levelColor(l core.Level) string {
	switch l {
	case core.DebugLevel:
		return "\033[36m" // cyan
	case core.InfoLevel:
		return "\033[32m" // green
	case core.WarningLevel:
		return "\033[33m" // yellow
	case core.ErrorLevel:
		return "\033[31m" // red
	case core.CriticalLevel:
		return "\033[35m" // magenta
	default:
		return ""
	}
}

const colorReset = "\033[0m"

// Emit renders and writes one record
func (h *ConsoleHandler) Emit(rec *core.Record) error {
	data, err := h.formatter.Format(rec)
	if err != nil {
		reportError(h.errOutput, "console format", err)
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.colors {
		if color := levelColor(rec.Level); color != "" {
			var buf bytes.Buffer
			buf.Grow(len(data) + len(color) + len(colorReset))
			buf.WriteString(color)
			buf.Write(bytes.TrimRight(data, "\n"))
			buf.WriteString(colorReset)
			buf.WriteByte('\n')
			if _, err := h.writer.Write(buf.Bytes()); err != nil {
				reportError(h.errOutput, "console emit", err)
				return err
			}
			return nil
		}
	}

	if _, err := h.writer.Write(data); err != nil {
		reportError(h.errOutput, "console emit", err)
		return err
	}
	return nil
}

// Flush is a no-op for unbuffered console writers
func (h *ConsoleHandler) Flush() error {
	return nil
}

// Close flushes; the underlying stream stays open (it is not ours)
func (h *ConsoleHandler) Close() error {
	return h.Flush()
}

// CanRecycleRecord returns true: the record is fully written when Emit returns
func (h *ConsoleHandler) CanRecycleRecord() bool {
	return true
}
