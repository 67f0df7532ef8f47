package handler

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/agora-platform/agoralog/core"
	"github.com/agora-platform/agoralog/formatter"
)

// FileHandler writes log records to a file, append-only. Writes are
// serialized behind one mutex; the parent directory is created on
// construction.
type FileHandler struct {
	path            string
	file            *os.File
	formatter       formatter.Formatter
	writerFormatter formatter.WriterFormatter
	mu              sync.Mutex
	errOutput       io.Writer
}

// FileConfig holds configuration for the file handler
type FileConfig struct {
	// Path is the log file location
	Path string
	// Formatter to use (default: JSONFormatter)
	Formatter formatter.Formatter
	// ErrOutput receives internal I/O failures (default: os.Stderr)
	ErrOutput io.Writer
}

// NewFileHandler creates a new file handler
func NewFileHandler(cfg FileConfig) (*FileHandler, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("file path is required")
	}
	if cfg.Formatter == nil {
		cfg.Formatter = formatter.NewJSONFormatter()
	}
	if cfg.ErrOutput == nil {
		cfg.ErrOutput = os.Stderr
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	h := &FileHandler{
		path:      cfg.Path,
		file:      file,
		formatter: cfg.Formatter,
		errOutput: cfg.ErrOutput,
	}

	// Cache WriterFormatter for the no-copy path
	h.writerFormatter, _ = cfg.Formatter.(formatter.WriterFormatter)

	return h, nil
}

// Emit serializes and appends one record
func (h *FileHandler) Emit(rec *core.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.file == nil {
		return fmt.Errorf("file handler is closed")
	}

	if h.writerFormatter != nil {
		if err := h.writerFormatter.FormatTo(rec, h.file); err != nil {
			reportError(h.errOutput, "file emit", err)
			return err
		}
		return nil
	}

	data, err := h.formatter.Format(rec)
	if err != nil {
		reportError(h.errOutput, "file format", err)
		return err
	}
	if _, err := h.file.Write(data); err != nil {
		reportError(h.errOutput, "file emit", err)
		return err
	}
	return nil
}

// Flush syncs the file to stable storage
func (h *FileHandler) Flush() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.file == nil {
		return nil
	}
	if err := h.file.Sync(); err != nil {
		reportError(h.errOutput, "file flush", err)
		return err
	}
	return nil
}

// Close flushes and closes the file. Safe to call more than once.
func (h *FileHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.file == nil {
		return nil
	}
	if err := h.file.Sync(); err != nil {
		reportError(h.errOutput, "file close", err)
	}
	err := h.file.Close()
	h.file = nil
	if err != nil {
		reportError(h.errOutput, "file close", err)
	}
	return err
}

// CanRecycleRecord returns true: the record is fully written when Emit returns
func (h *FileHandler) CanRecycleRecord() bool {
	return true
}
