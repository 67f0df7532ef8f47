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

// RotatingFileHandler writes log records to a file and rotates it by
// size. When a write would push the file past MaxBytes, the current
// file becomes path.1, path.1 becomes path.2, and so on up to
// BackupCount retained backups.
//
// One mutex serializes ordinary writes and rotation, so concurrent
// callers can never interleave partial lines or race a rename.
type RotatingFileHandler struct {
	path        string
	maxBytes    int64
	backupCount int
	formatter   formatter.Formatter

	mu   sync.Mutex
	file *os.File
	// size mirrors the bytes written to the currently open file since
	// it was opened or rotated; the disk is only consulted once, at
	// open time.
	size      int64
	errOutput io.Writer
}

// RotatingFileConfig holds configuration for the rotating file handler
type RotatingFileConfig struct {
	// Path is the primary log file location
	Path string
	// MaxBytes is the size threshold; <= 0 disables rotation entirely
	MaxBytes int64
	// BackupCount is the number of rotated backups to retain. Zero
	// still rotates but keeps no backups.
	BackupCount int
	// Formatter to use (default: JSONFormatter)
	Formatter formatter.Formatter
	// ErrOutput receives internal I/O failures (default: os.Stderr)
	ErrOutput io.Writer
}

// NewRotatingFileHandler creates a new rotating file handler
func NewRotatingFileHandler(cfg RotatingFileConfig) (*RotatingFileHandler, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("file path is required")
	}
	if cfg.Formatter == nil {
		cfg.Formatter = formatter.NewJSONFormatter()
	}
	if cfg.ErrOutput == nil {
		cfg.ErrOutput = os.Stderr
	}
	if cfg.BackupCount < 0 {
		cfg.BackupCount = 0
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
		return nil, err
	}

	h := &RotatingFileHandler{
		path:        cfg.Path,
		maxBytes:    cfg.MaxBytes,
		backupCount: cfg.BackupCount,
		formatter:   cfg.Formatter,
		errOutput:   cfg.ErrOutput,
	}
	if err := h.open(); err != nil {
		return nil, err
	}
	return h, nil
}

// open opens the primary file and seeds the size counter from disk.
// Caller holds the mutex (or is the constructor).
func (h *RotatingFileHandler) open() error {
	h.size = 0
	if info, err := os.Stat(h.path); err == nil {
		h.size = info.Size()
	}

	file, err := os.OpenFile(h.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	h.file = file
	return nil
}

// Emit serializes the record, rotating first when the write would
// exceed the size threshold
func (h *RotatingFileHandler) Emit(rec *core.Record) error {
	data, err := h.formatter.Format(rec)
	if err != nil {
		reportError(h.errOutput, "rotating format", err)
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.file == nil {
		return fmt.Errorf("rotating file handler is closed")
	}

	if h.shouldRotate(int64(len(data))) {
		if err := h.rotate(); err != nil {
			reportError(h.errOutput, "rotation", err)
			// A failed rotation is not fatal; keep appending to
			// whatever file is open so the record is not lost.
			if h.file == nil {
				if openErr := h.open(); openErr != nil {
					reportError(h.errOutput, "rotation reopen", openErr)
					return openErr
				}
			}
		}
	}

	n, err := h.file.Write(data)
	h.size += int64(n)
	if err != nil {
		reportError(h.errOutput, "rotating emit", err)
		return err
	}
	return nil
}

// shouldRotate reports whether writing n more bytes crosses the threshold
func (h *RotatingFileHandler) shouldRotate(n int64) bool {
	return h.maxBytes > 0 && h.size+n > h.maxBytes
}

// rotate shifts the backup chain and reopens a fresh primary file.
// Caller holds the mutex.
func (h *RotatingFileHandler) rotate() error {
	if err := h.file.Close(); err != nil {
		reportError(h.errOutput, "rotation close", err)
	}
	h.file = nil

	// Shift backups upward, oldest first: path.N-1 -> path.N, ...,
	// path.1 -> path.2.
	for i := h.backupCount - 1; i >= 1; i-- {
		src := h.backupPath(i)
		dst := h.backupPath(i + 1)
		if _, err := os.Stat(src); err == nil {
			if _, err := os.Stat(dst); err == nil {
				if err := os.Remove(dst); err != nil {
					return err
				}
			}
			if err := os.Rename(src, dst); err != nil {
				return err
			}
		}
	}

	// Retire the primary. With no retained backups its content is
	// simply discarded.
	if _, err := os.Stat(h.path); err == nil {
		if h.backupCount > 0 {
			backup := h.backupPath(1)
			if _, err := os.Stat(backup); err == nil {
				if err := os.Remove(backup); err != nil {
					return err
				}
			}
			if err := os.Rename(h.path, backup); err != nil {
				return err
			}
		} else {
			if err := os.Remove(h.path); err != nil {
				return err
			}
		}
	}

	return h.open()
}

func (h *RotatingFileHandler) backupPath(i int) string {
	return fmt.Sprintf("%s.%d", h.path, i)
}

// Flush syncs the current file to stable storage
func (h *RotatingFileHandler) Flush() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.file == nil {
		return nil
	}
	if err := h.file.Sync(); err != nil {
		reportError(h.errOutput, "rotating flush", err)
		return err
	}
	return nil
}

// Close flushes and closes the current file. Safe to call more than once.
func (h *RotatingFileHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.file == nil {
		return nil
	}
	if err := h.file.Sync(); err != nil {
		reportError(h.errOutput, "rotating close", err)
	}
	err := h.file.Close()
	h.file = nil
	if err != nil {
		reportError(h.errOutput, "rotating close", err)
	}
	return err
}

// CanRecycleRecord returns true: the record is fully written when Emit returns
func (h *RotatingFileHandler) CanRecycleRecord() bool {
	return true
}
