package logger

import (
	"errors"
	"sync"

	"github.com/agora-platform/agoralog/config"
	"github.com/agora-platform/agoralog/handler"
)

// ErrNotInitialized is returned by GetLogger before Initialize has run.
var ErrNotInitialized = errors.New("logging not initialized: call Initialize first")

// registry is the process-wide named-logger cache. One lock guards
// creation races; loggers themselves are immutable and safe to share.
type loggerRegistry struct {
	mu       sync.RWMutex
	cfg      *config.Config
	loggers  map[string]*Logger
	handlers []handler.Handler
}

var registry = &loggerRegistry{
	loggers: make(map[string]*Logger),
}

// Initialize builds the handler chain from configuration, registers the
// root logger under the service name, and returns it. Must run before
// any GetLogger call. Calling it again resets global state: the
// previous chain is flushed and closed first, then replaced.
func Initialize(cfg config.Config) (*Logger, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	handlers, err := buildHandlers(cfg)
	if err != nil {
		return nil, err
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	closeHandlersLocked()

	root := newLogger(cfg.ServiceName, cfg, cfg.DefaultContext, handlers)
	registry.cfg = &cfg
	registry.handlers = handlers
	registry.loggers = map[string]*Logger{cfg.ServiceName: root}
	return root, nil
}

// buildHandlers composes the console/file/rotating/async chain
func buildHandlers(cfg config.Config) ([]handler.Handler, error) {
	var handlers []handler.Handler

	if cfg.ConsoleEnabled {
		handlers = append(handlers, handler.NewConsoleHandler(handler.ConsoleConfig{
			Format: cfg.ConsoleFormat,
			Colors: cfg.ConsoleColors,
		}))
	}

	if cfg.FileEnabled {
		var fileHandler handler.Handler
		var err error
		if cfg.MaxFileSize > 0 {
			fileHandler, err = handler.NewRotatingFileHandler(handler.RotatingFileConfig{
				Path:        cfg.FilePath,
				MaxBytes:    cfg.MaxFileSize,
				BackupCount: cfg.MaxBackupCount,
			})
		} else {
			fileHandler, err = handler.NewFileHandler(handler.FileConfig{
				Path: cfg.FilePath,
			})
		}
		if err != nil {
			// Undo the console handler before failing initialization.
			for _, h := range handlers {
				_ = h.Close()
			}
			return nil, err
		}

		if cfg.AsyncEnabled {
			fileHandler = handler.NewAsyncHandler(fileHandler, handler.AsyncConfig{
				QueueSize:    cfg.QueueSize,
				OnFull:       cfg.OverflowPolicy,
				BatchSize:    cfg.BatchSize,
				BatchTimeout: cfg.BatchTimeout,
			})
		}
		handlers = append(handlers, fileHandler)
	}

	return handlers, nil
}

// GetLogger returns the cached Logger for name, creating one on first
// access that shares the root's handler chain with an empty context.
// Concurrent first-access calls for the same name resolve to a single
// instance.
func GetLogger(name string) (*Logger, error) {
	registry.mu.RLock()
	if registry.cfg == nil {
		registry.mu.RUnlock()
		return nil, ErrNotInitialized
	}
	if l, ok := registry.loggers[name]; ok {
		registry.mu.RUnlock()
		return l, nil
	}
	registry.mu.RUnlock()

	registry.mu.Lock()
	defer registry.mu.Unlock()

	if registry.cfg == nil {
		return nil, ErrNotInitialized
	}
	// Insert-if-absent: another goroutine may have won the race
	// between the read unlock and here.
	if l, ok := registry.loggers[name]; ok {
		return l, nil
	}
	l := newLogger(name, *registry.cfg, nil, registry.handlers)
	registry.loggers[name] = l
	return l, nil
}

// Shutdown flushes and closes every handler of the registered chain and
// clears the registry, permitting a later re-Initialize. Idempotent:
// repeated calls are safe no-ops.
func Shutdown() {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	closeHandlersLocked()
	registry.cfg = nil
	registry.loggers = make(map[string]*Logger)
}

// closeHandlersLocked releases the current chain. All registered
// loggers share registry.handlers, so each distinct handler is flushed
// and closed exactly once. Caller holds the write lock.
func closeHandlersLocked() {
	for _, h := range registry.handlers {
		_ = h.Flush()
		_ = h.Close()
	}
	registry.handlers = nil
}
