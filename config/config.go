package config

import (
	"fmt"
	"time"

	"github.com/agora-platform/agoralog/core"
	"github.com/agora-platform/agoralog/handler"
)

// Config is the immutable set of options consumed once at pipeline
// initialization. The core never mutates it afterwards.
type Config struct {
	// ServiceName identifies the emitting service and names the root logger
	ServiceName string
	// Environment is the deployment environment (development, staging, production)
	Environment string
	// Version is the service version stamped on every record
	Version string
	// Level is the minimum severity that reaches handlers
	Level core.Level

	// Console output
	ConsoleEnabled bool
	// ConsoleFormat selects "json" or "text"
	ConsoleFormat string
	// ConsoleColors enables ANSI colors for text output on terminals
	ConsoleColors bool

	// File output
	FileEnabled bool
	// FilePath is the primary log file location
	FilePath string
	// MaxFileSize is the rotation threshold in bytes; <= 0 disables rotation
	MaxFileSize int64
	// MaxBackupCount is the number of rotated backups retained
	MaxBackupCount int

	// Async settings
	AsyncEnabled bool
	// QueueSize is the async queue capacity
	QueueSize int
	// OverflowPolicy governs producers when the queue is full
	OverflowPolicy handler.OverflowPolicy
	// BatchSize is the async consumer's batch size
	BatchSize int
	// BatchTimeout bounds how long a partial batch may wait
	BatchTimeout time.Duration

	// DefaultContext seeds the root logger's context, included in all records
	DefaultContext []core.Field
}

// New returns a Config with defaults for the given service
func New(serviceName string) Config {
	cfg := Config{ServiceName: serviceName}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset options with their defaults
func (c *Config) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Version == "" {
		c.Version = "0.0.0"
	}
	if c.Level == 0 {
		c.Level = core.InfoLevel
	}
	if c.ConsoleFormat == "" {
		c.ConsoleFormat = "json"
	}
	if c.FilePath == "" {
		c.FilePath = "logs/app.log"
	}
	if c.MaxFileSize == 0 {
		c.MaxFileSize = 100 * 1024 * 1024
	}
	if c.MaxBackupCount == 0 {
		c.MaxBackupCount = 5
	}
	if c.QueueSize == 0 {
		c.QueueSize = 10000
	}
	if c.BatchSize == 0 {
		c.BatchSize = 100
	}
	if c.BatchTimeout == 0 {
		c.BatchTimeout = 100 * time.Millisecond
	}
}

// Validate checks option combinations that cannot work
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service name is required")
	}
	if c.ConsoleFormat != "json" && c.ConsoleFormat != "text" {
		return fmt.Errorf("console format must be json or text (got: %s)", c.ConsoleFormat)
	}
	if c.FileEnabled && c.FilePath == "" {
		return fmt.Errorf("file path is required when file output is enabled")
	}
	if c.QueueSize < 0 {
		return fmt.Errorf("queue size must be positive (got: %d)", c.QueueSize)
	}
	return nil
}
