package core

import "strings"

// Level represents the severity level of a log record. The numeric
// values leave gaps between levels so callers can compare them
// ordinally (DEBUG < INFO < WARNING < ERROR < CRITICAL).
type Level int8

const (
	// DebugLevel for detailed debugging information
	DebugLevel Level = 10
	// InfoLevel for general informational messages (default)
	InfoLevel Level = 20
	// WarningLevel for warning messages
	WarningLevel Level = 30
	// ErrorLevel for error messages
	ErrorLevel Level = 40
	// CriticalLevel for messages about unrecoverable conditions
	CriticalLevel Level = 50
)

// String returns the string representation of the level
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarningLevel:
		return "WARNING"
	case ErrorLevel:
		return "ERROR"
	case CriticalLevel:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name to a Level. Unknown names map to
// InfoLevel. "WARN" is accepted as an alias for "WARNING".
func ParseLevel(s string) Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return DebugLevel
	case "INFO":
		return InfoLevel
	case "WARN", "WARNING":
		return WarningLevel
	case "ERROR":
		return ErrorLevel
	case "CRITICAL":
		return CriticalLevel
	default:
		return InfoLevel
	}
}
