package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/agora-platform/agoralog/core"
	"github.com/agora-platform/agoralog/handler"
)

// FromEnv builds a Config for the given service from environment
// variables, falling back to defaults for anything unset. When a .env
// file exists in the working directory it is loaded first; variables
// already present in the environment win.
func FromEnv(serviceName string) Config {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}
	return fromEnviron(serviceName)
}

// FromEnvFile is FromEnv with an explicit .env file path.
func FromEnvFile(serviceName, envFile string) (Config, error) {
	if err := godotenv.Load(envFile); err != nil {
		return Config{}, err
	}
	return fromEnviron(serviceName), nil
}

func fromEnviron(serviceName string) Config {
	cfg := Config{
		ServiceName:    serviceName,
		Environment:    envString("ENVIRONMENT", "development"),
		Version:        envString("SERVICE_VERSION", "0.0.0"),
		Level:          core.ParseLevel(envString("LOG_LEVEL", "INFO")),
		ConsoleEnabled: envBool("LOG_CONSOLE_ENABLED", true),
		ConsoleFormat:  envString("LOG_CONSOLE_FORMAT", "json"),
		ConsoleColors:  envBool("LOG_CONSOLE_COLORS", true),
		FileEnabled:    envBool("LOG_FILE_ENABLED", true),
		FilePath:       envString("LOG_FILE_PATH", "logs/app.log"),
		MaxFileSize:    int64(envInt("LOG_MAX_FILE_SIZE_MB", 100)) * 1024 * 1024,
		MaxBackupCount: envInt("LOG_MAX_BACKUP_COUNT", 5),
		AsyncEnabled:   envBool("LOG_ASYNC_ENABLED", true),
		QueueSize:      envInt("LOG_QUEUE_SIZE", 10000),
		OverflowPolicy: handler.ParseOverflowPolicy(envString("LOG_OVERFLOW_POLICY", "drop")),
		BatchSize:      envInt("LOG_BATCH_SIZE", 100),
		BatchTimeout:   time.Duration(envInt("LOG_BATCH_TIMEOUT_MS", 100)) * time.Millisecond,
	}
	cfg.ApplyDefaults()
	return cfg
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
