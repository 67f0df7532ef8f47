// Package config defines the options the logging pipeline consumes at
// initialization: service identity, minimum level, per-sink enable
// flags, rotation thresholds, async queue tuning, and the default
// context.
//
// Configuration can be built programmatically or loaded from
// environment variables (with optional .env file support via godotenv):
//
//	cfg := config.FromEnv("market-data")
//	cfg.DefaultContext = []core.Field{logger.String("region", "eu-1")}
package config
