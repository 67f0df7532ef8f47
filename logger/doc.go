// Package logger provides the context-bearing Logger, its field
// constructors, and the process-wide named-logger registry.
//
// A Logger is immutable: WithContext derives a child with merged
// context and never touches the receiver, so loggers can be shared
// freely across goroutines. Every log call stamps the record with the
// service metadata, the caller's file/line/function, and the merged
// context, promoting the reserved identity keys (correlation_id,
// user_id, trace_id, span_id) to top-level record fields.
//
// Lifecycle:
//
//	root, err := logger.Initialize(config.FromEnv("market-data"))
//	...
//	log, _ := logger.GetLogger("market-data.api")
//	log.Info("request served", logger.Int("status", 200))
//	...
//	logger.Shutdown()
package logger
