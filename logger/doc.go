// Package logger builds the zap logger used across codescore.
//
// Two modes exist: development (console encoder, colored levels) and
// production (JSON, ISO8601 "timestamp" key, no sampling). Every entry
// carries service=codescore. All output goes to stderr so the MCP stdio
// transport keeps stdout to itself.
//
// Usage:
//
//	log, err := logger.New("production", "info")
//	if err != nil {
//	    panic(err)
//	}
//	log.Info("server started", zap.Int("port", 8000))
package logger
