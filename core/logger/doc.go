// Package logger provides structured logging for the Vehicle Catalog service.
//
// It wraps go.uber.org/zap. The logger is constructed once at startup from
// the Log configuration section and replaced as the zap global, so library
// code can use zap.L() where no logger is injected.
//
// # Configuration
//
// Two knobs: Level ("debug" enables the development config with readable
// timestamps) and Format ("console" or "json").
//
//	log, _ := logger.New(&logger.Config{Level: "info", Format: "json"})
//
// # Request tracing
//
// WithRayID derives a per-request logger carrying the ray_id set by the
// rayid middleware, so every log line of one request can be correlated.
package logger
