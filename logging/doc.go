// Package logging provides a minimal logging interface and adapters for ReasonMesh.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the reasoner and strategies use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//   - ReasonLogger with contextual component and session attributes
//   - LogToolCall, LogLLMCall and LogStrategyStep helpers emitting uniform
//     diagnostics through any Logger
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	rsn := reasoner.New(func(o *reasoner.Options) { o.Logger = logger })
//
// The design intentionally keeps the interface minimal to avoid vendor lock-in
// while supporting structured logging where available.
package logging
