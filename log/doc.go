// Package log provides the leveled logging interface used across mindcanvas.
//
// Every component that can fail without aborting the user's session (persistence
// write-through, detail lookups that fall back to child generation, the HTTP
// generation service) reports through a Logger. The package-level default is backed
// by github.com/kataras/golog and can be replaced with SetDefaultLogger.
//
// # Log Levels
//
//   - LogLevelDebug: state machine transitions, request payload sizes
//   - LogLevelInfo: expansions, history restores, persistence loads
//   - LogLevelWarn: recovered failures (detail fallback, dropped dangling edges)
//   - LogLevelError: failures surfaced to the user or lost writes
//   - LogLevelNone: disables all output
//
// # Example Usage
//
//	logger := log.New(log.LogLevelDebug)
//	logger.Info("expanding %s", node.ID)
//
//	// Silence a component in tests
//	g := canvas.NewGraph(canvas.WithLogger(&log.NoOpLogger{}))
package log
