// Package observability provides structured logging, metrics, and tracing
// for the canvas: slog helpers, OpenTelemetry metrics, and OpenTelemetry
// spans around compilation and runs.
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// LogConnect logs a committed port connection.
func LogConnect(logger *slog.Logger, fromNode, fromPort, toNode, toPort int, variable string) {
	if logger == nil {
		return
	}
	logger.Debug("ports connected",
		slog.Int("from_node", fromNode),
		slog.Int("from_port", fromPort),
		slog.Int("to_node", toNode),
		slog.Int("to_port", toPort),
		slog.String("variable", variable),
	)
}

// LogSelect logs a port selection.
func LogSelect(logger *slog.Logger, node, port int, direction, variable string) {
	if logger == nil {
		return
	}
	logger.Debug("port selected",
		slog.Int("node", node),
		slog.Int("port", port),
		slog.String("direction", direction),
		slog.String("variable", variable),
	)
}

// LogPlace logs a node placement.
func LogPlace(logger *slog.Logger, node int, op string, x, y float64) {
	if logger == nil {
		return
	}
	logger.Debug("node placed",
		slog.Int("node", node),
		slog.String("op", op),
		slog.Float64("x", x),
		slog.Float64("y", y),
	)
}

// LogCompileStart logs the start of a compilation.
func LogCompileStart(logger *slog.Logger, device string, nodes, variables int) {
	if logger == nil {
		return
	}
	logger.Info("compile starting",
		slog.String("device", device),
		slog.Int("nodes", nodes),
		slog.Int("variables", variables),
	)
}

// LogCompileComplete logs a successful compilation.
func LogCompileComplete(logger *slog.Logger, durationMs float64, nodes int) {
	if logger == nil {
		return
	}
	logger.Info("compile completed",
		slog.Float64("duration_ms", durationMs),
		slog.Int("nodes_built", nodes),
	)
}

// LogCompileError logs a failed compilation. built is the number of nodes
// whose build side effects were kept.
func LogCompileError(logger *slog.Logger, err error, durationMs float64, built int) {
	if logger == nil {
		return
	}
	logger.Error("compile failed",
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
		slog.Int("nodes_built", built),
	)
}

// LogNodeBuild logs one node build.
func LogNodeBuild(logger *slog.Logger, node int, op string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("node built",
		slog.Int("node", node),
		slog.String("op", op),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogRunStart logs the start of a backend run.
func LogRunStart(logger *slog.Logger, runID string) {
	if logger == nil {
		return
	}
	logger.Info("run starting",
		slog.String("run_id", runID),
	)
}

// LogRunComplete logs a successful backend run.
func LogRunComplete(logger *slog.Logger, runID string, durationMs float64, saved int) {
	if logger == nil {
		return
	}
	logger.Info("run completed",
		slog.String("run_id", runID),
		slog.Float64("duration_ms", durationMs),
		slog.Int("values_saved", saved),
	)
}

// LogRunError logs a failed backend run.
func LogRunError(logger *slog.Logger, runID string, err error, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Error("run failed",
		slog.String("run_id", runID),
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogValueStoreError logs a failure to persist a value (non-fatal).
func LogValueStoreError(logger *slog.Logger, runID, variable string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("value store save failed",
		slog.String("run_id", runID),
		slog.String("variable", variable),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}
