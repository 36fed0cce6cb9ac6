// Package telemetry holds the narrow logging and metrics contracts the
// simulation packages depend on, so the loop, world, and observer hub never
// import a concrete implementation.
package telemetry

import (
	"log"

	"hollowmarch/sim/logging"
)

// Logger is the plain-text diagnostic surface. Gameplay events go through
// the structured event router instead; this is for wiring-level messages
// like observer connects and queue warnings.
type Logger interface {
	Printf(format string, args ...any)
}

// Metrics records the simulation's counters and gauges. Nil-safe wrappers
// mean callers can hold a Metrics without checking how it was built.
type Metrics interface {
	Add(key string, delta uint64)
	Store(key string, value uint64)
}

// WrapLogger adapts a standard library logger. A nil logger yields a Logger
// that discards everything.
func WrapLogger(logger *log.Logger) Logger {
	return stdLogger{logger: logger}
}

type stdLogger struct {
	logger *log.Logger
}

func (l stdLogger) Printf(format string, args ...any) {
	if l.logger == nil {
		return
	}
	l.logger.Printf(format, args...)
}

// WrapMetrics adapts the event router's metrics store. A nil store yields a
// Metrics that discards everything.
func WrapMetrics(metrics *logging.Metrics) Metrics {
	return metricsBridge{metrics: metrics}
}

type metricsBridge struct {
	metrics *logging.Metrics
}

func (m metricsBridge) Add(key string, delta uint64) {
	if m.metrics == nil {
		return
	}
	m.metrics.TelemetryAdd(key, delta)
}

func (m metricsBridge) Store(key string, value uint64) {
	if m.metrics == nil {
		return
	}
	m.metrics.TelemetryStore(key, value)
}
