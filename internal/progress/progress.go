// Package progress defines the event sink the pipeline reports through.
// The core only ever emits events; buffering or fan-out is the caller's
// responsibility.
package progress

import "go.uber.org/zap"

// Sink receives one-way progress events from a running pipeline stage.
// Implementations must not block: they are invoked from the worker loop and
// a slow sink stalls the run.
type Sink interface {
	// Step reports a percentage in [0, 100]; values are monotonically
	// non-decreasing within one stage.
	Step(pct int, msg string)
}

// Func adapts a plain function to a Sink.
type Func func(pct int, msg string)

// Step implements Sink.
func (f Func) Step(pct int, msg string) { f(pct, msg) }

// Nop discards all events.
var Nop Sink = Func(func(int, string) {})

// Logger returns a Sink that writes events to the given zap logger at debug
// level.
func Logger(log *zap.Logger) Sink {
	return Func(func(pct int, msg string) {
		log.Debug("progress", zap.Int("pct", pct), zap.String("msg", msg))
	})
}
