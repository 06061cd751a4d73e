// Package telemetry defines the one-way sink the subsystem controllers
// write per-axis snapshots to each cycle. The controllers never read
// anything back from a sink.
package telemetry

import "github.com/edaniels/golog"

// AxisSnapshot captures one controlled axis at the end of a cycle.
type AxisSnapshot struct {
	Subsystem string
	Axis      string
	Target    float64
	Current   float64
	Error     float64
	Voltage   float64
}

// Sink consumes per-cycle snapshots. Implementations must not block the
// control cycle.
type Sink interface {
	Record(snapshot AxisSnapshot)
}

// NoopSink discards every snapshot.
type NoopSink struct{}

// Record does nothing.
func (NoopSink) Record(AxisSnapshot) {}

// LogSink writes each snapshot to a logger at debug level.
type LogSink struct {
	Logger golog.Logger
}

// Record logs the snapshot.
func (s LogSink) Record(snap AxisSnapshot) {
	s.Logger.Debugw("axis snapshot",
		"subsystem", snap.Subsystem,
		"axis", snap.Axis,
		"target", snap.Target,
		"current", snap.Current,
		"error", snap.Error,
		"voltage", snap.Voltage,
	)
}
