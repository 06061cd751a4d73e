// Package control defines the single-axis feedback capabilities consumed by
// the subsystem controllers and composes them into the loop shapes the
// subsystems need. The feedback laws themselves are external; this package
// is only responsible for correct wiring and feedback sourcing.
package control

// PositionLoop turns a position error into a target rate. Implementations
// hold whatever internal state their control law needs; Update is called
// exactly once per cycle.
type PositionLoop interface {
	// Update computes the target rate for the current cycle from the
	// measured position, the measured rate, and the target position.
	Update(currentPos, currentRate, targetPos float64) float64
}

// RateLoop turns a rate error into an output command, typically a motor
// voltage.
type RateLoop interface {
	// Update computes the output command for the current cycle from the
	// measured position, the measured rate, and the target rate.
	Update(currentPos, currentRate, targetRate float64) float64
}

// PositionLoopFunc adapts a plain function to a PositionLoop.
type PositionLoopFunc func(currentPos, currentRate, targetPos float64) float64

// Update calls the wrapped function.
func (f PositionLoopFunc) Update(currentPos, currentRate, targetPos float64) float64 {
	return f(currentPos, currentRate, targetPos)
}

// RateLoopFunc adapts a plain function to a RateLoop.
type RateLoopFunc func(currentPos, currentRate, targetRate float64) float64

// Update calls the wrapped function.
func (f RateLoopFunc) Update(currentPos, currentRate, targetRate float64) float64 {
	return f(currentPos, currentRate, targetRate)
}
