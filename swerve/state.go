package swerve

import (
	"math"

	"github.com/rfitzg/swervekit/utils"
)

// ModuleState is the motion of a module: wheel speed along the module's
// heading plus the heading itself.
type ModuleState struct {
	SpeedMetersPerSec float64
	AngleDeg          float64
}

// ModulePosition is the accumulated drive distance and current heading of
// a module, the shape odometry consumers want.
type ModulePosition struct {
	DistanceMeters float64
	AngleDeg       float64
}

// OptimizeState returns a state physically equivalent to desired whose
// required rotation from currentAngleDeg is at most 90 degrees. When the
// desired heading is more than 90 degrees away, the heading is flipped by
// 180 degrees and the speed negated, which produces the same translation
// with less module rotation. Optimizing an already optimal state is a
// no-op.
func OptimizeState(currentAngleDeg float64, desired ModuleState) ModuleState {
	delta := utils.WrapAngDeg(desired.AngleDeg - currentAngleDeg)
	if math.Abs(delta) <= 90 {
		return desired
	}
	if delta > 0 {
		delta -= 180
	} else {
		delta += 180
	}
	return ModuleState{
		SpeedMetersPerSec: -desired.SpeedMetersPerSec,
		AngleDeg:          utils.ModAngDeg(currentAngleDeg + delta),
	}
}
