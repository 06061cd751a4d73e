package swerve

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/rfitzg/swervekit/control"
)

// Settings configures one swerve module. Settings are fixed at
// construction and never mutated afterwards.
type Settings struct {
	// Name is a human friendly module name, used in logs and telemetry.
	Name string
	// Translation is the module's mounting position relative to the robot
	// center, in meters.
	Translation r3.Vector
	// DriveRatio is the drive gear ratio, wheel rotations per motor
	// rotation.
	DriveRatio float64
	// WheelRadiusMeters is the drive wheel radius.
	WheelRadiusMeters float64

	// AnglePosition turns a heading error into a target angular rate.
	AnglePosition control.PositionLoop
	// AngleRate turns a target angular rate into angle motor voltage.
	AngleRate control.RateLoop
	// DriveRate turns a target wheel speed into drive motor voltage.
	DriveRate control.RateLoop
}

// Validate rejects settings a module cannot run with. It reports every
// problem found, not just the first.
func (s Settings) Validate() error {
	var errs error
	if s.Name == "" {
		errs = multierr.Append(errs, errors.New("module name is required"))
	}
	if s.DriveRatio <= 0 || math.IsNaN(s.DriveRatio) {
		errs = multierr.Append(errs, errors.Errorf("drive ratio must be positive, got %v", s.DriveRatio))
	}
	if s.WheelRadiusMeters <= 0 || math.IsNaN(s.WheelRadiusMeters) {
		errs = multierr.Append(errs, errors.Errorf("wheel radius must be positive, got %v", s.WheelRadiusMeters))
	}
	if s.AnglePosition == nil {
		errs = multierr.Append(errs, errors.New("angle position loop is required"))
	}
	if s.AngleRate == nil {
		errs = multierr.Append(errs, errors.New("angle rate loop is required"))
	}
	if s.DriveRate == nil {
		errs = multierr.Append(errs, errors.New("drive rate loop is required"))
	}
	return errs
}

// MotorToDistRatio returns meters of wheel travel per drive motor
// rotation. Adapter implementers use it to convert encoder rotations to
// distance.
func (s Settings) MotorToDistRatio() float64 {
	return s.DriveRatio * 2 * math.Pi * s.WheelRadiusMeters
}
