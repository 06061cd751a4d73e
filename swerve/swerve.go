// Package swerve implements the per-cycle control for a steerable drive
// module: angle-wrap optimization feeding a cascaded heading axis and a
// drive rate loop, emitting one voltage command per axis per cycle.
package swerve

import (
	"context"
	"sync"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"github.com/rfitzg/swervekit/control"
	"github.com/rfitzg/swervekit/mode"
	"github.com/rfitzg/swervekit/telemetry"
	"github.com/rfitzg/swervekit/utils"
)

// Adapter is the hardware access a module needs. Angle units are degrees,
// drive units are meters. Writes are fire and forget; the adapter owns any
// actuator failure handling.
type Adapter interface {
	AnglePositionDeg() float64
	AngleRateDegPerSec() float64
	AngleVoltage() float64
	DrivePositionMeters() float64
	DriveRateMetersPerSec() float64
	DriveVoltage() float64

	SetAngleVoltage(volts float64)
	SetDriveVoltage(volts float64)
}

// Module runs one swerve drive module. It is automatic only: every cycle
// it steers toward the last desired state set by the planner. The desired
// state may be written from a different goroutine than the one ticking
// the module; each write replaces the whole value and the value read at
// the start of a cycle is stable for that cycle.
type Module struct {
	settings Settings
	adapter  Adapter
	angle    *control.Cascade
	sink     telemetry.Sink
	logger   golog.Logger
	arbiter  *mode.Arbiter

	mu      sync.Mutex
	desired ModuleState
}

// NewModule validates settings and builds the module controller. All
// configuration problems surface here; a constructed module always
// produces a defined command every cycle.
func NewModule(settings Settings, adapter Adapter, sink telemetry.Sink, logger golog.Logger) (*Module, error) {
	if err := settings.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid settings for module %q", settings.Name)
	}
	if adapter == nil {
		return nil, errors.Errorf("module %q needs a hardware adapter", settings.Name)
	}
	if sink == nil {
		sink = telemetry.NoopSink{}
	}
	angle, err := control.NewCascade(settings.AnglePosition, settings.AngleRate)
	if err != nil {
		return nil, errors.Wrapf(err, "module %q angle axis", settings.Name)
	}
	m := &Module{
		settings: settings,
		adapter:  adapter,
		angle:    angle,
		sink:     sink,
		logger:   logger,
	}
	m.arbiter, err = mode.NewArbiter(&autoControl{m}, logger)
	if err != nil {
		return nil, err
	}
	logger.Debugf("module %q ready, %.4f m of travel per motor rotation", settings.Name, settings.MotorToDistRatio())
	return m, nil
}

// autoControl is the module's only decision source.
type autoControl struct {
	m *Module
}

func (c *autoControl) Name() string { return c.m.settings.Name + "-auto" }
func (c *autoControl) Execute()     { c.m.updateAuto() }
func (c *autoControl) Cancel()      {}

// SetDesiredState replaces the desired state wholesale. Last write wins.
func (m *Module) SetDesiredState(state ModuleState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.desired = state
}

// DesiredState returns the most recently set desired state.
func (m *Module) DesiredState() ModuleState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.desired
}

// Name returns the module name.
func (m *Module) Name() string {
	return m.settings.Name
}

// Position reports accumulated drive distance and current heading,
// computed from measured state on demand.
func (m *Module) Position() ModulePosition {
	return ModulePosition{
		DistanceMeters: m.adapter.DrivePositionMeters(),
		AngleDeg:       m.adapter.AnglePositionDeg(),
	}
}

// State reports current wheel speed and heading, computed from measured
// state on demand.
func (m *Module) State() ModuleState {
	return ModuleState{
		SpeedMetersPerSec: m.adapter.DriveRateMetersPerSec(),
		AngleDeg:          m.adapter.AnglePositionDeg(),
	}
}

// Tick runs one control cycle.
func (m *Module) Tick(_ context.Context) {
	m.arbiter.Active().Execute()
}

func (m *Module) updateAuto() {
	desired := m.DesiredState()
	currentAngle := m.adapter.AnglePositionDeg()
	currentAngleRate := m.adapter.AngleRateDegPerSec()
	currentDriveRate := m.adapter.DriveRateMetersPerSec()

	state := OptimizeState(currentAngle, desired)

	angleVolts := m.angle.Update(currentAngle, currentAngleRate, state.AngleDeg)
	m.adapter.SetAngleVoltage(angleVolts)

	// drive has no position stage, only the rate loop
	driveVolts := m.settings.DriveRate.Update(0, currentDriveRate, state.SpeedMetersPerSec)
	m.adapter.SetDriveVoltage(driveVolts)

	m.sink.Record(telemetry.AxisSnapshot{
		Subsystem: m.settings.Name,
		Axis:      "angle",
		Target:    state.AngleDeg,
		Current:   currentAngle,
		Error:     utils.WrapAngDeg(state.AngleDeg - currentAngle),
		Voltage:   angleVolts,
	})
	m.sink.Record(telemetry.AxisSnapshot{
		Subsystem: m.settings.Name,
		Axis:      "drive",
		Target:    state.SpeedMetersPerSec,
		Current:   currentDriveRate,
		Error:     state.SpeedMetersPerSec - currentDriveRate,
		Voltage:   driveVolts,
	})
}
