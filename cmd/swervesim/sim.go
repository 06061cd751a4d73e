package main

import (
	"github.com/rfitzg/swervekit/control"
	"github.com/rfitzg/swervekit/utils"
)

// simModule is a first-order physics stand-in for a real swerve module:
// each axis's rate relaxes toward voltage times a velocity constant, and
// positions integrate the rates.
type simModule struct {
	dt float64

	angleDeg   float64
	angleRate  float64
	angleVolts float64

	drivePos   float64
	driveRate  float64
	driveVolts float64
}

const (
	angleVoltsToRate = 40.0 // deg/s per volt at steady state
	driveVoltsToRate = 0.4  // m/s per volt at steady state
	axisLag          = 0.1  // first-order time constant, seconds
)

func (s *simModule) step() {
	alpha := s.dt / (axisLag + s.dt)
	s.angleRate += alpha * (s.angleVolts*angleVoltsToRate - s.angleRate)
	s.angleDeg = utils.ModAngDeg(s.angleDeg + s.angleRate*s.dt)
	s.driveRate += alpha * (s.driveVolts*driveVoltsToRate - s.driveRate)
	s.drivePos += s.driveRate * s.dt
}

func (s *simModule) AnglePositionDeg() float64      { return s.angleDeg }
func (s *simModule) AngleRateDegPerSec() float64    { return s.angleRate }
func (s *simModule) AngleVoltage() float64          { return s.angleVolts }
func (s *simModule) DrivePositionMeters() float64   { return s.drivePos }
func (s *simModule) DriveRateMetersPerSec() float64 { return s.driveRate }
func (s *simModule) DriveVoltage() float64          { return s.driveVolts }
func (s *simModule) SetAngleVoltage(v float64)      { s.angleVolts = utils.Clamp(v, -12, 12) }
func (s *simModule) SetDriveVoltage(v float64)      { s.driveVolts = utils.Clamp(v, -12, 12) }

// pid is the demo's feedback law for the simulated loops.
type pid struct {
	cfg      control.PIDConfig
	dt       float64
	wrap     bool
	integral float64
	prevErr  float64
	first    bool
}

func newPID(cfg control.PIDConfig, dt float64, wrap bool) *pid {
	return &pid{cfg: cfg, dt: dt, wrap: wrap, first: true}
}

func (p *pid) update(current, target float64) float64 {
	err := target - current
	if p.wrap {
		err = utils.WrapAngDeg(err)
	}
	if p.first {
		p.prevErr = err
		p.first = false
	}
	p.integral += err * p.dt
	deriv := (err - p.prevErr) / p.dt
	p.prevErr = err
	return p.cfg.P*err + p.cfg.I*p.integral + p.cfg.D*deriv
}

// positionPID adapts pid to control.PositionLoop.
type positionPID struct{ *pid }

func (p positionPID) Update(currentPos, _, targetPos float64) float64 {
	return p.update(currentPos, targetPos)
}

// ratePID adapts pid to control.RateLoop.
type ratePID struct{ *pid }

func (p ratePID) Update(_, currentRate, targetRate float64) float64 {
	return p.update(currentRate, targetRate)
}
