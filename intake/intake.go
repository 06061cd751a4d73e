// Package intake implements per-cycle sequencing for one stage of a staged
// material handling mechanism: run material in at full speed, slow down at
// an optional checkpoint, stop when it reaches the outfeed stop. A manual
// override mode runs the stage in either direction at either speed.
package intake

import (
	"context"
	"math"
	"sync"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/rfitzg/swervekit/mode"
	"github.com/rfitzg/swervekit/telemetry"
)

// Settings configures an intake stage. Immutable after construction.
type Settings struct {
	// Name labels the stage in logs and telemetry. Defaults to "intake".
	Name string
	// FullSpeedVolts is applied while running with no slowdown request.
	FullSpeedVolts float64
	// SlowSpeedVolts is applied while the slowdown checkpoint is held.
	SlowSpeedVolts float64
}

// Validate rejects settings a stage cannot run with.
func (s Settings) Validate() error {
	var errs error
	if s.FullSpeedVolts == 0 || math.IsNaN(s.FullSpeedVolts) {
		errs = multierr.Append(errs, errors.New("full speed voltage is required"))
	}
	if math.IsNaN(s.SlowSpeedVolts) || math.Abs(s.SlowSpeedVolts) > math.Abs(s.FullSpeedVolts) {
		errs = multierr.Append(errs, errors.Errorf(
			"slow speed voltage %v must not exceed full speed voltage %v",
			s.SlowSpeedVolts, s.FullSpeedVolts))
	}
	return errs
}

func (s Settings) name() string {
	if s.Name == "" {
		return "intake"
	}
	return s.Name
}

// SensorSnapshot is one cycle's sensor readings.
type SensorSnapshot struct {
	InfeedReady   bool
	OutfeedReady  bool
	AtOutfeedStop bool
	// AtSlowdown is nil when the stage has no slowdown checkpoint
	// installed. A missing checkpoint means slowdown is never requested,
	// not an error.
	AtSlowdown *bool
}

// Adapter is the hardware access an intake stage needs. Writes are fire
// and forget; the adapter owns any actuator failure handling.
type Adapter interface {
	IsInfeedReady() bool
	IsOutfeedReady() bool
	AtOutfeedStop() bool
	// AtSlowdown returns nil if the stage has no slowdown checkpoint.
	AtSlowdown() *bool

	Voltage() float64
	Current() float64
	SetVoltage(volts float64)
}

// AutoVoltage maps one cycle's sensor readings to the automatic mode
// output voltage. Pure decision function: the stage runs while material
// is ready at the infeed and nothing has reached the outfeed stop, and
// slows while the slowdown checkpoint is held and the outfeed is not
// clear.
func AutoVoltage(settings Settings, snap SensorSnapshot) float64 {
	run := !snap.AtOutfeedStop && snap.InfeedReady
	if !run {
		return 0
	}
	if snap.AtSlowdown != nil && *snap.AtSlowdown && !snap.OutfeedReady {
		return settings.SlowSpeedVolts
	}
	return settings.FullSpeedVolts
}

// ManualVoltage maps the manual parameters to the manual mode output
// voltage.
func ManualVoltage(settings Settings, forward, slowdown bool) float64 {
	volts := settings.FullSpeedVolts
	if slowdown {
		volts = settings.SlowSpeedVolts
	}
	if !forward {
		volts = -volts
	}
	return volts
}

// Stage runs one intake stage. Automatic sequencing is the default mode;
// RunManual overrides it until RunAuto reverts.
type Stage struct {
	settings Settings
	adapter  Adapter
	sink     telemetry.Sink
	logger   golog.Logger
	arbiter  *mode.Arbiter
	manual   *manualControl
}

// NewStage validates settings and builds the stage controller with
// automatic sequencing active.
func NewStage(settings Settings, adapter Adapter, sink telemetry.Sink, logger golog.Logger) (*Stage, error) {
	if err := settings.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid settings for stage %q", settings.name())
	}
	if adapter == nil {
		return nil, errors.Errorf("stage %q needs a hardware adapter", settings.name())
	}
	if sink == nil {
		sink = telemetry.NoopSink{}
	}
	s := &Stage{
		settings: settings,
		adapter:  adapter,
		sink:     sink,
		logger:   logger,
	}
	s.manual = &manualControl{stage: s, forward: true}
	var err error
	s.arbiter, err = mode.NewArbiter(&autoControl{s}, logger)
	if err != nil {
		return nil, err
	}
	logger.Debugf("stage %q ready, full %.1fV slow %.1fV", settings.name(), settings.FullSpeedVolts, settings.SlowSpeedVolts)
	return s, nil
}

// autoControl is the default decision source.
type autoControl struct {
	stage *Stage
}

func (c *autoControl) Name() string { return c.stage.settings.name() + "-auto" }
func (c *autoControl) Cancel()      {}

func (c *autoControl) Execute() {
	s := c.stage
	snap := SensorSnapshot{
		InfeedReady:   s.adapter.IsInfeedReady(),
		OutfeedReady:  s.adapter.IsOutfeedReady(),
		AtOutfeedStop: s.adapter.AtOutfeedStop(),
		AtSlowdown:    s.adapter.AtSlowdown(),
	}
	s.emit(AutoVoltage(s.settings, snap))
}

// manualControl is the override decision source. Its parameters may be
// updated at any time, active or not; updates take effect on the next
// cycle.
type manualControl struct {
	stage *Stage

	mu       sync.Mutex
	forward  bool
	slowdown bool
}

func (c *manualControl) Name() string { return c.stage.settings.name() + "-manual" }
func (c *manualControl) Cancel()      {}

func (c *manualControl) Execute() {
	forward, slowdown := c.parameters()
	c.stage.emit(ManualVoltage(c.stage.settings, forward, slowdown))
}

func (c *manualControl) set(forward, slowdown bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forward = forward
	c.slowdown = slowdown
}

func (c *manualControl) parameters() (forward, slowdown bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.forward, c.slowdown
}

// Tick runs one control cycle under whichever mode is active.
func (s *Stage) Tick(_ context.Context) {
	s.arbiter.Active().Execute()
}

// RunAuto reverts the stage to automatic sequencing at the next cycle.
func (s *Stage) RunAuto() {
	s.arbiter.Revert()
}

// RunManual sets the manual parameters and makes manual the active mode.
// If manual is already active only the parameters change; no cancellation
// is re-triggered.
func (s *Stage) RunManual(forward, slowdown bool) {
	s.manual.set(forward, slowdown)
	s.arbiter.Override(s.manual)
}

// SetManualParameters updates the manual parameters without changing the
// active mode.
func (s *Stage) SetManualParameters(forward, slowdown bool) {
	s.manual.set(forward, slowdown)
}

// Done reports whether the automatic sequence has finished, that is,
// material has reached the outfeed stop. The host scheduler uses it to
// stop invoking the automatic mode.
func (s *Stage) Done() bool {
	return s.adapter.AtOutfeedStop()
}

func (s *Stage) emit(volts float64) {
	s.adapter.SetVoltage(volts)
	s.sink.Record(telemetry.AxisSnapshot{
		Subsystem: s.settings.name(),
		Axis:      "feed",
		Target:    volts,
		Current:   s.adapter.Voltage(),
		Error:     volts - s.adapter.Voltage(),
		Voltage:   volts,
	})
}
