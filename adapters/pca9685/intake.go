// Package pca9685 provides an intake stage hardware adapter backed by a
// PCA9685 PWM driver over I2C for the motor and Raspberry Pi GPIO pins for
// the beam-break sensors.
package pca9685

import (
	"sync"

	"github.com/edaniels/golog"
	"github.com/googolgl/go-i2c"
	"github.com/googolgl/go-pca9685"
	"github.com/pkg/errors"
	"github.com/stianeikeland/go-rpio/v4"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"github.com/rfitzg/swervekit/utils"
)

// DefaultI2CDevice is the usual I2C bus device on a Raspberry Pi.
const DefaultI2CDevice = "/dev/i2c-1"

// DefaultAddress is the PCA9685 default I2C address.
const DefaultAddress byte = 0x40

// IntakeConfig describes the wiring of one intake stage.
type IntakeConfig struct {
	I2CDevice string `yaml:"i2c_device"`
	Address   byte   `yaml:"address"`
	// MotorChannel is the PCA9685 channel driving the stage's ESC.
	MotorChannel int `yaml:"motor_channel"`
	// MaxVolts scales voltage commands to the ESC's full range.
	MaxVolts float64 `yaml:"max_volts"`

	// BCM pin numbers of the beam-break sensors. A sensor reads high when
	// material is present.
	InfeedPin      int `yaml:"infeed_pin"`
	OutfeedPin     int `yaml:"outfeed_pin"`
	OutfeedStopPin int `yaml:"outfeed_stop_pin"`
	// SlowdownPin is nil when the stage has no slowdown checkpoint.
	SlowdownPin *int `yaml:"slowdown_pin,omitempty"`
}

// Validate rejects wiring a stage cannot run with.
func (c IntakeConfig) Validate() error {
	var errs error
	if c.MotorChannel < 0 || c.MotorChannel > 15 {
		errs = multierr.Append(errs, errors.Errorf("motor channel must be 0-15, got %d", c.MotorChannel))
	}
	if c.MaxVolts <= 0 {
		errs = multierr.Append(errs, errors.Errorf("max volts must be positive, got %v", c.MaxVolts))
	}
	for _, p := range []struct {
		name string
		pin  int
	}{
		{"infeed", c.InfeedPin},
		{"outfeed", c.OutfeedPin},
		{"outfeed stop", c.OutfeedStopPin},
	} {
		if p.pin <= 0 {
			errs = multierr.Append(errs, errors.Errorf("%s pin is required", p.name))
		}
	}
	if c.SlowdownPin != nil && *c.SlowdownPin <= 0 {
		errs = multierr.Append(errs, errors.Errorf("slowdown pin must be positive, got %d", *c.SlowdownPin))
	}
	return errs
}

// IntakeAdapter implements intake.Adapter on a PCA9685 plus GPIO sensors.
// The board has no voltage or current readback, so Voltage reports the
// last commanded value and Current reports zero.
type IntakeAdapter struct {
	cfg    IntakeConfig
	logger golog.Logger

	bus      *i2c.Options
	motor    *pca9685.Servo
	infeed   rpio.Pin
	outfeed  rpio.Pin
	stop     rpio.Pin
	slowdown *rpio.Pin

	mu        sync.Mutex
	commanded float64
}

// NewIntakeAdapter opens the I2C bus and GPIO memory and configures the
// motor channel and sensor pins.
func NewIntakeAdapter(cfg IntakeConfig, logger golog.Logger) (*IntakeAdapter, error) {
	if cfg.I2CDevice == "" {
		cfg.I2CDevice = DefaultI2CDevice
	}
	if cfg.Address == 0 {
		cfg.Address = DefaultAddress
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid intake wiring")
	}

	bus, err := i2c.New(cfg.Address, cfg.I2CDevice)
	if err != nil {
		return nil, errors.Wrapf(err, "opening i2c device %s", cfg.I2CDevice)
	}
	driver, err := pca9685.New(bus, nil)
	if err != nil {
		goutils.UncheckedError(bus.Close())
		return nil, errors.Wrap(err, "initializing pca9685")
	}
	if err := rpio.Open(); err != nil {
		goutils.UncheckedError(bus.Close())
		return nil, errors.Wrap(err, "opening gpio memory")
	}

	a := &IntakeAdapter{
		cfg:    cfg,
		logger: logger,
		bus:    bus,
		motor: driver.ServoNew(cfg.MotorChannel, &pca9685.ServOptions{
			AcRange:  pca9685.ServoRangeDef,
			MinPulse: pca9685.ServoMinPulseDef,
			MaxPulse: pca9685.ServoMaxPulseDef,
		}),
		infeed:  rpio.Pin(cfg.InfeedPin),
		outfeed: rpio.Pin(cfg.OutfeedPin),
		stop:    rpio.Pin(cfg.OutfeedStopPin),
	}
	for _, pin := range []rpio.Pin{a.infeed, a.outfeed, a.stop} {
		pin.Input()
		pin.PullDown()
	}
	if cfg.SlowdownPin != nil {
		pin := rpio.Pin(*cfg.SlowdownPin)
		pin.Input()
		pin.PullDown()
		a.slowdown = &pin
	}

	// start stopped
	if err := a.motor.Fraction(0.5); err != nil {
		goutils.UncheckedError(rpio.Close())
		goutils.UncheckedError(bus.Close())
		return nil, errors.Wrap(err, "centering motor output")
	}
	return a, nil
}

// IsInfeedReady reports material waiting at the infeed sensor.
func (a *IntakeAdapter) IsInfeedReady() bool { return a.infeed.Read() == rpio.High }

// IsOutfeedReady reports the outfeed sensor clear to receive material.
func (a *IntakeAdapter) IsOutfeedReady() bool { return a.outfeed.Read() == rpio.High }

// AtOutfeedStop reports material at the outfeed stop sensor.
func (a *IntakeAdapter) AtOutfeedStop() bool { return a.stop.Read() == rpio.High }

// AtSlowdown reports material at the slowdown checkpoint, or nil if no
// checkpoint is wired.
func (a *IntakeAdapter) AtSlowdown() *bool {
	if a.slowdown == nil {
		return nil
	}
	v := a.slowdown.Read() == rpio.High
	return &v
}

// Voltage returns the last commanded voltage.
func (a *IntakeAdapter) Voltage() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.commanded
}

// Current returns zero; the board has no current sense.
func (a *IntakeAdapter) Current() float64 { return 0 }

// SetVoltage maps the voltage to the ESC's bidirectional pulse range and
// writes it. Write failures are logged and dropped; the next cycle
// commands again.
func (a *IntakeAdapter) SetVoltage(volts float64) {
	fraction := 0.5 + 0.5*utils.Clamp(volts/a.cfg.MaxVolts, -1, 1)
	if err := a.motor.Fraction(float32(fraction)); err != nil {
		a.logger.Errorw("intake motor write failed", "error", err)
		return
	}
	a.mu.Lock()
	a.commanded = volts
	a.mu.Unlock()
}

// Close releases the GPIO memory mapping and the I2C bus.
func (a *IntakeAdapter) Close() error {
	return multierr.Combine(rpio.Close(), a.bus.Close())
}
