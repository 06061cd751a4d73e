package main

import (
	"os"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/rfitzg/swervekit/control"
)

// simConfig describes one simulated module run.
type simConfig struct {
	PeriodMS int `yaml:"period_ms"`
	Cycles   int `yaml:"cycles"`

	Module struct {
		Name            string  `yaml:"name"`
		DriveRatio      float64 `yaml:"drive_ratio"`
		WheelRadiusM    float64 `yaml:"wheel_radius_m"`
		InitialAngleDeg float64 `yaml:"initial_angle_deg"`
	} `yaml:"module"`

	Desired struct {
		AngleDeg float64 `yaml:"angle_deg"`
		SpeedMPS float64 `yaml:"speed_mps"`
	} `yaml:"desired"`

	Gains struct {
		AnglePosition control.PIDConfig `yaml:"angle_position"`
		AngleRate     control.PIDConfig `yaml:"angle_rate"`
		DriveRate     control.PIDConfig `yaml:"drive_rate"`
	} `yaml:"gains"`
}

func defaultConfig() simConfig {
	var cfg simConfig
	cfg.PeriodMS = 20
	cfg.Cycles = 150
	cfg.Module.Name = "sim"
	cfg.Module.DriveRatio = 6.12
	cfg.Module.WheelRadiusM = 0.0508
	cfg.Desired.AngleDeg = 170
	cfg.Desired.SpeedMPS = 2
	cfg.Gains.AnglePosition = control.PIDConfig{P: 6}
	cfg.Gains.AngleRate = control.PIDConfig{P: 0.05}
	cfg.Gains.DriveRate = control.PIDConfig{P: 4}
	return cfg
}

func loadConfig(path string) (simConfig, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "reading config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing config %s", path)
	}
	return cfg, cfg.validate()
}

func (c simConfig) validate() error {
	var errs error
	if c.PeriodMS <= 0 {
		errs = multierr.Append(errs, errors.New("period_ms must be positive"))
	}
	if c.Cycles <= 0 {
		errs = multierr.Append(errs, errors.New("cycles must be positive"))
	}
	errs = multierr.Combine(errs,
		c.Gains.AnglePosition.Validate("gains.angle_position"),
		c.Gains.AngleRate.Validate("gains.angle_rate"),
		c.Gains.DriveRate.Validate("gains.drive_rate"),
	)
	return errs
}
