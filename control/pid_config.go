package control

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// PIDConfig carries the gains for one feedback loop. The gains themselves
// are opaque to this package; they are handed to whatever control law the
// builder wires in behind PositionLoop or RateLoop.
type PIDConfig struct {
	P float64 `json:"p" yaml:"p"`
	I float64 `json:"i" yaml:"i"`
	D float64 `json:"d" yaml:"d"`
}

// Validate rejects gain sets that no loop implementation could act on.
func (c PIDConfig) Validate(path string) error {
	var errs error
	if c.P < 0 || c.I < 0 || c.D < 0 {
		errs = multierr.Append(errs, errors.Errorf("%s: gains must be non-negative", path))
	}
	if c.P == 0 && c.I == 0 && c.D == 0 {
		errs = multierr.Append(errs, errors.Errorf("%s: at least one gain must be set", path))
	}
	return errs
}
