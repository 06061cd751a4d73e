// Package mode arbitrates which decision source drives a subsystem's
// actuator output. A subsystem has one default source, active at creation,
// and at most one override; exactly one source executes per cycle.
package mode

import (
	"sync"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
)

// Source produces one actuator decision per cycle while it is the active
// source.
type Source interface {
	// Name identifies the source in logs.
	Name() string
	// Execute runs one cycle's decision and emits its command.
	Execute()
	// Cancel tells a deactivated source to drop any pending effect. A
	// cancelled source must never re-assert a stale command.
	Cancel()
}

// Arbiter selects between a default source and an override. Switches take
// effect on the next cycle boundary; the caller runs exactly one source
// per cycle via Active.
type Arbiter struct {
	defaultSource Source
	logger        golog.Logger

	mu       sync.Mutex
	override Source
}

// NewArbiter creates an arbiter with the given default source active.
func NewArbiter(defaultSource Source, logger golog.Logger) (*Arbiter, error) {
	if defaultSource == nil {
		return nil, errors.New("arbiter needs a default source")
	}
	if logger == nil {
		return nil, errors.New("arbiter needs a logger")
	}
	return &Arbiter{defaultSource: defaultSource, logger: logger}, nil
}

// Active returns the source whose decision function runs this cycle.
func (a *Arbiter) Active() Source {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.override != nil {
		return a.override
	}
	return a.defaultSource
}

// Override installs src as the active source starting at the next cycle.
// If src is already the active override this is a no-op, so callers can
// update an active source's parameters without re-triggering cancellation.
// Any other active override is cancelled first.
func (a *Arbiter) Override(src Source) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if src == nil || src == a.override {
		return
	}
	if a.override != nil {
		a.override.Cancel()
	}
	a.logger.Debugf("mode switch %s -> %s", a.activeLocked().Name(), src.Name())
	a.override = src
}

// Revert cancels any override and reinstates the default source starting
// at the next cycle.
func (a *Arbiter) Revert() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.override == nil {
		return
	}
	a.override.Cancel()
	a.logger.Debugf("mode switch %s -> %s", a.override.Name(), a.defaultSource.Name())
	a.override = nil
}

func (a *Arbiter) activeLocked() Source {
	if a.override != nil {
		return a.override
	}
	return a.defaultSource
}
