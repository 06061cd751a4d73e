// Package cycle provides a fixed-period runner that drives subsystem
// control logic. Hosts with their own scheduler can ignore it and call
// Tick themselves.
package cycle

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"
)

// DefaultPeriod is the common robot control period.
const DefaultPeriod = 20 * time.Millisecond

// Tickable runs one cycle of control logic. Tick must return before the
// next period; the runner never re-enters it.
type Tickable interface {
	Tick(ctx context.Context)
}

// Runner invokes a set of subsystems once per fixed period, in
// registration order, on a single goroutine.
type Runner struct {
	period     time.Duration
	clock      clock.Clock
	logger     golog.Logger
	subsystems []Tickable

	mu                      sync.Mutex
	running                 bool
	cancel                  context.CancelFunc
	activeBackgroundWorkers sync.WaitGroup
}

// NewRunner creates a runner ticking the given subsystems every period.
func NewRunner(period time.Duration, logger golog.Logger, subsystems ...Tickable) (*Runner, error) {
	return newRunner(period, clock.New(), logger, subsystems...)
}

func newRunner(period time.Duration, c clock.Clock, logger golog.Logger, subsystems ...Tickable) (*Runner, error) {
	if period <= 0 {
		return nil, errors.Errorf("period must be positive, got %v", period)
	}
	if len(subsystems) == 0 {
		return nil, errors.New("runner needs at least one subsystem")
	}
	return &Runner{
		period:     period,
		clock:      c,
		logger:     logger,
		subsystems: subsystems,
	}, nil
}

// Start begins ticking in the background until Stop is called.
func (r *Runner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return errors.New("runner already started")
	}
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.running = true

	r.logger.Debugf("runner starting, period %v, %d subsystems", r.period, len(r.subsystems))
	ticker := r.clock.Ticker(r.period)
	r.activeBackgroundWorkers.Add(1)
	goutils.ManagedGo(func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, s := range r.subsystems {
					s.Tick(ctx)
				}
			}
		}
	}, r.activeBackgroundWorkers.Done)
	return nil
}

// Stop halts ticking and waits for the in-flight cycle, if any, to
// finish. Safe to call more than once.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.cancel()
	r.mu.Unlock()
	r.activeBackgroundWorkers.Wait()
	r.logger.Debug("runner stopped")
}
