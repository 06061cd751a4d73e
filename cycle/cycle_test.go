package cycle

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"go.viam.com/test"

	"github.com/rfitzg/swervekit/testutils"
)

func TestMain(m *testing.M) {
	testutils.VerifyTestMain(m)
}

type countingTickable struct {
	ticks int64
}

func (c *countingTickable) Tick(_ context.Context) {
	atomic.AddInt64(&c.ticks, 1)
}

func (c *countingTickable) count() int64 {
	return atomic.LoadInt64(&c.ticks)
}

func waitForCount(t *testing.T, c *countingTickable, want int64) {
	t.Helper()
	for i := 0; i < 500; i++ {
		if c.count() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	test.That(t, c.count(), test.ShouldEqual, want)
}

func TestNewRunnerValidation(t *testing.T) {
	logger := golog.NewTestLogger(t)

	_, err := NewRunner(0, logger, &countingTickable{})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "period must be positive")

	_, err = NewRunner(DefaultPeriod, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "at least one subsystem")
}

func TestRunnerTicksOncePerPeriod(t *testing.T) {
	logger := golog.NewTestLogger(t)
	mock := clock.NewMock()
	counter := &countingTickable{}
	r, err := newRunner(DefaultPeriod, mock, logger, counter)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, r.Start(), test.ShouldBeNil)
	defer r.Stop()

	mock.Add(DefaultPeriod)
	waitForCount(t, counter, 1)

	mock.Add(DefaultPeriod)
	mock.Add(DefaultPeriod)
	waitForCount(t, counter, 3)
}

type blockingTickable struct {
	entered int64
	exited  int64
	gate    chan struct{}
}

func (b *blockingTickable) Tick(_ context.Context) {
	atomic.AddInt64(&b.entered, 1)
	<-b.gate
	atomic.AddInt64(&b.exited, 1)
}

func TestRunnerDoesNotReenterSlowTick(t *testing.T) {
	logger := golog.NewTestLogger(t)
	mock := clock.NewMock()
	slow := &blockingTickable{gate: make(chan struct{})}
	r, err := newRunner(DefaultPeriod, mock, logger, slow)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, r.Start(), test.ShouldBeNil)

	mock.Add(DefaultPeriod)
	for i := 0; i < 500 && atomic.LoadInt64(&slow.entered) == 0; i++ {
		time.Sleep(time.Millisecond)
	}
	test.That(t, atomic.LoadInt64(&slow.entered), test.ShouldEqual, 1)

	// two more periods elapse while the first call is still running
	mock.Add(DefaultPeriod)
	mock.Add(DefaultPeriod)
	time.Sleep(5 * time.Millisecond)
	test.That(t, atomic.LoadInt64(&slow.entered), test.ShouldEqual, 1)
	test.That(t, atomic.LoadInt64(&slow.exited), test.ShouldEqual, 0)

	// releasing the gate lets the pending tick run to completion
	close(slow.gate)
	for i := 0; i < 500 && atomic.LoadInt64(&slow.exited) < 2; i++ {
		time.Sleep(time.Millisecond)
	}
	r.Stop()
	test.That(t, atomic.LoadInt64(&slow.entered), test.ShouldEqual, atomic.LoadInt64(&slow.exited))
}

func TestRunnerStartStop(t *testing.T) {
	logger := golog.NewTestLogger(t)
	mock := clock.NewMock()
	counter := &countingTickable{}
	r, err := newRunner(DefaultPeriod, mock, logger, counter)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, r.Start(), test.ShouldBeNil)
	test.That(t, r.Start(), test.ShouldNotBeNil)

	r.Stop()
	got := counter.count()
	mock.Add(DefaultPeriod)
	time.Sleep(5 * time.Millisecond)
	// no ticks after Stop
	test.That(t, counter.count(), test.ShouldEqual, got)

	// Stop again is a no-op
	r.Stop()
}

func TestRunnerOrder(t *testing.T) {
	logger := golog.NewTestLogger(t)
	mock := clock.NewMock()

	var order []string
	var done atomic.Bool
	a := tickFunc(func() { order = append(order, "a") })
	b := tickFunc(func() { order = append(order, "b"); done.Store(true) })
	r, err := newRunner(DefaultPeriod, mock, logger, a, b)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, r.Start(), test.ShouldBeNil)
	mock.Add(DefaultPeriod)
	for i := 0; i < 500 && !done.Load(); i++ {
		time.Sleep(time.Millisecond)
	}
	r.Stop()
	test.That(t, order, test.ShouldResemble, []string{"a", "b"})
}

type tickFunc func()

func (f tickFunc) Tick(_ context.Context) { f() }
