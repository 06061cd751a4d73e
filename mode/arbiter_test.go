package mode

import (
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"
)

type fakeSource struct {
	name      string
	executed  int
	cancelled int
}

func (s *fakeSource) Name() string { return s.name }
func (s *fakeSource) Execute()     { s.executed++ }
func (s *fakeSource) Cancel()      { s.cancelled++ }

func TestArbiterDefault(t *testing.T) {
	logger := golog.NewTestLogger(t)

	_, err := NewArbiter(nil, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "default source")

	def := &fakeSource{name: "auto"}
	_, err = NewArbiter(def, nil)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "logger")

	a, err := NewArbiter(def, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, a.Active(), test.ShouldEqual, def)
}

func TestArbiterOverrideAndRevert(t *testing.T) {
	logger := golog.NewTestLogger(t)
	def := &fakeSource{name: "auto"}
	manual := &fakeSource{name: "manual"}
	a, err := NewArbiter(def, logger)
	test.That(t, err, test.ShouldBeNil)

	a.Override(manual)
	test.That(t, a.Active(), test.ShouldEqual, manual)

	// re-overriding with the active source must not cancel it
	a.Override(manual)
	test.That(t, manual.cancelled, test.ShouldEqual, 0)
	test.That(t, a.Active(), test.ShouldEqual, manual)

	a.Revert()
	test.That(t, manual.cancelled, test.ShouldEqual, 1)
	test.That(t, a.Active(), test.ShouldEqual, def)

	// reverting with no override active is a no-op
	a.Revert()
	test.That(t, manual.cancelled, test.ShouldEqual, 1)
}

func TestArbiterOverrideReplacesOverride(t *testing.T) {
	logger := golog.NewTestLogger(t)
	def := &fakeSource{name: "auto"}
	first := &fakeSource{name: "manual-a"}
	second := &fakeSource{name: "manual-b"}
	a, err := NewArbiter(def, logger)
	test.That(t, err, test.ShouldBeNil)

	a.Override(first)
	a.Override(second)
	test.That(t, first.cancelled, test.ShouldEqual, 1)
	test.That(t, second.cancelled, test.ShouldEqual, 0)
	test.That(t, a.Active(), test.ShouldEqual, second)
}

func TestArbiterExclusivity(t *testing.T) {
	logger := golog.NewTestLogger(t)
	def := &fakeSource{name: "auto"}
	manual := &fakeSource{name: "manual"}
	a, err := NewArbiter(def, logger)
	test.That(t, err, test.ShouldBeNil)

	runCycle := func() { a.Active().Execute() }

	runCycle()
	runCycle()
	test.That(t, def.executed, test.ShouldEqual, 2)
	test.That(t, manual.executed, test.ShouldEqual, 0)

	a.Override(manual)
	runCycle()
	runCycle()
	runCycle()
	// the default decision function never runs while the override is active
	test.That(t, def.executed, test.ShouldEqual, 2)
	test.That(t, manual.executed, test.ShouldEqual, 3)

	a.Revert()
	runCycle()
	test.That(t, def.executed, test.ShouldEqual, 3)
	test.That(t, manual.executed, test.ShouldEqual, 3)
}
