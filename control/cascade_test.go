package control

import (
	"testing"

	"go.viam.com/test"
)

func TestNewCascade(t *testing.T) {
	outer := PositionLoopFunc(func(_, _, targetPos float64) float64 { return targetPos })
	inner := RateLoopFunc(func(_, _, targetRate float64) float64 { return targetRate })

	_, err := NewCascade(nil, inner)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "outer position loop")

	_, err = NewCascade(outer, nil)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "inner rate loop")

	c, err := NewCascade(outer, inner)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c, test.ShouldNotBeNil)
}

func TestCascadeWiring(t *testing.T) {
	// With pass-through stages the composed output must equal the inner
	// stage's function of the outer stage's request. This checks wiring
	// only, not any control law.
	var innerGotRate, innerGotFeedback float64
	outer := PositionLoopFunc(func(_, _, targetPos float64) float64 { return 2 * targetPos })
	inner := RateLoopFunc(func(_, currentRate, targetRate float64) float64 {
		innerGotRate = targetRate
		innerGotFeedback = currentRate
		return targetRate - currentRate
	})

	c, err := NewCascade(outer, inner)
	test.That(t, err, test.ShouldBeNil)

	out := c.Update(5, 1.5, 10)
	test.That(t, innerGotRate, test.ShouldEqual, 20.0)
	// the inner stage sees the measured rate, not the requested one
	test.That(t, innerGotFeedback, test.ShouldEqual, 1.5)
	test.That(t, out, test.ShouldEqual, 18.5)
}

func TestPIDConfigValidate(t *testing.T) {
	for _, c := range []struct {
		name string
		cfg  PIDConfig
		err  string
	}{
		{"p only", PIDConfig{P: 1.2}, ""},
		{"full", PIDConfig{P: 1.2, I: 0.1, D: 0.01}, ""},
		{"zero", PIDConfig{}, "at least one gain"},
		{"negative", PIDConfig{P: -1}, "non-negative"},
	} {
		t.Run(c.name, func(t *testing.T) {
			err := c.cfg.Validate("test")
			if c.err == "" {
				test.That(t, err, test.ShouldBeNil)
			} else {
				test.That(t, err, test.ShouldNotBeNil)
				test.That(t, err.Error(), test.ShouldContainSubstring, c.err)
			}
		})
	}
}
