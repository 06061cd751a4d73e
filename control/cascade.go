package control

import "github.com/pkg/errors"

// Cascade chains a position loop into a rate loop: the outer loop's
// requested rate becomes the inner loop's target each cycle.
type Cascade struct {
	outer PositionLoop
	inner RateLoop
}

// NewCascade composes the two stages of a cascaded axis.
func NewCascade(outer PositionLoop, inner RateLoop) (*Cascade, error) {
	if outer == nil {
		return nil, errors.New("cascade needs an outer position loop")
	}
	if inner == nil {
		return nil, errors.New("cascade needs an inner rate loop")
	}
	return &Cascade{outer: outer, inner: inner}, nil
}

// Update runs both stages for one cycle and returns the inner stage's
// output command. The inner stage's rate feedback is the measured rate,
// never the outer stage's requested rate; the request is an uncommitted
// target and feeding it back would break anti-windup under sensor lag.
func (c *Cascade) Update(currentPos, currentRate, targetPos float64) float64 {
	targetRate := c.outer.Update(currentPos, currentRate, targetPos)
	return c.inner.Update(currentPos, currentRate, targetRate)
}
