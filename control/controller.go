package control

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/possess/input"
)

// Controller owns one input.State for its lifetime. It does not know which
// decision source writes it or which Actor reads it.
type Controller struct {
	handle Handle
	name   string
	state  *input.State
}

func (c *Controller) Handle() Handle {
	return c.handle
}

func (c *Controller) Name() string {
	return c.name
}

// State exposes the owned state, mainly for snapshotting.
func (c *Controller) State() *input.State {
	return c.state
}

func (c *Controller) SetPressed(id input.ButtonID, pressed bool) error {
	return c.state.SetPressed(id, pressed)
}

func (c *Controller) Pressed(id input.ButtonID) (bool, error) {
	return c.state.Pressed(id)
}

func (c *Controller) SetAxis(id input.AxisID, v cp.Vector) error {
	return c.state.SetAxis(id, v)
}

func (c *Controller) Axis(id input.AxisID) (cp.Vector, error) {
	return c.state.Axis(id)
}

func (c *Controller) Reset() {
	c.state.Reset()
}
