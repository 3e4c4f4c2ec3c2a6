// Package motion is the reference consumer: it reads input only through an
// actor's controller and turns it into body velocity.
package motion

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/possess/control"
	"github.com/milk9111/possess/input"
	"github.com/milk9111/possess/prefabs"
)

const groundedEpsilon = 1.0

// Profile is per-body tuning.
type Profile struct {
	MoveSpeed float64
	JumpSpeed float64
}

// Intent is what one actor asks for this tick. The zero Intent is the
// neutral input used when no controller is attached.
type Intent struct {
	Move     cp.Vector
	Jump     bool
	Attached bool
}

// Mover reads the move axis and jump button of the channel contract.
type Mover struct {
	move input.AxisID
	jump input.ButtonID
}

func NewMover(c *input.Contract) (*Mover, error) {
	move, err := prefabs.ResolveAxis(c, "move")
	if err != nil {
		return nil, err
	}
	jump, err := prefabs.ResolveButton(c, "jump")
	if err != nil {
		return nil, err
	}
	return &Mover{move: move, jump: jump}, nil
}

// Read resolves a's controller. Detached actors, and controllers whose layout
// lacks the channels, read as neutral.
func (m *Mover) Read(a *control.Actor) Intent {
	c, ok := a.Controller()
	if !ok {
		return Intent{}
	}
	move, err := c.Axis(m.move)
	if err != nil {
		return Intent{}
	}
	jump, err := c.Pressed(m.jump)
	if err != nil {
		return Intent{}
	}
	return Intent{Move: move, Jump: jump, Attached: true}
}

// Apply sets horizontal velocity from the move axis, clamped to [-1, 1], and
// starts a jump when the body is not moving vertically.
func (m *Mover) Apply(body *cp.Body, p Profile, in Intent) {
	if body == nil {
		return
	}
	vel := body.Velocity()
	vel.X = clamp(in.Move.X, -1, 1) * p.MoveSpeed

	if in.Jump && p.JumpSpeed > 0 && math.Abs(vel.Y) < groundedEpsilon {
		vel.Y = -p.JumpSpeed
	}

	body.SetVelocityVector(vel)
	body.SetAngle(0)
	body.SetAngularVelocity(0)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
