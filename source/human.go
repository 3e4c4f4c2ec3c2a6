package source

import (
	"cmp"
	"slices"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/possess/control"
	"github.com/milk9111/possess/input"
	"github.com/milk9111/possess/prefabs"
)

// Device is a polled input device. Names are the ones used in bindings
// prefabs; unknown names read as released or zero.
type Device interface {
	KeyPressed(key string) bool
	GamepadButtonPressed(button string) bool
	GamepadAxis(axis string) float64
}

type humanButton struct {
	id      input.ButtonID
	keys    []string
	gamepad []string
}

type humanAxisComponent struct {
	negative []string
	positive []string
	gamepad  string
	invert   bool
}

type humanAxis struct {
	id       input.AxisID
	x, y     humanAxisComponent
	deadzone float64
}

// Human maps device state onto bound channels. Channels without a binding are
// never written.
type Human struct {
	device  Device
	buttons []humanButton
	axes    []humanAxis
}

func NewHuman(c *input.Contract, spec prefabs.BindingsSpec, dev Device) (*Human, error) {
	h := &Human{device: dev}
	for name, b := range spec.Buttons {
		id, err := prefabs.ResolveButton(c, name)
		if err != nil {
			return nil, err
		}
		h.buttons = append(h.buttons, humanButton{id: id, keys: b.Keys, gamepad: b.Gamepad})
	}
	for name, a := range spec.Axes {
		id, err := prefabs.ResolveAxis(c, name)
		if err != nil {
			return nil, err
		}
		h.axes = append(h.axes, humanAxis{
			id:       id,
			x:        humanAxisComponent{a.X.Negative, a.X.Positive, a.X.Gamepad, a.X.Invert},
			y:        humanAxisComponent{a.Y.Negative, a.Y.Positive, a.Y.Gamepad, a.Y.Invert},
			deadzone: a.Deadzone,
		})
	}
	slices.SortFunc(h.buttons, func(a, b humanButton) int { return cmp.Compare(a.id, b.id) })
	slices.SortFunc(h.axes, func(a, b humanAxis) int { return cmp.Compare(a.id, b.id) })
	return h, nil
}

// SetDevice swaps the polled device. A nil device reads as all released.
func (h *Human) SetDevice(dev Device) {
	h.device = dev
}

func (h *Human) String() string {
	return "human"
}

func (h *Human) Update(_ control.Tick, c *control.Controller, _ *control.Actor) error {
	for _, b := range h.buttons {
		if err := c.SetPressed(b.id, h.buttonPressed(b)); err != nil {
			return err
		}
	}
	for _, a := range h.axes {
		if err := c.SetAxis(a.id, h.axisValue(a)); err != nil {
			return err
		}
	}
	return nil
}

func (h *Human) buttonPressed(b humanButton) bool {
	if h.device == nil {
		return false
	}
	for _, k := range b.keys {
		if h.device.KeyPressed(k) {
			return true
		}
	}
	for _, g := range b.gamepad {
		if h.device.GamepadButtonPressed(g) {
			return true
		}
	}
	return false
}

// axisValue prefers the stick once it leaves the deadzone, otherwise the
// digital keys. The deadzone is radial over both stick components.
func (h *Human) axisValue(a humanAxis) cp.Vector {
	if h.device == nil {
		return cp.Vector{}
	}
	stick := cp.Vector{X: h.stick(a.x), Y: h.stick(a.y)}
	if stick.Length() > a.deadzone {
		return stick
	}
	return cp.Vector{X: h.keys(a.x), Y: h.keys(a.y)}
}

func (h *Human) stick(c humanAxisComponent) float64 {
	if c.gamepad == "" {
		return 0
	}
	v := h.device.GamepadAxis(c.gamepad)
	if c.invert {
		v = -v
	}
	return v
}

func (h *Human) keys(c humanAxisComponent) float64 {
	v := 0.0
	for _, k := range c.negative {
		if h.device.KeyPressed(k) {
			v -= 1
			break
		}
	}
	for _, k := range c.positive {
		if h.device.KeyPressed(k) {
			v += 1
			break
		}
	}
	return v
}
