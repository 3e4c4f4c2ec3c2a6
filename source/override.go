package source

import (
	"fmt"
	"maps"
	"slices"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/possess/control"
	"github.com/milk9111/possess/input"
	"github.com/milk9111/possess/prefabs"
)

// Override is the debug/manual source. Held values are written every tick,
// on top of whatever the optional underlying source wrote first.
type Override struct {
	contract *input.Contract
	under    control.Source
	buttons  map[input.ButtonID]bool
	axes     map[input.AxisID]cp.Vector
}

// NewOverride creates an override; under may be nil.
func NewOverride(c *input.Contract, under control.Source) *Override {
	return &Override{
		contract: c,
		under:    under,
		buttons:  map[input.ButtonID]bool{},
		axes:     map[input.AxisID]cp.Vector{},
	}
}

// Under returns the underlying source, or nil.
func (o *Override) Under() control.Source {
	return o.under
}

// SetUnder replaces the underlying source; held values are kept.
func (o *Override) SetUnder(under control.Source) {
	o.under = under
}

func (o *Override) String() string {
	if o.under != nil {
		return "override+" + sourceLabel(o.under)
	}
	return "override"
}

// Hold pins a button until Clear.
func (o *Override) Hold(button string, pressed bool) error {
	id, err := prefabs.ResolveButton(o.contract, button)
	if err != nil {
		return err
	}
	o.buttons[id] = pressed
	return nil
}

// HoldAxis pins an axis until Clear.
func (o *Override) HoldAxis(axis string, v cp.Vector) error {
	id, err := prefabs.ResolveAxis(o.contract, axis)
	if err != nil {
		return err
	}
	o.axes[id] = v
	return nil
}

// HoldSnapshot pins every channel to the values in snap.
func (o *Override) HoldSnapshot(snap input.Snapshot) error {
	layout := o.contract.Layout()
	if len(snap.Buttons) != layout.Buttons || len(snap.Axes) != layout.Axes {
		return fmt.Errorf("%w: snapshot %d/%d, contract %d/%d", input.ErrLayoutMismatch,
			len(snap.Buttons), len(snap.Axes), layout.Buttons, layout.Axes)
	}
	for i, pressed := range snap.Buttons {
		o.buttons[input.ButtonID(i)] = pressed
	}
	for i, v := range snap.Axes {
		o.axes[input.AxisID(i)] = v
	}
	return nil
}

// Clear stops pinning every channel. The controller keeps the last written
// values until something else writes them.
func (o *Override) Clear() {
	clear(o.buttons)
	clear(o.axes)
}

func (o *Override) Update(t control.Tick, c *control.Controller, a *control.Actor) error {
	if o.under != nil {
		if err := o.under.Update(t, c, a); err != nil {
			return err
		}
	}
	for _, id := range slices.Sorted(maps.Keys(o.buttons)) {
		if err := c.SetPressed(id, o.buttons[id]); err != nil {
			return err
		}
	}
	for _, id := range slices.Sorted(maps.Keys(o.axes)) {
		if err := c.SetAxis(id, o.axes[id]); err != nil {
			return err
		}
	}
	return nil
}

func sourceLabel(src control.Source) string {
	if s, ok := src.(interface{ String() string }); ok {
		return s.String()
	}
	return "source"
}
