package input

import (
	"fmt"

	"github.com/jakecoffman/cp"
)

// ButtonID addresses a discrete channel. Ids are dense from 0.
type ButtonID int

// AxisID addresses a continuous channel. Ids are dense from 0.
type AxisID int

// Layout fixes the channel counts of a State.
type Layout struct {
	Buttons int
	Axes    int
}

// State is a fixed-shape container of button flags and axis vectors.
//
// The last writer always wins and no channel records who wrote it. State is
// not safe for concurrent use; callers sequence writers before readers.
type State struct {
	buttons []bool
	axes    []cp.Vector
}

// NewState allocates a State with every channel at its default.
// Negative counts are treated as zero.
func NewState(layout Layout) *State {
	return &State{
		buttons: make([]bool, max(layout.Buttons, 0)),
		axes:    make([]cp.Vector, max(layout.Axes, 0)),
	}
}

// Layout returns the channel counts.
func (s *State) Layout() Layout {
	return Layout{Buttons: len(s.buttons), Axes: len(s.axes)}
}

func (s *State) checkButton(id ButtonID) error {
	if id < 0 || int(id) >= len(s.buttons) {
		return &RangeError{Kind: KindButton, ID: int(id), Count: len(s.buttons)}
	}
	return nil
}

func (s *State) checkAxis(id AxisID) error {
	if id < 0 || int(id) >= len(s.axes) {
		return &RangeError{Kind: KindAxis, ID: int(id), Count: len(s.axes)}
	}
	return nil
}

// SetPressed overwrites a button value.
func (s *State) SetPressed(id ButtonID, pressed bool) error {
	if err := s.checkButton(id); err != nil {
		return err
	}
	s.buttons[id] = pressed
	return nil
}

// Pressed returns the last written button value, false if never written.
func (s *State) Pressed(id ButtonID) (bool, error) {
	if err := s.checkButton(id); err != nil {
		return false, err
	}
	return s.buttons[id], nil
}

// SetAxis overwrites an axis value. The vector is stored as given: no
// clamping, normalization or deadzone.
func (s *State) SetAxis(id AxisID, v cp.Vector) error {
	if err := s.checkAxis(id); err != nil {
		return err
	}
	s.axes[id] = v
	return nil
}

// Axis returns the last written axis value, the zero vector if never written.
func (s *State) Axis(id AxisID) (cp.Vector, error) {
	if err := s.checkAxis(id); err != nil {
		return cp.Vector{}, err
	}
	return s.axes[id], nil
}

// Reset puts every channel back to its default.
func (s *State) Reset() {
	clear(s.buttons)
	clear(s.axes)
}

// Snapshot is a value copy of a State.
type Snapshot struct {
	Buttons []bool      `yaml:"buttons"`
	Axes    []cp.Vector `yaml:"axes"`
}

// Snapshot copies the current values.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Buttons: append([]bool(nil), s.buttons...),
		Axes:    append([]cp.Vector(nil), s.axes...),
	}
}

// Restore overwrites every channel from snap. A snapshot taken from a
// different layout is rejected before anything is written.
func (s *State) Restore(snap Snapshot) error {
	if len(snap.Buttons) != len(s.buttons) || len(snap.Axes) != len(s.axes) {
		return fmt.Errorf("%w: snapshot %d/%d, state %d/%d", ErrLayoutMismatch,
			len(snap.Buttons), len(snap.Axes), len(s.buttons), len(s.axes))
	}
	copy(s.buttons, snap.Buttons)
	copy(s.axes, snap.Axes)
	return nil
}
