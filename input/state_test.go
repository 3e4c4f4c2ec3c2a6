package input

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jakecoffman/cp"
)

func TestNewStateDefaults(t *testing.T) {
	s := NewState(Layout{Buttons: 4, Axes: 3})

	for id := ButtonID(0); id < 4; id++ {
		v, err := s.Pressed(id)
		if err != nil {
			t.Fatalf("Pressed(%d): %v", id, err)
		}
		if v {
			t.Fatalf("button %d should default to false", id)
		}
	}
	for id := AxisID(0); id < 3; id++ {
		v, err := s.Axis(id)
		if err != nil {
			t.Fatalf("Axis(%d): %v", id, err)
		}
		if v != (cp.Vector{}) {
			t.Fatalf("axis %d should default to zero, got %v", id, v)
		}
	}
}

func TestStateReadAfterWrite(t *testing.T) {
	s := NewState(Layout{Buttons: 3, Axes: 2})

	buttons := []struct {
		id ButtonID
		v  bool
	}{
		{0, true},
		{2, true},
		{0, false},
	}
	for _, b := range buttons {
		if err := s.SetPressed(b.id, b.v); err != nil {
			t.Fatalf("SetPressed(%d): %v", b.id, err)
		}
		got, err := s.Pressed(b.id)
		if err != nil || got != b.v {
			t.Fatalf("Pressed(%d) = %v, %v; want %v", b.id, got, err, b.v)
		}
	}

	// No clamping or normalization.
	axes := []struct {
		id AxisID
		v  cp.Vector
	}{
		{0, cp.Vector{X: 1, Y: 0}},
		{1, cp.Vector{X: -7.5, Y: 42}},
		{0, cp.Vector{X: 0.01, Y: -0.01}},
	}
	for _, a := range axes {
		if err := s.SetAxis(a.id, a.v); err != nil {
			t.Fatalf("SetAxis(%d): %v", a.id, err)
		}
		got, err := s.Axis(a.id)
		if err != nil || got != a.v {
			t.Fatalf("Axis(%d) = %v, %v; want %v", a.id, got, err, a.v)
		}
	}
}

func TestStateOutOfRange(t *testing.T) {
	layout := Layout{Buttons: 2, Axes: 1}

	cases := []struct {
		name string
		op   func(s *State) error
	}{
		{"set_button_negative", func(s *State) error { return s.SetPressed(-1, true) }},
		{"set_button_count", func(s *State) error { return s.SetPressed(2, true) }},
		{"get_button_far", func(s *State) error { _, err := s.Pressed(100); return err }},
		{"set_axis_negative", func(s *State) error { return s.SetAxis(-1, cp.Vector{X: 1}) }},
		{"set_axis_count", func(s *State) error { return s.SetAxis(1, cp.Vector{X: 1}) }},
		{"get_axis_count", func(s *State) error { _, err := s.Axis(1); return err }},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := NewState(layout)
			before := s.Snapshot()

			err := c.op(s)
			if !errors.Is(err, ErrOutOfRange) {
				t.Fatalf("expected ErrOutOfRange, got %v", err)
			}
			var rerr *RangeError
			if !errors.As(err, &rerr) {
				t.Fatalf("expected *RangeError, got %T", err)
			}
			if diff := cmp.Diff(before, s.Snapshot()); diff != "" {
				t.Fatalf("state mutated on failed access (-before +after):\n%s", diff)
			}
		})
	}
}

func TestStateEmptyLayout(t *testing.T) {
	s := NewState(Layout{Buttons: -3})
	if got := s.Layout(); got != (Layout{}) {
		t.Fatalf("expected empty layout, got %+v", got)
	}
	if _, err := s.Pressed(0); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange on empty state, got %v", err)
	}
}

func TestStateResetAndRestore(t *testing.T) {
	s := NewState(Layout{Buttons: 2, Axes: 1})
	_ = s.SetPressed(1, true)
	_ = s.SetAxis(0, cp.Vector{X: 3, Y: 4})

	snap := s.Snapshot()
	want := Snapshot{Buttons: []bool{false, true}, Axes: []cp.Vector{{X: 3, Y: 4}}}
	if diff := cmp.Diff(want, snap); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}

	s.Reset()
	if diff := cmp.Diff(NewState(s.Layout()).Snapshot(), s.Snapshot()); diff != "" {
		t.Fatalf("reset should restore defaults (-want +got):\n%s", diff)
	}

	if err := s.Restore(snap); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if v, _ := s.Pressed(1); !v {
		t.Fatalf("expected restored button")
	}

	// Snapshot values are copies.
	snap.Buttons[1] = false
	if v, _ := s.Pressed(1); !v {
		t.Fatalf("snapshot aliases state")
	}

	err := s.Restore(Snapshot{Buttons: []bool{true}})
	if !errors.Is(err, ErrLayoutMismatch) {
		t.Fatalf("expected ErrLayoutMismatch, got %v", err)
	}
	if v, _ := s.Pressed(0); v {
		t.Fatalf("rejected restore must not write")
	}
}
