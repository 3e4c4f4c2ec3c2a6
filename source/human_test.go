package source

import (
	"errors"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/possess/prefabs"
)

var testBindings = prefabs.BindingsSpec{
	Buttons: map[string]prefabs.ButtonBindingSpec{
		"jump":   {Keys: []string{"Space", "W"}, Gamepad: []string{"RightBottom"}},
		"attack": {Keys: []string{"J"}},
	},
	Axes: map[string]prefabs.AxisBindingSpec{
		"move": {
			Deadzone: 0.2,
			X:        prefabs.AxisComponentSpec{Negative: []string{"A"}, Positive: []string{"D"}, Gamepad: "LeftStickHorizontal"},
			Y:        prefabs.AxisComponentSpec{Gamepad: "LeftStickVertical", Invert: true},
		},
	},
}

func TestHumanMapsDeviceToChannels(t *testing.T) {
	cases := []struct {
		name       string
		dev        *fakeDevice
		wantJump   bool
		wantAttack bool
		wantMove   cp.Vector
	}{
		{
			name: "idle",
			dev:  &fakeDevice{},
		},
		{
			name:     "keys",
			dev:      &fakeDevice{keys: map[string]bool{"W": true, "D": true}},
			wantJump: true,
			wantMove: cp.Vector{X: 1},
		},
		{
			name:     "opposite_keys_cancel",
			dev:      &fakeDevice{keys: map[string]bool{"A": true, "D": true}},
			wantMove: cp.Vector{},
		},
		{
			name:     "gamepad_button",
			dev:      &fakeDevice{buttons: map[string]bool{"RightBottom": true}},
			wantJump: true,
		},
		{
			name:     "stick_inside_deadzone_falls_back_to_keys",
			dev:      &fakeDevice{keys: map[string]bool{"A": true}, axes: map[string]float64{"LeftStickHorizontal": 0.1}},
			wantMove: cp.Vector{X: -1},
		},
		{
			name:       "stick_outside_deadzone_wins",
			dev:        &fakeDevice{keys: map[string]bool{"A": true, "J": true}, axes: map[string]float64{"LeftStickHorizontal": 0.5, "LeftStickVertical": 0.25}},
			wantAttack: true,
			wantMove:   cp.Vector{X: 0.5, Y: -0.25},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, err := NewHuman(testContract, testBindings, tc.dev)
			if err != nil {
				t.Fatalf("NewHuman: %v", err)
			}
			r := newRig("hero")
			run(t, h, r, 1)

			if got := r.button(t, "jump"); got != tc.wantJump {
				t.Fatalf("jump = %v, want %v", got, tc.wantJump)
			}
			if got := r.button(t, "attack"); got != tc.wantAttack {
				t.Fatalf("attack = %v, want %v", got, tc.wantAttack)
			}
			if got := r.axis(t, "move"); got != tc.wantMove {
				t.Fatalf("move = %v, want %v", got, tc.wantMove)
			}
		})
	}
}

func TestHumanLeavesUnboundChannelsAlone(t *testing.T) {
	h, err := NewHuman(testContract, testBindings, nil)
	if err != nil {
		t.Fatalf("NewHuman: %v", err)
	}
	r := newRig("hero")
	id, _ := testContract.Button("dash")
	_ = r.ctrl.SetPressed(id, true)
	_ = r.ctrl.SetAxis(1, cp.Vector{X: 9})

	run(t, h, r, 1)

	if !r.button(t, "dash") || r.axis(t, "aim") != (cp.Vector{X: 9}) {
		t.Fatalf("unbound channels were overwritten")
	}
}

func TestHumanRejectsUnknownChannels(t *testing.T) {
	spec := prefabs.BindingsSpec{Buttons: map[string]prefabs.ButtonBindingSpec{"fly": {Keys: []string{"F"}}}}
	if _, err := NewHuman(testContract, spec, nil); !errors.Is(err, prefabs.ErrUnknownChannel) {
		t.Fatalf("expected ErrUnknownChannel, got %v", err)
	}
}
