package source

import (
	"errors"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/possess/control"
	"github.com/milk9111/possess/prefabs"
)

func TestAIFollowAndAttack(t *testing.T) {
	params := prefabs.AIParams{
		Target:      "hero",
		FollowRange: 300,
		AttackRange: 40,
		Jump:        "jump",
		JumpHeight:  50,
	}

	cases := []struct {
		name       string
		world      fakeWorld
		wantMove   cp.Vector
		wantAttack bool
		wantJump   bool
	}{
		{"out_of_range", fakeWorld{"grunt": {X: 0}, "hero": {X: 500}}, cp.Vector{}, false, false},
		{"follow_right", fakeWorld{"grunt": {X: 0}, "hero": {X: 200}}, cp.Vector{X: 1}, false, false},
		{"follow_left", fakeWorld{"grunt": {X: 0}, "hero": {X: -200}}, cp.Vector{X: -1}, false, false},
		{"attack", fakeWorld{"grunt": {X: 0}, "hero": {X: 30}}, cp.Vector{}, true, false},
		{"jump_up_to_target", fakeWorld{"grunt": {X: 0, Y: 100}, "hero": {X: 100, Y: 20}}, cp.Vector{X: 1}, false, true},
		{"no_target", fakeWorld{"grunt": {X: 0}}, cp.Vector{}, false, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ai, err := NewAI(testContract, params, tc.world)
			if err != nil {
				t.Fatalf("NewAI: %v", err)
			}
			r := newRig("grunt")
			run(t, ai, r, 1)

			if got := r.axis(t, "move"); got != tc.wantMove {
				t.Fatalf("move = %v, want %v", got, tc.wantMove)
			}
			if got := r.button(t, "attack"); got != tc.wantAttack {
				t.Fatalf("attack = %v, want %v", got, tc.wantAttack)
			}
			if got := r.button(t, "jump"); got != tc.wantJump {
				t.Fatalf("jump = %v, want %v", got, tc.wantJump)
			}
		})
	}
}

// The AI perceives through whichever actor it is handed; moving its
// controller to another body changes what it sees without changing the AI.
func TestAIReadsAttachedActor(t *testing.T) {
	world := fakeWorld{"left": {X: -100}, "right": {X: 100}, "hero": {X: 0}}
	ai, err := NewAI(testContract, prefabs.AIParams{Target: "hero", FollowRange: 500, AttackRange: 10}, world)
	if err != nil {
		t.Fatalf("NewAI: %v", err)
	}

	r := newRig("left")
	run(t, ai, r, 1)
	if got := r.axis(t, "move"); got != (cp.Vector{X: 1}) {
		t.Fatalf("from left expected +1, got %v", got)
	}

	other := control.NewActor("right", r.reg)
	other.SetController(r.ctrl.Handle())
	if err := ai.Update(control.Tick{N: 2}, r.ctrl, other); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := r.axis(t, "move"); got != (cp.Vector{X: -1}) {
		t.Fatalf("from right expected -1, got %v", got)
	}

	// Detached: neutral.
	_ = r.ctrl.SetPressed(1, true)
	if err := ai.Update(control.Tick{N: 3}, r.ctrl, nil); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if r.axis(t, "move") != (cp.Vector{}) || r.button(t, "attack") {
		t.Fatalf("detached AI should write neutral input")
	}
}

func TestAIRejectsUnknownChannels(t *testing.T) {
	_, err := NewAI(testContract, prefabs.AIParams{Move: "walk"}, nil)
	if !errors.Is(err, prefabs.ErrUnknownChannel) {
		t.Fatalf("expected ErrUnknownChannel, got %v", err)
	}
}
