package source

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/possess/control"
	"github.com/milk9111/possess/input"
)

var testContract = input.MustContract(
	[]string{"jump", "attack", "legs_action", "dash"},
	[]string{"move", "aim"},
)

type fakeWorld map[string]cp.Vector

func (w fakeWorld) Position(name string) (cp.Vector, bool) {
	p, ok := w[name]
	return p, ok
}

type fakeDevice struct {
	keys    map[string]bool
	buttons map[string]bool
	axes    map[string]float64
}

func (d *fakeDevice) KeyPressed(k string) bool           { return d.keys[k] }
func (d *fakeDevice) GamepadButtonPressed(b string) bool { return d.buttons[b] }
func (d *fakeDevice) GamepadAxis(a string) float64       { return d.axes[a] }

// rig is one controller attached to one actor.
type rig struct {
	reg   *control.Registry
	ctrl  *control.Controller
	actor *control.Actor
}

func newRig(actorName string) *rig {
	reg := control.NewRegistry(testContract.Layout())
	c := reg.Create("c")
	a := control.NewActor(actorName, reg)
	a.SetController(c.Handle())
	return &rig{reg: reg, ctrl: c, actor: a}
}

func (r *rig) button(t *testing.T, name string) bool {
	t.Helper()
	id, ok := testContract.Button(name)
	if !ok {
		t.Fatalf("unknown button %q", name)
	}
	v, err := r.ctrl.Pressed(id)
	if err != nil {
		t.Fatalf("Pressed(%s): %v", name, err)
	}
	return v
}

func (r *rig) axis(t *testing.T, name string) cp.Vector {
	t.Helper()
	id, ok := testContract.Axis(name)
	if !ok {
		t.Fatalf("unknown axis %q", name)
	}
	v, err := r.ctrl.Axis(id)
	if err != nil {
		t.Fatalf("Axis(%s): %v", name, err)
	}
	return v
}

func run(t *testing.T, src control.Source, r *rig, n uint64) {
	t.Helper()
	if err := src.Update(control.Tick{N: n}, r.ctrl, r.actor); err != nil {
		t.Fatalf("tick %d: %v", n, err)
	}
}
