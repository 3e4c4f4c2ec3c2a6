package source

import (
	"strings"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/possess/control"
)

const tengoChaser = `
update := func(engine, state) {
	if state.count == undefined {
		state.count = 0
	}
	state.count = state.count + 1

	me := engine.position()
	hero := engine.target("hero")
	if me == undefined || hero == undefined {
		engine.axis("move", 0, 0)
		return
	}
	dx := hero.x - me.x
	if dx > 0 {
		engine.axis("move", 1, 0)
	} else {
		engine.axis("move", -1, 0)
	}
	engine.press("jump", state.count % 2 == 0)
	if engine.pressed("jump") {
		engine.press("dash")
	}
}
`

const luaChaser = `
count = 0

function update(engine)
  count = count + 1
  local x, y, ok = engine.position()
  local hx, hy, found = engine.target("hero")
  if not ok or not found then
    engine.axis("move", 0, 0)
    return
  end
  if hx > x then
    engine.axis("move", 1, 0)
  else
    engine.axis("move", -1, 0)
  end
  engine.press("jump", count % 2 == 0)
  if engine.pressed("jump") then
    engine.press("dash")
  end
end
`

type scriptCase struct {
	name  string
	build func(world Perception) (control.Source, error)
}

func scriptCases() []scriptCase {
	return []scriptCase{
		{"tengo", func(w Perception) (control.Source, error) {
			return NewTengoSource(testContract, "chaser.tengo", []byte(tengoChaser), w)
		}},
		{"lua", func(w Perception) (control.Source, error) {
			return NewLuaSource(testContract, "chaser.lua", []byte(luaChaser), w)
		}},
	}
}

// Both script runtimes drive a controller identically from the same logic.
func TestScriptSourcesDriveController(t *testing.T) {
	for _, sc := range scriptCases() {
		t.Run(sc.name, func(t *testing.T) {
			world := fakeWorld{"drone": {X: 10}, "hero": {X: -50}}
			src, err := sc.build(world)
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			if l, ok := src.(*Lua); ok {
				defer l.Close()
			}
			r := newRig("drone")

			run(t, src, r, 1)
			if got := r.axis(t, "move"); got != (cp.Vector{X: -1}) {
				t.Fatalf("tick 1 move = %v", got)
			}
			if r.button(t, "jump") || r.button(t, "dash") {
				t.Fatalf("tick 1 should not jump")
			}

			// State persists across ticks: the second run presses jump.
			world["hero"] = cp.Vector{X: 90}
			run(t, src, r, 2)
			if got := r.axis(t, "move"); got != (cp.Vector{X: 1}) {
				t.Fatalf("tick 2 move = %v", got)
			}
			if !r.button(t, "jump") || !r.button(t, "dash") {
				t.Fatalf("tick 2 should jump and dash")
			}

			// Detached: the script sees no position.
			if err := src.Update(control.Tick{N: 3}, r.ctrl, nil); err != nil {
				t.Fatalf("detached update: %v", err)
			}
			if got := r.axis(t, "move"); got != (cp.Vector{}) {
				t.Fatalf("detached move = %v", got)
			}
		})
	}
}

func TestScriptUnknownChannelFails(t *testing.T) {
	cases := []struct {
		name  string
		build func() (control.Source, error)
	}{
		{"tengo", func() (control.Source, error) {
			return NewTengoSource(testContract, "bad.tengo", []byte(`update := func(engine, state) { engine.press("fly", true) }`), nil)
		}},
		{"lua", func() (control.Source, error) {
			return NewLuaSource(testContract, "bad.lua", []byte(`function update(engine) engine.press("fly", true) end`), nil)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src, err := tc.build()
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			if l, ok := src.(*Lua); ok {
				defer l.Close()
			}
			err = src.Update(control.Tick{N: 1}, newRig("x").ctrl, nil)
			if err == nil || !strings.Contains(err.Error(), "unknown channel") {
				t.Fatalf("expected unknown channel error, got %v", err)
			}
		})
	}
}

func TestScriptCompileErrors(t *testing.T) {
	if _, err := NewTengoSource(testContract, "broken.tengo", []byte(`nope :=`), nil); err == nil {
		t.Fatalf("expected tengo compile error")
	}
	if _, err := NewLuaSource(testContract, "noupdate.lua", []byte(`x = 1`), nil); err == nil {
		t.Fatalf("expected error for a Lua script without update")
	}
}

func TestEmbeddedScriptsLoad(t *testing.T) {
	world := fakeWorld{"drone": {}, "sentry": {}, "hero": {X: 50}}

	patrol, err := NewTengo(testContract, "patrol.tengo", world)
	if err != nil {
		t.Fatalf("NewTengo: %v", err)
	}
	r := newRig("drone")
	run(t, patrol, r, 1)
	if got := r.axis(t, "move"); got != (cp.Vector{X: 1}) {
		t.Fatalf("patrol move = %v", got)
	}
	if err := patrol.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	sentry, err := NewLua(testContract, "sentry.lua", world)
	if err != nil {
		t.Fatalf("NewLua: %v", err)
	}
	defer sentry.Close()
	s := newRig("sentry")
	run(t, sentry, s, 1)
	if !s.button(t, "attack") {
		t.Fatalf("sentry should attack a close hero")
	}

	if _, err := NewLua(testContract, "missing.lua", world); err == nil {
		t.Fatalf("expected error for a missing script")
	}
}
