package source

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/possess/control"
	"github.com/milk9111/possess/input"
	"github.com/milk9111/possess/prefabs"
	lua "github.com/yuin/gopher-lua"
)

// Lua runs a Lua script as a decision source. The script defines a global
// update(engine); engine carries tick and the functions press(name, bool),
// pressed(name), axis(name, x, y), position() -> x, y, found and
// target(name) -> x, y, found. Globals persist across ticks.
//
// A Lua source owns a VM; call Close when discarding it.
type Lua struct {
	contract *input.Contract
	world    Perception
	path     string
	vm       *lua.LState
	engine   *lua.LTable

	ctrl  *control.Controller
	actor *control.Actor
}

// NewLua loads a script from the prefabs scripts directory.
func NewLua(c *input.Contract, path string, world Perception) (*Lua, error) {
	src, err := prefabs.LoadScript(path)
	if err != nil {
		return nil, fmt.Errorf("source: load script %s: %w", path, err)
	}
	return NewLuaSource(c, path, src, world)
}

// NewLuaSource runs src directly; name is used in logs and errors.
func NewLuaSource(c *input.Contract, name string, src []byte, world Perception) (*Lua, error) {
	s := &Lua{contract: c, world: world, path: name}
	if err := s.load(src); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Lua) load(src []byte) error {
	vm := lua.NewState()
	engine := vm.NewTable()
	vm.SetFuncs(engine, map[string]lua.LGFunction{
		"press":    s.luaPress,
		"pressed":  s.luaPressed,
		"axis":     s.luaAxis,
		"position": s.luaPosition,
		"target":   s.luaTarget,
	})

	if err := vm.DoString(string(src)); err != nil {
		vm.Close()
		return fmt.Errorf("source: load %s: %w", s.path, err)
	}
	if vm.GetGlobal("update").Type() != lua.LTFunction {
		vm.Close()
		return fmt.Errorf("source: %s: update is not a function", s.path)
	}

	if s.vm != nil {
		s.vm.Close()
	}
	s.vm = vm
	s.engine = engine
	return nil
}

// Reload replaces the VM with a fresh one running the current script. On
// error the previous VM keeps running.
func (s *Lua) Reload() error {
	src, err := prefabs.LoadScript(s.path)
	if err != nil {
		return fmt.Errorf("source: load script %s: %w", s.path, err)
	}
	return s.load(src)
}

func (s *Lua) Close() {
	if s.vm != nil {
		s.vm.Close()
		s.vm = nil
	}
}

func (s *Lua) String() string {
	return "lua:" + s.path
}

func (s *Lua) Update(t control.Tick, c *control.Controller, a *control.Actor) error {
	s.ctrl, s.actor = c, a
	defer func() { s.ctrl, s.actor = nil, nil }()

	s.vm.SetField(s.engine, "tick", lua.LNumber(t.N))
	err := s.vm.CallByParam(lua.P{
		Fn:      s.vm.GetGlobal("update"),
		NRet:    0,
		Protect: true,
	}, s.engine)
	if err != nil {
		return fmt.Errorf("source: run %s: %w", s.path, err)
	}
	return nil
}

func (s *Lua) luaPress(L *lua.LState) int {
	id, err := prefabs.ResolveButton(s.contract, L.CheckString(1))
	if err != nil {
		L.RaiseError("%v", err)
		return 0
	}
	if err := s.ctrl.SetPressed(id, L.OptBool(2, true)); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (s *Lua) luaPressed(L *lua.LState) int {
	id, err := prefabs.ResolveButton(s.contract, L.CheckString(1))
	if err != nil {
		L.RaiseError("%v", err)
		return 0
	}
	v, err := s.ctrl.Pressed(id)
	if err != nil {
		L.RaiseError("%v", err)
		return 0
	}
	L.Push(lua.LBool(v))
	return 1
}

func (s *Lua) luaAxis(L *lua.LState) int {
	id, err := prefabs.ResolveAxis(s.contract, L.CheckString(1))
	if err != nil {
		L.RaiseError("%v", err)
		return 0
	}
	v := cp.Vector{X: float64(L.CheckNumber(2)), Y: float64(L.OptNumber(3, 0))}
	if err := s.ctrl.SetAxis(id, v); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (s *Lua) luaPosition(L *lua.LState) int {
	if s.actor == nil {
		return pushPosition(L, cp.Vector{}, false)
	}
	return s.pushLookup(L, s.actor.Name())
}

func (s *Lua) luaTarget(L *lua.LState) int {
	return s.pushLookup(L, L.CheckString(1))
}

func (s *Lua) pushLookup(L *lua.LState, name string) int {
	if s.world == nil {
		return pushPosition(L, cp.Vector{}, false)
	}
	p, ok := s.world.Position(name)
	return pushPosition(L, p, ok)
}

func pushPosition(L *lua.LState, p cp.Vector, found bool) int {
	L.Push(lua.LNumber(p.X))
	L.Push(lua.LNumber(p.Y))
	L.Push(lua.LBool(found))
	return 3
}
