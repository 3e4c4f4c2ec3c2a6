package source

import (
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/possess/control"
	"github.com/milk9111/possess/input"
	"github.com/milk9111/possess/prefabs"
)

// The script defines update(engine, state); state is a map that survives
// across ticks and reloads.
const tengoDispatchScript = `
update(__engine, __state)
`

// Tengo runs a tengo script as a decision source. The engine map handed to
// update exposes tick, press(name, bool), pressed(name), axis(name, x, y),
// position() and target(name).
type Tengo struct {
	contract *input.Contract
	world    Perception
	path     string
	compiled *tengo.Compiled
	state    *tengo.Map
}

// NewTengo loads and compiles a script from the prefabs scripts directory.
func NewTengo(c *input.Contract, path string, world Perception) (*Tengo, error) {
	src, err := prefabs.LoadScript(path)
	if err != nil {
		return nil, fmt.Errorf("source: load script %s: %w", path, err)
	}
	return NewTengoSource(c, path, src, world)
}

// NewTengoSource compiles src directly; name is used in logs and errors.
func NewTengoSource(c *input.Contract, name string, src []byte, world Perception) (*Tengo, error) {
	s := &Tengo{
		contract: c,
		world:    world,
		path:     name,
		state:    &tengo.Map{Value: map[string]tengo.Object{}},
	}
	if err := s.compile(src); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Tengo) compile(src []byte) error {
	full := string(src) + "\n" + tengoDispatchScript
	script := tengo.NewScript([]byte(full))
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return fmt.Errorf("source: compile %s: %w", s.path, err)
	}
	s.compiled = compiled
	return nil
}

// Reload recompiles the script from disk or embed. The state map is kept;
// on error the previous program keeps running.
func (s *Tengo) Reload() error {
	src, err := prefabs.LoadScript(s.path)
	if err != nil {
		return fmt.Errorf("source: load script %s: %w", s.path, err)
	}
	return s.compile(src)
}

func (s *Tengo) String() string {
	return "tengo:" + s.path
}

func (s *Tengo) Update(t control.Tick, c *control.Controller, a *control.Actor) error {
	if err := s.compiled.Set("__engine", s.engine(t, c, a)); err != nil {
		return err
	}
	if err := s.compiled.Set("__state", s.state); err != nil {
		return err
	}
	if err := s.compiled.Run(); err != nil {
		return fmt.Errorf("source: run %s: %w", s.path, err)
	}
	return nil
}

func (s *Tengo) engine(t control.Tick, c *control.Controller, a *control.Actor) *tengo.ImmutableMap {
	values := map[string]tengo.Object{
		"tick": &tengo.Int{Value: int64(t.N)},
	}

	values["press"] = &tengo.UserFunction{Name: "press", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 || len(args) > 2 {
			return nil, tengo.ErrWrongNumArguments
		}
		id, err := prefabs.ResolveButton(s.contract, objectAsString(args[0]))
		if err != nil {
			return nil, err
		}
		pressed := true
		if len(args) == 2 {
			pressed = !args[1].IsFalsy()
		}
		if err := c.SetPressed(id, pressed); err != nil {
			return nil, err
		}
		return tengo.UndefinedValue, nil
	}}

	values["pressed"] = &tengo.UserFunction{Name: "pressed", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		id, err := prefabs.ResolveButton(s.contract, objectAsString(args[0]))
		if err != nil {
			return nil, err
		}
		v, err := c.Pressed(id)
		if err != nil {
			return nil, err
		}
		if v {
			return tengo.TrueValue, nil
		}
		return tengo.FalseValue, nil
	}}

	values["axis"] = &tengo.UserFunction{Name: "axis", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 3 {
			return nil, tengo.ErrWrongNumArguments
		}
		id, err := prefabs.ResolveAxis(s.contract, objectAsString(args[0]))
		if err != nil {
			return nil, err
		}
		x, ok := tengo.ToFloat64(args[1])
		if !ok {
			return nil, tengo.ErrInvalidArgumentType{Name: "x", Expected: "float", Found: args[1].TypeName()}
		}
		y, ok := tengo.ToFloat64(args[2])
		if !ok {
			return nil, tengo.ErrInvalidArgumentType{Name: "y", Expected: "float", Found: args[2].TypeName()}
		}
		if err := c.SetAxis(id, cp.Vector{X: x, Y: y}); err != nil {
			return nil, err
		}
		return tengo.UndefinedValue, nil
	}}

	values["position"] = &tengo.UserFunction{Name: "position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if a == nil {
			return tengo.UndefinedValue, nil
		}
		return s.lookup(a.Name()), nil
	}}

	values["target"] = &tengo.UserFunction{Name: "target", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		return s.lookup(objectAsString(args[0])), nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func (s *Tengo) lookup(name string) tengo.Object {
	if s.world == nil {
		return tengo.UndefinedValue
	}
	p, ok := s.world.Position(name)
	if !ok {
		return tengo.UndefinedValue
	}
	return &tengo.ImmutableMap{Value: map[string]tengo.Object{
		"x": &tengo.Float{Value: p.X},
		"y": &tengo.Float{Value: p.Y},
	}}
}

func objectAsString(obj tengo.Object) string {
	if s, ok := obj.(*tengo.String); ok {
		return strings.TrimSpace(s.Value)
	}
	return ""
}
