package control

import (
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"
)

// Tick identifies one simulation step.
type Tick struct {
	N  uint64
	DT time.Duration
}

// Source is a decision source: it writes its decisions into c once per tick.
// a is the actor c currently drives, or nil. Sources may read the world
// through a; they write only through c.
type Source interface {
	Update(t Tick, c *Controller, a *Actor) error
}

type binding struct {
	handle  Handle
	src     Source
	enabled bool
}

// Director is the orchestration side of the swap protocol. It keeps one
// active source per controller, attaches controllers to actors, and runs the
// sources once per tick. It must only be used between ticks or from the
// decide phase. A source bound during Decide first runs on the next tick; one
// unbound during Decide does not run again.
type Director struct {
	registry      *Registry
	log           *zap.Logger
	resetOnAttach bool

	bindings []*binding
	drivenBy map[Handle]*Actor
}

type DirectorOption func(*Director)

// WithResetOnAttach sets the default attach-time reset policy.
func WithResetOnAttach(reset bool) DirectorOption {
	return func(d *Director) { d.resetOnAttach = reset }
}

func NewDirector(r *Registry, log *zap.Logger, opts ...DirectorOption) *Director {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Director{
		registry: r,
		log:      log,
		drivenBy: make(map[Handle]*Actor),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Director) Registry() *Registry {
	return d.registry
}

// Bind makes src the only active source for the controller behind h,
// replacing any previous one.
func (d *Director) Bind(h Handle, src Source) error {
	c, ok := d.registry.Get(h)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownController, h)
	}
	if src == nil {
		d.Unbind(h)
		return nil
	}
	if b := d.binding(h); b != nil {
		b.src = src
		b.enabled = true
	} else {
		d.bindings = append(d.bindings, &binding{handle: h, src: src, enabled: true})
	}
	d.log.Debug("source bound", zap.String("controller", c.Name()), zap.String("source", sourceName(src)))
	return nil
}

// Unbind removes the source for h. The controller keeps its last values.
func (d *Director) Unbind(h Handle) {
	d.bindings = slices.DeleteFunc(d.bindings, func(b *binding) bool { return b.handle == h })
}

// SetEnabled pauses or resumes the source bound to h. It reports whether a
// binding exists.
func (d *Director) SetEnabled(h Handle, enabled bool) bool {
	b := d.binding(h)
	if b == nil {
		return false
	}
	b.enabled = enabled
	return true
}

// Source returns the source bound to h.
func (d *Director) Source(h Handle) (Source, bool) {
	b := d.binding(h)
	if b == nil {
		return nil, false
	}
	return b.src, true
}

func (d *Director) binding(h Handle) *binding {
	for _, b := range d.bindings {
		if b.handle == h {
			return b
		}
	}
	return nil
}

type possessConfig struct {
	reset bool
}

type PossessOption func(*possessConfig)

// WithReset overrides the director's attach-time reset policy for one call.
// With reset, the controller's state goes back to defaults before the actor
// can read it.
func WithReset(reset bool) PossessOption {
	return func(c *possessConfig) { c.reset = reset }
}

// Possess attaches the controller behind h to a. If another actor is driven
// by that controller it is detached first. NoController is equivalent to
// Release.
func (d *Director) Possess(a *Actor, h Handle, opts ...PossessOption) error {
	if !h.Valid() {
		d.Release(a)
		return nil
	}
	c, ok := d.registry.Get(h)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownController, h)
	}

	cfg := possessConfig{reset: d.resetOnAttach}
	for _, opt := range opts {
		opt(&cfg)
	}

	if prev, ok := d.ActorFor(h); ok && prev != a {
		prev.Detach()
		d.log.Debug("controller handed off", zap.String("controller", c.Name()),
			zap.String("from", prev.Name()), zap.String("to", a.Name()))
	}
	if old := a.ControllerHandle(); old != h && d.drivenBy[old] == a {
		delete(d.drivenBy, old)
	}

	if cfg.reset {
		c.Reset()
	}
	a.SetController(h)
	d.drivenBy[h] = a

	d.log.Debug("actor possessed", zap.String("actor", a.Name()),
		zap.String("controller", c.Name()), zap.Bool("reset", cfg.reset))
	return nil
}

// Release detaches whatever controller a holds. The controller's state is
// left as it was.
func (d *Director) Release(a *Actor) {
	h := a.ControllerHandle()
	if cur, ok := d.drivenBy[h]; ok && cur == a {
		delete(d.drivenBy, h)
	}
	a.Detach()
	if h.Valid() {
		d.log.Debug("actor released", zap.String("actor", a.Name()), zap.Stringer("controller", h))
	}
}

// Swap exchanges the controllers of a and b in one step. Each controller is
// attached to its new actor under the same reset policy as Possess.
func (d *Director) Swap(a, b *Actor, opts ...PossessOption) {
	cfg := possessConfig{reset: d.resetOnAttach}
	for _, opt := range opts {
		opt(&cfg)
	}

	ha, hb := a.ControllerHandle(), b.ControllerHandle()
	if cfg.reset {
		for _, h := range []Handle{ha, hb} {
			if c, ok := d.registry.Get(h); ok {
				c.Reset()
			}
		}
	}
	a.SetController(hb)
	b.SetController(ha)
	if hb.Valid() {
		d.drivenBy[hb] = a
	}
	if ha.Valid() {
		d.drivenBy[ha] = b
	}
	d.log.Debug("actors swapped", zap.String("a", a.Name()), zap.String("b", b.Name()),
		zap.Bool("reset", cfg.reset))
}

// ActorFor returns the actor the director last attached h to, if that actor
// still holds it.
func (d *Director) ActorFor(h Handle) (*Actor, bool) {
	a, ok := d.drivenBy[h]
	if !ok || a.ControllerHandle() != h {
		return nil, false
	}
	return a, true
}

// Decide runs every enabled source once, in binding order. Bindings whose
// controller was destroyed are dropped. Source errors are logged and do not
// stop the remaining sources.
func (d *Director) Decide(t Tick) {
	var dead []Handle
	for _, b := range slices.Clone(d.bindings) {
		if d.binding(b.handle) != b {
			continue
		}
		c, ok := d.registry.Get(b.handle)
		if !ok {
			d.log.Warn("dropping binding for destroyed controller",
				zap.Stringer("controller", b.handle), zap.String("source", sourceName(b.src)))
			dead = append(dead, b.handle)
			continue
		}
		if !b.enabled {
			continue
		}
		a, _ := d.ActorFor(b.handle)
		if err := b.src.Update(t, c, a); err != nil {
			d.log.Error("decision source failed", zap.String("controller", c.Name()),
				zap.String("source", sourceName(b.src)), zap.Uint64("tick", t.N), zap.Error(err))
		}
	}
	for _, h := range dead {
		delete(d.drivenBy, h)
		d.Unbind(h)
	}
}

func sourceName(src Source) string {
	if s, ok := src.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", src)
}
