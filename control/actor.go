package control

import "sync/atomic"

// Actor is the attachment point consumers read input through. It holds at
// most one non-owning reference to a Controller and never creates, resets or
// destroys one.
type Actor struct {
	name     string
	registry *Registry
	ref      atomic.Uint64
}

// NewActor creates an Actor with no controller attached.
func NewActor(name string, r *Registry) *Actor {
	return &Actor{name: name, registry: r}
}

func (a *Actor) Name() string {
	return a.name
}

// SetController replaces the current reference unconditionally.
// NoController detaches.
func (a *Actor) SetController(h Handle) {
	a.ref.Store(uint64(h))
}

func (a *Actor) Detach() {
	a.SetController(NoController)
}

// ControllerHandle returns the stored handle, which may be stale.
func (a *Actor) ControllerHandle() Handle {
	return Handle(a.ref.Load())
}

// Controller resolves the attached controller. It returns false when nothing
// is attached or the attached controller has been destroyed; both are normal
// states consumers must handle.
func (a *Actor) Controller() (*Controller, bool) {
	h := a.ControllerHandle()
	if !h.Valid() {
		return nil, false
	}
	return a.registry.Get(h)
}
