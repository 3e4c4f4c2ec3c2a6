package control

import (
	"errors"

	"github.com/milk9111/possess/input"
)

var ErrUnknownController = errors.New("control: unknown controller")

// Registry creates and destroys Controllers and resolves Handles to them.
// Actors never own a Controller; they hold a Handle into a Registry.
type Registry struct {
	layout input.Layout
	slots  []*Controller
	gen    []uint32
	free   []uint32
}

// NewRegistry creates a registry whose controllers all share layout.
func NewRegistry(layout input.Layout) *Registry {
	return &Registry{layout: layout}
}

func (r *Registry) Layout() input.Layout {
	return r.layout
}

// Create allocates a Controller with every channel at its default.
func (r *Registry) Create(name string) *Controller {
	var idx uint32
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		r.slots = append(r.slots, nil)
		r.gen = append(r.gen, 0)
		idx = uint32(len(r.slots))
	}
	c := &Controller{
		handle: makeHandle(idx, r.gen[idx-1]),
		name:   name,
		state:  input.NewState(r.layout),
	}
	r.slots[idx-1] = c
	return c
}

// Destroy releases the controller behind h. Actors still holding h resolve
// to no controller afterwards. It returns false for stale or empty handles.
func (r *Registry) Destroy(h Handle) bool {
	if !r.alive(h) {
		return false
	}
	idx := h.index() - 1
	r.slots[idx] = nil
	r.gen[idx]++
	r.free = append(r.free, h.index())
	return true
}

func (r *Registry) alive(h Handle) bool {
	idx := h.index()
	if idx == 0 || int(idx) > len(r.gen) {
		return false
	}
	return r.gen[idx-1] == h.generation() && r.slots[idx-1] != nil
}

// Get resolves h.
func (r *Registry) Get(h Handle) (*Controller, bool) {
	if r == nil || !r.alive(h) {
		return nil, false
	}
	return r.slots[h.index()-1], true
}

// Lookup finds a live controller by name.
func (r *Registry) Lookup(name string) (*Controller, bool) {
	for _, c := range r.slots {
		if c != nil && c.name == name {
			return c, true
		}
	}
	return nil, false
}

func (r *Registry) Len() int {
	return len(r.slots) - len(r.free)
}
