package ecs

// store is the type-erased view of a sparseSet the World needs to clean up
// after destroyed entities.
type store interface {
	remove(e Entity) bool
}

// World owns entities and their components.
type World struct {
	entities entityStore
	stores   map[ComponentID]store
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{stores: make(map[ComponentID]store)}
}

// CreateEntity allocates a new entity.
func (w *World) CreateEntity() Entity {
	return w.entities.create()
}

// DestroyEntity removes e and all of its components. It reports whether e
// was alive.
func (w *World) DestroyEntity(e Entity) bool {
	if !w.entities.destroy(e) {
		return false
	}
	for _, s := range w.stores {
		s.remove(e)
	}
	return true
}

// IsAlive reports whether an entity handle is valid.
func (w *World) IsAlive(e Entity) bool {
	return w.entities.isAlive(e)
}

func setFor[T any](w *World, c Component[T], create bool) *sparseSet[T] {
	if s, ok := w.stores[c.id]; ok {
		return s.(*sparseSet[T])
	}
	if !create {
		return nil
	}
	s := &sparseSet[T]{}
	w.stores[c.id] = s
	return s
}

// Add attaches or replaces e's component of type T.
func Add[T any](w *World, e Entity, c Component[T], v *T) error {
	if !w.IsAlive(e) {
		return ErrEntityNotAlive
	}
	if v == nil {
		return ErrNilComponent
	}
	setFor(w, c, true).set(e, v)
	return nil
}

// Get returns e's component of type T.
func Get[T any](w *World, e Entity, c Component[T]) (*T, bool) {
	s := setFor(w, c, false)
	if s == nil {
		return nil, false
	}
	return s.get(e)
}

// ForEach2 visits every entity with both A and B, iterating the smaller set.
func ForEach2[A, B any](w *World, ca Component[A], cb Component[B], fn func(e Entity, a *A, b *B)) {
	sa, sb := setFor(w, ca, false), setFor(w, cb, false)
	if sa == nil || sb == nil {
		return
	}
	if sa.len() <= sb.len() {
		for i, e := range sa.denseEntities {
			if b, ok := sb.get(e); ok {
				fn(e, sa.denseValues[i], b)
			}
		}
		return
	}
	for i, e := range sb.denseEntities {
		if a, ok := sa.get(e); ok {
			fn(e, a, sb.denseValues[i])
		}
	}
}
