package ecs

import "sort"

// Phase orders systems within one tick.
type Phase int

const (
	// PhaseDecide runs decision sources: they write controller state.
	PhaseDecide Phase = iota
	// PhaseConsume runs systems that read controller state through actors.
	PhaseConsume
	// PhasePhysics integrates bodies.
	PhasePhysics
	// PhaseCleanup runs after everything else in the tick.
	PhaseCleanup
)

func (p Phase) String() string {
	switch p {
	case PhaseDecide:
		return "decide"
	case PhaseConsume:
		return "consume"
	case PhasePhysics:
		return "physics"
	case PhaseCleanup:
		return "cleanup"
	}
	return "unknown"
}

// System updates a world once per tick.
type System interface {
	Update(w *World)
}

// SystemFunc adapts a function to System.
type SystemFunc func(w *World)

func (f SystemFunc) Update(w *World) { f(w) }

type scheduled struct {
	phase  Phase
	system System
}

// Scheduler runs systems in phase order; systems in the same phase keep
// registration order.
type Scheduler struct {
	systems []scheduled
	sorted  bool
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

func (s *Scheduler) Add(phase Phase, system System) {
	if system == nil {
		return
	}
	s.systems = append(s.systems, scheduled{phase: phase, system: system})
	s.sorted = false
}

func (s *Scheduler) Update(w *World) {
	s.ensureSorted()
	for _, sc := range s.systems {
		sc.system.Update(w)
	}
}

func (s *Scheduler) ensureSorted() {
	if s.sorted {
		return
	}
	sort.SliceStable(s.systems, func(i, j int) bool {
		return s.systems[i].phase < s.systems[j].phase
	})
	s.sorted = true
}
