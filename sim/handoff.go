package sim

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/milk9111/possess/control"
)

// HandOff moves an actor to a controller. An empty Controller releases the
// actor; a nil Reset uses the configured attach policy.
type HandOff struct {
	Actor      string
	Controller string
	Reset      *bool
}

// RequestHandOff queues h for the start of the next tick. Names are checked
// now so callers learn about typos immediately.
func (s *Sim) RequestHandOff(h HandOff) error {
	if err := s.checkHandOff(h); err != nil {
		return err
	}
	s.pending = append(s.pending, func() error { return s.handOff(h) })
	return nil
}

// RequestSwap queues an exchange of the controllers driving two actors.
func (s *Sim) RequestSwap(a, b string) error {
	actorA, ok := s.Actor(a)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownActor, a)
	}
	actorB, ok := s.Actor(b)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownActor, b)
	}
	s.pending = append(s.pending, func() error {
		s.director.Swap(actorA, actorB)
		return nil
	})
	return nil
}

func (s *Sim) checkHandOff(h HandOff) error {
	if _, ok := s.actors[h.Actor]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownActor, h.Actor)
	}
	if h.Controller == "" {
		return nil
	}
	if _, ok := s.controllers[h.Controller]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownController, h.Controller)
	}
	return nil
}

func (s *Sim) applyHandOffs() {
	for len(s.scheduled) > 0 && s.scheduled[0].At <= s.tick {
		spec := s.scheduled[0]
		s.scheduled = s.scheduled[1:]
		h := HandOff{Actor: spec.Actor, Controller: spec.Controller, Reset: spec.Reset}
		if err := s.handOff(h); err != nil {
			s.log.Warn("scheduled hand-off failed", zap.Uint64("tick", s.tick), zap.Error(err))
		}
	}

	pending := s.pending
	s.pending = nil
	for _, fn := range pending {
		if err := fn(); err != nil {
			s.log.Warn("hand-off failed", zap.Uint64("tick", s.tick), zap.Error(err))
		}
	}
}

func (s *Sim) handOff(h HandOff) error {
	if err := s.checkHandOff(h); err != nil {
		return err
	}
	actor, _ := s.Actor(h.Actor)
	if h.Controller == "" {
		s.director.Release(actor)
		return nil
	}
	var opts []control.PossessOption
	if h.Reset != nil {
		opts = append(opts, control.WithReset(*h.Reset))
	}
	return s.director.Possess(actor, s.controllers[h.Controller].handle, opts...)
}
