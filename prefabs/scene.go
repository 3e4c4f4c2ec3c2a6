package prefabs

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownController = errors.New("prefabs: unknown controller")
	ErrUnknownActor      = errors.New("prefabs: unknown actor")
	ErrDuplicateName     = errors.New("prefabs: duplicate name")
	ErrUnknownSource     = errors.New("prefabs: unknown source kind")
)

var sourceKinds = map[string]bool{
	SourceHuman:    true,
	SourceAI:       true,
	SourceTengo:    true,
	SourceLua:      true,
	SourceTimeline: true,
	SourceOverride: true,
	SourceReplay:   true,
}

func LoadScene(filename string) (*SceneSpec, error) {
	spec, err := LoadSpec[SceneSpec](filename)
	if err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("prefabs: %s: %w", filename, err)
	}
	return &spec, nil
}

// Validate checks names and cross references. Channel names inside sources
// are checked when the sources are built against the contract.
func (s *SceneSpec) Validate() error {
	controllers := make(map[string]bool, len(s.Controllers))
	for _, c := range s.Controllers {
		if c.Name == "" || controllers[c.Name] {
			return fmt.Errorf("%w: controller %q", ErrDuplicateName, c.Name)
		}
		if c.Source.Kind != "" && !sourceKinds[c.Source.Kind] {
			return fmt.Errorf("%w: %q on controller %q", ErrUnknownSource, c.Source.Kind, c.Name)
		}
		controllers[c.Name] = true
	}

	actors := make(map[string]bool, len(s.Actors))
	for _, a := range s.Actors {
		if a.Name == "" || actors[a.Name] {
			return fmt.Errorf("%w: actor %q", ErrDuplicateName, a.Name)
		}
		if a.Controller != "" && !controllers[a.Controller] {
			return fmt.Errorf("%w: %q on actor %q", ErrUnknownController, a.Controller, a.Name)
		}
		actors[a.Name] = true
	}

	for _, h := range s.HandOffs {
		if !actors[h.Actor] {
			return fmt.Errorf("%w: %q in hand-off at %d", ErrUnknownActor, h.Actor, h.At)
		}
		if h.Controller != "" && !controllers[h.Controller] {
			return fmt.Errorf("%w: %q in hand-off at %d", ErrUnknownController, h.Controller, h.At)
		}
	}
	return nil
}
