package sim

import (
	"fmt"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/possess/control"
	"github.com/milk9111/possess/prefabs"
	"github.com/milk9111/possess/source"
)

// controllerEntry is one scene controller and the source bound to it. file is
// the prefab or script the source was built from, for reloads.
type controllerEntry struct {
	name   string
	handle control.Handle
	spec   prefabs.SourceSpec
	file   string
	src    control.Source
}

func (s *Sim) buildSource(spec prefabs.SourceSpec) (control.Source, string, error) {
	switch spec.Kind {
	case "":
		return nil, "", nil
	case prefabs.SourceHuman:
		params, err := prefabs.DecodeSourceParams[prefabs.HumanParams](spec.Params)
		if err != nil {
			return nil, "", err
		}
		if params.Bindings == "" {
			params.Bindings = "bindings.yaml"
		}
		bindings, err := prefabs.LoadSpec[prefabs.BindingsSpec](params.Bindings)
		if err != nil {
			return nil, "", err
		}
		h, err := source.NewHuman(s.contract, bindings, s.device)
		return h, params.Bindings, err
	case prefabs.SourceAI:
		params, err := prefabs.DecodeSourceParams[prefabs.AIParams](spec.Params)
		if err != nil {
			return nil, "", err
		}
		ai, err := source.NewAI(s.contract, params, s)
		return ai, "", err
	case prefabs.SourceTengo:
		params, err := prefabs.DecodeSourceParams[prefabs.ScriptParams](spec.Params)
		if err != nil {
			return nil, "", err
		}
		t, err := source.NewTengo(s.contract, params.Script, s)
		return t, params.Script, err
	case prefabs.SourceLua:
		params, err := prefabs.DecodeSourceParams[prefabs.ScriptParams](spec.Params)
		if err != nil {
			return nil, "", err
		}
		l, err := source.NewLua(s.contract, params.Script, s)
		return l, params.Script, err
	case prefabs.SourceTimeline:
		params, err := prefabs.DecodeSourceParams[prefabs.TimelineParams](spec.Params)
		if err != nil {
			return nil, "", err
		}
		tl, err := source.LoadTimeline(s.contract, params.Timeline)
		return tl, params.Timeline, err
	case prefabs.SourceOverride:
		return s.buildOverride(spec)
	case prefabs.SourceReplay:
		params, err := prefabs.DecodeSourceParams[prefabs.ReplayParams](spec.Params)
		if err != nil {
			return nil, "", err
		}
		rec, err := source.LoadRecordingFile(params.Recording)
		if err != nil {
			return nil, "", err
		}
		r, err := source.NewReplay(s.contract, rec, params.Loop)
		return r, params.Recording, err
	}
	return nil, "", fmt.Errorf("%w: %q", prefabs.ErrUnknownSource, spec.Kind)
}

// buildOverride builds the override and its underlying source. The file is
// the underlying source's, so edits to it reach the override.
func (s *Sim) buildOverride(spec prefabs.SourceSpec) (control.Source, string, error) {
	params, err := prefabs.DecodeSourceParams[prefabs.OverrideParams](spec.Params)
	if err != nil {
		return nil, "", err
	}
	var (
		under control.Source
		file  string
	)
	if params.Under != nil {
		under, file, err = s.buildSource(*params.Under)
		if err != nil {
			return nil, "", fmt.Errorf("override: %w", err)
		}
	}

	o := source.NewOverride(s.contract, under)
	for name, pressed := range params.Hold {
		if err := o.Hold(name, pressed); err != nil {
			closeSource(under)
			return nil, "", err
		}
	}
	for name, v := range params.Axes {
		if err := o.HoldAxis(name, cp.Vector{X: v.X, Y: v.Y}); err != nil {
			closeSource(under)
			return nil, "", err
		}
	}
	return o, file, nil
}

// bind attaches src to the entry's controller, under the recorder when the
// controller is being recorded.
func (s *Sim) bind(e *controllerEntry, src control.Source) error {
	if old := e.src; old != nil && old != src {
		defer closeSource(old)
	}
	e.src = src
	if src == nil {
		s.director.Unbind(e.handle)
		return nil
	}
	if s.recorder != nil && e.name == s.recordName {
		s.recorder.Wrap(src)
		src = s.recorder
	}
	return s.director.Bind(e.handle, src)
}

func (s *Sim) closeSources() {
	for _, e := range s.controllers {
		closeSource(e.src)
	}
}

// closeSource releases script VMs, including one under an override.
func closeSource(src control.Source) {
	switch src := src.(type) {
	case *source.Lua:
		src.Close()
	case *source.Override:
		closeSource(src.Under())
	}
}
