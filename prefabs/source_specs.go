package prefabs

import "gopkg.in/yaml.v3"

// Decision source kinds accepted in SourceSpec.Kind.
const (
	SourceHuman    = "human"
	SourceAI       = "ai"
	SourceTengo    = "tengo"
	SourceLua      = "lua"
	SourceTimeline = "timeline"
	SourceOverride = "override"
	SourceReplay   = "replay"
)

// SourceSpec names a decision source kind; Params is decoded per kind with
// DecodeSourceParams.
type SourceSpec struct {
	Kind   string         `yaml:"kind"`
	Params map[string]any `yaml:"params"`
}

func DecodeSourceParams[T any](raw map[string]any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

type HumanParams struct {
	Bindings string `yaml:"bindings"`
}

type AIParams struct {
	Target      string  `yaml:"target"`
	FollowRange float64 `yaml:"follow_range"`
	AttackRange float64 `yaml:"attack_range"`
	Move        string  `yaml:"move"`
	Attack      string  `yaml:"attack"`
	Jump        string  `yaml:"jump"`
	// JumpHeight is how far above the actor the target must be before the
	// AI presses jump. Zero disables jumping.
	JumpHeight float64 `yaml:"jump_height"`
}

type ScriptParams struct {
	Script string `yaml:"script"`
}

type TimelineParams struct {
	Timeline string `yaml:"timeline"`
}

type ReplayParams struct {
	Recording string `yaml:"recording"`
	Loop      bool   `yaml:"loop"`
}

// OverrideParams configures the debug override. Under, when set, runs first
// each tick; Hold and Axes are then written on top of whatever it wrote.
type OverrideParams struct {
	Under *SourceSpec           `yaml:"under"`
	Hold  map[string]bool       `yaml:"hold"`
	Axes  map[string]VectorSpec `yaml:"axes"`
}
