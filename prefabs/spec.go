package prefabs

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadSpec reads a yaml prefab into T.
func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// ChannelsSpec is the channel contract: ids are list positions.
type ChannelsSpec struct {
	Buttons []string `yaml:"buttons"`
	Axes    []string `yaml:"axes"`
}

// BindingsSpec maps device inputs onto contract channels for the human
// decision source.
type BindingsSpec struct {
	Buttons map[string]ButtonBindingSpec `yaml:"buttons"`
	Axes    map[string]AxisBindingSpec   `yaml:"axes"`
}

type ButtonBindingSpec struct {
	Keys    []string `yaml:"keys"`
	Gamepad []string `yaml:"gamepad"`
}

type AxisBindingSpec struct {
	X        AxisComponentSpec `yaml:"x"`
	Y        AxisComponentSpec `yaml:"y"`
	Deadzone float64           `yaml:"deadzone"`
}

type AxisComponentSpec struct {
	Negative []string `yaml:"negative"`
	Positive []string `yaml:"positive"`
	Gamepad  string   `yaml:"gamepad"`
	Invert   bool     `yaml:"invert"`
}

type SceneSpec struct {
	Name        string           `yaml:"name"`
	Channels    string           `yaml:"channels"`
	Gravity     VectorSpec       `yaml:"gravity"`
	Ground      float64          `yaml:"ground"`
	Controllers []ControllerSpec `yaml:"controllers"`
	Actors      []ActorSpec      `yaml:"actors"`
	HandOffs    []HandOffSpec    `yaml:"handoffs"`
}

type ControllerSpec struct {
	Name   string     `yaml:"name"`
	Source SourceSpec `yaml:"source"`
}

type ActorSpec struct {
	Name       string   `yaml:"name"`
	Controller string   `yaml:"controller"`
	Body       BodySpec `yaml:"body"`
}

type BodySpec struct {
	X         float64    `yaml:"x"`
	Y         float64    `yaml:"y"`
	Width     float64    `yaml:"width"`
	Height    float64    `yaml:"height"`
	Mass      float64    `yaml:"mass"`
	MoveSpeed float64    `yaml:"move_speed"`
	JumpSpeed float64    `yaml:"jump_speed"`
	Color     *YAMLColor `yaml:"color"`
}

// HandOffSpec schedules a possession change between ticks. An empty
// Controller releases the actor. A nil Reset uses the configured default.
type HandOffSpec struct {
	At         uint64 `yaml:"at"`
	Actor      string `yaml:"actor"`
	Controller string `yaml:"controller"`
	Reset      *bool  `yaml:"reset"`
}

type TimelineSpec struct {
	Name   string         `yaml:"name"`
	Loop   bool           `yaml:"loop"`
	Length uint64         `yaml:"length"`
	Keys   []KeyframeSpec `yaml:"keys"`
}

// KeyframeSpec applies its writes on tick At (relative to the timeline
// start) and holds them until a later keyframe overwrites them.
type KeyframeSpec struct {
	At      uint64                `yaml:"at"`
	Press   []string              `yaml:"press"`
	Release []string              `yaml:"release"`
	Axes    map[string]VectorSpec `yaml:"axes"`
}

type VectorSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.Color = color.NRGBA{R: r, G: g, B: b, A: a}
	return nil
}
