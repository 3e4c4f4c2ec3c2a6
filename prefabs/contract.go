package prefabs

import (
	"errors"
	"fmt"

	"github.com/milk9111/possess/input"
)

var ErrUnknownChannel = errors.New("prefabs: unknown channel")

// LoadContract builds the channel contract from a channels prefab.
func LoadContract(filename string) (*input.Contract, error) {
	spec, err := LoadSpec[ChannelsSpec](filename)
	if err != nil {
		return nil, err
	}
	c, err := input.NewContract(spec.Buttons, spec.Axes)
	if err != nil {
		return nil, fmt.Errorf("prefabs: %s: %w", filename, err)
	}
	return c, nil
}

// ResolveButton looks up a button name, reporting ErrUnknownChannel.
func ResolveButton(c *input.Contract, name string) (input.ButtonID, error) {
	id, ok := c.Button(name)
	if !ok {
		return 0, fmt.Errorf("%w: button %q", ErrUnknownChannel, name)
	}
	return id, nil
}

// ResolveAxis looks up an axis name, reporting ErrUnknownChannel.
func ResolveAxis(c *input.Contract, name string) (input.AxisID, error) {
	id, ok := c.Axis(name)
	if !ok {
		return 0, fmt.Errorf("%w: axis %q", ErrUnknownChannel, name)
	}
	return id, nil
}
