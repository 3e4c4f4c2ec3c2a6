package input

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

var (
	ErrEmptyChannelName     = errors.New("input: empty channel name")
	ErrDuplicateChannelName = errors.New("input: duplicate channel name")
)

// Contract is the channel table shared by every decision source and consumer
// of one game build. Ids are positions in the name lists, so reordering names
// renumbers channels.
//
// A Contract is immutable once built.
type Contract struct {
	buttons     []string
	axes        []string
	buttonIndex map[string]ButtonID
	axisIndex   map[string]AxisID
	fingerprint uint64
}

// NewContract builds a Contract from ordered button and axis names.
func NewContract(buttons, axes []string) (*Contract, error) {
	c := &Contract{
		buttons:     append([]string(nil), buttons...),
		axes:        append([]string(nil), axes...),
		buttonIndex: make(map[string]ButtonID, len(buttons)),
		axisIndex:   make(map[string]AxisID, len(axes)),
	}
	for i, name := range c.buttons {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("%w: button %d", ErrEmptyChannelName, i)
		}
		if _, ok := c.buttonIndex[name]; ok {
			return nil, fmt.Errorf("%w: button %q", ErrDuplicateChannelName, name)
		}
		c.buttonIndex[name] = ButtonID(i)
	}
	for i, name := range c.axes {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("%w: axis %d", ErrEmptyChannelName, i)
		}
		if _, ok := c.axisIndex[name]; ok {
			return nil, fmt.Errorf("%w: axis %q", ErrDuplicateChannelName, name)
		}
		c.axisIndex[name] = AxisID(i)
	}

	h := xxhash.New()
	for _, name := range c.buttons {
		_, _ = h.WriteString("b:" + name + "\n")
	}
	for _, name := range c.axes {
		_, _ = h.WriteString("a:" + name + "\n")
	}
	c.fingerprint = h.Sum64()

	return c, nil
}

// MustContract is NewContract for package-level tables; it panics on error.
func MustContract(buttons, axes []string) *Contract {
	c, err := NewContract(buttons, axes)
	if err != nil {
		panic(err)
	}
	return c
}

// Layout returns the channel counts a State needs to hold this contract.
func (c *Contract) Layout() Layout {
	return Layout{Buttons: len(c.buttons), Axes: len(c.axes)}
}

func (c *Contract) Button(name string) (ButtonID, bool) {
	id, ok := c.buttonIndex[name]
	return id, ok
}

func (c *Contract) Axis(name string) (AxisID, bool) {
	id, ok := c.axisIndex[name]
	return id, ok
}

// ButtonName returns the name of id, or "" if id is not in the contract.
func (c *Contract) ButtonName(id ButtonID) string {
	if id < 0 || int(id) >= len(c.buttons) {
		return ""
	}
	return c.buttons[id]
}

// AxisName returns the name of id, or "" if id is not in the contract.
func (c *Contract) AxisName(id AxisID) string {
	if id < 0 || int(id) >= len(c.axes) {
		return ""
	}
	return c.axes[id]
}

func (c *Contract) Buttons() []string {
	return append([]string(nil), c.buttons...)
}

func (c *Contract) Axes() []string {
	return append([]string(nil), c.axes...)
}

// Fingerprint is a stable hash of the ordered channel names. Two builds agree
// on channel numbering iff their fingerprints match.
func (c *Contract) Fingerprint() uint64 {
	return c.fingerprint
}
