package input

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is returned for any channel access with an identifier outside
// the configured count.
var ErrOutOfRange = errors.New("input: channel out of range")

// ErrLayoutMismatch is returned when values shaped for one Layout are applied
// to another.
var ErrLayoutMismatch = errors.New("input: layout mismatch")

// ChannelKind names the channel set a RangeError refers to.
type ChannelKind string

const (
	KindButton ChannelKind = "button"
	KindAxis   ChannelKind = "axis"
)

// RangeError carries the offending identifier. It unwraps to ErrOutOfRange.
type RangeError struct {
	Kind  ChannelKind
	ID    int
	Count int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("input: %s %d out of range [0, %d)", e.Kind, e.ID, e.Count)
}

func (e *RangeError) Unwrap() error {
	return ErrOutOfRange
}
