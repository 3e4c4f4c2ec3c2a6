// Package source holds the decision sources that write into a
// control.Controller once per tick: human devices, AI heuristics, tengo and
// Lua scripts, cutscene timelines, debug overrides and recorded replays.
//
// Every source addresses channels by contract name, resolved to ids when the
// source is built, so two sources built against the same contract are
// interchangeable on any controller.
package source

import (
	"errors"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/possess/control"
)

var ErrContractMismatch = errors.New("source: channel contract mismatch")

// Perception is the read-only world view sources that need situational
// awareness use. Positions are looked up by actor name.
type Perception interface {
	Position(actor string) (cp.Vector, bool)
}

var (
	_ control.Source = (*Human)(nil)
	_ control.Source = (*AI)(nil)
	_ control.Source = (*Tengo)(nil)
	_ control.Source = (*Lua)(nil)
	_ control.Source = (*Timeline)(nil)
	_ control.Source = (*Override)(nil)
	_ control.Source = (*Recorder)(nil)
	_ control.Source = (*Replay)(nil)
)

func axisSign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
