package source

import (
	"fmt"
	"slices"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/possess/control"
	"github.com/milk9111/possess/input"
	"github.com/milk9111/possess/prefabs"
)

type axisWrite struct {
	id input.AxisID
	v  cp.Vector
}

type keyframe struct {
	at      uint64
	buttons map[input.ButtonID]bool
	axes    []axisWrite
}

// Timeline replays authored keyframes for cutscenes. Frame times are relative
// to the first tick the timeline runs after construction or Restart. Values
// hold between keyframes; a finished, non-looping timeline stops writing.
type Timeline struct {
	name   string
	loop   bool
	length uint64
	keys   []keyframe

	started bool
	start   uint64
	cycle   uint64
	next    int
}

func NewTimeline(c *input.Contract, spec prefabs.TimelineSpec) (*Timeline, error) {
	tl := &Timeline{name: spec.Name, loop: spec.Loop, length: spec.Length}
	for _, k := range spec.Keys {
		kf := keyframe{at: k.At, buttons: map[input.ButtonID]bool{}}
		for _, name := range k.Release {
			id, err := prefabs.ResolveButton(c, name)
			if err != nil {
				return nil, fmt.Errorf("source: timeline %s at %d: %w", spec.Name, k.At, err)
			}
			kf.buttons[id] = false
		}
		for _, name := range k.Press {
			id, err := prefabs.ResolveButton(c, name)
			if err != nil {
				return nil, fmt.Errorf("source: timeline %s at %d: %w", spec.Name, k.At, err)
			}
			kf.buttons[id] = true
		}
		for name, v := range k.Axes {
			id, err := prefabs.ResolveAxis(c, name)
			if err != nil {
				return nil, fmt.Errorf("source: timeline %s at %d: %w", spec.Name, k.At, err)
			}
			kf.axes = append(kf.axes, axisWrite{id: id, v: cp.Vector{X: v.X, Y: v.Y}})
		}
		slices.SortFunc(kf.axes, func(a, b axisWrite) int { return int(a.id) - int(b.id) })
		tl.keys = append(tl.keys, kf)
	}
	slices.SortStableFunc(tl.keys, func(a, b keyframe) int {
		switch {
		case a.at < b.at:
			return -1
		case a.at > b.at:
			return 1
		}
		return 0
	})
	if tl.length == 0 && len(tl.keys) > 0 {
		tl.length = tl.keys[len(tl.keys)-1].at + 1
	}
	return tl, nil
}

// LoadTimeline reads a timeline prefab and builds it against c.
func LoadTimeline(c *input.Contract, filename string) (*Timeline, error) {
	spec, err := prefabs.LoadSpec[prefabs.TimelineSpec](filename)
	if err != nil {
		return nil, err
	}
	if spec.Name == "" {
		spec.Name = filename
	}
	return NewTimeline(c, spec)
}

func (tl *Timeline) String() string {
	return "timeline:" + tl.name
}

// Restart rewinds the timeline; the next Update is frame 0.
func (tl *Timeline) Restart() {
	tl.started = false
	tl.next = 0
}

// Done reports whether a non-looping timeline has run past its length.
func (tl *Timeline) Done(t control.Tick) bool {
	return !tl.loop && tl.started && t.N-tl.start >= tl.length
}

func (tl *Timeline) Update(t control.Tick, c *control.Controller, _ *control.Actor) error {
	if !tl.started {
		tl.started = true
		tl.start = t.N
		tl.cycle = 0
		tl.next = 0
	}

	rel := t.N - tl.start
	if tl.loop && tl.length > 0 {
		if cycle := rel / tl.length; cycle != tl.cycle {
			tl.cycle = cycle
			tl.next = 0
		}
		rel %= tl.length
	} else if rel >= tl.length {
		return nil
	}

	for tl.next < len(tl.keys) && tl.keys[tl.next].at <= rel {
		if err := tl.apply(tl.keys[tl.next], c); err != nil {
			return err
		}
		tl.next++
	}
	return nil
}

func (tl *Timeline) apply(k keyframe, c *control.Controller) error {
	ids := make([]input.ButtonID, 0, len(k.buttons))
	for id := range k.buttons {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if err := c.SetPressed(id, k.buttons[id]); err != nil {
			return err
		}
	}
	for _, a := range k.axes {
		if err := c.SetAxis(a.id, a.v); err != nil {
			return err
		}
	}
	return nil
}
