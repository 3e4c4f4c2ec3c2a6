package sim

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jakecoffman/cp"

	"github.com/milk9111/possess/input"
	"github.com/milk9111/possess/prefabs"
	"github.com/milk9111/possess/source"
)

func useTempPrefabs(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	prev := prefabs.Dir()
	prefabs.SetDir(dir)
	t.Cleanup(func() { prefabs.SetDir(prev) })
	return dir
}

const overrideScene = `
name: pinned
channels: channels.yaml
gravity: { x: 0, y: 0 }
controllers:
  - name: debug
    source:
      kind: override
      params:
        under:
          kind: tengo
          params:
            script: walker.tengo
        hold:
          legs_action: true
        axes:
          aim: { x: 0, y: -1 }
  - name: bare
    source:
      kind: override
actors:
  - name: bot
    controller: debug
    body: { x: 0, y: 0, width: 10, height: 10, mass: 1, move_speed: 100 }
`

func TestOverrideFromScene(t *testing.T) {
	dir := useTempPrefabs(t)
	writeFile(t, filepath.Join(dir, "pinned.yaml"), overrideScene)
	script := filepath.Join(dir, "scripts", "walker.tengo")
	writeFile(t, script, walkerScript(1))

	s, _ := newArena(t, Options{Scene: "pinned.yaml", TickRate: 10})
	c := s.Contract()
	move, _ := c.Axis("move")
	aim, _ := c.Axis("aim")
	legs, _ := c.Button("legs_action")
	debug, _ := s.Controller("debug")

	read := func() []any {
		m, _ := debug.Axis(move)
		a, _ := debug.Axis(aim)
		l, _ := debug.Pressed(legs)
		return []any{m, a, l}
	}

	s.Step()
	if diff := cmp.Diff([]any{cp.Vector{X: 1}, cp.Vector{Y: -1}, true}, read()); diff != "" {
		t.Fatalf("override over script (-want +got):\n%s", diff)
	}

	// A reload reaches the script under the override; holds stay.
	writeFile(t, script, walkerScript(-1))
	if err := s.Reload(script); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	s.Step()
	if diff := cmp.Diff([]any{cp.Vector{X: -1}, cp.Vector{Y: -1}, true}, read()); diff != "" {
		t.Fatalf("override after reload (-want +got):\n%s", diff)
	}
	if _, ok := s.Override("debug"); !ok {
		t.Fatalf("reload should keep the override bound")
	}
	if _, ok := s.Override("bare"); !ok {
		t.Fatalf("an override without params is still an override")
	}
}

func TestOverrideUnknownChannel(t *testing.T) {
	dir := useTempPrefabs(t)
	scene := `
name: bad
channels: channels.yaml
controllers:
  - name: debug
    source:
      kind: override
      params:
        hold: { fly: true }
`
	writeFile(t, filepath.Join(dir, "bad.yaml"), scene)
	if _, err := New(Options{Scene: "bad.yaml"}, nil); !errors.Is(err, prefabs.ErrUnknownChannel) {
		t.Fatalf("expected ErrUnknownChannel, got %v", err)
	}
}

func TestPinFreezesInput(t *testing.T) {
	s, _ := newArena(t, Options{TickRate: 60})
	move, _ := s.Contract().Axis("move")

	stepTo(s, 10)
	if err := s.Pin("hero", "debug"); err != nil {
		t.Fatalf("Pin: %v", err)
	}
	if got := controllerOf(t, s, "hero"); got != "intro" {
		t.Fatalf("pin must wait for the next tick, hero on %q", got)
	}

	// The intro stops walking at 60; the pinned hero keeps going.
	stepTo(s, 80)
	if got := controllerOf(t, s, "hero"); got != "debug" {
		t.Fatalf("hero should be on the debug override, got %q", got)
	}
	debug, _ := s.Controller("debug")
	if v, _ := debug.Axis(move); v != (cp.Vector{X: 1}) {
		t.Fatalf("pinned move = %v", v)
	}
	intro, _ := s.Controller("intro")
	if v, _ := intro.Axis(move); v != (cp.Vector{}) {
		t.Fatalf("intro should have stopped, move = %v", v)
	}

	cases := []struct {
		name  string
		actor string
		ctrl  string
		want  error
	}{
		{"unknown_actor", "ghost", "debug", ErrUnknownActor},
		{"not_an_override", "hero", "player", ErrNotOverride},
		{"unknown_override", "hero", "ghost", ErrNotOverride},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := s.Pin(tc.actor, tc.ctrl); !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func controllerView(t *testing.T, s *Sim, name string) ControllerView {
	t.Helper()
	for _, v := range s.Controllers() {
		if v.Name == name {
			return v
		}
	}
	t.Fatalf("no controller %q", name)
	return ControllerView{}
}

func TestRestartTimeline(t *testing.T) {
	s, _ := newArena(t, Options{TickRate: 60})
	move, _ := s.Contract().Axis("move")
	intro, _ := s.Controller("intro")

	stepTo(s, 120)
	v := controllerView(t, s, "intro")
	if !v.Restartable || !v.Finished {
		t.Fatalf("intro should be restartable and finished: %+v", v)
	}
	if m, _ := intro.Axis(move); m != (cp.Vector{}) {
		t.Fatalf("intro should end neutral, move = %v", m)
	}

	if err := s.Restart("intro"); err != nil {
		t.Fatalf("Restart: %v", err)
	}
	s.Step()
	if m, _ := intro.Axis(move); m != (cp.Vector{X: 1}) {
		t.Fatalf("restarted intro should play its first frame, move = %v", m)
	}
	if controllerView(t, s, "intro").Finished {
		t.Fatalf("restarted intro is not finished")
	}

	if err := s.Restart("player"); !errors.Is(err, ErrNotRestartable) {
		t.Fatalf("expected ErrNotRestartable, got %v", err)
	}
	if err := s.Restart("ghost"); !errors.Is(err, ErrUnknownController) {
		t.Fatalf("expected ErrUnknownController, got %v", err)
	}
}

func TestRetargetAI(t *testing.T) {
	s, _ := newArena(t, Options{TickRate: 60})

	n, err := s.Retarget("drone")
	if err != nil || n != 1 {
		t.Fatalf("Retarget = %d, %v", n, err)
	}
	if got := controllerView(t, s, "grunt_ai").Source; got != "ai:drone" {
		t.Fatalf("grunt_ai source = %q", got)
	}
	if _, err := s.Retarget("ghost"); !errors.Is(err, ErrUnknownActor) {
		t.Fatalf("expected ErrUnknownActor, got %v", err)
	}
}

func TestRemoveActorKeepsController(t *testing.T) {
	s, logs := newArena(t, Options{TickRate: 60})

	if err := s.RemoveActor("grunt"); err != nil {
		t.Fatalf("RemoveActor: %v", err)
	}
	if _, ok := s.Position("grunt"); !ok {
		t.Fatalf("removal must wait for the end of the tick")
	}
	s.Step()

	if _, ok := s.Position("grunt"); ok {
		t.Fatalf("grunt should be gone")
	}
	for _, v := range s.Actors() {
		if v.Name == "grunt" {
			t.Fatalf("grunt still listed")
		}
	}
	if _, ok := s.Controller("grunt_ai"); !ok {
		t.Fatalf("removing an actor must not destroy its controller")
	}
	if v := controllerView(t, s, "grunt_ai"); v.Actor != "" {
		t.Fatalf("grunt_ai should drive nothing, got %q", v.Actor)
	}
	if logs.FilterMessage("actor removed").Len() != 1 {
		t.Fatalf("expected one removal log")
	}

	if err := s.RemoveActor("grunt"); !errors.Is(err, ErrUnknownActor) {
		t.Fatalf("expected ErrUnknownActor, got %v", err)
	}
	if err := s.RequestHandOff(HandOff{Actor: "drone", Controller: "grunt_ai"}); err != nil {
		t.Fatalf("the orphaned controller should take another actor: %v", err)
	}
	s.Step()
	if got := controllerOf(t, s, "drone"); got != "grunt_ai" {
		t.Fatalf("drone driven by %q", got)
	}
}

func writeRecording(t *testing.T, path string, c *input.Contract, moves ...float64) {
	t.Helper()
	rec := source.NewRecording(c)
	layout := c.Layout()
	for _, x := range moves {
		snap := input.Snapshot{Buttons: make([]bool, layout.Buttons), Axes: make([]cp.Vector, layout.Axes)}
		snap.Axes[0] = cp.Vector{X: x}
		rec.Frames = append(rec.Frames, snap)
	}
	writeFile(t, path, "")
	if err := rec.SaveFile(path); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
}

func TestReplayRecordingReloads(t *testing.T) {
	dir := useTempPrefabs(t)
	recPath := filepath.Join(t.TempDir(), "takes", "run.yaml")
	contract, err := prefabs.LoadContract("channels.yaml")
	if err != nil {
		t.Fatalf("LoadContract: %v", err)
	}
	writeRecording(t, recPath, contract, 1, 1)

	scene := `
name: replayed
channels: channels.yaml
controllers:
  - name: ghost
    source:
      kind: replay
      params:
        recording: ` + recPath + `
`
	writeFile(t, filepath.Join(dir, "replayed.yaml"), scene)

	s, _ := newArena(t, Options{Scene: "replayed.yaml", TickRate: 10})
	if diff := cmp.Diff([]string{filepath.Dir(recPath)}, s.RecordingDirs()); diff != "" {
		t.Fatalf("recording dirs (-want +got):\n%s", diff)
	}

	ghost, _ := s.Controller("ghost")
	s.Step()
	if v, _ := ghost.Axis(0); v.X != 1 {
		t.Fatalf("first frame move = %v", v)
	}

	writeRecording(t, recPath, contract, -1)
	if err := s.Reload(recPath); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	s.Step()
	if v, _ := ghost.Axis(0); v.X != -1 {
		t.Fatalf("reloaded recording should replay from its first frame, move = %v", v)
	}
}
