// Package sim builds a scene from prefabs and runs it one tick at a time:
// decision sources write, motion reads through each actor's controller, and
// the physics space steps. Possession changes are queued and applied between
// ticks.
//
// A Sim is not safe for concurrent use. Callers on other goroutines forward
// requests to the goroutine that calls Step.
package sim

import (
	"cmp"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/jakecoffman/cp"
	"go.uber.org/zap"

	"github.com/milk9111/possess/control"
	"github.com/milk9111/possess/ecs"
	"github.com/milk9111/possess/input"
	"github.com/milk9111/possess/motion"
	"github.com/milk9111/possess/prefabs"
	"github.com/milk9111/possess/source"
)

var (
	ErrUnknownActor      = errors.New("sim: unknown actor")
	ErrUnknownController = errors.New("sim: unknown controller")
	ErrNotOverride       = errors.New("sim: controller has no override source")
	ErrNotRestartable    = errors.New("sim: source cannot restart")
)

type Options struct {
	Scene         string
	TickRate      int
	ResetOnAttach bool
	// Device feeds human sources. Nil devices read as neutral input.
	Device source.Device
	// Record names a controller whose state is recorded every tick.
	Record string
}

type Sim struct {
	log       *zap.Logger
	scene     *prefabs.SceneSpec
	contract  *input.Contract
	director  *control.Director
	world     *ecs.World
	space     *cp.Space
	scheduler *ecs.Scheduler
	mover     *motion.Mover
	device    source.Device
	dt        time.Duration

	actors      map[string]ecs.Entity
	controllers map[string]*controllerEntry
	order       []string

	recorder   *source.Recorder
	recordName string

	scheduled []prefabs.HandOffSpec
	pending   []func() error
	removals  []string
	tick      uint64
}

func New(opts Options, log *zap.Logger) (*Sim, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.TickRate <= 0 {
		opts.TickRate = 60
	}

	scene, err := prefabs.LoadScene(opts.Scene)
	if err != nil {
		return nil, err
	}
	channels := scene.Channels
	if channels == "" {
		channels = "channels.yaml"
	}
	contract, err := prefabs.LoadContract(channels)
	if err != nil {
		return nil, err
	}
	mover, err := motion.NewMover(contract)
	if err != nil {
		return nil, fmt.Errorf("sim: %s: %w", channels, err)
	}

	registry := control.NewRegistry(contract.Layout())
	s := &Sim{
		log:         log,
		scene:       scene,
		contract:    contract,
		director:    control.NewDirector(registry, log, control.WithResetOnAttach(opts.ResetOnAttach)),
		world:       ecs.NewWorld(),
		space:       newSpace(scene),
		scheduler:   ecs.NewScheduler(),
		mover:       mover,
		device:      opts.Device,
		dt:          time.Second / time.Duration(opts.TickRate),
		actors:      make(map[string]ecs.Entity, len(scene.Actors)),
		controllers: make(map[string]*controllerEntry, len(scene.Controllers)),
	}

	if opts.Record != "" {
		if _, ok := findController(scene, opts.Record); !ok {
			return nil, fmt.Errorf("%w: record %q", ErrUnknownController, opts.Record)
		}
		s.recorder = source.NewRecorder(contract, nil)
		s.recordName = opts.Record
	}

	for _, spec := range scene.Controllers {
		if err := s.addController(spec); err != nil {
			s.closeSources()
			return nil, fmt.Errorf("sim: controller %s: %w", spec.Name, err)
		}
	}
	for _, spec := range scene.Actors {
		if err := s.addActor(spec); err != nil {
			s.closeSources()
			return nil, fmt.Errorf("sim: actor %s: %w", spec.Name, err)
		}
	}

	s.scheduled = slices.Clone(scene.HandOffs)
	slices.SortStableFunc(s.scheduled, func(a, b prefabs.HandOffSpec) int {
		return cmp.Compare(a.At, b.At)
	})

	s.scheduler.Add(ecs.PhaseDecide, ecs.SystemFunc(s.decide))
	s.scheduler.Add(ecs.PhaseConsume, ecs.SystemFunc(s.consume))
	s.scheduler.Add(ecs.PhasePhysics, ecs.SystemFunc(s.physics))
	s.scheduler.Add(ecs.PhaseCleanup, ecs.SystemFunc(s.cleanup))

	log.Info("scene loaded",
		zap.String("scene", scene.Name),
		zap.Int("controllers", s.director.Registry().Len()),
		zap.Int("actors", len(s.actors)),
		zap.Int("handoffs", len(s.scheduled)),
	)
	return s, nil
}

func findController(scene *prefabs.SceneSpec, name string) (prefabs.ControllerSpec, bool) {
	for _, c := range scene.Controllers {
		if c.Name == name {
			return c, true
		}
	}
	return prefabs.ControllerSpec{}, false
}

func (s *Sim) addController(spec prefabs.ControllerSpec) error {
	c := s.director.Registry().Create(spec.Name)
	e := &controllerEntry{name: spec.Name, handle: c.Handle(), spec: spec.Source}
	s.controllers[spec.Name] = e
	s.order = append(s.order, spec.Name)

	src, file, err := s.buildSource(spec.Source)
	if err != nil {
		return err
	}
	e.file = file
	return s.bind(e, src)
}

func (s *Sim) addActor(spec prefabs.ActorSpec) error {
	ent := s.world.CreateEntity()
	actor := control.NewActor(spec.Name, s.director.Registry())
	if err := ecs.Add(s.world, ent, ActorComponent, actor); err != nil {
		return err
	}
	if err := ecs.Add(s.world, ent, BodyComponent, newBody(s.space, spec.Body)); err != nil {
		return err
	}
	s.actors[spec.Name] = ent

	if spec.Controller == "" {
		return nil
	}
	return s.director.Possess(actor, s.controllers[spec.Controller].handle)
}

// Step applies due hand-offs and runs one tick.
func (s *Sim) Step() {
	s.applyHandOffs()
	s.scheduler.Update(s.world)
	s.tick++
}

// Tick returns the number of the next tick Step will run.
func (s *Sim) Tick() uint64 {
	return s.tick
}

func (s *Sim) TickDuration() time.Duration {
	return s.dt
}

func (s *Sim) decide(*ecs.World) {
	s.director.Decide(control.Tick{N: s.tick, DT: s.dt})
}

func (s *Sim) consume(w *ecs.World) {
	ecs.ForEach2(w, ActorComponent, BodyComponent, func(_ ecs.Entity, a *control.Actor, b *Body) {
		s.mover.Apply(b.Body, b.Profile, s.mover.Read(a))
	})
}

func (s *Sim) physics(*ecs.World) {
	s.space.Step(s.dt.Seconds())
}

// cleanup removes actors queued by RemoveActor. Their controllers are left
// in the registry.
func (s *Sim) cleanup(w *ecs.World) {
	removals := s.removals
	s.removals = nil
	for _, name := range removals {
		ent, ok := s.actors[name]
		if !ok {
			continue
		}
		if a, ok := ecs.Get(w, ent, ActorComponent); ok {
			s.director.Release(a)
		}
		if b, ok := ecs.Get(w, ent, BodyComponent); ok {
			s.space.RemoveShape(b.Shape)
			s.space.RemoveBody(b.Body)
		}
		w.DestroyEntity(ent)
		delete(s.actors, name)
		s.log.Info("actor removed", zap.String("actor", name))
	}
}

// RemoveActor queues an actor for removal at the end of the next tick. The
// controller driving it keeps deciding and can be handed to another actor.
func (s *Sim) RemoveActor(name string) error {
	if _, ok := s.actors[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownActor, name)
	}
	if !slices.Contains(s.removals, name) {
		s.removals = append(s.removals, name)
	}
	return nil
}

// Position implements source.Perception over actor bodies.
func (s *Sim) Position(actor string) (cp.Vector, bool) {
	b, ok := s.body(actor)
	if !ok {
		return cp.Vector{}, false
	}
	return b.Body.Position(), true
}

func (s *Sim) body(name string) (*Body, bool) {
	ent, ok := s.actors[name]
	if !ok {
		return nil, false
	}
	return ecs.Get(s.world, ent, BodyComponent)
}

func (s *Sim) Actor(name string) (*control.Actor, bool) {
	ent, ok := s.actors[name]
	if !ok {
		return nil, false
	}
	return ecs.Get(s.world, ent, ActorComponent)
}

// Controller returns the named scene controller.
func (s *Sim) Controller(name string) (*control.Controller, bool) {
	return s.director.Registry().Lookup(name)
}

// Override returns the override source bound to a controller, if any.
func (s *Sim) Override(controller string) (*source.Override, bool) {
	e, ok := s.controllers[controller]
	if !ok {
		return nil, false
	}
	o, ok := e.src.(*source.Override)
	return o, ok
}

// Pin freezes an actor's input. The named override takes a copy of what the
// actor's controller holds now and keeps writing it; the actor is handed to
// the override at the start of the next tick.
func (s *Sim) Pin(actor, override string) error {
	a, ok := s.Actor(actor)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownActor, actor)
	}
	o, ok := s.Override(override)
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotOverride, override)
	}
	o.Clear()
	if c, ok := a.Controller(); ok {
		if err := o.HoldSnapshot(c.State().Snapshot()); err != nil {
			return err
		}
	}
	s.log.Debug("input pinned", zap.String("actor", actor), zap.String("override", override))
	return s.RequestHandOff(HandOff{Actor: actor, Controller: override})
}

type restarter interface {
	Restart()
}

// Restart rewinds a timeline or replay controller, also one under an
// override. The next tick plays its first frame.
func (s *Sim) Restart(controller string) error {
	e, ok := s.controllers[controller]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownController, controller)
	}
	r, ok := restartable(e.src)
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotRestartable, controller)
	}
	r.Restart()
	s.log.Info("source restarted", zap.String("controller", controller))
	return nil
}

func restartable(src control.Source) (restarter, bool) {
	if o, ok := src.(*source.Override); ok {
		src = o.Under()
	}
	r, ok := src.(restarter)
	return r, ok
}

func (s *Sim) finished(src control.Source) bool {
	if o, ok := src.(*source.Override); ok {
		src = o.Under()
	}
	switch src := src.(type) {
	case *source.Timeline:
		return src.Done(control.Tick{N: s.tick})
	case *source.Replay:
		return src.Done()
	}
	return false
}

// Retarget points every AI source at actor and reports how many changed.
func (s *Sim) Retarget(actor string) (int, error) {
	if _, ok := s.actors[actor]; !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownActor, actor)
	}
	n := 0
	for _, name := range s.order {
		src := s.controllers[name].src
		if o, ok := src.(*source.Override); ok {
			src = o.Under()
		}
		if ai, ok := src.(*source.AI); ok {
			ai.Retarget(actor)
			n++
		}
	}
	return n, nil
}

// RecordingDirs lists the directories of the recordings replay sources were
// loaded from, so callers can watch them next to the prefabs.
func (s *Sim) RecordingDirs() []string {
	var dirs []string
	for _, name := range s.order {
		e := s.controllers[name]
		if !usesRecording(e.spec) || e.file == "" {
			continue
		}
		dir := filepath.Dir(e.file)
		if !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

func usesRecording(spec prefabs.SourceSpec) bool {
	switch spec.Kind {
	case prefabs.SourceReplay:
		return true
	case prefabs.SourceOverride:
		params, err := prefabs.DecodeSourceParams[prefabs.OverrideParams](spec.Params)
		return err == nil && params.Under != nil && usesRecording(*params.Under)
	}
	return false
}

func (s *Sim) Contract() *input.Contract {
	return s.contract
}

func (s *Sim) Director() *control.Director {
	return s.director
}

// SetDevice switches every human source to dev.
func (s *Sim) SetDevice(dev source.Device) {
	s.device = dev
	for _, e := range s.controllers {
		if h, ok := e.src.(*source.Human); ok {
			h.SetDevice(dev)
		}
	}
}

// Recording returns the recording of the controller named in Options.Record.
func (s *Sim) Recording() (*source.Recording, bool) {
	if s.recorder == nil {
		return nil, false
	}
	return s.recorder.Recording(), true
}

// ActorView is a read-only snapshot of one actor for rendering and reports.
type ActorView struct {
	Name       string
	Controller string
	Position   cp.Vector
	Velocity   cp.Vector
	Size       cp.Vector
	Body       *Body
}

// Actors lists actors in scene order.
func (s *Sim) Actors() []ActorView {
	views := make([]ActorView, 0, len(s.scene.Actors))
	for _, spec := range s.scene.Actors {
		a, ok := s.Actor(spec.Name)
		if !ok {
			continue
		}
		b, ok := s.body(spec.Name)
		if !ok {
			continue
		}
		v := ActorView{
			Name:     spec.Name,
			Position: b.Body.Position(),
			Velocity: b.Body.Velocity(),
			Size:     b.Size,
			Body:     b,
		}
		if c, ok := a.Controller(); ok {
			v.Controller = c.Name()
		}
		views = append(views, v)
	}
	return views
}

// Reload rebuilds the sources that depend on the changed file. Scripts keep
// their VM state where the runtime allows it. Channel and scene changes are
// only picked up on restart.
func (s *Sim) Reload(path string) error {
	base := filepath.Base(path)
	channels := s.scene.Channels
	if channels == "" {
		channels = "channels.yaml"
	}
	if base == filepath.Base(channels) {
		s.log.Warn("channel contract changed, restart to apply", zap.String("file", path))
		return nil
	}

	var errs []error
	reloaded := 0
	for _, name := range s.order {
		e := s.controllers[name]
		if e.file == "" || filepath.Base(e.file) != base {
			continue
		}
		if err := s.reloadEntry(e); err != nil {
			errs = append(errs, fmt.Errorf("sim: reload %s: %w", name, err))
			continue
		}
		reloaded++
		s.log.Info("source reloaded", zap.String("controller", name), zap.String("file", path))
	}
	if reloaded == 0 && len(errs) == 0 {
		s.log.Debug("change ignored", zap.String("file", path))
	}
	return errors.Join(errs...)
}

type reloader interface {
	Reload() error
}

func (s *Sim) reloadEntry(e *controllerEntry) error {
	if r, ok := e.src.(reloader); ok {
		return r.Reload()
	}
	if o, ok := e.src.(*source.Override); ok {
		return s.reloadUnder(e, o)
	}
	src, _, err := s.buildSource(e.spec)
	if err != nil {
		return err
	}
	return s.bind(e, src)
}

// reloadUnder rebuilds only the source under an override so the values it
// holds survive the reload.
func (s *Sim) reloadUnder(e *controllerEntry, o *source.Override) error {
	if r, ok := o.Under().(reloader); ok {
		return r.Reload()
	}
	params, err := prefabs.DecodeSourceParams[prefabs.OverrideParams](e.spec.Params)
	if err != nil {
		return err
	}
	if params.Under == nil {
		return nil
	}
	under, _, err := s.buildSource(*params.Under)
	if err != nil {
		return err
	}
	closeSource(o.Under())
	o.SetUnder(under)
	return nil
}

func (s *Sim) Close() {
	s.closeSources()
}

// Ground is the y of the floor segment, or 0 when the scene has none.
func (s *Sim) Ground() float64 {
	return s.scene.Ground
}

func (s *Sim) Scene() *prefabs.SceneSpec {
	return s.scene
}

// ControllerView describes one scene controller for reports.
type ControllerView struct {
	Name        string
	Handle      control.Handle
	Source      string
	Actor       string
	Restartable bool
	// Finished is set once a timeline or replay has played every frame.
	Finished bool
}

// Controllers lists controllers in scene order.
func (s *Sim) Controllers() []ControllerView {
	views := make([]ControllerView, 0, len(s.order))
	for _, name := range s.order {
		e := s.controllers[name]
		v := ControllerView{Name: name, Handle: e.handle, Source: "-"}
		_, v.Restartable = restartable(e.src)
		v.Finished = s.finished(e.src)
		if src, ok := s.director.Source(e.handle); ok {
			v.Source = fmt.Sprint(src)
		}
		if a, ok := s.director.ActorFor(e.handle); ok {
			v.Actor = a.Name()
		}
		views = append(views, v)
	}
	return views
}
