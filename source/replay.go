package source

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/milk9111/possess/control"
	"github.com/milk9111/possess/input"
	"gopkg.in/yaml.v3"
)

// Recording is a per-tick sequence of controller snapshots, tagged with the
// fingerprint of the contract it was recorded under.
type Recording struct {
	ID       string           `yaml:"id"`
	Contract uint64           `yaml:"contract"`
	Frames   []input.Snapshot `yaml:"frames"`
}

func NewRecording(c *input.Contract) *Recording {
	return &Recording{ID: uuid.NewString(), Contract: c.Fingerprint()}
}

func (r *Recording) Save(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("source: encode recording %s: %w", r.ID, err)
	}
	return nil
}

func (r *Recording) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("source: create recording %s: %w", path, err)
	}
	if err := r.Save(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func LoadRecording(r io.Reader) (*Recording, error) {
	var rec Recording
	if err := yaml.NewDecoder(r).Decode(&rec); err != nil {
		return nil, fmt.Errorf("source: decode recording: %w", err)
	}
	return &rec, nil
}

func LoadRecordingFile(path string) (*Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("source: open recording %s: %w", path, err)
	}
	defer f.Close()
	return LoadRecording(f)
}

// Recorder wraps a source and appends the controller's state to a Recording
// after every tick the wrapped source runs.
type Recorder struct {
	under control.Source
	rec   *Recording
}

func NewRecorder(c *input.Contract, under control.Source) *Recorder {
	return &Recorder{under: under, rec: NewRecording(c)}
}

func (r *Recorder) String() string {
	return "record+" + sourceLabel(r.under)
}

func (r *Recorder) Recording() *Recording {
	return r.rec
}

// Wrap swaps the recorded source, keeping the frames recorded so far.
func (r *Recorder) Wrap(under control.Source) {
	r.under = under
}

func (r *Recorder) Update(t control.Tick, c *control.Controller, a *control.Actor) error {
	if err := r.under.Update(t, c, a); err != nil {
		return err
	}
	r.rec.Frames = append(r.rec.Frames, c.State().Snapshot())
	return nil
}

// Replay writes recorded frames back, one per tick. After the last frame it
// either loops or stops writing, leaving the last frame in place.
type Replay struct {
	rec  *Recording
	loop bool
	next int
}

// NewReplay rejects recordings made under a different channel contract.
func NewReplay(c *input.Contract, rec *Recording, loop bool) (*Replay, error) {
	if rec.Contract != c.Fingerprint() {
		return nil, fmt.Errorf("%w: recording %s has %x, build has %x",
			ErrContractMismatch, rec.ID, rec.Contract, c.Fingerprint())
	}
	return &Replay{rec: rec, loop: loop}, nil
}

func (r *Replay) String() string {
	return "replay:" + r.rec.ID
}

// Done reports whether a non-looping replay has written every frame.
func (r *Replay) Done() bool {
	return !r.loop && r.next >= len(r.rec.Frames)
}

// Restart rewinds to the first frame.
func (r *Replay) Restart() {
	r.next = 0
}

func (r *Replay) Update(_ control.Tick, c *control.Controller, _ *control.Actor) error {
	if len(r.rec.Frames) == 0 {
		return nil
	}
	if r.next >= len(r.rec.Frames) {
		if !r.loop {
			return nil
		}
		r.next = 0
	}
	if err := c.State().Restore(r.rec.Frames[r.next]); err != nil {
		return err
	}
	r.next++
	return nil
}
