// Package driver plays a graph instance frame by frame, the way a host
// application would: it advances time, feeds host inputs and scheduled
// events, and hands every evaluated pose to a sink.
package driver

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/vk/animgraph/internal/ctxlog"
	"github.com/vk/animgraph/internal/engine"
	"github.com/vk/animgraph/internal/graph"
	"github.com/vk/animgraph/internal/sink"
	"github.com/vk/animgraph/internal/value"
)

// TimeMode selects how frame times are produced.
type TimeMode int

const (
	// Absolute computes every frame time as Start + index/FPS.
	Absolute TimeMode = iota
	// Delta accumulates a 1/FPS step per frame onto the previous time.
	Delta
)

func (m TimeMode) String() string {
	if m == Delta {
		return "delta"
	}
	return "absolute"
}

// ParseTimeMode maps a configuration name to a TimeMode.
func ParseTimeMode(s string) (TimeMode, error) {
	switch s {
	case "", "absolute":
		return Absolute, nil
	case "delta":
		return Delta, nil
	}
	return 0, fmt.Errorf("unknown time mode %q", s)
}

// Event is delivered on the graph's event input during the first frame whose
// time reaches At.
type Event struct {
	At   float64
	Name string
}

// InputChange sets a host input from the first frame whose time reaches At.
type InputChange struct {
	At    float64
	Name  string
	Value value.Value
}

// Config describes one character's run.
type Config struct {
	Character string
	FPS       float64
	Frames    int
	Start     float64
	Mode      TimeMode
	// Realtime paces frames with a ticker instead of running flat out.
	Realtime bool
	// EventInput is the input parameter events are delivered on. It defaults
	// to "events".
	EventInput string
	Inputs     map[string]value.Value
	Events     []Event
	Changes    []InputChange
}

// Driver runs one instance. It is not safe for concurrent use.
type Driver struct {
	eng  *engine.Engine
	inst *engine.Instance
	out  sink.Sink
	cfg  Config

	clock   float64
	frame   int
	events  int
	changes int
}

// New validates cfg and applies its initial inputs to inst.
func New(eng *engine.Engine, inst *engine.Instance, out sink.Sink, cfg Config) (*Driver, error) {
	if eng == nil || inst == nil || out == nil {
		return nil, errors.New("driver needs an engine, an instance and a sink")
	}
	if !(cfg.FPS > 0) {
		return nil, fmt.Errorf("fps must be positive, got %v", cfg.FPS)
	}
	if cfg.Frames < 0 {
		return nil, fmt.Errorf("frames must not be negative, got %d", cfg.Frames)
	}
	if cfg.Character == "" {
		cfg.Character = inst.Graph().Name
	}
	if cfg.EventInput == "" {
		cfg.EventInput = graph.MachineEvents
	}
	if len(cfg.Events) > 0 {
		in, ok := inst.Graph().InputParam(cfg.EventInput)
		if !ok || in.Default.Kind() != value.KindEventQueue {
			return nil, fmt.Errorf("graph %q has no %s input %q for scheduled events", inst.Graph().Name, value.KindEventQueue, cfg.EventInput)
		}
	}

	names := make([]string, 0, len(cfg.Inputs))
	for name := range cfg.Inputs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := inst.SetInput(name, cfg.Inputs[name]); err != nil {
			return nil, err
		}
	}
	for _, c := range cfg.Changes {
		in, ok := inst.Graph().InputParam(c.Name)
		if !ok {
			return nil, fmt.Errorf("scheduled change of %q: %w", c.Name, graph.ErrUnknownPin)
		}
		if in.Default.Kind() != c.Value.Kind() {
			return nil, fmt.Errorf("scheduled change of %q: %w: want %s, got %s", c.Name, graph.ErrTypeMismatch, in.Default.Kind(), c.Value.Kind())
		}
	}

	cfg.Events = append([]Event(nil), cfg.Events...)
	sort.SliceStable(cfg.Events, func(i, j int) bool { return cfg.Events[i].At < cfg.Events[j].At })
	cfg.Changes = append([]InputChange(nil), cfg.Changes...)
	sort.SliceStable(cfg.Changes, func(i, j int) bool { return cfg.Changes[i].At < cfg.Changes[j].At })

	return &Driver{eng: eng, inst: inst, out: out, cfg: cfg, clock: cfg.Start}, nil
}

// Time returns the time of the last evaluated frame, or Start before the
// first one.
func (d *Driver) Time() float64 { return d.clock }

// Frame returns the number of frames evaluated so far.
func (d *Driver) Frame() int { return d.frame }

// Advance moves the clock forward by delta seconds and evaluates a frame.
func (d *Driver) Advance(ctx context.Context, delta float64) (sink.Frame, error) {
	return d.Seek(ctx, d.clock+delta)
}

// Seek evaluates a frame at t. Seeking backwards rewinds the schedule, so
// events after t are delivered again; state machines keep their state.
func (d *Driver) Seek(ctx context.Context, t float64) (sink.Frame, error) {
	if t < d.clock {
		d.rewind(t)
	}
	d.clock = t
	return d.evaluate(ctx, t)
}

func (d *Driver) rewind(t float64) {
	for d.events > 0 && d.cfg.Events[d.events-1].At > t {
		d.events--
	}
	for d.changes > 0 && d.cfg.Changes[d.changes-1].At > t {
		d.changes--
	}
}

func (d *Driver) evaluate(ctx context.Context, t float64) (sink.Frame, error) {
	logger := ctxlog.FromContext(ctx).With("character", d.cfg.Character)

	for d.changes < len(d.cfg.Changes) && d.cfg.Changes[d.changes].At <= t {
		c := d.cfg.Changes[d.changes]
		if err := d.inst.SetInput(c.Name, c.Value); err != nil {
			return sink.Frame{}, err
		}
		logger.Debug("Input changed.", "input", c.Name, "value", c.Value.String(), "time", t)
		d.changes++
	}

	var due value.EventQueue
	for d.events < len(d.cfg.Events) && d.cfg.Events[d.events].At <= t {
		due = append(due, value.Event{Name: d.cfg.Events[d.events].Name, Weight: 1})
		d.events++
	}
	if len(due) > 0 {
		// Scheduled events ride on top of whatever the host set, for this
		// frame only.
		prev, _ := d.inst.Input(d.cfg.EventInput)
		held, _ := prev.AsEvents()
		if err := d.inst.SetInput(d.cfg.EventInput, value.Events(append(held.Clone(), due...))); err != nil {
			return sink.Frame{}, err
		}
		defer func() { _ = d.inst.SetInput(d.cfg.EventInput, prev) }()
		logger.Debug("Events delivered.", "events", due.Names(), "time", t)
	}

	res, err := d.eng.Evaluate(ctx, d.inst, engine.Query{Kind: engine.PoseQuery, Time: t})
	if err != nil {
		return sink.Frame{}, fmt.Errorf("frame %d at %gs: %w", d.frame, t, err)
	}
	f := sink.Frame{
		Character:   d.cfg.Character,
		Index:       d.frame,
		Time:        t,
		Pose:        res.Pose,
		Outputs:     res.Outputs,
		Diagnostics: res.Diagnostics,
	}
	d.frame++
	if err := d.out.Write(ctx, f); err != nil {
		return f, fmt.Errorf("writing frame %d: %w", f.Index, err)
	}
	return f, nil
}

// Run evaluates cfg.Frames frames and stops early when ctx ends.
func (d *Driver) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx).With("character", d.cfg.Character)
	logger.Info("Run started.", "frames", d.cfg.Frames, "fps", d.cfg.FPS, "mode", d.cfg.Mode.String())

	step := 1 / d.cfg.FPS
	var tick <-chan time.Time
	if d.cfg.Realtime {
		ticker := time.NewTicker(time.Duration(float64(time.Second) * step))
		defer ticker.Stop()
		tick = ticker.C
	}

	for i := 0; i < d.cfg.Frames; i++ {
		if tick != nil && i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		var err error
		switch {
		case i == 0:
			_, err = d.Seek(ctx, d.cfg.Start)
		case d.cfg.Mode == Delta:
			_, err = d.Advance(ctx, step)
		default:
			_, err = d.Seek(ctx, d.cfg.Start+float64(i)*step)
		}
		if err != nil {
			return err
		}
	}
	logger.Info("Run finished.", "frames", d.frame, "time", d.clock)
	return nil
}
