package engine

import (
	"fmt"

	"github.com/vk/animgraph/internal/graph"
	"github.com/vk/animgraph/internal/pose"
	"github.com/vk/animgraph/internal/value"
)

// machineState is the runtime state of one state machine node. Times are in
// the machine's own timeline.
type machineState struct {
	machine         *graph.StateMachine
	started         bool
	active          graph.StateID
	stateStart      float64
	running         *graph.Transition
	sourceStart     float64
	transitionStart float64
}

func (s *machineState) begin(tr *graph.Transition, t float64) {
	s.running = tr
	s.sourceStart = s.stateStart
	s.transitionStart = t
}

// finish makes the target active. Its timeline keeps running from the
// transition start, where it was first sampled.
func (s *machineState) finish() {
	s.active = s.running.Target
	s.stateStart = s.transitionStart
	s.running = nil
}

func (f *frame) machine(n *graph.Node, d graph.StateMachineData) (*graph.StateMachine, error) {
	if d.Machine != nil {
		return d.Machine, nil
	}
	inst := f.c.inst
	if m, ok := inst.defs[n]; ok {
		return m, nil
	}
	r := f.c.eng.resolver
	if r == nil {
		return nil, f.fail(n.Name, fmt.Errorf("%w %q: %w", ErrUnresolvedSubgraph, d.Ref, errNoResolver))
	}
	m, err := r.Machine(d.Ref)
	if err != nil {
		return nil, f.fail(n.Name, fmt.Errorf("%w %q: %w", ErrUnresolvedSubgraph, d.Ref, err))
	}
	if m == nil {
		return nil, f.fail(n.Name, fmt.Errorf("%w %q", ErrUnresolvedSubgraph, d.Ref))
	}
	inst.defs[n] = m
	return m, nil
}

// machinePose advances the machine once per call and samples the active
// state, or the running transition.
func (f *frame) machinePose(n *graph.Node, d graph.StateMachineData, t float64) (*pose.Pose, error) {
	m, err := f.machine(n, d)
	if err != nil {
		return nil, err
	}
	st := f.c.inst.machineState(n, m)
	if !f.c.stepped[n] {
		f.c.stepped[n] = true
		if err := f.step(n, st, t); err != nil {
			return nil, err
		}
	}
	if st.running != nil {
		tf, err := f.transitionFrame(n, st, t)
		if err != nil {
			return nil, err
		}
		return tf.poseOutput().poseAt(t)
	}
	sf, err := f.stateFrame(n, st, st.active, st.stateStart, t)
	if err != nil {
		return nil, err
	}
	return sf.poseOutput().poseAt(t - st.stateStart)
}

// step completes a finished transition, then starts the first transition out
// of the active state whose trigger is observed. Triggers observed while a
// transition is running are dropped.
func (f *frame) step(n *graph.Node, st *machineState, t float64) error {
	m := st.machine
	logger := f.c.logger.With("node", n.Name, "machine", m.Name)
	if !st.started {
		st.started = true
		st.active = m.Start
		st.stateStart = t
		logger.Debug("State machine started.", "state", st.active, "time", t)
	}
	if err := f.complete(n, st, t); err != nil {
		return err
	}

	evs, err := f.machineEvents(n, st, t)
	if err != nil {
		return err
	}
	for _, ev := range evs {
		tr := triggered(m, st.active, ev.Name)
		if tr == nil {
			continue
		}
		if st.running != nil {
			logger.Debug("Trigger dropped, transition in progress.", "event", ev.Name, "transition", tr.ID, "running", st.running.ID)
			continue
		}
		st.begin(tr, t)
		logger.Debug("Transition started.", "transition", tr.ID, "from", tr.Source, "to", tr.Target, "time", t)
		if err := f.complete(n, st, t); err != nil {
			return err
		}
	}
	return nil
}

func triggered(m *graph.StateMachine, active graph.StateID, event string) *graph.Transition {
	for _, tr := range m.TransitionsFrom(active) {
		if tr.Trigger == event {
			return tr
		}
	}
	return nil
}

// complete finishes the running transition if its graph reports "complete",
// or, without that output, once its duration has elapsed.
func (f *frame) complete(n *graph.Node, st *machineState, t float64) error {
	tr := st.running
	if tr == nil {
		return nil
	}
	done := t-st.transitionStart >= tr.Duration
	if _, ok := tr.Graph.OutputParam(graph.TransitionComplete); ok {
		tf, err := f.transitionFrame(n, st, t)
		if err != nil {
			return err
		}
		v, err := tf.graphParam(graph.TransitionComplete)
		if err != nil {
			return err
		}
		done, _ = v.AsBool()
	}
	if done {
		st.finish()
		f.c.logger.Debug("Transition completed.", "node", n.Name, "transition", tr.ID, "state", st.active, "time", t)
	}
	return nil
}

// machineEvents merges the machine's "events" input with the events emitted
// by the active state graph.
func (f *frame) machineEvents(n *graph.Node, st *machineState, t float64) (value.EventQueue, error) {
	in, err := f.events(n, graph.MachineEvents)
	if err != nil {
		return nil, err
	}
	state, _ := st.machine.State(st.active)
	if _, ok := state.Graph.OutputParam(graph.MachineEvents); !ok {
		return in, nil
	}
	sf, err := f.stateFrame(n, st, st.active, st.stateStart, t)
	if err != nil {
		return nil, err
	}
	v, err := sf.graphParam(graph.MachineEvents)
	if err != nil {
		return nil, err
	}
	emitted, _ := v.AsEvents()
	return value.Merge(in, emitted), nil
}

func (f *frame) stateFrame(n *graph.Node, st *machineState, id graph.StateID, start, t float64) (*frame, error) {
	state, ok := st.machine.State(id)
	if !ok {
		return nil, f.fail(n.Name, fmt.Errorf("%w: state %q", ErrUnresolvedSubgraph, id))
	}
	return f.child(childKey{owner: n, g: state.Graph, start: bits(start)}, state.Graph, t-start)
}

// transitionFrame binds the running transition's graph: "source" plays the
// source state on its own timeline, "target" plays the target state from the
// transition start.
func (f *frame) transitionFrame(n *graph.Node, st *machineState, t float64) (*frame, error) {
	tr := st.running
	key := childKey{owner: n, g: tr.Graph, start: bits(st.transitionStart), at: bits(t)}
	if tf, ok := f.children[key]; ok {
		return tf, nil
	}
	src, err := f.stateFrame(n, st, tr.Source, st.sourceStart, t)
	if err != nil {
		return nil, err
	}
	dst, err := f.stateFrame(n, st, tr.Target, st.transitionStart, t)
	if err != nil {
		return nil, err
	}
	tf, err := f.child(key, tr.Graph, t)
	if err != nil {
		return nil, err
	}
	from, to := src.poseOutput(), dst.poseOutput()
	from.shift += st.sourceStart
	to.shift += st.transitionStart
	tf.poses[graph.TransitionSource] = from
	tf.poses[graph.TransitionTarget] = to
	tf.fixed[graph.TransitionElapsed] = value.Float(t - st.transitionStart)
	tf.fixed[graph.TransitionDuration] = value.Float(tr.Duration)
	return tf, nil
}
