package graph

import (
	"fmt"
	"math"

	"github.com/vk/animgraph/internal/value"
)

// StateID names a state of a state machine.
type StateID string

// State is a state-machine state backed by its own graph.
type State struct {
	ID    StateID
	Graph *Graph
}

// Transition blends Source into Target once Trigger is observed. Its graph
// reads the two states through the pose inputs "source" and "target" and may
// read the parameters "elapsed" and "duration". It completes when its Bool
// output "complete" turns true, or, without that output, once elapsed reaches
// Duration.
type Transition struct {
	ID       string
	Source   StateID
	Target   StateID
	Trigger  string
	Duration float64
	Graph    *Graph
}

// Names of the pins transition graphs bind to.
const (
	TransitionSource   = "source"
	TransitionTarget   = "target"
	TransitionElapsed  = "elapsed"
	TransitionDuration = "duration"
	TransitionComplete = "complete"
	// MachineEvents is both the state machine's event input and the optional
	// event output of a state graph.
	MachineEvents = "events"
)

// StateMachine is an immutable state machine definition. Its state and
// transition graphs are owned copies.
type StateMachine struct {
	Name  string
	Start StateID

	states      map[StateID]*State
	order       []StateID
	transitions []*Transition
	inputs      []InputParam
}

// NewStateMachine validates and assembles a definition. The graphs passed in
// are cloned.
func NewStateMachine(name string, start StateID, states []State, transitions []Transition) (*StateMachine, error) {
	m := &StateMachine{Name: name, Start: start, states: make(map[StateID]*State, len(states))}
	for _, s := range states {
		if _, dup := m.states[s.ID]; dup {
			return nil, m.errorf(ErrDuplicateName, string(s.ID), "duplicate state")
		}
		if s.Graph == nil || !s.Graph.HasPoseOutput() {
			return nil, m.errorf(ErrUnknownPin, string(s.ID), "state graph has no pose output")
		}
		if out, ok := s.Graph.OutputParam(MachineEvents); ok && out.Type != value.KindEventQueue {
			return nil, m.errorf(ErrTypeMismatch, string(s.ID), "state output %q must be %s", MachineEvents, value.KindEventQueue)
		}
		if err := m.mergeInputs(s.Graph); err != nil {
			return nil, err
		}
		m.states[s.ID] = &State{ID: s.ID, Graph: s.Graph.Clone()}
		m.order = append(m.order, s.ID)
	}
	if _, ok := m.states[start]; !ok {
		return nil, m.errorf(ErrUnknownNode, string(start), "start state is not defined")
	}

	seen := make(map[string]bool, len(transitions))
	for _, t := range transitions {
		if seen[t.ID] {
			return nil, m.errorf(ErrDuplicateName, t.ID, "duplicate transition")
		}
		seen[t.ID] = true
		if err := m.checkTransition(t); err != nil {
			return nil, err
		}
		if err := m.mergeInputs(t.Graph); err != nil {
			return nil, err
		}
		tc := t
		tc.Graph = t.Graph.Clone()
		m.transitions = append(m.transitions, &tc)
	}
	return m, nil
}

func (m *StateMachine) checkTransition(t Transition) error {
	for _, id := range []StateID{t.Source, t.Target} {
		if _, ok := m.states[id]; !ok {
			return m.errorf(ErrUnknownNode, t.ID, "transition references unknown state %q", id)
		}
	}
	if t.Duration < 0 || math.IsNaN(t.Duration) {
		return m.errorf(ErrTypeMismatch, t.ID, "transition duration must be non-negative, got %v", t.Duration)
	}
	if t.Graph == nil || !t.Graph.HasPoseOutput() {
		return m.errorf(ErrUnknownPin, t.ID, "transition graph has no pose output")
	}
	for _, pin := range []string{TransitionSource, TransitionTarget} {
		if !t.Graph.hasPoseInput(pin) {
			return m.errorf(ErrUnknownPin, t.ID, "transition graph has no pose input %q", pin)
		}
	}
	for _, pin := range []string{TransitionElapsed, TransitionDuration} {
		if in, ok := t.Graph.InputParam(pin); ok && in.Default.Kind() != value.KindFloat {
			return m.errorf(ErrTypeMismatch, t.ID, "transition input %q must be %s", pin, value.KindFloat)
		}
	}
	if out, ok := t.Graph.OutputParam(TransitionComplete); ok && out.Type != value.KindBool {
		return m.errorf(ErrTypeMismatch, t.ID, "transition output %q must be %s", TransitionComplete, value.KindBool)
	}
	return nil
}

// mergeInputs adds g's input parameters to the machine's own inputs. The
// transition-bound inputs are supplied by the machine and are skipped.
func (m *StateMachine) mergeInputs(g *Graph) error {
	for _, in := range g.inputs {
		switch in.Name {
		case TransitionElapsed, TransitionDuration:
			continue
		case MachineEvents:
			if in.Default.Kind() != value.KindEventQueue {
				return m.errorf(ErrTypeMismatch, in.Name, "input %q must be %s", MachineEvents, value.KindEventQueue)
			}
			continue
		}
		if prev, ok := m.input(in.Name); ok {
			if prev.Default.Kind() != in.Default.Kind() {
				return m.errorf(ErrTypeMismatch, in.Name, "input declared as %s and %s", prev.Default.Kind(), in.Default.Kind())
			}
			continue
		}
		m.inputs = append(m.inputs, in)
	}
	return nil
}

func (m *StateMachine) input(name string) (InputParam, bool) {
	for _, in := range m.inputs {
		if in.Name == name {
			return in, true
		}
	}
	return InputParam{}, false
}

func (m *StateMachine) errorf(kind error, node, format string, args ...any) error {
	return &BuildError{Err: kind, Graph: m.Name, Node: node, Detail: fmt.Sprintf(format, args...)}
}

// State returns a state by id.
func (m *StateMachine) State(id StateID) (*State, bool) {
	s, ok := m.states[id]
	return s, ok
}

// States returns the states in declaration order.
func (m *StateMachine) States() []*State {
	out := make([]*State, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.states[id])
	}
	return out
}

// Transitions returns every transition in declaration order.
func (m *StateMachine) Transitions() []*Transition {
	return append([]*Transition(nil), m.transitions...)
}

// TransitionsFrom returns the transitions leaving source, in declaration order.
func (m *StateMachine) TransitionsFrom(source StateID) []*Transition {
	var out []*Transition
	for _, t := range m.transitions {
		if t.Source == source {
			out = append(out, t)
		}
	}
	return out
}

// Interface describes the machine as a node: the union of its graphs' inputs
// plus the "events" queue, and a pose/time output.
func (m *StateMachine) Interface() NodeSpec {
	spec := NodeSpec{Outputs: poseOutputs}
	for _, in := range m.inputs {
		spec.Inputs = append(spec.Inputs, param(in.Name, in.Default))
	}
	spec.Inputs = append(spec.Inputs, param(MachineEvents, value.Zero(value.KindEventQueue)))
	return spec
}

// Clone returns a deep copy.
func (m *StateMachine) Clone() *StateMachine {
	if m == nil {
		return nil
	}
	out := &StateMachine{
		Name:   m.Name,
		Start:  m.Start,
		states: make(map[StateID]*State, len(m.states)),
		order:  append([]StateID(nil), m.order...),
		inputs: append([]InputParam(nil), m.inputs...),
	}
	for id, s := range m.states {
		out.states[id] = &State{ID: s.ID, Graph: s.Graph.Clone()}
	}
	for _, t := range m.transitions {
		tc := *t
		tc.Graph = t.Graph.Clone()
		out.transitions = append(out.transitions, &tc)
	}
	return out
}
