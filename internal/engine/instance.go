package engine

import (
	"fmt"

	"github.com/vk/animgraph/internal/graph"
	"github.com/vk/animgraph/internal/value"
)

// Instance is the per-character state of one graph: host input values, the
// runtime state of its state machines and the graphs its references resolved
// to. An Instance must not be evaluated from two goroutines at once.
type Instance struct {
	graph    *graph.Graph
	inputs   map[string]value.Value
	machines map[*graph.Node]*machineState
	graphs   map[*graph.Node]*graph.Graph
	defs     map[*graph.Node]*graph.StateMachine
	calls    uint64
}

// NewInstance returns a fresh instance of a private copy of g.
func NewInstance(g *graph.Graph) *Instance {
	inst := &Instance{graph: g.Clone(), inputs: make(map[string]value.Value)}
	inst.Reset()
	return inst
}

// Graph returns the instance's graph.
func (i *Instance) Graph() *graph.Graph { return i.graph }

// Calls returns the number of Evaluate calls made on the instance.
func (i *Instance) Calls() uint64 { return i.calls }

// SetInput overrides the default of one of the graph's input parameters.
func (i *Instance) SetInput(name string, v value.Value) error {
	in, ok := i.graph.InputParam(name)
	if !ok {
		return fmt.Errorf("set input %q: %w", name, graph.ErrUnknownPin)
	}
	if in.Default.Kind() != v.Kind() {
		return fmt.Errorf("set input %q: %w: want %s, got %s", name, graph.ErrTypeMismatch, in.Default.Kind(), v.Kind())
	}
	i.inputs[name] = v
	return nil
}

// Input returns the value the graph currently reads for an input parameter.
func (i *Instance) Input(name string) (value.Value, bool) {
	if v, ok := i.inputs[name]; ok {
		return v, true
	}
	in, ok := i.graph.InputParam(name)
	return in.Default, ok
}

// ClearInput restores an input parameter to its default.
func (i *Instance) ClearInput(name string) { delete(i.inputs, name) }

// Reset forgets all state machine progress and resolved references.
func (i *Instance) Reset() {
	i.machines = make(map[*graph.Node]*machineState)
	i.graphs = make(map[*graph.Node]*graph.Graph)
	i.defs = make(map[*graph.Node]*graph.StateMachine)
}

func (i *Instance) machineState(n *graph.Node, m *graph.StateMachine) *machineState {
	st, ok := i.machines[n]
	if !ok {
		st = &machineState{machine: m}
		i.machines[n] = st
	}
	return st
}

// MachineStatus describes a state machine's progress.
type MachineStatus struct {
	Active     graph.StateID
	StateStart float64
	// Transition is the id of the running transition, empty when idle.
	Transition string
}

// Machine reports the status of the state machine node with the given name
// in the instance's top-level graph. It is false until the machine has been
// evaluated once.
func (i *Instance) Machine(node string) (MachineStatus, bool) {
	n, ok := i.graph.Node(node)
	if !ok {
		return MachineStatus{}, false
	}
	st, ok := i.machines[n]
	if !ok || !st.started {
		return MachineStatus{}, false
	}
	status := MachineStatus{Active: st.active, StateStart: st.stateStart}
	if st.running != nil {
		status.Transition = st.running.ID
	}
	return status, true
}
