// Package assets holds the clips, skeletons, graphs and state machines a host
// has loaded, addressed by string id, and resolves the references between
// them.
package assets

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/vk/animgraph/internal/graph"
	"github.com/vk/animgraph/internal/pose"
)

var (
	ErrDuplicateAsset = errors.New("duplicate asset id")
	ErrAssetNotFound  = errors.New("asset not found")
)

// Module contributes assets to a Library.
type Module interface {
	Register(l *Library) error
}

// StateDef names the library graph that plays a state.
type StateDef struct {
	ID    graph.StateID
	Graph string
}

// TransitionDef is a transition whose graph is a library id.
type TransitionDef struct {
	ID       string
	Source   graph.StateID
	Target   graph.StateID
	Trigger  string
	Duration float64
	Graph    string
}

// MachineDef describes a state machine in terms of library graphs.
type MachineDef struct {
	Start       graph.StateID
	States      []StateDef
	Transitions []TransitionDef
}

// Library stores asset definitions. Graphs and machines are resolved on
// every lookup, so callers always receive private copies. It is safe for
// concurrent use.
type Library struct {
	mu        sync.RWMutex
	clips     map[string]*pose.Clip
	skeletons map[string]*pose.Skeleton
	graphs    map[string]*graph.Graph
	machines  map[string]MachineDef
}

// New returns an empty Library.
func New() *Library {
	return &Library{
		clips:     make(map[string]*pose.Clip),
		skeletons: make(map[string]*pose.Skeleton),
		graphs:    make(map[string]*graph.Graph),
		machines:  make(map[string]MachineDef),
	}
}

// Register lets each module add its assets.
func (l *Library) Register(mods ...Module) error {
	for _, m := range mods {
		if err := m.Register(l); err != nil {
			return fmt.Errorf("registering %T: %w", m, err)
		}
	}
	return nil
}

// AddClip stores a validated clip.
func (l *Library) AddClip(id string, c *pose.Clip) error {
	if c == nil {
		return fmt.Errorf("clip %q is nil", id)
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("clip %q: %w", id, err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return add(l.clips, "clip", id, c)
}

// AddSkeleton stores a skeleton.
func (l *Library) AddSkeleton(id string, s *pose.Skeleton) error {
	if s == nil {
		return fmt.Errorf("skeleton %q is nil", id)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return add(l.skeletons, "skeleton", id, s)
}

// AddGraph stores a copy of g. Its clip, skeleton, sub-graph and state
// machine nodes may refer to other assets by id instead of holding them.
func (l *Library) AddGraph(id string, g *graph.Graph) error {
	if g == nil {
		return fmt.Errorf("graph %q is nil", id)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return add(l.graphs, "graph", id, g.Clone())
}

// AddMachine stores a state machine definition. It is checked when resolved.
func (l *Library) AddMachine(id string, def MachineDef) error {
	def.States = append([]StateDef(nil), def.States...)
	def.Transitions = append([]TransitionDef(nil), def.Transitions...)
	l.mu.Lock()
	defer l.mu.Unlock()
	return add(l.machines, "machine", id, def)
}

func add[T any](m map[string]T, kind, id string, v T) error {
	if id == "" {
		return fmt.Errorf("%s id is empty", kind)
	}
	if _, ok := m[id]; ok {
		return fmt.Errorf("%w: %s %q", ErrDuplicateAsset, kind, id)
	}
	m[id] = v
	return nil
}

// Clip returns a stored clip. Clips are shared, not copied.
func (l *Library) Clip(id string) (*pose.Clip, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return lookup(l.clips, "clip", id)
}

// Skeleton returns a stored skeleton.
func (l *Library) Skeleton(id string) (*pose.Skeleton, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return lookup(l.skeletons, "skeleton", id)
}

func lookup[T any](m map[string]T, kind, id string) (T, error) {
	v, ok := m[id]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s %q", ErrAssetNotFound, kind, id)
	}
	return v, nil
}

// Graph returns graph id with every reference resolved, recursively.
// Circular references fail with graph.ErrCycleDetected.
func (l *Library) Graph(id string) (*graph.Graph, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	r := &resolution{l: l}
	return r.graph(id)
}

// Machine returns state machine id with its graphs resolved.
func (l *Library) Machine(id string) (*graph.StateMachine, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	r := &resolution{l: l}
	return r.machine(id)
}

// GraphIDs returns the stored graph ids, sorted.
func (l *Library) GraphIDs() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return sortedKeys(l.graphs)
}

// MachineIDs returns the stored state machine ids, sorted.
func (l *Library) MachineIDs() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return sortedKeys(l.machines)
}

// ClipIDs returns the stored clip ids, sorted.
func (l *Library) ClipIDs() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return sortedKeys(l.clips)
}

func sortedKeys[T any](m map[string]T) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
