// Package humanoid registers a procedurally generated humanoid character: its
// skeleton, gait and jump clips, locomotion and reach graphs, and the state
// machine that switches between idling, moving and jumping.
package humanoid

import (
	"fmt"

	"github.com/vk/animgraph/internal/assets"
	"github.com/vk/animgraph/internal/graph"
)

// Asset ids registered by the module.
const (
	SkeletonID = "humanoid"

	ClipIdle   = "humanoid/idle"
	ClipWalk   = "humanoid/walk"
	ClipRun    = "humanoid/run"
	ClipStrafe = "humanoid/strafe"
	ClipJump   = "humanoid/jump"

	GraphIdleLoop   = "idle_loop"
	GraphLocomotion = "locomotion"
	GraphJump       = "jump"
	GraphCrossfade  = "crossfade"
	GraphCharacter  = "character"
	GraphReach      = "reach"

	MachineCharacter = "character"
)

// States of the character machine.
const (
	StateIdle graph.StateID = "idle"
	StateMove graph.StateID = "move"
	StateJump graph.StateID = "jump"
)

// Module implements the assets.Module interface for this package.
type Module struct{}

// Register adds the humanoid assets to l.
func (m *Module) Register(l *assets.Library) error {
	skel, err := NewSkeleton()
	if err != nil {
		return fmt.Errorf("humanoid skeleton: %w", err)
	}
	if err := l.AddSkeleton(SkeletonID, skel); err != nil {
		return err
	}
	for id, c := range Clips() {
		if err := l.AddClip(id, c); err != nil {
			return err
		}
	}

	builders := []struct {
		id    string
		build func() (*graph.Graph, error)
	}{
		{GraphIdleLoop, idleLoopGraph},
		{GraphLocomotion, locomotionGraph},
		{GraphJump, jumpGraph},
		{GraphCrossfade, crossfadeGraph},
		{GraphCharacter, characterGraph},
		{GraphReach, reachGraph},
	}
	for _, b := range builders {
		g, err := b.build()
		if err != nil {
			return err
		}
		if err := l.AddGraph(b.id, g); err != nil {
			return err
		}
	}
	return l.AddMachine(MachineCharacter, characterMachine())
}
