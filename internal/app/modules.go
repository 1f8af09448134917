package app

import (
	"github.com/vk/animgraph/internal/assets"
	"github.com/vk/animgraph/modules/humanoid"
)

// coreModules is the definitive list of all asset modules that are compiled
// into the animgraph binary.
var coreModules = []assets.Module{
	&humanoid.Module{},
}
