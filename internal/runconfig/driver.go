package runconfig

import (
	"fmt"

	"github.com/vk/animgraph/internal/driver"
	"github.com/vk/animgraph/internal/graph"
	"github.com/vk/animgraph/internal/value"
)

// DriverConfig builds the driver configuration of character c, whose graph
// is g. Input values are converted to the kinds g declares.
func (f *File) DriverConfig(c CharacterBlock, g *graph.Graph) (driver.Config, error) {
	mode, err := driver.ParseTimeMode(f.Run.Mode)
	if err != nil {
		return driver.Config{}, err
	}
	kindOf := func(name string) (value.Kind, bool) {
		in, ok := g.InputParam(name)
		return in.Default.Kind(), ok
	}

	inputs, err := InputValues(c.Inputs, kindOf)
	if err != nil {
		return driver.Config{}, fmt.Errorf("character %q: %w", c.Name, err)
	}
	cfg := driver.Config{
		Character: c.Name,
		FPS:       f.Run.FPS,
		Frames:    f.Run.Frames,
		Start:     f.Run.Start,
		Mode:      mode,
		Realtime:  f.Run.Realtime,
		Inputs:    inputs,
	}
	for _, e := range c.Events {
		cfg.Events = append(cfg.Events, driver.Event{At: e.At, Name: e.Name})
	}
	for _, ch := range c.Changes {
		kind, ok := kindOf(ch.Input)
		if !ok {
			return driver.Config{}, fmt.Errorf("character %q: change of undeclared input %q", c.Name, ch.Input)
		}
		v, err := ToValue(ch.Value, kind)
		if err != nil {
			return driver.Config{}, fmt.Errorf("character %q: change of %q at %gs: %w", c.Name, ch.Input, ch.At, err)
		}
		cfg.Changes = append(cfg.Changes, driver.InputChange{At: ch.At, Name: ch.Input, Value: v})
	}
	return cfg, nil
}
