// Package runconfig decodes the HCL run file that tells the driver which
// graphs to play, for how long, with which inputs and events, and where to
// send the frames.
package runconfig

import (
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// Defaults applied to an absent or partial run block.
const (
	DefaultFPS    = 30
	DefaultFrames = 60
)

// File is the root of a run file.
type File struct {
	Run        *RunBlock        `hcl:"run,block"`
	Characters []CharacterBlock `hcl:"character,block"`
	Stream     *StreamBlock     `hcl:"stream,block"`
}

// RunBlock holds the timing shared by every character.
type RunBlock struct {
	FPS      float64 `hcl:"fps,optional"`
	Frames   int     `hcl:"frames,optional"`
	Start    float64 `hcl:"start,optional"`
	Mode     string  `hcl:"mode,optional"`
	Realtime bool    `hcl:"realtime,optional"`
	MaxDepth int     `hcl:"max_depth,optional"`
}

// CharacterBlock plays one library graph.
type CharacterBlock struct {
	Name    string        `hcl:"name,label"`
	Graph   string        `hcl:"graph"`
	Inputs  cty.Value     `hcl:"inputs,optional"`
	Events  []EventBlock  `hcl:"event,block"`
	Changes []ChangeBlock `hcl:"change,block"`
}

// EventBlock schedules an event.
type EventBlock struct {
	Name string  `hcl:"name,label"`
	At   float64 `hcl:"at"`
}

// ChangeBlock schedules a new value for an input.
type ChangeBlock struct {
	Input string    `hcl:"input,label"`
	At    float64   `hcl:"at"`
	Value cty.Value `hcl:"value"`
}

// StreamBlock sends frames to a socket.io endpoint.
type StreamBlock struct {
	URL                string `hcl:"url"`
	Namespace          string `hcl:"namespace,optional"`
	Event              string `hcl:"event,optional"`
	InsecureSkipVerify bool   `hcl:"insecure_skip_verify,optional"`
	Timeout            string `hcl:"timeout,optional"`
}

// ConnectTimeout parses Timeout; it is zero when unset.
func (s *StreamBlock) ConnectTimeout() (time.Duration, error) {
	if s.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return 0, fmt.Errorf("stream timeout: %w", err)
	}
	return d, nil
}

// Load reads and decodes the run file at path.
func Load(path string) (*File, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}
	return decode(path, file.Body)
}

// Parse decodes run file source; filename only labels diagnostics.
func Parse(src []byte, filename string) (*File, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	return decode(filename, file.Body)
}

func decode(name string, body hcl.Body) (*File, error) {
	var f File
	if diags := gohcl.DecodeBody(body, nil, &f); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", name, diags)
	}
	if err := f.normalize(); err != nil {
		return nil, fmt.Errorf("run file %s: %w", name, err)
	}
	return &f, nil
}

func (f *File) normalize() error {
	if f.Run == nil {
		f.Run = &RunBlock{}
	}
	if f.Run.FPS == 0 {
		f.Run.FPS = DefaultFPS
	}
	if f.Run.Frames == 0 {
		f.Run.Frames = DefaultFrames
	}
	if f.Run.FPS < 0 {
		return fmt.Errorf("fps must be positive, got %v", f.Run.FPS)
	}
	if f.Run.Frames < 0 {
		return fmt.Errorf("frames must not be negative, got %d", f.Run.Frames)
	}
	if len(f.Characters) == 0 {
		return errors.New("at least one character block is required")
	}
	seen := make(map[string]bool, len(f.Characters))
	for _, c := range f.Characters {
		if seen[c.Name] {
			return fmt.Errorf("duplicate character %q", c.Name)
		}
		seen[c.Name] = true
		if !c.Inputs.IsNull() && !c.Inputs.Type().IsObjectType() && !c.Inputs.Type().IsMapType() {
			return fmt.Errorf("character %q: inputs must be an object, got %s", c.Name, c.Inputs.Type().FriendlyName())
		}
	}
	if f.Stream != nil {
		if _, err := f.Stream.ConnectTimeout(); err != nil {
			return err
		}
	}
	return nil
}
