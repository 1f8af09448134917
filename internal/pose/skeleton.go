package pose

import "fmt"

// Skeleton is a bone hierarchy with a rest (bind) pose. The hierarchy is
// implied by the bone paths.
type Skeleton struct {
	Name string

	rest *Pose
}

// NewSkeleton builds a skeleton from its rest pose. Every bone's parent path
// must itself be a bone of the skeleton.
func NewSkeleton(name string, rest *Pose) (*Skeleton, error) {
	if rest == nil || rest.Len() == 0 {
		return nil, fmt.Errorf("skeleton %q has no bones", name)
	}
	for _, b := range rest.bones {
		if parent, ok := b.Path.Parent(); ok && !rest.Has(parent) {
			return nil, fmt.Errorf("skeleton %q: bone %q has no parent bone %q", name, b.Path, parent)
		}
	}
	return &Skeleton{Name: name, rest: rest.WithTimestamp(0)}, nil
}

// Bones returns the bone paths in rest-pose order.
func (s *Skeleton) Bones() []EntityPath { return s.rest.Paths() }

// Has reports whether path is a bone of the skeleton.
func (s *Skeleton) Has(path EntityPath) bool { return s.rest.Has(path) }

// Rest returns the rest transform of path.
func (s *Skeleton) Rest(path EntityPath) (Transform, bool) { return s.rest.Get(path) }

// RestPose returns a copy of the rest pose.
func (s *Skeleton) RestPose() *Pose { return s.rest.Clone() }

// Extend returns a copy of p to which every skeleton bone missing from p has
// been added with its rest transform.
func (s *Skeleton) Extend(p *Pose) *Pose {
	out := p.Clone()
	if out == nil {
		out = New(0)
	}
	for _, b := range s.rest.bones {
		if !out.Has(b.Path) {
			out.Set(b.Path, b.Transform)
		}
	}
	return out
}
