package pose

// Bone pairs a path with its local transform.
type Bone struct {
	Path      EntityPath
	Transform Transform
}

// Pose is an ordered set of bone transforms sampled at Timestamp. Paths are
// unique; insertion order is preserved for display and iteration.
type Pose struct {
	Timestamp float64

	bones []Bone
	index map[EntityPath]int
}

// New returns an empty pose at the given timestamp.
func New(timestamp float64) *Pose {
	return &Pose{Timestamp: timestamp, index: make(map[EntityPath]int)}
}

// FromBones builds a pose from bones in order. Later duplicates overwrite
// earlier ones in place.
func FromBones(timestamp float64, bones ...Bone) *Pose {
	p := New(timestamp)
	for _, b := range bones {
		p.Set(b.Path, b.Transform)
	}
	return p
}

// Set inserts or replaces the transform for path.
func (p *Pose) Set(path EntityPath, t Transform) {
	if p.index == nil {
		p.index = make(map[EntityPath]int)
	}
	if i, ok := p.index[path]; ok {
		p.bones[i].Transform = t
		return
	}
	p.index[path] = len(p.bones)
	p.bones = append(p.bones, Bone{Path: path, Transform: t})
}

// Get returns the transform for path.
func (p *Pose) Get(path EntityPath) (Transform, bool) {
	if p == nil {
		return Transform{}, false
	}
	i, ok := p.index[path]
	if !ok {
		return Transform{}, false
	}
	return p.bones[i].Transform, true
}

// Has reports whether the pose contains path.
func (p *Pose) Has(path EntityPath) bool {
	_, ok := p.Get(path)
	return ok
}

// Len returns the number of bones.
func (p *Pose) Len() int {
	if p == nil {
		return 0
	}
	return len(p.bones)
}

// Bones returns a copy of the bones in order.
func (p *Pose) Bones() []Bone {
	if p == nil {
		return nil
	}
	out := make([]Bone, len(p.bones))
	copy(out, p.bones)
	return out
}

// Paths returns the bone paths in order.
func (p *Pose) Paths() []EntityPath {
	if p == nil {
		return nil
	}
	out := make([]EntityPath, len(p.bones))
	for i, b := range p.bones {
		out[i] = b.Path
	}
	return out
}

// Clone returns a deep copy.
func (p *Pose) Clone() *Pose {
	if p == nil {
		return nil
	}
	out := &Pose{
		Timestamp: p.Timestamp,
		bones:     make([]Bone, len(p.bones)),
		index:     make(map[EntityPath]int, len(p.index)),
	}
	copy(out.bones, p.bones)
	for k, v := range p.index {
		out.index[k] = v
	}
	return out
}

// WithTimestamp returns a copy stamped with t.
func (p *Pose) WithTimestamp(t float64) *Pose {
	out := p.Clone()
	if out == nil {
		out = New(t)
	}
	out.Timestamp = t
	return out
}

// Global returns the character-space transform of path by composing the local
// transforms of every ancestor present in the pose. Ancestors missing from the
// pose contribute the identity.
func (p *Pose) Global(path EntityPath) (Transform, bool) {
	local, ok := p.Get(path)
	if !ok {
		return Transform{}, false
	}
	parent, hasParent := path.Parent()
	if !hasParent {
		return local, true
	}
	return p.globalOrIdentity(parent).Mul(local), true
}

// ParentGlobal returns the character-space transform of path's parent, or the
// identity for root-level bones.
func (p *Pose) ParentGlobal(path EntityPath) Transform {
	if parent, ok := path.Parent(); ok {
		return p.globalOrIdentity(parent)
	}
	return Identity()
}

func (p *Pose) globalOrIdentity(path EntityPath) Transform {
	if g, ok := p.Global(path); ok {
		return g
	}
	if parent, ok := path.Parent(); ok {
		return p.globalOrIdentity(parent)
	}
	return Identity()
}
