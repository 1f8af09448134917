package pose

import "strings"

// Separator joins the segments of an EntityPath.
const Separator = "/"

// EntityPath names a bone by the chain of entity names from the skeleton root,
// e.g. "Hips/Spine/Chest". The empty path is the character root itself.
type EntityPath string

// PathOf joins segments into an EntityPath. Empty segments are skipped.
func PathOf(segments ...string) EntityPath {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return EntityPath(strings.Join(parts, Separator))
}

// Parts returns the path segments, root first.
func (p EntityPath) Parts() []string {
	if p == "" {
		return nil
	}
	return strings.Split(string(p), Separator)
}

// Name returns the last segment.
func (p EntityPath) Name() string {
	if i := strings.LastIndex(string(p), Separator); i >= 0 {
		return string(p[i+1:])
	}
	return string(p)
}

// Parent returns the path without its last segment. The second result is
// false for root-level bones.
func (p EntityPath) Parent() (EntityPath, bool) {
	i := strings.LastIndex(string(p), Separator)
	if i < 0 {
		return "", false
	}
	return p[:i], true
}

// Child appends a segment.
func (p EntityPath) Child(name string) EntityPath {
	if p == "" {
		return EntityPath(name)
	}
	return p + Separator + EntityPath(name)
}

// Depth is the number of segments.
func (p EntityPath) Depth() int {
	if p == "" {
		return 0
	}
	return strings.Count(string(p), Separator) + 1
}

// MapSegments rewrites every segment with fn.
func (p EntityPath) MapSegments(fn func(string) string) EntityPath {
	parts := p.Parts()
	for i, part := range parts {
		parts[i] = fn(part)
	}
	return EntityPath(strings.Join(parts, Separator))
}

func (p EntityPath) String() string { return string(p) }
