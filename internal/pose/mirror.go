package pose

import (
	"fmt"
	"regexp"

	"github.com/go-gl/mathgl/mgl64"
)

// Plane selects the mirror plane by its normal axis.
type Plane int

const (
	// PlaneYZ mirrors across the YZ plane (negates X). This is the usual
	// left/right plane of a Y-up character facing Z.
	PlaneYZ Plane = iota
	PlaneXZ
	PlaneXY
)

func (p Plane) String() string {
	switch p {
	case PlaneYZ:
		return "yz"
	case PlaneXZ:
		return "xz"
	case PlaneXY:
		return "xy"
	default:
		return fmt.Sprintf("Plane(%d)", int(p))
	}
}

// NameMapper maps a single path segment to its mirror counterpart.
type NameMapper interface {
	MirrorName(name string) (string, bool)
}

// PatternMapper swaps Key1 and Key2 where they appear between the Before and
// After patterns of a segment name.
type PatternMapper struct {
	Key1, Key2    string
	Before, After string

	re *regexp.Regexp
}

// NewPatternMapper compiles a mapper. Before and After are regular
// expressions; the keys are matched literally.
func NewPatternMapper(key1, key2, before, after string) (*PatternMapper, error) {
	re, err := regexp.Compile(fmt.Sprintf("(%s)(%s|%s)(%s)",
		before, regexp.QuoteMeta(key1), regexp.QuoteMeta(key2), after))
	if err != nil {
		return nil, fmt.Errorf("compiling mirror pattern: %w", err)
	}
	return &PatternMapper{Key1: key1, Key2: key2, Before: before, After: after, re: re}, nil
}

// DefaultMapper swaps a trailing "L" and "R", so "Arm.L" mirrors "Arm.R".
func DefaultMapper() *PatternMapper {
	m, err := NewPatternMapper("L", "R", ".*", "$")
	if err != nil {
		panic(err)
	}
	return m
}

// MirrorName implements NameMapper.
func (m *PatternMapper) MirrorName(name string) (string, bool) {
	loc := m.re.FindStringSubmatchIndex(name)
	if loc == nil {
		return name, false
	}
	start, end := loc[4], loc[5]
	repl := m.Key1
	if name[start:end] == m.Key1 {
		repl = m.Key2
	}
	return name[:start] + repl + name[end:], true
}

// Mirror reflects poses across a plane and swaps mirror-paired bones.
type Mirror struct {
	Plane  Plane
	Mapper NameMapper
}

// DefaultMirror uses PlaneYZ and DefaultMapper.
func DefaultMirror() Mirror {
	return Mirror{Plane: PlaneYZ, Mapper: DefaultMapper()}
}

// Path returns the mirror counterpart of p, segment by segment. Segments the
// mapper does not recognise are kept.
func (m Mirror) Path(p EntityPath) EntityPath {
	if m.Mapper == nil {
		return p
	}
	return p.MapSegments(func(s string) string {
		out, _ := m.Mapper.MirrorName(s)
		return out
	})
}

// Transform reflects a single transform. Applying it twice is exact.
func (m Mirror) Transform(t Transform) Transform {
	tr, q := t.Translation, t.Rotation
	switch m.Plane {
	case PlaneXZ:
		tr[1] = -tr[1]
		q = mgl64.Quat{W: q.W, V: mgl64.Vec3{-q.V[0], q.V[1], -q.V[2]}}
	case PlaneXY:
		tr[2] = -tr[2]
		q = mgl64.Quat{W: q.W, V: mgl64.Vec3{-q.V[0], -q.V[1], q.V[2]}}
	default:
		tr[0] = -tr[0]
		q = mgl64.Quat{W: q.W, V: mgl64.Vec3{q.V[0], -q.V[1], -q.V[2]}}
	}
	return Transform{Translation: tr, Rotation: q, Scale: t.Scale}
}

// Pose mirrors p. Each bone receives the reflected transform of its mirror
// counterpart, or its own reflected transform when the counterpart is absent.
// Bone order and timestamp are preserved.
func (m Mirror) Pose(p *Pose) *Pose {
	if p == nil {
		return nil
	}
	out := New(p.Timestamp)
	for _, b := range p.bones {
		src := b.Transform
		if mirrored := m.Path(b.Path); mirrored != b.Path {
			if t, ok := p.Get(mirrored); ok {
				src = t
			}
		}
		out.Set(b.Path, m.Transform(src))
	}
	return out
}
