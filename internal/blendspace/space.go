// Package blendspace locates a 2-D query position inside a fixed set of
// sample points and yields the blend weights of the samples that surround it.
package blendspace

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Point is a sample position. ID names the pose input the sample reads from.
type Point struct {
	ID   string
	X, Y float64
}

// Triangle indexes three points and caches their circumcircle.
type Triangle struct {
	A, B, C int

	CenterX, CenterY float64
	Radius           float64
}

// Weight is a sample's contribution to a query.
type Weight struct {
	Index  int
	Weight float64
}

// Space is a triangulated set of sample points. It is immutable after New.
type Space struct {
	Points    []Point
	Triangles []Triangle

	// boundary holds the segments used for queries outside every triangle:
	// the hull edges, or every point pair when no triangle exists.
	boundary [][2]int
}

var (
	ErrNoPoints       = errors.New("blend space has no points")
	ErrDuplicatePoint = errors.New("duplicate blend space point")
)

const (
	eps         = 1e-9
	weightFloor = 1e-12
)

// New triangulates points with Bowyer-Watson. Collinear sets produce no
// triangles and fall back to segment interpolation.
func New(points []Point) (*Space, error) {
	if len(points) == 0 {
		return nil, ErrNoPoints
	}
	ids := make(map[string]bool, len(points))
	coords := make(map[[2]float64]bool, len(points))
	for _, p := range points {
		if ids[p.ID] {
			return nil, fmt.Errorf("%w: id %q", ErrDuplicatePoint, p.ID)
		}
		if coords[[2]float64{p.X, p.Y}] {
			return nil, fmt.Errorf("%w: position (%g, %g)", ErrDuplicatePoint, p.X, p.Y)
		}
		ids[p.ID] = true
		coords[[2]float64{p.X, p.Y}] = true
	}

	s := &Space{Points: append([]Point(nil), points...)}
	s.Triangles = triangulate(s.Points)
	s.boundary = boundaryEdges(s.Triangles, len(s.Points))
	return s, nil
}

// Index returns the position of the point with the given id.
func (s *Space) Index(id string) (int, bool) {
	for i, p := range s.Points {
		if p.ID == id {
			return i, true
		}
	}
	return 0, false
}

// Locate returns the weights of the samples surrounding (x, y), heaviest
// first. Weights sum to 1. Inside a triangle they are barycentric; outside
// the hull they interpolate along the nearest boundary segment, which
// collapses to a single vertex past its ends.
func (s *Space) Locate(x, y float64) []Weight {
	first := []Weight{{Index: 0, Weight: 1}}
	if len(s.Points) == 1 || math.IsNaN(x) || math.IsNaN(y) {
		return first
	}
	for _, t := range s.Triangles {
		dx, dy := x-t.CenterX, y-t.CenterY
		if dx*dx+dy*dy > t.Radius*t.Radius*(1+eps)+eps {
			continue
		}
		if w, ok := s.barycentric(t, x, y); ok {
			return w
		}
	}
	if w := s.nearestBoundary(x, y); len(w) > 0 {
		return w
	}
	return first
}

func (s *Space) barycentric(t Triangle, x, y float64) ([]Weight, bool) {
	a, b, c := s.Points[t.A], s.Points[t.B], s.Points[t.C]
	det := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
	if det == 0 {
		return nil, false
	}
	l1 := ((b.Y-c.Y)*(x-c.X) + (c.X-b.X)*(y-c.Y)) / det
	l2 := ((c.Y-a.Y)*(x-c.X) + (a.X-c.X)*(y-c.Y)) / det
	l3 := 1 - l1 - l2
	if l1 < -eps || l2 < -eps || l3 < -eps {
		return nil, false
	}
	return normalized([]Weight{{t.A, l1}, {t.B, l2}, {t.C, l3}}), true
}

func (s *Space) nearestBoundary(x, y float64) []Weight {
	best := math.Inf(1)
	var out []Weight
	for _, e := range s.boundary {
		p, q := s.Points[e[0]], s.Points[e[1]]
		ex, ey := q.X-p.X, q.Y-p.Y
		f := 0.0
		if l2 := ex*ex + ey*ey; l2 > 0 {
			f = ((x-p.X)*ex + (y-p.Y)*ey) / l2
		}
		f = math.Max(0, math.Min(1, f))
		cx, cy := p.X+f*ex, p.Y+f*ey
		if d := (x-cx)*(x-cx) + (y-cy)*(y-cy); d < best {
			best = d
			out = []Weight{{e[0], 1 - f}, {e[1], f}}
		}
	}
	return normalized(out)
}

// normalized drops negligible weights, rescales the rest to sum to 1 and
// sorts heaviest first. Ties keep point order.
func normalized(ws []Weight) []Weight {
	out := ws[:0]
	var total float64
	for _, w := range ws {
		if w.Weight > weightFloor {
			out = append(out, w)
			total += w.Weight
		}
	}
	for i := range out {
		out[i].Weight /= total
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Index < out[j].Index
	})
	return out
}
