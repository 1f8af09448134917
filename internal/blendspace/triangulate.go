package blendspace

import (
	"math"
	"sort"
)

type vertex struct{ x, y float64 }

type tri struct {
	a, b, c        int
	cx, cy, radius float64
	degenerate     bool
}

func newTri(vs []vertex, a, b, c int) tri {
	t := tri{a: a, b: b, c: c}
	pa, pb, pc := vs[a], vs[b], vs[c]
	d := 2 * (pa.x*(pb.y-pc.y) + pb.x*(pc.y-pa.y) + pc.x*(pa.y-pb.y))
	if math.Abs(d) < 1e-18 {
		t.degenerate = true
		return t
	}
	sa := pa.x*pa.x + pa.y*pa.y
	sb := pb.x*pb.x + pb.y*pb.y
	sc := pc.x*pc.x + pc.y*pc.y
	t.cx = (sa*(pb.y-pc.y) + sb*(pc.y-pa.y) + sc*(pa.y-pb.y)) / d
	t.cy = (sa*(pc.x-pb.x) + sb*(pa.x-pc.x) + sc*(pb.x-pa.x)) / d
	t.radius = math.Hypot(pa.x-t.cx, pa.y-t.cy)
	return t
}

func (t tri) contains(v vertex) bool {
	if t.degenerate {
		return true
	}
	return math.Hypot(v.x-t.cx, v.y-t.cy) <= t.radius*(1+1e-12)
}

type edge [2]int

func orderedEdge(a, b int) edge {
	if a > b {
		a, b = b, a
	}
	return edge{a, b}
}

// triangulate runs Bowyer-Watson over points inside a super triangle and
// keeps the triangles that do not touch it.
func triangulate(points []Point) []Triangle {
	n := len(points)
	if n < 3 {
		return nil
	}
	vs := make([]vertex, n, n+3)
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i, p := range points {
		vs[i] = vertex{p.X, p.Y}
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	span := math.Max(maxX-minX, maxY-minY)
	if span == 0 {
		span = 1
	}
	midX, midY := (minX+maxX)/2, (minY+maxY)/2
	vs = append(vs,
		vertex{midX - 20*span, midY - span},
		vertex{midX, midY + 20*span},
		vertex{midX + 20*span, midY - span},
	)

	tris := []tri{newTri(vs, n, n+1, n+2)}
	for i := 0; i < n; i++ {
		v := vs[i]
		counts := make(map[edge]int)
		var order []edge
		kept := tris[:0]
		for _, t := range tris {
			if !t.contains(v) {
				kept = append(kept, t)
				continue
			}
			for _, e := range []edge{orderedEdge(t.a, t.b), orderedEdge(t.b, t.c), orderedEdge(t.c, t.a)} {
				if counts[e] == 0 {
					order = append(order, e)
				}
				counts[e]++
			}
		}
		tris = kept
		for _, e := range order {
			if counts[e] == 1 {
				tris = append(tris, newTri(vs, e[0], e[1], i))
			}
		}
	}

	var out []Triangle
	for _, t := range tris {
		if t.degenerate || t.a >= n || t.b >= n || t.c >= n {
			continue
		}
		out = append(out, Triangle{A: t.a, B: t.b, C: t.c, CenterX: t.cx, CenterY: t.cy, Radius: t.radius})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		if out[i].B != out[j].B {
			return out[i].B < out[j].B
		}
		return out[i].C < out[j].C
	})
	return out
}

// boundaryEdges returns the edges owned by exactly one triangle. Without
// triangles every pair of points is a candidate segment.
func boundaryEdges(tris []Triangle, n int) [][2]int {
	if len(tris) == 0 {
		var out [][2]int
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				out = append(out, [2]int{i, j})
			}
		}
		return out
	}
	counts := make(map[edge]int)
	var order []edge
	for _, t := range tris {
		for _, e := range []edge{orderedEdge(t.A, t.B), orderedEdge(t.B, t.C), orderedEdge(t.C, t.A)} {
			if counts[e] == 0 {
				order = append(order, e)
			}
			counts[e]++
		}
	}
	var out [][2]int
	for _, e := range order {
		if counts[e] == 1 {
			out = append(out, [2]int(e))
		}
	}
	return out
}
