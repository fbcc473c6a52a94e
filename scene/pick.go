package scene

import (
	"math"

	"github.com/soypat/glview/camera"
	"github.com/soypat/glview/internal/d3"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// Pick returns the index of the point of node id closest to the normalized
// device coordinates (x, y), considering only points within maxDist of it
// and in front of the camera.
func (s *Scene) Pick(id NodeID, cam camera.Camera, x, y, maxDist float64) (index int, ok bool) {
	n := s.Node(id)
	if n == nil || len(n.v.positions) == 0 {
		return -1, false
	}
	m := camera.Combined(cam).Mul(n.Model())
	pts := make(ndcPoints, 0, len(n.v.positions))
	for i, p := range n.v.positions {
		q := d3.FromMS3(p)
		h := m.Apply4(q.X, q.Y, q.Z, 1)
		if h[3] <= 0 {
			continue // Behind the eye.
		}
		pts = append(pts, ndcPoint{x: h[0] / h[3], y: h[1] / h[3], idx: i})
	}
	if len(pts) == 0 {
		return -1, false
	}
	tree := kdtree.New(pts, false)
	got, dist2 := tree.Nearest(ndcPoint{x: x, y: y, idx: -1})
	if got == nil || dist2 > maxDist*maxDist || math.IsNaN(dist2) {
		return -1, false
	}
	return got.(ndcPoint).idx, true
}

// ndcPoint is a projected node point indexed by kdtree.
type ndcPoint struct {
	x, y float64
	idx  int
}

func (p ndcPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(ndcPoint)
	switch d {
	case 0:
		return p.x - q.x
	case 1:
		return p.y - q.y
	}
	panic("unreachable")
}

func (p ndcPoint) Dims() int { return 2 }

// Distance returns the squared euclidean distance.
func (p ndcPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(ndcPoint)
	dx, dy := p.x-q.x, p.y-q.y
	return dx*dx + dy*dy
}

type ndcPoints []ndcPoint

// Index returns the ith element of the list of points.
func (p ndcPoints) Index(i int) kdtree.Comparable { return p[i] }

// Len returns the length of the list.
func (p ndcPoints) Len() int { return len(p) }

// Pivot partitions the list based on the dimension specified.
func (p ndcPoints) Pivot(d kdtree.Dim) int {
	pl := ndcPlane{dim: d, points: p}
	return kdtree.Partition(pl, kdtree.MedianOfMedians(pl))
}

// Slice returns a slice of the list using zero-based half
// open indexing equivalent to built-in slice indexing.
func (p ndcPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

type ndcPlane struct {
	dim    kdtree.Dim
	points ndcPoints
}

func (p ndcPlane) Less(i, j int) bool {
	return p.points[i].Compare(p.points[j], p.dim) < 0
}
func (p ndcPlane) Swap(i, j int) {
	p.points[i], p.points[j] = p.points[j], p.points[i]
}
func (p ndcPlane) Len() int {
	return len(p.points)
}
func (p ndcPlane) Slice(start, end int) kdtree.SortSlicer {
	p.points = p.points[start:end]
	return p
}
