package scene

import (
	"fmt"

	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/glview"
)

// Geometry groups the positional variables of a node.
type Geometry struct {
	// Points are rows of 1, 2 or 3 coordinates. A row of length 1 holds
	// a Y value and takes its index as X. Missing Z is zero.
	// A nil Points leaves positions unchanged.
	Points [][]float32
	// Model is the node's local transform. nil leaves it unchanged.
	Model *glview.Mat4
}

// Appearance groups the per-point color variables of a node.
type Appearance struct {
	// Colors are RGB triplets in [0,1], one per point.
	Colors []ms3.Vec
	// Alphas are opacities in [0,1], one per point.
	Alphas []float32
	// PointSize in pixels for point primitives. Zero leaves it unchanged.
	PointSize float32
	// LineWidth in pixels for line primitives. Zero leaves it unchanged.
	LineWidth float32
}

// Connectivity groups the index variables of a node.
type Connectivity struct {
	// Indices into the node's points. Pairs for Lines, triplets for Triangles.
	Indices []uint32
}

// Variables is a node update. nil groups and nil fields are left unchanged.
type Variables struct {
	Geometry     *Geometry
	Appearance   *Appearance
	Connectivity *Connectivity
}

type dirtyFlags uint8

const (
	dirtyVertices dirtyFlags = 1 << iota
	dirtyIndices
	dirtyTexture
	dirtyAll = dirtyVertices | dirtyIndices | dirtyTexture
)

var (
	white = ms3.Vec{X: 1, Y: 1, Z: 1}
)

// vars is the committed variable state of a node.
type vars struct {
	positions []ms3.Vec
	colors    []ms3.Vec
	alphas    []float32
	indices   []uint32
	// explicitIndices is set when indices were supplied by the user.
	explicitIndices bool
	model           glview.Mat4
	pointSize       float32
	// lineWidth of zero defers to the Context.
	lineWidth float32
}

// stage returns the state resulting from applying upd to v without
// modifying v. Nothing is returned on validation failure.
func (v vars) stage(mode Mode, upd Variables) (vars, dirtyFlags, error) {
	next := v
	var flags dirtyFlags
	if g := upd.Geometry; g != nil {
		if g.Points != nil {
			pos, err := padPoints(g.Points)
			if err != nil {
				return v, 0, err
			}
			if len(pos) != len(next.positions) {
				// Per-point state no longer matches the points.
				next.colors = nil
				next.alphas = nil
				next.indices = nil
				next.explicitIndices = false
			}
			next.positions = pos
			flags |= dirtyVertices
		}
		if g.Model != nil {
			next.model = *g.Model
		}
	}
	npts := len(next.positions)
	if a := upd.Appearance; a != nil {
		if a.Colors != nil {
			if len(a.Colors) != npts {
				return v, 0, fmt.Errorf("%w: %d colors for %d points", ErrShape, len(a.Colors), npts)
			}
			next.colors = append([]ms3.Vec(nil), a.Colors...)
			flags |= dirtyVertices
		}
		if a.Alphas != nil {
			if len(a.Alphas) != npts {
				return v, 0, fmt.Errorf("%w: %d alphas for %d points", ErrShape, len(a.Alphas), npts)
			}
			next.alphas = append([]float32(nil), a.Alphas...)
			flags |= dirtyVertices
		}
		if a.PointSize < 0 {
			return v, 0, fmt.Errorf("%w: negative point size %v", ErrRange, a.PointSize)
		} else if a.PointSize > 0 {
			next.pointSize = a.PointSize
		}
		if a.LineWidth < 0 {
			return v, 0, fmt.Errorf("%w: negative line width %v", ErrRange, a.LineWidth)
		} else if a.LineWidth > 0 {
			next.lineWidth = a.LineWidth
		}
	}
	if c := upd.Connectivity; c != nil && c.Indices != nil {
		if err := validateIndices(mode, c.Indices, npts); err != nil {
			return v, 0, err
		}
		next.indices = append([]uint32(nil), c.Indices...)
		next.explicitIndices = true
		flags |= dirtyIndices
	}

	// Fill defaults for anything invalidated or never set.
	if next.colors == nil && npts > 0 {
		next.colors = make([]ms3.Vec, npts)
		for i := range next.colors {
			next.colors[i] = white
		}
		flags |= dirtyVertices
	}
	if next.alphas == nil && npts > 0 {
		next.alphas = make([]float32, npts)
		for i := range next.alphas {
			next.alphas[i] = 1
		}
		flags |= dirtyVertices
	}
	if next.indices == nil && mode == Lines {
		next.indices = sequentialPairs(npts)
		flags |= dirtyIndices
	}
	return next, flags, nil
}

// padPoints converts rows of 1, 2 or 3 coordinates to 3D positions.
func padPoints(rows [][]float32) ([]ms3.Vec, error) {
	pos := make([]ms3.Vec, len(rows))
	if len(rows) == 0 {
		return pos, nil
	}
	dim := len(rows[0])
	for i, row := range rows {
		if len(row) != dim {
			return nil, fmt.Errorf("%w: point %d has %d coordinates, want %d", ErrShape, i, len(row), dim)
		}
		switch dim {
		case 1:
			pos[i] = ms3.Vec{X: float32(i), Y: row[0]}
		case 2:
			pos[i] = ms3.Vec{X: row[0], Y: row[1]}
		case 3:
			pos[i] = ms3.Vec{X: row[0], Y: row[1], Z: row[2]}
		default:
			return nil, fmt.Errorf("%w: %d coordinates per point", ErrShape, dim)
		}
	}
	return pos, nil
}

// sequentialPairs connects consecutive points: (0,1), (1,2), ...
func sequentialPairs(npts int) []uint32 {
	if npts < 2 {
		return []uint32{}
	}
	idx := make([]uint32, 0, 2*(npts-1))
	for i := 1; i < npts; i++ {
		idx = append(idx, uint32(i-1), uint32(i))
	}
	return idx
}

func validateIndices(mode Mode, idx []uint32, npts int) error {
	switch mode {
	case Lines:
		if len(idx)%2 != 0 {
			return fmt.Errorf("%w: %d line indices is not a multiple of 2", ErrShape, len(idx))
		}
	case Triangles:
		if len(idx)%3 != 0 {
			return fmt.Errorf("%w: %d triangle indices is not a multiple of 3", ErrShape, len(idx))
		}
	}
	for i, v := range idx {
		if int(v) >= npts {
			return fmt.Errorf("%w: index %d references point %d of %d", ErrRange, i, v, npts)
		}
	}
	return nil
}
