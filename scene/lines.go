package scene

import (
	"fmt"

	"github.com/soypat/glgl/math/ms3"
)

// LineSet is the input of a line collection node.
type LineSet struct {
	// Lines is indexed by line, point within line and coordinate. Every line
	// has the same number of points and every point the same number of
	// coordinates, 1 to 3. A single coordinate is a Y value with the point
	// index as X. Missing Z is zero.
	Lines [][][]float32
	// Offsets is added to the Y coordinate of every point of a line.
	// One value per line, or a single spacing s moving line i by i*s.
	Offsets []float32
	// ZOrder is added to the Z coordinate of every point of a line.
	// Length 0, 1 or one per line.
	ZOrder []float32
	// Colors holds one color for all lines, one per line or one per
	// point, the latter ordered line by line. Empty means white.
	Colors []ms3.Vec
	// Alphas holds one opacity for all lines, one per line or one per point.
	// Empty means opaque.
	Alphas []float32
	// Width of the lines in pixels. Zero leaves it unchanged.
	Width float32
}

// SetLines replaces the contents of a line collection node. Points of line i
// are stored after those of line i-1 and consecutive points within a line
// are connected.
func (n *Node) SetLines(l LineSet) error {
	if n.kind != KindLineCollection {
		return fmt.Errorf("%w: SetLines on %s", ErrKind, n.kind)
	}
	upd, err := l.variables()
	if err != nil {
		return err
	}
	return n.Update(upd)
}

// variables flattens l into point, color, alpha and index arrays.
func (l LineSet) variables() (Variables, error) {
	nlines := len(l.Lines)
	npts, dim := 0, 0
	if nlines > 0 {
		npts = len(l.Lines[0])
		if npts > 0 {
			dim = len(l.Lines[0][0])
		}
	}
	if npts > 0 && (dim < 1 || dim > 3) {
		return Variables{}, fmt.Errorf("%w: %d coordinates per point", ErrShape, dim)
	}
	offsets, err := lineOffsets(l.Offsets, nlines)
	if err != nil {
		return Variables{}, err
	}
	zorder, err := perLine("z-order", l.ZOrder, nlines)
	if err != nil {
		return Variables{}, err
	}

	total := nlines * npts
	points := make([][]float32, 0, total)
	flat := make([]float32, 3*total)
	indices := make([]uint32, 0, 2*nlines*max(npts-1, 0))
	for i, line := range l.Lines {
		if len(line) != npts {
			return Variables{}, fmt.Errorf("%w: line %d has %d points, want %d", ErrShape, i, len(line), npts)
		}
		base := i * npts
		for j, p := range line {
			if len(p) != dim {
				return Variables{}, fmt.Errorf("%w: line %d point %d has %d coordinates, want %d", ErrShape, i, j, len(p), dim)
			}
			xyz := flat[3*(base+j) : 3*(base+j)+3 : 3*(base+j)+3]
			switch dim {
			case 1:
				xyz[0], xyz[1] = float32(j), p[0]
			case 2:
				xyz[0], xyz[1] = p[0], p[1]
			case 3:
				copy(xyz, p)
			}
			xyz[1] += offsets[i]
			xyz[2] += zorder[i]
			points = append(points, xyz)
			if j > 0 {
				indices = append(indices, uint32(base+j-1), uint32(base+j))
			}
		}
	}

	app := &Appearance{LineWidth: l.Width}
	switch len(l.Colors) {
	case 0:
	case total:
		app.Colors = l.Colors
	case 1:
		app.Colors = broadcastColor(l.Colors[0], total)
	case nlines:
		app.Colors = make([]ms3.Vec, 0, total)
		for _, c := range l.Colors {
			for j := 0; j < npts; j++ {
				app.Colors = append(app.Colors, c)
			}
		}
	default:
		return Variables{}, fmt.Errorf("%w: %d colors for %d lines of %d points", ErrShape, len(l.Colors), nlines, npts)
	}
	switch len(l.Alphas) {
	case 0:
	case total:
		app.Alphas = l.Alphas
	case 1, nlines:
		alphas, _ := perLine("alphas", l.Alphas, nlines)
		app.Alphas = make([]float32, 0, total)
		for _, a := range alphas {
			for j := 0; j < npts; j++ {
				app.Alphas = append(app.Alphas, a)
			}
		}
	default:
		return Variables{}, fmt.Errorf("%w: %d alphas for %d lines of %d points", ErrShape, len(l.Alphas), nlines, npts)
	}
	if app.Colors == nil {
		app.Colors = broadcastColor(white, total)
	}
	if app.Alphas == nil {
		app.Alphas = broadcastAlpha(1, total)
	}
	return Variables{
		Geometry:     &Geometry{Points: points},
		Appearance:   app,
		Connectivity: &Connectivity{Indices: indices},
	}, nil
}

// lineOffsets returns the Y shift of each line. A single value is a
// spacing between consecutive lines unless there is exactly one line.
func lineOffsets(v []float32, nlines int) ([]float32, error) {
	if len(v) != 1 || nlines == 1 {
		return perLine("offsets", v, nlines)
	}
	out := make([]float32, nlines)
	for i := range out {
		out[i] = float32(i) * v[0]
	}
	return out, nil
}

// perLine broadcasts v to one value per line. An empty v gives zeros.
func perLine(name string, v []float32, nlines int) ([]float32, error) {
	out := make([]float32, nlines)
	switch len(v) {
	case 0:
	case 1:
		for i := range out {
			out[i] = v[0]
		}
	case nlines:
		copy(out, v)
	default:
		return nil, fmt.Errorf("%w: %d %s for %d lines", ErrShape, len(v), name, nlines)
	}
	return out, nil
}

func broadcastColor(c ms3.Vec, n int) []ms3.Vec {
	out := make([]ms3.Vec, n)
	for i := range out {
		out[i] = c
	}
	return out
}

func broadcastAlpha(a float32, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = a
	}
	return out
}
