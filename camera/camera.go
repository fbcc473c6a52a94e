// Package camera implements the projection and view transforms used to
// draw a scene: an orbiting perspective Arcball, an orthographic Rect
// and a pixel-space Screen camera.
package camera

import (
	"errors"
	"fmt"

	"github.com/soypat/glview"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrSingular is returned by Unproject when the combined
	// projection*view matrix of the camera has no inverse.
	ErrSingular = errors.New("camera: singular projection*view matrix")
	// ErrShape is returned when point rows have an unsupported dimension.
	ErrShape = errors.New("camera: bad point shape")
)

// Camera produces the projection and view matrices a scene is drawn with.
type Camera interface {
	// Matrices returns the current projection and view transforms.
	// It never modifies the camera.
	Matrices() (proj, view glview.Mat4)
	// SetSize informs the camera of the viewport size in pixels.
	SetSize(width, height int)
}

// Combined returns proj*view of the camera.
func Combined(c Camera) glview.Mat4 {
	proj, view := c.Matrices()
	return proj.Mul(view)
}

// Project maps data space points to normalized device space. Points are
// padded to homogeneous coordinates with W=1, multiplied by
// projection*view and divided by the resulting W.
func Project(c Camera, pts []r3.Vec) []r3.Vec {
	return transformPoints(Combined(c), pts)
}

// Unproject maps normalized device space points back to data space
// using the inverse of projection*view.
func Unproject(c Camera, pts []r3.Vec) ([]r3.Vec, error) {
	m := Combined(c)
	if m.Singular() {
		return nil, ErrSingular
	}
	return transformPoints(m.Inv(), pts), nil
}

func transformPoints(m glview.Mat4, pts []r3.Vec) []r3.Vec {
	out := make([]r3.Vec, len(pts))
	for i, p := range pts {
		h := m.Apply4(p.X, p.Y, p.Z, 1)
		out[i] = r3.Vec{X: h[0] / h[3], Y: h[1] / h[3], Z: h[2] / h[3]}
	}
	return out
}

// PadPoints converts rows of 1, 2 or 3 coordinates into 3D points
// by zero filling the missing axes. All rows must share the same length.
func PadPoints(rows [][]float64) ([]r3.Vec, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	dim := len(rows[0])
	if dim < 1 || dim > 3 {
		return nil, fmt.Errorf("%w: %d coordinates per point", ErrShape, dim)
	}
	pts := make([]r3.Vec, len(rows))
	for i, row := range rows {
		if len(row) != dim {
			return nil, fmt.Errorf("%w: row %d has %d coordinates, want %d", ErrShape, i, len(row), dim)
		}
		var p [3]float64
		copy(p[:], row)
		pts[i] = r3.Vec{X: p[0], Y: p[1], Z: p[2]}
	}
	return pts, nil
}
