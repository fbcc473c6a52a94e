package camera

import (
	"github.com/soypat/glview"
	"github.com/soypat/glview/internal/d2"
	"gonum.org/v1/gonum/spatial/r2"
)

// Rect is an orthographic camera showing an axis-aligned rectangle
// of the XY plane. Its view transform is the identity.
type Rect struct {
	box    d2.Box
	width  int
	height int
}

var _ Camera = (*Rect)(nil)

// NewRect returns an orthographic camera over [left,right]x[bottom,top].
func NewRect(left, bottom, right, top float64) *Rect {
	r := &Rect{width: 1, height: 1}
	r.SetRect(left, bottom, right, top)
	return r
}

// SetRect sets the visible rectangle.
func (r *Rect) SetRect(left, bottom, right, top float64) {
	r.box = d2.Box{Min: r2.Vec{X: left, Y: bottom}, Max: r2.Vec{X: right, Y: top}}
}

// Rect returns the visible rectangle.
func (r *Rect) Rect() (left, bottom, right, top float64) {
	return r.box.Min.X, r.box.Min.Y, r.box.Max.X, r.box.Max.Y
}

// SetSize stores the viewport size used to convert pixel drags to data units.
func (r *Rect) SetSize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.width, r.height = width, height
}

// Matrices returns the orthographic projection over the rectangle
// and an identity view.
func (r *Rect) Matrices() (proj, view glview.Mat4) {
	proj = glview.Orthographic(r.box.Min.X, r.box.Max.X, r.box.Min.Y, r.box.Max.Y, -1, 1)
	return proj, glview.Mat4{}
}

// Zoom scales the rectangle about its center so that its half-widths
// become 1/fx and 1/fy of what they were. Non-positive factors are ignored.
func (r *Rect) Zoom(fx, fy float64) {
	if fx <= 0 || fy <= 0 {
		return
	}
	r.box = r.box.ScaleAboutCenter(r2.Vec{X: 1 / fx, Y: 1 / fy})
}

// Translate pans the rectangle following a mouse drag of (dx, dy) pixels
// so the data under the cursor stays under the cursor. Screen y grows downwards.
func (r *Rect) Translate(dx, dy float64) {
	perPixel := d2.DivElem(r.box.Size(), r2.Vec{X: float64(r.width), Y: float64(r.height)})
	r.box = r.box.Translate(d2.MulElem(perPixel, r2.Vec{X: -dx, Y: dy}))
}
