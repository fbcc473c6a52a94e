package camera

import (
	"github.com/soypat/glview"
)

// Screen is a camera in pixel coordinates: the origin is the top-left
// corner of the viewport and y grows downwards. It has no projection.
type Screen struct {
	width, height int
}

var _ Camera = (*Screen)(nil)

// NewScreen returns a pixel-space camera for a width x height viewport.
func NewScreen(width, height int) *Screen {
	s := &Screen{width: 1, height: 1}
	s.SetSize(width, height)
	return s
}

// SetSize sets the viewport size in pixels.
func (s *Screen) SetSize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	s.width, s.height = width, height
}

// Size returns the viewport size in pixels.
func (s *Screen) Size() (width, height int) { return s.width, s.height }

// Matrices returns an identity projection and a view mapping
// pixel coordinates to normalized device space.
func (s *Screen) Matrices() (proj, view glview.Mat4) {
	w, h := float64(s.width), float64(s.height)
	view = glview.NewMat4([]float64{
		2 / w, 0, 0, -1,
		0, -2 / h, 0, 1,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})
	return glview.Mat4{}, view
}
