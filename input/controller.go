// Package input translates window mouse events into camera operations.
package input

import (
	"math"

	"github.com/soypat/glview/camera"
)

// Button identifies a mouse button.
type Button uint8

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle
)

// ZoomBase is the per-scroll-step zoom factor of Rect cameras.
const ZoomBase = 1.1

// Controller tracks the mouse state of one window and drives its camera.
// Arcball cameras rotate on left drags, translate on right or middle drags
// and zoom on scroll. Rect cameras translate on any drag and zoom on scroll.
// Other cameras ignore input.
type Controller struct {
	cam     camera.Camera
	pressed bool
	button  Button
	lastX   float64
	lastY   float64
}

// NewController returns a Controller driving cam.
func NewController(cam camera.Camera) *Controller {
	return &Controller{cam: cam}
}

// Camera returns the controlled camera.
func (c *Controller) Camera() camera.Camera { return c.cam }

// SetCamera replaces the controlled camera and forgets any drag in progress.
func (c *Controller) SetCamera(cam camera.Camera) {
	c.cam = cam
	c.pressed = false
}

// Dragging reports whether a button is held.
func (c *Controller) Dragging() bool { return c.pressed }

// Press starts a drag with button at window pixel (x, y).
func (c *Controller) Press(b Button, x, y float64) {
	c.pressed = true
	c.button = b
	c.lastX, c.lastY = x, y
}

// Release ends the drag started with button b.
func (c *Controller) Release(b Button) {
	if c.pressed && c.button == b {
		c.pressed = false
	}
}

// Move reports the cursor at window pixel (x, y). It reports whether the
// camera changed.
func (c *Controller) Move(x, y float64) bool {
	dx, dy := x-c.lastX, y-c.lastY
	c.lastX, c.lastY = x, y
	if !c.pressed || (dx == 0 && dy == 0) {
		return false
	}
	switch cam := c.cam.(type) {
	case *camera.Arcball:
		if c.button == ButtonLeft {
			cam.Rotate(dx, dy)
		} else {
			cam.Translate(dx, dy)
		}
	case *camera.Rect:
		cam.Translate(dx, dy)
	default:
		return false
	}
	return true
}

// Scroll zooms the camera by dy scroll steps, positive zooming in.
// It reports whether the camera changed.
func (c *Controller) Scroll(dy float64) bool {
	if dy == 0 {
		return false
	}
	switch cam := c.cam.(type) {
	case *camera.Arcball:
		cam.Zoom(dy)
	case *camera.Rect:
		f := math.Pow(ZoomBase, dy)
		cam.Zoom(f, f)
	default:
		return false
	}
	return true
}

// Resize forwards a framebuffer size change to the camera.
func (c *Controller) Resize(width, height int) {
	if c.cam != nil {
		c.cam.SetSize(width, height)
	}
}
