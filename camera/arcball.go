package camera

import (
	"math"

	"github.com/soypat/glview"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// MinDistance is the closest an Arcball may get to its target.
	MinDistance = 0.1
	// gimbalBound is the largest allowed |forward·up| after a rotation step.
	gimbalBound = 0.99

	defaultRotateSpeed    = 0.005
	defaultTranslateSpeed = 0.002
	defaultZoomSpeed      = 0.1
)

// View is a preset axis-aligned viewing direction for an Arcball.
// Pos variants place the eye on the positive side of the plane's normal.
type View uint8

const (
	XYPos View = iota
	XYNeg
	XZPos
	XZNeg
	YZPos
	YZNeg
)

func (v View) String() string {
	switch v {
	case XYPos:
		return "XY+"
	case XYNeg:
		return "XY-"
	case XZPos:
		return "XZ+"
	case XZNeg:
		return "XZ-"
	case YZPos:
		return "YZ+"
	case YZNeg:
		return "YZ-"
	}
	return "View(?)"
}

// basis returns the forward and up vectors of the preset.
func (v View) basis() (forward, up r3.Vec) {
	switch v {
	case XYNeg:
		return r3.Vec{Z: 1}, r3.Vec{Y: 1}
	case XZPos:
		return r3.Vec{Y: -1}, r3.Vec{Z: 1}
	case XZNeg:
		return r3.Vec{Y: 1}, r3.Vec{Z: 1}
	case YZPos:
		return r3.Vec{X: -1}, r3.Vec{Z: 1}
	case YZNeg:
		return r3.Vec{X: 1}, r3.Vec{Z: 1}
	}
	return r3.Vec{Z: -1}, r3.Vec{Y: 1}
}

// ArcballConfig configures a new Arcball. The zero value is usable:
// zero fields take the defaults documented on each field.
type ArcballConfig struct {
	// Viewport size in pixels. Defaults to 1x1.
	Width, Height int
	// FOV is the vertical field of view in degrees. Defaults to 60.
	FOV float64
	// Near and Far clipping planes. Default to 0.01 and 100.
	Near, Far float64
	// Target is the look-at point.
	Target r3.Vec
	// Distance from eye to target. Defaults to 2, minimum is MinDistance.
	Distance float64
	// Forward and Up directions. Default to -Z and +Y. They need not be
	// normalized or perpendicular; the basis is orthonormalized on construction.
	Forward, Up r3.Vec

	// RotateSpeed is radians rotated per pixel dragged. Defaults to 0.005.
	RotateSpeed float64
	// TranslateSpeed is target displacement per pixel dragged. Defaults to 0.002.
	TranslateSpeed float64
	// ZoomSpeed is distance change per scroll unit. Defaults to 0.1.
	ZoomSpeed float64
}

type arcballState struct {
	target   r3.Vec
	distance float64
	forward  r3.Vec
	right    r3.Vec
	up       r3.Vec
}

// Arcball is a perspective camera orbiting a look-at target
// by means of an orthonormal right-handed (forward, right, up) basis.
type Arcball struct {
	arcballState
	initial        arcballState
	fov            float64
	near, far      float64
	aspect         float64
	rotateSpeed    float64
	translateSpeed float64
	zoomSpeed      float64
}

var _ Camera = (*Arcball)(nil)

// NewArcball returns an Arcball configured by cfg. The state at
// construction time is the one restored by Reset.
func NewArcball(cfg ArcballConfig) *Arcball {
	if cfg.Width <= 0 {
		cfg.Width = 1
	}
	if cfg.Height <= 0 {
		cfg.Height = 1
	}
	if cfg.FOV <= 0 {
		cfg.FOV = 60
	}
	if cfg.Near <= 0 {
		cfg.Near = 0.01
	}
	if cfg.Far <= cfg.Near {
		cfg.Far = 100
	}
	if cfg.Distance == 0 {
		cfg.Distance = 2
	}
	if cfg.Forward == (r3.Vec{}) {
		cfg.Forward = r3.Vec{Z: -1}
	}
	if cfg.Up == (r3.Vec{}) {
		cfg.Up = r3.Vec{Y: 1}
	}
	if cfg.RotateSpeed == 0 {
		cfg.RotateSpeed = defaultRotateSpeed
	}
	if cfg.TranslateSpeed == 0 {
		cfg.TranslateSpeed = defaultTranslateSpeed
	}
	if cfg.ZoomSpeed == 0 {
		cfg.ZoomSpeed = defaultZoomSpeed
	}
	a := &Arcball{
		fov:            cfg.FOV,
		near:           cfg.Near,
		far:            cfg.Far,
		rotateSpeed:    cfg.RotateSpeed,
		translateSpeed: cfg.TranslateSpeed,
		zoomSpeed:      cfg.ZoomSpeed,
	}
	a.target = cfg.Target
	a.distance = math.Max(cfg.Distance, MinDistance)
	a.setBasis(cfg.Forward, cfg.Up)
	a.SetSize(cfg.Width, cfg.Height)
	a.initial = a.arcballState
	return a
}

// setBasis orthonormalizes forward and up and derives right. When up is
// parallel to forward the world axis least aligned with forward is used.
func (a *Arcball) setBasis(forward, up r3.Vec) {
	a.forward = r3.Unit(forward)
	if r3.Norm(up) == 0 || math.Abs(r3.Dot(a.forward, r3.Unit(up))) > 0.999 {
		up = leastAligned(a.forward)
	}
	a.right = r3.Unit(r3.Cross(a.forward, up))
	a.up = r3.Unit(r3.Cross(a.right, a.forward))
}

func leastAligned(v r3.Vec) r3.Vec {
	x, y, z := math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z)
	switch {
	case y <= x && y <= z:
		return r3.Vec{Y: 1}
	case z <= x:
		return r3.Vec{Z: 1}
	default:
		return r3.Vec{X: 1}
	}
}

// SetSize updates the aspect ratio from the viewport size in pixels.
func (a *Arcball) SetSize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	a.aspect = float64(width) / float64(height)
}

// Matrices returns the perspective projection and the view looking from
// the eye towards the target.
func (a *Arcball) Matrices() (proj, view glview.Mat4) {
	proj = glview.Perspective(a.fov, a.aspect, a.near, a.far)
	view = glview.LookAt(a.Eye(), a.target, a.up)
	return proj, view
}

// Eye returns the position of the camera in data space.
func (a *Arcball) Eye() r3.Vec {
	return r3.Sub(a.target, r3.Scale(a.distance, a.forward))
}

// Target returns the look-at point.
func (a *Arcball) Target() r3.Vec { return a.target }

// Distance returns the distance from the eye to the target.
func (a *Arcball) Distance() float64 { return a.distance }

// Basis returns the orthonormal camera basis.
func (a *Arcball) Basis() (forward, right, up r3.Vec) {
	return a.forward, a.right, a.up
}

// Rotate orbits the camera around the target by a mouse drag of
// (dx, dy) pixels. Horizontal drag rotates about the up vector,
// vertical drag about the right vector.
func (a *Arcball) Rotate(dx, dy float64) {
	up := a.up
	yaw := r3.NewRotation(-dx*a.rotateSpeed, up)
	forward := yaw.Rotate(a.forward)
	right := yaw.Rotate(a.right)
	pitch := r3.NewRotation(-dy*a.rotateSpeed, right)
	forward = r3.Unit(pitch.Rotate(forward))

	// Keep forward from aligning with up so the basis stays well defined.
	if d := r3.Dot(forward, up); math.Abs(d) > gimbalBound {
		theta := math.Acos(math.Max(-1, math.Min(1, d)))
		lo, hi := math.Acos(gimbalBound), math.Acos(-gimbalBound)
		// right is perpendicular to both forward and up here.
		correction := r3.NewRotation(theta-math.Max(lo, math.Min(hi, theta)), right)
		forward = r3.Unit(correction.Rotate(forward))
	}
	a.setBasis(forward, up)
}

// Translate pans the target along the camera's right and up vectors
// by a mouse drag of (dx, dy) pixels. Screen y grows downwards.
func (a *Arcball) Translate(dx, dy float64) {
	delta := r3.Add(r3.Scale(-dx, a.right), r3.Scale(dy, a.up))
	a.target = r3.Add(a.target, r3.Scale(a.translateSpeed, delta))
}

// Zoom moves the eye towards the target by scroll units. Positive
// scroll approaches the target. Distance never drops below MinDistance.
func (a *Arcball) Zoom(scroll float64) {
	a.distance = math.Max(a.distance-scroll*a.zoomSpeed, MinDistance)
}

// SetView sets the camera basis to an axis-aligned preset.
// Target and distance are kept.
func (a *Arcball) SetView(v View) {
	forward, up := v.basis()
	a.setBasis(forward, up)
}

// Reset restores the target, distance and basis the camera was created with.
func (a *Arcball) Reset() {
	a.arcballState = a.initial
}

// LookAtBox targets the center of the box [min, max] and sets the distance
// so the box's bounding sphere fits within the vertical field of view.
func (a *Arcball) LookAtBox(min, max r3.Vec) {
	a.target = r3.Scale(0.5, r3.Add(min, max))
	radius := 0.5 * r3.Norm(r3.Sub(max, min))
	a.distance = math.Max(radius/math.Sin(a.fov*math.Pi/360), MinDistance)
}
