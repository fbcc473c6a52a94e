package d3

import (
	"math"

	"github.com/soypat/glgl/math/ms3"
	"gonum.org/v1/gonum/spatial/r3"
)

// R3 vector routines shared by the camera and scene packages.

func EqualWithin(a, b r3.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol &&
		math.Abs(a.Y-b.Y) <= tol &&
		math.Abs(a.Z-b.Z) <= tol
}

// MinElem return a vector with the minimum components of two vectors.
func MinElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)}
}

// MaxElem return a vector with the maximum components of two vectors.
func MaxElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)}
}

// Orthonormal reports whether the three vectors are unit length and
// mutually perpendicular within tol.
func Orthonormal(a, b, c r3.Vec, tol float64) bool {
	return math.Abs(r3.Norm(a)-1) <= tol &&
		math.Abs(r3.Norm(b)-1) <= tol &&
		math.Abs(r3.Norm(c)-1) <= tol &&
		math.Abs(r3.Dot(a, b)) <= tol &&
		math.Abs(r3.Dot(b, c)) <= tol &&
		math.Abs(r3.Dot(a, c)) <= tol
}

// FromMS3 converts a float32 GPU-side vector to float64.
func FromMS3(v ms3.Vec) r3.Vec {
	return r3.Vec{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}
