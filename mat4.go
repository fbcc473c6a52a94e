package glview

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Mat4 represents a 4x4 spatial transformation acting on column vectors.
// The zero value of Mat4 is the identity transform.
type Mat4 struct {
	// in order to make the zero value of Mat4 represent the identity
	// transform we store it with the identity matrix subtracted.
	// These diagonal elements are subtracted such that
	//  d00 = x00-1, d11 = x11-1, d22 = x22-1, d33 = x33-1
	// where x00, x11, x22, x33 are the matrix diagonal elements.
	// We can then check for identity in if blocks like so:
	//  if m == (Mat4{})
	d00, x01, x02, x03 float64
	x10, d11, x12, x13 float64
	x20, x21, d22, x23 float64
	x30, x31, x32, d33 float64
}

// zeroMat4 is the Mat4 that returns zeroMat4 when multiplied by any Mat4.
var zeroMat4 = Mat4{d00: -1, d11: -1, d22: -1, d33: -1}

// NewMat4 returns a new Mat4 and populates its elements
// with values passed in row-major form. If a is nil then NewMat4
// returns a Mat4 filled with zeros.
func NewMat4(a []float64) Mat4 {
	if a == nil {
		return zeroMat4
	}
	if len(a) != 16 {
		panic("Mat4 is initialized with 16 values")
	}
	return Mat4{
		d00: a[0] - 1, x01: a[1], x02: a[2], x03: a[3],
		x10: a[4], d11: a[5] - 1, x12: a[6], x13: a[7],
		x20: a[8], x21: a[9], d22: a[10] - 1, x23: a[11],
		x30: a[12], x31: a[13], x32: a[14], d33: a[15] - 1,
	}
}

// Perspective returns an OpenGL style perspective projection. fovy is the
// vertical field of view in degrees.
func Perspective(fovy, aspect, near, far float64) Mat4 {
	f := 1 / math.Tan(fovy*math.Pi/360)
	nf := 1 / (near - far)
	return NewMat4([]float64{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) * nf, 2 * far * near * nf,
		0, 0, -1, 0,
	})
}

// Orthographic returns an OpenGL style orthographic projection mapping
// the box [left,right]x[bottom,top]x[-near,-far] onto the normalized device cube.
func Orthographic(left, right, bottom, top, near, far float64) Mat4 {
	rl := right - left
	tb := top - bottom
	fn := far - near
	return NewMat4([]float64{
		2 / rl, 0, 0, -(right + left) / rl,
		0, 2 / tb, 0, -(top + bottom) / tb,
		0, 0, -2 / fn, -(far + near) / fn,
		0, 0, 0, 1,
	})
}

// LookAt returns the view transform of an eye positioned at eye
// looking at target with the given up direction.
func LookAt(eye, target, up r3.Vec) Mat4 {
	f := r3.Unit(r3.Sub(target, eye))
	s := r3.Unit(r3.Cross(f, up))
	u := r3.Cross(s, f)
	return NewMat4([]float64{
		s.X, s.Y, s.Z, -r3.Dot(s, eye),
		u.X, u.Y, u.Z, -r3.Dot(u, eye),
		-f.X, -f.Y, -f.Z, r3.Dot(f, eye),
		0, 0, 0, 1,
	})
}

// Apply applies the Mat4 to the argument point (w=1), performs the
// perspective divide and returns the result.
func (t Mat4) Apply(v r3.Vec) r3.Vec {
	// https://github.com/mrdoob/three.js/blob/dev/src/math/Vector3.js#L262
	w := 1 / (t.x30*v.X + t.x31*v.Y + t.x32*v.Z + t.d33 + 1)
	return r3.Vec{
		X: ((t.d00+1)*v.X + t.x01*v.Y + t.x02*v.Z + t.x03) * w,
		Y: (t.x10*v.X + (t.d11+1)*v.Y + t.x12*v.Z + t.x13) * w,
		Z: (t.x20*v.X + t.x21*v.Y + (t.d22+1)*v.Z + t.x23) * w,
	}
}

// Apply4 multiplies the homogeneous vector (x,y,z,w) by the Mat4.
func (t Mat4) Apply4(x, y, z, w float64) [4]float64 {
	return [4]float64{
		(t.d00+1)*x + t.x01*y + t.x02*z + t.x03*w,
		t.x10*x + (t.d11+1)*y + t.x12*z + t.x13*w,
		t.x20*x + t.x21*y + (t.d22+1)*z + t.x23*w,
		t.x30*x + t.x31*y + t.x32*z + (t.d33+1)*w,
	}
}

// Translate returns the transform followed by a translation of v.
func (t Mat4) Translate(v r3.Vec) Mat4 {
	t.x03 += v.X
	t.x13 += v.Y
	t.x23 += v.Z
	return t
}

// Scale returns the transform followed by a scaling of factor
// about origin, which is left fixed.
func (t Mat4) Scale(origin, factor r3.Vec) Mat4 {
	s := NewMat4([]float64{
		factor.X, 0, 0, origin.X * (1 - factor.X),
		0, factor.Y, 0, origin.Y * (1 - factor.Y),
		0, 0, factor.Z, origin.Z * (1 - factor.Z),
		0, 0, 0, 1,
	})
	return s.Mul(t)
}

// Mul multiplies the Mat4s t and b and returns t*b. The result
// applies b first and then t.
func (t Mat4) Mul(b Mat4) Mat4 {
	if t == (Mat4{}) {
		return b
	}
	if b == (Mat4{}) {
		return t
	}
	x00 := t.d00 + 1
	x11 := t.d11 + 1
	x22 := t.d22 + 1
	x33 := t.d33 + 1
	y00 := b.d00 + 1
	y11 := b.d11 + 1
	y22 := b.d22 + 1
	y33 := b.d33 + 1
	var m Mat4
	m.d00 = x00*y00 + t.x01*b.x10 + t.x02*b.x20 + t.x03*b.x30 - 1
	m.x10 = t.x10*y00 + x11*b.x10 + t.x12*b.x20 + t.x13*b.x30
	m.x20 = t.x20*y00 + t.x21*b.x10 + x22*b.x20 + t.x23*b.x30
	m.x30 = t.x30*y00 + t.x31*b.x10 + t.x32*b.x20 + x33*b.x30
	m.x01 = x00*b.x01 + t.x01*y11 + t.x02*b.x21 + t.x03*b.x31
	m.d11 = t.x10*b.x01 + x11*y11 + t.x12*b.x21 + t.x13*b.x31 - 1
	m.x21 = t.x20*b.x01 + t.x21*y11 + x22*b.x21 + t.x23*b.x31
	m.x31 = t.x30*b.x01 + t.x31*y11 + t.x32*b.x21 + x33*b.x31
	m.x02 = x00*b.x02 + t.x01*b.x12 + t.x02*y22 + t.x03*b.x32
	m.x12 = t.x10*b.x02 + x11*b.x12 + t.x12*y22 + t.x13*b.x32
	m.d22 = t.x20*b.x02 + t.x21*b.x12 + x22*y22 + t.x23*b.x32 - 1
	m.x32 = t.x30*b.x02 + t.x31*b.x12 + t.x32*y22 + x33*b.x32
	m.x03 = x00*b.x03 + t.x01*b.x13 + t.x02*b.x23 + t.x03*y33
	m.x13 = t.x10*b.x03 + x11*b.x13 + t.x12*b.x23 + t.x13*y33
	m.x23 = t.x20*b.x03 + t.x21*b.x13 + x22*b.x23 + t.x23*y33
	m.d33 = t.x30*b.x03 + t.x31*b.x13 + t.x32*b.x23 + x33*y33 - 1
	return m
}

// Det returns the determinant of the Mat4.
func (t Mat4) Det() float64 {
	x00 := t.d00 + 1
	x11 := t.d11 + 1
	x22 := t.d22 + 1
	x33 := t.d33 + 1
	return x00*x11*x22*x33 - x00*x11*t.x23*t.x32 +
		x00*t.x12*t.x23*t.x31 - x00*t.x12*t.x21*x33 +
		x00*t.x13*t.x21*t.x32 - x00*t.x13*x22*t.x31 -
		t.x01*t.x12*t.x23*t.x30 + t.x01*t.x12*t.x20*x33 -
		t.x01*t.x13*t.x20*t.x32 + t.x01*t.x13*x22*t.x30 -
		t.x01*t.x10*x22*x33 + t.x01*t.x10*t.x23*t.x32 +
		t.x02*t.x13*t.x20*t.x31 - t.x02*t.x13*t.x21*t.x30 +
		t.x02*t.x10*t.x21*x33 - t.x02*t.x10*t.x23*t.x31 +
		t.x02*x11*t.x23*t.x30 - t.x02*x11*t.x20*x33 -
		t.x03*t.x10*t.x21*t.x32 + t.x03*t.x10*x22*t.x31 -
		t.x03*x11*x22*t.x30 + t.x03*x11*t.x20*t.x32 -
		t.x03*t.x12*t.x20*t.x31 + t.x03*t.x12*t.x21*t.x30
}

// Singular reports whether the determinant of the Mat4 is
// too close to zero for Inv to give a meaningful result.
// The determinant is compared against the product of the row norms,
// its largest possible magnitude, so the test does not depend on scale.
func (t Mat4) Singular() bool {
	return singular(t.Det(), t.SliceCopy())
}

func singular(det float64, rowMajor []float64) bool {
	const tol = 1e-12
	bound := 1.0
	for row := 0; row < 4; row++ {
		r := rowMajor[row*4 : row*4+4]
		bound *= math.Sqrt(r[0]*r[0] + r[1]*r[1] + r[2]*r[2] + r[3]*r[3])
	}
	return bound == 0 || math.Abs(det) <= tol*bound
}

// Inv returns the inverse of the transform such that
// t.Inv() * t is the identity Mat4.
// If matrix is singular then Inv returns the zero matrix.
func (t Mat4) Inv() Mat4 {
	if t == (Mat4{}) {
		return t
	}
	det := t.Det()
	if singular(det, t.SliceCopy()) {
		return zeroMat4
	}
	d := 1 / det
	x00 := t.d00 + 1
	x11 := t.d11 + 1
	x22 := t.d22 + 1
	x33 := t.d33 + 1
	var m Mat4
	m.d00 = (t.x12*t.x23*t.x31-t.x13*x22*t.x31+t.x13*t.x21*t.x32-x11*t.x23*t.x32-t.x12*t.x21*x33+x11*x22*x33)*d - 1
	m.x01 = (t.x03*x22*t.x31 - t.x02*t.x23*t.x31 - t.x03*t.x21*t.x32 + t.x01*t.x23*t.x32 + t.x02*t.x21*x33 - t.x01*x22*x33) * d
	m.x02 = (t.x02*t.x13*t.x31 - t.x03*t.x12*t.x31 + t.x03*x11*t.x32 - t.x01*t.x13*t.x32 - t.x02*x11*x33 + t.x01*t.x12*x33) * d
	m.x03 = (t.x03*t.x12*t.x21 - t.x02*t.x13*t.x21 - t.x03*x11*x22 + t.x01*t.x13*x22 + t.x02*x11*t.x23 - t.x01*t.x12*t.x23) * d
	m.x10 = (t.x13*x22*t.x30 - t.x12*t.x23*t.x30 - t.x13*t.x20*t.x32 + t.x10*t.x23*t.x32 + t.x12*t.x20*x33 - t.x10*x22*x33) * d
	m.d11 = (t.x02*t.x23*t.x30-t.x03*x22*t.x30+t.x03*t.x20*t.x32-x00*t.x23*t.x32-t.x02*t.x20*x33+x00*x22*x33)*d - 1
	m.x12 = (t.x03*t.x12*t.x30 - t.x02*t.x13*t.x30 - t.x03*t.x10*t.x32 + x00*t.x13*t.x32 + t.x02*t.x10*x33 - x00*t.x12*x33) * d
	m.x13 = (t.x02*t.x13*t.x20 - t.x03*t.x12*t.x20 + t.x03*t.x10*x22 - x00*t.x13*x22 - t.x02*t.x10*t.x23 + x00*t.x12*t.x23) * d
	m.x20 = (x11*t.x23*t.x30 - t.x13*t.x21*t.x30 + t.x13*t.x20*t.x31 - t.x10*t.x23*t.x31 - x11*t.x20*x33 + t.x10*t.x21*x33) * d
	m.x21 = (t.x03*t.x21*t.x30 - t.x01*t.x23*t.x30 - t.x03*t.x20*t.x31 + x00*t.x23*t.x31 + t.x01*t.x20*x33 - x00*t.x21*x33) * d
	m.d22 = (t.x01*t.x13*t.x30-t.x03*x11*t.x30+t.x03*t.x10*t.x31-x00*t.x13*t.x31-t.x01*t.x10*x33+x00*x11*x33)*d - 1
	m.x23 = (t.x03*x11*t.x20 - t.x01*t.x13*t.x20 - t.x03*t.x10*t.x21 + x00*t.x13*t.x21 + t.x01*t.x10*t.x23 - x00*x11*t.x23) * d
	m.x30 = (t.x12*t.x21*t.x30 - x11*x22*t.x30 - t.x12*t.x20*t.x31 + t.x10*x22*t.x31 + x11*t.x20*t.x32 - t.x10*t.x21*t.x32) * d
	m.x31 = (t.x01*x22*t.x30 - t.x02*t.x21*t.x30 + t.x02*t.x20*t.x31 - x00*x22*t.x31 - t.x01*t.x20*t.x32 + x00*t.x21*t.x32) * d
	m.x32 = (t.x02*x11*t.x30 - t.x01*t.x12*t.x30 - t.x02*t.x10*t.x31 + x00*t.x12*t.x31 + t.x01*t.x10*t.x32 - x00*x11*t.x32) * d
	m.d33 = (t.x01*t.x12*t.x20-t.x02*x11*t.x20+t.x02*t.x10*t.x21-x00*t.x12*t.x21-t.x01*t.x10*x22+x00*x11*x22)*d - 1
	return m
}

// Transpose returns the transpose of the Mat4.
func (t Mat4) Transpose() Mat4 {
	return Mat4{
		d00: t.d00, x01: t.x10, x02: t.x20, x03: t.x30,
		x10: t.x01, d11: t.d11, x12: t.x21, x13: t.x31,
		x20: t.x02, x21: t.x12, d22: t.d22, x23: t.x32,
		x30: t.x03, x31: t.x13, x32: t.x23, d33: t.d33,
	}
}

// EqualWithin tests the equality of the Mat4s to within a tolerance.
func (t Mat4) EqualWithin(b Mat4, tolerance float64) bool {
	return math.Abs(t.d00-b.d00) < tolerance &&
		math.Abs(t.x01-b.x01) < tolerance &&
		math.Abs(t.x02-b.x02) < tolerance &&
		math.Abs(t.x03-b.x03) < tolerance &&
		math.Abs(t.x10-b.x10) < tolerance &&
		math.Abs(t.d11-b.d11) < tolerance &&
		math.Abs(t.x12-b.x12) < tolerance &&
		math.Abs(t.x13-b.x13) < tolerance &&
		math.Abs(t.x20-b.x20) < tolerance &&
		math.Abs(t.x21-b.x21) < tolerance &&
		math.Abs(t.d22-b.d22) < tolerance &&
		math.Abs(t.x23-b.x23) < tolerance &&
		math.Abs(t.x30-b.x30) < tolerance &&
		math.Abs(t.x31-b.x31) < tolerance &&
		math.Abs(t.x32-b.x32) < tolerance &&
		math.Abs(t.d33-b.d33) < tolerance
}

// SliceCopy returns a copy of the Mat4's data
// in row major storage format. It returns 16 elements.
func (t Mat4) SliceCopy() []float64 {
	return []float64{
		t.d00 + 1, t.x01, t.x02, t.x03,
		t.x10, t.d11 + 1, t.x12, t.x13,
		t.x20, t.x21, t.d22 + 1, t.x23,
		t.x30, t.x31, t.x32, t.d33 + 1,
	}
}

// Array32 returns the Mat4 in column major float32 form, ready
// to be uploaded as a GLSL mat4 uniform.
func (t Mat4) Array32() (a [16]float32) {
	rm := t.SliceCopy()
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			a[col*4+row] = float32(rm[row*4+col])
		}
	}
	return a
}
