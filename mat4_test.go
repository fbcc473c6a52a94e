package glview

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

const tol = 1e-9

func randomMat4(rng *rand.Rand) Mat4 {
	a := make([]float64, 16)
	for i := range a {
		a[i] = rng.Float64()*2 - 1
	}
	return NewMat4(a)
}

func TestMat4Identity(t *testing.T) {
	var id Mat4
	p := r3.Vec{X: 1, Y: -2, Z: 3}
	if got := id.Apply(p); got != p {
		t.Errorf("identity moved point: %v", got)
	}
	want := []float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
	for i, v := range id.SliceCopy() {
		if v != want[i] {
			t.Fatalf("element %d = %v", i, v)
		}
	}
	if NewMat4(want) != id {
		t.Error("NewMat4(identity) is not the zero value")
	}
	if !NewMat4(nil).Singular() {
		t.Error("zero matrix is not singular")
	}
}

func TestMat4SingularScale(t *testing.T) {
	for _, k := range []float64{1e-6, 1e-3, 1, 1e3, 1e9} {
		m := Mat4{}.Scale(r3.Vec{}, r3.Vec{X: k, Y: k, Z: k})
		if m.Singular() {
			t.Errorf("uniform scale %g reported singular", k)
		}
		if got := m.Mul(m.Inv()); !got.EqualWithin(Mat4{}, 1e-9) {
			t.Errorf("scale %g: m*inv(m) = %v", k, got.SliceCopy())
		}
		flat := Mat4{}.Scale(r3.Vec{}, r3.Vec{X: k, Y: k})
		if !flat.Singular() {
			t.Errorf("scale %g with zero Z not singular", k)
		}
	}
}

func TestMat4InvMul(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		m := randomMat4(rng)
		if m.Singular() {
			continue
		}
		if got := m.Mul(m.Inv()); !got.EqualWithin(Mat4{}, 1e-6) {
			t.Fatalf("m*inv(m) = %v", got.SliceCopy())
		}
		if got := m.Inv().Mul(m); !got.EqualWithin(Mat4{}, 1e-6) {
			t.Fatalf("inv(m)*m = %v", got.SliceCopy())
		}
		if got := m.Transpose().Transpose(); got != m {
			t.Fatal("double transpose changed matrix")
		}
	}
	if NewMat4(nil).Inv() != NewMat4(nil) {
		t.Error("inverse of singular matrix is not the zero matrix")
	}
}

func TestMat4MulOrder(t *testing.T) {
	tr := Mat4{}.Translate(r3.Vec{X: 1})
	sc := Mat4{}.Scale(r3.Vec{}, r3.Vec{X: 2, Y: 2, Z: 2})
	p := r3.Vec{X: 1}
	// Scale first, then translate.
	if got := tr.Mul(sc).Apply(p); got != (r3.Vec{X: 3}) {
		t.Errorf("tr*sc = %v", got)
	}
	if got := sc.Mul(tr).Apply(p); got != (r3.Vec{X: 4}) {
		t.Errorf("sc*tr = %v", got)
	}
	around := Mat4{}.Scale(r3.Vec{X: 1, Y: 1, Z: 1}, r3.Vec{X: 3, Y: 3, Z: 3})
	if got := around.Apply(r3.Vec{X: 1, Y: 1, Z: 1}); !r3EqualWithin(got, r3.Vec{X: 1, Y: 1, Z: 1}) {
		t.Errorf("scale origin moved: %v", got)
	}
}

func TestPerspective(t *testing.T) {
	const near, far = 0.5, 10
	p := Perspective(90, 2, near, far)
	// Points on the near and far planes map to z=-1 and z=1.
	if got := p.Apply(r3.Vec{Z: -near}); math.Abs(got.Z+1) > tol {
		t.Errorf("near plane z = %v", got.Z)
	}
	if got := p.Apply(r3.Vec{Z: -far}); math.Abs(got.Z-1) > tol {
		t.Errorf("far plane z = %v", got.Z)
	}
	// 90 degree fov: the top edge at depth d is at y=d.
	if got := p.Apply(r3.Vec{Y: 3, Z: -3}); math.Abs(got.Y-1) > tol {
		t.Errorf("top edge y = %v", got.Y)
	}
	if got := p.Apply(r3.Vec{X: 6, Z: -3}); math.Abs(got.X-1) > tol {
		t.Errorf("right edge x = %v", got.X)
	}
}

func TestOrthographic(t *testing.T) {
	o := Orthographic(-2, 6, 1, 3, -1, 1)
	for _, test := range []struct {
		in, want r3.Vec
	}{
		{r3.Vec{X: -2, Y: 1}, r3.Vec{X: -1, Y: -1}},
		{r3.Vec{X: 6, Y: 3}, r3.Vec{X: 1, Y: 1}},
		{r3.Vec{X: 2, Y: 2}, r3.Vec{}},
	} {
		if got := o.Apply(test.in); !r3EqualWithin(got, test.want) {
			t.Errorf("Apply(%v) = %v, want %v", test.in, got, test.want)
		}
	}
}

func TestLookAt(t *testing.T) {
	eye := r3.Vec{X: 1, Y: 2, Z: 5}
	target := r3.Vec{X: 1, Y: 2, Z: 0}
	v := LookAt(eye, target, r3.Vec{Y: 1})
	if got := v.Apply(eye); !r3EqualWithin(got, r3.Vec{}) {
		t.Errorf("eye maps to %v", got)
	}
	// Target lies straight ahead along -Z in eye space.
	if got := v.Apply(target); !r3EqualWithin(got, r3.Vec{Z: -5}) {
		t.Errorf("target maps to %v", got)
	}
	if got := v.Apply(r3.Vec{X: 1, Y: 3}); !r3EqualWithin(got, r3.Vec{Y: 1, Z: -5}) {
		t.Errorf("up maps to %v", got)
	}
}

func TestArray32ColumnMajor(t *testing.T) {
	m := Mat4{}.Translate(r3.Vec{X: 1, Y: 2, Z: 3})
	a := m.Array32()
	if a[12] != 1 || a[13] != 2 || a[14] != 3 || a[15] != 1 {
		t.Errorf("translation not in last column: %v", a)
	}
	if a[3] != 0 || a[7] != 0 {
		t.Errorf("unexpected bottom row: %v", a)
	}
}

func TestApply4(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	m := randomMat4(rng)
	p := r3.Vec{X: 0.3, Y: -0.7, Z: 0.2}
	h := m.Apply4(p.X, p.Y, p.Z, 1)
	want := r3.Scale(1/h[3], r3.Vec{X: h[0], Y: h[1], Z: h[2]})
	if got := m.Apply(p); !r3EqualWithin(got, want) {
		t.Errorf("Apply = %v, Apply4 divided = %v", got, want)
	}
}

func r3EqualWithin(a, b r3.Vec) bool {
	return math.Abs(a.X-b.X) < tol && math.Abs(a.Y-b.Y) < tol && math.Abs(a.Z-b.Z) < tol
}
