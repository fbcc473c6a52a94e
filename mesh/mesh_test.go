package mesh

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/glview/camera"
	"github.com/soypat/glview/scene"
	"github.com/soypat/glview/softctx"
)

// tetrahedron returns a closed mesh with outward facing normals.
func tetrahedron() []Triangle {
	o := ms3.Vec{}
	x := ms3.Vec{X: 1}
	y := ms3.Vec{Y: 1}
	z := ms3.Vec{Z: 1}
	return []Triangle{
		{o, y, x},
		{o, x, z},
		{o, z, y},
		{x, y, z},
	}
}

func TestSTLWriteRead(t *testing.T) {
	model := tetrahedron()
	var buf bytes.Buffer
	if err := WriteSTL(&buf, model); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != headerSize+triangleSize*len(model) {
		t.Fatalf("got %d bytes", buf.Len())
	}
	got, err := ReadSTL(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(model) {
		t.Fatalf("read %d triangles, want %d", len(got), len(model))
	}
	for i := range got {
		if got[i] != model[i] {
			t.Errorf("triangle %d: got %v, want %v", i, got[i], model[i])
		}
	}
}

func TestSTLReadErrors(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSTL(&buf, tetrahedron()); err != nil {
		t.Fatal(err)
	}
	full := buf.Bytes()

	_, err := ReadSTL(bytes.NewReader(full[:40]))
	if err == nil {
		t.Error("expected error for short header")
	}
	_, err = ReadSTL(bytes.NewReader(full[:headerSize+triangleSize+10]))
	if err == nil {
		t.Error("expected error for truncated triangle")
	}
	empty := make([]byte, headerSize)
	_, err = ReadSTL(bytes.NewReader(empty))
	if err == nil {
		t.Error("expected error for zero triangle count")
	}

	nan := append([]byte(nil), full...)
	binary.LittleEndian.PutUint32(nan[headerSize+12:], math.Float32bits(float32(math.NaN())))
	_, err = ReadSTL(bytes.NewReader(nan))
	if err == nil {
		t.Error("expected error for NaN vertex")
	}

	degen := append([]byte(nil), full...)
	copy(degen[headerSize+24:headerSize+36], degen[headerSize+12:headerSize+24])
	_, err = ReadSTL(bytes.NewReader(degen))
	if err == nil {
		t.Error("expected error for degenerate triangle")
	}
}

func TestSTLNormalMismatch(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSTL(&buf, tetrahedron()); err != nil {
		t.Fatal(err)
	}
	b := buf.Bytes()
	// Stored normal of the first triangle rotated to +X.
	putVec(b[headerSize:], ms3.Vec{X: 1})
	model, err := ReadSTL(bytes.NewReader(b))
	if !errors.Is(err, ErrNormalMismatch) {
		t.Fatalf("got error %v, want ErrNormalMismatch", err)
	}
	if len(model) != 4 {
		t.Errorf("mismatch should still return the model, got %d triangles", len(model))
	}

	// Flipped normals are accepted.
	buf.Reset()
	if err := WriteSTL(&buf, tetrahedron()); err != nil {
		t.Fatal(err)
	}
	b = buf.Bytes()
	putVec(b[headerSize:], ms3.Vec{Z: 1})
	if _, err := ReadSTL(bytes.NewReader(b)); err != nil {
		t.Errorf("flipped normal: %v", err)
	}
}

func TestTriangleNormal(t *testing.T) {
	for i, tri := range tetrahedron()[:3] {
		n := tri.Normal()
		// Faces on the coordinate planes point away from the first octant.
		if n.X+n.Y+n.Z != -1 || ms3.Norm(n) != 1 {
			t.Errorf("triangle %d normal %v", i, n)
		}
	}
	if n := (Triangle{{}, {}, {X: 1}}).Normal(); n != (ms3.Vec{}) {
		t.Errorf("degenerate normal %v, want zero", n)
	}
}

func TestNewNode(t *testing.T) {
	node, err := NewNode(tetrahedron(), Shading{Color: ms3.Vec{X: 1, Y: 0.5}})
	if err != nil {
		t.Fatal(err)
	}
	if node.Mode() != scene.Triangles || node.Kind() != scene.KindGeneric {
		t.Fatalf("got %s node drawing %s", node.Kind(), node.Mode())
	}
	if node.Len() != 4 {
		t.Errorf("shared vertices not merged: %d points", node.Len())
	}
	if got := len(node.Indices()); got != 12 {
		t.Errorf("got %d indices, want 12", got)
	}
	for i, c := range node.Colors() {
		if c.X < 0.25 || c.X > 1 || c.Y != c.X/2 || c.Z != 0 {
			t.Errorf("vertex %d color %v", i, c)
		}
	}
	// The origin averages normals pointing -X, -Y and -Z; +Z light hits it
	// at an angle.
	origin := node.Colors()[0]
	if origin.X >= 1 || origin.X <= 0.25 {
		t.Errorf("origin shade %v", origin.X)
	}

	if _, err := NewNode(nil, Shading{}); err == nil {
		t.Error("expected error for empty model")
	}
}

func TestNodeDraw(t *testing.T) {
	node, err := NewNode(tetrahedron(), Shading{Color: ms3.Vec{X: 1}})
	if err != nil {
		t.Fatal(err)
	}
	ctx := softctx.New(softctx.Config{Width: 32, Height: 32})
	var s scene.Scene
	if _, err := s.Add(scene.Root, node); err != nil {
		t.Fatal(err)
	}
	s.SetSize(ctx.Size())
	if err := s.SetContext(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.Draw(camera.NewRect(-1, -1, 1, 1)); err != nil {
		t.Fatal(err)
	}
	img := ctx.Image()
	// (0.25, 0.25) lies inside the tetrahedron's XY shadow.
	if r, _, _, _ := img.At(20, 12).RGBA(); r == 0 {
		t.Error("mesh not drawn")
	}
	// (-0.5, -0.5) does not.
	if r, _, _, _ := img.At(8, 24).RGBA(); r != 0 {
		t.Error("pixel outside mesh lit")
	}
}
