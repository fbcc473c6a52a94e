package scene

import (
	"errors"
	"testing"

	"github.com/soypat/glview"
	"github.com/soypat/glview/camera"
	"gonum.org/v1/gonum/spatial/r3"
)

func pointCloud(t *testing.T, rows ...[]float32) *Node {
	t.Helper()
	n := NewPointCloud()
	if err := n.SetGeometry(Geometry{Points: rows}); err != nil {
		t.Fatal(err)
	}
	return n
}

func TestSceneDrawOrder(t *testing.T) {
	var s Scene
	a := pointCloud(t, []float32{0})
	b := pointCloud(t, []float32{1})
	c := pointCloud(t, []float32{2})
	d := pointCloud(t, []float32{3})
	ida, err := s.Add(Root, a)
	if err != nil {
		t.Fatal(err)
	}
	idd, err := s.Add(Root, d)
	if err != nil {
		t.Fatal(err)
	}
	idb, err := s.Add(ida, b)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Add(idb, c); err != nil {
		t.Fatal(err)
	}
	if s.Parent(idb) != ida || s.Parent(idd) != Root {
		t.Fatal("bad parents")
	}
	if got := s.Children(Root); len(got) != 2 || got[0] != ida || got[1] != idd {
		t.Fatalf("got roots %v", got)
	}

	cam := camera.NewRect(-1, -1, 1, 1)
	if err := s.Draw(cam); !errors.Is(err, ErrNoContext) {
		t.Fatalf("expected ErrNoContext, got %v", err)
	}
	rec := newRecorder()
	if err := s.SetContext(rec); err != nil {
		t.Fatal(err)
	}
	if err := s.Draw(cam); err != nil {
		t.Fatal(err)
	}
	want := []*Node{a, b, c, d}
	if len(rec.draws) != len(want) {
		t.Fatalf("got %d draws, want %d", len(rec.draws), len(want))
	}
	for i, n := range want {
		if rec.draws[i].Vertices != n.vbo {
			t.Errorf("draw %d used buffer %d, want %d", i, rec.draws[i].Vertices, n.vbo)
		}
	}
}

func TestSceneAddErrors(t *testing.T) {
	var s Scene
	n := pointCloud(t, []float32{0})
	if _, err := s.Add(Root, nil); err == nil {
		t.Error("expected error adding nil node")
	}
	if _, err := s.Add(3, n); !errors.Is(err, ErrRange) {
		t.Errorf("expected ErrRange, got %v", err)
	}
	if _, err := s.Add(Root, n); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Add(Root, n); !errors.Is(err, ErrAdded) {
		t.Errorf("expected ErrAdded, got %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("got %d nodes, want 1", s.Len())
	}
}

func TestSceneContextLifecycle(t *testing.T) {
	var s Scene
	if _, err := s.Add(Root, pointCloud(t, []float32{0})); err != nil {
		t.Fatal(err)
	}
	rec := newRecorder()
	if err := s.SetContext(rec); err != nil {
		t.Fatal(err)
	}
	live := rec.live()
	if err := s.SetContext(rec); err != nil {
		t.Fatal(err)
	}
	if rec.live() != live {
		t.Errorf("second SetContext created %d resources", rec.live()-live)
	}
	if err := s.SetContext(newRecorder()); err == nil {
		t.Error("expected error binding another context")
	}
	// Nodes added to a bound scene are bound immediately.
	late := pointCloud(t, []float32{1})
	if _, err := s.Add(Root, late); err != nil {
		t.Fatal(err)
	}
	if !late.Bound() {
		t.Error("late node not bound")
	}
	s.Release()
	if rec.live() != 0 {
		t.Errorf("release left %d resources", rec.live())
	}
	if s.Context() != nil {
		t.Error("scene still has context after Release")
	}
	other := newRecorder()
	if err := s.SetContext(other); err != nil {
		t.Fatal(err)
	}
	if err := s.Draw(camera.NewScreen(4, 4)); err != nil {
		t.Fatal(err)
	}
	if len(other.draws) != 2 || len(other.uploads) != 2 {
		t.Errorf("rebound scene: %d draws, uploads %v", len(other.draws), other.uploads)
	}
}

func TestSceneBounds(t *testing.T) {
	var s Scene
	if _, _, ok := s.Bounds(); ok {
		t.Fatal("empty scene has bounds")
	}
	a := pointCloud(t, []float32{-1, 0, 0}, []float32{1, 2, 0})
	b := pointCloud(t, []float32{0, 0, 5})
	model := glview.Mat4{}.Translate(r3.Vec{X: 10})
	if err := b.SetGeometry(Geometry{Model: &model}); err != nil {
		t.Fatal(err)
	}
	for _, n := range []*Node{a, b} {
		if _, err := s.Add(Root, n); err != nil {
			t.Fatal(err)
		}
	}
	min, max, ok := s.Bounds()
	if !ok {
		t.Fatal("no bounds")
	}
	if min != (r3.Vec{X: -1}) || max != (r3.Vec{X: 10, Y: 2, Z: 5}) {
		t.Errorf("got bounds %v %v", min, max)
	}
}

func TestScenePick(t *testing.T) {
	var s Scene
	id, err := s.Add(Root, pointCloud(t,
		[]float32{-0.5, -0.5},
		[]float32{0.5, 0.5},
		[]float32{0.1, -0.8},
		[]float32{-0.9, 0.9},
	))
	if err != nil {
		t.Fatal(err)
	}
	cam := camera.NewRect(-1, -1, 1, 1)
	for _, test := range []struct {
		x, y    float64
		want    int
		wantOK  bool
		maxDist float64
	}{
		{0.45, 0.52, 1, true, 0.1},
		{0.1, -0.75, 2, true, 0.1},
		{-0.88, 0.88, 3, true, 0.1},
		{0, 0, -1, false, 0.1},
		{-0.1, -0.1, 0, true, 1},
	} {
		got, ok := s.Pick(id, cam, test.x, test.y, test.maxDist)
		if ok != test.wantOK || got != test.want {
			t.Errorf("Pick(%v,%v,%v) = %d,%v, want %d,%v", test.x, test.y, test.maxDist, got, ok, test.want, test.wantOK)
		}
	}
	if _, ok := s.Pick(42, cam, 0, 0, 1); ok {
		t.Error("picked invalid node")
	}
}
