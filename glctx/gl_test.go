//go:build gl

package glctx

import (
	"log"
	"os"
	"runtime"
	"testing"

	"github.com/soypat/glview/camera"
	"github.com/soypat/glview/scene"
)

func init() {
	runtime.LockOSThread() // For GL.
}

func TestMain(m *testing.M) {
	_, terminate, err := Init(WindowConfig{
		Title:   "glctx",
		Version: [2]int{4, 6},
		Width:   64,
		Height:  64,
	})
	if err != nil {
		log.Fatal(err)
	}
	code := m.Run()
	terminate()
	os.Exit(code)
}

func TestDrawPointCloud(t *testing.T) {
	const w, h = 64, 64
	ctx := New()
	defer ctx.Release()
	var s scene.Scene
	n := scene.NewPointCloud()
	err := n.Update(scene.Variables{
		Geometry:   &scene.Geometry{Points: [][]float32{{0, 0}}},
		Appearance: &scene.Appearance{PointSize: 8},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Add(scene.Root, n); err != nil {
		t.Fatal(err)
	}
	if err := s.SetContext(ctx); err != nil {
		t.Fatal(err)
	}
	defer s.Release()
	ctx.BeginFrame(Frame{Width: w, Height: h})
	if err := s.Draw(camera.NewRect(-1, -1, 1, 1)); err != nil {
		t.Fatal(err)
	}
	px := ctx.ReadPixels(w, h)
	center := 4 * (h/2*w + w/2)
	if px[center] != 255 || px[center+1] != 255 || px[center+2] != 255 {
		t.Errorf("center pixel %v, want white", px[center:center+4])
	}
	if px[0] != 0 {
		t.Errorf("corner pixel %v, want black", px[0:4])
	}
}

func TestDrawVolumeSlice(t *testing.T) {
	const w, h = 64, 64
	ctx := New()
	defer ctx.Release()
	var s scene.Scene
	n := scene.NewVolumeSlice()
	vol := scene.Volume{Nx: 2, Ny: 2, Nz: 1, Data: []float32{0, 1, 1, 0}}
	if err := n.SetVolume(vol); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Add(scene.Root, n); err != nil {
		t.Fatal(err)
	}
	s.SetSize(w, h)
	if err := s.SetContext(ctx); err != nil {
		t.Fatal(err)
	}
	defer s.Release()
	ctx.BeginFrame(Frame{Width: w, Height: h})
	if err := s.Draw(camera.NewRect(-1, -1, 1, 1)); err != nil {
		t.Fatal(err)
	}
	px := ctx.ReadPixels(w, h)
	for _, test := range []struct {
		x, y int
		u, v float32
	}{
		{8, 8, 0.1, 0.1},
		{56, 8, 0.9, 0.1},
		{8, 56, 0.1, 0.9},
	} {
		want, err := n.Sample(test.u, test.v)
		if err != nil {
			t.Fatal(err)
		}
		got := px[4*(test.y*w+test.x)]
		if int(got) != int(want*255+0.5) {
			t.Errorf("pixel (%d,%d) = %d, want %v", test.x, test.y, got, want*255)
		}
	}
}
