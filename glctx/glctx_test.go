package glctx

import (
	"strings"
	"testing"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/soypat/glview/scene"
)

func TestPrimitive(t *testing.T) {
	for _, test := range []struct {
		mode scene.Mode
		want uint32
	}{
		{scene.Points, gl.POINTS},
		{scene.Lines, gl.LINES},
		{scene.LineStrip, gl.LINE_STRIP},
		{scene.Triangles, gl.TRIANGLES},
	} {
		got, err := primitive(test.mode)
		if err != nil {
			t.Fatal(err)
		}
		if got != test.want {
			t.Errorf("%s: got 0x%x, want 0x%x", test.mode, got, test.want)
		}
	}
	if _, err := primitive(scene.Mode(200)); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestCheckUniform(t *testing.T) {
	for _, v := range []any{[16]float32{}, [3]float32{}, float32(1), int32(1)} {
		if err := checkUniform(scene.Uniform{Name: "u", Value: v}); err != nil {
			t.Errorf("%T: %v", v, err)
		}
	}
	err := checkUniform(scene.Uniform{Name: "bad", Value: 1.0})
	if err == nil || !strings.Contains(err.Error(), "bad") {
		t.Errorf("expected error naming uniform, got %v", err)
	}
}

func TestLineWidth(t *testing.T) {
	for _, test := range []struct {
		in, want float32
	}{
		{0, 1},
		{-2, 1},
		{0.5, 0.5},
		{4, 4},
	} {
		if got := lineWidth(test.in); got != test.want {
			t.Errorf("lineWidth(%v) = %v, want %v", test.in, got, test.want)
		}
	}
}
