package softctx

import (
	"fmt"

	"github.com/fogleman/fauxgl"
	"github.com/soypat/glview"
	"github.com/soypat/glview/scene"
	"gonum.org/v1/gonum/spatial/r3"
)

type uniforms struct {
	projection, view, model [16]float32
	pointSize               float32
	sliceDim                int32
	slicePos                float32
	affine                  [16]float32
	vmin, vmax              float32
}

var identity32 = glview.Mat4{}.Array32()

func parseUniforms(list []scene.Uniform) (uniforms, error) {
	u := uniforms{
		projection: identity32,
		view:       identity32,
		model:      identity32,
		affine:     identity32,
		pointSize:  1,
		vmax:       1,
	}
	for _, un := range list {
		var ok bool
		switch un.Name {
		case "projection":
			u.projection, ok = un.Value.([16]float32)
		case "view":
			u.view, ok = un.Value.([16]float32)
		case "model":
			u.model, ok = un.Value.([16]float32)
		case "affine":
			u.affine, ok = un.Value.([16]float32)
		case "point_size":
			u.pointSize, ok = un.Value.(float32)
		case "slice_dim":
			u.sliceDim, ok = un.Value.(int32)
		case "slice_pos":
			u.slicePos, ok = un.Value.(float32)
		case "vmin":
			u.vmin, ok = un.Value.(float32)
		case "vmax":
			u.vmax, ok = un.Value.(float32)
		default:
			// The sampler unit.
			ok = true
		}
		if !ok {
			return u, fmt.Errorf("softctx: uniform %q has unexpected type %T", un.Name, un.Value)
		}
	}
	return u, nil
}

// mvp returns projection*view*model.
func (u uniforms) mvp() fauxgl.Matrix {
	return matrix(u.projection).Mul(matrix(u.view)).Mul(matrix(u.model))
}

// matrix converts a column major matrix to fauxgl's row major form.
func matrix(a [16]float32) fauxgl.Matrix {
	f := func(row, col int) float64 { return float64(a[col*4+row]) }
	return fauxgl.Matrix{
		X00: f(0, 0), X01: f(0, 1), X02: f(0, 2), X03: f(0, 3),
		X10: f(1, 0), X11: f(1, 1), X12: f(1, 2), X13: f(1, 3),
		X20: f(2, 0), X21: f(2, 1), X22: f(2, 2), X23: f(2, 3),
		X30: f(3, 0), X31: f(3, 1), X32: f(3, 2), X33: f(3, 3),
	}
}

// mat4 converts a column major matrix to a Mat4.
func mat4(a [16]float32) glview.Mat4 {
	cm := make([]float64, 16)
	for i, v := range a {
		cm[i] = float64(v)
	}
	// Column major data read as rows is the transpose.
	return glview.NewMat4(cm).Transpose()
}

// decodeVertices splits interleaved vertex data following layout.
func decodeVertices(data []float32, layout []scene.Attrib) ([]fauxgl.Vertex, error) {
	stride := scene.Stride(layout)
	if stride == 0 || len(data)%stride != 0 {
		return nil, fmt.Errorf("softctx: %d floats is not a multiple of stride %d", len(data), stride)
	}
	verts := make([]fauxgl.Vertex, len(data)/stride)
	for i := range verts {
		v := &verts[i]
		v.Color = fauxgl.White
		off := i * stride
		for _, a := range layout {
			attr := data[off : off+a.Size]
			off += a.Size
			switch a.Location {
			case scene.LocPosition:
				v.Position = fauxgl.Vector{X: get(attr, 0), Y: get(attr, 1), Z: get(attr, 2)}
			case scene.LocColor:
				v.Color = fauxgl.Color{R: get(attr, 0), G: get(attr, 1), B: get(attr, 2), A: 1}
				if a.Size > 3 {
					v.Color.A = get(attr, 3)
				}
			case scene.LocTexCoord:
				v.Texture = fauxgl.Vector{X: get(attr, 0), Y: get(attr, 1)}
			}
		}
	}
	return verts, nil
}

func get(attr []float32, i int) float64 {
	if i < len(attr) {
		return float64(attr[i])
	}
	return 0
}

// shader is the Go counterpart of the scene programs.
type shader struct {
	mvp    fauxgl.Matrix
	volume *volumeSampler
}

func (s *shader) Vertex(v fauxgl.Vertex) fauxgl.Vertex {
	v.Output = s.mvp.MulPositionW(v.Position)
	return v
}

func (s *shader) Fragment(v fauxgl.Vertex) fauxgl.Color {
	if s.volume != nil {
		g := s.volume.gray(v.Texture.X, v.Texture.Y)
		return fauxgl.Color{R: g, G: g, B: g, A: 1}
	}
	return v.Color
}

type volumeSampler struct {
	vol    *scene.Volume
	u      uniforms
	affine glview.Mat4
	init   bool
}

// gray samples the volume at plane coordinates (s, t) and windows the
// intensity to [0,1].
func (vs *volumeSampler) gray(s, t float64) float64 {
	if !vs.init {
		vs.affine = mat4(vs.u.affine)
		vs.init = true
	}
	w := float64(vs.u.slicePos)
	var c r3.Vec
	switch vs.u.sliceDim {
	case 0:
		c = r3.Vec{X: w, Y: s, Z: t}
	case 1:
		c = r3.Vec{X: s, Y: w, Z: t}
	default:
		c = r3.Vec{X: s, Y: t, Z: w}
	}
	val := vs.vol.At(vs.affine.Apply(c))
	return clamp01(float64((val - vs.u.vmin) / (vs.u.vmax - vs.u.vmin)))
}
