package mesh

import (
	"errors"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/glview/scene"
)

// Shading sets the colors baked into the vertices of a mesh node.
// Zero fields take defaults.
type Shading struct {
	// Color is the base RGB color. Default white.
	Color ms3.Vec
	// Light is the direction towards a directional light. Default +Z.
	Light ms3.Vec
	// Ambient is the fraction of Color shown on faces turned away from
	// Light. Default 0.25.
	Ambient float32
}

// NewNode returns a Triangles node drawing model. Vertices shared between
// triangles are merged and lit with the average normal of their faces, so
// curved surfaces look smooth.
func NewNode(model []Triangle, sh Shading) (*scene.Node, error) {
	if len(model) == 0 {
		return nil, errors.New("mesh: empty model")
	}
	if sh.Color == (ms3.Vec{}) {
		sh.Color = ms3.Vec{X: 1, Y: 1, Z: 1}
	}
	if sh.Light == (ms3.Vec{}) {
		sh.Light = ms3.Vec{Z: 1}
	}
	sh.Light = ms3.Unit(sh.Light)
	if sh.Ambient == 0 {
		sh.Ambient = 0.25
	}

	index := make(map[ms3.Vec]uint32)
	var (
		points  [][]float32
		normals []ms3.Vec
		indices = make([]uint32, 0, 3*len(model))
	)
	for _, t := range model {
		// Unnormalized so larger faces weigh more.
		n := ms3.Cross(ms3.Sub(t[1], t[0]), ms3.Sub(t[2], t[0]))
		for _, v := range t {
			i, ok := index[v]
			if !ok {
				i = uint32(len(points))
				index[v] = i
				points = append(points, []float32{v.X, v.Y, v.Z})
				normals = append(normals, ms3.Vec{})
			}
			normals[i] = ms3.Add(normals[i], n)
			indices = append(indices, i)
		}
	}
	colors := make([]ms3.Vec, len(normals))
	for i, n := range normals {
		lambert := float32(0)
		if ms3.Norm(n) > 0 {
			lambert = math32.Abs(ms3.Dot(ms3.Unit(n), sh.Light))
		}
		colors[i] = ms3.Scale(sh.Ambient+(1-sh.Ambient)*lambert, sh.Color)
	}

	node := scene.NewGeneric(scene.Triangles)
	err := node.Update(scene.Variables{
		Geometry:     &scene.Geometry{Points: points},
		Appearance:   &scene.Appearance{Colors: colors},
		Connectivity: &scene.Connectivity{Indices: indices},
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}
