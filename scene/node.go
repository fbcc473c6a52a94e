package scene

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/glview"
	"github.com/soypat/glview/camera"
)

var (
	// ErrShape is returned when per-point or per-line arrays
	// do not match the number of points or lines.
	ErrShape = errors.New("scene: shape mismatch")
	// ErrRange is returned for out of range indices or parameters.
	ErrRange = errors.New("scene: value out of range")
	// ErrNoContext is returned when drawing a node not bound to a Context.
	ErrNoContext = errors.New("scene: no context bound")
	// ErrNoPoints is returned when drawing a node kind that needs points without any.
	ErrNoPoints = errors.New("scene: node has no points")
	// ErrNoVolume is returned when drawing a volume slice without volume data.
	ErrNoVolume = errors.New("scene: volume slice has no volume")
	// ErrKind is returned when calling a method reserved to another node kind.
	ErrKind = errors.New("scene: operation not supported by node kind")
	// ErrAdded is returned when adding a node that already belongs to a scene.
	ErrAdded = errors.New("scene: node already added")
)

// Kind enumerates the node variants.
type Kind uint8

const (
	KindGeneric Kind = iota
	KindPointCloud
	KindPolyline
	KindLineCollection
	KindVolumeSlice
)

func (k Kind) String() string {
	switch k {
	case KindGeneric:
		return "generic"
	case KindPointCloud:
		return "point-cloud"
	case KindPolyline:
		return "polyline"
	case KindLineCollection:
		return "line-collection"
	case KindVolumeSlice:
		return "volume-slice"
	}
	return "Kind(?)"
}

// Node is a renderable scene element owning point and attribute data.
// Nodes are created without GPU resources; these are created when the
// node's scene is bound to a Context and are owned by the node until
// released.
type Node struct {
	kind Kind
	mode Mode
	v    vars
	// dirty marks state not yet uploaded to the Context.
	dirty dirtyFlags

	volume *volumeSlice

	ctx     Context
	program Handle
	vbo     Handle
	ibo     Handle
	tex     Handle

	added bool
}

func newNode(kind Kind, mode Mode) *Node {
	return &Node{kind: kind, mode: mode, v: vars{pointSize: 1}, dirty: dirtyAll}
}

// NewGeneric returns a node drawing its points with the given primitive.
// A generic node without points draws nothing.
func NewGeneric(mode Mode) *Node { return newNode(KindGeneric, mode) }

// NewPointCloud returns a node drawing each of its points.
func NewPointCloud() *Node { return newNode(KindPointCloud, Points) }

// NewPolyline returns a node drawing line segments between its points.
// Without explicit indices consecutive points are connected.
func NewPolyline() *Node { return newNode(KindPolyline, Lines) }

// NewLineCollection returns a node drawing many lines set through SetLines.
func NewLineCollection() *Node { return newNode(KindLineCollection, Lines) }

// Kind returns the node variant.
func (n *Node) Kind() Kind { return n.kind }

// Mode returns the primitive the node is drawn with.
func (n *Node) Mode() Mode { return n.mode }

// Len returns the number of points of the node.
func (n *Node) Len() int { return len(n.v.positions) }

// Positions returns the node's points. The returned slice must not be modified.
func (n *Node) Positions() []ms3.Vec { return n.v.positions }

// Colors returns the node's per-point colors. The returned slice must not be modified.
func (n *Node) Colors() []ms3.Vec { return n.v.colors }

// Alphas returns the node's per-point opacities. The returned slice must not be modified.
func (n *Node) Alphas() []float32 { return n.v.alphas }

// Indices returns the node's connectivity. The returned slice must not be modified.
func (n *Node) Indices() []uint32 { return n.v.indices }

// LineWidth returns the line width in pixels, zero if the Context default is used.
func (n *Node) LineWidth() float32 { return n.v.lineWidth }

// Model returns the node's local transform.
func (n *Node) Model() glview.Mat4 {
	if n.volume != nil {
		return n.v.model.Mul(n.volume.letterbox)
	}
	return n.v.model
}

// Bound reports whether the node has a Context.
func (n *Node) Bound() bool { return n.ctx != nil }

// Update merges the supplied variables into the node. All of upd is validated
// before anything is modified: on error the node is left unchanged.
func (n *Node) Update(upd Variables) error {
	if n.kind == KindVolumeSlice && ((upd.Geometry != nil && upd.Geometry.Points != nil) || upd.Connectivity != nil) {
		return fmt.Errorf("%w: %s points are fixed", ErrKind, n.kind)
	}
	next, flags, err := n.v.stage(n.mode, upd)
	if err != nil {
		return err
	}
	n.v = next
	n.dirty |= flags
	return nil
}

// SetGeometry is shorthand for Update with only a Geometry group.
func (n *Node) SetGeometry(g Geometry) error { return n.Update(Variables{Geometry: &g}) }

// SetAppearance is shorthand for Update with only an Appearance group.
func (n *Node) SetAppearance(a Appearance) error { return n.Update(Variables{Appearance: &a}) }

// SetConnectivity is shorthand for Update with only a Connectivity group.
func (n *Node) SetConnectivity(c Connectivity) error { return n.Update(Variables{Connectivity: &c}) }

// SetSize informs the node of the viewport size in pixels.
// Volume slices use it to preserve the slice's aspect ratio.
func (n *Node) SetSize(width, height int) {
	if n.volume != nil {
		n.volume.updateLetterbox(width, height)
	}
}

// requiresPoints reports whether drawing without points is an error.
func (n *Node) requiresPoints() bool { return n.kind != KindGeneric }

func (n *Node) programSource() Program {
	if n.kind == KindVolumeSlice {
		return VolumeProgram
	}
	return ColorProgram
}

func (n *Node) layout() []Attrib {
	if n.kind == KindVolumeSlice {
		return volumeLayout
	}
	return colorLayout
}

// bind creates the node's GPU resources on ctx. Binding an already
// bound node does nothing.
func (n *Node) bind(ctx Context) (err error) {
	if n.ctx != nil {
		return nil
	}
	var program, vbo, ibo, tex Handle
	defer func() {
		if err == nil {
			return
		}
		for _, r := range []struct {
			kind ResourceKind
			h    Handle
		}{{ResourceProgram, program}, {ResourceBuffer, vbo}, {ResourceBuffer, ibo}, {ResourceTexture, tex}} {
			if r.h != 0 {
				ctx.Delete(r.kind, r.h)
			}
		}
	}()
	program, err = ctx.CompileProgram(n.programSource())
	if err != nil {
		return fmt.Errorf("compiling %s program: %w", n.programSource().Name, err)
	}
	vbo, err = ctx.CreateBuffer()
	if err != nil {
		return err
	}
	ibo, err = ctx.CreateBuffer()
	if err != nil {
		return err
	}
	if n.kind == KindVolumeSlice {
		tex, err = ctx.CreateTexture()
		if err != nil {
			return err
		}
	}
	n.ctx, n.program, n.vbo, n.ibo, n.tex = ctx, program, vbo, ibo, tex
	n.dirty = dirtyAll
	return nil
}

// release deletes the node's GPU resources and unbinds it.
func (n *Node) release() {
	if n.ctx == nil {
		return
	}
	n.ctx.Delete(ResourceProgram, n.program)
	n.ctx.Delete(ResourceBuffer, n.vbo)
	n.ctx.Delete(ResourceBuffer, n.ibo)
	if n.tex != 0 {
		n.ctx.Delete(ResourceTexture, n.tex)
	}
	n.ctx, n.program, n.vbo, n.ibo, n.tex = nil, 0, 0, 0, 0
	n.dirty = dirtyAll
}

// draw uploads state changed since the last draw and issues one draw call.
// It does not draw children.
func (n *Node) draw(cam camera.Camera) error {
	if n.ctx == nil {
		return ErrNoContext
	}
	npts := len(n.v.positions)
	if npts == 0 {
		if n.requiresPoints() {
			return fmt.Errorf("%w: %s", ErrNoPoints, n.kind)
		}
		return nil
	}
	if n.kind == KindVolumeSlice && n.volume.data == nil {
		return ErrNoVolume
	}
	if n.dirty&dirtyVertices != 0 {
		if err := n.ctx.BufferVertices(n.vbo, n.vertexData()); err != nil {
			return err
		}
		n.dirty &^= dirtyVertices
	}
	if n.dirty&dirtyIndices != 0 {
		if len(n.v.indices) > 0 {
			if err := n.ctx.BufferIndices(n.ibo, n.v.indices); err != nil {
				return err
			}
		}
		n.dirty &^= dirtyIndices
	}
	if n.dirty&dirtyTexture != 0 {
		if n.volume != nil {
			vol := n.volume.data
			if err := n.ctx.TexImage3D(n.tex, vol.Nx, vol.Ny, vol.Nz, vol.Data); err != nil {
				return err
			}
		}
		n.dirty &^= dirtyTexture
	}

	proj, view := cam.Matrices()
	call := DrawCall{
		Program:  n.program,
		Vertices: n.vbo,
		Layout:   n.layout(),
		Texture:  n.tex,
		Mode:     n.mode,
		Count:    npts,
		Uniforms: []Uniform{
			{Name: "projection", Value: proj.Array32()},
			{Name: "view", Value: view.Array32()},
			{Name: "model", Value: n.Model().Array32()},
		},
		LineWidth: n.v.lineWidth,
	}
	if len(n.v.indices) > 0 {
		call.Indices = n.ibo
		call.Count = len(n.v.indices)
	} else if n.mode == Lines {
		// Nothing to connect.
		return nil
	}
	if n.volume != nil {
		call.Uniforms = append(call.Uniforms, n.volume.uniforms()...)
	} else {
		call.Uniforms = append(call.Uniforms, Uniform{Name: "point_size", Value: n.v.pointSize})
	}
	return n.ctx.Draw(call)
}

// vertexData interleaves the node's per-point state following layout().
func (n *Node) vertexData() []float32 {
	if n.volume != nil {
		return n.volume.vertexData(n.v.positions)
	}
	stride := Stride(colorLayout)
	data := make([]float32, 0, stride*len(n.v.positions))
	for i, p := range n.v.positions {
		c := n.v.colors[i]
		a := clamp01(n.v.alphas[i])
		data = append(data, p.X, p.Y, p.Z, clamp01(c.X), clamp01(c.Y), clamp01(c.Z), a)
	}
	return data
}

func clamp01(v float32) float32 {
	return math32.Max(0, math32.Min(1, v))
}
