package scene

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/glview"
	"gonum.org/v1/gonum/spatial/r3"
)

// Volume is a 3D grid of intensities with x varying fastest:
// the voxel (x,y,z) is Data[(z*Ny+y)*Nx+x].
type Volume struct {
	Nx, Ny, Nz int
	Data       []float32
}

func (vol *Volume) dim(d int) int {
	switch d {
	case 0:
		return vol.Nx
	case 1:
		return vol.Ny
	}
	return vol.Nz
}

// At returns the voxel containing the normalized coordinate c, or zero
// when c lies outside the unit cube.
func (vol *Volume) At(c r3.Vec) float32 {
	if c.X < 0 || c.Y < 0 || c.Z < 0 || c.X > 1 || c.Y > 1 || c.Z > 1 {
		return 0
	}
	x := voxel(c.X, vol.Nx)
	y := voxel(c.Y, vol.Ny)
	z := voxel(c.Z, vol.Nz)
	return vol.Data[(z*vol.Ny+y)*vol.Nx+x]
}

func voxel(c float64, n int) int {
	i := int(c * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// Slice selects the plane of a volume that a volume slice node shows.
type Slice struct {
	// Dim is the axis orthogonal to the shown plane: 0 for x, 1 for y, 2 for z.
	Dim int
	// Index of the plane along Dim.
	Index int
	// Min and Max intensities map to black and white. Max must exceed Min.
	Min, Max float32
	// Affine optionally transforms normalized texture coordinates
	// before sampling. nil means identity.
	Affine *glview.Mat4
}

type volumeSlice struct {
	data      *Volume
	slice     Slice
	affine    glview.Mat4
	letterbox glview.Mat4
	width     int
	height    int
	// sliceSet is false until SetSlice succeeds. Until then SetVolume
	// picks the middle plane and the data range as window.
	sliceSet bool
}

var quadUV = [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

// NewVolumeSlice returns a node showing one plane of a 3D volume on the
// quad [-1,1]x[-1,1] of the XY plane, which a camera.Rect over that square
// maps onto the whole viewport. The quad is letterboxed so the plane keeps
// its aspect ratio in the viewport given to SetSize.
func NewVolumeSlice() *Node {
	n := newNode(KindVolumeSlice, Triangles)
	n.volume = &volumeSlice{slice: Slice{Dim: 2, Min: 0, Max: 1}}
	quad := Variables{
		Geometry:     &Geometry{Points: [][]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}},
		Connectivity: &Connectivity{Indices: []uint32{0, 1, 2, 0, 2, 3}},
	}
	v, _, err := n.v.stage(n.mode, quad)
	if err != nil {
		panic(err)
	}
	n.v = v
	return n
}

// SetVolume replaces the volume data. The data is copied. If no slice was
// set yet the middle Z plane is shown windowed to the data's range. If the
// current slice index falls outside the new volume it is moved to the
// middle plane.
func (n *Node) SetVolume(vol Volume) error {
	if n.volume == nil {
		return fmt.Errorf("%w: SetVolume on %s", ErrKind, n.kind)
	}
	if vol.Nx <= 0 || vol.Ny <= 0 || vol.Nz <= 0 {
		return fmt.Errorf("%w: volume dimensions %dx%dx%d", ErrShape, vol.Nx, vol.Ny, vol.Nz)
	}
	if len(vol.Data) != vol.Nx*vol.Ny*vol.Nz {
		return fmt.Errorf("%w: %d values for %dx%dx%d volume", ErrShape, len(vol.Data), vol.Nx, vol.Ny, vol.Nz)
	}
	vol.Data = append([]float32(nil), vol.Data...)
	vs := n.volume
	vs.data = &vol
	if !vs.sliceSet {
		if lo, hi := VolumeRange(vol); hi > lo {
			vs.slice.Min, vs.slice.Max = lo, hi
		}
		vs.slice.Index = vol.dim(vs.slice.Dim) / 2
	} else if vs.slice.Index >= vol.dim(vs.slice.Dim) {
		vs.slice.Index = vol.dim(vs.slice.Dim) / 2
	}
	vs.updateLetterbox(vs.width, vs.height)
	n.dirty |= dirtyTexture
	return nil
}

// SetSlice selects the shown plane and its intensity window.
func (n *Node) SetSlice(s Slice) error {
	if n.volume == nil {
		return fmt.Errorf("%w: SetSlice on %s", ErrKind, n.kind)
	}
	if s.Dim < 0 || s.Dim > 2 {
		return fmt.Errorf("%w: slice dimension %d", ErrRange, s.Dim)
	}
	if !(s.Max > s.Min) {
		return fmt.Errorf("%w: slice window [%v, %v]", ErrRange, s.Min, s.Max)
	}
	vs := n.volume
	if s.Index < 0 || (vs.data != nil && s.Index >= vs.data.dim(s.Dim)) {
		return fmt.Errorf("%w: slice index %d", ErrRange, s.Index)
	}
	vs.affine = glview.Mat4{}
	if s.Affine != nil {
		vs.affine = *s.Affine
		s.Affine = &vs.affine
	}
	vs.slice = s
	vs.sliceSet = true
	vs.updateLetterbox(vs.width, vs.height)
	return nil
}

// Slice returns the plane shown by a volume slice node. Changing the
// returned Affine has no effect until passed to SetSlice.
func (n *Node) Slice() Slice {
	if n.volume == nil {
		return Slice{}
	}
	s := n.volume.slice
	if s.Affine != nil {
		affine := *s.Affine
		s.Affine = &affine
	}
	return s
}

// Sample returns the gray level in [0,1] a volume slice shows at the
// plane coordinates (u,v) in [0,1]x[0,1]. Voxels are sampled nearest.
func (n *Node) Sample(u, v float32) (float32, error) {
	if n.volume == nil {
		return 0, fmt.Errorf("%w: Sample on %s", ErrKind, n.kind)
	}
	if n.volume.data == nil {
		return 0, ErrNoVolume
	}
	return n.volume.sample(u, v), nil
}

func (vs *volumeSlice) planeCoord(u, v float32) r3.Vec {
	w := vs.slicePos()
	switch vs.slice.Dim {
	case 0:
		return r3.Vec{X: float64(w), Y: float64(u), Z: float64(v)}
	case 1:
		return r3.Vec{X: float64(u), Y: float64(w), Z: float64(v)}
	}
	return r3.Vec{X: float64(u), Y: float64(v), Z: float64(w)}
}

func (vs *volumeSlice) sample(u, v float32) float32 {
	c := vs.affine.Apply(vs.planeCoord(u, v))
	val := vs.data.At(c)
	return clamp01((val - vs.slice.Min) / (vs.slice.Max - vs.slice.Min))
}

// slicePos is the normalized texture coordinate of the center of the shown plane.
func (vs *volumeSlice) slicePos() float32 {
	if vs.data == nil {
		return 0.5
	}
	return (float32(vs.slice.Index) + 0.5) / float32(vs.data.dim(vs.slice.Dim))
}

// imageSize returns the shown plane's size in voxels.
func (vs *volumeSlice) imageSize() (w, h int) {
	vol := vs.data
	switch vs.slice.Dim {
	case 0:
		return vol.Ny, vol.Nz
	case 1:
		return vol.Nx, vol.Nz
	}
	return vol.Nx, vol.Ny
}

// updateLetterbox scales the quad so the plane is shown undistorted and as
// large as possible in a width x height viewport.
func (vs *volumeSlice) updateLetterbox(width, height int) {
	vs.width, vs.height = width, height
	vs.letterbox = glview.Mat4{}
	if width <= 0 || height <= 0 || vs.data == nil {
		return
	}
	iw, ih := vs.imageSize()
	imgAspect := float64(iw) / float64(ih)
	viewAspect := float64(width) / float64(height)
	scale := r3.Vec{X: 1, Y: 1, Z: 1}
	if imgAspect > viewAspect {
		scale.Y = viewAspect / imgAspect
	} else {
		scale.X = imgAspect / viewAspect
	}
	vs.letterbox = vs.letterbox.Scale(r3.Vec{}, scale)
}

func (vs *volumeSlice) uniforms() []Uniform {
	return []Uniform{
		{Name: "volume", Value: int32(0)},
		{Name: "slice_dim", Value: int32(vs.slice.Dim)},
		{Name: "slice_pos", Value: vs.slicePos()},
		{Name: "affine", Value: vs.affine.Array32()},
		{Name: "vmin", Value: vs.slice.Min},
		{Name: "vmax", Value: vs.slice.Max},
	}
}

func (vs *volumeSlice) vertexData(positions []ms3.Vec) []float32 {
	data := make([]float32, 0, Stride(volumeLayout)*len(positions))
	for i, p := range positions {
		uv := quadUV[i%len(quadUV)]
		data = append(data, p.X, p.Y, p.Z, uv[0], uv[1])
	}
	return data
}

// VolumeRange returns the minimum and maximum intensity of a volume,
// a convenient default window for Slice.
func VolumeRange(vol Volume) (min, max float32) {
	if len(vol.Data) == 0 {
		return 0, 0
	}
	min, max = vol.Data[0], vol.Data[0]
	for _, v := range vol.Data[1:] {
		min = math32.Min(min, v)
		max = math32.Max(max, v)
	}
	return min, max
}
