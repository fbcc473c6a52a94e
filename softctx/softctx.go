// Package softctx implements scene.Context with the fauxgl software
// rasterizer. It needs no window or GPU, which makes it suitable for
// headless snapshots and tests.
//
// GLSL is not compiled: programs are recognized by name and their shading
// is reproduced in Go.
package softctx

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"github.com/soypat/glview/scene"
)

// Config configures a software Context. Zero fields take defaults.
type Config struct {
	// Width and Height of the output image in pixels. Default 512x512.
	Width, Height int
	// Supersample renders at Supersample times the output size and
	// downsamples in Image. Values below 2 disable supersampling.
	Supersample int
	// Background is the RGBA clear color, black when zero.
	Background [4]float32
	// LineWidth in output pixels. Default 1.
	LineWidth float64
}

type program int

const (
	progColor program = iota + 1
	progVolume
)

// Context rasterizes scene draw calls into an image. Handles share a
// single namespace.
type Context struct {
	cfg   Config
	scale int
	fgl   *fauxgl.Context

	next     scene.Handle
	programs map[scene.Handle]program
	vertices map[scene.Handle][]float32
	indices  map[scene.Handle][]uint32
	textures map[scene.Handle]*scene.Volume
}

var _ scene.Context = (*Context)(nil)

// New returns a cleared software Context.
func New(cfg Config) *Context {
	if cfg.Width <= 0 {
		cfg.Width = 512
	}
	if cfg.Height <= 0 {
		cfg.Height = 512
	}
	if cfg.LineWidth <= 0 {
		cfg.LineWidth = 1
	}
	scale := max(cfg.Supersample, 1)
	c := &Context{
		cfg:      cfg,
		scale:    scale,
		fgl:      fauxgl.NewContext(cfg.Width*scale, cfg.Height*scale),
		programs: make(map[scene.Handle]program),
		vertices: make(map[scene.Handle][]float32),
		indices:  make(map[scene.Handle][]uint32),
		textures: make(map[scene.Handle]*scene.Volume),
	}
	c.fgl.Cull = fauxgl.CullNone
	c.fgl.AlphaBlend = true
	c.Clear()
	return c
}

// Size returns the output image size, which is the size a scene drawn
// into the Context should be given.
func (c *Context) Size() (width, height int) { return c.cfg.Width, c.cfg.Height }

// Clear fills the color buffer with the background color and resets depth.
func (c *Context) Clear() {
	bg := c.cfg.Background
	c.fgl.ClearColorBufferWith(fauxgl.Color{R: float64(bg[0]), G: float64(bg[1]), B: float64(bg[2]), A: float64(bg[3])})
	c.fgl.ClearDepthBuffer()
}

// Image returns the rendered image at the configured output size.
func (c *Context) Image() image.Image {
	img := c.fgl.Image()
	if c.scale > 1 {
		img = resize.Resize(uint(c.cfg.Width), uint(c.cfg.Height), img, resize.Bilinear)
	}
	return img
}

// SavePNG writes the rendered image to a PNG file.
func (c *Context) SavePNG(path string) error {
	return fauxgl.SavePNG(path, c.Image())
}

func (c *Context) handle() scene.Handle {
	c.next++
	return c.next
}

// CompileProgram accepts the programs defined by package scene.
func (c *Context) CompileProgram(p scene.Program) (scene.Handle, error) {
	var prog program
	switch p.Name {
	case scene.ColorProgram.Name:
		prog = progColor
	case scene.VolumeProgram.Name:
		prog = progVolume
	default:
		return 0, fmt.Errorf("softctx: unsupported program %q", p.Name)
	}
	h := c.handle()
	c.programs[h] = prog
	return h, nil
}

func (c *Context) CreateBuffer() (scene.Handle, error) {
	h := c.handle()
	c.vertices[h] = nil
	return h, nil
}

func (c *Context) CreateTexture() (scene.Handle, error) {
	h := c.handle()
	c.textures[h] = nil
	return h, nil
}

func (c *Context) BufferVertices(buf scene.Handle, data []float32) error {
	if _, ok := c.vertices[buf]; !ok {
		return fmt.Errorf("softctx: unknown buffer %d", buf)
	}
	c.vertices[buf] = append(c.vertices[buf][:0], data...)
	return nil
}

func (c *Context) BufferIndices(buf scene.Handle, idx []uint32) error {
	if _, ok := c.vertices[buf]; !ok {
		return fmt.Errorf("softctx: unknown buffer %d", buf)
	}
	c.indices[buf] = append(c.indices[buf][:0], idx...)
	return nil
}

func (c *Context) TexImage3D(tex scene.Handle, width, height, depth int, data []float32) error {
	if _, ok := c.textures[tex]; !ok {
		return fmt.Errorf("softctx: unknown texture %d", tex)
	}
	if len(data) != width*height*depth {
		return fmt.Errorf("softctx: %d values for %dx%dx%d texture", len(data), width, height, depth)
	}
	c.textures[tex] = &scene.Volume{Nx: width, Ny: height, Nz: depth, Data: append([]float32(nil), data...)}
	return nil
}

func (c *Context) Delete(kind scene.ResourceKind, h scene.Handle) {
	switch kind {
	case scene.ResourceProgram:
		delete(c.programs, h)
	case scene.ResourceBuffer:
		delete(c.vertices, h)
		delete(c.indices, h)
	case scene.ResourceTexture:
		delete(c.textures, h)
	}
}

// Draw rasterizes call into the color buffer.
func (c *Context) Draw(call scene.DrawCall) error {
	prog, ok := c.programs[call.Program]
	if !ok {
		return fmt.Errorf("softctx: unknown program %d", call.Program)
	}
	data, ok := c.vertices[call.Vertices]
	if !ok {
		return fmt.Errorf("softctx: unknown buffer %d", call.Vertices)
	}
	u, err := parseUniforms(call.Uniforms)
	if err != nil {
		return err
	}
	verts, err := decodeVertices(data, call.Layout)
	if err != nil {
		return err
	}
	order, err := c.drawOrder(call, len(verts))
	if err != nil {
		return err
	}
	sh := &shader{mvp: u.mvp()}
	if prog == progVolume {
		vol := c.textures[call.Texture]
		if vol == nil {
			return fmt.Errorf("softctx: volume draw without texture data")
		}
		sh.volume = &volumeSampler{vol: vol, u: u}
	}
	c.fgl.Shader = sh

	switch call.Mode {
	case scene.Points:
		size := float64(u.pointSize) * float64(c.scale)
		for _, i := range order {
			c.splat(sh.Vertex(verts[i]), size)
		}
	case scene.Lines, scene.LineStrip:
		var lines []*fauxgl.Line
		step := 2
		if call.Mode == scene.LineStrip {
			step = 1
		}
		for k := 0; k+1 < len(order); k += step {
			lines = append(lines, fauxgl.NewLine(verts[order[k]], verts[order[k+1]]))
		}
		width := c.cfg.LineWidth
		if call.LineWidth > 0 {
			width = float64(call.LineWidth)
		}
		c.fgl.LineWidth = width * float64(c.scale)
		c.fgl.DrawLines(lines)
	case scene.Triangles:
		var tris []*fauxgl.Triangle
		for k := 0; k+2 < len(order); k += 3 {
			tris = append(tris, fauxgl.NewTriangle(verts[order[k]], verts[order[k+1]], verts[order[k+2]]))
		}
		c.fgl.DrawTriangles(tris)
	default:
		return fmt.Errorf("softctx: unknown draw mode %d", call.Mode)
	}
	return nil
}

// drawOrder returns the vertex indices a draw call visits.
func (c *Context) drawOrder(call scene.DrawCall, nverts int) ([]uint32, error) {
	if call.Indices == 0 {
		if call.Count > nverts {
			return nil, fmt.Errorf("softctx: drawing %d of %d vertices", call.Count, nverts)
		}
		order := make([]uint32, call.Count)
		for i := range order {
			order[i] = uint32(i)
		}
		return order, nil
	}
	idx, ok := c.indices[call.Indices]
	if !ok {
		return nil, fmt.Errorf("softctx: unknown index buffer %d", call.Indices)
	}
	if call.Count > len(idx) {
		return nil, fmt.Errorf("softctx: drawing %d of %d indices", call.Count, len(idx))
	}
	for _, i := range idx[:call.Count] {
		if int(i) >= nverts {
			return nil, fmt.Errorf("softctx: index %d out of %d vertices", i, nverts)
		}
	}
	return idx[:call.Count], nil
}

// splat draws a square point of size pixels centered on the clip space
// position of v, blending its color over the color buffer.
func (c *Context) splat(v fauxgl.Vertex, size float64) {
	w := v.Output.W
	if w <= 0 {
		return
	}
	ndcX, ndcY, ndcZ := v.Output.X/w, v.Output.Y/w, v.Output.Z/w
	if ndcZ < -1 || ndcZ > 1 {
		return
	}
	buf := c.fgl.ColorBuffer
	b := buf.Bounds()
	cx := (ndcX + 1) / 2 * float64(b.Dx())
	cy := (1 - ndcY) / 2 * float64(b.Dy())
	half := max(size, 1) / 2
	x0, x1 := int(cx-half+0.5), int(cx+half+0.5)
	y0, y1 := int(cy-half+0.5), int(cy+half+0.5)
	col := v.Color
	for y := max(y0, b.Min.Y); y < min(y1, b.Max.Y); y++ {
		for x := max(x0, b.Min.X); x < min(x1, b.Max.X); x++ {
			dst := buf.NRGBAAt(x, y)
			buf.SetNRGBA(x, y, blend(dst, col))
		}
	}
}

// blend composites src over dst.
func blend(dst color.NRGBA, src fauxgl.Color) color.NRGBA {
	d := fauxgl.Color{R: float64(dst.R) / 255, G: float64(dst.G) / 255, B: float64(dst.B) / 255, A: float64(dst.A) / 255}
	a := clamp01(src.A)
	out := fauxgl.Color{
		R: clamp01(src.R)*a + d.R*(1-a),
		G: clamp01(src.G)*a + d.G*(1-a),
		B: clamp01(src.B)*a + d.B*(1-a),
		A: a + d.A*(1-a),
	}
	return out.NRGBA()
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}
