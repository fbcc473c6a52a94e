// Package glctx implements scene.Context on an OpenGL 3.3+ core context
// using go-gl. All calls must happen on the thread owning the current
// GL context.
package glctx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/soypat/glgl/v4.6-core/glgl"
	"github.com/soypat/glview/scene"
)

const floatSize = 4

// Context is a scene.Context drawing into the current GL context. Handles
// returned are the GL object names.
type Context struct {
	vao      uint32
	programs map[scene.Handle]*program
}

type program struct {
	glgl.Program
	// uniforms caches uniform locations.
	uniforms map[string]int32
}

var _ scene.Context = (*Context)(nil)

// New returns a Context bound to the current GL context. The GL function
// pointers must already be loaded, as done by Init.
func New() *Context {
	c := &Context{
		programs: make(map[scene.Handle]*program),
	}
	gl.GenVertexArrays(1, &c.vao)
	gl.Enable(gl.PROGRAM_POINT_SIZE)
	return c
}

// CompileProgram compiles p.Source in glgl combined form.
func (c *Context) CompileProgram(p scene.Program) (scene.Handle, error) {
	src, err := glgl.ParseCombined(strings.NewReader(p.Source))
	if err != nil {
		return 0, fmt.Errorf("parsing %s program: %w", p.Name, err)
	}
	prog, err := glgl.CompileProgram(src)
	if err != nil {
		return 0, fmt.Errorf("compiling %s program: %w", p.Name, err)
	}
	// glgl keeps the program name private; read it back from the GL state
	// for uniform lookups and as the Handle.
	prog.Bind()
	var id int32
	gl.GetIntegerv(gl.CURRENT_PROGRAM, &id)
	prog.Unbind()
	if id == 0 {
		return 0, fmt.Errorf("compiling %s program: no program object", p.Name)
	}
	if err := glErr("compiling " + p.Name + " program"); err != nil {
		prog.Delete()
		return 0, err
	}
	h := scene.Handle(id)
	c.programs[h] = &program{Program: prog, uniforms: make(map[string]int32)}
	return h, nil
}

func (c *Context) CreateBuffer() (scene.Handle, error) {
	var b uint32
	gl.GenBuffers(1, &b)
	if b == 0 {
		return 0, errors.New("glctx: glGenBuffers returned no buffer")
	}
	return scene.Handle(b), nil
}

func (c *Context) CreateTexture() (scene.Handle, error) {
	var tex uint32
	gl.GenTextures(1, &tex)
	if tex == 0 {
		return 0, errors.New("glctx: glGenTextures returned no texture")
	}
	gl.BindTexture(gl.TEXTURE_3D, tex)
	gl.TexParameteri(gl.TEXTURE_3D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_3D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	for _, wrap := range []uint32{gl.TEXTURE_WRAP_S, gl.TEXTURE_WRAP_T, gl.TEXTURE_WRAP_R} {
		gl.TexParameteri(gl.TEXTURE_3D, wrap, gl.CLAMP_TO_BORDER)
	}
	border := [4]float32{}
	gl.TexParameterfv(gl.TEXTURE_3D, gl.TEXTURE_BORDER_COLOR, &border[0])
	gl.BindTexture(gl.TEXTURE_3D, 0)
	return scene.Handle(tex), nil
}

func (c *Context) BufferVertices(buf scene.Handle, data []float32) error {
	if len(data) == 0 {
		return nil
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(buf))
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*floatSize, gl.Ptr(data), gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return glErr("uploading vertices")
}

func (c *Context) BufferIndices(buf scene.Handle, idx []uint32) error {
	if len(idx) == 0 {
		return nil
	}
	gl.BindVertexArray(c.vao)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, uint32(buf))
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(idx)*4, gl.Ptr(idx), gl.DYNAMIC_DRAW)
	gl.BindVertexArray(0)
	return glErr("uploading indices")
}

func (c *Context) TexImage3D(tex scene.Handle, width, height, depth int, data []float32) error {
	if len(data) != width*height*depth {
		return fmt.Errorf("glctx: %d values for %dx%dx%d texture", len(data), width, height, depth)
	}
	gl.BindTexture(gl.TEXTURE_3D, uint32(tex))
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage3D(gl.TEXTURE_3D, 0, gl.R32F, int32(width), int32(height), int32(depth), 0, gl.RED, gl.FLOAT, gl.Ptr(data))
	gl.BindTexture(gl.TEXTURE_3D, 0)
	return glErr("uploading texture")
}

// Draw issues call with blending enabled as configured by BeginFrame.
func (c *Context) Draw(call scene.DrawCall) error {
	prog, ok := c.programs[call.Program]
	if !ok {
		return fmt.Errorf("glctx: unknown program %d", call.Program)
	}
	mode, err := primitive(call.Mode)
	if err != nil {
		return err
	}
	prog.Bind()
	defer prog.Unbind()
	for _, u := range call.Uniforms {
		if err := prog.setUniform(uint32(call.Program), u); err != nil {
			return err
		}
	}
	if call.Mode == scene.Lines || call.Mode == scene.LineStrip {
		gl.LineWidth(lineWidth(call.LineWidth))
	}
	gl.BindVertexArray(c.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(call.Vertices))
	stride := int32(scene.Stride(call.Layout) * floatSize)
	offset := 0
	for _, a := range call.Layout {
		gl.EnableVertexAttribArray(a.Location)
		gl.VertexAttribPointerWithOffset(a.Location, int32(a.Size), gl.FLOAT, false, stride, uintptr(offset))
		offset += a.Size * floatSize
	}
	if call.Texture != 0 {
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_3D, uint32(call.Texture))
	}
	if call.Indices != 0 {
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, uint32(call.Indices))
		gl.DrawElementsWithOffset(mode, int32(call.Count), gl.UNSIGNED_INT, 0)
	} else {
		gl.DrawArrays(mode, 0, int32(call.Count))
	}
	for _, a := range call.Layout {
		gl.DisableVertexAttribArray(a.Location)
	}
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	if call.Texture != 0 {
		gl.BindTexture(gl.TEXTURE_3D, 0)
	}
	return glErr("drawing " + call.Mode.String())
}

// setUniform sets u on the bound program whose GL name is id.
func (p *program) setUniform(id uint32, u scene.Uniform) error {
	if err := checkUniform(u); err != nil {
		return err
	}
	loc, ok := p.uniforms[u.Name]
	if !ok {
		loc = gl.GetUniformLocation(id, gl.Str(u.Name+"\x00"))
		p.uniforms[u.Name] = loc
	}
	if loc < 0 {
		// Unused uniforms are optimized out by the driver.
		return nil
	}
	switch v := u.Value.(type) {
	case [16]float32:
		gl.UniformMatrix4fv(loc, 1, false, &v[0])
	case [3]float32:
		gl.Uniform3f(loc, v[0], v[1], v[2])
	case float32:
		gl.Uniform1f(loc, v)
	case int32:
		gl.Uniform1i(loc, v)
	}
	return nil
}

func (c *Context) Delete(kind scene.ResourceKind, h scene.Handle) {
	if h == 0 {
		return
	}
	name := uint32(h)
	switch kind {
	case scene.ResourceProgram:
		if prog, ok := c.programs[h]; ok {
			prog.Delete()
			delete(c.programs, h)
		}
	case scene.ResourceBuffer:
		gl.DeleteBuffers(1, &name)
	case scene.ResourceTexture:
		gl.DeleteTextures(1, &name)
	}
}

// Release deletes the context's vertex array. Resources created through
// the Context must be deleted beforehand, usually by scene.Scene.Release.
func (c *Context) Release() {
	gl.DeleteVertexArrays(1, &c.vao)
	c.vao = 0
}

// checkUniform reports whether u holds a supported value type.
func checkUniform(u scene.Uniform) error {
	switch u.Value.(type) {
	case [16]float32, [3]float32, float32, int32:
		return nil
	}
	return fmt.Errorf("glctx: uniform %q has unsupported type %T", u.Name, u.Value)
}

func primitive(m scene.Mode) (uint32, error) {
	switch m {
	case scene.Points:
		return gl.POINTS, nil
	case scene.Lines:
		return gl.LINES, nil
	case scene.LineStrip:
		return gl.LINE_STRIP, nil
	case scene.Triangles:
		return gl.TRIANGLES, nil
	}
	return 0, fmt.Errorf("glctx: unknown draw mode %d", m)
}

// lineWidth is the width drawn for a requested line width, one pixel
// when unset.
func lineWidth(w float32) float32 {
	if w <= 0 {
		return 1
	}
	return w
}

func glErr(action string) error {
	if err := glgl.Err(); err != nil {
		return fmt.Errorf("glctx: %s: %w", action, err)
	}
	return nil
}
