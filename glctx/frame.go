package glctx

import (
	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/soypat/glgl/v4.6-core/glgl"
)

// WindowConfig configures the window created by Init. The zero value
// creates an 800x600 window with an OpenGL 4.6 core context.
type WindowConfig struct {
	Title  string
	Width  int
	Height int
	// Version is the requested OpenGL major and minor version.
	Version [2]int
}

// Init creates a window, makes its GL context current on the calling
// thread and loads the GL functions. The caller must have locked the OS
// thread and must call terminate when done.
func Init(cfg WindowConfig) (window *glfw.Window, terminate func(), err error) {
	if cfg.Title == "" {
		cfg.Title = "glview"
	}
	if cfg.Width <= 0 {
		cfg.Width = 800
	}
	if cfg.Height <= 0 {
		cfg.Height = 600
	}
	if cfg.Version == [2]int{} {
		cfg.Version = [2]int{4, 6}
	}
	return glgl.InitWithCurrentWindow33(glgl.WindowConfig{
		Title:   cfg.Title,
		Version: cfg.Version,
		Width:   cfg.Width,
		Height:  cfg.Height,
	})
}

// Frame configures the fixed function state of a frame.
type Frame struct {
	Width, Height int
	// Background is the RGBA clear color.
	Background [4]float32
	// DepthTest enables depth testing, needed for 3D scenes.
	DepthTest bool
	// NoBlend disables alpha blending.
	NoBlend bool
}

// BeginFrame sets the viewport, clears the framebuffer and sets the blend
// and depth state for the draw calls of a frame.
func (c *Context) BeginFrame(f Frame) {
	gl.Viewport(0, 0, int32(f.Width), int32(f.Height))
	bg := f.Background
	gl.ClearColor(bg[0], bg[1], bg[2], bg[3])
	var bits uint32 = gl.COLOR_BUFFER_BIT
	if f.DepthTest {
		bits |= gl.DEPTH_BUFFER_BIT
		gl.Enable(gl.DEPTH_TEST)
		gl.DepthFunc(gl.LEQUAL)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
	gl.Clear(bits)
	if f.NoBlend {
		gl.Disable(gl.BLEND)
	} else {
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	}
}

// ReadPixels returns the RGBA contents of the framebuffer, bottom row first.
func (c *Context) ReadPixels(width, height int) []byte {
	buf := make([]byte, 4*width*height)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(buf))
	return buf
}
