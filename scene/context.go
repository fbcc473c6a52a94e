package scene

// Handle identifies a resource created by a Context. The zero Handle is
// never returned by a successful Create call.
type Handle uint32

// ResourceKind tells Context.Delete what a Handle refers to.
type ResourceKind uint8

const (
	ResourceProgram ResourceKind = iota + 1
	ResourceBuffer
	ResourceTexture
)

// Mode is the primitive a draw call rasterizes.
type Mode uint8

const (
	Points Mode = iota
	Lines
	LineStrip
	Triangles
)

func (m Mode) String() string {
	switch m {
	case Points:
		return "points"
	case Lines:
		return "lines"
	case LineStrip:
		return "line-strip"
	case Triangles:
		return "triangles"
	}
	return "Mode(?)"
}

// Program is a named shader program in glgl combined source form, where
// each stage is introduced by a "#shader vertex" or "#shader fragment" line.
// Contexts that cannot compile GLSL dispatch on Name.
type Program struct {
	Name   string
	Source string
}

// Attrib describes one interleaved float32 vertex attribute.
// Attributes are laid out in the order given.
type Attrib struct {
	Location uint32
	Size     int // number of float32 components.
}

// Stride returns the number of float32 per vertex of the layout.
func Stride(layout []Attrib) (n int) {
	for _, a := range layout {
		n += a.Size
	}
	return n
}

// Uniform is a named shader input. Value is one of
// [16]float32 (column major mat4), [3]float32, float32 or int32.
type Uniform struct {
	Name  string
	Value any
}

// DrawCall is everything a Context needs to issue a single draw.
type DrawCall struct {
	Program  Handle
	Vertices Handle
	Layout   []Attrib
	// Indices is zero for non indexed draws.
	Indices Handle
	// Texture is a 3D texture bound to unit 0, or zero.
	Texture  Handle
	Mode     Mode
	Count    int
	Uniforms []Uniform
	// LineWidth in pixels for line modes. Zero selects the Context's default.
	LineWidth float32
}

// Context is the graphics context collaborator nodes render through.
// All methods are called from the render thread.
type Context interface {
	CompileProgram(p Program) (Handle, error)
	CreateBuffer() (Handle, error)
	CreateTexture() (Handle, error)
	// BufferVertices replaces the contents of a vertex buffer.
	BufferVertices(buf Handle, data []float32) error
	// BufferIndices replaces the contents of an index buffer.
	BufferIndices(buf Handle, idx []uint32) error
	// TexImage3D replaces the single channel float contents of a 3D texture.
	// data is laid out with x varying fastest.
	TexImage3D(tex Handle, width, height, depth int, data []float32) error
	Draw(call DrawCall) error
	Delete(kind ResourceKind, h Handle)
}
