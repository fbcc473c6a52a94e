package scene

// Attribute locations shared by the programs below.
const (
	LocPosition = 0
	LocColor    = 1
	LocTexCoord = 2
)

var (
	colorLayout  = []Attrib{{Location: LocPosition, Size: 3}, {Location: LocColor, Size: 4}}
	volumeLayout = []Attrib{{Location: LocPosition, Size: 3}, {Location: LocTexCoord, Size: 2}}
)

// ColorProgram draws per-vertex colored points, lines and triangles.
var ColorProgram = Program{
	Name: "color",
	Source: `#shader vertex
#version 330 core
layout(location = 0) in vec3 position;
layout(location = 1) in vec4 color;
uniform mat4 projection;
uniform mat4 view;
uniform mat4 model;
uniform float point_size;
out vec4 v_color;
void main() {
	gl_Position = projection * view * model * vec4(position, 1.0);
	gl_PointSize = point_size;
	v_color = color;
}

#shader fragment
#version 330 core
in vec4 v_color;
out vec4 frag_color;
void main() {
	frag_color = v_color;
}
`,
}

// VolumeProgram samples a slice of a 3D texture and maps its intensity to gray.
var VolumeProgram = Program{
	Name: "volume",
	Source: `#shader vertex
#version 330 core
layout(location = 0) in vec3 position;
layout(location = 2) in vec2 texcoord;
uniform mat4 projection;
uniform mat4 view;
uniform mat4 model;
out vec2 v_uv;
void main() {
	gl_Position = projection * view * model * vec4(position, 1.0);
	v_uv = texcoord;
}

#shader fragment
#version 330 core
in vec2 v_uv;
uniform sampler3D volume;
uniform int slice_dim;
uniform float slice_pos;
uniform mat4 affine;
uniform float vmin;
uniform float vmax;
out vec4 frag_color;
void main() {
	vec3 coord;
	if (slice_dim == 0) {
		coord = vec3(slice_pos, v_uv.x, v_uv.y);
	} else if (slice_dim == 1) {
		coord = vec3(v_uv.x, slice_pos, v_uv.y);
	} else {
		coord = vec3(v_uv.x, v_uv.y, slice_pos);
	}
	coord = (affine * vec4(coord, 1.0)).xyz;
	float v = texture(volume, coord).r;
	float g = clamp((v - vmin) / (vmax - vmin), 0.0, 1.0);
	frag_color = vec4(g, g, g, 1.0);
}
`,
}
