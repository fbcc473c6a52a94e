package scene

import (
	"errors"
	"fmt"
)

// recorder is a Context keeping every upload and draw call in memory.
type recorder struct {
	next      Handle
	programs  map[Handle]string
	buffers   map[Handle]bool
	textures  map[Handle]bool
	vertices  map[Handle][]float32
	indices   map[Handle][]uint32
	texImages map[Handle][4]int

	uploads []string
	draws   []DrawCall
	deleted int

	failCompile bool
}

func newRecorder() *recorder {
	return &recorder{
		programs:  make(map[Handle]string),
		buffers:   make(map[Handle]bool),
		textures:  make(map[Handle]bool),
		vertices:  make(map[Handle][]float32),
		indices:   make(map[Handle][]uint32),
		texImages: make(map[Handle][4]int),
	}
}

func (r *recorder) handle() Handle {
	r.next++
	return r.next
}

func (r *recorder) CompileProgram(p Program) (Handle, error) {
	if r.failCompile {
		return 0, errors.New("compile failed")
	}
	h := r.handle()
	r.programs[h] = p.Name
	return h, nil
}

func (r *recorder) CreateBuffer() (Handle, error) {
	h := r.handle()
	r.buffers[h] = true
	return h, nil
}

func (r *recorder) CreateTexture() (Handle, error) {
	h := r.handle()
	r.textures[h] = true
	return h, nil
}

func (r *recorder) BufferVertices(buf Handle, data []float32) error {
	if !r.buffers[buf] {
		return fmt.Errorf("no buffer %d", buf)
	}
	r.vertices[buf] = append([]float32(nil), data...)
	r.uploads = append(r.uploads, "vertices")
	return nil
}

func (r *recorder) BufferIndices(buf Handle, idx []uint32) error {
	if !r.buffers[buf] {
		return fmt.Errorf("no buffer %d", buf)
	}
	r.indices[buf] = append([]uint32(nil), idx...)
	r.uploads = append(r.uploads, "indices")
	return nil
}

func (r *recorder) TexImage3D(tex Handle, w, h, d int, data []float32) error {
	if !r.textures[tex] {
		return fmt.Errorf("no texture %d", tex)
	}
	r.texImages[tex] = [4]int{w, h, d, len(data)}
	r.uploads = append(r.uploads, "texture")
	return nil
}

func (r *recorder) Draw(call DrawCall) error {
	if _, ok := r.programs[call.Program]; !ok {
		return fmt.Errorf("no program %d", call.Program)
	}
	r.draws = append(r.draws, call)
	return nil
}

func (r *recorder) Delete(kind ResourceKind, h Handle) {
	switch kind {
	case ResourceProgram:
		delete(r.programs, h)
	case ResourceBuffer:
		delete(r.buffers, h)
	case ResourceTexture:
		delete(r.textures, h)
	}
	r.deleted++
}

func (r *recorder) live() int {
	return len(r.programs) + len(r.buffers) + len(r.textures)
}

func uniform(call DrawCall, name string) (any, bool) {
	for _, u := range call.Uniforms {
		if u.Name == name {
			return u.Value, true
		}
	}
	return nil, false
}
