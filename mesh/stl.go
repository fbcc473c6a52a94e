// Package mesh reads and writes binary STL triangle meshes and turns them
// into scene nodes.
package mesh

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
)

// Triangle is a mesh face. Vertices are counter-clockwise when viewed
// from the side its normal points to.
type Triangle [3]ms3.Vec

// Normal returns the unit normal of t. It is the zero vector for
// degenerate triangles.
func (t Triangle) Normal() ms3.Vec {
	// Scaled up so small triangles don't lose precision in the cross product.
	e1 := ms3.Scale(10, ms3.Sub(t[1], t[0]))
	e2 := ms3.Scale(10, ms3.Sub(t[2], t[0]))
	n := ms3.Cross(e1, e2)
	if ms3.Norm(n) == 0 {
		return ms3.Vec{}
	}
	return ms3.Unit(n)
}

// Degenerate reports whether two vertices of t are within tol of each other.
func (t Triangle) Degenerate(tol float32) bool {
	return equalWithin(t[0], t[1], tol) ||
		equalWithin(t[1], t[2], tol) ||
		equalWithin(t[2], t[0], tol)
}

const (
	headerSize   = 84
	triangleSize = 50
)

// header is the binary STL file header.
type header struct {
	_     [80]uint8
	Count uint32
}

// ErrNormalMismatch is returned by ReadSTL alongside the triangles read
// when a stored normal disagrees with the one computed from its vertices.
// High resolution models often trigger it and are still usable.
var ErrNormalMismatch = errors.New("mesh: stored normal differs from vertex winding")

// WriteSTL writes model to w in binary STL format.
func WriteSTL(w io.Writer, model []Triangle) error {
	if len(model) == 0 {
		return errors.New("mesh: empty model")
	}
	hdr := header{Count: uint32(len(model))}
	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return err
	}
	var b [triangleSize]byte
	for _, t := range model {
		putTriangle(b[:], t.Normal(), t)
		if _, err := w.Write(b[:]); err != nil {
			return err
		}
	}
	return nil
}

// ReadSTL reads a binary STL model from r. Triangles with non finite
// coordinates or coincident vertices are an error. Normal mismatches are
// reported with ErrNormalMismatch after the whole model was read.
func ReadSTL(r io.Reader) (model []Triangle, err error) {
	var hdr header
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, errors.New("mesh: EOF while reading header")
		}
		return nil, fmt.Errorf("mesh: reading header: %w", err)
	}
	if hdr.Count == 0 {
		return nil, errors.New("mesh: header indicates 0 triangles")
	}
	const (
		epsilon = 1e-12
		normTol = 5e-2
	)
	var (
		b          [triangleSize]byte
		mismatches int
	)
	model = make([]Triangle, 0, hdr.Count)
	for i := 0; i < int(hdr.Count); i++ {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return nil, fmt.Errorf("mesh: triangle %d/%d: %w", i+1, hdr.Count, err)
		}
		stored, t := getTriangle(b[:])
		if !finite(stored) || !finite(t[0]) || !finite(t[1]) || !finite(t[2]) {
			return nil, fmt.Errorf("mesh: triangle %d/%d: inf/NaN coordinate", i+1, hdr.Count)
		}
		if t.Degenerate(epsilon) {
			return nil, fmt.Errorf("mesh: triangle %d/%d is degenerate", i+1, hdr.Count)
		}
		n := t.Normal()
		if !equalWithin(n, stored, normTol) && !equalWithin(ms3.Scale(-1, n), stored, normTol) {
			mismatches++
		}
		model = append(model, t)
	}
	if mismatches > 0 {
		return model, fmt.Errorf("%w: %d of %d triangles", ErrNormalMismatch, mismatches, hdr.Count)
	}
	return model, nil
}

func putTriangle(b []byte, n ms3.Vec, t Triangle) {
	_ = b[triangleSize-1]
	putVec(b, n)
	putVec(b[12:], t[0])
	putVec(b[24:], t[1])
	putVec(b[36:], t[2])
	binary.LittleEndian.PutUint16(b[48:], 0) // Attribute byte count.
}

func getTriangle(b []byte) (n ms3.Vec, t Triangle) {
	_ = b[triangleSize-1]
	return getVec(b), Triangle{getVec(b[12:]), getVec(b[24:]), getVec(b[36:])}
}

func putVec(b []byte, v ms3.Vec) {
	_ = b[11] // early bounds check
	binary.LittleEndian.PutUint32(b, math.Float32bits(v.X))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(v.Y))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(v.Z))
}

func getVec(b []byte) ms3.Vec {
	_ = b[11] // early bounds check
	return ms3.Vec{
		X: math.Float32frombits(binary.LittleEndian.Uint32(b)),
		Y: math.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
		Z: math.Float32frombits(binary.LittleEndian.Uint32(b[8:])),
	}
}

func finite(v ms3.Vec) bool {
	return !(math32.IsNaN(v.X) || math32.IsInf(v.X, 0) ||
		math32.IsNaN(v.Y) || math32.IsInf(v.Y, 0) ||
		math32.IsNaN(v.Z) || math32.IsInf(v.Z, 0))
}

func equalWithin(a, b ms3.Vec, tol float32) bool {
	return math32.Abs(a.X-b.X) <= tol &&
		math32.Abs(a.Y-b.Y) <= tol &&
		math32.Abs(a.Z-b.Z) <= tol
}
