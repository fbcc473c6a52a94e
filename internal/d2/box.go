package d2

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Box is a 2d bounding box.
type Box r2.Box

// NewBox2 creates a 2d box with a given center and size.
func NewBox2(center, size r2.Vec) Box {
	half := r2.Scale(0.5, size)
	return Box{r2.Sub(center, half), r2.Add(center, half)}
}

// Translate translates a 2d box.
func (a Box) Translate(v r2.Vec) Box {
	return Box{r2.Add(a.Min, v), r2.Add(a.Max, v)}
}

// Size returns the size of a 2d box.
func (a Box) Size() r2.Vec {
	return r2.Sub(a.Max, a.Min)
}

// Center returns the center of a 2d box.
func (a Box) Center() r2.Vec {
	return r2.Add(a.Min, r2.Scale(0.5, a.Size()))
}

// ScaleAboutCenter returns a new 2d box whose size is scaled
// per axis by k about the center of a box.
func (a Box) ScaleAboutCenter(k r2.Vec) Box {
	return NewBox2(a.Center(), MulElem(k, a.Size()))
}
