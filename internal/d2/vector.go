package d2

import (
	"gonum.org/v1/gonum/spatial/r2"
)

func MulElem(a, b r2.Vec) r2.Vec {
	return r2.Vec{
		X: a.X * b.X,
		Y: a.Y * b.Y,
	}
}

func DivElem(a, b r2.Vec) r2.Vec {
	return r2.Vec{
		X: a.X / b.X,
		Y: a.Y / b.Y,
	}
}
