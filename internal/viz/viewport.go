package viz

import (
	"image"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Viewport maps world coordinates (origin at the centre, +y down) onto canvas
// sub-pixels with a uniform scale.
type Viewport struct {
	HalfWidth, HalfHeight float64
	W, H                  int
	scale                 float64
}

// NewViewport fits the world box [-hw, hw] x [-hh, hh] into a w x h
// sub-pixel canvas.
func NewViewport(hw, hh float64, w, h int) Viewport {
	return Viewport{
		HalfWidth:  hw,
		HalfHeight: hh,
		W:          w,
		H:          h,
		scale:      math.Min(float64(w)/(2*hw), float64(h)/(2*hh)),
	}
}

func (v Viewport) Scale() float64 { return v.scale }

func (v Viewport) Project(p r2.Vec) image.Point {
	return image.Pt(
		int(math.Round(float64(v.W)/2+p.X*v.scale)),
		int(math.Round(float64(v.H)/2+p.Y*v.scale)),
	)
}

func (v Viewport) Unproject(x, y int) r2.Vec {
	return r2.Vec{
		X: (float64(x) - float64(v.W)/2) / v.scale,
		Y: (float64(y) - float64(v.H)/2) / v.scale,
	}
}

// CellToWorld returns the world point under the centre of terminal cell
// (col, row) of the canvas.
func (v Viewport) CellToWorld(col, row int) r2.Vec {
	return v.Unproject(col*2+1, row*4+2)
}
