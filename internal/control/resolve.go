package control

import (
	"github.com/san-kum/blobsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Resolve derives the frame's drag command. A pointer drag wins; otherwise
// any pressed direction drags toward the last centroid offset by R/2 per axis.
func Resolve(s Snapshot, centroid r2.Vec, radius float64) dynamo.Control {
	u := dynamo.Control{Gravity: s.Gravity}

	switch {
	case s.Pointer:
		u.Dragging = true
		u.Target = s.Target
	case s.Keys.Any():
		u.Dragging = true
		u.Target = r2.Add(centroid, r2.Scale(radius/2, KeyOffset(s.Keys)))
	}
	return u
}

// KeyOffset is the unit-per-axis nudge of the pressed keys. Up is -y.
func KeyOffset(k Keys) r2.Vec {
	var v r2.Vec
	if k.Left {
		v.X--
	}
	if k.Right {
		v.X++
	}
	if k.Up {
		v.Y--
	}
	if k.Down {
		v.Y++
	}
	return v
}
