package control

import (
	"fmt"
	"math"

	"github.com/san-kum/blobsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

const DefaultTiltScale = 3.0

// Mapping selects the y-component formula of the orientation mapping.
type Mapping int

const (
	// MappingPitch uses y = cos(pitch)·sin(roll).
	MappingPitch Mapping = iota
	// MappingYaw uses y = cos(yaw)·sin(roll).
	MappingYaw
)

func (m Mapping) String() string {
	switch m {
	case MappingPitch:
		return "pitch"
	case MappingYaw:
		return "yaw"
	default:
		return fmt.Sprintf("Mapping(%d)", int(m))
	}
}

func ParseMapping(s string) (Mapping, error) {
	switch s {
	case "", "pitch":
		return MappingPitch, nil
	case "yaw":
		return MappingYaw, nil
	default:
		return 0, fmt.Errorf("tilt mapping %q: %w", s, dynamo.ErrUnknown)
	}
}

// GravityFromOrientation maps device angles in degrees to a gravity vector.
// yaw = -gamma, pitch = alpha, roll = beta.
func GravityFromOrientation(alpha, beta, gamma float64, m Mapping, scale float64) r2.Vec {
	yaw := -gamma * math.Pi / 180
	pitch := alpha * math.Pi / 180
	roll := beta * math.Pi / 180

	sy, cy := math.Sincos(yaw)
	sp, cp := math.Sincos(pitch)
	sr, cr := math.Sincos(roll)

	x := -cy*sp*sr - sy*cr
	y := cp * sr
	if m == MappingYaw {
		y = cy * sr
	}
	return r2.Vec{X: x * scale, Y: y * scale}
}
