package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/blobsim/internal/dynamo"
	"github.com/san-kum/blobsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	DefaultVertices = 50
	DefaultRadius   = 100.0
	DefaultSubSteps = 40
)

// Settings fixes a session's shape and tuning at construction.
type Settings struct {
	Vertices int
	Radius   float64
	SubSteps int
	Tuning   physics.Params
}

func DefaultSettings() Settings {
	return Settings{
		Vertices: DefaultVertices,
		Radius:   DefaultRadius,
		SubSteps: DefaultSubSteps,
		Tuning:   physics.DefaultParams(),
	}
}

// Validate rejects settings no ring can be built from.
func (s Settings) Validate() error {
	if s.Vertices <= 1 {
		return &dynamo.ParamError{Name: "vertices", Value: float64(s.Vertices), Reason: "must be at least 2"}
	}
	if !(s.Radius > 0) || math.IsInf(s.Radius, 1) {
		return &dynamo.ParamError{Name: "radius", Value: s.Radius, Reason: "must be positive and finite"}
	}
	if s.SubSteps <= 0 {
		return &dynamo.ParamError{Name: "substeps", Value: float64(s.SubSteps), Reason: "must be positive"}
	}
	if err := s.Tuning.Validate(); err != nil {
		return fmt.Errorf("tuning: %w", err)
	}
	return nil
}

// State is the stability state of a step controller.
type State int

const (
	Running State = iota
	Resetting
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Resetting:
		return "resetting"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Result summarises a headless run.
type Result struct {
	Frames    int
	Resets    int
	Centroids []r2.Vec
	Final     []r2.Vec
	Metrics   map[string]float64
	Errors    []error
}
