package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/blobsim/internal/dynamo"
)

const (
	DefaultTension        = 0.05
	DefaultPressure       = 2000.0
	DefaultAreaPressure   = 4.0
	DefaultGravity        = 1.5
	DefaultBounce         = 2.0
	DefaultDragTension    = 0.08
	DefaultFriction       = 0.67
	DefaultAccelCap       = 10.0
	DefaultMinDenominator = 1.0
	DefaultHalfWidth      = 400.0
	DefaultHalfHeight     = 300.0
)

// Params holds the tuning constants of the force model and integrator.
type Params struct {
	Tension        float64 `yaml:"tension"`
	Pressure       float64 `yaml:"pressure"`
	AreaPressure   float64 `yaml:"area_pressure"`
	Gravity        float64 `yaml:"gravity"`
	Bounce         float64 `yaml:"bounce"`
	DragTension    float64 `yaml:"drag_tension"`
	Friction       float64 `yaml:"friction"`
	VertexDecay    float64 `yaml:"vertex_decay"`
	BodyDecay      float64 `yaml:"body_decay"`
	AccelCap       float64 `yaml:"accel_cap"`
	MinDenominator float64 `yaml:"min_denominator"`
	HalfWidth      float64 `yaml:"half_width"`
	HalfHeight     float64 `yaml:"half_height"`
	Walls          bool    `yaml:"walls"`
	Workers        int     `yaml:"workers"`
	ParallelAt     int     `yaml:"parallel_at"`
}

func DefaultParams() Params {
	return Params{
		Tension:        DefaultTension,
		Pressure:       DefaultPressure,
		AreaPressure:   DefaultAreaPressure,
		Gravity:        DefaultGravity,
		Bounce:         DefaultBounce,
		DragTension:    DefaultDragTension,
		Friction:       DefaultFriction,
		AccelCap:       DefaultAccelCap,
		MinDenominator: DefaultMinDenominator,
		HalfWidth:      DefaultHalfWidth,
		HalfHeight:     DefaultHalfHeight,
	}
}

// Validate rejects values that make the model meaningless rather than merely stiff.
func (p Params) Validate() error {
	checks := []struct {
		name string
		val  float64
		ok   bool
		why  string
	}{
		{"tension", p.Tension, p.Tension >= 0, "must be non-negative"},
		{"pressure", p.Pressure, p.Pressure >= 0, "must be non-negative"},
		{"area_pressure", p.AreaPressure, p.AreaPressure >= 0, "must be non-negative"},
		{"bounce", p.Bounce, p.Bounce >= 0, "must be non-negative"},
		{"drag_tension", p.DragTension, p.DragTension >= 0, "must be non-negative"},
		{"friction", p.Friction, p.Friction > 0 && p.Friction <= 1, "must be in (0, 1]"},
		{"vertex_decay", p.VertexDecay, p.VertexDecay >= 0, "must be non-negative"},
		{"body_decay", p.BodyDecay, p.BodyDecay >= 0, "must be non-negative"},
		{"accel_cap", p.AccelCap, p.AccelCap > 0, "must be positive"},
		{"min_denominator", p.MinDenominator, p.MinDenominator > 0, "must be positive"},
		{"half_width", p.HalfWidth, p.HalfWidth > 0, "must be positive"},
		{"half_height", p.HalfHeight, p.HalfHeight > 0, "must be positive"},
		{"workers", float64(p.Workers), p.Workers >= 0, "must be non-negative"},
		{"parallel_at", float64(p.ParallelAt), p.ParallelAt >= 0, "must be non-negative"},
	}

	for _, c := range checks {
		if math.IsNaN(c.val) || math.IsInf(c.val, 0) {
			return &dynamo.ParamError{Name: c.name, Value: c.val, Reason: "must be finite"}
		}
		if !c.ok {
			return &dynamo.ParamError{Name: c.name, Value: c.val, Reason: c.why}
		}
	}
	if math.IsNaN(p.Gravity) || math.IsInf(p.Gravity, 0) {
		return &dynamo.ParamError{Name: "gravity", Value: p.Gravity, Reason: "must be finite"}
	}
	return nil
}

// GetParams exposes the float-valued constants for live tuning.
func (p Params) GetParams() map[string]float64 {
	return map[string]float64{
		"tension":       p.Tension,
		"pressure":      p.Pressure,
		"area_pressure": p.AreaPressure,
		"gravity":       p.Gravity,
		"bounce":        p.Bounce,
		"drag_tension":  p.DragTension,
		"friction":      p.Friction,
	}
}

func (p *Params) SetParam(name string, value float64) error {
	next := *p
	switch name {
	case "tension":
		next.Tension = value
	case "pressure":
		next.Pressure = value
	case "area_pressure":
		next.AreaPressure = value
	case "gravity":
		next.Gravity = value
	case "bounce":
		next.Bounce = value
	case "drag_tension":
		next.DragTension = value
	case "friction":
		next.Friction = value
	default:
		return fmt.Errorf("param %q: %w", name, dynamo.ErrUnknown)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*p = next
	return nil
}
