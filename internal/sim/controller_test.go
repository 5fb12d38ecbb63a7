package sim

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/san-kum/blobsim/internal/dynamo"
	"github.com/san-kum/blobsim/internal/integrators"
	"github.com/san-kum/blobsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

type constantField struct{ a r2.Vec }

func (f constantField) Accelerate(b dynamo.Body, u dynamo.Control, acc []r2.Vec) {
	for i := range acc {
		acc[i] = f.a
	}
}

type nanField struct{ at int }

func (f nanField) Accelerate(b dynamo.Body, u dynamo.Control, acc []r2.Vec) {
	for i := range acc {
		acc[i] = r2.Vec{}
	}
	acc[f.at].Y = math.NaN()
}

func newController(t *testing.T, n int, f dynamo.ForceField, subSteps int) (*StepController, *physics.Ring) {
	t.Helper()
	ring, err := physics.NewRing(n, 10)
	if err != nil {
		t.Fatal(err)
	}
	ring.Reset()
	c := NewStepController(ring, f, integrators.NewSymplecticEuler(1), subSteps, log.New(io.Discard))
	return c, ring
}

func TestControllerRunsAllSubSteps(t *testing.T) {
	c, _ := newController(t, 6, constantField{r2.Vec{Y: 1}}, 40)
	if c.Dt() != 1.0/40 {
		t.Fatalf("dt = %v", c.Dt())
	}

	r := c.Advance(0, dynamo.Control{})
	// 40 sub-steps of semi-implicit Euler under unit acceleration.
	want := 0.5 + 0.5/40
	if math.Abs(r.Centroid.Y-want) > 1e-9 {
		t.Errorf("centroid y = %v, want %v", r.Centroid.Y, want)
	}
	if r.Reset || r.Err != nil {
		t.Errorf("unexpected reset: %+v", r)
	}
}

func TestControllerCentroidMatchesVertices(t *testing.T) {
	c, _ := newController(t, 7, constantField{r2.Vec{X: 0.3, Y: -2}}, 10)
	r := c.Advance(3, dynamo.Control{})
	if r.Frame != 3 {
		t.Errorf("frame = %d", r.Frame)
	}
	mean := dynamo.Centroid(r.Vertices)
	if r.Centroid != mean {
		t.Errorf("centroid %v != mean %v", r.Centroid, mean)
	}
}

func TestControllerResetsOnDivergence(t *testing.T) {
	c, ring := newController(t, 5, nanField{at: 3}, 4)

	r := c.Advance(7, dynamo.Control{})
	if !r.Reset {
		t.Fatal("expected the frame to be discarded")
	}
	var de *dynamo.DivergenceError
	if !errors.As(r.Err, &de) || de.Frame != 7 || de.Particle != 3 {
		t.Errorf("error %v", r.Err)
	}
	if !errors.Is(r.Err, dynamo.ErrDiverged) {
		t.Error("error does not wrap ErrDiverged")
	}
	if c.Resets() != 1 || c.State() != Running {
		t.Errorf("resets %d state %v", c.Resets(), c.State())
	}

	fresh, _ := physics.NewRing(5, 10)
	fresh.Reset()
	for i, p := range ring.Positions() {
		if p != fresh.Positions()[i] {
			t.Errorf("particle %d at %v, want %v", i, p, fresh.Positions()[i])
		}
	}
	if i := dynamo.FirstNonFinite(r.Vertices); i >= 0 {
		t.Errorf("report leaked non-finite vertex %d", i)
	}
}

func TestControllerHeldTargetResetsOnce(t *testing.T) {
	p := physics.DefaultParams()
	p.Gravity = 0
	ring, err := physics.NewRing(8, 10)
	if err != nil {
		t.Fatal(err)
	}
	ring.Reset()
	c := NewStepController(ring, physics.NewForceModel(p), integrators.NewSymplecticEuler(p.Friction), 20, log.New(io.Discard))

	// The pointer rests on particle 0's canonical position, which the ring
	// returns to after every reset.
	u := dynamo.Control{Dragging: true, Target: ring.Positions()[0]}
	if r := c.Advance(0, u); !r.Reset {
		t.Fatal("expected the first frame to be discarded")
	}
	var last dynamo.FrameReport
	for frame := 1; frame < 10; frame++ {
		last = c.Advance(frame, u)
		if last.Reset {
			t.Fatalf("frame %d reset again while the same target was held", frame)
		}
	}
	if c.Resets() != 1 {
		t.Errorf("resets = %d, want 1", c.Resets())
	}
	if i := dynamo.FirstNonFinite(last.Vertices); i >= 0 {
		t.Errorf("vertex %d not finite", i)
	}
	if last.Control.SkipCoincident {
		t.Error("report should carry the control as given")
	}

	// Moving the target clears the hold: a fresh coincidence resets again.
	u.Target = ring.Positions()[3]
	if r := c.Advance(10, u); !r.Reset {
		t.Error("expected a new coincident target to reset")
	}
}

func TestSettingsValidate(t *testing.T) {
	if err := DefaultSettings().Validate(); err != nil {
		t.Fatal(err)
	}
	s := DefaultSettings()
	s.SubSteps = 0
	if err := s.Validate(); !errors.Is(err, dynamo.ErrInvalidParams) {
		t.Errorf("substeps 0: %v", err)
	}
	s = DefaultSettings()
	s.Tuning.Friction = 0
	if err := s.Validate(); !errors.Is(err, dynamo.ErrInvalidParams) {
		t.Errorf("friction 0: %v", err)
	}

	tests := []struct {
		name   string
		modify func(*Settings)
	}{
		{"one vertex", func(s *Settings) { s.Vertices = 1 }},
		{"no vertices", func(s *Settings) { s.Vertices = 0 }},
		{"zero radius", func(s *Settings) { s.Radius = 0 }},
		{"nan radius", func(s *Settings) { s.Radius = math.NaN() }},
		{"infinite radius", func(s *Settings) { s.Radius = math.Inf(1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.modify(&s)
			var pe *dynamo.ParamError
			if err := s.Validate(); !errors.As(err, &pe) || !errors.Is(err, dynamo.ErrInvalidParams) {
				t.Errorf("expected param error, got %v", err)
			}
		})
	}
}

func TestStateString(t *testing.T) {
	if Running.String() != "running" || Resetting.String() != "resetting" {
		t.Error("state names")
	}
	if State(9).String() != "State(9)" {
		t.Error(State(9).String())
	}
}

func BenchmarkAdvanceFrame(b *testing.B) {
	s, err := NewSession(DefaultSettings())
	if err != nil {
		b.Fatal(err)
	}
	defer s.Teardown()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := s.AdvanceFrame(); err != nil {
			b.Fatal(err)
		}
	}
}
