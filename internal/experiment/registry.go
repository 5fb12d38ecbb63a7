package experiment

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/blobsim/internal/control"
	"github.com/san-kum/blobsim/internal/dynamo"
	"github.com/san-kum/blobsim/internal/integrators"
	"github.com/san-kum/blobsim/internal/metrics"
	"github.com/san-kum/blobsim/internal/physics"
	"github.com/san-kum/blobsim/internal/sim"
	"golang.org/x/exp/rand"
)

// Scene builds a frame driver for a given radius and seed.
type Scene func(radius float64, seed uint64) sim.Driver

type Registry struct {
	integrators map[string]func(physics.Params) dynamo.Integrator
	scenes      map[string]Scene
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func(physics.Params) dynamo.Integrator),
		scenes:      make(map[string]Scene),
	}

	r.integrators["euler"] = func(p physics.Params) dynamo.Integrator {
		return &integrators.SymplecticEuler{Friction: p.Friction, VertexDecay: p.VertexDecay, BodyDecay: p.BodyDecay}
	}
	r.integrators["verlet"] = func(p physics.Params) dynamo.Integrator {
		return integrators.NewVerlet(p.Friction)
	}

	r.scenes["drop"] = func(float64, uint64) sim.Driver { return nil }
	r.scenes["drag"] = dragScene
	r.scenes["nudge"] = nudgeScene
	r.scenes["tilt"] = tiltScene
	r.scenes["poke"] = pokeScene
	r.scenes["jitter"] = jitterScene
	r.scenes["balance"] = balanceScene

	return r
}

func (r *Registry) GetIntegrator(name string, p physics.Params) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(p), nil
}

func (r *Registry) GetScene(name string) (Scene, error) {
	fn, ok := r.scenes[name]
	if !ok {
		return nil, fmt.Errorf("unknown scene: %s", name)
	}
	return fn, nil
}

func (r *Registry) ListIntegrators() []string { return sortedKeys(r.integrators) }
func (r *Registry) ListScenes() []string      { return sortedKeys(r.scenes) }

func (r *Registry) DefaultMetrics() []dynamo.Metric {
	return metrics.Standard()
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// dragScene grabs the right edge, pulls it out and lets go.
func dragScene(radius float64, _ uint64) sim.Driver {
	return func(s *sim.Session, frame int) error {
		switch {
		case frame == 30:
			return s.SetDrag(true, radius*1.1, 0)
		case frame > 30 && frame < 90:
			return s.SetDrag(true, radius*(1.1+float64(frame-30)/30), 0)
		case frame == 90:
			return s.SetDrag(false, 0, 0)
		}
		return nil
	}
}

// nudgeScene holds the right key for a second, then up.
func nudgeScene(float64, uint64) sim.Driver {
	return func(s *sim.Session, frame int) error {
		switch frame {
		case 20:
			return s.SetDirectionalInput(false, true, false, false)
		case 80:
			return s.SetDirectionalInput(false, false, true, false)
		case 110:
			return s.SetDirectionalInput(false, false, false, false)
		}
		return nil
	}
}

// tiltScene rocks the device left and right through the orientation mapping.
func tiltScene(float64, uint64) sim.Driver {
	return func(s *sim.Session, frame int) error {
		beta := 60 + 20*math.Sin(float64(frame)/40)
		gamma := 45 * math.Sin(float64(frame)/25)
		g := control.GravityFromOrientation(30, beta, gamma, control.MappingPitch, control.DefaultTiltScale)
		return s.SetGravity(g.X, g.Y)
	}
}

// pokeScene drops the drag target exactly onto a particle every 50 frames.
func pokeScene(float64, uint64) sim.Driver {
	return func(s *sim.Session, frame int) error {
		switch frame % 50 {
		case 25:
			vs, err := s.Vertices()
			if err != nil {
				return err
			}
			return s.SetDrag(true, vs[0].X, vs[0].Y)
		case 26:
			return s.SetDrag(false, 0, 0)
		}
		return nil
	}
}

// jitterScene moves a seeded random drag target around the body.
func jitterScene(radius float64, seed uint64) sim.Driver {
	rng := rand.New(rand.NewSource(seed))
	return func(s *sim.Session, frame int) error {
		if frame%15 != 0 {
			return nil
		}
		if rng.Intn(3) == 0 {
			return s.SetDrag(false, 0, 0)
		}
		angle := rng.Float64() * 2 * math.Pi
		dist := radius * (0.5 + rng.Float64())
		return s.SetDrag(true, dist*math.Cos(angle), dist*math.Sin(angle))
	}
}

// balanceScene blows the blob sideways, then tilts gravity with a PID loop to
// bring the centroid back over the origin.
func balanceScene(radius float64, _ uint64) sim.Driver {
	pid := control.NewPID(2/radius, 0, 8/radius, 0)
	pid.Limit = 1
	return func(s *sim.Session, frame int) error {
		if frame < 60 {
			return s.SetGravity(1, 1)
		}
		c, err := s.Centroid()
		if err != nil {
			return err
		}
		return s.SetGravity(pid.Update(c.X, 1), 1)
	}
}
