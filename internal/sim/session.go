package sim

import (
	"io"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/san-kum/blobsim/internal/compute"
	"github.com/san-kum/blobsim/internal/control"
	"github.com/san-kum/blobsim/internal/dynamo"
	"github.com/san-kum/blobsim/internal/integrators"
	"github.com/san-kum/blobsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

type options struct {
	logger  *log.Logger
	integ   dynamo.Integrator
	backend compute.Backend
}

type Option func(*options)

func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithIntegrator(i dynamo.Integrator) Option {
	return func(o *options) { o.integ = i }
}

func WithBackend(b compute.Backend) Option {
	return func(o *options) { o.backend = b }
}

// Session is the host-facing boundary around one blob. Input setters only
// touch the shared Inputs and never wait for a frame; AdvanceFrame picks them
// up at the start of the next frame.
type Session struct {
	settings Settings
	inputs   *control.Inputs
	logger   *log.Logger

	mu        sync.Mutex
	ring      *physics.Ring
	forces    *physics.ForceModel
	integ     dynamo.Integrator
	ctrl      *StepController
	frame     int
	centroid  r2.Vec
	pointer   bool
	last      dynamo.FrameReport
	metrics   []dynamo.Metric
	observers []dynamo.Observer

	paused atomic.Bool
	torn   atomic.Bool
}

// NewSession builds the ring, lays it out on its circle and wires the force
// model and integrator from s.
func NewSession(s Settings, opts ...Option) (*Session, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	ring, err := physics.NewRing(s.Vertices, s.Radius)
	if err != nil {
		return nil, err
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}
	if o.integ == nil {
		o.integ = &integrators.SymplecticEuler{
			Friction:    s.Tuning.Friction,
			VertexDecay: s.Tuning.VertexDecay,
			BodyDecay:   s.Tuning.BodyDecay,
		}
	}
	if o.backend == nil {
		o.backend = compute.NewCPUBackend(s.Tuning.Workers, s.Tuning.ParallelAt)
	}

	forces := physics.NewForceModel(s.Tuning).WithBackend(o.backend)
	ring.Reset()

	sess := &Session{
		settings: s,
		inputs:   control.NewInputs(),
		logger:   o.logger,
		ring:     ring,
		forces:   forces,
		integ:    o.integ,
		ctrl:     NewStepController(ring, forces, o.integ, s.SubSteps, o.logger),
	}
	sess.last = dynamo.FrameReport{Vertices: ring.Vertices()}
	return sess, nil
}

func (s *Session) Settings() Settings { return s.settings }

func (s *Session) SetGravity(gx, gy float64) error {
	if s.torn.Load() {
		return dynamo.ErrTornDown
	}
	s.inputs.SetGravity(gx, gy)
	return nil
}

// SetDrag sets the pointer drag. Anchors are recorded when the next frame
// first sees the drag active and reset when it first sees it released.
func (s *Session) SetDrag(active bool, x, y float64) error {
	if s.torn.Load() {
		return dynamo.ErrTornDown
	}
	s.inputs.SetDrag(active, x, y)
	return nil
}

func (s *Session) SetDirectionalInput(left, right, up, down bool) error {
	if s.torn.Load() {
		return dynamo.ErrTornDown
	}
	s.inputs.SetDirectional(control.Keys{Left: left, Right: right, Up: up, Down: down})
	return nil
}

// SetParam retunes one force constant between frames. Friction is forwarded
// to the integrator when it supports it.
func (s *Session) SetParam(name string, value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.torn.Load() {
		return dynamo.ErrTornDown
	}
	if err := s.forces.SetParam(name, value); err != nil {
		return err
	}
	if f, ok := s.integ.(interface{ SetFriction(float64) }); ok && name == "friction" {
		f.SetFriction(value)
	}
	s.logger.Debug("param set", "name", name, "value", value)
	return nil
}

// Params returns the current force constants.
func (s *Session) Params() physics.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forces.Params()
}

func (s *Session) SetPaused(p bool) { s.paused.Store(p) }
func (s *Session) Paused() bool     { return s.paused.Load() }

// AdvanceFrame runs one frame unless the session is paused.
func (s *Session) AdvanceFrame() error {
	if s.torn.Load() {
		return dynamo.ErrTornDown
	}
	if s.paused.Load() {
		return nil
	}
	return s.advance()
}

// Step runs exactly one frame, paused or not.
func (s *Session) Step() error {
	if s.torn.Load() {
		return dynamo.ErrTornDown
	}
	return s.advance()
}

func (s *Session) advance() error {
	s.mu.Lock()
	if s.torn.Load() {
		s.mu.Unlock()
		return dynamo.ErrTornDown
	}

	snap := s.inputs.Snapshot()
	switch {
	case snap.Pointer && !s.pointer:
		s.ring.RecordAnchors(snap.Target)
	case !snap.Pointer && s.pointer:
		s.ring.ResetAnchors()
	}
	s.pointer = snap.Pointer

	u := control.Resolve(snap, s.centroid, s.ring.Radius())
	report := s.ctrl.Advance(s.frame, u)
	s.frame++
	s.centroid = report.Centroid
	s.last = report

	metrics := s.metrics
	observers := s.observers
	s.mu.Unlock()

	for _, m := range metrics {
		m.Observe(report)
	}
	for _, o := range observers {
		o.OnFrame(report)
	}
	return nil
}

// Vertices returns a copy of the particle positions in ring order.
func (s *Session) Vertices() ([]r2.Vec, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.torn.Load() {
		return nil, dynamo.ErrTornDown
	}
	return s.ring.Vertices(), nil
}

func (s *Session) Centroid() (r2.Vec, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.torn.Load() {
		return r2.Vec{}, dynamo.ErrTornDown
	}
	return s.ring.Centroid(), nil
}

func (s *Session) Anchors() ([]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.torn.Load() {
		return nil, dynamo.ErrTornDown
	}
	out := make([]float64, s.ring.Len())
	copy(out, s.ring.Anchors())
	return out, nil
}

// Snapshot returns the report of the last completed frame.
func (s *Session) Snapshot() (dynamo.FrameReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.torn.Load() {
		return dynamo.FrameReport{}, dynamo.ErrTornDown
	}
	r := s.last
	r.Vertices = append([]r2.Vec(nil), r.Vertices...)
	return r, nil
}

// Reset puts the ring back on its circle without counting a divergence.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.torn.Load() {
		return dynamo.ErrTornDown
	}
	s.ring.Reset()
	s.pointer = false
	s.centroid = r2.Vec{}
	s.last = dynamo.FrameReport{Frame: s.frame, Vertices: s.ring.Vertices(), Reset: true}
	return nil
}

func (s *Session) Frame() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}

func (s *Session) Resets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Resets()
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.State()
}

func (s *Session) AddMetric(m dynamo.Metric) {
	s.mu.Lock()
	s.metrics = append(s.metrics, m)
	s.mu.Unlock()
}

func (s *Session) AddObserver(o dynamo.Observer) {
	s.mu.Lock()
	s.observers = append(s.observers, o)
	s.mu.Unlock()
}

// Teardown releases the ring. Later calls are no-ops; every other method
// then reports ErrTornDown.
func (s *Session) Teardown() {
	if !s.torn.CompareAndSwap(false, true) {
		return
	}
	s.mu.Lock()
	s.ring.Release()
	frames := s.frame
	s.mu.Unlock()
	s.logger.Debug("session torn down", "frames", frames)
}
