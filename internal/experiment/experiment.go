package experiment

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/san-kum/blobsim/internal/config"
	"github.com/san-kum/blobsim/internal/sim"
	"github.com/san-kum/blobsim/internal/storage"
)

// Config selects the blob configuration and the input scene. A non-nil Drive
// takes precedence over the named scene.
type Config struct {
	Blob        *config.Config
	Scene       string
	Drive       sim.Driver
	RecordEvery int
	Logger      *log.Logger
}

// Outcome is a finished headless run with its recorded frames.
type Outcome struct {
	Result *sim.Result
	Frames []storage.Frame
	Meta   storage.RunMetadata
}

type Experiment struct {
	cfg      Config
	registry *Registry
	session  *sim.Session
	recorder *storage.Recorder
	driver   sim.Driver
}

func New(cfg Config) *Experiment {
	if cfg.Blob == nil {
		cfg.Blob = config.DefaultConfig()
	}
	if cfg.Scene == "" {
		cfg.Scene = "drop"
	}
	return &Experiment{cfg: cfg, registry: NewRegistry()}
}

func (e *Experiment) Setup() error {
	blob := e.cfg.Blob
	if err := blob.Validate(); err != nil {
		return err
	}

	integ, err := e.registry.GetIntegrator(blob.Integrator, blob.Tuning)
	if err != nil {
		return err
	}
	drive := e.cfg.Drive
	if drive == nil {
		scene, err := e.registry.GetScene(e.cfg.Scene)
		if err != nil {
			return err
		}
		drive = scene(blob.Radius, uint64(blob.Seed))
	}

	opts := []sim.Option{sim.WithIntegrator(integ)}
	if e.cfg.Logger != nil {
		opts = append(opts, sim.WithLogger(e.cfg.Logger))
	}
	sess, err := sim.NewSession(blob.SessionSettings(), opts...)
	if err != nil {
		return err
	}

	for _, m := range e.registry.DefaultMetrics() {
		sess.AddMetric(m)
	}
	e.recorder = storage.NewRecorder(e.cfg.RecordEvery)
	sess.AddObserver(e.recorder)

	e.session = sess
	e.driver = drive
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*Outcome, error) {
	if e.session == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	defer e.session.Teardown()

	blob := e.cfg.Blob
	res, err := sim.Run(ctx, e.session, sim.RunConfig{Frames: blob.Frames, Drive: e.driver})
	if err != nil {
		return nil, err
	}

	return &Outcome{
		Result: res,
		Frames: e.recorder.Frames(),
		Meta: storage.RunMetadata{
			Name:       e.cfg.Scene,
			Seed:       blob.Seed,
			Vertices:   blob.Vertices,
			Radius:     blob.Radius,
			SubSteps:   blob.SubSteps,
			Integrator: blob.Integrator,
			Frames:     res.Frames,
			Resets:     res.Resets,
			Tuning:     blob.Tuning,
			Metrics:    res.Metrics,
		},
	}, nil
}

// GetSession returns the underlying session for adding observers.
func (e *Experiment) GetSession() *sim.Session {
	return e.session
}

// Run builds, runs and tears down one experiment.
func Run(ctx context.Context, cfg Config) (*Outcome, error) {
	e := New(cfg)
	if err := e.Setup(); err != nil {
		return nil, err
	}
	return e.Run(ctx)
}
