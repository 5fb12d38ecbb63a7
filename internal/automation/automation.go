package automation

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/blobsim/internal/config"
	"github.com/san-kum/blobsim/internal/control"
	"github.com/san-kum/blobsim/internal/experiment"
	"github.com/san-kum/blobsim/internal/sim"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted input sequence replayed against one blob.
type Scenario struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Preset      string  `yaml:"preset"`
	Integrator  string  `yaml:"integrator"`
	Frames      int     `yaml:"frames"`
	Events      []Event `yaml:"events"`
}

// Event applies its non-nil inputs before the given frame is advanced.
type Event struct {
	Frame   int                `yaml:"frame"`
	Gravity *[2]float64        `yaml:"gravity,omitempty"`
	Drag    *DragEvent         `yaml:"drag,omitempty"`
	Keys    *KeysEvent         `yaml:"keys,omitempty"`
	Tilt    *TiltEvent         `yaml:"tilt,omitempty"`
	Params  map[string]float64 `yaml:"params,omitempty"`
}

type DragEvent struct {
	Active bool    `yaml:"active"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
}

type KeysEvent struct {
	Left  bool `yaml:"left"`
	Right bool `yaml:"right"`
	Up    bool `yaml:"up"`
	Down  bool `yaml:"down"`
}

// TiltEvent is a device orientation in degrees.
type TiltEvent struct {
	Alpha   float64 `yaml:"alpha"`
	Beta    float64 `yaml:"beta"`
	Gamma   float64 `yaml:"gamma"`
	Mapping string  `yaml:"mapping"`
	Scale   float64 `yaml:"scale"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if err := scenario.validate(); err != nil {
		return nil, err
	}
	return &scenario, nil
}

func (sc *Scenario) validate() error {
	if sc.Frames < 0 {
		return fmt.Errorf("scenario %q: frames must be non-negative", sc.Name)
	}
	for i, ev := range sc.Events {
		if ev.Frame < 0 {
			return fmt.Errorf("scenario %q: event %d: negative frame", sc.Name, i)
		}
		if ev.Tilt != nil && ev.Tilt.Mapping != "" {
			if _, err := control.ParseMapping(ev.Tilt.Mapping); err != nil {
				return fmt.Errorf("scenario %q: event %d: %w", sc.Name, i, err)
			}
		}
	}
	return nil
}

// Driver replays the events in frame order. Events sharing a frame apply in
// file order.
func (sc *Scenario) Driver() sim.Driver {
	events := make([]Event, len(sc.Events))
	copy(events, sc.Events)
	sort.SliceStable(events, func(i, j int) bool { return events[i].Frame < events[j].Frame })

	next := 0
	return func(s *sim.Session, frame int) error {
		for next < len(events) && events[next].Frame <= frame {
			if err := apply(s, events[next]); err != nil {
				return fmt.Errorf("event at frame %d: %w", events[next].Frame, err)
			}
			next++
		}
		return nil
	}
}

func apply(s *sim.Session, ev Event) error {
	if ev.Gravity != nil {
		if err := s.SetGravity(ev.Gravity[0], ev.Gravity[1]); err != nil {
			return err
		}
	}
	if ev.Tilt != nil {
		m := control.MappingPitch
		if ev.Tilt.Mapping != "" {
			var err error
			if m, err = control.ParseMapping(ev.Tilt.Mapping); err != nil {
				return err
			}
		}
		scale := ev.Tilt.Scale
		if scale == 0 {
			scale = control.DefaultTiltScale
		}
		g := control.GravityFromOrientation(ev.Tilt.Alpha, ev.Tilt.Beta, ev.Tilt.Gamma, m, scale)
		if err := s.SetGravity(g.X, g.Y); err != nil {
			return err
		}
	}
	if ev.Drag != nil {
		if err := s.SetDrag(ev.Drag.Active, ev.Drag.X, ev.Drag.Y); err != nil {
			return err
		}
	}
	if ev.Keys != nil {
		k := ev.Keys
		if err := s.SetDirectionalInput(k.Left, k.Right, k.Up, k.Down); err != nil {
			return err
		}
	}
	for name, v := range ev.Params {
		if err := s.SetParam(name, v); err != nil {
			return err
		}
	}
	return nil
}

// Blob resolves the scenario's preset and overrides on top of base.
func (sc *Scenario) Blob(base *config.Config) (*config.Config, error) {
	cfg := *base
	if sc.Preset != "" {
		p := config.GetPreset(sc.Preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s", sc.Preset)
		}
		cfg = *p
		cfg.Seed = base.Seed
		cfg.LogLevel = base.LogLevel
	}
	if sc.Integrator != "" {
		cfg.Integrator = sc.Integrator
	}
	if sc.Frames > 0 {
		cfg.Frames = sc.Frames
	}
	return &cfg, nil
}

// RunScenario replays the scenario headlessly on a fresh session.
func RunScenario(ctx context.Context, sc *Scenario, base *config.Config, logger *log.Logger) (*experiment.Outcome, error) {
	blob, err := sc.Blob(base)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Info("running scenario", "name", sc.Name, "frames", blob.Frames, "events", len(sc.Events))
	}

	out, err := experiment.Run(ctx, experiment.Config{
		Blob:   blob,
		Scene:  sc.Name,
		Drive:  sc.Driver(),
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	return out, nil
}

// RunScenarios runs each scenario in turn, stopping at the first failure.
func RunScenarios(ctx context.Context, scenarios []*Scenario, base *config.Config, logger *log.Logger) ([]*experiment.Outcome, error) {
	results := make([]*experiment.Outcome, 0, len(scenarios))
	for i, sc := range scenarios {
		if logger != nil {
			logger.Info("scenario", "step", fmt.Sprintf("%d/%d", i+1, len(scenarios)), "name", sc.Name)
		}
		start := time.Now()
		out, err := RunScenario(ctx, sc, base, logger)
		if err != nil {
			return results, err
		}
		if logger != nil {
			logger.Debug("scenario done", "name", sc.Name, "resets", out.Result.Resets, "elapsed", time.Since(start))
		}
		results = append(results, out)
	}
	return results, nil
}
