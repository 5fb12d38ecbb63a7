package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/san-kum/blobsim/internal/dynamo"
	"github.com/san-kum/blobsim/internal/physics"
	"github.com/san-kum/blobsim/internal/sim"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFrames     = 600
	DefaultFPS        = 60
	DefaultTiltScale  = 3.0
	DefaultIntegrator = "euler"
	DefaultLogLevel   = "info"
)

// Environment overrides.
const (
	EnvVertices = "BLOBSIM_VERTICES"
	EnvRadius   = "BLOBSIM_RADIUS"
	EnvSubSteps = "BLOBSIM_SUBSTEPS"
	EnvFloor    = "BLOBSIM_FLOOR"
	EnvLogLevel = "BLOBSIM_LOG_LEVEL"
)

type Config struct {
	Vertices    int            `yaml:"vertices"`
	Radius      float64        `yaml:"radius"`
	SubSteps    int            `yaml:"substeps"`
	Integrator  string         `yaml:"integrator"`
	Frames      int            `yaml:"frames"`
	FPS         int            `yaml:"fps"`
	Seed        int64          `yaml:"seed"`
	TiltMapping string         `yaml:"tilt_mapping"`
	TiltScale   float64        `yaml:"tilt_scale"`
	LogLevel    string         `yaml:"log_level"`
	Tuning      physics.Params `yaml:"tuning"`
}

func DefaultConfig() *Config {
	return &Config{
		Vertices:    sim.DefaultVertices,
		Radius:      sim.DefaultRadius,
		SubSteps:    sim.DefaultSubSteps,
		Integrator:  DefaultIntegrator,
		Frames:      DefaultFrames,
		FPS:         DefaultFPS,
		TiltMapping: "pitch",
		TiltScale:   DefaultTiltScale,
		LogLevel:    DefaultLogLevel,
		Tuning:      physics.DefaultParams(),
	}
}

// Load reads a YAML file over base, or over the defaults when base is nil.
func Load(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if base != nil {
		c := *base
		cfg = &c
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadEnv applies BLOBSIM_* overrides from the process environment and, if
// it exists, the dotenv file at path. Process variables win over the file.
func (c *Config) LoadEnv(path string) error {
	vals := map[string]string{}
	if path != "" {
		file, err := godotenv.Read(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("read %s: %w", path, err)
		}
		for k, v := range file {
			vals[k] = v
		}
	}
	for _, k := range []string{EnvVertices, EnvRadius, EnvSubSteps, EnvFloor, EnvLogLevel} {
		if v, ok := os.LookupEnv(k); ok {
			vals[k] = v
		}
	}

	if v, ok := vals[EnvVertices]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvVertices, err)
		}
		c.Vertices = n
	}
	if v, ok := vals[EnvSubSteps]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSubSteps, err)
		}
		c.SubSteps = n
	}
	if v, ok := vals[EnvRadius]; ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRadius, err)
		}
		c.Radius = f
	}
	if v, ok := vals[EnvFloor]; ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvFloor, err)
		}
		c.Tuning.HalfHeight = f
	}
	if v, ok := vals[EnvLogLevel]; ok {
		c.LogLevel = v
	}
	return nil
}

// Validate checks everything a session needs before one is built.
func (c *Config) Validate() error {
	if c.FPS <= 0 {
		return &dynamo.ParamError{Name: "fps", Value: float64(c.FPS), Reason: "must be positive"}
	}
	return c.SessionSettings().Validate()
}

// SessionSettings is the part of the config a session is built from.
func (c *Config) SessionSettings() sim.Settings {
	return sim.Settings{
		Vertices: c.Vertices,
		Radius:   c.Radius,
		SubSteps: c.SubSteps,
		Tuning:   c.Tuning,
	}
}
