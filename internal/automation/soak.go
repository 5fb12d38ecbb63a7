package automation

import (
	"context"
	"math"

	"github.com/charmbracelet/log"
	"github.com/san-kum/blobsim/internal/config"
	"github.com/san-kum/blobsim/internal/dynamo"
	"github.com/san-kum/blobsim/internal/experiment"
	"github.com/san-kum/blobsim/internal/sim"
	"golang.org/x/exp/rand"
)

// SoakConfig drives randomized input at a blob for many trials.
type SoakConfig struct {
	Blob     *config.Config
	Trials   int
	Frames   int
	Seed     uint64
	Interval int
}

// SoakResult is one randomized trial.
type SoakResult struct {
	Trial     int
	Seed      uint64
	Resets    int
	Finite    bool
	Stability float64
}

// RandomInput changes gravity, drag and keys every interval frames from rng.
// Drag targets are kept off the particles so only genuine blow-ups reset.
func RandomInput(rng *rand.Rand, radius float64, interval int) sim.Driver {
	if interval < 1 {
		interval = 1
	}
	return func(s *sim.Session, frame int) error {
		if frame%interval != 0 {
			return nil
		}
		switch rng.Intn(4) {
		case 0:
			angle := rng.Float64() * 2 * math.Pi
			mag := rng.Float64() * 3
			return s.SetGravity(mag*math.Cos(angle), mag*math.Sin(angle))
		case 1:
			c, err := s.Centroid()
			if err != nil {
				return err
			}
			angle := rng.Float64() * 2 * math.Pi
			dist := radius * (0.3 + 1.2*rng.Float64())
			return s.SetDrag(true, c.X+dist*math.Cos(angle), c.Y+dist*math.Sin(angle))
		case 2:
			return s.SetDrag(false, 0, 0)
		default:
			return s.SetDirectionalInput(rng.Intn(2) == 0, rng.Intn(2) == 0, rng.Intn(2) == 0, rng.Intn(2) == 0)
		}
	}
}

// Soak runs cfg.Trials independent randomized trials. Each trial seeds its own
// generator from cfg.Seed plus the trial index.
func Soak(ctx context.Context, cfg SoakConfig, logger *log.Logger) ([]SoakResult, error) {
	blob := cfg.Blob
	if blob == nil {
		blob = config.DefaultConfig()
	}
	frames := cfg.Frames
	if frames <= 0 {
		frames = blob.Frames
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = 20
	}

	results := make([]SoakResult, 0, cfg.Trials)
	for trial := 0; trial < cfg.Trials; trial++ {
		seed := cfg.Seed + uint64(trial)
		trialBlob := *blob
		trialBlob.Frames = frames

		out, err := experiment.Run(ctx, experiment.Config{
			Blob:  &trialBlob,
			Scene: "soak",
			Drive: RandomInput(rand.New(rand.NewSource(seed)), blob.Radius, interval),
		})
		if err != nil {
			return results, err
		}

		results = append(results, SoakResult{
			Trial:     trial,
			Seed:      seed,
			Resets:    out.Result.Resets,
			Finite:    dynamo.FirstNonFinite(out.Result.Final) < 0,
			Stability: out.Result.Metrics["stability"],
		})

		if logger != nil && (trial+1)%10 == 0 {
			logger.Info("soak", "trials", trial+1, "of", cfg.Trials)
		}
	}
	return results, nil
}

// SoakStats counts trials that finished finite without any reset.
func SoakStats(results []SoakResult) (clean int, reset int) {
	for _, r := range results {
		if r.Finite && r.Resets == 0 {
			clean++
		} else {
			reset++
		}
	}
	return
}
