package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/charmbracelet/log"
	"github.com/san-kum/blobsim/internal/config"
	"github.com/san-kum/blobsim/internal/experiment"
	"gonum.org/v1/gonum/floats"
)

// Trial is one point of the grid.
type Trial struct {
	Params map[string]float64
	Value  float64
	Resets int
}

// GridSearch runs a scene for every combination of tuning values and keeps
// the one with the smallest metric. Runs that reset are never best.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	logger     *log.Logger
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) == 0 || len(params) != len(ranges) {
		return nil, fmt.Errorf("need one range per param, got %d params and %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("empty range for %s", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

func (g *GridSearch) WithLogger(l *log.Logger) *GridSearch {
	g.logger = l
	return g
}

// Span returns n evenly spaced values in [lo, hi].
func Span(lo, hi float64, n int) []float64 {
	if n < 2 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// Search returns the best trial and every trial in grid order.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, scene, metricName string) (Trial, []Trial, error) {
	if base == nil {
		base = config.DefaultConfig()
	}
	best := Trial{Value: math.Inf(1)}
	var trials []Trial

	err := g.searchRecursive(ctx, 0, make(map[string]float64), func(current map[string]float64) error {
		cfg := *base
		for name, v := range current {
			if err := cfg.Tuning.SetParam(name, v); err != nil {
				return err
			}
		}

		out, err := experiment.Run(ctx, experiment.Config{Blob: &cfg, Scene: scene})
		if err != nil {
			return err
		}
		val, ok := out.Result.Metrics[metricName]
		if !ok {
			return fmt.Errorf("unknown metric: %s", metricName)
		}

		t := Trial{Params: copyParams(current), Value: val, Resets: out.Result.Resets}
		trials = append(trials, t)
		if g.logger != nil {
			g.logger.Debug("trial", "params", t.Params, metricName, val, "resets", t.Resets)
		}
		if t.Resets == 0 && val < best.Value {
			best = t
		}
		return nil
	})
	if err != nil {
		return Trial{}, trials, err
	}
	if best.Params == nil {
		return Trial{}, trials, fmt.Errorf("every trial reset")
	}
	return best, trials, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	visit func(map[string]float64) error,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		return visit(current)
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := copyParams(current)
		next[paramName] = val
		if err := g.searchRecursive(ctx, depth+1, next, visit); err != nil {
			return err
		}
	}
	return nil
}

func copyParams(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
