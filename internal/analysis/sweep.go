package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/san-kum/blobsim/internal/dynamo"
	"github.com/san-kum/blobsim/internal/sim"
)

// SweepPoint is the outcome of one parameter value.
type SweepPoint struct {
	Param  float64
	Value  float64
	Resets int
}

// Sweep runs a fresh session for each of steps values of the named tuning
// parameter in [lo, hi] and records what metric reports after frames frames.
func Sweep(
	ctx context.Context,
	base sim.Settings,
	param string,
	lo, hi float64,
	steps int,
	frames int,
	drive sim.Driver,
	newMetric func() dynamo.Metric,
) ([]SweepPoint, error) {
	if steps < 2 {
		steps = 2
	}
	step := (hi - lo) / float64(steps-1)

	results := make([]SweepPoint, 0, steps)
	for i := 0; i < steps; i++ {
		value := lo + float64(i)*step

		settings := base
		if err := settings.Tuning.SetParam(param, value); err != nil {
			return results, fmt.Errorf("sweep %s=%g: %w", param, value, err)
		}

		sess, err := sim.NewSession(settings)
		if err != nil {
			return results, err
		}
		m := newMetric()
		sess.AddMetric(m)

		res, err := sim.Run(ctx, sess, sim.RunConfig{Frames: frames, Drive: drive})
		sess.Teardown()
		if err != nil {
			return results, err
		}

		results = append(results, SweepPoint{Param: value, Value: m.Value(), Resets: res.Resets})
	}
	return results, nil
}

// SweepToASCII draws value against parameter, one column per point.
func SweepToASCII(data []SweepPoint, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minVal, maxVal := data[0].Value, data[0].Value
	for _, p := range data {
		minVal = min(minVal, p.Value)
		maxVal = max(maxVal, p.Value)
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for i, p := range data {
		col := i * width / len(data)
		row := height - 1 - int((p.Value-minVal)/(maxVal-minVal)*float64(height-1))
		mark := '•'
		if p.Resets > 0 {
			mark = 'x'
		}
		canvas[row][col] = mark
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
