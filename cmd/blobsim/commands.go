package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/blobsim/internal/analysis"
	"github.com/san-kum/blobsim/internal/automation"
	"github.com/san-kum/blobsim/internal/compute"
	"github.com/san-kum/blobsim/internal/config"
	"github.com/san-kum/blobsim/internal/control"
	"github.com/san-kum/blobsim/internal/dynamo"
	"github.com/san-kum/blobsim/internal/experiment"
	"github.com/san-kum/blobsim/internal/export"
	"github.com/san-kum/blobsim/internal/host"
	"github.com/san-kum/blobsim/internal/metrics"
	"github.com/san-kum/blobsim/internal/optim"
	"github.com/san-kum/blobsim/internal/sim"
	"github.com/san-kum/blobsim/internal/storage"
	"github.com/san-kum/blobsim/internal/viz"
	"github.com/spf13/cobra"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r2"
)

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	integ, err := experiment.NewRegistry().GetIntegrator(cfg.Integrator, cfg.Tuning)
	if err != nil {
		return err
	}
	sess, err := sim.NewSession(cfg.SessionSettings(), sim.WithIntegrator(integ))
	if err != nil {
		return err
	}
	name := preset
	if name == "" {
		name = "blob"
	}
	return viz.Run(sess, name)
}

func runScene(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	start := time.Now()
	var out *experiment.Outcome
	if scenario != "" {
		sc, err := automation.LoadScenario(scenario)
		if err != nil {
			return err
		}
		out, err = automation.RunScenario(context.Background(), sc, cfg, logger)
		if err != nil {
			return err
		}
	} else {
		scene := "drop"
		if len(args) > 0 {
			scene = args[0]
		}
		logger.Info("running scene", "scene", scene, "frames", cfg.Frames, "vertices", cfg.Vertices)
		out, err = experiment.Run(context.Background(), experiment.Config{
			Blob:        cfg,
			Scene:       scene,
			RecordEvery: recordEvery,
			Logger:      logger,
		})
		if err != nil {
			return err
		}
	}
	elapsed := time.Since(start)

	runID, err := st.Save(out.Meta, out.Frames)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("frames: %d (recorded %d)\n", out.Result.Frames, len(out.Frames))
	fmt.Printf("resets: %d\n", out.Result.Resets)
	fmt.Println("\nmetrics:")
	for name, val := range out.Result.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}
	return nil
}

func runSoak(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	trials, _ := cmd.Flags().GetInt("trials")
	interval, _ := cmd.Flags().GetInt("interval")
	parallel, _ := cmd.Flags().GetBool("parallel")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRIAL\tSEED\tRESETS\tSTABILITY")

	if parallel {
		// Integrators only hold tuning constants, so runs can share one.
		integ, err := experiment.NewRegistry().GetIntegrator(cfg.Integrator, cfg.Tuning)
		if err != nil {
			return err
		}
		ens := sim.NewEnsemble(cfg.SessionSettings(), trials, cfg.Seed, sim.WithIntegrator(integ)).
			WithMetrics(func() []dynamo.Metric { return []dynamo.Metric{metrics.NewStability()} })
		results, err := ens.Run(ctx, cfg.Frames, func(s int64) sim.Driver {
			return automation.RandomInput(rand.New(rand.NewSource(uint64(s))), cfg.Radius, interval)
		})
		if err != nil {
			return err
		}
		for i, r := range results {
			fmt.Fprintf(w, "%d\t%d\t%d\t%.4f\n", i, cfg.Seed+int64(i), r.Resets, r.Metrics["stability"])
		}
		return w.Flush()
	}

	results, err := automation.Soak(ctx, automation.SoakConfig{
		Blob:     cfg,
		Trials:   trials,
		Seed:     uint64(cfg.Seed),
		Interval: interval,
	}, logger)
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%d\t%.4f\n", r.Trial, r.Seed, r.Resets, r.Stability)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	clean, reset := automation.SoakStats(results)
	fmt.Printf("\nclean: %d  reset: %d\n", clean, reset)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	addr, _ := cmd.Flags().GetString("addr")

	mapping, err := control.ParseMapping(cfg.TiltMapping)
	if err != nil {
		return err
	}
	srv, err := host.NewServer(cfg.SessionSettings(),
		host.WithLogger(logger),
		host.WithFPS(cfg.FPS),
		host.WithTilt(mapping, cfg.TiltScale),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return srv.ListenAndServe(ctx, addr)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tVERTICES\tSUBSTEPS\tINTEG\tFRAMES\tRESETS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%d\t%d\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Vertices,
			run.SubSteps,
			run.Integrator,
			run.Frames,
			run.Resets,
		)
	}

	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, []storage.Frame, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	recorded, err := st.LoadFrames(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(recorded) == 0 {
		return nil, nil, fmt.Errorf("run %s has no frames", runID)
	}
	return meta, recorded, nil
}

func centroids(recorded []storage.Frame) []r2.Vec {
	out := make([]r2.Vec, len(recorded))
	for i, f := range recorded {
		out[i] = f.Centroid
	}
	return out
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, recorded, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Name)
	fmt.Printf("samples: %d\n\n", len(recorded))

	trace := centroids(recorded)
	height := analysis.Axis(trace, 1)
	for i := range height {
		height[i] = -height[i]
	}
	for _, series := range []struct {
		data    []float64
		caption string
	}{
		{analysis.Axis(trace, 0), "centroid x"},
		{height, "centroid height"},
	} {
		graph := asciigraph.Plot(series.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(series.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	fmt.Println("path:")
	fmt.Print(analysis.TraceToASCII(trace, 60, 20))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	meta, recorded, err := loadRun(args[0])
	if err != nil {
		return err
	}

	// Recorded frames may be decimated; the sample rate follows the stride.
	stride := 1
	if len(recorded) > 1 && recorded[1].Frame > recorded[0].Frame {
		stride = recorded[1].Frame - recorded[0].Frame
	}
	rate := float64(cfg.FPS) / float64(stride)

	trace := analysis.Axis(centroids(recorded), 1)
	spectrum := analysis.WobbleSpectrum(trace, rate)
	if len(spectrum.Power) < 2 {
		return fmt.Errorf("run %s is too short to analyze", meta.ID)
	}

	fmt.Printf("wobble analysis: %s\n", meta.ID)
	fmt.Printf("scene: %s, %d samples at %.1f hz\n\n", meta.Name, len(trace), rate)

	graph := asciigraph.Plot(spectrum.Power[1:],
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum (centroid y)"),
	)
	fmt.Println(graph)
	fmt.Println()

	freq := spectrum.Dominant()
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}
	peaks := analysis.Peaks(trace)
	fmt.Printf("bounces: %d\n", len(peaks))
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	lo, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("lo: %w", err)
	}
	hi, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("hi: %w", err)
	}
	steps, _ := cmd.Flags().GetInt("steps")
	sceneName, _ := cmd.Flags().GetString("scene")

	scene, err := experiment.NewRegistry().GetScene(sceneName)
	if err != nil {
		return err
	}

	points, err := analysis.Sweep(context.Background(), cfg.SessionSettings(), args[0], lo, hi, steps, cfg.Frames,
		scene(cfg.Radius, uint64(cfg.Seed)),
		func() dynamo.Metric { return metrics.NewRoundness() })
	if err != nil {
		return err
	}

	fmt.Printf("sweep %s in [%g, %g], scene %s\n\n", args[0], lo, hi, sceneName)
	fmt.Print(analysis.SweepToASCII(points, 60, 15))
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VALUE\tROUNDNESS\tRESETS")
	for _, p := range points {
		fmt.Fprintf(w, "%.4g\t%.4f\t%d\n", p.Param, p.Value, p.Resets)
	}
	return w.Flush()
}

func runSensitivity(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	eps, _ := cmd.Flags().GetFloat64("eps")
	rate, err := analysis.Sensitivity(context.Background(), cfg.SessionSettings(), cfg.Frames, eps)
	if err != nil {
		return err
	}
	fmt.Printf("growth rate: %.6f per frame\n", rate)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, recorded, err := loadRun(args[0])
	if err != nil {
		return err
	}
	idx, _ := cmd.Flags().GetInt("frame")
	trace, _ := cmd.Flags().GetBool("trace")

	hw, hh := meta.Tuning.HalfWidth, meta.Tuning.HalfHeight
	var svg string
	if trace {
		svg = export.TraceSVG(centroids(recorded), int(2*hw), int(2*hh), export.BodyColor)
	} else {
		if idx < 0 {
			idx = len(recorded) - 1
		}
		if idx >= len(recorded) {
			return fmt.Errorf("frame %d out of range (%d recorded)", idx, len(recorded))
		}
		f := recorded[idx]
		svg = export.BlobSVG(f.Vertices, f.Centroid, meta.Radius, int(2*hw), int(2*hh))
	}
	return export.WriteFile(outPath, svg)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, recorded, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if outPath != "-" {
		if err := storage.ExportJSONFile(outPath, *meta, recorded); err != nil {
			return err
		}
		fmt.Printf("exported to %s\n", outPath)
		return nil
	}
	return storage.ExportJSON(os.Stdout, *meta, recorded)
}

func showTilt(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	var angles [3]float64
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return fmt.Errorf("angle %d: %w", i, err)
		}
		angles[i] = v
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MAPPING\tGX\tGY")
	for _, m := range []control.Mapping{control.MappingPitch, control.MappingYaw} {
		g := control.GravityFromOrientation(angles[0], angles[1], angles[2], m, cfg.TiltScale)
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\n", m, g.X, g.Y)
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	if path, _ := cmd.Flags().GetString("save"); path != "" {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		if err := config.Save(path, cfg); err != nil {
			return err
		}
		fmt.Printf("saved to %s\n", path)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tVERTICES\tSUBSTEPS\tTENSION\tPRESSURE\tFRICTION")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%d\t%g\t%g\t%.6f\n", name, p.Vertices, p.SubSteps, p.Tuning.Tension, p.Tuning.Pressure, p.Tuning.Friction)
	}
	return w.Flush()
}

// parseGrid reads name=lo:hi:n entries.
func parseGrid(entries []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(entries))
	ranges := make([][]float64, 0, len(entries))
	for _, e := range entries {
		name, bounds, ok := strings.Cut(e, "=")
		parts := strings.Split(bounds, ":")
		if !ok || len(parts) != 3 {
			return nil, nil, fmt.Errorf("grid entry %q: want name=lo:hi:n", e)
		}
		lo, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("grid entry %q: %w", e, err)
		}
		hi, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("grid entry %q: %w", e, err)
		}
		n, err := strconv.Atoi(parts[2])
		if err != nil || n < 1 {
			return nil, nil, fmt.Errorf("grid entry %q: bad count", e)
		}
		names = append(names, name)
		ranges = append(ranges, optim.Span(lo, hi, n))
	}
	return names, ranges, nil
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	grid, _ := cmd.Flags().GetStringSlice("grid")
	sceneName, _ := cmd.Flags().GetString("scene")
	metric, _ := cmd.Flags().GetString("metric")

	names, ranges, err := parseGrid(grid)
	if err != nil {
		return err
	}
	gs, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	best, trials, err := gs.WithLogger(newLogger(cfg)).Search(ctx, cfg, sceneName, metric)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\tRESETS\n", strings.ToUpper(strings.Join(names, "\t")), strings.ToUpper(metric))
	for _, t := range trials {
		for _, n := range names {
			fmt.Fprintf(w, "%.4g\t", t.Params[n])
		}
		fmt.Fprintf(w, "%.6f\t%d\n", t.Value, t.Resets)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println("\nbest:")
	for _, n := range names {
		fmt.Printf("  %s: %.4g\n", n, best.Params[n])
	}
	fmt.Printf("  %s: %.6f\n", metric, best.Value)
	return nil
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	const benchFrames = 120

	fmt.Printf("benchmarking %d frames at %d sub-steps\n\n", benchFrames, cfg.SubSteps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VERTICES\tBACKEND\tINTEG\tMS/FRAME\tRESETS")

	backends := []struct {
		name string
		b    compute.Backend
	}{
		{"serial", compute.NewCPUBackend(1, 0)},
		{"parallel", compute.NewCPUBackend(0, 1)},
	}
	registry := experiment.NewRegistry()
	for _, n := range []int{25, 50, 200, 800} {
		for _, be := range backends {
			for _, name := range registry.ListIntegrators() {
				integ, err := registry.GetIntegrator(name, cfg.Tuning)
				if err != nil {
					return err
				}
				settings := cfg.SessionSettings()
				settings.Vertices = n

				sess, err := sim.NewSession(settings, sim.WithIntegrator(integ), sim.WithBackend(be.b))
				if err != nil {
					return err
				}
				start := time.Now()
				res, err := sim.Run(context.Background(), sess, sim.RunConfig{Frames: benchFrames})
				elapsed := time.Since(start)
				sess.Teardown()
				if err != nil {
					return err
				}
				ms := float64(elapsed.Microseconds()) / 1000 / benchFrames
				fmt.Fprintf(w, "%d\t%s\t%s\t%.3f\t%d\n", n, be.name, name, ms, res.Resets)
			}
		}
	}
	return w.Flush()
}
