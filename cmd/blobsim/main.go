package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/san-kum/blobsim/internal/config"
	"github.com/san-kum/blobsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir     string
	configFile  string
	envFile     string
	preset      string
	logLevel    string
	vertices    int
	radius      float64
	subSteps    int
	frames      int
	floor       float64
	seed        int64
	integrator  string
	tiltMapping string
	recordEvery int
	scenario    string
	outPath     string
)

// main registers the blobsim commands. With no subcommand it opens the
// interactive preset picker.
func main() {
	rootCmd := &cobra.Command{
		Use:          "blobsim",
		Short:        "soft-body blob simulator",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".blobsim", "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&envFile, "env", ".env", "dotenv file with BLOBSIM_* overrides")
	pf.StringVar(&preset, "preset", "", "start from a named preset")
	pf.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.IntVar(&vertices, "vertices", 0, "particles on the ring")
	pf.Float64Var(&radius, "radius", 0, "rest radius")
	pf.IntVar(&subSteps, "substeps", 0, "sub-steps per frame")
	pf.IntVar(&frames, "frames", 0, "frames to simulate")
	pf.Float64Var(&floor, "floor", 0, "floor height below the origin")
	pf.Int64Var(&seed, "seed", 0, "random seed")
	pf.StringVar(&integrator, "integrator", "", "integrator (euler, verlet)")
	pf.StringVar(&tiltMapping, "tilt-mapping", "", "orientation mapping (pitch, yaw)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a blob in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}

	runCmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "run a headless scene and store it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScene,
	}
	runCmd.Flags().IntVar(&recordEvery, "record-every", 1, "keep every nth frame")
	runCmd.Flags().StringVar(&scenario, "scenario", "", "replay a yaml input scenario instead of a scene")

	soakCmd := &cobra.Command{
		Use:   "soak",
		Short: "drive random inputs and count resets",
		Args:  cobra.NoArgs,
		RunE:  runSoak,
	}
	soakCmd.Flags().Int("trials", 20, "number of trials")
	soakCmd.Flags().Int("interval", 20, "frames between random inputs")
	soakCmd.Flags().Bool("parallel", false, "run trials concurrently")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "stream blob frames over websocket",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	serveCmd.Flags().String("addr", ":8080", "listen address")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the centroid of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "wobble spectrum of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [param] [lo] [hi]",
		Short: "sweep a tuning parameter and plot roundness",
		Args:  cobra.ExactArgs(3),
		RunE:  runSweep,
	}
	sweepCmd.Flags().Int("steps", 10, "number of values")
	sweepCmd.Flags().String("scene", "drag", "input scene for every run")

	sensitivityCmd := &cobra.Command{
		Use:   "sensitivity",
		Short: "growth rate of a gravity perturbation",
		Args:  cobra.NoArgs,
		RunE:  runSensitivity,
	}
	sensitivityCmd.Flags().Float64("eps", 1e-6, "gravity perturbation")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render a stored frame as svg",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outPath, "out", "o", "-", "output path, - for stdout")
	exportSVGCmd.Flags().Int("frame", -1, "recorded frame index, -1 for the last")
	exportSVGCmd.Flags().Bool("trace", false, "render the centroid trace instead")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a stored run to json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "-", "output path, - for stdout")

	tiltCmd := &cobra.Command{
		Use:   "tilt [alpha] [beta] [gamma]",
		Short: "show the gravity an orientation maps to",
		Args:  cobra.ExactArgs(3),
		RunE:  showTilt,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}
	presetsCmd.Flags().String("save", "", "write the --preset config to this yaml file")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search tuning values for the smallest metric",
		Args:  cobra.NoArgs,
		RunE:  runTune,
	}
	tuneCmd.Flags().StringSlice("grid", []string{"tension=0.02:0.08:4", "bounce=0.5:3:3"}, "name=lo:hi:n per tuning param")
	tuneCmd.Flags().String("scene", "drag", "input scene for every trial")
	tuneCmd.Flags().String("metric", "jiggle", "metric to minimise")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time frames across ring sizes and backends",
		Args:  cobra.NoArgs,
		RunE:  runBench,
	}

	rootCmd.AddCommand(liveCmd, runCmd, soakCmd, serveCmd, listCmd, plotCmd, analyzeCmd, sweepCmd, sensitivityCmd,
		exportSVGCmd, exportJSONCmd, tiltCmd, presetsCmd, tuneCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfig layers defaults, preset, config file, environment and flags,
// in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %s)", preset, strings.Join(config.ListPresets(), ", "))
		}
		cfg = p
	}
	if configFile != "" {
		loaded, err := config.Load(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if err := cfg.LoadEnv(envFile); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("vertices") {
		cfg.Vertices = vertices
	}
	if flags.Changed("radius") {
		cfg.Radius = radius
	}
	if flags.Changed("substeps") {
		cfg.SubSteps = subSteps
	}
	if flags.Changed("frames") {
		cfg.Frames = frames
	}
	if flags.Changed("floor") {
		cfg.Tuning.HalfHeight = floor
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("tilt-mapping") {
		cfg.TiltMapping = tiltMapping
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	return cfg, cfg.Validate()
}

func newLogger(cfg *config.Config) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "blobsim",
	})
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warn("unknown log level, using info", "level", cfg.LogLevel)
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}
