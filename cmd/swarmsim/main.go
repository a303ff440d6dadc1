package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/swarmsim/internal/config"
	"github.com/san-kum/swarmsim/internal/experiment"
	"github.com/san-kum/swarmsim/internal/export"
	"github.com/san-kum/swarmsim/internal/kinds"
	"github.com/san-kum/swarmsim/internal/logging"
	"github.com/san-kum/swarmsim/internal/metrics"
	"github.com/san-kum/swarmsim/internal/record"
	"github.com/san-kum/swarmsim/internal/render"
	"github.com/san-kum/swarmsim/internal/scene"
	"github.com/san-kum/swarmsim/internal/sim"
	"github.com/san-kum/swarmsim/internal/storage"
	"github.com/san-kum/swarmsim/internal/viz"
)

var (
	dataDir    string
	configFile string
	seed       int64
	frames     int
	fps        int
	zsort      bool
	recordRun  bool
	logLevel   string
	logFormat  string
	logFile    string
	outFile    string
	format     string
	runs       int
	statsEvery int
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "swarmsim",
		Short:        "frame-stepped 2D particle and agent simulator",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml or toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "log output path")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a simulation headless and save it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	runCmd.Flags().IntVar(&frames, "frames", config.DefaultFrames, "frames to step")
	runCmd.Flags().BoolVar(&zsort, "zsort", false, "sort entities by z-index every frame")
	runCmd.Flags().BoolVar(&recordRun, "record", false, "record per-frame entity data")
	runCmd.Flags().IntVar(&statsEvery, "stats-every", config.DefaultStatsEvery, "sample stats every n frames")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "run a simulation in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	liveCmd.Flags().IntVar(&frames, "frames", 0, "stop after this many frames (0 runs forever)")
	liveCmd.Flags().IntVar(&fps, "fps", config.DefaultFPS, "frame rate")
	liveCmd.Flags().BoolVar(&zsort, "zsort", false, "sort entities by z-index every frame")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run statistics",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata and statistics",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&format, "format", "json", "output format (json, csv)")
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	benchCmd := &cobra.Command{
		Use:   "bench [preset]",
		Short: "step independent seeds of a scene in parallel",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchScene,
	}
	benchCmd.Flags().IntVar(&runs, "runs", 4, "number of seeds")
	benchCmd.Flags().Int64Var(&seed, "seed", 1, "first seed")
	benchCmd.Flags().IntVar(&frames, "frames", config.DefaultFrames, "frames per run")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tWORLDS\tSPAWNS\tFRAMES")
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", name, len(cfg.Worlds), len(cfg.Spawns), cfg.Frames)
			}
			return w.Flush()
		},
	}

	kindsCmd := &cobra.Command{
		Use:   "kinds",
		Short: "list registered entity kinds",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := kinds.NewRegistry(kinds.Deps{})
			if err != nil {
				return err
			}
			for _, k := range reg.Kinds() {
				fmt.Println(k)
			}
			return nil
		},
	}

	configCmd := &cobra.Command{
		Use:   "config [preset]",
		Short: "print a configuration, or write it with --out",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showConfig,
	}
	configCmd.Flags().StringVarP(&outFile, "out", "o", "", "write to this path (.yaml or .toml)")

	svgCmd := &cobra.Command{
		Use:   "svg [preset]",
		Short: "step a scene and write its final frame as SVG",
		Args:  cobra.MaximumNArgs(1),
		RunE:  snapshotSVG,
	}
	svgCmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	svgCmd.Flags().IntVar(&frames, "frames", 120, "frames to step before drawing")
	svgCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	trailCmd := &cobra.Command{
		Use:   "trail [run_id] [entity_id]",
		Short: "draw the recorded path of one entity as SVG",
		Args:  cobra.ExactArgs(2),
		RunE:  trailSVG,
	}
	trailCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd, benchCmd, presetsCmd, kindsCmd, configCmd, svgCmd, trailCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves the preset, then the config file, then any flag the
// user set explicitly.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if len(args) > 0 {
		cfg = config.GetPreset(args[0])
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("frames") {
		cfg.Frames = frames
	}
	if flags.Changed("fps") {
		cfg.FPS = fps
	}
	if flags.Changed("zsort") {
		cfg.ZSort = zsort
	}
	if flags.Changed("stats-every") {
		cfg.StatsEvery = statsEvery
	}
	if flags.Changed("record") {
		cfg.Record.Enabled = recordRun
	}
	if flags.Changed("data") || cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = logFormat
	}
	if flags.Changed("log-file") {
		cfg.Logging.Output = logFile
	}
	return cfg, cfg.Validate()
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	exp := experiment.New(cfg, log)
	if err := exp.Setup(storage.New(cfg.DataDir)); err != nil {
		return err
	}

	fmt.Printf("running %s for %d frames...\n", cfg.Name, cfg.Frames)
	res, err := exp.Run(ctx)
	if res == nil {
		return err
	}

	fmt.Printf("done in %v\n", res.Meta.Elapsed)
	fmt.Printf("run id: %s\n", res.ID)
	fmt.Printf("frames: %d  live: %d  pooled: %d  fallbacks: %d\n",
		res.Meta.Frames, res.Meta.Live, res.Meta.Pooled, res.Meta.Fallbacks)
	for _, name := range []string{"mean_speed", "kinetic_energy", "escapes"} {
		if v, ok := res.Meta.Metrics[name]; ok {
			fmt.Printf("%s: %.4f\n", name, v)
		}
	}
	return err
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("frames") && configFile == "" {
		cfg.Frames = 0
	}
	if !cmd.Flags().Changed("log-file") {
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return err
		}
		cfg.Logging.Output = filepath.Join(cfg.DataDir, "live.log")
	}
	log, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer log.Sync()

	return viz.Run(cfg.Name, cfg.FPS, func() (*scene.Scene, error) {
		return scene.Build(cfg, log)
	})
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
	fmt.Fprintln(w, "ID\tNAME\tTIME\tSEED\tFRAMES\tLIVE\tRECORDED\tELAPSED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%v\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Seed,
			run.Frames,
			run.Live,
			run.Recorded,
			run.Elapsed.Round(time.Millisecond),
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	rows, err := st.LoadStats(runID)
	if err != nil {
		return err
	}
	if len(rows) < 2 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Name)
	fmt.Printf("samples: %d\n\n", len(rows))

	series := []struct {
		caption string
		value   func(metrics.FrameStats) float64
	}{
		{"live entities", func(r metrics.FrameStats) float64 { return float64(r.Live) }},
		{"mean speed", func(r metrics.FrameStats) float64 { return r.MeanSpeed }},
		{"speed p90", func(r metrics.FrameStats) float64 { return r.SpeedP90 }},
		{"kinetic energy", func(r metrics.FrameStats) float64 { return r.Kinetic }},
	}
	for _, s := range series {
		data := make([]float64, len(rows))
		for i, r := range rows {
			data[i] = s.value(r)
		}
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		))
		fmt.Println()
	}
	return nil
}

type exportData struct {
	Meta  *storage.RunMetadata `json:"metadata"`
	Stats []metrics.FrameStats `json:"stats"`
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	rows, err := st.LoadStats(runID)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	out := os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	switch format {
	case "csv":
		return gocsv.Marshal(rows, out)
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(exportData{Meta: meta, Stats: rows})
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func benchScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	if cfg.Frames <= 0 {
		return fmt.Errorf("bench needs a positive frame count")
	}

	build := func(s int64) (*sim.Simulation, error) {
		c := *cfg
		c.Seed = s
		sc, err := scene.Build(&c, zap.NewNop())
		if err != nil {
			return nil, err
		}
		return sc.Sim, nil
	}

	fmt.Printf("benchmarking %s: %d seeds x %d frames\n\n", cfg.Name, runs, cfg.Frames)
	start := time.Now()
	results, err := sim.NewEnsemble(build, runs, cfg.Seed).Run(context.Background(), cfg.Frames)
	if err != nil {
		return err
	}
	total := time.Since(start)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tFRAMES\tLIVE\tPOOLED\tTIME\tFRAMES/SEC")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%v\t%.0f\n",
			r.Seed, r.Frames, r.Live, r.Pooled,
			r.Elapsed.Round(time.Microsecond),
			float64(r.Frames)/r.Elapsed.Seconds())
	}
	fmt.Fprintf(w, "\ntotal\t\t\t\t%v\t\n", total.Round(time.Microsecond))
	return w.Flush()
}

func showConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	if outFile != "" {
		if err := config.Save(outFile, cfg); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", outFile)
		return nil
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}

func writeOut(data string) error {
	if outFile == "" {
		_, err := fmt.Println(data)
		return err
	}
	if err := os.WriteFile(outFile, []byte(data), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outFile)
	return nil
}

func snapshotSVG(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	sc, err := scene.Build(cfg, zap.NewNop())
	if err != nil {
		return err
	}
	r := render.NewCanvasRenderer(100, 40)
	sc.Sim.SetRenderer(r)
	if _, err := sc.Sim.Run(cmd.Context(), cfg.Frames); err != nil {
		return err
	}
	return writeOut(export.CanvasToSVG(r.Canvas, 4))
}

func trailSVG(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid entity id %q: %w", args[1], err)
	}

	f, err := storage.New(dataDir).OpenFrames(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	recorded, err := record.Read(f)
	if err != nil {
		return err
	}
	pts := export.Trail(recorded, id)
	if len(pts) < 2 {
		return fmt.Errorf("entity %d has fewer than two recorded locations", id)
	}
	return writeOut(export.TrajectoryToSVG(pts, 800, 600, "#00ff00"))
}
