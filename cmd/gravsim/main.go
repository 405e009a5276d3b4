package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/gravsim/internal/analysis"
	"github.com/san-kum/gravsim/internal/automation"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/engine"
	"github.com/san-kum/gravsim/internal/export"
	"github.com/san-kum/gravsim/internal/integrators"
	"github.com/san-kum/gravsim/internal/optim"
	"github.com/san-kum/gravsim/internal/sim"
	"github.com/san-kum/gravsim/internal/storage"
	"github.com/san-kum/gravsim/internal/viz"
	"github.com/san-kum/gravsim/internal/vizserver"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	logLevel   string
	configFile string
	preset     string
	// Run overrides
	frames      int
	sampleEvery int
	engineKind  string
	integrator  string
	noSave      bool
	// Plot and analysis
	body       string
	plotWidth  int
	orbitWidth int
	// Export
	outFile string
	svgFile string
	// Live and serve
	theme string
	addr  string
	// Sweep
	sweepParams []string
	metricName  string
	// Monte Carlo
	trials  int
	perturb float64
	seed    int64

	logger *log.Logger
)

// main registers the gravsim commands and runs the root command. With no
// subcommand the interactive preset picker opens.
func main() {
	rootCmd := &cobra.Command{
		Use:   "gravsim",
		Short: "gravity playground on a rigid-body engine",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive(logger.WithPrefix("viz"))
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".gravsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "classic", "preset configuration")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and save it",
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "print metrics without saving the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot kinetic energy and body tracks",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&body, "body", "", "only plot this body")
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run data to JSON or SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&outFile, "out", "", "JSON output file (default stdout)")
	exportCmd.Flags().StringVar(&svgFile, "svg", "", "also draw the body tracks to this SVG file")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "orbit period and revolutions around the sun",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&body, "body", "", "only analyze this body")
	analyzeCmd.Flags().IntVar(&orbitWidth, "width", 60, "orbit plot width")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the playground in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			viz.SetTheme(theme)
			return viz.Run(cfg, preset, logger.WithPrefix("viz"))
		},
	}
	liveCmd.Flags().StringVar(&engineKind, "engine", "", "physics engine ("+strings.Join(engine.Kinds(), ", ")+")")
	liveCmd.Flags().StringVar(&integrator, "integrator", "", "pointmass integrator")
	liveCmd.Flags().StringVar(&theme, "theme", viz.ThemeDaylight.Name, "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "stream the playground to browsers over websocket",
		RunE:  serve,
	}
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	serveCmd.Flags().StringVar(&engineKind, "engine", "", "physics engine ("+strings.Join(engine.Kinds(), ", ")+")")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tENGINE\tSTRENGTH\tEXPONENT\tDEGENERATE\tBUNNIES")
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%s\t%.4g\t%g\t%s\t%d\n",
					name,
					cfg.Engine.Kind,
					cfg.Gravity.Strength,
					cfg.Gravity.Exponent,
					cfg.Gravity.Degenerate,
					len(cfg.Scene.Bunnies),
				)
			}
			return w.Flush()
		},
	}

	compareCmd := &cobra.Command{
		Use:   "compare [preset...]",
		Short: "run several presets side by side and compare metrics",
		RunE:  comparePresets,
	}
	compareCmd.Flags().IntVar(&frames, "frames", 0, "frames per run (0 keeps the preset value)")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid search over parameters, minimizing a metric",
		RunE:  sweep,
	}
	sweepCmd.Flags().StringArrayVar(&sweepParams, "param", nil, "name=v1,v2,... (repeatable)")
	sweepCmd.Flags().StringVar(&metricName, "metric", "escaped", "metric to minimize")
	sweepCmd.Flags().IntVar(&frames, "frames", 0, "frames per trial (0 keeps the config value)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of simulations",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "perturb bunny positions and count escapes",
		RunE:  monteCarlo,
	}
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturb, "perturb", 20, "max bunny offset in pixels")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 for time based)")
	monteCarloCmd.Flags().IntVar(&frames, "frames", 0, "frames per trial (0 keeps the config value)")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, analyzeCmd, liveCmd, serveCmd, presetsCmd, compareCmd, sweepCmd, scenarioCmd, monteCarloCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&frames, "frames", 0, "frames to run (0 keeps the config value)")
	cmd.Flags().IntVar(&sampleEvery, "sample-every", 0, "sample positions every n frames")
	cmd.Flags().StringVar(&engineKind, "engine", "", "physics engine ("+strings.Join(engine.Kinds(), ", ")+")")
	cmd.Flags().StringVar(&integrator, "integrator", "", "pointmass integrator ("+strings.Join(integrators.Names(), ", ")+")")
}

func setupLogger() error {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	logger = log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		Prefix:          "gravsim",
		ReportTimestamp: true,
	})
	return nil
}

// loadConfig resolves --config or --preset and applies the run overrides.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if preset == "classic" {
			preset = "custom"
		}
	} else {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if frames > 0 {
		cfg.Run.Frames = frames
	}
	if sampleEvery > 0 {
		cfg.Run.SampleEvery = sampleEvery
	}
	if engineKind != "" {
		cfg.Engine.Kind = engineKind
	}
	if integrator != "" {
		cfg.Engine.Integrator = integrator
	}
	return cfg, cfg.Validate()
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func printMetrics(metrics map[string]float64) {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-18s %.6g\n", name+":", metrics[name])
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %s: %d frames, %d steps each, %s engine\n",
		preset, cfg.Run.Frames, cfg.Scene.StepsPerFrame, cfg.Engine.Kind)

	result, err := sim.New(cfg, sim.WithPreset(preset), sim.WithLogger(logger.WithPrefix("sim"))).Run(ctx)
	if err != nil && result == nil {
		return err
	}
	if err != nil {
		fmt.Printf("interrupted after %d frames\n", result.Frames)
	}

	fmt.Printf("steps: %d  points: %d  dropped bodies: %d\n", result.Steps, len(result.Points), result.Stats.DroppedBodies)
	printMetrics(result.Metrics)

	if noSave {
		return nil
	}
	runID, err := storage.New(dataDir).Save(cfg, result)
	if err != nil {
		return err
	}
	fmt.Printf("saved: %s\n", runID)
	return nil
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
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tENGINE\tFRAMES\tSTEPS\tSTRENGTH\tEXPONENT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%.4g\t%g\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Engine,
			run.Frames,
			run.Steps,
			run.Gravity.Strength,
			run.Gravity.Exponent,
		)
	}

	return w.Flush()
}

func selectedBodies(result *sim.Result) ([]string, error) {
	if body == "" {
		return result.Bodies(), nil
	}
	if len(result.Track(body)) == 0 {
		return nil, fmt.Errorf("no samples for body %q (available: %v)", body, result.Bodies())
	}
	return []string{body}, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	meta, result, err := storage.New(dataDir).LoadResult(runID)
	if err != nil {
		return err
	}
	if len(result.Points) == 0 && len(result.Energy) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s\n", meta.Preset)
	fmt.Printf("frames: %d\n\n", meta.Frames)

	if len(result.Energy) > 1 {
		graph := asciigraph.Plot(result.Energy,
			asciigraph.Height(10),
			asciigraph.Width(plotWidth),
			asciigraph.Caption("kinetic energy"),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	bodies, err := selectedBodies(result)
	if err != nil {
		return err
	}
	for _, name := range bodies {
		track := result.Track(name)
		if len(track) < 2 {
			continue
		}
		xs := make([]float64, len(track))
		ys := make([]float64, len(track))
		for i, p := range track {
			xs[i] = p.X
			ys[i] = p.Y
		}

		graph := asciigraph.PlotMany([][]float64{xs, ys},
			asciigraph.Height(8),
			asciigraph.Width(plotWidth),
			asciigraph.SeriesColors(asciigraph.Cyan, asciigraph.Magenta),
			asciigraph.Caption(name+" x (cyan), y (magenta)"),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	meta, result, err := storage.New(dataDir).LoadResult(args[0])
	if err != nil {
		return err
	}

	data := storage.NewExportData(meta, result)
	if outFile != "" {
		if err := storage.ExportJSONFile(outFile, data); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "exported to %s\n", outFile)
	} else if svgFile == "" {
		if err := storage.ExportJSON(os.Stdout, data); err != nil {
			return err
		}
	}

	if svgFile != "" {
		width, height := meta.Width, meta.Height
		if width <= 0 || height <= 0 {
			width, height = config.DefaultWidth, config.DefaultHeight
		}
		if err := export.WriteFile(svgFile, export.TrajectoriesToSVG(result, width, height)); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "drew tracks to %s\n", svgFile)
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, result, err := storage.New(dataDir).LoadResult(args[0])
	if err != nil {
		return err
	}

	width, height := meta.Width, meta.Height
	if width <= 0 || height <= 0 {
		width, height = config.DefaultWidth, config.DefaultHeight
	}
	sun := dynamo.V(width/2, height/2)

	bodies, err := selectedBodies(result)
	if err != nil {
		return err
	}
	every := float64(meta.SampleEvery)
	if every < 1 {
		every = 1
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BODY\tSAMPLES\tMIN DIST\tMAX DIST\tPERIOD (frames)\tREVOLUTIONS")
	for _, name := range bodies {
		track := result.Track(name)
		d := analysis.Distances(track, sun)
		if len(d) == 0 {
			continue
		}
		minD, maxD := d[0], d[0]
		for _, v := range d {
			minD = min(minD, v)
			maxD = max(maxD, v)
		}
		period := "-"
		if p := analysis.DominantPeriod(d, every); p > 0 {
			period = strconv.FormatFloat(p, 'f', 1, 64)
		}
		fmt.Fprintf(w, "%s\t%d\t%.1f\t%.1f\t%s\t%+.2f\n",
			name, len(track), minD, maxD, period, analysis.Revolutions(track, sun))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if body != "" {
		fmt.Println()
		fmt.Print(analysis.OrbitToASCII(result.Track(body), sun, orbitWidth, orbitWidth/3))
	}
	return nil
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	logger.Info("serving playground", "addr", addr, "preset", preset)
	return vizserver.NewVizService(addr, cfg, preset, logger.WithPrefix("vizserver")).ListenAndServe(ctx)
}

func comparePresets(cmd *cobra.Command, args []string) error {
	names := args
	if len(names) == 0 {
		names = config.ListPresets()
	}

	configs := make(map[string]*config.Config, len(names))
	for _, name := range names {
		cfg := config.GetPreset(name)
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
		}
		if frames > 0 {
			cfg.Run.Frames = frames
		}
		configs[name] = cfg
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := sim.NewEnsemble(configs, logger.WithPrefix("sim")).Run(ctx)
	if err != nil {
		return err
	}

	metricNames := make([]string, 0)
	for _, r := range results {
		for m := range r.Metrics {
			metricNames = append(metricNames, m)
		}
		break
	}
	sort.Strings(metricNames)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tSTEPS\t"+strings.ToUpper(strings.Join(metricNames, "\t")))
	sort.Strings(names)
	for _, name := range names {
		r := results[name]
		fmt.Fprintf(w, "%s\t%d", name, r.Steps)
		for _, m := range metricNames {
			fmt.Fprintf(w, "\t%.4g", r.Metrics[m])
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

// parseSweepParam parses name=v1,v2,...
func parseSweepParam(s string) (string, []float64, error) {
	name, list, ok := strings.Cut(s, "=")
	if !ok || name == "" || list == "" {
		return "", nil, fmt.Errorf("invalid --param %q, want name=v1,v2,...", s)
	}
	parts := strings.Split(list, ",")
	values := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return "", nil, fmt.Errorf("invalid value in --param %q: %w", s, err)
		}
		values = append(values, v)
	}
	return name, values, nil
}

func sweep(cmd *cobra.Command, args []string) error {
	if len(sweepParams) == 0 {
		return fmt.Errorf("at least one --param is required")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	names := make([]string, 0, len(sweepParams))
	ranges := make([][]float64, 0, len(sweepParams))
	for _, s := range sweepParams {
		name, values, err := parseSweepParam(s)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	ctx, cancel := signalContext()
	defer cancel()

	gs := optim.NewGridSearch(names, ranges)
	gs.SetLogger(logger.WithPrefix("optim"))
	best, value, trialResults, err := gs.Search(ctx, cfg, metricName)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(names, "\t"))+"\t"+strings.ToUpper(metricName))
	for _, tr := range trialResults {
		for _, n := range names {
			fmt.Fprintf(w, "%g\t", tr.Params[n])
		}
		if tr.Err != nil {
			fmt.Fprintf(w, "error: %v\n", tr.Err)
		} else {
			fmt.Fprintf(w, "%.6g\n", tr.Value)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nbest %s: %.6g at %v\n", metricName, value, best)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("scenario: %s (%d steps)\n", scenario.Name, len(scenario.Steps))
	results, err := automation.RunScenario(ctx, scenario, storage.New(dataDir), logger.WithPrefix("automation"))
	for i, r := range results {
		saved := "-"
		if r.RunID != "" {
			saved = r.RunID
		}
		fmt.Printf("%d. %s: %d frames, escaped %.2f, saved %s\n",
			i+1, r.Name, r.Result.Frames, r.Result.Metrics["escaped"], saved)
	}
	return err
}

func monteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Base:         cfg,
		Perturbation: perturb,
		NumTrials:    trials,
		Seed:         seed,
	}, logger.WithPrefix("automation"))
	if err != nil {
		return err
	}

	escaped := make([]float64, len(results))
	for i, r := range results {
		escaped[i] = r.Escaped
	}
	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("trials: %d  stable: %d  unstable: %d\n", len(results), stable, unstable)
	if len(escaped) > 1 {
		fmt.Println(asciigraph.Plot(escaped, asciigraph.Height(6), asciigraph.Caption("escaped fraction per trial")))
	}
	return nil
}
