package main

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/pixelcanvas/internal/config"
	"github.com/san-kum/pixelcanvas/internal/export"
	"github.com/san-kum/pixelcanvas/internal/field"
	"github.com/san-kum/pixelcanvas/internal/pixel"
	"github.com/san-kum/pixelcanvas/internal/scenario"
	"github.com/san-kum/pixelcanvas/internal/storage"
	"github.com/san-kum/pixelcanvas/internal/tui"
	"github.com/san-kum/pixelcanvas/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	seed       int64
	theme      string
	debug      bool
	pick       bool

	sweepParam  string
	sweepValues string
	trials      int

	jsonOut    string
	gifOut     string
	svgOut     string
	scale      float64
	background string
	vector     bool

	cycle time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pixelcanvas",
		Short: "pixel reveal animations in the terminal",
		RunE:  runInteractive,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".pixelcanvas", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml or toml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "random seed (0 picks one)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log to pixelcanvas.log")
	rootCmd.Flags().StringVar(&theme, "theme", "slate", "theme: "+strings.Join(viz.ThemeNames(), ", "))
	rootCmd.Flags().BoolVar(&pick, "pick", false, "choose a preset before starting")

	runCmd := &cobra.Command{
		Use:   "run [scenario.yaml]",
		Short: "play a scenario headless and store the frames",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScenario,
	}
	runCmd.Flags().StringVar(&sweepParam, "sweep", "", "sweep a parameter instead (gap or speed)")
	runCmd.Flags().StringVar(&sweepValues, "values", "", "comma separated sweep values")
	runCmd.Flags().IntVar(&trials, "trials", 0, "rerun with this many consecutive seeds")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&jsonOut, "out", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run frames to CSV",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportCSV,
	}

	gifCmd := &cobra.Command{
		Use:   "gif [scenario.yaml]",
		Short: "render a scenario to an animated GIF",
		Args:  cobra.MaximumNArgs(1),
		RunE:  renderGIF,
	}
	gifCmd.Flags().StringVarP(&gifOut, "out", "o", "pixelcanvas.gif", "output file")
	gifCmd.Flags().Float64Var(&scale, "scale", 4, "device pixel ratio of the output")
	gifCmd.Flags().StringVar(&background, "background", "#0f172a", "background color")

	svgCmd := &cobra.Command{
		Use:   "svg [scenario.yaml]",
		Short: "render the last frame of a scenario to SVG",
		Args:  cobra.MaximumNArgs(1),
		RunE:  renderSVG,
	}
	svgCmd.Flags().StringVarP(&svgOut, "out", "o", "pixelcanvas.svg", "output file")
	svgCmd.Flags().Float64Var(&scale, "scale", 4, "device pixel ratio of the output")
	svgCmd.Flags().StringVar(&background, "background", "#0f172a", "background color")
	svgCmd.Flags().BoolVar(&vector, "vector", false, "draw exact squares from the field instead of the raster")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "animate a field with plain ANSI output",
		RunE:  runLive,
	}
	liveCmd.Flags().DurationVar(&cycle, "cycle", 3*time.Second, "toggle appear and disappear at this period (0 plays once)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, exportJSONCmd, exportCSVCmd, gifCmd, svgCmd, liveCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves defaults, then the preset, then the config file,
// then flags and the environment.
func loadConfig(cmd *cobra.Command, fallbackPreset string) (*config.Config, string, error) {
	cfg := config.DefaultConfig()
	name := preset
	if name == "" && configFile == "" {
		name = fallbackPreset
	}
	if name != "" {
		p := config.GetPreset(name)
		if p == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
		}
		cfg = p
	}
	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	cfg.ApplyEnv()
	return cfg, name, nil
}

func setupLogging(interactive bool) (func(), error) {
	if debug {
		f, err := tea.LogToFile("pixelcanvas.log", "pixelcanvas")
		if err != nil {
			return nil, err
		}
		return func() { f.Close() }, nil
	}
	if interactive {
		log.SetOutput(io.Discard)
	}
	return func() {}, nil
}

func loadScenario(args []string) (*scenario.Scenario, error) {
	if len(args) == 0 {
		return scenario.Default(), nil
	}
	return scenario.LoadScenario(args[0])
}

func runInteractive(cmd *cobra.Command, args []string) error {
	done, err := setupLogging(true)
	if err != nil {
		return err
	}
	defer done()

	viz.SetTheme(theme)
	cfg, _, err := loadConfig(cmd, "")
	if err != nil {
		return err
	}
	if pick {
		picked, _, err := tui.Pick()
		if err != nil {
			return err
		}
		if picked == nil {
			return nil
		}
		cfg = usePicked(cfg, picked)
	}
	if !cmd.Flags().Changed("config") && !cmd.Flags().Changed("preset") && !pick {
		cfg.Colors = viz.CurrentTheme.Pixels
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return viz.Run(ctx, cfg, configFile, pixel.NewSource(uint64(cfg.Seed)))
}

// usePicked replaces base with the picker's choice, keeping the seed and
// the environment override.
func usePicked(base, picked *config.Config) *config.Config {
	picked.Seed = base.Seed
	picked.ApplyEnv()
	return picked
}

func runScenario(cmd *cobra.Command, args []string) error {
	done, err := setupLogging(false)
	if err != nil {
		return err
	}
	defer done()

	sc, err := loadScenario(args)
	if err != nil {
		return err
	}
	cfg, name, err := loadConfig(cmd, sc.Preset)
	if err != nil {
		return err
	}
	opts, err := cfg.Options()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if sweepParam != "" {
		return runSweep(ctx, sc, cfg)
	}
	if trials > 0 {
		return runTrials(ctx, sc, opts, cfg)
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("running %s scenario...\n", sc.Name)
	start := time.Now()

	res, err := scenario.Run(ctx, sc, opts, nil, pixel.NewSource(uint64(cfg.Seed)))
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(name, cfg, res)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("frames: %d\n", len(res.Frames))
	if res.IdleAt >= 0 {
		fmt.Printf("idle at: %v\n", res.IdleAt)
	} else if res.Truncated {
		fmt.Println("still animating at max_duration")
	}
	fmt.Println("\nmetrics:")
	for k, val := range res.Metrics {
		fmt.Printf("  %s: %.6f\n", k, val)
	}
	return nil
}

func parseValues(s string) ([]float64, error) {
	var values []float64
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("bad sweep value %q: %w", tok, err)
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("--values is required with --sweep")
	}
	return values, nil
}

func runSweep(ctx context.Context, sc *scenario.Scenario, cfg *config.Config) error {
	values, err := parseValues(sweepValues)
	if err != nil {
		return err
	}
	results, err := scenario.Sweep(ctx, sc, cfg, sweepParam, values, uint64(cfg.Seed))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tFRAMES\tPEAK\tIDLE AT\n", strings.ToUpper(sweepParam))
	for _, r := range results {
		idle := "-"
		if r.IdleAt >= 0 {
			idle = r.IdleAt.String()
		}
		fmt.Fprintf(w, "%g\t%d\t%d\t%s\n", r.Value, r.Frames, r.PeakActive, idle)
	}
	return w.Flush()
}

func runTrials(ctx context.Context, sc *scenario.Scenario, opts config.Options, cfg *config.Config) error {
	results, err := scenario.RunTrials(ctx, sc, opts, trials, uint64(cfg.Seed))
	if err != nil {
		return err
	}
	lo, hi, mean, unsettled := scenario.TrialStats(results)
	fmt.Printf("trials: %d\n", len(results))
	fmt.Printf("idle at: min %v  mean %v  max %v\n", lo, mean, hi)
	if unsettled > 0 {
		fmt.Printf("unsettled: %d\n", unsettled)
	}
	return nil
}

func resolveRun(st *storage.Store, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	id, err := st.Latest()
	if err != nil {
		return "", fmt.Errorf("no runs in %s", st.Dir())
	}
	return id, nil
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
	fmt.Fprintln(w, "ID\tSCENARIO\tPRESET\tTIME\tSIZE\tFRAMES\tIDLE AT")

	for _, run := range runs {
		idle := "-"
		if run.IdleAtMS >= 0 {
			idle = fmt.Sprintf("%.0fms", run.IdleAtMS)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%dx%d\t%.0f\t%s\n",
			run.ID,
			run.Scenario,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Width, run.Height,
			run.Metrics["frames"],
			idle,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runID, err := resolveRun(st, args)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("frames: %d\n\n", len(frames))

	active := make([]float64, len(frames))
	mean := make([]float64, len(frames))
	for i, f := range frames {
		active[i] = float64(f.Active())
		mean[i] = f.MeanSize
	}

	for _, series := range []struct {
		caption string
		data    []float64
	}{
		{"active pixels", active},
		{"mean size", mean},
	} {
		graph := asciigraph.Plot(series.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(series.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runID, err := resolveRun(st, args)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	return export.WriteJSON(os.Stdout, meta, nil)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runID, err := resolveRun(st, args)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if jsonOut != "" {
		if err := export.ExportJSON(jsonOut, meta, frames); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", jsonOut)
		return nil
	}
	return export.ExportJSONStdout(meta, frames)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runID, err := resolveRun(st, args)
	if err != nil {
		return err
	}
	f, err := os.Open(st.FramesPath(runID))
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(os.Stdout, f)
	return err
}

func renderGIF(cmd *cobra.Command, args []string) error {
	sc, err := loadScenario(args)
	if err != nil {
		return err
	}
	cfg, _, err := loadConfig(cmd, sc.Preset)
	if err != nil {
		return err
	}
	cfg.DPR = scale
	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	bg, err := parseBackground()
	if err != nil {
		return err
	}

	raster := viz.NewRaster(bg)
	rec := viz.NewRecorder(bg, opts.Field.Palette, gifDelay(opts.Interval()))
	_, err = scenario.RunWith(context.Background(), sc, opts, raster, pixel.NewSource(uint64(cfg.Seed)),
		func(scenario.FrameStat, *field.Field) { rec.Capture(raster) })
	if err != nil {
		return err
	}
	if err := rec.Save(gifOut); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d frames, %dx%d)\n", gifOut, rec.Len(), raster.Bounds().Dx(), raster.Bounds().Dy())
	return nil
}

// gifDelay converts a frame interval to GIF delay units of 10ms. Viewers
// treat delays under 2 as slow defaults, so 2 is the floor.
func gifDelay(interval time.Duration) int {
	return max(2, int(interval.Round(10*time.Millisecond)/(10*time.Millisecond)))
}

func renderSVG(cmd *cobra.Command, args []string) error {
	sc, err := loadScenario(args)
	if err != nil {
		return err
	}
	cfg, _, err := loadConfig(cmd, sc.Preset)
	if err != nil {
		return err
	}
	if !vector {
		cfg.DPR = scale
	}
	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	bg, err := parseBackground()
	if err != nil {
		return err
	}

	raster := viz.NewRaster(bg)
	var svg string
	_, err = scenario.RunWith(context.Background(), sc, opts, raster, pixel.NewSource(uint64(cfg.Seed)),
		func(_ scenario.FrameStat, f *field.Field) {
			if vector {
				svg = export.FieldToSVG(f, bg, scale)
			}
		})
	if err != nil {
		return err
	}
	if !vector {
		svg = export.ImageToSVG(raster, bg, 1)
	}
	if err := os.WriteFile(svgOut, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", svgOut)
	return nil
}

func parseBackground() (color.RGBA, error) {
	palette, err := config.ParsePalette(background)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("bad background: %w", err)
	}
	return palette[0].RGBA, nil
}

func runLive(cmd *cobra.Command, args []string) error {
	done, err := setupLogging(true)
	if err != nil {
		return err
	}
	defer done()

	cfg, name, err := loadConfig(cmd, "")
	if err != nil {
		return err
	}
	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	if name == "" {
		name = "pixelcanvas"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return tui.RunLive(ctx, opts, pixel.NewSource(uint64(cfg.Seed)), os.Stdout, tui.LiveOptions{
		Label: name,
		Cycle: cycle,
		FD:    int(os.Stdout.Fd()),
	})
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tGAP\tSPEED\tVARIANT\tFPS\tFLAGS\tCOLORS")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		var flags []string
		if p.NoFocus {
			flags = append(flags, "no-focus")
		}
		if p.ReducedMotion {
			flags = append(flags, "reduced-motion")
		}
		fmt.Fprintf(w, "%s\t%d\t%g\t%s\t%d\t%s\t%s\n",
			name, p.Gap, p.Speed, p.Variant, p.FPS, strings.Join(flags, ","), p.Colors)
	}
	return w.Flush()
}
