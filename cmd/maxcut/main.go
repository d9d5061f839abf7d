package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MPA2620/DSML-Final-Project/internal/config"
	"github.com/MPA2620/DSML-Final-Project/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	seed       int64
	verbose    bool
	theme      string

	nodes       int
	edgeProb    float64
	encoding    string
	cbmTemp     float64
	sbmTemp     float64
	tEnd        float64
	evalSteps   int
	integrator  string
	iterations  int
	sizes       []int
	workers     int
	metricsOut  string
	noSave      bool
	outFile     string
	histSolver  string
	histLimit   int
	histBest    int
	xUnit       int
	yUnit       int
	divergence  float64
	sweepSteps  int
	sweepMaxT   float64
	chartWidth  int
	chartHeight int
	svgOut      string
	tuneSolver  string
	tuneTemps   []float64
	tuneTEnds   []float64
	repeats     int
	trials      int
)

// main registers the commands and runs the root command under a context
// that is cancelled on SIGINT/SIGTERM.
func main() {
	rootCmd := &cobra.Command{
		Use:           "maxcut",
		Short:         "chaotic vs stochastic Boltzmann machines for weighted max-cut",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			viz.SetTheme(theme)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", "", "data directory (default from config)")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.Int64Var(&seed, "seed", config.DefaultSeed, "random seed")
	pf.BoolVarP(&verbose, "verbose", "v", false, "development logging")
	pf.StringVar(&theme, "theme", viz.ThemeCyberpunk.Name, "color theme")
	pf.IntVar(&chartWidth, "width", 70, "chart width")
	pf.IntVar(&chartHeight, "height", 10, "chart height")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "solve one random graph with both solvers",
		Args:  cobra.NoArgs,
		RunE:  runSingle,
	}
	addGraphFlags(runCmd)
	addSolverFlags(runCmd)
	runCmd.Flags().IntVar(&nodes, "nodes", config.DefaultNodes, "number of nodes")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "compare solvers across graph sizes",
		Args:  cobra.NoArgs,
		RunE:  runCompare,
	}
	addGraphFlags(compareCmd)
	addSolverFlags(compareCmd)
	compareCmd.Flags().IntSliceVar(&sizes, "sizes", nil, "graph sizes (default from config)")
	compareCmd.Flags().IntVar(&workers, "workers", 4, "concurrent runs, 0 for one per run")
	compareCmd.Flags().StringVar(&metricsOut, "metrics-out", "", "write prometheus metrics to file")
	compareCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the comparison")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run (latest by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&svgOut, "svg", "", "also write the energy plot as svg")

	replayCmd := &cobra.Command{
		Use:   "replay [run_id]",
		Short: "step through a stored cbm trajectory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  replayRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export trace (or results) as csv",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run as json",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "query results recorded across runs",
		Args:  cobra.NoArgs,
		RunE:  showHistory,
	}
	historyCmd.Flags().StringVar(&histSolver, "solver", "", "only this solver")
	historyCmd.Flags().IntVar(&histLimit, "limit", 20, "max rows, 0 for all")
	historyCmd.Flags().IntVar(&histBest, "best", 0, "show the best cut per solver for this graph size")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "spectrum, phase portrait and chaos diagnostics of a stored cbm run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  analyzeRun,
	}
	addSolverFlags(analyzeCmd)
	analyzeCmd.Flags().IntVar(&xUnit, "x-unit", 0, "unit on the x axis of the phase portrait")
	analyzeCmd.Flags().IntVar(&yUnit, "y-unit", 1, "unit on the y axis of the phase portrait")
	analyzeCmd.Flags().Float64Var(&divergence, "divergence", 0, "rerun from a start perturbed by this amount")
	analyzeCmd.Flags().IntVar(&sweepSteps, "sweep", 0, "temperature sweep points, 0 to skip")
	analyzeCmd.Flags().Float64Var(&sweepMaxT, "sweep-max", 5, "highest temperature of the sweep")
	analyzeCmd.Flags().StringVar(&svgOut, "svg", "", "write the unit state raster as svg")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search solver parameters on one graph",
		Args:  cobra.NoArgs,
		RunE:  tuneSolverParams,
	}
	addGraphFlags(tuneCmd)
	addSolverFlags(tuneCmd)
	tuneCmd.Flags().IntVar(&nodes, "nodes", config.DefaultNodes, "number of nodes")
	tuneCmd.Flags().StringVar(&tuneSolver, "solver", "sbm", "solver to tune (cbm, sbm)")
	tuneCmd.Flags().Float64SliceVar(&tuneTemps, "temps", []float64{0.5, 1, 2, 5, 10}, "temperatures to try")
	tuneCmd.Flags().Float64SliceVar(&tuneTEnds, "t-ends", nil, "cbm integration end times to try")
	tuneCmd.Flags().IntVar(&repeats, "repeats", 3, "seeded runs per combination")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "repeat both solvers on one graph with independent seeds",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addGraphFlags(monteCarloCmd)
	addSolverFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&nodes, "nodes", config.DefaultNodes, "number of nodes")
	monteCarloCmd.Flags().IntVar(&trials, "trials", 10, "runs per solver")
	monteCarloCmd.Flags().IntVar(&workers, "workers", 4, "concurrent runs, 0 for one per run")

	scenarioCmd := &cobra.Command{
		Use:   "scenario <file>",
		Short: "run a yaml scenario of monte carlo studies",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	rootCmd.AddCommand(runCmd, compareCmd, listCmd, plotCmd, replayCmd, exportCSVCmd,
		exportJSONCmd, historyCmd, presetsCmd, analyzeCmd, tuneCmd, monteCarloCmd, scenarioCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func addGraphFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&edgeProb, "p", config.DefaultProbability, "edge probability")
	cmd.Flags().StringVar(&encoding, "encoding", "ising", "problem encoding (ising, maxcut)")
}

func addSolverFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&cbmTemp, "cbm-temp", config.DefaultCBMTemperature, "cbm temperature")
	cmd.Flags().Float64Var(&sbmTemp, "sbm-temp", config.DefaultTemperature, "sbm temperature")
	cmd.Flags().Float64Var(&tEnd, "t-end", config.DefaultTEnd, "cbm integration end time")
	cmd.Flags().IntVar(&evalSteps, "eval-steps", config.DefaultEvalSteps, "cbm evaluation points")
	cmd.Flags().StringVar(&integrator, "integrator", "rk23", "cbm integrator")
	cmd.Flags().IntVar(&iterations, "iterations", config.DefaultIterations, "sbm sweeps")
}

// loadConfig resolves defaults, then the preset, then the config file and
// finally any flag set on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
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
	if flags.Changed("data") {
		cfg.Storage.Dir = dataDir
	}
	if flags.Changed("nodes") {
		cfg.Graph.Nodes = nodes
	}
	if flags.Changed("p") {
		cfg.Graph.EdgeProbability = edgeProb
	}
	if flags.Changed("encoding") {
		cfg.Graph.Encoding = encoding
	}
	if flags.Changed("cbm-temp") {
		cfg.CBM.Temperature = cbmTemp
	}
	if flags.Changed("sbm-temp") {
		cfg.SBM.Temperature = sbmTemp
	}
	if flags.Changed("t-end") {
		cfg.CBM.TEnd = tEnd
	}
	if flags.Changed("eval-steps") {
		cfg.CBM.EvalSteps = evalSteps
	}
	if flags.Changed("integrator") {
		cfg.CBM.Integrator = integrator
	}
	if flags.Changed("iterations") {
		cfg.SBM.Iterations = iterations
	}
	if flags.Changed("sizes") {
		cfg.Compare.Sizes = sizes
	}
	if flags.Changed("workers") {
		cfg.Compare.Workers = workers
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// storeDir is the data directory for commands that only read runs.
func storeDir(cmd *cobra.Command) (string, error) {
	if cmd.Flags().Changed("data") {
		return dataDir, nil
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return "", err
	}
	return cfg.Storage.Dir, nil
}
