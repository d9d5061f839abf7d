package main

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MPA2620/DSML-Final-Project/internal/analysis"
	"github.com/MPA2620/DSML-Final-Project/internal/cbm"
	"github.com/MPA2620/DSML-Final-Project/internal/config"
	"github.com/MPA2620/DSML-Final-Project/internal/experiment"
	"github.com/MPA2620/DSML-Final-Project/internal/export"
	"github.com/MPA2620/DSML-Final-Project/internal/graph"
	"github.com/MPA2620/DSML-Final-Project/internal/metrics"
	"github.com/MPA2620/DSML-Final-Project/internal/solver"
	"github.com/MPA2620/DSML-Final-Project/internal/storage"
	"github.com/MPA2620/DSML-Final-Project/internal/telemetry"
	"github.com/MPA2620/DSML-Final-Project/internal/viz"
)

func runSingle(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	o := experiment.New(cfg.ExperimentConfig(cfg.Graph.Nodes), cfg.Registry(), experiment.WithLogger(logger))
	p, err := o.BuildProblem(rand.New(rand.NewSource(cfg.Seed)), cfg.Graph.Nodes)
	if err != nil {
		return err
	}

	fmt.Printf("graph: %d nodes, %d edges, total weight %.2f, encoding %s\n\n",
		p.Graph.N, p.Graph.EdgeCount(), p.Graph.TotalWeight(), p.Encoding)

	rows := o.Single(cmd.Context(), p)
	fmt.Println(viz.ResultsTable(rows))

	meta := &storage.RunMetadata{
		Kind:        storage.KindRun,
		Seed:        cfg.Seed,
		Nodes:       cfg.Graph.Nodes,
		Encoding:    string(p.Encoding),
		Integrator:  cfg.CBM.Integrator,
		Temperature: cfg.CBM.Temperature,
		Weights:     p.Graph.Weights,
	}
	if p.Encoding == solver.EncodingIsing {
		meta.Biases = p.Biases
	}

	var trace solver.Trace
	for _, r := range rows {
		if r.Result == nil {
			continue
		}
		best := r.Result.BestAssignment
		fmt.Printf("%s: best assignment %s (%d/%d on), converged=%v\n", r.Solver, best, best.Ones(), len(best), r.Result.Converged)
		if len(r.Result.Trace) > 0 {
			trace = r.Result.Trace
			meta.Metrics = metrics.ObserveAll(trace, metrics.Defaults()...)
			fmt.Println()
			fmt.Println(viz.EnergyChart(trace, chartWidth, chartHeight))
		}
		if len(r.Result.History) > 0 {
			fmt.Println()
			fmt.Println(viz.HistoryChart(r.Result.History, chartWidth, chartHeight))
		}
		fmt.Println()
	}

	if noSave {
		return nil
	}
	runID, err := save(cmd, cfg, logger, meta, trace, rows)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	return nil
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	collector := telemetry.NewCollector()
	o := experiment.New(cfg.ExperimentConfig(), cfg.Registry(),
		experiment.WithLogger(logger), experiment.WithTelemetry(collector))

	rows, err := o.Run(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Println(viz.ResultsTable(rows))
	printComparisonCharts(rows)

	if metricsOut != "" {
		if err := collector.WriteFile(metricsOut); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
		logger.Info("metrics written", zap.String("path", metricsOut))
	}

	if noSave {
		return nil
	}
	meta := &storage.RunMetadata{
		Kind:        storage.KindCompare,
		Seed:        cfg.Seed,
		Sizes:       cfg.Compare.Sizes,
		Encoding:    cfg.Graph.Encoding,
		Integrator:  cfg.CBM.Integrator,
		Temperature: cfg.CBM.Temperature,
	}
	runID, err := save(cmd, cfg, logger, meta, nil, rows)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	return nil
}

func printComparisonCharts(rows []experiment.Row) {
	names, sz, cuts := viz.ComparisonSeries(rows, "cut")
	if len(sz) < 2 {
		return
	}
	labels := make([]string, len(sz))
	for i, n := range sz {
		labels[i] = strconv.Itoa(n)
	}
	caption := "over sizes " + strings.Join(labels, ", ") + " (" + strings.Join(names, ", ") + ")"

	fmt.Println()
	fmt.Println(viz.SeriesChart("cut value "+caption, names, cuts, chartWidth, chartHeight))
	_, _, times := viz.ComparisonSeries(rows, "time")
	fmt.Println()
	fmt.Println(viz.SeriesChart("seconds "+caption, names, times, chartWidth, chartHeight))
}

// save stores the run and, when configured, appends its rows to the history
// database. A history failure is logged and does not fail the command.
func save(cmd *cobra.Command, cfg *config.Config, logger *zap.Logger, meta *storage.RunMetadata, trace solver.Trace, rows []experiment.Row) (string, error) {
	st := storage.New(cfg.Storage.Dir)
	if err := st.Init(); err != nil {
		return "", err
	}
	runID, err := st.Save(meta, trace, rows)
	if err != nil {
		return "", err
	}
	logger.Info("run stored", zap.String("run_id", runID), zap.String("dir", cfg.Storage.Dir))

	if cfg.Storage.HistoryDB == "" {
		return runID, nil
	}
	dbPath := cfg.Storage.HistoryDB
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(cfg.Storage.Dir, dbPath)
	}
	h, err := storage.OpenHistory(cmd.Context(), dbPath)
	if err != nil {
		logger.Warn("history unavailable", zap.Error(err))
		return runID, nil
	}
	defer h.Close()
	if err := h.Record(cmd.Context(), runID, cfg.Seed, rows); err != nil {
		logger.Warn("history record failed", zap.String("run_id", runID), zap.Error(err))
	}
	return runID, nil
}

func openStore(cmd *cobra.Command, args []string) (*storage.Store, string, error) {
	dir, err := storeDir(cmd)
	if err != nil {
		return nil, "", err
	}
	st := storage.New(dir)
	id := ""
	if len(args) > 0 {
		id = args[0]
	}
	runID, err := st.Resolve(id)
	if err != nil {
		return nil, "", err
	}
	return st, runID, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	dir, err := storeDir(cmd)
	if err != nil {
		return err
	}
	runs, err := storage.New(dir).List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		graphs := strconv.Itoa(run.Nodes)
		if run.Kind == storage.KindCompare {
			graphs = fmt.Sprint(run.Sizes)
		}
		best := make([]string, 0, len(run.Solvers))
		for _, s := range run.Solvers {
			if s.Error == "" {
				best = append(best, fmt.Sprintf("%s=%.2f", s.Solver, s.CutValue))
			}
		}
		rows = append(rows, []string{
			run.ID,
			run.Kind,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			graphs,
			run.Encoding,
			strconv.FormatInt(run.Seed, 10),
			strings.Join(best, " "),
		})
	}
	fmt.Println(viz.Table([]string{"id", "kind", "time", "nodes", "encoding", "seed", "cuts"}, rows))
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	st, runID, err := openStore(cmd, args)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	fmt.Println(viz.Header(fmt.Sprintf("%s (%s, seed %d)", meta.ID, meta.Kind, meta.Seed)))
	fmt.Println()

	if meta.HasTrace {
		trace, err := st.LoadTrace(runID)
		if err != nil {
			return err
		}
		fmt.Println(viz.EnergyChart(trace, chartWidth, chartHeight))
		fmt.Println()
		if svgOut != "" {
			o := export.DefaultOptions()
			o.Title = "energy of " + meta.ID
			if err := writeSVG(svgOut, func() (string, error) { return export.EnergySVG(trace, o) }); err != nil {
				return err
			}
		}
		values := metrics.ObserveAll(trace, metrics.Defaults()...)
		names := make([]string, 0, len(values))
		for name := range values {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Println(viz.Metric(name, fmt.Sprintf("%.6g", values[name])))
		}
		return nil
	}

	rows, err := st.LoadResults(runID)
	if err != nil {
		return err
	}
	fmt.Println(viz.ResultsTable(rows))
	printComparisonCharts(rows)
	return nil
}

func replayRun(cmd *cobra.Command, args []string) error {
	st, runID, err := openStore(cmd, args)
	if err != nil {
		return err
	}
	trace, err := st.LoadTrace(runID)
	if err != nil {
		return fmt.Errorf("run %s has no trace: %w", runID, err)
	}
	return viz.RunReplay(runID, trace)
}

func output() (io.Writer, func() error, error) {
	if outFile == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outFile)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st, runID, err := openStore(cmd, args)
	if err != nil {
		return err
	}
	w, done, err := output()
	if err != nil {
		return err
	}
	if err := st.ExportCSV(runID, w); err != nil {
		done()
		return err
	}
	return done()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st, runID, err := openStore(cmd, args)
	if err != nil {
		return err
	}
	w, done, err := output()
	if err != nil {
		return err
	}
	if err := st.ExportJSON(runID, w); err != nil {
		done()
		return err
	}
	return done()
}

func showHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Storage.HistoryDB == "" {
		return fmt.Errorf("history database is disabled in the configuration")
	}
	dbPath := cfg.Storage.HistoryDB
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(cfg.Storage.Dir, dbPath)
	}
	if _, err := os.Stat(dbPath); err != nil {
		fmt.Println("no history recorded yet")
		return nil
	}

	h, err := storage.OpenHistory(cmd.Context(), dbPath)
	if err != nil {
		return err
	}
	defer h.Close()

	if histBest > 0 {
		names := cfg.Registry().ListSolvers()
		rows := make([][]string, 0, len(names))
		for _, name := range names {
			best, err := h.Best(cmd.Context(), name, histBest)
			if err != nil {
				return err
			}
			if best == nil {
				rows = append(rows, []string{name, "-", "-", "-"})
				continue
			}
			rows = append(rows, []string{name, strconv.FormatFloat(best.CutValue, 'f', 2, 64), best.RunID, strconv.FormatInt(best.Seed, 10)})
		}
		fmt.Println(viz.Table([]string{"solver", "best cut", "run", "seed"}, rows))
		return nil
	}

	hist, err := h.Rows(cmd.Context(), histSolver, histLimit)
	if err != nil {
		return err
	}
	rows := make([][]string, len(hist))
	for i, r := range hist {
		rows[i] = []string{
			r.RecordedAt.Local().Format("2006-01-02 15:04:05"),
			r.RunID,
			strconv.Itoa(r.GraphSize),
			r.Solver,
			strconv.FormatFloat(r.CutValue, 'f', 2, 64),
			strconv.FormatFloat(r.ElapsedSeconds, 'f', 4, 64),
			r.Error,
		}
	}
	fmt.Println(viz.Table([]string{"time", "run", "nodes", "solver", "cut value", "time (s)", "error"}, rows))
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	names := config.ListPresets()
	rows := make([][]string, len(names))
	for i, name := range names {
		p := config.GetPreset(name)
		rows[i] = []string{
			name,
			strconv.Itoa(p.Graph.Nodes),
			strconv.FormatFloat(p.Graph.EdgeProbability, 'f', 2, 64),
			fmt.Sprintf("[%d,%d)", p.Graph.WeightLo, p.Graph.WeightHi),
			p.Graph.Encoding,
			strconv.FormatFloat(p.CBM.Temperature, 'g', -1, 64),
			strconv.FormatFloat(p.SBM.Temperature, 'g', -1, 64),
			fmt.Sprint(p.Compare.Sizes),
		}
	}
	fmt.Println(viz.Table([]string{"preset", "nodes", "p", "weights", "encoding", "cbm T", "sbm T", "sizes"}, rows))
	reg := config.DefaultConfig().Registry()
	fmt.Println(viz.Metric("solvers", strings.Join(reg.ListSolvers(), ", ")))
	fmt.Println(viz.Metric("integrators", strings.Join(reg.ListIntegrators(), ", ")))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st, runID, err := openStore(cmd, args)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	trace, err := st.LoadTrace(runID)
	if err != nil {
		return fmt.Errorf("run %s has no trace: %w", runID, err)
	}
	if len(trace) < 2 {
		return fmt.Errorf("run %s: trace too short to analyze", runID)
	}

	energies := trace.Energies()
	fmt.Println(viz.Header("energy spectrum"))
	spectrum := analysis.PowerSpectrum(energies)
	if len(spectrum) > 1 {
		fmt.Println(viz.EnergyChart(trace, chartWidth, chartHeight))
		fmt.Println()
		fmt.Println(viz.SeriesChart("power spectrum of energy", []string{"power"}, [][]float64{spectrum[1:]}, chartWidth, chartHeight))
	}
	if period, ok := analysis.DominantPeriod(trace.Times(), energies); ok {
		fmt.Println(viz.Metric("period", fmt.Sprintf("%.4f", period)))
	} else {
		fmt.Println(viz.Metric("period", "none"))
	}
	fmt.Println(viz.Metric("entropy", fmt.Sprintf("%.4f", analysis.SpectralEntropy(energies))))
	for _, m := range metrics.Defaults() {
		for _, s := range trace {
			m.Observe(s)
		}
		fmt.Println(viz.Metric(m.Name(), fmt.Sprintf("%.6g", m.Value())))
	}

	pts, err := analysis.PhasePortrait(trace, xUnit, yUnit)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Println(viz.Header(fmt.Sprintf("phase portrait: unit %d vs unit %d", xUnit, yUnit)))
	fmt.Print(viz.Scatter(pts, chartWidth/2, chartHeight))

	if svgOut != "" {
		o := export.DefaultOptions()
		o.Title = "unit states of " + meta.ID
		if err := writeSVG(svgOut, func() (string, error) { return export.StateRaster(trace, o) }); err != nil {
			return err
		}
	}

	if divergence == 0 && sweepSteps == 0 {
		return nil
	}

	p, err := problemFromMetadata(meta)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cbmCfg := cfg.CBMSolverConfig()
	if !cmd.Flags().Changed("cbm-temp") && meta.Temperature > 0 {
		cbmCfg.Temperature = meta.Temperature
	}
	if !cmd.Flags().Changed("integrator") && meta.Integrator != "" {
		cbmCfg.Integrator = meta.Integrator
	}
	x0 := trace[0].State

	if divergence != 0 {
		d, err := analysis.Divergence(cmd.Context(), cbm.New(cbmCfg), p, x0, divergence)
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Println(viz.Header("divergence from a perturbed start"))
		fmt.Println(viz.SeriesChart("separation", []string{"separation"}, [][]float64{d.Separations}, chartWidth, chartHeight))
		fmt.Println(viz.Metric("exponent", fmt.Sprintf("%.4f", d.Exponent)))
		fmt.Println(viz.Metric("hamming", strconv.Itoa(d.Hamming[len(d.Hamming)-1])))
	}

	if sweepSteps > 0 {
		points, err := analysis.TemperatureSweep(cmd.Context(), cbmCfg, p, x0, cbmCfg.Temperature, sweepMaxT, sweepSteps)
		if err != nil {
			return err
		}
		rows := make([][]string, len(points))
		for i, pt := range points {
			errMsg := ""
			if pt.Err != nil {
				errMsg = pt.Err.Error()
			}
			es := make([]string, len(pt.Energies))
			for j, e := range pt.Energies {
				es[j] = strconv.FormatFloat(e, 'f', 2, 64)
			}
			rows[i] = []string{
				strconv.FormatFloat(pt.Temperature, 'f', 3, 64),
				strconv.Itoa(len(pt.Energies)),
				strings.Join(es, " "),
				errMsg,
			}
		}
		fmt.Println()
		fmt.Println(viz.Table([]string{"temperature", "states", "energies", "error"}, rows))
	}
	return nil
}

func writeSVG(path string, render func() (string, error)) error {
	svg, err := render()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(svg), 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func problemFromMetadata(meta *storage.RunMetadata) (*solver.Problem, error) {
	if len(meta.Weights) == 0 {
		return nil, fmt.Errorf("run %s does not record its graph", meta.ID)
	}
	g, err := graph.FromMatrix(meta.Weights)
	if err != nil {
		return nil, err
	}
	biases := meta.Biases
	if biases == nil {
		biases = make([]float64, g.N)
	}
	return solver.NewProblem(g, biases, solver.Encoding(meta.Encoding))
}
