package main

import (
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MPA2620/DSML-Final-Project/internal/automation"
	"github.com/MPA2620/DSML-Final-Project/internal/cbm"
	"github.com/MPA2620/DSML-Final-Project/internal/config"
	"github.com/MPA2620/DSML-Final-Project/internal/experiment"
	"github.com/MPA2620/DSML-Final-Project/internal/optim"
	"github.com/MPA2620/DSML-Final-Project/internal/solver"
	"github.com/MPA2620/DSML-Final-Project/internal/viz"
)

// buildProblem draws the single graph a run, tune or montecarlo works on.
func buildProblem(cfg *config.Config, logger *zap.Logger) (*solver.Problem, error) {
	o := experiment.New(cfg.ExperimentConfig(cfg.Graph.Nodes), cfg.Registry(), experiment.WithLogger(logger))
	return o.BuildProblem(rand.New(rand.NewSource(cfg.Seed)), cfg.Graph.Nodes)
}

func tuneSolverParams(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	build, err := optim.Builder(tuneSolver, cfg.CBMSolverConfig(), cfg.SBMSolverConfig())
	if err != nil {
		return err
	}
	params := []string{optim.ParamTemperature}
	ranges := [][]float64{tuneTemps}
	if len(tuneTEnds) > 0 {
		if tuneSolver != cbm.Name {
			return fmt.Errorf("--t-ends only applies to the cbm solver")
		}
		params = append(params, optim.ParamTEnd)
		ranges = append(ranges, tuneTEnds)
	}
	gs, err := optim.NewGridSearch(params, ranges)
	if err != nil {
		return err
	}

	p, err := buildProblem(cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("tuning",
		zap.String("solver", tuneSolver),
		zap.Int("nodes", p.Size()),
		zap.Int("combinations", gs.Size()),
		zap.Int("repeats", repeats),
	)

	best, trials, searchErr := gs.Search(cmd.Context(), optim.SolverObjective(p, build, repeats, cfg.Seed))

	rows := make([][]string, len(trials))
	for i, tr := range trials {
		mark, score, errMsg := "", strconv.FormatFloat(tr.Score, 'f', 3, 64), ""
		if tr.Err != nil {
			score, errMsg = "-", tr.Err.Error()
		}
		if best != nil && &trials[i] == best {
			mark = "*"
		}
		rows[i] = []string{mark, formatParams(tr.Params), score, errMsg}
	}
	fmt.Println(viz.Table([]string{"", "parameters", "mean cut", "error"}, rows))
	if searchErr != nil {
		return searchErr
	}
	fmt.Printf("best for %s: %s (mean cut %.3f over %d runs)\n", tuneSolver, formatParams(best.Params), best.Score, repeats)
	return nil
}

func formatParams(params map[string]float64) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + strconv.FormatFloat(params[k], 'g', -1, 64)
	}
	return strings.Join(parts, " ")
}

func summaryTable(stats []automation.Summary) string {
	rows := make([][]string, len(stats))
	for i, s := range stats {
		rows[i] = []string{
			s.Solver,
			strconv.Itoa(s.Trials),
			strconv.Itoa(s.Failures),
			strconv.FormatFloat(s.Mean, 'f', 3, 64),
			strconv.FormatFloat(s.Std, 'f', 3, 64),
			strconv.FormatFloat(s.Best, 'f', 3, 64),
			fmt.Sprintf("%.0f%%", s.HitRate*100),
		}
	}
	return viz.Table([]string{"solver", "trials", "failed", "mean", "std", "best", "hit rate"}, rows)
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	p, err := buildProblem(cfg, logger)
	if err != nil {
		return err
	}
	results, err := automation.RunMonteCarlo(cmd.Context(), p, cfg.Registry(),
		automation.MonteCarloConfig{Trials: trials, Seed: cfg.Seed, Workers: cfg.Compare.Workers}, logger)
	if err != nil {
		return err
	}

	fmt.Printf("graph: %d nodes, %d edges, encoding %s\n\n", p.Graph.N, p.Graph.EdgeCount(), p.Encoding)
	fmt.Println(summaryTable(automation.MonteCarloStats(results)))
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	base, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if sc.Name != "" {
		fmt.Println(viz.Header(sc.Name))
	}
	if sc.Description != "" {
		fmt.Println(sc.Description)
	}

	steps, err := automation.RunScenario(cmd.Context(), sc, base, logger)
	for _, st := range steps {
		fmt.Println()
		fmt.Printf("%s: %d nodes, seed %d, encoding %s\n", st.Name, st.Config.Graph.Nodes, st.Config.Seed, st.Config.Graph.Encoding)
		fmt.Println(summaryTable(st.Summaries))
	}
	return err
}
