package experiment

import (
	"context"
	"errors"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/MPA2620/DSML-Final-Project/internal/cbm"
	"github.com/MPA2620/DSML-Final-Project/internal/dynamo"
	"github.com/MPA2620/DSML-Final-Project/internal/graph"
	"github.com/MPA2620/DSML-Final-Project/internal/sbm"
	"github.com/MPA2620/DSML-Final-Project/internal/solver"
	"github.com/MPA2620/DSML-Final-Project/internal/telemetry"
)

var errBroken = errors.New("broken solver")

type brokenSolver struct{}

func (brokenSolver) Name() string { return "broken" }

func (brokenSolver) Solve(context.Context, *solver.Problem, *rand.Rand) (*solver.Result, error) {
	return nil, errBroken
}

func testConfig() Config {
	return Config{
		Sizes:           []int{4, 5},
		EdgeProbability: 1.0,
		Weights:         graph.WeightRange{Lo: 1, Hi: 2},
		Encoding:        solver.EncodingMaxCut,
		Seed:            7,
		Workers:         2,
	}
}

func testRegistry() *Registry {
	c := cbm.DefaultConfig()
	c.Span = dynamo.Span{Start: 0, End: 1}
	c.EvalSteps = 50
	return DefaultRegistry(c, sbm.Config{Temperature: 0.5, Iterations: 300})
}

var _ = Describe("Registry", func() {
	It("lists solvers in registration order", func() {
		r := testRegistry()
		Expect(r.ListSolvers()).To(Equal([]string{cbm.Name, sbm.Name}))

		r.Register(cbm.Name, func() solver.Solver { return brokenSolver{} })
		Expect(r.ListSolvers()).To(Equal([]string{cbm.Name, sbm.Name}))
	})

	It("rejects unknown solvers", func() {
		_, err := NewRegistry().GetSolver("annealer")
		Expect(err).To(HaveOccurred())
	})

	It("knows the integrators", func() {
		Expect(testRegistry().ListIntegrators()).To(ContainElements("rk23", "rk45"))
	})
})

var _ = Describe("Orchestrator", func() {
	var (
		ctx       context.Context
		collector *telemetry.Collector
	)

	BeforeEach(func() {
		ctx = context.Background()
		collector = telemetry.NewCollector()
	})

	It("runs every solver on every size", func() {
		o := New(testConfig(), testRegistry(), WithTelemetry(collector))

		rows, err := o.Run(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(4))

		var got []string
		for _, row := range rows {
			Expect(row.Err).NotTo(HaveOccurred())
			Expect(row.Result).NotTo(BeNil())
			Expect(row.CutValue).To(BeNumerically("~", row.CutWeight, 1e-9))
			Expect(row.ElapsedSeconds).To(BeNumerically(">=", 0))
			got = append(got, row.Solver)
		}
		Expect(got).To(Equal([]string{cbm.Name, sbm.Name, cbm.Name, sbm.Name}))
		Expect(rows[0].GraphSize).To(Equal(4))
		Expect(rows[2].GraphSize).To(Equal(5))

		Expect(rows[1].CutValue).To(BeNumerically("~", 4, 1e-9))
		Expect(rows[3].CutValue).To(BeNumerically("~", 6, 1e-9))

		Expect(testutil.ToFloat64(collector.Runs.WithLabelValues(sbm.Name, telemetry.StatusOK))).To(Equal(2.0))
	})

	It("is reproducible for a fixed seed", func() {
		a, err := New(testConfig(), testRegistry()).Run(ctx)
		Expect(err).NotTo(HaveOccurred())
		b, err := New(testConfig(), testRegistry()).Run(ctx)
		Expect(err).NotTo(HaveOccurred())

		for i := range a {
			Expect(a[i].CutValue).To(Equal(b[i].CutValue))
			Expect(a[i].Result.BestAssignment).To(Equal(b[i].Result.BestAssignment))
		}
	})

	It("keeps going when one solver fails", func() {
		r := testRegistry()
		r.Register("broken", func() solver.Solver { return brokenSolver{} })
		o := New(testConfig(), r, WithTelemetry(collector))

		rows, err := o.Run(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(6))

		failed := 0
		for _, row := range rows {
			if row.Solver == "broken" {
				Expect(row.Err).To(MatchError(errBroken))
				Expect(row.ErrString()).To(Equal(errBroken.Error()))
				Expect(row.Result).To(BeNil())
				failed++
				continue
			}
			Expect(row.Err).NotTo(HaveOccurred())
		}
		Expect(failed).To(Equal(2))
		Expect(testutil.ToFloat64(collector.Runs.WithLabelValues("broken", telemetry.StatusError))).To(Equal(2.0))
	})

	It("surfaces a solver's invalid temperature as a failed row", func() {
		c := cbm.DefaultConfig()
		c.Temperature = 0
		o := New(testConfig(), DefaultRegistry(c, sbm.DefaultConfig()))

		rows, err := o.Run(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(rows[0].Err).To(MatchError(dynamo.ErrInvalidArgument))
		Expect(rows[1].Err).NotTo(HaveOccurred())
	})

	DescribeTable("rejects invalid configuration",
		func(mutate func(*Config)) {
			cfg := testConfig()
			mutate(&cfg)
			_, err := New(cfg, testRegistry()).Run(ctx)
			Expect(err).To(MatchError(dynamo.ErrInvalidArgument))
		},
		Entry("no sizes", func(c *Config) { c.Sizes = nil }),
		Entry("zero size", func(c *Config) { c.Sizes = []int{4, 0} }),
		Entry("probability above one", func(c *Config) { c.EdgeProbability = 1.5 }),
		Entry("empty weight range", func(c *Config) { c.Weights = graph.WeightRange{Lo: 3, Hi: 3} }),
	)

	It("fails on an empty registry", func() {
		_, err := New(testConfig(), NewRegistry()).Run(ctx)
		Expect(err).To(MatchError(dynamo.ErrInvalidArgument))
	})

	It("solves a single problem with every solver", func() {
		o := New(testConfig(), testRegistry())
		p, err := o.BuildProblem(rand.New(rand.NewSource(1)), 4)
		Expect(err).NotTo(HaveOccurred())

		rows := o.Single(ctx, p)
		Expect(rows).To(HaveLen(2))
		Expect(rows[0].Result.Trace).To(HaveLen(50))
		Expect(rows[1].Result.History).To(HaveLen(300))
	})
})
