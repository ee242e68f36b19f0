package sim_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/qwell/internal/eigen"
	"github.com/san-kum/qwell/internal/potentials"
	"github.com/san-kum/qwell/internal/search"
	"github.com/san-kum/qwell/internal/sim"
)

type stubRefiner struct {
	estimates map[float64]eigen.Estimate
	err       error
}

func (s stubRefiner) Solve(_ context.Context, b eigen.Bracket) (eigen.Estimate, error) {
	if est, ok := s.estimates[b.Low]; ok {
		return est, nil
	}
	return eigen.Estimate{}, s.err
}

var _ = Describe("Batch", func() {
	var (
		ctx   context.Context
		grid  *eigen.Grid
		batch *sim.Batch
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		grid, err = eigen.NewGrid(0, 0.5, 0.005)
		Expect(err).NotTo(HaveOccurred())
		batch = sim.NewBatch(nil, potentials.NewInfiniteWell(), grid, sim.WithWorkers(3))
	})

	It("keeps input order and isolates a failing candidate", func() {
		candidates := []eigen.Candidate{
			{Value: 1},
			{Value: 4},
			{Value: math.NaN(), Parity: eigen.Even},
			{Value: 9},
			{Value: 16},
		}
		outcomes := batch.SolveAll(ctx, candidates)
		Expect(outcomes).To(HaveLen(5))
		for i, o := range outcomes {
			Expect(o.Index).To(Equal(i))
		}

		sols := sim.Successes(outcomes)
		Expect(sols).To(HaveLen(4))
		energies := make([]float64, len(sols))
		for i, s := range sols {
			energies[i] = s.Energy
		}
		Expect(energies).To(Equal([]float64{1, 4, 9, 16}))

		failures := sim.Failures(outcomes)
		Expect(failures).To(HaveLen(1))
		var ce *eigen.CandidateError
		Expect(errors.As(failures[0], &ce)).To(BeTrue())
		Expect(ce.Index).To(Equal(2))
		Expect(failures[0]).To(MatchError(eigen.ErrConfiguration))
		Expect(sim.Err(outcomes)).To(HaveOccurred())
	})

	It("isolates a bracket that fails to converge", func() {
		bisector := search.NewBisector(nil, potentials.NewInfiniteWell(), grid)
		brackets := []eigen.Bracket{
			{Low: 0.7, High: 1.3, Parity: eigen.Even},
			{Low: 3.7, High: 4.3, Parity: eigen.Odd},
			{Low: 5, High: 6, Parity: eigen.Even},
			{Low: 8.7, High: 9.3, Parity: eigen.Even},
			{Low: 15.7, High: 16.3, Parity: eigen.Odd},
		}
		outcomes := batch.BracketAll(ctx, bisector, brackets)
		Expect(outcomes).To(HaveLen(5))

		failures := sim.Failures(outcomes)
		Expect(failures).To(HaveLen(1))
		Expect(eigen.IsConvergenceFailure(failures[0])).To(BeTrue())
		Expect(failures[0]).To(MatchError(eigen.ErrNoSignChange))
		var ce *eigen.CandidateError
		Expect(errors.As(failures[0], &ce)).To(BeTrue())
		Expect(ce.Index).To(Equal(2))

		sols := sim.Successes(outcomes)
		Expect(sols).To(HaveLen(4))
		for i, want := range []float64{1, 4, 9, 16} {
			Expect(sols[i].Energy).To(BeNumerically("~", want, 1e-4))
			Expect(sols[i].Parity).To(Equal(brackets[[]int{0, 1, 3, 4}[i]].Parity))
		}
	})

	It("labels, classifies and normalizes every solution", func() {
		outcomes := batch.SolveAll(ctx, []eigen.Candidate{{Value: 1}, {Value: 4}})
		Expect(sim.Err(outcomes)).NotTo(HaveOccurred())

		ground, excited := outcomes[0].Solution, outcomes[1].Solution
		Expect(ground.Label).To(Equal("ε = 1.000"))
		Expect(ground.Parity).To(Equal(eigen.Even))
		Expect(excited.Parity).To(Equal(eigen.Odd))
		Expect(ground.Normalized).To(HaveLen(grid.Len()))
		Expect(ground.Metrics["norm_error"]).To(BeNumerically("<", 1e-3))
		Expect(ground.Metrics["nodes"]).To(Equal(0.0))
		Expect(excited.Metrics["nodes"]).To(Equal(1.0))
	})

	It("produces symmetric and antisymmetric mirrored solutions", func() {
		outcomes := batch.SolveAll(ctx, []eigen.Candidate{{Value: 1}, {Value: 4}})
		for _, sol := range sim.Successes(outcomes) {
			xs, ys := sol.Mirror(grid)
			Expect(xs).To(HaveLen(2*grid.Len() - 1))
			n := len(ys)
			for i := 0; i < n; i++ {
				Expect(xs[i]).To(BeNumerically("~", -xs[n-1-i], 1e-12))
				Expect(ys[i]).To(BeNumerically("~", sol.Parity.Sign()*ys[n-1-i], 1e-12))
			}
			Expect(sol.Metrics["symmetry_error"]).To(Equal(0.0))
		}
	})

	It("refines brackets and keeps the estimate on the solution", func() {
		refiner := stubRefiner{
			estimates: map[float64]eigen.Estimate{
				0.8: {Energy: 1, Low: 0.9999995, High: 1.0000005, Iterations: 19, State: eigen.Converged},
				3.5: {Energy: 4.01, Low: 3.9, High: 4.1, Iterations: 2, State: eigen.Exhausted},
			},
			err: eigen.ErrNoSignChange,
		}
		brackets := []eigen.Bracket{
			{Low: 0.8, High: 1.1},
			{Low: 2, High: 2.5, Parity: eigen.Even},
			{Low: 3.5, High: 4.5},
		}
		outcomes := batch.BracketAll(ctx, refiner, brackets)
		Expect(outcomes).To(HaveLen(3))

		Expect(outcomes[0].OK()).To(BeTrue())
		Expect(outcomes[0].Solution.Estimate.State).To(Equal(eigen.Converged))
		Expect(outcomes[0].Solution.Parity).To(Equal(eigen.Even))

		Expect(outcomes[1].Err).To(MatchError(eigen.ErrNoSignChange))
		Expect(eigen.IsConvergenceFailure(outcomes[1].Err)).To(BeTrue())

		Expect(outcomes[2].OK()).To(BeTrue())
		Expect(outcomes[2].Solution.Estimate.Degraded()).To(BeTrue())
		Expect(outcomes[2].Solution.Parity).To(Equal(eigen.Odd))
	})

	It("fails every item when no model is configured", func() {
		empty := sim.NewBatch(nil, nil, grid)
		outcomes := empty.SolveAll(ctx, []eigen.Candidate{{Value: 1}, {Value: 4}})
		Expect(sim.Successes(outcomes)).To(BeEmpty())
		for _, o := range outcomes {
			Expect(o.Err).To(MatchError(eigen.ErrConfiguration))
		}
	})

	It("stops scheduling once the context is cancelled", func() {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		outcomes := batch.SolveAll(cancelled, []eigen.Candidate{{Value: 1}, {Value: 4}, {Value: 9}})
		Expect(outcomes).To(HaveLen(3))
		for _, o := range outcomes {
			Expect(o.Err).To(MatchError(context.Canceled))
		}
	})
})
