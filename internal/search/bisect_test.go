package search_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/qwell/internal/eigen"
	"github.com/san-kum/qwell/internal/potentials"
	"github.com/san-kum/qwell/internal/search"
	"github.com/san-kum/qwell/internal/sim"
)

var _ = Describe("Bisector", func() {
	var (
		ctx  context.Context
		grid *eigen.Grid
		well *potentials.InfiniteWell
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		grid, err = eigen.NewGrid(0, 0.5, 0.005)
		Expect(err).NotTo(HaveOccurred())
		well = potentials.NewInfiniteWell()
	})

	It("finds the infinite-well ground state in [0.8, 1.1]", func() {
		b := search.NewBisector(nil, well, grid)
		est, err := b.Solve(ctx, eigen.Bracket{Low: 0.8, High: 1.1})
		Expect(err).NotTo(HaveOccurred())
		Expect(est.State).To(Equal(eigen.Converged))
		Expect(est.Degraded()).To(BeFalse())
		Expect(est.Energy).To(BeNumerically("~", 1, 1e-5))
		Expect(est.Width()).To(BeNumerically("<", search.DefaultTolerance))
		Expect(est.Iterations).To(BeNumerically("<=", search.DefaultIterations))
	})

	It("finds odd states from a bracket around n²", func() {
		b := search.NewBisector(nil, well, grid)
		est, err := b.Solve(ctx, eigen.Bracket{Low: 3.7, High: 4.3, Parity: eigen.Odd})
		Expect(err).NotTo(HaveOccurred())
		Expect(est.Energy).To(BeNumerically("~", 4, 1e-5))
	})

	It("shrinks the endpoint residual", func() {
		b := search.NewBisector(nil, well, grid)
		br := eigen.Bracket{Low: 0.8, High: 1.1, Parity: eigen.Even}

		before, err := b.Residual(ctx, br.Mid(), br.Parity)
		Expect(err).NotTo(HaveOccurred())
		atLow, err := b.Residual(ctx, br.Low, br.Parity)
		Expect(err).NotTo(HaveOccurred())
		atHigh, err := b.Residual(ctx, br.High, br.Parity)
		Expect(err).NotTo(HaveOccurred())
		est, err := b.Solve(ctx, br)
		Expect(err).NotTo(HaveOccurred())
		after, err := b.Residual(ctx, est.Energy, br.Parity)
		Expect(err).NotTo(HaveOccurred())

		Expect(after).To(BeNumerically("<", before))
		Expect(after).To(BeNumerically("<", atLow))
		Expect(after).To(BeNumerically("<", atHigh))
		Expect(after).To(BeNumerically("<", 1e-5))
	})

	It("accepts brackets given high to low", func() {
		b := search.NewBisector(nil, well, grid)
		est, err := b.Solve(ctx, eigen.Bracket{Low: 1.1, High: 0.8})
		Expect(err).NotTo(HaveOccurred())
		Expect(est.Energy).To(BeNumerically("~", 1, 1e-5))
	})

	It("rejects a bracket without a sign change", func() {
		b := search.NewBisector(nil, well, grid)
		_, err := b.Solve(ctx, eigen.Bracket{Low: 1.5, High: 2.5, Parity: eigen.Even})
		Expect(err).To(MatchError(eigen.ErrNoSignChange))
		Expect(eigen.IsConvergenceFailure(err)).To(BeTrue())
	})

	It("returns an exhausted estimate when the cap is hit", func() {
		b := search.NewBisector(nil, well, grid, search.WithIterations(3))
		est, err := b.Solve(ctx, eigen.Bracket{Low: 0.8, High: 1.1})
		Expect(err).NotTo(HaveOccurred())
		Expect(est.State).To(Equal(eigen.Exhausted))
		Expect(est.Degraded()).To(BeTrue())
		Expect(est.Iterations).To(Equal(3))
		Expect(est.Width()).To(BeNumerically("~", 0.3/8, 1e-12))
		Expect(est.Energy).To(BeNumerically("~", (est.Low+est.High)/2, 1e-15))
	})

	It("uses the model's tuning unless overridden", func() {
		tuned := potentials.NewInfiniteWell()
		Expect(tuned.SetParam("iterations", 5)).To(Succeed())
		Expect(tuned.SetParam("tolerance", 1e-3)).To(Succeed())

		b := search.NewBisector(nil, tuned, grid)
		Expect(b.Iterations()).To(Equal(5))
		Expect(b.Tolerance()).To(Equal(1e-3))

		b = search.NewBisector(nil, tuned, grid, search.WithIterations(30), search.WithTolerance(1e-8))
		Expect(b.Iterations()).To(Equal(30))
		Expect(b.Tolerance()).To(Equal(1e-8))
	})

	It("locates finite-well levels agreeing with the transcendental roots", func() {
		z0 := 5.0
		fw := potentials.NewFiniteWellZ0(z0)
		wide, err := eigen.NewGrid(0, 2.5, 0.005)
		Expect(err).NotTo(HaveOccurred())

		roots, err := search.FiniteWellRoots(ctx, z0, search.RootOptions{})
		Expect(err).NotTo(HaveOccurred())

		b := search.NewBisector(sim.NewShooter(nil, sim.DefaultConfig()), fw, wide)
		brackets := search.AllBrackets(roots, search.DefaultMargin)
		Expect(brackets).To(HaveLen(4))
		for _, br := range brackets {
			est, err := b.Solve(ctx, br)
			Expect(err).NotTo(HaveOccurred(), "bracket %s", br)
			Expect(est.Energy).To(BeNumerically("~", br.Mid(), 1e-3))
		}
	})

	It("honours cancellation", func() {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := search.NewBisector(nil, well, grid).Solve(cancelled, eigen.Bracket{Low: 0.8, High: 1.1})
		Expect(err).To(MatchError(context.Canceled))
	})

	It("keeps the residual helper non-negative", func() {
		b := search.NewBisector(nil, well, grid)
		r, err := b.Residual(ctx, 0.5, eigen.Even)
		Expect(err).NotTo(HaveOccurred())
		Expect(r).To(Equal(math.Abs(r)))
	})
})
