package search_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/qwell/internal/eigen"
	"github.com/san-kum/qwell/internal/potentials"
	"github.com/san-kum/qwell/internal/search"
	"github.com/san-kum/qwell/internal/sim"
)

var _ = Describe("Scan", func() {
	var (
		ctx     context.Context
		grid    *eigen.Grid
		osc     *potentials.HarmonicOscillator
		shooter *sim.Shooter
		levels  = search.EnergyRange{Min: 0.03, Max: 3.2, Step: 0.05}
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		grid, err = eigen.NewGrid(0, 7, 0.02)
		Expect(err).NotTo(HaveOccurred())
		osc = potentials.NewHarmonicOscillator()
		shooter = sim.NewShooter(nil, sim.DefaultConfig())
	})

	It("brackets the even oscillator levels", func() {
		brackets, err := search.Scan(ctx, shooter, osc, grid, levels, eigen.Even)
		Expect(err).NotTo(HaveOccurred())
		Expect(brackets).To(HaveLen(2))
		for i, level := range []float64{0.5, 2.5} {
			Expect(brackets[i].Low).To(BeNumerically("<=", level))
			Expect(brackets[i].High).To(BeNumerically(">=", level))
			Expect(brackets[i].Parity).To(Equal(eigen.Even))
		}
	})

	It("scans both parities when none is given", func() {
		brackets, err := search.Scan(ctx, shooter, osc, grid, levels, eigen.ParityAuto)
		Expect(err).NotTo(HaveOccurred())
		Expect(brackets).To(HaveLen(3))
		Expect(brackets[2].Parity).To(Equal(eigen.Odd))
		Expect(brackets[2].Mid()).To(BeNumerically("~", 1.5, 0.05))
	})

	It("feeds brackets into bisection", func() {
		brackets, err := search.Scan(ctx, shooter, osc, grid, levels, eigen.Odd)
		Expect(err).NotTo(HaveOccurred())
		Expect(brackets).To(HaveLen(1))

		est, err := search.NewBisector(shooter, osc, grid).Solve(ctx, brackets[0])
		Expect(err).NotTo(HaveOccurred())
		Expect(est.Energy).To(BeNumerically("~", osc.Level(1), 1e-4))
	})

	It("validates the energy range", func() {
		_, err := search.Scan(ctx, shooter, osc, grid, search.EnergyRange{Min: 1, Max: 0, Step: 0.1}, eigen.Even)
		Expect(err).To(MatchError(eigen.ErrConfiguration))
	})

	It("includes both ends of the range", func() {
		s := search.EnergyRange{Min: 0, Max: 1, Step: 0.3}.Samples()
		Expect(s).To(HaveLen(5))
		Expect(s[0]).To(Equal(0.0))
		Expect(s[4]).To(Equal(1.0))
	})
})
