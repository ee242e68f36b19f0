package sim_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/qwell/internal/eigen"
	"github.com/san-kum/qwell/internal/integrators"
	"github.com/san-kum/qwell/internal/potentials"
	"github.com/san-kum/qwell/internal/sim"
)

var _ = Describe("Shooter", func() {
	var (
		ctx     context.Context
		grid    *eigen.Grid
		well    *potentials.InfiniteWell
		shooter *sim.Shooter
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		grid, err = eigen.NewGrid(0, 0.5, 0.005)
		Expect(err).NotTo(HaveOccurred())
		well = potentials.NewInfiniteWell()
		shooter = sim.NewShooter(nil, sim.DefaultConfig())
	})

	It("reproduces the even ground state of the infinite well", func() {
		raw, err := shooter.Shoot(ctx, well, grid, 1, eigen.Even)
		Expect(err).NotTo(HaveOccurred())
		Expect(raw).To(HaveLen(grid.Len()))
		for i, v := range raw {
			Expect(v).To(BeNumerically("~", math.Cos(math.Pi*grid.At(i)), 1e-6))
		}
		Expect(raw[len(raw)-1]).To(BeNumerically("~", 0, 1e-6))
	})

	It("starts odd solutions at zero with unit slope", func() {
		raw, err := shooter.Shoot(ctx, well, grid, 4, eigen.Odd)
		Expect(err).NotTo(HaveOccurred())
		Expect(raw[0]).To(Equal(0.0))
		k := 2 * math.Pi
		Expect(raw[10]).To(BeNumerically("~", math.Sin(k*grid.At(10))/k, 1e-6))
	})

	It("classifies the parity of auto candidates from the energy", func() {
		raw, err := shooter.Shoot(ctx, well, grid, 4, eigen.ParityAuto)
		Expect(err).NotTo(HaveOccurred())
		Expect(raw[0]).To(Equal(0.0))

		raw, err = shooter.Shoot(ctx, well, grid, 9, eigen.ParityAuto)
		Expect(err).NotTo(HaveOccurred())
		Expect(raw[0]).To(Equal(1.0))
	})

	It("agrees with fixed-step RK4", func() {
		rk4 := sim.NewShooter(func() eigen.Integrator { return integrators.NewRK4() }, sim.DefaultConfig())
		a, err := shooter.Endpoint(ctx, well, grid, 2.5, eigen.Even)
		Expect(err).NotTo(HaveOccurred())
		b, err := rk4.Endpoint(ctx, well, grid, 2.5, eigen.Even)
		Expect(err).NotTo(HaveOccurred())
		Expect(a).To(BeNumerically("~", b, 1e-6))
	})

	It("does not treat off-eigenvalue energies as errors", func() {
		end, err := shooter.Endpoint(ctx, well, grid, 0.5, eigen.Even)
		Expect(err).NotTo(HaveOccurred())
		Expect(math.Abs(end)).To(BeNumerically(">", 0.1))
	})

	It("rejects non-finite energies", func() {
		_, err := shooter.Shoot(ctx, well, grid, math.NaN(), eigen.Even)
		Expect(err).To(MatchError(eigen.ErrConfiguration))
	})

	It("requires a model and a grid", func() {
		_, err := shooter.Shoot(ctx, nil, grid, 1, eigen.Even)
		Expect(err).To(MatchError(eigen.ErrConfiguration))
		_, err = shooter.Shoot(ctx, well, nil, 1, eigen.Even)
		Expect(err).To(MatchError(eigen.ErrConfiguration))
		_, err = shooter.Endpoint(ctx, well, nil, 1, eigen.Even)
		Expect(err).To(MatchError(eigen.ErrConfiguration))
		_, err = shooter.Endpoint(ctx, nil, grid, 1, eigen.Even)
		Expect(err).To(MatchError(eigen.ErrConfiguration))
	})

	It("stops when the context is cancelled", func() {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := shooter.Shoot(cancelled, well, grid, 1, eigen.Even)
		Expect(err).To(MatchError(context.Canceled))
	})

	It("reports divergence with the failing position", func() {
		harmonic := potentials.NewHarmonicOscillator()
		wide, err := eigen.NewGrid(0, 60, 0.1)
		Expect(err).NotTo(HaveOccurred())

		_, err = sim.NewShooter(func() eigen.Integrator { return integrators.NewRK4() }, sim.DefaultConfig()).
			Shoot(ctx, harmonic, wide, 0.3, eigen.Even)
		Expect(err).To(MatchError(eigen.ErrDiverged))

		var se *eigen.ShootError
		Expect(errors.As(err, &se)).To(BeTrue())
		Expect(se.X).To(BeNumerically(">", 0))
	})
})
