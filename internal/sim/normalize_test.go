package sim_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/qwell/internal/eigen"
	"github.com/san-kum/qwell/internal/metrics"
	"github.com/san-kum/qwell/internal/sim"
)

var _ = Describe("Normalize", func() {
	var grid *eigen.Grid

	BeforeEach(func() {
		var err error
		grid, err = eigen.NewGrid(0, 0.5, 0.001)
		Expect(err).NotTo(HaveOccurred())
	})

	sample := func(f func(float64) float64) []float64 {
		out := make([]float64, grid.Len())
		for i := range out {
			out[i] = f(grid.At(i))
		}
		return out
	}

	It("scales the ground state to √2·cos(πx)", func() {
		raw := sample(func(x float64) float64 { return 3 * math.Cos(math.Pi*x) })
		norm, err := sim.Normalize(grid, raw)
		Expect(err).NotTo(HaveOccurred())
		for i, v := range norm {
			Expect(v).To(BeNumerically("~", math.Sqrt2*math.Cos(math.Pi*grid.At(i)), 1e-3))
		}
	})

	It("integrates to one over the mirrored domain", func() {
		for _, p := range []eigen.Parity{eigen.Even, eigen.Odd} {
			raw := sample(func(x float64) float64 {
				if p == eigen.Odd {
					return 0.2 * math.Sin(2*math.Pi*x)
				}
				return math.Cos(3 * math.Pi * x)
			})
			sol := eigen.NewSolution(1, p, raw)
			Expect(sim.NormalizeSolution(grid, sol)).To(Succeed())

			xs, ys := sol.Mirror(grid)
			Expect(metrics.Density(xs, ys)).To(BeNumerically("~", 1, 1e-3))
		}
	})

	It("keeps the raw samples untouched", func() {
		raw := sample(func(x float64) float64 { return 5 * math.Cos(math.Pi*x) })
		sol := eigen.NewSolution(1, eigen.Even, raw)
		Expect(sim.NormalizeSolution(grid, sol)).To(Succeed())
		Expect(sol.Raw[0]).To(Equal(5.0))
		Expect(sol.Normalized[0]).NotTo(Equal(5.0))
	})

	It("averages the lower and upper rectangle rules", func() {
		raw := sample(func(x float64) float64 { return 1 - x })
		lower := sim.Integrate(grid, raw, sim.RuleLower)
		upper := sim.Integrate(grid, raw, sim.RuleUpper)
		Expect(lower).To(BeNumerically(">", upper))
		// ∫₀^½ (1-x)² dx = 7/24
		Expect((lower + upper) / 2).To(BeNumerically("~", 7.0/24, 1e-6))
	})

	It("fails on empty input", func() {
		_, err := sim.Normalize(grid, nil)
		Expect(err).To(MatchError(eigen.ErrEmptyResult))
		Expect(eigen.IsNormalizationError(err)).To(BeTrue())
	})

	It("fails on a zero wavefunction", func() {
		_, err := sim.Normalize(grid, make([]float64, grid.Len()))
		Expect(err).To(MatchError(eigen.ErrZeroNorm))
	})
})
