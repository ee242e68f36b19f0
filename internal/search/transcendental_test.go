package search_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/qwell/internal/eigen"
	"github.com/san-kum/qwell/internal/search"
)

var _ = Describe("FiniteWellRoots", func() {
	ctx := context.Background()

	It("finds exactly one even root for z0 = 1", func() {
		roots, err := search.FiniteWellRoots(ctx, 1, search.RootOptions{})
		Expect(err).NotTo(HaveOccurred())
		Expect(roots.Even).To(HaveLen(1))
		Expect(roots.Odd).To(BeEmpty())
		Expect(roots.Even[0]).To(BeNumerically("~", 0.739085, 1e-6))
	})

	It("alternates even and odd roots for z0 = 8", func() {
		roots, err := search.FiniteWellRoots(ctx, 8, search.RootOptions{})
		Expect(err).NotTo(HaveOccurred())

		want := struct{ even, odd []float64 }{
			even: []float64{1.395466, 4.164831, 6.830674},
			odd:  []float64{2.785902, 5.521446, 7.957321},
		}
		Expect(roots.Even).To(HaveLen(len(want.even)))
		Expect(roots.Odd).To(HaveLen(len(want.odd)))
		for i, z := range want.even {
			Expect(roots.Even[i]).To(BeNumerically("~", z, 1e-5))
		}
		for i, z := range want.odd {
			Expect(roots.Odd[i]).To(BeNumerically("~", z, 1e-5))
		}
	})

	It("never loses roots as z0 grows", func() {
		prev := 0
		for z0 := 0.25; z0 <= 12; z0 += 0.25 {
			roots, err := search.FiniteWellRoots(ctx, z0, search.RootOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(roots.Len()).To(BeNumerically(">=", prev), "z0 = %g", z0)
			Expect(roots.Len()).To(Equal(int(math.Ceil(2*z0/math.Pi))), "z0 = %g", z0)
			prev = roots.Len()
		}
	})

	It("keeps every root inside (0, z0) and sorted", func() {
		roots, err := search.FiniteWellRoots(ctx, 10, search.RootOptions{})
		Expect(err).NotTo(HaveOccurred())
		for _, zs := range [][]float64{roots.Even, roots.Odd} {
			for i, z := range zs {
				Expect(z).To(BeNumerically(">", 0))
				Expect(z).To(BeNumerically("<", 10))
				if i > 0 {
					Expect(z).To(BeNumerically(">", zs[i-1]))
				}
			}
		}
	})

	It("agrees between Brent and Nelder–Mead", func() {
		brent, err := search.FiniteWellRoots(ctx, 5, search.RootOptions{Solver: search.NewBrent()})
		Expect(err).NotTo(HaveOccurred())
		nm, err := search.FiniteWellRoots(ctx, 5, search.RootOptions{Solver: search.NewNelderMead()})
		Expect(err).NotTo(HaveOccurred())

		Expect(nm.Even).To(HaveLen(len(brent.Even)))
		Expect(nm.Odd).To(HaveLen(len(brent.Odd)))
		for i := range brent.Even {
			Expect(nm.Even[i]).To(BeNumerically("~", brent.Even[i], 1e-5))
		}
		for i := range brent.Odd {
			Expect(nm.Odd[i]).To(BeNumerically("~", brent.Odd[i], 1e-5))
		}
	})

	It("rejects a non-positive z0", func() {
		for _, z0 := range []float64{0, -1, math.NaN(), math.Inf(1)} {
			_, err := search.FiniteWellRoots(ctx, z0, search.RootOptions{})
			Expect(err).To(MatchError(eigen.ErrConfiguration))
		}
	})

	It("converts roots to energies and brackets", func() {
		Expect(search.ZToEnergy(math.Pi / 2)).To(BeNumerically("~", 1, 1e-12))

		roots, err := search.FiniteWellRoots(ctx, 5, search.RootOptions{})
		Expect(err).NotTo(HaveOccurred())

		even := search.Brackets(roots, eigen.Even, 0)
		Expect(even).To(HaveLen(2))
		Expect(even[0].Parity).To(Equal(eigen.Even))
		Expect(even[0].Mid()).To(BeNumerically("~", 0.691734, 1e-5))
		Expect(even[0].Width()).To(BeNumerically("~", 2*search.DefaultMargin, 1e-12))

		all := search.AllBrackets(roots, 0.05)
		Expect(all).To(HaveLen(4))
		Expect(all[2].Parity).To(Equal(eigen.Odd))
		Expect(all[2].Mid()).To(BeNumerically("~", 2.730752, 1e-5))
	})
})

var _ = Describe("Brent", func() {
	It("solves a cubic", func() {
		z, err := search.NewBrent().Root(context.Background(), func(x float64) float64 { return x*x*x - 2 }, 0, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(z).To(BeNumerically("~", math.Cbrt(2), 1e-10))
	})

	It("requires a sign change", func() {
		_, err := search.NewBrent().Root(context.Background(), func(x float64) float64 { return x*x + 1 }, -1, 1)
		Expect(err).To(MatchError(eigen.ErrNoSignChange))
	})
})

var _ = Describe("NelderMead", func() {
	It("reports non-convergence when f has no zero", func() {
		_, err := search.NewNelderMead().Root(context.Background(), func(x float64) float64 { return x*x + 1 }, -1, 1)
		Expect(err).To(MatchError(eigen.ErrNotConverged))
	})
})
