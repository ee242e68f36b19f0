// Package potentials provides the model systems searched for bound states.
//
// Each model implements [eigen.System], writing ψ″ = f(x, ε)·ψ as a
// first-order system in (ψ, ψ'):
//
//   - [InfiniteWell]: f = -π²·ε, walls at x = ±0.5, ε_n = n²
//   - [FiniteWell]: f = π²·(V(x) - ε) with a step potential of depth V0
//   - [HarmonicOscillator]: f = C·x² - ε
//
// Models also implement [eigen.Configurable] for parameter overrides from
// config files, and [eigen.Tuned] when a bisection override is set.
//
// # Initial conditions
//
// Integration starts at the symmetry point x = 0 with (ψ, ψ') = (1, 0) for
// even states and (0, 1) for odd ones.
package potentials
