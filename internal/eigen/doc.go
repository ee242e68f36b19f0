// Package eigen provides the core types for bound-state searches of the
// dimensionless 1-D Schrödinger equation written as a first-order system:
//
//	ψ' = φ
//	φ' = f(x, ε)·ψ
//
// The package defines:
//
//   - [State]: the (ψ, ψ') vector carried by the integrators
//   - [System]: a model potential (right-hand side plus initial conditions)
//   - [Grid]: the immutable, evenly spaced integration grid
//   - [Candidate] and [Bracket]: trial energies handed to the solvers
//   - [Solution]: a shot wavefunction with its raw and normalized samples
//
// # Parity
//
// All potentials are symmetric about x = 0, so only the half domain x ≥ 0 is
// integrated. The [Parity] of a solution picks the initial condition at the
// origin and the sign used when the half solution is mirrored:
//
//	sol.Mirror(grid) // ψ(-x) = ψ(x) for Even, ψ(-x) = -ψ(x) for Odd
package eigen
