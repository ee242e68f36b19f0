// Package search locates eigenvalues: bisection on the shooting endpoint,
// energy scans that produce brackets, and the closed-form transcendental
// equations of the finite square well.
package search
