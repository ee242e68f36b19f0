package integrators

import "github.com/san-kum/qwell/internal/eigen"

type RK4 struct {
	k1, k2, k3, k4 eigen.State
	scratch        eigen.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(eigen.State, n)
		r.k2 = make(eigen.State, n)
		r.k3 = make(eigen.State, n)
		r.k4 = make(eigen.State, n)
		r.scratch = make(eigen.State, n)
	}
}

// Step is not safe for concurrent use; the k buffers are reused between calls.
func (r *RK4) Step(sys eigen.System, x float64, s eigen.State, energy, h float64) eigen.State {
	n := len(s)
	r.ensureScratch(n)

	copy(r.k1, sys.Derive(x, s, energy))

	for i := 0; i < n; i++ {
		r.scratch[i] = s[i] + h*0.5*r.k1[i]
	}
	copy(r.k2, sys.Derive(x+h*0.5, r.scratch, energy))

	for i := 0; i < n; i++ {
		r.scratch[i] = s[i] + h*0.5*r.k2[i]
	}
	copy(r.k3, sys.Derive(x+h*0.5, r.scratch, energy))

	for i := 0; i < n; i++ {
		r.scratch[i] = s[i] + h*r.k3[i]
	}
	copy(r.k4, sys.Derive(x+h, r.scratch, energy))

	result := make(eigen.State, n)
	h6 := h / 6.0
	for i := 0; i < n; i++ {
		result[i] = s[i] + h6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}

	return result
}
