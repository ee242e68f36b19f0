package sim

import "sync"

// SamplePool recycles sample buffers of one grid length. Endpoint-only shots
// (scans, bisection) borrow from it instead of allocating per call.
type SamplePool struct {
	pool sync.Pool
	size int
}

func NewSamplePool(size int) *SamplePool {
	return &SamplePool{
		size: size,
		pool: sync.Pool{
			New: func() interface{} {
				return make([]float64, size)
			},
		},
	}
}

func (p *SamplePool) Size() int { return p.size }

func (p *SamplePool) Get() []float64 {
	return p.pool.Get().([]float64)
}

func (p *SamplePool) Put(s []float64) {
	if len(s) == p.size {
		for i := range s {
			s[i] = 0
		}
		p.pool.Put(s)
	}
}
