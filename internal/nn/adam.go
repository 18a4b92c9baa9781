package nn

import "math"

// Adam is the Adam optimizer. Its moment estimates and step count persist
// across Fit calls, so training continues where the previous call stopped.
type Adam struct {
	LearningRate float64
	Beta1        float64
	Beta2        float64
	Epsilon      float64

	t int
	m map[*Param][]float64
	v map[*Param][]float64
}

// NewAdam creates an optimizer with the usual defaults and the given rate.
func NewAdam(learningRate float64) *Adam {
	return &Adam{
		LearningRate: learningRate,
		Beta1:        0.9,
		Beta2:        0.999,
		Epsilon:      1e-7,
		m:            make(map[*Param][]float64),
		v:            make(map[*Param][]float64),
	}
}

// Iterations returns the number of update steps taken so far.
func (a *Adam) Iterations() int { return a.t }

// Step applies one update from the accumulated gradients.
func (a *Adam) Step(params []*Param) {
	a.t++
	t := float64(a.t)
	lr := a.LearningRate * math.Sqrt(1-math.Pow(a.Beta2, t)) / (1 - math.Pow(a.Beta1, t))
	for _, p := range params {
		w, g := p.data(), p.grad()
		m, ok := a.m[p]
		if !ok {
			m = make([]float64, len(w))
			a.m[p] = m
			a.v[p] = make([]float64, len(w))
		}
		v := a.v[p]
		for i := range w {
			m[i] = a.Beta1*m[i] + (1-a.Beta1)*g[i]
			v[i] = a.Beta2*v[i] + (1-a.Beta2)*g[i]*g[i]
			w[i] -= lr * m[i] / (math.Sqrt(v[i]) + a.Epsilon)
		}
	}
}
