package nn

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// GRU is a gated recurrent unit layer.
//
//	z  = sigmoid(Wz x + Uz h + bz)
//	r  = sigmoid(Wr x + Ur h + br)
//	n  = tanh(Wn x + bn + r * (Un h))
//	h' = (1 - z) * n + z * h
type GRU struct {
	units           int
	returnSequences bool
	z, r, n         *gate

	steps []gruStep
}

type gruStep struct {
	x, hPrev    []float64
	z, r, n, hn []float64
}

// NewGRU creates a GRU over in channels. With returnSequences the output has
// one row per input step, otherwise a single row holding the last state.
func NewGRU(in, units int, returnSequences bool, rng *rand.Rand) *GRU {
	return &GRU{
		units:           units,
		returnSequences: returnSequences,
		z:               newGate("gru.z", in, units, rng),
		r:               newGate("gru.r", in, units, rng),
		n:               newGate("gru.n", in, units, rng),
	}
}

func (l *GRU) Forward(x [][]float64) [][]float64 {
	l.steps = l.steps[:0]
	h := make([]float64, l.units)
	var out [][]float64
	for _, xt := range x {
		z := l.z.preact(xt, h)
		apply(z, sigmoid)
		r := l.r.preact(xt, h)
		apply(r, sigmoid)
		hn := l.n.recurrent(h)
		n := l.n.input(xt)
		next := make([]float64, l.units)
		for j := range n {
			n[j] = math.Tanh(n[j] + r[j]*hn[j])
			next[j] = (1-z[j])*n[j] + z[j]*h[j]
		}
		l.steps = append(l.steps, gruStep{x: xt, hPrev: h, z: z, r: r, n: n, hn: hn})
		h = next
		if l.returnSequences {
			out = append(out, h)
		}
	}
	if !l.returnSequences {
		out = [][]float64{h}
	}
	return out
}

func (l *GRU) Backward(grad [][]float64) [][]float64 {
	last := len(l.steps) - 1
	dx := make([][]float64, len(l.steps))
	dh := make([]float64, l.units)
	for t := last; t >= 0; t-- {
		s := l.steps[t]
		if l.returnSequences {
			floats.Add(dh, grad[t])
		} else if t == last {
			floats.Add(dh, grad[0])
		}

		dhPrev := make([]float64, l.units)
		daz := make([]float64, l.units)
		dar := make([]float64, l.units)
		dan := make([]float64, l.units)
		dhn := make([]float64, l.units)
		for j := 0; j < l.units; j++ {
			dn := dh[j] * (1 - s.z[j])
			dz := dh[j] * (s.hPrev[j] - s.n[j])
			dhPrev[j] = dh[j] * s.z[j]
			dan[j] = dn * (1 - s.n[j]*s.n[j])
			dr := dan[j] * s.hn[j]
			dhn[j] = dan[j] * s.r[j]
			daz[j] = dz * s.z[j] * (1 - s.z[j])
			dar[j] = dr * s.r[j] * (1 - s.r[j])
		}

		dx[t] = make([]float64, len(s.x))
		l.z.backInput(daz, s.x, dx[t])
		l.z.backRecurrent(daz, s.hPrev, dhPrev)
		l.r.backInput(dar, s.x, dx[t])
		l.r.backRecurrent(dar, s.hPrev, dhPrev)
		l.n.backInput(dan, s.x, dx[t])
		l.n.backRecurrent(dhn, s.hPrev, dhPrev)
		dh = dhPrev
	}
	return dx
}

func (l *GRU) Params() []*Param {
	var ps []*Param
	for _, g := range []*gate{l.z, l.r, l.n} {
		ps = append(ps, g.params()...)
	}
	return ps
}
