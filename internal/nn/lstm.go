package nn

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// LSTM is a long short-term memory layer with input, forget, cell and output
// gates. The forget gate bias starts at 1.
type LSTM struct {
	units           int
	returnSequences bool
	i, f, g, o      *gate

	steps []lstmStep
}

type lstmStep struct {
	x, hPrev, cPrev []float64
	i, f, g, o      []float64
	tc              []float64 // tanh(c)
}

// NewLSTM creates an LSTM over in channels. With returnSequences the output
// has one row per input step, otherwise a single row holding the last state.
func NewLSTM(in, units int, returnSequences bool, rng *rand.Rand) *LSTM {
	l := &LSTM{
		units:           units,
		returnSequences: returnSequences,
		i:               newGate("lstm.i", in, units, rng),
		f:               newGate("lstm.f", in, units, rng),
		g:               newGate("lstm.g", in, units, rng),
		o:               newGate("lstm.o", in, units, rng),
	}
	apply(l.f.b.data(), func(float64) float64 { return 1 })
	return l
}

func (l *LSTM) Forward(x [][]float64) [][]float64 {
	l.steps = l.steps[:0]
	h := make([]float64, l.units)
	c := make([]float64, l.units)
	var out [][]float64
	for _, xt := range x {
		ig := l.i.preact(xt, h)
		apply(ig, sigmoid)
		fg := l.f.preact(xt, h)
		apply(fg, sigmoid)
		gg := l.g.preact(xt, h)
		apply(gg, math.Tanh)
		og := l.o.preact(xt, h)
		apply(og, sigmoid)

		nc := make([]float64, l.units)
		tc := make([]float64, l.units)
		nh := make([]float64, l.units)
		for j := range nc {
			nc[j] = fg[j]*c[j] + ig[j]*gg[j]
			tc[j] = math.Tanh(nc[j])
			nh[j] = og[j] * tc[j]
		}
		l.steps = append(l.steps, lstmStep{x: xt, hPrev: h, cPrev: c, i: ig, f: fg, g: gg, o: og, tc: tc})
		h, c = nh, nc
		if l.returnSequences {
			out = append(out, h)
		}
	}
	if !l.returnSequences {
		out = [][]float64{h}
	}
	return out
}

func (l *LSTM) Backward(grad [][]float64) [][]float64 {
	last := len(l.steps) - 1
	dx := make([][]float64, len(l.steps))
	dh := make([]float64, l.units)
	dc := make([]float64, l.units)
	for t := last; t >= 0; t-- {
		s := l.steps[t]
		if l.returnSequences {
			floats.Add(dh, grad[t])
		} else if t == last {
			floats.Add(dh, grad[0])
		}

		dai := make([]float64, l.units)
		daf := make([]float64, l.units)
		dag := make([]float64, l.units)
		dao := make([]float64, l.units)
		dcPrev := make([]float64, l.units)
		for j := 0; j < l.units; j++ {
			do := dh[j] * s.tc[j]
			dcj := dc[j] + dh[j]*s.o[j]*(1-s.tc[j]*s.tc[j])
			di := dcj * s.g[j]
			dg := dcj * s.i[j]
			df := dcj * s.cPrev[j]
			dcPrev[j] = dcj * s.f[j]

			dai[j] = di * s.i[j] * (1 - s.i[j])
			daf[j] = df * s.f[j] * (1 - s.f[j])
			dag[j] = dg * (1 - s.g[j]*s.g[j])
			dao[j] = do * s.o[j] * (1 - s.o[j])
		}

		dx[t] = make([]float64, len(s.x))
		dhPrev := make([]float64, l.units)
		for _, p := range []struct {
			gate *gate
			d    []float64
		}{{l.i, dai}, {l.f, daf}, {l.g, dag}, {l.o, dao}} {
			p.gate.backInput(p.d, s.x, dx[t])
			p.gate.backRecurrent(p.d, s.hPrev, dhPrev)
		}
		dh, dc = dhPrev, dcPrev
	}
	return dx
}

func (l *LSTM) Params() []*Param {
	var ps []*Param
	for _, g := range []*gate{l.i, l.f, l.g, l.o} {
		ps = append(ps, g.params()...)
	}
	return ps
}
