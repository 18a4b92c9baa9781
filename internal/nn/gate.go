package nn

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// gate holds the input kernel, recurrent kernel and bias of one recurrent gate.
type gate struct {
	w, u, b *Param
}

func newGate(name string, in, units int, rng *rand.Rand) *gate {
	return &gate{
		w: glorotParam(name+".w", units, in, in, units, rng),
		u: glorotParam(name+".u", units, units, units, units, rng),
		b: newParam(name+".b", units, 1),
	}
}

// input returns w*x + b.
func (g *gate) input(x []float64) []float64 {
	out := mulVec(g.w.Value, x)
	floats.Add(out, g.b.data())
	return out
}

// recurrent returns u*h.
func (g *gate) recurrent(h []float64) []float64 {
	return mulVec(g.u.Value, h)
}

// preact returns w*x + u*h + b.
func (g *gate) preact(x, h []float64) []float64 {
	out := g.input(x)
	floats.Add(out, g.recurrent(h))
	return out
}

// backInput accumulates the kernel and bias gradients for d and adds the
// input gradient into dx.
func (g *gate) backInput(d, x, dx []float64) {
	accumOuter(g.w.Grad, d, x)
	floats.Add(g.b.grad(), d)
	floats.Add(dx, mulVecT(g.w.Value, d))
}

// backRecurrent accumulates the recurrent kernel gradient for d and adds the
// previous hidden state gradient into dh.
func (g *gate) backRecurrent(d, h, dh []float64) {
	accumOuter(g.u.Grad, d, h)
	floats.Add(dh, mulVecT(g.u.Value, d))
}

func (g *gate) params() []*Param { return []*Param{g.w, g.u, g.b} }
