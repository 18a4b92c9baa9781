package nn

// Layer transforms one sample, a steps x channels matrix stored as rows.
//
// Backward must follow the Forward call for the same sample: it reads the
// values cached by Forward, adds the weight gradients into Params and
// returns the gradient with respect to the layer input.
type Layer interface {
	Forward(x [][]float64) [][]float64
	Backward(grad [][]float64) [][]float64
	Params() []*Param
}

func zeros(rows, cols int) [][]float64 {
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, cols)
	}
	return out
}
