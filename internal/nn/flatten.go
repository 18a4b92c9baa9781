package nn

// Flatten joins all rows of its input into a single row.
type Flatten struct {
	rows, cols int
}

func NewFlatten() *Flatten { return &Flatten{} }

func (l *Flatten) Forward(x [][]float64) [][]float64 {
	l.rows = len(x)
	l.cols = 0
	if len(x) > 0 {
		l.cols = len(x[0])
	}
	flat := make([]float64, 0, l.rows*l.cols)
	for _, row := range x {
		flat = append(flat, row...)
	}
	return [][]float64{flat}
}

func (l *Flatten) Backward(grad [][]float64) [][]float64 {
	dx := make([][]float64, l.rows)
	for t := range dx {
		dx[t] = append([]float64(nil), grad[0][t*l.cols:(t+1)*l.cols]...)
	}
	return dx
}

func (l *Flatten) Params() []*Param { return nil }
