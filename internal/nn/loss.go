package nn

// MSE returns the mean squared error of pred against target and its gradient
// with respect to pred.
func MSE(pred, target []float64) (float64, []float64) {
	n := float64(len(pred))
	grad := make([]float64, len(pred))
	var sum float64
	for i := range pred {
		d := pred[i] - target[i]
		sum += d * d
		grad[i] = 2 * d / n
	}
	return sum / n, grad
}

// BinaryAccuracy is the share of outputs that fall on the same side of 0.5
// as their target.
func BinaryAccuracy(pred, target []float64) float64 {
	if len(pred) == 0 {
		return 0
	}
	hits := 0
	for i := range pred {
		if (pred[i] > 0.5) == (target[i] > 0.5) {
			hits++
		}
	}
	return float64(hits) / float64(len(pred))
}
