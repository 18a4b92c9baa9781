package dataset

import "math"

// TrainTestSplit cuts an ordered series into a prefix of floor(len*ratio)
// items and the remaining suffix. Order is preserved; nothing is shuffled.
func TrainTestSplit[T any](series []T, ratio float64) (train, test []T) {
	cut := SplitIndex(len(series), ratio)
	return series[:cut], series[cut:]
}

// SplitIndex returns floor(n*ratio) clamped to [0, n].
func SplitIndex(n int, ratio float64) int {
	cut := int(math.Floor(float64(n) * ratio))
	if cut < 0 {
		return 0
	}
	if cut > n {
		return n
	}
	return cut
}
