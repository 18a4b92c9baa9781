package dataset

import (
	"fmt"

	"PriceForecast/internal/model"
)

// RollingFolds partitions n chronologically ordered examples into k
// expanding-window folds. The test blocks have equal size n/(k+1), are
// disjoint and tile the end of the range; each fold trains on everything
// before its test block. Remainder examples go to the first training block.
func RollingFolds(n, k int) ([]model.Fold, error) {
	if k < 1 {
		return nil, fmt.Errorf("fold count must be positive, got %d", k)
	}
	if n < k+1 {
		return nil, fmt.Errorf("%w: %d training windows cannot form %d expanding folds (need %d)",
			ErrInsufficientLength, n, k, k+1)
	}
	testSize := n / (k + 1)
	folds := make([]model.Fold, 0, k)
	for j := 0; j < k; j++ {
		start := n - (k-j)*testSize
		folds = append(folds, model.Fold{
			Index: j + 1,
			Train: indexRange(0, start),
			Test:  indexRange(start, start+testSize),
		})
	}
	return folds, nil
}

func indexRange(from, to int) []int {
	out := make([]int, to-from)
	for i := range out {
		out[i] = from + i
	}
	return out
}
