package dataset

import (
	"errors"
	"fmt"
)

// ErrInsufficientLength is returned when a series or window set is too short
// for the requested windowing or fold count.
var ErrInsufficientLength = errors.New("insufficient length")

// SplitSequence slides an nIn/nOut window over sequence. Input i is
// sequence[i:i+nIn] and output i is the nOut values immediately after it.
// A sequence shorter than nIn+nOut yields no examples.
func SplitSequence(sequence []float64, nIn, nOut int) (X, y [][]float64) {
	n := WindowCount(len(sequence), nIn, nOut)
	X = make([][]float64, 0, n)
	y = make([][]float64, 0, n)
	for i := 0; i+nIn+nOut <= len(sequence); i++ {
		end := i + nIn
		X = append(X, append([]float64(nil), sequence[i:end]...))
		y = append(y, append([]float64(nil), sequence[end:end+nOut]...))
	}
	return X, y
}

// WindowCount returns how many examples SplitSequence produces for a series of length n.
func WindowCount(n, nIn, nOut int) int {
	if nIn <= 0 || nOut <= 0 || n < nIn+nOut {
		return 0
	}
	return n - nIn - nOut + 1
}

// RequireWindows checks that a segment of length n yields at least min examples.
func RequireWindows(segment string, n, nIn, nOut, min int) error {
	if got := WindowCount(n, nIn, nOut); got < min {
		return fmt.Errorf("%w: %s segment of %d values gives %d windows of %d+%d, need %d",
			ErrInsufficientLength, segment, n, got, nIn, nOut, min)
	}
	return nil
}

// Samples reshapes flat windows into steps x features inputs. Consecutive
// values are grouped into one timestep of nFeatures channels.
func Samples(X [][]float64, nFeatures int) [][][]float64 {
	out := make([][][]float64, len(X))
	for i, w := range X {
		steps := len(w) / nFeatures
		s := make([][]float64, steps)
		for t := 0; t < steps; t++ {
			s[t] = w[t*nFeatures : (t+1)*nFeatures]
		}
		out[i] = s
	}
	return out
}
