package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrainTestSplit_Scenario(t *testing.T) {
	series := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	train, test := TrainTestSplit(series, 0.7)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, train)
	assert.Equal(t, []int{7, 8, 9}, test)
}

func TestTrainTestSplit_ConcatenationAndFloor(t *testing.T) {
	for n := 0; n < 40; n++ {
		for _, r := range []float64{0.1, 0.33, 0.5, 0.7, 0.9} {
			series := make([]int, n)
			for i := range series {
				series[i] = i
			}
			train, test := TrainTestSplit(series, r)
			assert.Equal(t, int(float64(n)*r), len(train))
			assert.Equal(t, series, append(append([]int{}, train...), test...))
		}
	}
}

func TestSplitIndexClamps(t *testing.T) {
	assert.Equal(t, 0, SplitIndex(10, -0.5))
	assert.Equal(t, 10, SplitIndex(10, 1.5))
}
