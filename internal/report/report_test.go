package report

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PriceForecast/internal/model"
)

func samplePrediction() *model.Prediction {
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	pred := &model.Prediction{Offset: 15}
	for i := 0; i < 20; i++ {
		pred.Actual = append(pred.Actual, model.Point{Date: start.AddDate(0, 0, i), Close: 100 + float64(i)})
	}
	for i := 15; i < 20; i++ {
		pred.Dates = append(pred.Dates, start.AddDate(0, 0, i))
	}
	pred.Forecasts = []model.Forecast{
		{Model: "lstm", Values: []float64{116, 117, 118, 119, 120}},   // off by one
		{Model: "conv1d", Values: []float64{115, 116, 117, 118, 119}}, // exact
		{Model: "gru", Values: []float64{113, 114, 115, 116, 117}},    // off by two
	}
	pred.Baselines = []model.Forecast{
		{Model: "naive_last", Values: []float64{114, 115, 116, 117, 118}},
	}
	return pred
}

func sampleScores() []model.FoldScore {
	return []model.FoldScore{
		{Fold: 1, Model: "lstm", Loss: 0.4, Accuracy: 0.5},
		{Fold: 1, Model: "conv1d", Loss: 0.3, Accuracy: 0.5},
		{Fold: 1, Model: "gru", Loss: 0.2, Accuracy: 1},
		{Fold: 2, Model: "lstm", Loss: 0.2, Accuracy: 1},
		{Fold: 2, Model: "conv1d", Loss: 0.3, Accuracy: 0.5},
		{Fold: 2, Model: "gru", Loss: 0.1, Accuracy: 1},
	}
}

func TestSummarize(t *testing.T) {
	got := Summarize([]string{"lstm", "conv1d", "gru"}, sampleScores(), samplePrediction())
	require.Len(t, got, 3)

	lstm := got[0]
	assert.Equal(t, "lstm", lstm.Model)
	assert.Equal(t, 2, lstm.Folds)
	assert.InDelta(t, 0.3, lstm.MeanLoss, 1e-12)
	assert.InDelta(t, 0.1, lstm.StdLoss, 1e-12)
	assert.InDelta(t, 0.2, lstm.BestLoss, 1e-12)
	assert.Equal(t, 2, lstm.BestFold)
	assert.InDelta(t, 0.2, lstm.LastLoss, 1e-12)
	assert.InDelta(t, 0.75, lstm.MeanAccuracy, 1e-12)
	assert.InDelta(t, 1, lstm.RMSE, 1e-12)
	assert.InDelta(t, 1, lstm.MAE, 1e-12)

	assert.InDelta(t, 0, got[1].RMSE, 1e-12)
	assert.InDelta(t, 2, got[2].MAE, 1e-12)
}

func TestSummarize_DuplicateDatesMatchByPosition(t *testing.T) {
	day := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	pred := &model.Prediction{
		Actual: []model.Point{
			{Date: day, Close: 10},
			{Date: day.AddDate(0, 0, 1), Close: 20},
			{Date: day.AddDate(0, 0, 1), Close: 90},
			{Date: day.AddDate(0, 0, 2), Close: 30},
		},
		Dates:     []time.Time{day.AddDate(0, 0, 1), day.AddDate(0, 0, 1), day.AddDate(0, 0, 2)},
		Offset:    1,
		Forecasts: []model.Forecast{{Model: "lstm", Values: []float64{20, 90, 30}}},
	}

	got := Summarize([]string{"lstm"}, nil, pred)
	require.Len(t, got, 1)
	assert.InDelta(t, 0, got[0].RMSE, 1e-12)
	assert.InDelta(t, 0, got[0].MAE, 1e-12)
}

func TestSummarize_NoScoresNoForecast(t *testing.T) {
	got := Summarize([]string{"lstm"}, nil, nil)
	require.Len(t, got, 1)
	assert.Zero(t, got[0].Folds)
	assert.Equal(t, -1, got[0].BestFold)
	assert.True(t, math.IsNaN(got[0].RMSE))
}

func TestFormatSummary(t *testing.T) {
	info := RunInfo{
		RunID: "abc", Company: "NKE", Points: 20, TrainSize: 14, TestSize: 6,
		Folds: 2, Epochs: 5, Generated: time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC),
		TestHigh: 119, TestLow: 114, LastPosition: 1, TestRSI: 100,
	}
	pred := samplePrediction()
	text := FormatSummary(info, Summarize([]string{"lstm", "conv1d", "gru"}, sampleScores(), pred), SummarizeBaselines(pred))

	assert.Contains(t, text, "PriceForecast report | NKE | 2026-10-17 09:30")
	assert.Contains(t, text, "Run: abc")
	assert.Contains(t, text, "train 14 | test 6")
	assert.Contains(t, text, "2 folds x 5 epochs")
	assert.Contains(t, text, "0.200000(2)")
	assert.Contains(t, text, "Lowest held-out RMSE: conv1d")
	assert.Contains(t, text, "high 119.00 | low 114.00 | last at 100% of range | RSI(14) 100.0")
	assert.Contains(t, text, "naive_last")
}

func TestSummarizeBaselines(t *testing.T) {
	got := SummarizeBaselines(samplePrediction())
	require.Len(t, got, 1)
	assert.Equal(t, "naive_last", got[0].Model)
	assert.InDelta(t, 1, got[0].RMSE, 1e-12)
	assert.InDelta(t, 1, got[0].MAE, 1e-12)

	assert.Nil(t, SummarizeBaselines(nil))
}

func TestWriteSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "summary.txt")
	require.NoError(t, WriteSummary(path, "hello"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestRenderChart(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderChart(&buf, "NKE", samplePrediction()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	assert.ErrorIs(t, RenderChart(&buf, "NKE", &model.Prediction{}), ErrNothingToPlot)
	assert.ErrorIs(t, RenderChart(&buf, "NKE", nil), ErrNothingToPlot)
}

func TestWriteChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "charts", "forecast.pdf")
	require.NoError(t, WriteChart(path, "NKE", samplePrediction()))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
