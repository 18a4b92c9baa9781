package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PriceForecast/internal/model"
)

func TestRecorder_ObserveFold(t *testing.T) {
	r := New()
	r.ObserveFold(model.FoldScore{Fold: 1, Model: "lstm", Loss: 0.25, Accuracy: 0.75, Duration: time.Second})
	r.ObserveFold(model.FoldScore{Fold: 2, Model: "lstm", Loss: 0.125, Accuracy: 0.5, Duration: time.Second})

	assert.Equal(t, 0.25, testutil.ToFloat64(r.foldLoss.WithLabelValues("lstm", "1")))
	assert.Equal(t, 0.5, testutil.ToFloat64(r.foldAccuracy.WithLabelValues("lstm", "2")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.fitDuration))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := New()
	r.ObserveFold(model.FoldScore{Fold: 1, Model: "gru", Loss: 0.5})
	r.RunFinished("SUCCEEDED")

	path := filepath.Join(t.TempDir(), "forecast.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `forecast_runs_total{status="SUCCEEDED"} 1`)
	assert.Contains(t, text, `forecast_fold_loss{fold="1",model="gru"} 0.5`)
	assert.Contains(t, text, "forecast_last_run_timestamp_seconds")
}
