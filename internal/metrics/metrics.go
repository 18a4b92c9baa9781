// Package metrics exposes training metrics in the Prometheus text format.
package metrics

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"PriceForecast/internal/model"
)

// Recorder collects per-fold and per-run metrics on its own registry.
type Recorder struct {
	registry     *prometheus.Registry
	fitDuration  *prometheus.HistogramVec
	foldLoss     *prometheus.GaugeVec
	foldAccuracy *prometheus.GaugeVec
	runsTotal    *prometheus.CounterVec
	lastRun      prometheus.Gauge
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		fitDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "forecast_fold_duration_seconds",
				Help:    "Time to fit and score one model on one fold",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 14),
			},
			[]string{"model"},
		),
		foldLoss: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "forecast_fold_loss",
				Help: "Test loss of a model on a fold",
			},
			[]string{"model", "fold"},
		),
		foldAccuracy: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "forecast_fold_accuracy",
				Help: "Test accuracy of a model on a fold",
			},
			[]string{"model", "fold"},
		),
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forecast_runs_total",
				Help: "Pipeline runs by outcome",
			},
			[]string{"status"},
		),
		lastRun: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "forecast_last_run_timestamp_seconds",
				Help: "Unix time the last run finished",
			},
		),
	}
}

// ObserveFold records one fold score.
func (r *Recorder) ObserveFold(s model.FoldScore) {
	fold := strconv.Itoa(s.Fold)
	r.fitDuration.WithLabelValues(s.Model).Observe(s.Duration.Seconds())
	r.foldLoss.WithLabelValues(s.Model, fold).Set(s.Loss)
	r.foldAccuracy.WithLabelValues(s.Model, fold).Set(s.Accuracy)
}

// RunFinished counts a finished run and stamps its completion time.
func (r *Recorder) RunFinished(status string) {
	r.runsTotal.WithLabelValues(status).Inc()
	r.lastRun.SetToCurrentTime()
}

// Registry returns the registry holding every metric.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// WriteTextfile writes the metrics for the node exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
