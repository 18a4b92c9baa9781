package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/montanaflynn/stats"

	"PriceForecast/internal/model"
)

// RunInfo describes the data a report was produced from.
type RunInfo struct {
	RunID     string
	Company   string
	Points    int
	TrainSize int
	TestSize  int
	Folds     int
	Epochs    int
	Generated time.Time

	// context of the held-out segment in price units
	TestHigh     float64
	TestLow      float64
	LastPosition float64 // last close within [TestLow, TestHigh], 0~1
	TestRSI      float64
}

// ModelSummary aggregates one model's fold scores and held-out errors.
type ModelSummary struct {
	Model        string
	Folds        int
	MeanLoss     float64
	StdLoss      float64
	BestLoss     float64
	BestFold     int
	LastLoss     float64
	MeanAccuracy float64
	// RMSE and MAE compare the de-normalized forecast with the actual close
	// on the same dates; NaN when no date matches.
	RMSE float64
	MAE  float64
}

// Summarize aggregates scores per model in the order given by names.
func Summarize(names []string, scores []model.FoldScore, pred *model.Prediction) []ModelSummary {
	out := make([]ModelSummary, 0, len(names))
	for _, name := range names {
		var losses, accs []float64
		s := ModelSummary{Model: name, BestFold: -1, RMSE: math.NaN(), MAE: math.NaN()}
		for _, sc := range scores {
			if sc.Model != name {
				continue
			}
			losses = append(losses, sc.Loss)
			accs = append(accs, sc.Accuracy)
			if s.BestFold < 0 || sc.Loss < s.BestLoss {
				s.BestLoss, s.BestFold = sc.Loss, sc.Fold
			}
			s.LastLoss = sc.Loss
		}
		s.Folds = len(losses)
		if s.Folds > 0 {
			s.MeanLoss, _ = stats.Mean(losses)
			s.StdLoss, _ = stats.StandardDeviation(losses)
			s.MeanAccuracy, _ = stats.Mean(accs)
		}
		if pred != nil {
			if f, ok := pred.Forecast(name); ok {
				s.RMSE, s.MAE = forecastErrors(f, pred)
			}
		}
		out = append(out, s)
	}
	return out
}

// SummarizeBaselines returns the held-out errors of the naive baselines.
func SummarizeBaselines(pred *model.Prediction) []ModelSummary {
	if pred == nil {
		return nil
	}
	out := make([]ModelSummary, 0, len(pred.Baselines))
	for _, f := range pred.Baselines {
		s := ModelSummary{Model: f.Model, BestFold: -1}
		s.RMSE, s.MAE = forecastErrors(f, pred)
		out = append(out, s)
	}
	return out
}

// forecastErrors scores forecast i against Actual[Offset+i].
func forecastErrors(f model.Forecast, pred *model.Prediction) (rmse, mae float64) {
	var sq, abs []float64
	for i, v := range f.Values {
		j := pred.Offset + i
		if j < 0 || j >= len(pred.Actual) {
			break
		}
		d := v - pred.Actual[j].Close
		sq = append(sq, d*d)
		abs = append(abs, math.Abs(d))
	}
	if len(sq) == 0 {
		return math.NaN(), math.NaN()
	}
	msq, _ := stats.Mean(sq)
	mae, _ = stats.Mean(abs)
	return math.Sqrt(msq), mae
}

// FormatSummary formats the run, per-model and baseline summaries as plain text.
func FormatSummary(info RunInfo, summaries, baselines []ModelSummary) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("PriceForecast report | %s | %s\n", info.Company, info.Generated.Format("2006-01-02 15:04")))
	if info.RunID != "" {
		b.WriteString(fmt.Sprintf("Run: %s\n", info.RunID))
	}
	b.WriteString(fmt.Sprintf("Series: %d points | train %d | test %d\n", info.Points, info.TrainSize, info.TestSize))
	b.WriteString(fmt.Sprintf("Cross-validation: %d folds x %d epochs\n", info.Folds, info.Epochs))
	if info.TestHigh != 0 || info.TestLow != 0 {
		b.WriteString(fmt.Sprintf("Test segment: high %.2f | low %.2f | last at %.0f%% of range | RSI(14) %.1f\n",
			info.TestHigh, info.TestLow, info.LastPosition*100, info.TestRSI))
	}
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("%-8s %5s %10s %10s %16s %10s %10s %10s\n",
		"model", "folds", "mean_loss", "std_loss", "best_loss(fold)", "mean_acc", "test_rmse", "test_mae"))
	for _, s := range summaries {
		best := "-"
		if s.BestFold >= 0 {
			best = fmt.Sprintf("%.6f(%d)", s.BestLoss, s.BestFold)
		}
		b.WriteString(fmt.Sprintf("%-8s %5d %10.6f %10.6f %16s %10.4f %10s %10s\n",
			s.Model, s.Folds, s.MeanLoss, s.StdLoss, best, s.MeanAccuracy, price(s.RMSE), price(s.MAE)))
	}

	if len(baselines) > 0 {
		b.WriteString("\nBaselines:\n")
		for _, s := range baselines {
			b.WriteString(fmt.Sprintf("%-12s test_rmse %10s  test_mae %10s\n", s.Model, price(s.RMSE), price(s.MAE)))
		}
	}

	if best, ok := bestModel(summaries); ok {
		b.WriteString(fmt.Sprintf("\nLowest held-out RMSE: %s (%.4f)\n", best.Model, best.RMSE))
	}
	return b.String()
}

func price(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.4f", v)
}

func bestModel(summaries []ModelSummary) (ModelSummary, bool) {
	var best ModelSummary
	found := false
	for _, s := range summaries {
		if math.IsNaN(s.RMSE) {
			continue
		}
		if !found || s.RMSE < best.RMSE {
			best, found = s, true
		}
	}
	return best, found
}

// WriteSummary writes the formatted summary to path, creating its directory.
func WriteSummary(path string, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create summary dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}
