// Package pipeline runs one end-to-end forecasting pass: load, prepare,
// window, cross-validate, predict, report and record.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"PriceForecast/internal/bank"
	"PriceForecast/internal/calculator"
	"PriceForecast/internal/collector"
	"PriceForecast/internal/config"
	"PriceForecast/internal/dataset"
	"PriceForecast/internal/evaluator"
	"PriceForecast/internal/logger"
	"PriceForecast/internal/metrics"
	"PriceForecast/internal/model"
	"PriceForecast/internal/nn"
	"PriceForecast/internal/recorder"
	"PriceForecast/internal/report"
	"PriceForecast/internal/scaler"
)

// Result is everything one run produced.
type Result struct {
	RunID      string
	Series     model.PreparedSeries
	TrainSize  int
	TestSize   int
	Folds      []model.Fold
	Scores     []model.FoldScore
	Prediction *model.Prediction
	Summaries  []report.ModelSummary
	Summary    string
}

// Pipeline holds the collaborators of a run. Recorder and Metrics are optional.
type Pipeline struct {
	cfg      *config.Config
	source   collector.Source
	recorder recorder.Recorder
	metrics  *metrics.Recorder
	log      *logger.Logger
}

// New creates a Pipeline.
func New(cfg *config.Config, source collector.Source, rec recorder.Recorder, met *metrics.Recorder, log *logger.Logger) *Pipeline {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Pipeline{cfg: cfg, source: source, recorder: rec, metrics: met, log: log}
}

// Run executes one forecasting pass. Length requirements are checked before
// any model is built; every error is fatal for the run.
func (p *Pipeline) Run(ctx context.Context) (res *Result, err error) {
	hp := p.cfg.Hyperparameters
	res = &Result{RunID: uuid.NewString()}
	run := &recorder.RunRecord{
		ID:        res.RunID,
		Company:   p.cfg.Data.Company,
		StartedAt: time.Now(),
		Folds:     hp.Folds,
		Epochs:    hp.Epochs,
	}
	log := p.log.With(logger.String("run_id", res.RunID), logger.String("company", p.cfg.Data.Company))
	defer func() { p.finish(log, run, res, err) }()

	obs, err := collector.NewCollector(p.source, p.cfg.Data.Company, log).Collect(ctx)
	if err != nil {
		return res, err
	}

	closes := make([]float64, len(obs))
	for i, o := range obs {
		closes[i] = o.Close
	}
	cut := dataset.SplitIndex(len(closes), hp.TrainRatio)
	res.TrainSize, res.TestSize = cut, len(closes)-cut
	run.Points, run.TrainSize, run.TestSize = len(closes), res.TrainSize, res.TestSize

	if err := dataset.RequireWindows("train", res.TrainSize, hp.StepsIn, hp.StepsOut, hp.Folds+1); err != nil {
		return res, err
	}
	if err := dataset.RequireWindows("test", res.TestSize, hp.StepsIn, hp.StepsOut, 1); err != nil {
		return res, err
	}

	sc, err := p.fitScaler(closes, cut)
	if err != nil {
		return res, err
	}
	norm := sc.Transform(closes)
	res.Series = model.PreparedSeries{Company: p.cfg.Data.Company, Points: make([]model.Point, len(obs))}
	for i, o := range obs {
		res.Series.Points[i] = model.Point{Date: o.Date, Close: norm[i]}
	}
	log.Info("series prepared",
		logger.Int("points", res.Series.Len()),
		logger.Int("train", res.TrainSize),
		logger.Int("test", res.TestSize),
		logger.String("scaler_scope", p.cfg.Scaler.FitScope),
		logger.Float("min", sc.Min()),
		logger.Float("max", sc.Max()),
	)

	train, test := dataset.TrainTestSplit(res.Series.Points, hp.TrainRatio)
	trainX, trainY := dataset.SplitSequence(model.PreparedSeries{Points: train}.Closes(), hp.StepsIn, hp.StepsOut)
	testX, _ := dataset.SplitSequence(model.PreparedSeries{Points: test}.Closes(), hp.StepsIn, hp.StepsOut)
	trainSamples := dataset.Samples(trainX, hp.Features)
	testSamples := dataset.Samples(testX, hp.Features)

	res.Folds, err = dataset.RollingFolds(len(trainSamples), hp.Folds)
	if err != nil {
		return res, err
	}

	b, err := bank.Build(p.bankOptions())
	if err != nil {
		return res, fmt.Errorf("build models: %w", err)
	}
	for _, m := range b.Models() {
		log.Info("model built", logger.String("model", m.Name), logger.Int("params", m.Net.NumParams()))
	}

	var observer evaluator.Observer
	if p.metrics != nil {
		observer = p.metrics
	}
	ev := evaluator.New(p.fitOptions(), p.cfg.Training.ParallelModels, log, observer)
	res.Scores, err = ev.TrainModels(ctx, b, trainSamples, trainY, res.Folds)
	if err != nil {
		return res, fmt.Errorf("train models: %w", err)
	}

	res.Prediction, err = evaluator.TestPrediction(b, testSamples, res.Series, sc)
	if err != nil {
		return res, fmt.Errorf("test prediction: %w", err)
	}
	// forecast i is drawn at the first date its window predicts
	res.Prediction.Dates = make([]time.Time, len(testSamples))
	for i := range testSamples {
		res.Prediction.Dates[i] = test[hp.StepsIn+i].Date
	}
	res.Prediction.Offset = res.TrainSize + hp.StepsIn

	last, sma, err := calculator.Baselines(testX, hp.StepsIn)
	if err != nil {
		return res, fmt.Errorf("baselines: %w", err)
	}
	res.Prediction.Baselines = []model.Forecast{
		{Model: calculator.BaselineLast, Values: sc.Inverse(last)},
		{Model: calculator.BaselineSMA, Values: sc.Inverse(sma)},
	}

	info := report.RunInfo{
		RunID:     res.RunID,
		Company:   p.cfg.Data.Company,
		Points:    res.Series.Len(),
		TrainSize: res.TrainSize,
		TestSize:  res.TestSize,
		Folds:     hp.Folds,
		Epochs:    hp.Epochs,
		Generated: time.Now(),
	}
	p.describeTestSegment(&info, closes[cut:])
	res.Summaries = report.Summarize(b.Names(), res.Scores, res.Prediction)
	res.Summary = report.FormatSummary(info, res.Summaries, report.SummarizeBaselines(res.Prediction))

	if path := p.cfg.Report.ChartPath; path != "" {
		if err := report.WriteChart(path, p.cfg.Data.Company, res.Prediction); err != nil {
			return res, err
		}
		log.Info("chart written", logger.String("path", path))
	}
	if path := p.cfg.Report.SummaryPath; path != "" {
		if err := report.WriteSummary(path, res.Summary); err != nil {
			return res, err
		}
		log.Info("summary written", logger.String("path", path))
	}
	for _, s := range res.Summaries {
		log.Info("model summary",
			logger.String("model", s.Model),
			logger.Float("mean_loss", s.MeanLoss),
			logger.Float("std_loss", s.StdLoss),
			logger.Float("mean_accuracy", s.MeanAccuracy),
			logger.Float("test_rmse", s.RMSE),
		)
	}
	return res, nil
}

// describeTestSegment fills the price context of the held-out values.
func (p *Pipeline) describeTestSegment(info *report.RunInfo, test []float64) {
	high, low, err := calculator.Range(test)
	if err != nil {
		return
	}
	info.TestHigh, info.TestLow = high, low
	if pos, err := calculator.Position(test[len(test)-1], high, low); err == nil {
		info.LastPosition = pos
	}
	if rsi, err := calculator.RSI(test, 14); err == nil {
		info.TestRSI = rsi
	}
}

func (p *Pipeline) fitScaler(closes []float64, cut int) (scaler.MinMax, error) {
	values := closes
	if p.cfg.Scaler.FitScope == "train" {
		values = closes[:cut]
	}
	sc, err := scaler.Fit(values)
	if err != nil {
		return scaler.MinMax{}, fmt.Errorf("fit scaler: %w", err)
	}
	return sc, nil
}

func (p *Pipeline) bankOptions() bank.Options {
	hp, m := p.cfg.Hyperparameters, p.cfg.Models
	return bank.Options{
		Shape:         model.Shape{Steps: hp.StepsIn, Features: hp.Features, Outputs: hp.StepsOut},
		LearningRate:  hp.LearningRate,
		Seed:          p.cfg.Training.Seed,
		Enabled:       m.Enabled,
		Conv1DFilters: m.Conv1D.Filters,
		Conv1DKernel:  m.Conv1D.KernelSize,
		GRUUnits:      m.GRU.Units,
		GRULayers:     m.GRU.Layers,
		LSTMUnits:     m.LSTM.Units,
		LSTMLayers:    m.LSTM.Layers,
	}
}

func (p *Pipeline) fitOptions() nn.FitOptions {
	return nn.FitOptions{
		Epochs:          p.cfg.Hyperparameters.Epochs,
		BatchSize:       p.cfg.Training.BatchSize,
		ValidationSplit: p.cfg.Training.ValidationSplit,
		Shuffle:         p.cfg.Training.Shuffle,
	}
}

// finish records the run outcome. Recording failures are logged, not returned.
func (p *Pipeline) finish(log *logger.Logger, run *recorder.RunRecord, res *Result, runErr error) {
	run.FinishedAt = time.Now()
	run.Status = recorder.StatusSucceeded
	if runErr != nil {
		run.Status = recorder.StatusFailed
		run.Error = runErr.Error()
	}

	if err := p.recorder.RecordRun(run); err != nil {
		log.Error("record run", logger.Error(err))
	}
	if len(res.Scores) > 0 {
		if err := p.recorder.RecordFoldScores(run.ID, res.Scores); err != nil {
			log.Error("record fold scores", logger.Error(err))
		}
	}
	if runErr == nil && res.Prediction != nil {
		if err := p.recorder.RecordPredictions(run.ID, res.Prediction); err != nil {
			log.Error("record predictions", logger.Error(err))
		}
	}

	if p.metrics != nil {
		p.metrics.RunFinished(run.Status)
		if path := p.cfg.Metrics.TextfilePath; path != "" {
			if err := p.metrics.WriteTextfile(path); err != nil {
				log.Error("write metrics", logger.Error(err))
			}
		}
	}

	elapsed := run.FinishedAt.Sub(run.StartedAt)
	if runErr != nil {
		log.Error("run failed", logger.Error(runErr), logger.Duration("elapsed_ms", elapsed))
		return
	}
	log.Info("run finished", logger.Int("folds", len(res.Folds)), logger.Duration("elapsed_ms", elapsed))
}
