// Package evaluator runs fold-wise continued training of a model bank and
// produces the held-out predictions.
package evaluator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"PriceForecast/internal/bank"
	"PriceForecast/internal/logger"
	"PriceForecast/internal/model"
	"PriceForecast/internal/nn"
)

// Observer receives every fold score as it is produced.
type Observer interface {
	ObserveFold(score model.FoldScore)
}

// Evaluator trains every model of a bank across the folds in order.
type Evaluator struct {
	Fit nn.FitOptions
	// Parallel trains the models of one fold concurrently. Folds stay ordered.
	Parallel bool

	log      *logger.Logger
	observer Observer
}

// New creates an Evaluator. obs may be nil.
func New(fit nn.FitOptions, parallel bool, log *logger.Logger, obs Observer) *Evaluator {
	if log == nil {
		log = logger.Nop()
	}
	return &Evaluator{Fit: fit, Parallel: parallel, log: log, observer: obs}
}

// TrainModels fits each model on every fold's training indices, continuing
// from the weights and optimizer state left by the previous fold, then scores
// it on the fold's test indices. Cancellation is checked between folds.
func (e *Evaluator) TrainModels(ctx context.Context, b *bank.Bank, X [][][]float64, y [][]float64, folds []model.Fold) ([]model.FoldScore, error) {
	if len(X) != len(y) {
		return nil, fmt.Errorf("%w: %d inputs, %d targets", nn.ErrShapeMismatch, len(X), len(y))
	}
	models := b.Models()
	scores := make([]model.FoldScore, 0, len(folds)*len(models))

	for _, fold := range folds {
		if err := ctx.Err(); err != nil {
			return scores, fmt.Errorf("before fold %d: %w", fold.Index, err)
		}
		trainX, trainY, err := gather(X, y, fold.Train)
		if err != nil {
			return scores, fmt.Errorf("fold %d train: %w", fold.Index, err)
		}
		testX, testY, err := gather(X, y, fold.Test)
		if err != nil {
			return scores, fmt.Errorf("fold %d test: %w", fold.Index, err)
		}

		results := make([]model.FoldScore, len(models))
		errs := make([]error, len(models))
		if e.Parallel {
			var wg sync.WaitGroup
			for i, m := range models {
				wg.Add(1)
				go func(i int, m *bank.TrainableModel) {
					defer wg.Done()
					results[i], errs[i] = e.trainFold(m, fold.Index, trainX, trainY, testX, testY)
				}(i, m)
			}
			wg.Wait()
		} else {
			for i, m := range models {
				results[i], errs[i] = e.trainFold(m, fold.Index, trainX, trainY, testX, testY)
				if errs[i] != nil {
					break
				}
			}
		}

		for i, s := range results {
			if errs[i] != nil {
				return scores, errs[i]
			}
			if s.Model == "" {
				continue
			}
			e.log.Info("fold scored",
				logger.Int("fold", s.Fold),
				logger.String("model", s.Model),
				logger.Float("accuracy", s.Accuracy),
				logger.Float("loss", s.Loss),
				logger.Float("val_loss", s.ValLoss),
				logger.Duration("duration_ms", s.Duration),
			)
			if e.observer != nil {
				e.observer.ObserveFold(s)
			}
			scores = append(scores, s)
		}
	}
	return scores, nil
}

func (e *Evaluator) trainFold(m *bank.TrainableModel, fold int, trainX [][][]float64, trainY [][]float64, testX [][][]float64, testY [][]float64) (model.FoldScore, error) {
	start := time.Now()
	hist, err := m.Fit(trainX, trainY, e.Fit)
	if err != nil {
		return model.FoldScore{}, fmt.Errorf("fold %d: fit %s: %w", fold, m.Name, err)
	}
	loss, acc, err := m.Evaluate(testX, testY)
	if err != nil {
		return model.FoldScore{}, fmt.Errorf("fold %d: evaluate %s: %w", fold, m.Name, err)
	}
	_, valLoss := hist.Final()
	return model.FoldScore{
		Fold:     fold,
		Model:    m.Name,
		Loss:     loss,
		Accuracy: acc,
		ValLoss:  valLoss,
		Duration: time.Since(start),
	}, nil
}

func gather(X [][][]float64, y [][]float64, idx []int) ([][][]float64, [][]float64, error) {
	gx := make([][][]float64, len(idx))
	gy := make([][]float64, len(idx))
	for i, j := range idx {
		if j < 0 || j >= len(X) {
			return nil, nil, fmt.Errorf("%w: index %d outside %d examples", nn.ErrShapeMismatch, j, len(X))
		}
		gx[i], gy[i] = X[j], y[j]
	}
	return gx, gy, nil
}
