package recorder

import (
	"time"

	"PriceForecast/internal/model"
)

// Run status values.
const (
	StatusSucceeded = "SUCCEEDED"
	StatusFailed    = "FAILED"
)

// RunRecord holds the outcome of one pipeline run.
type RunRecord struct {
	ID         string
	Company    string
	StartedAt  time.Time
	FinishedAt time.Time
	Points     int // prepared series length
	TrainSize  int
	TestSize   int
	Folds      int
	Epochs     int
	Status     string // "SUCCEEDED" or "FAILED"
	Error      string
}

// Recorder persists run history for analysis.
type Recorder interface {
	RecordRun(run *RunRecord) error
	RecordFoldScores(runID string, scores []model.FoldScore) error
	RecordPredictions(runID string, pred *model.Prediction) error
	Close() error
}
