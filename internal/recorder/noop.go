package recorder

import "PriceForecast/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ *RunRecord) error                          { return nil }
func (n *NoopRecorder) RecordFoldScores(_ string, _ []model.FoldScore) error  { return nil }
func (n *NoopRecorder) RecordPredictions(_ string, _ *model.Prediction) error { return nil }
func (n *NoopRecorder) Close() error                                          { return nil }
