package recorder

import "WolfHunter/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordCandles(_ model.Timeframe, _ []model.Candle) error { return nil }
func (n *NoopRecorder) Close() error                                          { return nil }
