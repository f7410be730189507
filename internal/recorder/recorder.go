package recorder

import (
	"context"

	"WolfHunter/internal/model"
)

// Recorder archives fetched candles.
type Recorder interface {
	RecordCandles(tf model.Timeframe, candles []model.Candle) error
	Close() error
}

// Archive serves previously recorded candles back.
type Archive interface {
	LoadCandles(ctx context.Context, tf model.Timeframe, limit int) ([]model.Candle, error)
}
