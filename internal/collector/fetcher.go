package collector

import (
	"context"
	"fmt"

	"WolfHunter/internal/model"
)

// Fetcher supplies candle series for the configured instrument.
type Fetcher interface {
	// FetchCandles returns up to limit of the most recent candles for tf, oldest first.
	FetchCandles(ctx context.Context, tf model.Timeframe, limit int) (*model.Series, error)
	Name() string
}

// unavailable marks a fetch failure as model.ErrDataUnavailable while keeping the cause.
func unavailable(source string, err error) error {
	return fmt.Errorf("%s: %w: %w", source, model.ErrDataUnavailable, err)
}
