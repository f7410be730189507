package collector

import (
	"context"
	"math/rand"
	"time"

	"WolfHunter/internal/model"
)

const (
	DefaultMockPrice = 0.00002850
	mockVolatility   = 0.05
)

// MockFetcher returns deterministic generated candles for development and testing.
type MockFetcher struct {
	Price float64
	Seed  int64
	Data  map[model.Timeframe][]model.Candle // fixed candles per timeframe, used as-is when set
	Err   error
	Now   func() time.Time
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchCandles(_ context.Context, tf model.Timeframe, limit int) (*model.Series, error) {
	if m.Err != nil {
		return nil, unavailable(m.Name(), m.Err)
	}
	if !tf.Valid() {
		return nil, model.ErrInvalidTimeframe
	}
	if data, ok := m.Data[tf]; ok {
		return normalize(tf, append([]model.Candle(nil), data...), limit)
	}
	price := m.Price
	if price <= 0 {
		price = DefaultMockPrice
	}
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	return model.NewSeries(tf, generateMockCandles(tf, limit, price, m.Seed, now()))
}

// generateMockCandles walks the price randomly for count candles ending at the
// bucket containing now, then shapes the last five into a break below the lower
// band followed by a recovery.
func generateMockCandles(tf model.Timeframe, count int, basePrice float64, seed int64, now time.Time) []model.Candle {
	rng := rand.New(rand.NewSource(seed))
	bucketMs := tf.Duration().Milliseconds()
	last := now.UnixMilli() - now.UnixMilli()%bucketMs

	candles := make([]model.Candle, count)
	lastClose := basePrice
	for i := 0; i < count; i++ {
		open := lastClose
		next := open * (1 + (rng.Float64()-0.5)*mockVolatility)
		candles[i] = model.Candle{
			Timestamp: last - int64(count-1-i)*bucketMs,
			Open:      open,
			High:      max(open, next) * (1 + rng.Float64()*0.02),
			Low:       min(open, next) * (1 - rng.Float64()*0.02),
			Close:     next,
			Volume:    100_000_000 + rng.Float64()*100_000_000,
		}
		lastClose = next
	}
	if count >= 5 {
		shapeBreakout(candles[count-5:])
	}
	return candles
}

func shapeBreakout(recent []model.Candle) {
	recent[1].Close *= 0.98
	recent[1].Low = recent[1].Close * 0.97

	recent[2].Open = recent[1].Close
	recent[2].Close = recent[2].Open * 0.97
	recent[2].Low = recent[2].Close * 0.96
	recent[2].High = recent[2].Open

	recent[3].Open = recent[2].Close
	recent[3].Close = recent[3].Open * 1.02
	recent[3].Low = recent[3].Open * 0.99
	recent[3].High = recent[3].Close * 1.01

	recent[4].Open = recent[3].Close
	recent[4].Close = recent[4].Open * 1.01
	recent[4].Low = recent[4].Open * 0.995
	recent[4].High = recent[4].Close * 1.005
}
