package calculator

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"WolfHunter/internal/model"

	talib "github.com/markcheno/go-talib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// randomWalk returns n closes wandering around 100 with no flat stretches.
func randomWalk(n int, seed int64) []float64 {
	r := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	p := 100.0
	for i := range out {
		p *= 1 + (r.Float64()-0.5)*0.04
		out[i] = p
	}
	return out
}

func seriesFrom(t *testing.T, closes, volumes []float64) *model.Series {
	t.Helper()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]model.Candle, len(closes))
	for i, c := range closes {
		candles[i] = model.Candle{
			Timestamp: start.Add(time.Duration(i) * time.Hour).UnixMilli(),
			Open:      c,
			High:      c * 1.01,
			Low:       c * 0.99,
			Close:     c,
			Volume:    volumes[i],
		}
	}
	s, err := model.NewSeries(model.Timeframe1h, candles)
	require.NoError(t, err)
	return s
}

func TestCalculateSMA(t *testing.T) {
	v, err := CalculateSMA([]float64{1, 2, 3, 4, 5}, 3)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, v, 1e-12)

	_, err = CalculateSMA([]float64{1, 2}, 3)
	assert.ErrorIs(t, err, model.ErrInsufficientHistory)

	_, err = CalculateSMA([]float64{1, 2}, 0)
	assert.Error(t, err)
}

func TestCalculateBands_DefinedCount(t *testing.T) {
	for _, period := range []int{1, 2, 5, 20} {
		for _, n := range []int{0, 1, 5, 19, 20, 21, 100} {
			closes := randomWalk(n, int64(n+period))
			bands, err := CalculateBands(closes, period, 2)
			if n < period {
				assert.ErrorIs(t, err, model.ErrInsufficientHistory, "period=%d n=%d", period, n)
				assert.Zero(t, bands.Middle.Defined())
				continue
			}
			require.NoError(t, err)
			for _, line := range []model.Line{bands.Upper, bands.Middle, bands.Lower} {
				require.Len(t, line, n)
				assert.Equal(t, n-period+1, line.Defined(), "period=%d n=%d", period, n)
				for i := 0; i < period-1; i++ {
					assert.False(t, line[i].Valid, "index %d should be absent", i)
				}
			}
		}
	}
}

func TestCalculateBands_MatchesTalib(t *testing.T) {
	closes := randomWalk(120, 7)
	bands, err := CalculateBands(closes, 20, 2)
	require.NoError(t, err)

	upper, middle, lower := talib.BBands(closes, 20, 2, 2, talib.SMA)
	for i := 19; i < len(closes); i++ {
		assert.InDelta(t, upper[i], bands.Upper[i].V, 1e-6, "upper[%d]", i)
		assert.InDelta(t, middle[i], bands.Middle[i].V, 1e-6, "middle[%d]", i)
		assert.InDelta(t, lower[i], bands.Lower[i].V, 1e-6, "lower[%d]", i)
	}
}

func TestCalculateBands_FlatWindowCollapses(t *testing.T) {
	closes := []float64{5, 5, 5, 5}
	bands, err := CalculateBands(closes, 4, 2)
	require.NoError(t, err)
	last := len(closes) - 1
	assert.Equal(t, 5.0, bands.Upper[last].V)
	assert.Equal(t, 5.0, bands.Lower[last].V)
}

func TestCalculateRSI_Bounded(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		rsi, err := CalculateRSI(randomWalk(80, seed), 14)
		require.NoError(t, err)
		require.Len(t, rsi, 80)
		assert.Equal(t, 80-14, rsi.Defined())
		for i, v := range rsi {
			if i < 14 {
				assert.False(t, v.Valid)
				continue
			}
			assert.GreaterOrEqual(t, v.V, 0.0)
			assert.LessOrEqual(t, v.V, 100.0)
		}
	}
}

func TestCalculateRSI_MatchesTalib(t *testing.T) {
	closes := randomWalk(150, 3)
	rsi, err := CalculateRSI(closes, 14)
	require.NoError(t, err)

	ref := talib.Rsi(closes, 14)
	for i := 14; i < len(closes); i++ {
		assert.InDelta(t, ref[i], rsi[i].V, 1e-6, "rsi[%d]", i)
	}
}

func TestCalculateRSI_Extremes(t *testing.T) {
	up := make([]float64, 20)
	down := make([]float64, 20)
	for i := range up {
		up[i] = float64(100 + i)
		down[i] = float64(100 - i)
	}
	rsi, err := CalculateRSI(up, 14)
	require.NoError(t, err)
	assert.Equal(t, 100.0, rsi.Latest().V)

	rsi, err = CalculateRSI(down, 14)
	require.NoError(t, err)
	assert.Equal(t, 0.0, rsi.Latest().V)

	_, err = CalculateRSI(up[:14], 14)
	assert.ErrorIs(t, err, model.ErrInsufficientHistory)
}

func TestCalculateMACD_InsufficientHistory(t *testing.T) {
	_, err := CalculateMACD(randomWalk(34, 1), 12, 26, 9)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInsufficientHistory)

	m, err := CalculateMACD(randomWalk(35, 1), 12, 26, 9)
	require.NoError(t, err)
	assert.Len(t, m.Histogram, 35)
	assert.Equal(t, 10, m.Line.Defined())
	assert.Equal(t, 2, m.Signal.Defined())
	assert.Equal(t, 2, m.Histogram.Defined())
	assert.True(t, m.Histogram.Previous(1).Valid)
}

func TestCalculateMACD_RejectsInvertedPeriods(t *testing.T) {
	_, err := CalculateMACD(randomWalk(60, 1), 26, 12, 9)
	assert.Error(t, err)
}

func TestCalculateMACD_MatchesTalib(t *testing.T) {
	closes := randomWalk(300, 11)
	m, err := CalculateMACD(closes, 12, 26, 9)
	require.NoError(t, err)

	line, signal, hist := talib.Macd(closes, 12, 26, 9)
	// Seeding differs between implementations; compare after it has decayed.
	for i := 250; i < len(closes); i++ {
		assert.InDelta(t, line[i], m.Line[i].V, 1e-6, "line[%d]", i)
		assert.InDelta(t, signal[i], m.Signal[i].V, 1e-6, "signal[%d]", i)
		assert.InDelta(t, hist[i], m.Histogram[i].V, 1e-6, "hist[%d]", i)
	}
}

func TestCalculateEMA_SeedIsMean(t *testing.T) {
	ema, err := CalculateEMA(toLine([]float64{2, 4, 6, 8}), 3)
	require.NoError(t, err)
	assert.False(t, ema[1].Valid)
	assert.InDelta(t, 4.0, ema[2].V, 1e-12)
	assert.InDelta(t, 6.0, ema[3].V, 1e-12) // (8-4)*0.5 + 4
}

func TestCalculateVolumeChange(t *testing.T) {
	vol, err := CalculateVolumeChange([]float64{100, 100, 100, 100, 100, 150, 50}, 5)
	require.NoError(t, err)
	require.Len(t, vol, 7)
	for i := 0; i < 5; i++ {
		assert.False(t, vol[i].Valid)
	}
	assert.InDelta(t, 50.0, vol[5].V, 1e-9)
	assert.InDelta(t, (50.0/110-1)*100, vol[6].V, 1e-9) // baseline is 110

	_, err = CalculateVolumeChange([]float64{1, 2, 3, 4, 5}, 5)
	assert.ErrorIs(t, err, model.ErrInsufficientHistory)

	zero, err := CalculateVolumeChange([]float64{0, 0, 0, 0, 0, 10}, 5)
	require.NoError(t, err)
	assert.False(t, zero.Latest().Valid)
}

func TestCalculatePriceStability(t *testing.T) {
	flat, err := CalculatePriceStability([]float64{10, 10, 10, 10, 10}, 5)
	require.NoError(t, err)
	assert.Equal(t, 100.0, flat.Latest().V)
	assert.Equal(t, 1, flat.Defined())

	// range 10 over mean 100 → 10% volatility
	s, err := CalculatePriceStability([]float64{95, 100, 105, 100, 100}, 5)
	require.NoError(t, err)
	assert.InDelta(t, 90.0, s.Latest().V, 1e-9)

	wild, err := CalculatePriceStability([]float64{1, 10, 1, 10, 1}, 5)
	require.NoError(t, err)
	assert.Equal(t, 0.0, wild.Latest().V)
}

func TestComputeIndicators(t *testing.T) {
	assert.Equal(t, 35, DefaultParams.MinHistory())

	n := 100
	volumes := make([]float64, n)
	for i := range volumes {
		volumes[i] = 1000 + float64(i%7)*10
	}
	ind, err := ComputeIndicators(seriesFrom(t, randomWalk(n, 5), volumes), DefaultParams)
	require.NoError(t, err)

	for name, line := range map[string]model.Line{
		"upper": ind.Bands.Upper, "oscillator": ind.Oscillator,
		"macd": ind.Momentum.Line, "hist": ind.Momentum.Histogram,
		"volume": ind.VolumeChange, "stability": ind.Stability,
	} {
		assert.Len(t, line, n, name)
		assert.True(t, line.Latest().Valid, name)
		assert.False(t, math.IsNaN(line.Latest().V), name)
	}

	_, err = ComputeIndicators(seriesFrom(t, randomWalk(30, 5), volumes[:30]), DefaultParams)
	assert.ErrorIs(t, err, model.ErrInsufficientHistory)
}
