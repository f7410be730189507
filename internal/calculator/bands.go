package calculator

import (
	"math"

	"WolfHunter/internal/model"
)

// CalculateBands computes the volatility bands: middle is the simple mean of the
// trailing period closes, upper/lower are middle ± multiplier × population
// standard deviation of the same window. The first period-1 positions are absent.
func CalculateBands(closes []float64, period int, multiplier float64) (model.Bands, error) {
	if period <= 0 {
		return model.Bands{}, errPeriod
	}
	if len(closes) < period {
		return model.Bands{}, insufficient("bands", period, len(closes))
	}

	n := len(closes)
	b := model.Bands{Upper: model.NewLine(n), Middle: model.NewLine(n), Lower: model.NewLine(n)}
	for i := period - 1; i < n; i++ {
		window := closes[i-period+1 : i+1]
		mean, _ := CalculateSMA(window, period)
		variance := 0.0
		for _, c := range window {
			d := c - mean
			variance += d * d
		}
		dev := math.Sqrt(variance / float64(period))

		b.Middle[i] = model.Some(mean)
		b.Upper[i] = model.Some(mean + multiplier*dev)
		b.Lower[i] = model.Some(mean - multiplier*dev)
	}
	return b, nil
}
