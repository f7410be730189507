package calculator

import (
	"math"

	"WolfHunter/internal/model"
)

// CalculateVolumeChange returns, for each index i >= period, the percentage by
// which volume[i] exceeds the mean of the preceding period volumes. Positions
// without a full baseline, or with a zero baseline, are absent.
func CalculateVolumeChange(volumes []float64, period int) (model.Line, error) {
	if period <= 0 {
		return nil, errPeriod
	}
	if len(volumes) < period+1 {
		return nil, insufficient("volume change", period+1, len(volumes))
	}

	out := model.NewLine(len(volumes))
	for i := period; i < len(volumes); i++ {
		avg, _ := CalculateSMA(volumes[i-period:i], period)
		if avg == 0 {
			continue
		}
		out[i] = model.Some((volumes[i]/avg - 1) * 100)
	}
	return out, nil
}

// CalculatePriceStability scores how flat the trailing period closes are:
// max(0, 100 − (max−min)/mean × 100). 100 is perfectly flat.
func CalculatePriceStability(closes []float64, period int) (model.Line, error) {
	if period <= 0 {
		return nil, errPeriod
	}
	if len(closes) < period {
		return nil, insufficient("price stability", period, len(closes))
	}

	out := model.NewLine(len(closes))
	for i := period - 1; i < len(closes); i++ {
		window := closes[i-period+1 : i+1]
		high, low := windowRange(window)
		mean, _ := CalculateSMA(window, period)
		if mean == 0 {
			continue
		}
		volatility := (high - low) / mean
		out[i] = model.Some(math.Max(0, 100-volatility*100))
	}
	return out, nil
}

func windowRange(window []float64) (high, low float64) {
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, v := range window {
		if v > high {
			high = v
		}
		if v < low {
			low = v
		}
	}
	return high, low
}
