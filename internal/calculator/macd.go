package calculator

import (
	"fmt"

	"WolfHunter/internal/model"
)

// CalculateMACD computes line = EMA(fast) − EMA(slow), signal = EMA(line, signalPeriod)
// and histogram = line − signal. Needs at least slow+signalPeriod closes.
func CalculateMACD(closes []float64, fast, slow, signalPeriod int) (model.Momentum, error) {
	if fast <= 0 || slow <= 0 || signalPeriod <= 0 {
		return model.Momentum{}, errPeriod
	}
	if fast >= slow {
		return model.Momentum{}, fmt.Errorf("fast period %d must be shorter than slow period %d", fast, slow)
	}
	if len(closes) < slow+signalPeriod {
		return model.Momentum{}, insufficient("MACD", slow+signalPeriod, len(closes))
	}

	src := toLine(closes)
	fastEMA, err := CalculateEMA(src, fast)
	if err != nil {
		return model.Momentum{}, fmt.Errorf("fast EMA: %w", err)
	}
	slowEMA, err := CalculateEMA(src, slow)
	if err != nil {
		return model.Momentum{}, fmt.Errorf("slow EMA: %w", err)
	}

	n := len(closes)
	line := model.NewLine(n)
	for i := slow - 1; i < n; i++ {
		line[i] = model.Some(fastEMA[i].V - slowEMA[i].V)
	}

	signal, err := CalculateEMA(line, signalPeriod)
	if err != nil {
		return model.Momentum{}, fmt.Errorf("signal EMA: %w", err)
	}

	hist := model.NewLine(n)
	for i := range hist {
		if signal[i].Valid {
			hist[i] = model.Some(line[i].V - signal[i].V)
		}
	}
	return model.Momentum{Line: line, Signal: signal, Histogram: hist}, nil
}
