package calculator

import (
	"errors"
	"fmt"

	"WolfHunter/internal/model"
)

var errPeriod = errors.New("period must be positive")

func insufficient(name string, need, have int) error {
	return fmt.Errorf("%s needs %d values, got %d: %w", name, need, have, model.ErrInsufficientHistory)
}

// CalculateSMA computes the simple moving average of the trailing period prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errPeriod
	}
	if len(prices) < period {
		return 0, insufficient("SMA", period, len(prices))
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// CalculateEMA returns the exponential moving average of src, seeded with the
// simple mean of the first period defined values. Absent inputs before the
// first defined value stay absent; the result is always len(src) long.
func CalculateEMA(src model.Line, period int) (model.Line, error) {
	if period <= 0 {
		return nil, errPeriod
	}
	out := model.NewLine(len(src))
	first := -1
	for i, v := range src {
		if v.Valid {
			first = i
			break
		}
	}
	if first < 0 {
		return nil, insufficient("EMA", period, 0)
	}
	if len(src)-first < period {
		return nil, insufficient("EMA", period, len(src)-first)
	}

	seedEnd := first + period - 1
	sum := 0.0
	for i := first; i <= seedEnd; i++ {
		if !src[i].Valid {
			return nil, fmt.Errorf("EMA input has a gap at index %d", i)
		}
		sum += src[i].V
	}
	prev := sum / float64(period)
	out[seedEnd] = model.Some(prev)

	k := 2.0 / float64(period+1)
	for i := seedEnd + 1; i < len(src); i++ {
		if !src[i].Valid {
			return nil, fmt.Errorf("EMA input has a gap at index %d", i)
		}
		prev = (src[i].V-prev)*k + prev
		out[i] = model.Some(prev)
	}
	return out, nil
}

// toLine lifts raw prices into a fully defined line.
func toLine(prices []float64) model.Line {
	out := make(model.Line, len(prices))
	for i, p := range prices {
		out[i] = model.Some(p)
	}
	return out
}
