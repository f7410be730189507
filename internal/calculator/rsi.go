package calculator

import "WolfHunter/internal/model"

// CalculateRSI computes the Wilder-smoothed RSI line over the given period.
// Requires at least period+1 closes; the first period positions are absent.
func CalculateRSI(closes []float64, period int) (model.Line, error) {
	if period <= 0 {
		return nil, errPeriod
	}
	if len(closes) < period+1 {
		return nil, insufficient("RSI", period+1, len(closes))
	}

	out := model.NewLine(len(closes))

	n := float64(period)

	// Seed with plain averages over the first period changes.
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		gain, loss := priceMove(closes[i-1], closes[i])
		avgGain += gain
		avgLoss += loss
	}
	avgGain /= n
	avgLoss /= n
	out[period] = model.Some(rsiFrom(avgGain, avgLoss))

	for i := period + 1; i < len(closes); i++ {
		gain, loss := priceMove(closes[i-1], closes[i])
		avgGain = (avgGain*(n-1) + gain) / n
		avgLoss = (avgLoss*(n-1) + loss) / n
		out[i] = model.Some(rsiFrom(avgGain, avgLoss))
	}
	return out, nil
}

// priceMove splits the change from prev to cur into a non-negative gain and loss.
func priceMove(prev, cur float64) (gain, loss float64) {
	d := cur - prev
	if d > 0 {
		return d, 0
	}
	return 0, -d
}

// rsiFrom maps smoothed averages to 0..100; no losses at all reads as 100.
func rsiFrom(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	return 100 - 100/(1+avgGain/avgLoss)
}
