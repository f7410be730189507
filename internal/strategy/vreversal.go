package strategy

import (
	"fmt"
	"math"

	"WolfHunter/internal/model"
)

const vReversalOversold = 30.0

// DetectVReversal flags an oscillator trough at t-1 inside oversold territory
// confirmed by an improving momentum histogram.
func DetectVReversal(snap Snapshot) (model.Signal, error) {
	if err := requireHistory(snap, model.SignalVReversal, 3); err != nil {
		return model.Signal{}, err
	}
	osc := snap.Indicators.Oscillator
	hist := snap.Indicators.Momentum.Histogram

	beforePrev, prev, last := osc.Previous(2), osc.Previous(1), osc.Latest()
	prevHist, lastHist := hist.Previous(1), hist.Latest()
	if !beforePrev.Valid || !prev.Valid || !last.Valid || !prevHist.Valid || !lastHist.Valid {
		return undetected(model.SignalVReversal), nil
	}

	bottomed := beforePrev.V > prev.V && prev.V < last.V
	oversold := prev.V <= vReversalOversold
	improving := prevHist.V < lastHist.V
	if !bottomed || !oversold || !improving {
		return undetected(model.SignalVReversal), nil
	}

	// Deeper trough scores higher: 30 → 30 points, 0 → 60.
	rsiScore := math.Min(60, 30+(vReversalOversold-prev.V))
	macdScore := math.Min(40, math.Max(0, (lastHist.V-prevHist.V)*1000))

	return model.Signal{
		Type:     model.SignalVReversal,
		Detected: true,
		Strength: clampStrength(rsiScore + macdScore),
		Message:  fmt.Sprintf("oscillator recovered %.1f → %.1f, histogram improving", prev.V, last.V),
		Evidence: []model.Evidence{
			{Name: "oscillator_trough", Value: prev.V, Details: fmt.Sprintf("from %.2f", beforePrev.V)},
			{Name: "oscillator", Value: last.V},
			{Name: "histogram_delta", Value: lastHist.V - prevHist.V,
				Details: fmt.Sprintf("%.6f → %.6f", prevHist.V, lastHist.V)},
		},
	}, nil
}
