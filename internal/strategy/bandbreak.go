package strategy

import (
	"fmt"
	"math"

	"WolfHunter/internal/model"
)

// Close may sit this far below the lower band and still count as recovering.
const bandRecoveryTolerance = 0.99

// DetectBandBreak flags a low that pierced the lower band at t-1 or t while the
// latest close is back above, or within 1% of, the band.
func DetectBandBreak(snap Snapshot) (model.Signal, error) {
	if err := requireHistory(snap, model.SignalBandBreak, 2); err != nil {
		return model.Signal{}, err
	}
	lowerLine := snap.Indicators.Bands.Lower
	last, _ := snap.Series.Latest()
	prev, _ := snap.Series.Previous(1)

	lastLower, prevLower := lowerLine.Latest(), lowerLine.Previous(1)
	if !lastLower.Valid || lastLower.V <= 0 {
		return undetected(model.SignalBandBreak), nil
	}

	currentBroke := last.Low < lastLower.V
	prevBroke := prevLower.Valid && prevLower.V > 0 && prev.Low < prevLower.V
	recovering := last.Close > lastLower.V || last.Close/lastLower.V > bandRecoveryTolerance
	if !(currentBroke || prevBroke) || !recovering {
		return undetected(model.SignalBandBreak), nil
	}

	// Depth of the breach, 0→5% below the band earns 0→30 points.
	var breakthroughScore float64
	var breach model.Evidence
	if currentBroke {
		breakthroughScore = math.Min(30, (1-last.Low/lastLower.V)*600)
		breach = model.Evidence{Name: "breach_depth", Value: 1 - last.Low/lastLower.V, Details: "latest candle"}
	} else {
		breakthroughScore = math.Min(30, (1-prev.Low/prevLower.V)*600)
		breach = model.Evidence{Name: "breach_depth", Value: 1 - prev.Low/prevLower.V, Details: "previous candle"}
	}

	ratio := last.Close / lastLower.V
	var recoveryScore float64
	if last.Close > lastLower.V {
		recoveryScore = 30 + math.Min(40, (ratio-1)*800)
	} else {
		recoveryScore = math.Min(25, ratio*100-75)
	}

	return model.Signal{
		Type:     model.SignalBandBreak,
		Detected: true,
		Strength: clampStrength(breakthroughScore + recoveryScore),
		Message:  "low pierced the lower band and price is recovering",
		Evidence: []model.Evidence{
			breach,
			{Name: "lower_band", Value: lastLower.V},
			{Name: "close_to_band", Value: ratio, Details: fmt.Sprintf("close %.8g", last.Close)},
		},
	}, nil
}
