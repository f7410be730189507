package strategy

import (
	"fmt"
	"math"

	"WolfHunter/internal/model"
)

// Snapshot is everything a detector reads: the raw series and its indicators.
type Snapshot struct {
	Series     *model.Series
	Indicators *model.IndicatorSet
}

// Detector inspects the latest candle of a snapshot and reports one signal.
// Absent indicator values produce an undetected signal; only a series shorter
// than the detector's look-back is an error.
type Detector func(snap Snapshot) (model.Signal, error)

// Detectors is the fixed detector set, one per signal type.
var Detectors = []Detector{
	DetectAccumulation,
	DetectVReversal,
	DetectBandBreak,
}

func requireHistory(snap Snapshot, typ model.SignalType, lookBack int) error {
	if snap.Series == nil || snap.Indicators == nil {
		return fmt.Errorf("%s: empty snapshot", typ)
	}
	if snap.Series.Len() < lookBack {
		return fmt.Errorf("%s needs %d candles, got %d: %w",
			typ, lookBack, snap.Series.Len(), model.ErrInsufficientHistory)
	}
	return nil
}

func undetected(typ model.SignalType) model.Signal {
	return model.Signal{Type: typ}
}

// clampStrength rounds v and bounds it to [0,100].
func clampStrength(v float64) int {
	return int(math.Round(math.Max(0, math.Min(100, v))))
}
