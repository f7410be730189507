package strategy

import (
	"fmt"

	"WolfHunter/internal/model"
)

// Evaluation is the detector output for one snapshot.
type Evaluation struct {
	Signals    []model.Signal
	BuyScore   int
	Level      model.ScoreLevel
	EntryPrice float64
}

// Evaluate runs every detector and aggregates the buy score.
func Evaluate(snap Snapshot) (*Evaluation, error) {
	signals := make([]model.Signal, 0, len(Detectors))
	for _, detect := range Detectors {
		sig, err := detect(snap)
		if err != nil {
			return nil, err
		}
		if !sig.Detected {
			sig.Strength = 0
		}
		signals = append(signals, sig)
	}

	score := CalculateBuyScore(signals)
	eval := &Evaluation{
		Signals:  signals,
		BuyScore: score,
		Level:    mapLevel(score),
	}
	if eval.Level.Label == Levels[0].Label {
		last, ok := snap.Series.Latest()
		if !ok {
			return nil, fmt.Errorf("entry price: %w", model.ErrInsufficientHistory)
		}
		eval.EntryPrice = last.Close * entryDiscount
	}
	return eval, nil
}
