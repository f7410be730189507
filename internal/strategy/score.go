package strategy

import (
	"math"

	"WolfHunter/internal/model"
)

// Levels maps the buy score to a coarse label, highest first.
var Levels = []model.ScoreLevel{
	{Label: "STRONG", MinScore: 70},
	{Label: "ELEVATED", MinScore: 50},
	{Label: "MODERATE", MinScore: 30},
}

// DefaultLevel is the level for scores below every threshold.
var DefaultLevel = model.ScoreLevel{Label: "LOW", MinScore: 0}

// entryDiscount is applied to the latest close to suggest an entry price at the top level.
const entryDiscount = 0.99

// CalculateBuyScore sums the strength of detected signals against 100 per
// signal type and scales to 0-100.
func CalculateBuyScore(signals []model.Signal) int {
	if len(signals) == 0 {
		return 0
	}
	total := 0
	for _, s := range signals {
		if s.Detected {
			total += s.Strength
		}
	}
	maxPossible := float64(100 * len(signals))
	return int(math.Round(math.Min(100, float64(total)/maxPossible*100)))
}

func mapLevel(score int) model.ScoreLevel {
	for _, l := range Levels {
		if score >= l.MinScore {
			return l
		}
	}
	return DefaultLevel
}
