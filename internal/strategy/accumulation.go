package strategy

import (
	"fmt"
	"math"

	"WolfHunter/internal/model"
)

const (
	accumulationMinVolumeChange = 30.0
	accumulationMinStability    = 70.0
)

// DetectAccumulation flags a volume surge while price moves sideways.
// Volume change 30%→100% earns 0→50 points, stability 70→100 earns 0→50.
func DetectAccumulation(snap Snapshot) (model.Signal, error) {
	if err := requireHistory(snap, model.SignalAccumulation, 1); err != nil {
		return model.Signal{}, err
	}
	volume := snap.Indicators.VolumeChange.Latest()
	stability := snap.Indicators.Stability.Latest()
	if !volume.Valid || !stability.Valid {
		return undetected(model.SignalAccumulation), nil
	}
	if volume.V < accumulationMinVolumeChange || stability.V < accumulationMinStability {
		return undetected(model.SignalAccumulation), nil
	}

	volumeScore := math.Min(50, (volume.V-accumulationMinVolumeChange)*(50.0/70.0))
	stabilityScore := math.Min(50, (stability.V-accumulationMinStability)*(50.0/30.0))

	return model.Signal{
		Type:     model.SignalAccumulation,
		Detected: true,
		Strength: clampStrength(volumeScore + stabilityScore),
		Message:  fmt.Sprintf("volume up %.1f%%, price stability %.1f", volume.V, stability.V),
		Evidence: []model.Evidence{
			{Name: "volume_change", Value: volume.V, Details: fmt.Sprintf("score %.2f/50", volumeScore)},
			{Name: "stability", Value: stability.V, Details: fmt.Sprintf("score %.2f/50", stabilityScore)},
		},
	}, nil
}
