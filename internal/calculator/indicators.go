package calculator

import (
	"fmt"

	"WolfHunter/internal/model"
)

// Params holds every indicator window.
type Params struct {
	BandPeriod       int
	BandWidth        float64
	OscillatorPeriod int
	FastPeriod       int
	SlowPeriod       int
	SignalPeriod     int
	VolumePeriod     int
	StabilityPeriod  int
}

// DefaultParams are the windows the detectors are calibrated for.
var DefaultParams = Params{
	BandPeriod:       20,
	BandWidth:        2,
	OscillatorPeriod: 14,
	FastPeriod:       12,
	SlowPeriod:       26,
	SignalPeriod:     9,
	VolumePeriod:     5,
	StabilityPeriod:  5,
}

// MinHistory is the shortest series for which every indicator is computable.
func (p Params) MinHistory() int {
	return max(p.BandPeriod, p.OscillatorPeriod+1, p.SlowPeriod+p.SignalPeriod,
		p.VolumePeriod+1, p.StabilityPeriod)
}

// ComputeIndicators derives every indicator line for the series.
func ComputeIndicators(s *model.Series, p Params) (*model.IndicatorSet, error) {
	closes := s.Closes()

	bands, err := CalculateBands(closes, p.BandPeriod, p.BandWidth)
	if err != nil {
		return nil, fmt.Errorf("bands: %w", err)
	}
	rsi, err := CalculateRSI(closes, p.OscillatorPeriod)
	if err != nil {
		return nil, fmt.Errorf("oscillator: %w", err)
	}
	macd, err := CalculateMACD(closes, p.FastPeriod, p.SlowPeriod, p.SignalPeriod)
	if err != nil {
		return nil, fmt.Errorf("momentum: %w", err)
	}
	vol, err := CalculateVolumeChange(s.Volumes(), p.VolumePeriod)
	if err != nil {
		return nil, fmt.Errorf("volume change: %w", err)
	}
	stab, err := CalculatePriceStability(closes, p.StabilityPeriod)
	if err != nil {
		return nil, fmt.Errorf("stability: %w", err)
	}

	return &model.IndicatorSet{
		Bands:        bands,
		Oscillator:   rsi,
		Momentum:     macd,
		VolumeChange: vol,
		Stability:    stab,
	}, nil
}
