package model

import "time"

// SignalType identifies a pattern detector.
type SignalType string

const (
	SignalAccumulation SignalType = "ACCUMULATION"
	SignalVReversal    SignalType = "V_REVERSAL"
	SignalBandBreak    SignalType = "BAND_BREAK"
)

// Evidence is one named reading backing a detection.
type Evidence struct {
	Name    string  `json:"name"`
	Value   float64 `json:"value"`
	Details string  `json:"details,omitempty"`
}

// Signal is the outcome of one detector. Strength is 0 unless Detected.
type Signal struct {
	Type     SignalType `json:"type"`
	Detected bool       `json:"detected"`
	Strength int        `json:"strength"`
	Message  string     `json:"message"`
	Evidence []Evidence `json:"evidence,omitempty"`
}

// ScoreLevel is a coarse band over the 0-100 buy score.
type ScoreLevel struct {
	Label    string `json:"label"`
	MinScore int    `json:"minScore"`
}

// Result is one complete evaluation of a timeframe. It is shared between
// cache readers and must be treated as read-only.
type Result struct {
	ID         string        `json:"id"`
	Timeframe  Timeframe     `json:"timeframe"`
	Series     *Series       `json:"series"`
	Indicators *IndicatorSet `json:"indicators"`
	Signals    []Signal      `json:"signals"`
	BuyScore   int           `json:"buyScore"`
	Level      ScoreLevel    `json:"level"`
	EntryPrice float64       `json:"entryPrice,omitempty"` // suggested entry, set only for the top level
	ComputedAt time.Time     `json:"computedAt"`
	Stale      bool          `json:"stale"` // served as fallback after a failed recompute
}

// Detected returns the signals that fired.
func (r *Result) Detected() []Signal {
	var out []Signal
	for _, s := range r.Signals {
		if s.Detected {
			out = append(out, s)
		}
	}
	return out
}
