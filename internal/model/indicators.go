package model

import (
	"encoding/json"
	"strconv"
)

// Value is one indicator reading. Positions inside the warm-up window are absent
// (Valid=false), never zero.
type Value struct {
	V     float64
	Valid bool
}

// Some returns a defined Value.
func Some(v float64) Value { return Value{V: v, Valid: true} }

// MarshalJSON encodes absent values as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v.V, 'g', -1, 64), nil
}

// UnmarshalJSON accepts a number or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Value{}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Some(f)
	return nil
}

// Line is an indicator output index-aligned with its source series.
type Line []Value

// NewLine returns a line of n absent values.
func NewLine(n int) Line { return make(Line, n) }

// Latest returns the value at the last index.
func (l Line) Latest() Value { return l.Previous(0) }

// Previous returns the value n steps before the last index. Out-of-range is absent.
func (l Line) Previous(n int) Value {
	i := len(l) - 1 - n
	if n < 0 || i < 0 {
		return Value{}
	}
	return l[i]
}

// Defined counts the non-absent values.
func (l Line) Defined() int {
	n := 0
	for _, v := range l {
		if v.Valid {
			n++
		}
	}
	return n
}

// Bands holds the volatility band lines.
type Bands struct {
	Upper  Line `json:"upper"`
	Middle Line `json:"middle"`
	Lower  Line `json:"lower"`
}

// Momentum holds the convergence/divergence lines.
type Momentum struct {
	Line      Line `json:"line"`
	Signal    Line `json:"signal"`
	Histogram Line `json:"histogram"`
}

// IndicatorSet is every derived line for one series, each the same length as the closes.
type IndicatorSet struct {
	Bands        Bands    `json:"bands"`
	Oscillator   Line     `json:"oscillator"`
	Momentum     Momentum `json:"momentum"`
	VolumeChange Line     `json:"volumeChange"`
	Stability    Line     `json:"stability"`
}
