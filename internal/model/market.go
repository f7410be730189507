package model

import (
	"fmt"
	"time"
)

// Timeframe is one of the fixed candle bucket sizes the engine evaluates.
type Timeframe string

const (
	Timeframe1m  Timeframe = "1m"
	Timeframe3m  Timeframe = "3m"
	Timeframe5m  Timeframe = "5m"
	Timeframe10m Timeframe = "10m"
	Timeframe15m Timeframe = "15m"
	Timeframe30m Timeframe = "30m"
	Timeframe1h  Timeframe = "1h"
	Timeframe4h  Timeframe = "4h"
	Timeframe1d  Timeframe = "1d"
)

// Timeframes lists every supported timeframe, shortest first.
var Timeframes = []Timeframe{
	Timeframe1m, Timeframe3m, Timeframe5m, Timeframe10m, Timeframe15m,
	Timeframe30m, Timeframe1h, Timeframe4h, Timeframe1d,
}

type timeframeInfo struct {
	bucket time.Duration
	ttl    time.Duration
}

// Shorter timeframes age faster.
var timeframeInfos = map[Timeframe]timeframeInfo{
	Timeframe1m:  {time.Minute, 30 * time.Second},
	Timeframe3m:  {3 * time.Minute, 60 * time.Second},
	Timeframe5m:  {5 * time.Minute, 60 * time.Second},
	Timeframe10m: {10 * time.Minute, 120 * time.Second},
	Timeframe15m: {15 * time.Minute, 120 * time.Second},
	Timeframe30m: {30 * time.Minute, 300 * time.Second},
	Timeframe1h:  {time.Hour, 600 * time.Second},
	Timeframe4h:  {4 * time.Hour, 1800 * time.Second},
	Timeframe1d:  {24 * time.Hour, 3600 * time.Second},
}

// ParseTimeframe validates s against the enumerated set.
func ParseTimeframe(s string) (Timeframe, error) {
	tf := Timeframe(s)
	if !tf.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeframe, s)
	}
	return tf, nil
}

// Valid reports whether tf is a supported timeframe.
func (tf Timeframe) Valid() bool {
	_, ok := timeframeInfos[tf]
	return ok
}

// TTL returns how long an evaluation for tf stays fresh. Zero for unknown timeframes.
func (tf Timeframe) TTL() time.Duration {
	return timeframeInfos[tf].ttl
}

// Duration returns the bucket length of one candle.
func (tf Timeframe) Duration() time.Duration {
	return timeframeInfos[tf].bucket
}

func (tf Timeframe) String() string { return string(tf) }

// Candle represents a single OHLCV bar. Timestamp is the bucket open in ms since epoch.
type Candle struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// Time returns the candle open time.
func (c Candle) Time() time.Time {
	return time.UnixMilli(c.Timestamp)
}

// Series is an ascending, duplicate-free run of candles for one timeframe.
// It is never mutated after construction.
type Series struct {
	Timeframe Timeframe `json:"timeframe"`
	Candles   []Candle  `json:"candles"`
}

// NewSeries validates ordering and returns a Series that owns a copy of candles.
func NewSeries(tf Timeframe, candles []Candle) (*Series, error) {
	if !tf.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimeframe, tf)
	}
	for i := 1; i < len(candles); i++ {
		if candles[i].Timestamp <= candles[i-1].Timestamp {
			return nil, fmt.Errorf("candles not strictly ascending at index %d (%d after %d)",
				i, candles[i].Timestamp, candles[i-1].Timestamp)
		}
	}
	owned := make([]Candle, len(candles))
	copy(owned, candles)
	return &Series{Timeframe: tf, Candles: owned}, nil
}

// Len returns the number of candles.
func (s *Series) Len() int { return len(s.Candles) }

// Latest returns the most recent candle.
func (s *Series) Latest() (Candle, bool) {
	return s.Previous(0)
}

// Previous returns the candle n steps before the latest one; Previous(0) is the latest.
func (s *Series) Previous(n int) (Candle, bool) {
	i := len(s.Candles) - 1 - n
	if n < 0 || i < 0 {
		return Candle{}, false
	}
	return s.Candles[i], true
}

func (s *Series) Opens() []float64   { return s.column(func(c Candle) float64 { return c.Open }) }
func (s *Series) Highs() []float64   { return s.column(func(c Candle) float64 { return c.High }) }
func (s *Series) Lows() []float64    { return s.column(func(c Candle) float64 { return c.Low }) }
func (s *Series) Closes() []float64  { return s.column(func(c Candle) float64 { return c.Close }) }
func (s *Series) Volumes() []float64 { return s.column(func(c Candle) float64 { return c.Volume }) }

func (s *Series) column(pick func(Candle) float64) []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = pick(c)
	}
	return out
}
