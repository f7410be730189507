package model

import "errors"

var (
	// ErrInsufficientHistory means the series is shorter than an indicator window or detector look-back.
	ErrInsufficientHistory = errors.New("insufficient history")
	// ErrDataUnavailable means the upstream candle source failed.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrInvalidTimeframe means the key is not one of the enumerated timeframes.
	ErrInvalidTimeframe = errors.New("invalid timeframe")
)
