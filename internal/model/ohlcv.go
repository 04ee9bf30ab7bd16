package model

import "time"

// OHLCV represents a single daily candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// LookbackRange identifies a provider price-history window.
type LookbackRange string

const (
	Range1d  LookbackRange = "1d"
	Range1mo LookbackRange = "1mo"
	Range3mo LookbackRange = "3mo"
	Range1y  LookbackRange = "1y"
)
