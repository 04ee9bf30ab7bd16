package calculator

import (
	"errors"
	"math"
	"strconv"

	"StockScope/internal/model"
)

// RangeExtremes scans a bar slice and returns the highest high and lowest low.
func RangeExtremes(bars []model.OHLCV) (high, low float64, err error) {
	if len(bars) == 0 {
		return 0, 0, errors.New("no bars provided")
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, b := range bars {
		if b.High > high {
			high = b.High
		}
		if b.Low < low {
			low = b.Low
		}
	}
	return high, low, nil
}

// LatestClose returns the closing price of the most recent bar.
func LatestClose(bars []model.OHLCV) (float64, error) {
	if len(bars) == 0 {
		return 0, errors.New("no bars provided")
	}
	return bars[len(bars)-1].Close, nil
}

// PricePosition returns where current sits inside the [low, high] band as
// a percentage: 0 at the low, 100 at the high, clamped to [0, 100] and
// rounded to one decimal. Clamping happens before rounding. A collapsed
// or absent band (high == low, or high == 0) yields the neutral midpoint
// 50.0, as does a NaN outcome; infinite intermediates are swallowed by
// the clamp like any other out-of-band value.
func PricePosition(current, low, high float64) float64 {
	if high == low || high == 0 {
		return 50.0
	}
	pos := (current - low) / (high - low) * 100
	if math.IsNaN(pos) {
		return 50.0
	}
	if pos < 0 {
		pos = 0
	}
	if pos > 100 {
		pos = 100
	}
	return Round1(pos)
}

// Round1 rounds to one decimal place through decimal formatting, so tie
// cases follow the printed representation rather than the binary one.
func Round1(n float64) float64 {
	v, _ := strconv.ParseFloat(strconv.FormatFloat(n, 'f', 1, 64), 64)
	return v
}

// Round2 rounds to two decimal places.
func Round2(n float64) float64 {
	v, _ := strconv.ParseFloat(strconv.FormatFloat(n, 'f', 2, 64), 64)
	return v
}
