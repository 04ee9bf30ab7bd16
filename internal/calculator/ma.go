package calculator

import (
	"errors"
	"time"

	"StockScope/internal/model"
)

// SMA computes the simple moving average of the last period values.
func SMA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(values) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(values) - period; i < len(values); i++ {
		sum += values[i]
	}
	return sum / float64(period), nil
}

// MovingAverage returns the rolling simple moving average of the closes,
// aligned with the bar times from index period-1 onward. Too few bars
// yield empty slices.
func MovingAverage(bars []model.OHLCV, period int) ([]time.Time, []float64) {
	if period <= 0 || len(bars) < period {
		return nil, nil
	}
	xs := make([]time.Time, 0, len(bars)-period+1)
	ys := make([]float64, 0, len(bars)-period+1)
	sum := 0.0
	for i, b := range bars {
		sum += b.Close
		if i >= period {
			sum -= bars[i-period].Close
		}
		if i >= period-1 {
			xs = append(xs, b.Time)
			ys = append(ys, sum/float64(period))
		}
	}
	return xs, ys
}
