package collector

import (
	"context"
	"errors"

	"StockScope/internal/model"
)

// ErrNoData reports that the provider returned no usable series for a symbol.
var ErrNoData = errors.New("no data for symbol")

// Fetcher defines the interface for fetching market data. Name is the
// label stamped on records built from this source.
type Fetcher interface {
	FetchBars(ctx context.Context, symbol string, rng model.LookbackRange) ([]model.OHLCV, error)
	FetchCurrentPrice(ctx context.Context, symbol string) (float64, error)
	Name() string
}
