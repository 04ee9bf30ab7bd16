package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"StockScope/internal/calculator"
	"StockScope/internal/model"
)

// MockFetcher returns controllable fixed data for offline runs and testing.
type MockFetcher struct {
	Price float64
	Bars  map[model.LookbackRange][]model.OHLCV
}

func (m *MockFetcher) Name() string { return "Mock" }

func (m *MockFetcher) FetchBars(_ context.Context, _ string, rng model.LookbackRange) ([]model.OHLCV, error) {
	if bars, ok := m.Bars[rng]; ok {
		return bars, nil
	}
	return generateMockBars(m.Price, barCount(rng)), nil
}

func (m *MockFetcher) FetchCurrentPrice(_ context.Context, _ string) (float64, error) {
	return m.Price, nil
}

func barCount(rng model.LookbackRange) int {
	switch rng {
	case model.Range1y:
		return 252
	case model.Range3mo:
		return 66
	case model.Range1mo:
		return 22
	default:
		return 1
	}
}

func generateMockBars(basePrice float64, count int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   time.Now().AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// Collector turns raw provider responses into a complete StockQuote.
type Collector struct {
	Fetcher Fetcher
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher) *Collector {
	return &Collector{Fetcher: fetcher}
}

// Snapshot fetches the current price and the three lookback windows for
// one symbol. A missing 1-year series fails the whole snapshot; missing
// shorter windows only leave their extremes at zero for the assembler to
// synthesize, and a missing live quote falls back to the latest close.
func (c *Collector) Snapshot(ctx context.Context, symbol string) (*model.StockQuote, error) {
	yearBars, err := c.Fetcher.FetchBars(ctx, symbol, model.Range1y)
	if err != nil {
		return nil, fmt.Errorf("fetch 1y bars: %w", err)
	}
	if len(yearBars) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, ErrNoData)
	}

	q := &model.StockQuote{
		Symbol:    symbol,
		Source:    c.Fetcher.Name(),
		DailyBars: yearBars,
		FetchedAt: time.Now(),
	}

	if high, low, err := calculator.RangeExtremes(yearBars); err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("52-week range unavailable")
	} else {
		q.High52W, q.Low52W = high, low
	}

	if bars, err := c.Fetcher.FetchBars(ctx, symbol, model.Range3mo); err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("3-month window unavailable, extremes will be synthesized")
	} else if high, low, err := calculator.RangeExtremes(bars); err == nil {
		q.High3M, q.Low3M = high, low
	}

	if bars, err := c.Fetcher.FetchBars(ctx, symbol, model.Range1mo); err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("1-month window unavailable, extremes will be synthesized")
	} else if high, low, err := calculator.RangeExtremes(bars); err == nil {
		q.High1M, q.Low1M = high, low
	}

	if price, err := c.Fetcher.FetchCurrentPrice(ctx, symbol); err != nil || price == 0 {
		if err != nil {
			log.Warn().Err(err).Str("symbol", symbol).Msg("live quote unavailable, using latest close")
		}
		if last, cerr := calculator.LatestClose(yearBars); cerr == nil {
			q.CurrentPrice = last
		}
	} else {
		q.CurrentPrice = price
	}

	return q, nil
}
