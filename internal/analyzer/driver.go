package analyzer

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"StockScope/internal/collector"
	"StockScope/internal/config"
	"StockScope/internal/model"
)

// Driver runs the whole watchlist through fetch and assembly, one symbol
// at a time.
type Driver struct {
	Collector   *collector.Collector
	Watchlist   []config.WatchEntry
	Delay       time.Duration
	KeepHistory bool
}

// NewDriver creates a Driver. delay is the pause inserted between
// successive symbol fetches; keepHistory retains each symbol's daily bars
// on the batch for chart rendering.
func NewDriver(col *collector.Collector, watchlist []config.WatchEntry, delay time.Duration, keepHistory bool) *Driver {
	return &Driver{
		Collector:   col,
		Watchlist:   watchlist,
		Delay:       delay,
		KeepHistory: keepHistory,
	}
}

// Run analyzes every watchlist symbol in order and returns the batch.
// Each symbol contributes exactly one record whatever the outcome of its
// fetch: failures degrade to tagged fallback rows, never retries. On
// cancellation the partial batch is returned together with the context
// error.
func (d *Driver) Run(ctx context.Context) (*model.AnalysisBatch, error) {
	batch := &model.AnalysisBatch{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now(),
		Records:     make([]model.StockRecord, 0, len(d.Watchlist)),
	}
	if d.KeepHistory {
		batch.History = make(map[string][]model.OHLCV, len(d.Watchlist))
	}

	log.Info().Str("run_id", batch.RunID).Int("symbols", len(d.Watchlist)).Msg("starting analysis batch")

	for i, entry := range d.Watchlist {
		if err := ctx.Err(); err != nil {
			return batch, err
		}

		log.Info().Str("symbol", entry.Symbol).Msg("analyzing")
		quote, err := d.Collector.Snapshot(ctx, entry.Symbol)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return batch, err
			}
			log.Warn().Err(err).Str("symbol", entry.Symbol).Msg("fetch failed, recording fallback row")
			quote = nil
		}

		rec := BuildRecord(entry.Symbol, entry.Company, quote)
		batch.Records = append(batch.Records, rec)
		log.Info().
			Str("symbol", entry.Symbol).
			Float64("price", rec.CurrentPrice).
			Float64("overall", rec.PositionAvg).
			Str("source", rec.DataSource).
			Msg("row assembled")

		if d.KeepHistory && quote != nil && len(quote.DailyBars) > 0 {
			batch.History[entry.Symbol] = quote.DailyBars
		}

		if i < len(d.Watchlist)-1 && d.Delay > 0 {
			select {
			case <-ctx.Done():
				return batch, ctx.Err()
			case <-time.After(d.Delay):
			}
		}
	}

	return batch, nil
}
