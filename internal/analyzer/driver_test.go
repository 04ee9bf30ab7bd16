package analyzer

import (
	"context"
	"errors"
	"testing"
	"time"

	"StockScope/internal/collector"
	"StockScope/internal/config"
	"StockScope/internal/model"
)

// stubFetcher serves deterministic bars per symbol and can fail or cancel
// on demand.
type stubFetcher struct {
	prices   map[string]float64
	fail     map[string]bool
	cancel   context.CancelFunc
	cancelOn string
}

func (s *stubFetcher) Name() string { return "Stub" }

func (s *stubFetcher) FetchBars(ctx context.Context, symbol string, _ model.LookbackRange) ([]model.OHLCV, error) {
	if s.cancelOn == symbol && s.cancel != nil {
		s.cancel()
		return nil, ctx.Err()
	}
	if s.fail[symbol] {
		return nil, errors.New("provider down")
	}
	price := s.prices[symbol]
	base := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	return []model.OHLCV{
		{Time: base, Open: price, High: price * 1.25, Low: price * 0.75, Close: price * 0.9},
		{Time: base.AddDate(0, 0, 1), Open: price * 0.9, High: price * 1.1, Low: price * 0.8, Close: price},
	}, nil
}

func (s *stubFetcher) FetchCurrentPrice(_ context.Context, symbol string) (float64, error) {
	if s.fail[symbol] {
		return 0, errors.New("provider down")
	}
	return s.prices[symbol], nil
}

func watchlist(symbols ...string) []config.WatchEntry {
	entries := make([]config.WatchEntry, len(symbols))
	for i, s := range symbols {
		entries[i] = config.WatchEntry{Symbol: s, Company: s + " Ltd"}
	}
	return entries
}

func TestRun_OneRecordPerSymbol(t *testing.T) {
	stub := &stubFetcher{
		prices: map[string]float64{"AAA": 100, "BBB": 200, "CCC": 300},
		fail:   map[string]bool{"BBB": true},
	}
	d := NewDriver(collector.NewCollector(stub), watchlist("AAA", "BBB", "CCC"), 0, false)

	batch, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch.Records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(batch.Records))
	}
	for i, want := range []string{"AAA", "BBB", "CCC"} {
		if batch.Records[i].Symbol != want {
			t.Errorf("record %d: expected symbol %s, got %s", i, want, batch.Records[i].Symbol)
		}
	}
	if batch.Records[0].DataSource != "Stub" {
		t.Errorf("expected live source for AAA, got %q", batch.Records[0].DataSource)
	}
	if batch.Records[1].DataSource != model.SourceUnavailable {
		t.Errorf("expected fallback source for BBB, got %q", batch.Records[1].DataSource)
	}
	if batch.RunID == "" {
		t.Error("expected non-empty run id")
	}
	if batch.GeneratedAt.IsZero() {
		t.Error("expected generation timestamp")
	}
}

func TestRun_AllFailuresStillFillBatch(t *testing.T) {
	stub := &stubFetcher{
		prices: map[string]float64{"AAA": 100, "BBB": 200},
		fail:   map[string]bool{"AAA": true, "BBB": true},
	}
	d := NewDriver(collector.NewCollector(stub), watchlist("AAA", "BBB"), 0, false)

	batch, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(batch.Records))
	}
	for _, rec := range batch.Records {
		if rec.DataSource != model.SourceUnavailable {
			t.Errorf("%s: expected fallback source, got %q", rec.Symbol, rec.DataSource)
		}
		if rec.PositionAvg != 50.0 {
			t.Errorf("%s: expected neutral overall position, got %v", rec.Symbol, rec.PositionAvg)
		}
	}
}

func TestRun_EmptyWatchlist(t *testing.T) {
	d := NewDriver(collector.NewCollector(&stubFetcher{}), nil, 0, false)
	batch, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch.Records) != 0 {
		t.Fatalf("expected empty batch, got %d records", len(batch.Records))
	}
}

func TestRun_KeepHistory(t *testing.T) {
	stub := &stubFetcher{
		prices: map[string]float64{"AAA": 100, "BBB": 200},
		fail:   map[string]bool{"BBB": true},
	}
	d := NewDriver(collector.NewCollector(stub), watchlist("AAA", "BBB"), 0, true)

	batch, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if batch.History == nil {
		t.Fatal("expected history map on chart runs")
	}
	if _, ok := batch.History["AAA"]; !ok {
		t.Error("expected history for the successful symbol")
	}
	if _, ok := batch.History["BBB"]; ok {
		t.Error("expected no history for the failed symbol")
	}
}

func TestRun_NoHistoryByDefault(t *testing.T) {
	stub := &stubFetcher{prices: map[string]float64{"AAA": 100}}
	d := NewDriver(collector.NewCollector(stub), watchlist("AAA"), 0, false)
	batch, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if batch.History != nil {
		t.Error("expected nil history when not requested")
	}
}

func TestRun_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stub := &stubFetcher{prices: map[string]float64{"AAA": 100}}
	d := NewDriver(collector.NewCollector(stub), watchlist("AAA"), 0, false)

	batch, err := d.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(batch.Records) != 0 {
		t.Errorf("expected no records, got %d", len(batch.Records))
	}
}

func TestRun_CancelMidRunReturnsPartialBatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	stub := &stubFetcher{
		prices:   map[string]float64{"AAA": 100, "BBB": 200, "CCC": 300},
		cancel:   cancel,
		cancelOn: "BBB",
	}
	d := NewDriver(collector.NewCollector(stub), watchlist("AAA", "BBB", "CCC"), 0, false)

	batch, err := d.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	// No fallback row is fabricated for the interrupted symbol.
	if len(batch.Records) != 1 {
		t.Fatalf("expected 1 record before cancellation, got %d", len(batch.Records))
	}
	if batch.Records[0].Symbol != "AAA" {
		t.Errorf("expected AAA, got %s", batch.Records[0].Symbol)
	}
}

func TestRun_DelaySkippedAfterLastSymbol(t *testing.T) {
	stub := &stubFetcher{prices: map[string]float64{"AAA": 100}}
	d := NewDriver(collector.NewCollector(stub), watchlist("AAA"), 100*time.Millisecond, false)

	start := time.Now()
	if _, err := d.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed >= 100*time.Millisecond {
		t.Errorf("single-symbol run should not pause, took %v", elapsed)
	}
}

func TestRun_DelayBetweenSymbols(t *testing.T) {
	stub := &stubFetcher{prices: map[string]float64{"AAA": 100, "BBB": 200, "CCC": 300}}
	d := NewDriver(collector.NewCollector(stub), watchlist("AAA", "BBB", "CCC"), 25*time.Millisecond, false)

	start := time.Now()
	if _, err := d.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("expected two inter-symbol pauses, took %v", elapsed)
	}
}
