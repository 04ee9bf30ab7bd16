package model

import "time"

// Data source labels stamped on fallback records.
const (
	SourceUnavailable = "Unavailable"
	SourceError       = "Error"
)

// StockQuote holds the raw numbers fetched for one symbol. Extremes the
// provider could not supply are left at zero; the assembler synthesizes
// them. Consumed immediately after the fetch, never retained across runs.
type StockQuote struct {
	Symbol       string
	CurrentPrice float64
	High52W      float64
	Low52W       float64
	High3M       float64
	Low3M        float64
	High1M       float64
	Low1M        float64
	Source       string
	DailyBars    []OHLCV // one year of daily bars, kept for trend charts
	FetchedAt    time.Time
}

// StockRecord is one symbol's report-ready row: price fields rounded to
// two decimals, position percentages to one. Never mutated after assembly.
type StockRecord struct {
	Symbol       string
	Company      string
	CurrentPrice float64
	High52W      float64
	Low52W       float64
	High3M       float64
	Low3M        float64
	High1M       float64
	Low1M        float64
	DataSource   string
	Position52W  float64 // 0 ~ 100
	Position3M   float64
	Position1M   float64
	PositionAvg  float64
}

// AnalysisBatch is the outcome of one full watchlist pass. Records keeps
// watchlist order and always holds exactly one entry per configured
// symbol, whatever mix of successes and failures the run produced.
type AnalysisBatch struct {
	RunID       string
	GeneratedAt time.Time
	Records     []StockRecord
	History     map[string][]OHLCV
}
