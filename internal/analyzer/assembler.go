package analyzer

import (
	"math"

	"StockScope/internal/calculator"
	"StockScope/internal/model"
)

// BuildRecord assembles one report row for a symbol. It is total: every
// failure shape degrades to a tagged fallback record instead of an error,
// so a batch never loses a row.
//
// A nil quote or a zero current price yields the "Unavailable" record; a
// non-finite current price yields the "Error" record. The two are not the
// same shape: the first carries neutral 50.0 positions, the second zeros.
func BuildRecord(symbol, company string, quote *model.StockQuote) model.StockRecord {
	if quote == nil || quote.CurrentPrice == 0 {
		return unavailableRecord(symbol, company)
	}
	if math.IsNaN(quote.CurrentPrice) || math.IsInf(quote.CurrentPrice, 0) {
		return errorRecord(symbol, company)
	}

	price := quote.CurrentPrice
	rec := model.StockRecord{
		Symbol:       symbol,
		Company:      company,
		CurrentPrice: calculator.Round2(price),
		High52W:      extremeOr(quote.High52W, price*1.2),
		Low52W:       extremeOr(quote.Low52W, price*0.8),
		High3M:       extremeOr(quote.High3M, price*1.1),
		Low3M:        extremeOr(quote.Low3M, price*0.9),
		High1M:       extremeOr(quote.High1M, price*1.05),
		Low1M:        extremeOr(quote.Low1M, price*0.95),
		DataSource:   quote.Source,
	}
	if rec.DataSource == "" {
		rec.DataSource = "Unknown"
	}

	// Positions come from the rounded record fields, not the raw quote.
	rec.Position52W = calculator.PricePosition(rec.CurrentPrice, rec.Low52W, rec.High52W)
	rec.Position3M = calculator.PricePosition(rec.CurrentPrice, rec.Low3M, rec.High3M)
	rec.Position1M = calculator.PricePosition(rec.CurrentPrice, rec.Low1M, rec.High1M)
	rec.PositionAvg = calculator.Round1((rec.Position52W + rec.Position3M + rec.Position1M) / 3)
	return rec
}

// extremeOr rounds a fetched extreme to two decimals, substituting the
// synthesized value when the fetched one is absent. Zero, negative and
// non-finite extremes all count as absent.
func extremeOr(fetched, synthesized float64) float64 {
	if fetched > 0 && !math.IsInf(fetched, 0) {
		return calculator.Round2(fetched)
	}
	return calculator.Round2(synthesized)
}

// unavailableRecord is the fallback for a symbol with no usable quote.
// The zero prices still run through the position calculator, whose
// collapsed-band branch returns the 50.0 midpoint, so the row reads as
// neutral rather than zeroed.
func unavailableRecord(symbol, company string) model.StockRecord {
	rec := model.StockRecord{
		Symbol:     symbol,
		Company:    company,
		DataSource: model.SourceUnavailable,
	}
	rec.Position52W = calculator.PricePosition(rec.CurrentPrice, rec.Low52W, rec.High52W)
	rec.Position3M = calculator.PricePosition(rec.CurrentPrice, rec.Low3M, rec.High3M)
	rec.Position1M = calculator.PricePosition(rec.CurrentPrice, rec.Low1M, rec.High1M)
	rec.PositionAvg = calculator.Round1((rec.Position52W + rec.Position3M + rec.Position1M) / 3)
	return rec
}

// errorRecord is the fallback for a quote the assembler cannot make sense
// of. Unlike the unavailable variant, every field including the positions
// stays at zero.
func errorRecord(symbol, company string) model.StockRecord {
	return model.StockRecord{
		Symbol:     symbol,
		Company:    company,
		DataSource: model.SourceError,
	}
}
