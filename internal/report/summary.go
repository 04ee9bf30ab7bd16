package report

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"StockScope/internal/model"
)

// FormatSummary renders the finished batch as a console table with one
// verdict line per symbol. Informational only; nothing parses it.
func FormatSummary(batch *model.AnalysisBatch) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("NSE Stock Analysis | %s | run %s\n\n",
		batch.GeneratedAt.Format("02 Jan 2006 15:04"), batch.RunID))

	b.WriteString(fmt.Sprintf("%-12s %14s %12s %12s %7s %7s %7s %8s  %s\n",
		"Symbol", "Price (₹)", "52W Low", "52W High", "52W %", "3M %", "1M %", "Overall", "Source"))
	b.WriteString(strings.Repeat("-", 100) + "\n")

	for _, r := range batch.Records {
		b.WriteString(fmt.Sprintf("%-12s %14s %12s %12s %7.1f %7.1f %7.1f %7.1f%%  %s\n",
			r.Symbol,
			humanize.CommafWithDigits(r.CurrentPrice, 2),
			humanize.CommafWithDigits(r.Low52W, 2),
			humanize.CommafWithDigits(r.High52W, 2),
			r.Position52W,
			r.Position3M,
			r.Position1M,
			r.PositionAvg,
			r.DataSource))
	}

	b.WriteString("\n")
	for _, r := range batch.Records {
		b.WriteString(fmt.Sprintf("  %s (%s): %s at %.1f%% of recent ranges\n",
			r.Symbol, r.Company, RatingZone(r.PositionAvg).Label, r.PositionAvg))
	}

	return b.String()
}
