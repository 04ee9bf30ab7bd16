package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-pdf/fpdf"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"StockScope/internal/calculator"
	"StockScope/internal/model"
)

// ErrNoChartData reports a batch with no live prices to draw.
var ErrNoChartData = errors.New("no records with a nonzero price")

// ChartOptions configures one chart-bundle rendering. The palette travels
// with the call so consecutive bundles can use different themes.
type ChartOptions struct {
	OutDir  string
	Palette Palette
}

// Page geometry, A4 landscape in millimetres.
const (
	pageW  = 297.0
	pageH  = 210.0
	margin = 15.0
)

// WriteChartBundle renders the six-section chart bundle for a finished
// batch into one PDF and returns its path. Returns ErrNoChartData when no
// record carries a nonzero price; callers log that and move on.
func WriteChartBundle(batch *model.AnalysisBatch, opts ChartOptions) (string, error) {
	live := liveRecords(batch)
	if len(live) == 0 {
		return "", ErrNoChartData
	}
	p := opts.Palette
	if len(p.Series) == 0 {
		p = LightPalette()
	}
	if opts.OutDir == "" {
		opts.OutDir = "."
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("NSE Stock Analysis Charts", true)
	pdf.SetAuthor("StockScope", true)
	pdf.SetSubject("Price position analysis", true)
	pdf.SetCreator("StockScope run "+batch.RunID, true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(150, 150, 150)
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d/{nb} | generated %s",
			pdf.PageNo(), batch.GeneratedAt.Format("02 Jan 2006 15:04")), "", 0, "C", false, 0, "")
	})

	if err := pagePrices(pdf, live, p); err != nil {
		return "", fmt.Errorf("price page: %w", err)
	}
	if err := pagePositions(pdf, batch.Records, p); err != nil {
		return "", fmt.Errorf("position page: %w", err)
	}
	if err := pageRating(pdf, batch.Records, p); err != nil {
		return "", fmt.Errorf("rating page: %w", err)
	}
	pageRanges(pdf, live, p)
	if err := pageTrends(pdf, batch, p); err != nil {
		return "", fmt.Errorf("trend page: %w", err)
	}
	pageHeatmap(pdf, batch.Records, p)

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(opts.OutDir, "Stock_Analysis_Charts_"+batch.GeneratedAt.Format("20060102_150405")+".pdf")
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("write pdf: %w", err)
	}
	return path, nil
}

func liveRecords(batch *model.AnalysisBatch) []model.StockRecord {
	live := make([]model.StockRecord, 0, len(batch.Records))
	for _, r := range batch.Records {
		if r.CurrentPrice > 0 {
			live = append(live, r)
		}
	}
	return live
}

// startPage opens a page painted with the theme ground plus a heading.
func startPage(pdf *fpdf.Fpdf, p Palette, title, subtitle string) {
	pdf.AddPage()
	if p.Background != (drawing.Color{R: 255, G: 255, B: 255, A: 255}) {
		setFill(pdf, p.Background)
		pdf.Rect(0, 0, pageW, pageH, "F")
	}
	setText(pdf, p.Text)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(margin, 12)
	pdf.CellFormat(pageW-2*margin, 8, title, "", 1, "L", false, 0, "")
	if subtitle != "" {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetX(margin)
		pdf.CellFormat(pageW-2*margin, 6, subtitle, "", 1, "L", false, 0, "")
	}
}

func setText(pdf *fpdf.Fpdf, c drawing.Color) { pdf.SetTextColor(int(c.R), int(c.G), int(c.B)) }
func setFill(pdf *fpdf.Fpdf, c drawing.Color) { pdf.SetFillColor(int(c.R), int(c.G), int(c.B)) }
func setDraw(pdf *fpdf.Fpdf, c drawing.Color) { pdf.SetDrawColor(int(c.R), int(c.G), int(c.B)) }

// barCanvasWidth keeps wide watchlists from spilling past the canvas
// edge while leaving short ones at a comfortable default width.
func barCanvasWidth(bars, barWidth, spacing int) int {
	w := bars*(barWidth+spacing) + 200
	if w < 1600 {
		return 1600
	}
	return w
}

// embedChart renders a go-chart figure to PNG in memory and places it on
// the current page at the given width, preserving aspect ratio.
func embedChart(pdf *fpdf.Fpdf, name string, render func(io.Writer) error, x, y, w float64) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return err
	}
	opt := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opt, &buf)
	pdf.ImageOptions(name, x, y, w, 0, false, opt, 0, "")
	return nil
}

// pagePrices draws the current-price bar comparison.
func pagePrices(pdf *fpdf.Fpdf, live []model.StockRecord, p Palette) error {
	startPage(pdf, p, "Current Price Comparison", "Latest traded price per symbol, INR")

	bars := make([]chart.Value, 0, len(live))
	for i, r := range live {
		c := p.Series[i%len(p.Series)]
		bars = append(bars, chart.Value{
			Label: r.Symbol,
			Value: r.CurrentPrice,
			Style: chart.Style{FillColor: c, StrokeColor: c},
		})
	}
	bc := chart.BarChart{
		Width:        barCanvasWidth(len(bars), 120, 60),
		Height:       860,
		BarWidth:     120,
		BarSpacing:   60,
		UseBaseValue: true,
		BaseValue:    0,
		Background:   chart.Style{FillColor: p.Background},
		Canvas:       chart.Style{FillColor: p.Canvas},
		XAxis:        chart.Style{FontColor: p.Text},
		YAxis: chart.YAxis{
			Style: chart.Style{FontColor: p.Text},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return humanize.CommafWithDigits(f, 0)
				}
				return ""
			},
		},
		Bars: bars,
	}
	return embedChart(pdf, "prices", func(w io.Writer) error {
		return bc.Render(chart.PNG, w)
	}, margin, 30, pageW-2*margin)
}

// pagePositions draws the tri-window position comparison as grouped bars,
// one color per lookback window.
func pagePositions(pdf *fpdf.Fpdf, records []model.StockRecord, p Palette) error {
	startPage(pdf, p, "Price Position by Window", "0 = at the period low, 100 = at the period high")

	windows := []string{"52-week", "3-month", "1-month"}
	bars := make([]chart.Value, 0, len(records)*4)
	for i, r := range records {
		if i > 0 {
			// transparent spacer between symbol groups
			bars = append(bars, chart.Value{
				Value: 0,
				Style: chart.Style{FillColor: drawing.ColorTransparent, StrokeColor: drawing.ColorTransparent},
			})
		}
		vals := []float64{r.Position52W, r.Position3M, r.Position1M}
		for w, v := range vals {
			c := p.Series[w%len(p.Series)]
			label := ""
			if w == 1 {
				label = r.Symbol
			}
			bars = append(bars, chart.Value{
				Label: label,
				Value: v,
				Style: chart.Style{FillColor: c, StrokeColor: c},
			})
		}
	}
	bc := chart.BarChart{
		Width:        barCanvasWidth(len(bars), 48, 20),
		Height:       820,
		BarWidth:     48,
		BarSpacing:   20,
		UseBaseValue: true,
		BaseValue:    0,
		Background:   chart.Style{FillColor: p.Background},
		Canvas:       chart.Style{FillColor: p.Canvas},
		XAxis:        chart.Style{FontColor: p.Text},
		YAxis: chart.YAxis{
			Style: chart.Style{FontColor: p.Text},
			Range: &chart.ContinuousRange{Min: 0, Max: 100},
		},
		Bars: bars,
	}
	if err := embedChart(pdf, "positions", func(w io.Writer) error {
		return bc.Render(chart.PNG, w)
	}, margin, 30, pageW-2*margin); err != nil {
		return err
	}

	// legend swatches
	x := margin
	y := 175.0
	pdf.SetFont("Helvetica", "", 10)
	setText(pdf, p.Text)
	for w, name := range windows {
		setFill(pdf, p.Series[w%len(p.Series)])
		pdf.Rect(x, y, 5, 5, "F")
		pdf.SetXY(x+7, y-1)
		pdf.CellFormat(40, 7, name+" window", "", 0, "L", false, 0, "")
		x += 50
	}
	return nil
}

// pageRating draws the averaged position per symbol, colored by rating
// zone, with a verdict list underneath.
func pageRating(pdf *fpdf.Fpdf, records []model.StockRecord, p Palette) error {
	startPage(pdf, p, "Overall Rating", "Average of the three window positions")

	bars := make([]chart.Value, 0, len(records))
	for _, r := range records {
		z := RatingZone(r.PositionAvg)
		bars = append(bars, chart.Value{
			Label: r.Symbol,
			Value: r.PositionAvg,
			Style: chart.Style{FillColor: z.Color, StrokeColor: z.Color},
		})
	}
	bc := chart.BarChart{
		Width:        barCanvasWidth(len(bars), 120, 60),
		Height:       800,
		BarWidth:     120,
		BarSpacing:   60,
		UseBaseValue: true,
		BaseValue:    0,
		Background:   chart.Style{FillColor: p.Background},
		Canvas:       chart.Style{FillColor: p.Canvas},
		XAxis:        chart.Style{FontColor: p.Text},
		YAxis: chart.YAxis{
			Style: chart.Style{FontColor: p.Text},
			Range: &chart.ContinuousRange{Min: 0, Max: 100},
		},
		Bars: bars,
	}
	if err := embedChart(pdf, "rating", func(w io.Writer) error {
		return bc.Render(chart.PNG, w)
	}, margin, 30, pageW-2*margin); err != nil {
		return err
	}

	pdf.SetFont("Helvetica", "", 10)
	x, y := margin, 170.0
	for i, r := range records {
		if i > 0 && i%4 == 0 {
			x += 92
			y = 170.0
		}
		if x > pageW-margin-80 {
			break
		}
		z := RatingZone(r.PositionAvg)
		setText(pdf, z.Color)
		pdf.SetXY(x, y)
		pdf.CellFormat(90, 5, fmt.Sprintf("%s: %s (%.1f%%)", r.Symbol, z.Label, r.PositionAvg), "", 0, "L", false, 0, "")
		y += 5.5
	}
	setText(pdf, p.Text)
	return nil
}

// pageRanges draws one 52-week band per symbol with a current-price
// marker. Each band spans its own low-to-high range, so the marker sits
// at the symbol's position percentage regardless of price scale.
func pageRanges(pdf *fpdf.Fpdf, live []model.StockRecord, p Palette) {
	const (
		labelW = 32.0
		rowH   = 18.0
		bandH  = 6.0
	)
	startPage(pdf, p, "52-Week Trading Ranges", "Band = yearly low to high, marker = current price (INR)")
	bandW := pageW - 2*margin - labelW - 50

	y := 34.0
	for _, r := range live {
		if y+rowH > pageH-18 {
			startPage(pdf, p, "52-Week Trading Ranges (continued)", "")
			y = 34.0
		}

		pdf.SetFont("Helvetica", "B", 10)
		setText(pdf, p.Text)
		pdf.SetXY(margin, y+bandH/2-2.5)
		pdf.CellFormat(labelW-2, 5, r.Symbol, "", 0, "L", false, 0, "")

		x0 := margin + labelW
		setFill(pdf, p.Grid)
		pdf.Rect(x0, y, bandW, bandH, "F")

		marker := x0 + bandW*r.Position52W/100
		z := RatingZone(r.Position52W)
		setFill(pdf, z.Color)
		setDraw(pdf, z.Color)
		pdf.Circle(marker, y+bandH/2, 2.2, "FD")

		pdf.SetFont("Helvetica", "", 8)
		pdf.SetXY(x0, y+bandH+1)
		pdf.CellFormat(bandW/2, 4, humanize.CommafWithDigits(r.Low52W, 2), "", 0, "L", false, 0, "")
		pdf.SetXY(x0+bandW/2, y+bandH+1)
		pdf.CellFormat(bandW/2, 4, humanize.CommafWithDigits(r.High52W, 2), "", 0, "R", false, 0, "")

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetXY(x0+bandW+3, y+bandH/2-2.5)
		pdf.CellFormat(44, 5, humanize.CommafWithDigits(r.CurrentPrice, 2), "", 0, "L", false, 0, "")

		y += rowH
	}
}

// pageTrends draws per-symbol one-year closing-price lines in a 2x2 grid,
// spilling onto extra pages for larger watchlists. Symbols without a
// historical series are skipped.
func pageTrends(pdf *fpdf.Fpdf, batch *model.AnalysisBatch, p Palette) error {
	type trend struct {
		symbol string
		bars   []model.OHLCV
	}
	var all []trend
	for _, r := range batch.Records {
		if bars, ok := batch.History[r.Symbol]; ok && len(bars) >= 2 {
			all = append(all, trend{symbol: r.Symbol, bars: bars})
		}
	}
	if len(all) == 0 {
		startPage(pdf, p, "One-Year Price Trend", "")
		pdf.SetFont("Helvetica", "I", 11)
		pdf.SetXY(margin, 40)
		pdf.CellFormat(0, 8, "No historical series available for this run.", "", 1, "L", false, 0, "")
		return nil
	}

	cellW := (pageW - 2*margin - 10) / 2
	const cellH = 77.0
	for i, s := range all {
		slot := i % 4
		if slot == 0 {
			startPage(pdf, p, "One-Year Price Trend", "Daily closing price with 50-day moving average, INR")
		}
		x := margin + float64(slot%2)*(cellW+10)
		y := 30 + float64(slot/2)*(cellH+6)

		xs := make([]time.Time, len(s.bars))
		ys := make([]float64, len(s.bars))
		for j, b := range s.bars {
			xs[j] = b.Time
			ys[j] = b.Close
		}
		line := p.Series[i%len(p.Series)]
		series := []chart.Series{
			chart.TimeSeries{
				Name:    s.symbol,
				Style:   chart.Style{StrokeColor: line, StrokeWidth: 1.8, FillColor: line.WithAlpha(30)},
				XValues: xs,
				YValues: ys,
			},
		}
		if maXs, maYs := calculator.MovingAverage(s.bars, 50); len(maYs) > 1 {
			series = append(series, chart.TimeSeries{
				Name:    "50-day MA",
				Style:   chart.Style{StrokeColor: line.WithAlpha(170), StrokeWidth: 1.2, StrokeDashArray: []float64{4, 3}},
				XValues: maXs,
				YValues: maYs,
			})
		}
		graph := chart.Chart{
			Title:      s.symbol,
			TitleStyle: chart.Style{FontColor: p.Text, FontSize: 14},
			Width:      900,
			Height:     540,
			Background: chart.Style{FillColor: p.Background, Padding: chart.Box{Top: 40, Left: 10, Right: 15, Bottom: 10}},
			Canvas:     chart.Style{FillColor: p.Canvas},
			XAxis: chart.XAxis{
				Style:          chart.Style{FontColor: p.Text, FontSize: 9},
				ValueFormatter: chart.TimeValueFormatterWithFormat("Jan 06"),
			},
			YAxis: chart.YAxis{
				Style: chart.Style{FontColor: p.Text, FontSize: 9},
			},
			Series: series,
		}
		if err := embedChart(pdf, "trend_"+s.symbol, func(w io.Writer) error {
			return graph.Render(chart.PNG, w)
		}, x, y, cellW); err != nil {
			return fmt.Errorf("render trend %s: %w", s.symbol, err)
		}
	}
	return nil
}

// pageHeatmap draws the symbols-by-windows position grid with a low-to-
// high color ramp.
func pageHeatmap(pdf *fpdf.Fpdf, records []model.StockRecord, p Palette) {
	const labelW = 40.0
	cols := []string{"52W", "3M", "1M", "Overall"}
	cellW := (pageW - 2*margin - labelW) / float64(len(cols))
	cellH := (pageH - 65) / float64(len(records))
	if cellH > 24 {
		cellH = 24
	}
	if cellH < 10 {
		cellH = 10
	}

	header := func() float64 {
		pdf.SetFont("Helvetica", "B", 10)
		setText(pdf, p.Text)
		x := margin + labelW
		for _, c := range cols {
			pdf.SetXY(x, 32)
			pdf.CellFormat(cellW, 8, c, "", 0, "C", false, 0, "")
			x += cellW
		}
		return 42
	}

	startPage(pdf, p, "Position Heatmap", "Greener = nearer the period low, redder = nearer the period high")
	y := header()
	for _, r := range records {
		if y+cellH > pageH-18 {
			startPage(pdf, p, "Position Heatmap (continued)", "")
			y = header()
		}

		pdf.SetFont("Helvetica", "", 10)
		setText(pdf, p.Text)
		pdf.SetXY(margin, y+(cellH-5)/2)
		pdf.CellFormat(labelW-2, 5, r.Symbol, "", 0, "L", false, 0, "")

		vals := []float64{r.Position52W, r.Position3M, r.Position1M, r.PositionAvg}
		x := margin + labelW
		for _, v := range vals {
			c := lerpColor(p.HeatLow, p.HeatHigh, v/100)
			setFill(pdf, c)
			pdf.Rect(x+1, y+1, cellW-2, cellH-2, "F")
			setText(pdf, cellTextColor(c))
			pdf.SetXY(x, y+(cellH-5)/2)
			pdf.CellFormat(cellW, 5, fmt.Sprintf("%.1f", v), "", 0, "C", false, 0, "")
			x += cellW
		}
		y += cellH
	}
	setText(pdf, p.Text)
}

// lerpColor interpolates between two colors; t is clamped to [0, 1].
func lerpColor(a, b drawing.Color, t float64) drawing.Color {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return drawing.Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}

// cellTextColor picks black or white text for readability on a fill.
func cellTextColor(c drawing.Color) drawing.Color {
	luma := 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
	if luma < 140 {
		return drawing.Color{R: 255, G: 255, B: 255, A: 255}
	}
	return drawing.Color{R: 33, G: 33, B: 33, A: 255}
}
