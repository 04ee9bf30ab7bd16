package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"StockScope/internal/model"
)

const sheetName = "Stock Data"

// columns lists the workbook headers in serialization order.
var columns = []string{
	"Symbol", "Company", "Current_Price",
	"52_Week_High", "52_Week_Low",
	"3_Month_High", "3_Month_Low",
	"1_Month_High", "1_Month_Low",
	"Data_Source",
	"Price_vs_52W", "Price_vs_3M", "Price_vs_1M", "Current_vs_All",
}

// 1-based column group boundaries for number formatting.
const (
	firstPriceCol = 3
	lastPriceCol  = 9
	sourceCol     = 10
	firstPosCol   = 11
	lastPosCol    = 14
)

// rowCells returns one record's cell values in column order.
func rowCells(r model.StockRecord) []interface{} {
	return []interface{}{
		r.Symbol, r.Company, r.CurrentPrice,
		r.High52W, r.Low52W,
		r.High3M, r.Low3M,
		r.High1M, r.Low1M,
		r.DataSource,
		r.Position52W, r.Position3M, r.Position1M, r.PositionAvg,
	}
}

// WriteWorkbook serializes the batch to a styled spreadsheet under dir
// and returns the file path. Every fault comes back as an error for the
// caller to downgrade; nothing here aborts the run.
func WriteWorkbook(batch *model.AnalysisBatch, dir string) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return "", fmt.Errorf("rename sheet: %w", err)
	}

	var err error
	set := func(col, row int, v interface{}) {
		if err != nil {
			return
		}
		cell, cerr := excelize.CoordinatesToCellName(col, row)
		if cerr != nil {
			err = cerr
			return
		}
		err = f.SetCellValue(sheetName, cell, v)
	}

	title := "NSE Stock Analysis Report - " + batch.GeneratedAt.Format("02 January 2006, 03:04 PM")
	set(1, 1, title)
	for i, h := range columns {
		set(i+1, 3, h)
	}
	for i, r := range batch.Records {
		for j, v := range rowCells(r) {
			set(j+1, i+4, v)
		}
	}
	if err != nil {
		return "", fmt.Errorf("write cells: %w", err)
	}

	if err := applyStyles(f, len(batch.Records)); err != nil {
		return "", err
	}
	if err := sizeColumns(f, batch); err != nil {
		return "", err
	}

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:       "NSE Stock Analysis Report",
		Subject:     "Price position analysis",
		Creator:     "StockScope",
		Description: "run " + batch.RunID,
	}); err != nil {
		return "", fmt.Errorf("set doc properties: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, "Stock_Analysis_Report_"+batch.GeneratedAt.Format("20060102_150405")+".xlsx")
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return path, nil
}

func applyStyles(f *excelize.File, records int) error {
	lastCol, err := excelize.ColumnNumberToName(len(columns))
	if err != nil {
		return fmt.Errorf("column name: %w", err)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "000000"},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("title style: %w", err)
	}
	if err := f.MergeCell(sheetName, "A1", lastCol+"1"); err != nil {
		return fmt.Errorf("merge title: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A1", "A1", titleStyle); err != nil {
		return fmt.Errorf("apply title style: %w", err)
	}
	if err := f.SetRowHeight(sheetName, 1, 30); err != nil {
		return fmt.Errorf("title row height: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "000000"},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A3", lastCol+"3", headerStyle); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}
	if err := f.SetRowHeight(sheetName, 3, 40); err != nil {
		return fmt.Errorf("header row height: %w", err)
	}

	if records == 0 {
		return nil
	}

	border := []excelize.Border{
		{Type: "left", Color: "D3D3D3", Style: 1},
		{Type: "right", Color: "D3D3D3", Style: 1},
		{Type: "top", Color: "D3D3D3", Style: 1},
		{Type: "bottom", Color: "D3D3D3", Style: 1},
	}
	center := &excelize.Alignment{Horizontal: "center", Vertical: "center"}
	currencyFmt := `"₹"#,##0.00`
	positionFmt := "#,##0.0"

	textStyle, err := f.NewStyle(&excelize.Style{Border: border, Alignment: center})
	if err != nil {
		return fmt.Errorf("text style: %w", err)
	}
	currencyStyle, err := f.NewStyle(&excelize.Style{Border: border, Alignment: center, CustomNumFmt: &currencyFmt})
	if err != nil {
		return fmt.Errorf("currency style: %w", err)
	}
	positionStyle, err := f.NewStyle(&excelize.Style{Border: border, Alignment: center, CustomNumFmt: &positionFmt})
	if err != nil {
		return fmt.Errorf("position style: %w", err)
	}

	priceFrom, _ := excelize.ColumnNumberToName(firstPriceCol)
	priceTo, _ := excelize.ColumnNumberToName(lastPriceCol)
	source, _ := excelize.ColumnNumberToName(sourceCol)
	posFrom, _ := excelize.ColumnNumberToName(firstPosCol)
	posTo, _ := excelize.ColumnNumberToName(lastPosCol)

	lastRow := records + 3
	spans := []struct {
		from, to string
		style    int
	}{
		{"A4", fmt.Sprintf("B%d", lastRow), textStyle},
		{priceFrom + "4", fmt.Sprintf("%s%d", priceTo, lastRow), currencyStyle},
		{source + "4", fmt.Sprintf("%s%d", source, lastRow), textStyle},
		{posFrom + "4", fmt.Sprintf("%s%d", posTo, lastRow), positionStyle},
	}
	for _, s := range spans {
		if err := f.SetCellStyle(sheetName, s.from, s.to, s.style); err != nil {
			return fmt.Errorf("apply data style: %w", err)
		}
	}
	return nil
}

// sizeColumns widens each column to its longest content plus padding,
// capped so data-source labels cannot blow the layout out.
func sizeColumns(f *excelize.File, batch *model.AnalysisBatch) error {
	widths := make([]int, len(columns))
	for i, h := range columns {
		widths[i] = len(h)
	}
	for _, r := range batch.Records {
		for j, v := range rowCells(r) {
			if n := len(fmt.Sprint(v)); n > widths[j] {
				widths[j] = n
			}
		}
	}
	for i, w := range widths {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("column name: %w", err)
		}
		if err := f.SetColWidth(sheetName, name, name, float64(min(w+3, 22))); err != nil {
			return fmt.Errorf("column width: %w", err)
		}
	}
	return nil
}
