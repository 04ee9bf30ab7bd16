package report

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"StockScope/internal/model"
)

func chartBatch() *model.AnalysisBatch {
	base := time.Date(2024, 8, 22, 0, 0, 0, 0, time.UTC)
	history := make([]model.OHLCV, 60)
	for i := range history {
		price := 2800 + float64(i)*4.5
		history[i] = model.OHLCV{
			Time:  base.AddDate(0, 0, i*5),
			Open:  price - 5,
			High:  price + 20,
			Low:   price - 20,
			Close: price,
		}
	}
	return &model.AnalysisBatch{
		RunID:       "run-charts",
		GeneratedAt: time.Date(2025, 8, 22, 11, 45, 0, 0, time.Local),
		Records: []model.StockRecord{
			{
				Symbol: "RELIANCE", Company: "Reliance Industries",
				CurrentPrice: 2954.6,
				High52W:      3217.6, Low52W: 2601.85,
				High3M: 3029.8, Low3M: 2866.0,
				High1M: 3000.95, Low1M: 2904.0,
				DataSource:  "Yahoo Finance",
				Position52W: 57.3, Position3M: 54.1, Position1M: 52.2, PositionAvg: 54.5,
			},
			{
				Symbol: "BAJAJ-AUTO", Company: "Bajaj Auto Limited",
				CurrentPrice: 9441.24,
				High52W:      12774.0, Low52W: 7089.35,
				High3M: 9820.0, Low3M: 8701.0,
				High1M: 9585.5, Low1M: 9058.0,
				DataSource:  "Yahoo Finance",
				Position52W: 41.4, Position3M: 66.2, Position1M: 72.7, PositionAvg: 60.1,
			},
			{
				Symbol: "IDEA", Company: "Vodafone Idea Limited",
				DataSource:  model.SourceUnavailable,
				Position52W: 50.0, Position3M: 50.0, Position1M: 50.0, PositionAvg: 50.0,
			},
		},
		History: map[string][]model.OHLCV{"RELIANCE": history},
	}
}

func TestWriteChartBundle(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteChartBundle(chartBatch(), ChartOptions{OutDir: dir, Palette: LightPalette()})
	if err != nil {
		t.Fatalf("write chart bundle: %v", err)
	}
	want := filepath.Join(dir, "Stock_Analysis_Charts_20250822_114500.pdf")
	if path != want {
		t.Fatalf("expected path %s, got %s", want, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	if len(data) < 1024 {
		t.Fatalf("suspiciously small pdf: %d bytes", len(data))
	}
	if !strings.HasPrefix(string(data[:5]), "%PDF-") {
		t.Errorf("missing pdf magic, got %q", data[:5])
	}
}

func TestWriteChartBundle_DarkTheme(t *testing.T) {
	if _, err := WriteChartBundle(chartBatch(), ChartOptions{OutDir: t.TempDir(), Palette: DarkPalette()}); err != nil {
		t.Fatalf("dark theme bundle: %v", err)
	}
}

func TestWriteChartBundle_DefaultsApply(t *testing.T) {
	// Zero palette falls back to the light theme; empty OutDir means the
	// working directory, pointed at a temp dir here to keep the tree clean.
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	}()

	path, err := WriteChartBundle(chartBatch(), ChartOptions{})
	if err != nil {
		t.Fatalf("default options bundle: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected pdf on disk: %v", err)
	}
}

func TestWriteChartBundle_NoHistory(t *testing.T) {
	batch := chartBatch()
	batch.History = nil
	if _, err := WriteChartBundle(batch, ChartOptions{OutDir: t.TempDir(), Palette: LightPalette()}); err != nil {
		t.Fatalf("bundle without history: %v", err)
	}
}

func TestWriteChartBundle_NoLiveData(t *testing.T) {
	batch := &model.AnalysisBatch{
		RunID:       "run-dead",
		GeneratedAt: time.Now(),
		Records: []model.StockRecord{
			{Symbol: "IDEA", DataSource: model.SourceUnavailable, Position52W: 50, Position3M: 50, Position1M: 50, PositionAvg: 50},
		},
	}
	_, err := WriteChartBundle(batch, ChartOptions{OutDir: t.TempDir(), Palette: LightPalette()})
	if !errors.Is(err, ErrNoChartData) {
		t.Fatalf("expected ErrNoChartData, got %v", err)
	}
}

func TestLerpColor(t *testing.T) {
	low := LightPalette().HeatLow
	high := LightPalette().HeatHigh
	if got := lerpColor(low, high, 0); got != low {
		t.Errorf("t=0 should return the low color, got %v", got)
	}
	if got := lerpColor(low, high, 1); got != high {
		t.Errorf("t=1 should return the high color, got %v", got)
	}
	mid := lerpColor(low, high, 0.5)
	if mid == low || mid == high {
		t.Error("midpoint should differ from both ends")
	}
	if got := lerpColor(low, high, -3); got != low {
		t.Errorf("t below range should clamp to the low color, got %v", got)
	}
	if got := lerpColor(low, high, 7); got != high {
		t.Errorf("t above range should clamp to the high color, got %v", got)
	}
}
