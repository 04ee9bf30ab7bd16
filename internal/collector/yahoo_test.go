package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"StockScope/internal/model"
)

const chartBody = `{"chart":{"result":[{"meta":{"regularMarketPrice":105.5},` +
	`"timestamp":[1700000000,1700086400,1700172800,1700259200],` +
	`"indicators":{"quote":[{"open":[100,null,102,103],"high":[110,null,112,113],` +
	`"low":[90,null,92,93],"close":[105,null,107,108],"volume":[1000,null,1200,1300]}]}}],` +
	`"error":null}}`

func jsonHandler(body string, gotPath *string, gotQuery *map[string]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if gotPath != nil {
			*gotPath = r.URL.Path
		}
		if gotQuery != nil {
			*gotQuery = map[string]string{
				"range":    r.URL.Query().Get("range"),
				"interval": r.URL.Query().Get("interval"),
			}
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(body)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

func testFetcher(t *testing.T, handler http.Handler, cacheTTL time.Duration) *YahooFetcher {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	f := NewYahooFetcher(".NS", "", 5*time.Second, cacheTTL)
	f.client.SetBaseURL(server.URL)
	return f
}

func TestFetchBars_SkipsNullBars(t *testing.T) {
	var gotPath string
	var gotQuery map[string]string
	f := testFetcher(t, jsonHandler(chartBody, &gotPath, &gotQuery), 0)

	bars, err := f.FetchBars(context.Background(), "TCS", model.Range1y)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/TCS.NS" {
		t.Errorf("expected path /TCS.NS, got %s", gotPath)
	}
	if gotQuery["range"] != "1y" || gotQuery["interval"] != "1d" {
		t.Errorf("unexpected query params: %v", gotQuery)
	}
	// The second bar is a market holiday (all nulls) and must be dropped.
	if len(bars) != 3 {
		t.Fatalf("expected 3 bars after null filtering, got %d", len(bars))
	}
	if bars[0].Close != 105 || bars[2].Close != 108 {
		t.Errorf("unexpected closes: first %v, last %v", bars[0].Close, bars[2].Close)
	}
	for i := 1; i < len(bars); i++ {
		if bars[i].Time.Before(bars[i-1].Time) {
			t.Fatalf("bars out of order at %d", i)
		}
	}
}

func TestFetchBars_SymbolMapping(t *testing.T) {
	tests := []struct {
		symbol   string
		wantPath string
	}{
		{"RELIANCE", "/RELIANCE.NS"},
		{"TCS.BO", "/TCS.BO"},
		{"^NSEI", "/^NSEI"},
	}
	for _, tt := range tests {
		var gotPath string
		f := testFetcher(t, jsonHandler(chartBody, &gotPath, nil), 0)
		if _, err := f.FetchBars(context.Background(), tt.symbol, model.Range1mo); err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.symbol, err)
		}
		if gotPath != tt.wantPath {
			t.Errorf("%s: expected path %s, got %s", tt.symbol, tt.wantPath, gotPath)
		}
	}
}

func TestFetchBars_EmptyResult(t *testing.T) {
	body := `{"chart":{"result":[],"error":null}}`
	f := testFetcher(t, jsonHandler(body, nil, nil), 0)

	_, err := f.FetchBars(context.Background(), "GHOST", model.Range1y)
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestFetchBars_APIError(t *testing.T) {
	body := `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`
	f := testFetcher(t, jsonHandler(body, nil, nil), 0)

	_, err := f.FetchBars(context.Background(), "GHOST", model.Range1y)
	if err == nil {
		t.Fatal("expected error from API error payload")
	}
}

func TestFetchBars_HTTPError(t *testing.T) {
	f := testFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}), 0)

	_, err := f.FetchBars(context.Background(), "RELIANCE", model.Range1y)
	if err == nil {
		t.Fatal("expected error for HTTP 429")
	}
}

func TestFetchCurrentPrice_PrefersLiveQuote(t *testing.T) {
	f := testFetcher(t, jsonHandler(chartBody, nil, nil), 0)

	price, err := f.FetchCurrentPrice(context.Background(), "TCS")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price != 105.5 {
		t.Errorf("expected live price 105.5, got %v", price)
	}
}

func TestFetchCurrentPrice_FallsBackToLastClose(t *testing.T) {
	body := `{"chart":{"result":[{"meta":{"regularMarketPrice":0},` +
		`"timestamp":[1700000000,1700086400],` +
		`"indicators":{"quote":[{"open":[100,101],"high":[110,111],"low":[90,91],"close":[105,107],"volume":[1,1]}]}}],` +
		`"error":null}}`
	f := testFetcher(t, jsonHandler(body, nil, nil), 0)

	price, err := f.FetchCurrentPrice(context.Background(), "TCS")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price != 107 {
		t.Errorf("expected last close 107, got %v", price)
	}
}

func TestFetchBars_CacheServesRepeatCalls(t *testing.T) {
	var hits atomic.Int64
	f := testFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(chartBody)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}), time.Minute)

	for i := 0; i < 3; i++ {
		if _, err := f.FetchBars(context.Background(), "TCS", model.Range1y); err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("expected 1 upstream request with caching on, got %d", got)
	}

	// A different range is a different cache entry.
	if _, err := f.FetchBars(context.Background(), "TCS", model.Range1mo); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := hits.Load(); got != 2 {
		t.Errorf("expected 2 upstream requests after new range, got %d", got)
	}
}
