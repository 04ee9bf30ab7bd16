package collector

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/patrickmn/go-cache"

	"StockScope/internal/model"
)

const yahooBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// YahooFetcher implements Fetcher against the Yahoo Finance chart API.
type YahooFetcher struct {
	client *resty.Client
	suffix string
	cache  *cache.Cache
}

// NewYahooFetcher creates a Yahoo Finance fetcher. suffix is appended to
// plain symbols to form the provider ticker (".NS" for NSE listings), and
// cacheTTL > 0 enables in-process response caching for that duration.
func NewYahooFetcher(suffix, proxyURL string, timeout, cacheTTL time.Duration) *YahooFetcher {
	client := resty.New().
		SetBaseURL(yahooBaseURL).
		SetTimeout(timeout).
		SetHeaders(map[string]string{
			"Accept":     "application/json",
			"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		})
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}
	f := &YahooFetcher{client: client, suffix: suffix}
	if cacheTTL > 0 {
		f.cache = cache.New(cacheTTL, 2*cacheTTL)
	}
	return f
}

func (f *YahooFetcher) Name() string { return "Yahoo Finance" }

// yahooSymbol maps an internal symbol to the provider ticker. Symbols
// already carrying an exchange qualifier or an index prefix pass through.
func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if strings.Contains(symbol, ".") || strings.HasPrefix(symbol, "^") {
		return symbol
	}
	return symbol + f.suffix
}

// yahooChart is the response structure from the Yahoo Finance chart API.
// Null bars decode to zeros and are skipped.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (f *YahooFetcher) fetchChart(ctx context.Context, symbol string, rng model.LookbackRange) ([]model.OHLCV, float64, error) {
	var chart yahooChart
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"interval": string(model.Range1d),
			"range":    string(rng),
		}).
		SetResult(&chart).
		Get("/" + url.PathEscape(f.yahooSymbol(symbol)))
	if err != nil {
		return nil, 0, fmt.Errorf("yahoo fetch %s: %w", symbol, err)
	}
	if !resp.IsSuccess() {
		return nil, 0, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode(), resp.String())
	}
	if chart.Chart.Error != nil {
		return nil, 0, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 ||
		len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, 0, fmt.Errorf("yahoo %s %s: %w", symbol, rng, ErrNoData)
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]model.OHLCV, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Open) || i >= len(quote.High) || i >= len(quote.Low) || i >= len(quote.Close) {
			break
		}
		o, h, l, c := quote.Open[i], quote.High[i], quote.Low[i], quote.Close[i]
		if o == 0 && h == 0 && l == 0 && c == 0 {
			continue // null bars (holidays etc.)
		}
		var v float64
		if i < len(quote.Volume) {
			v = quote.Volume[i]
		}
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(ts, 0),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: v,
		})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, result.Meta.RegularMarketPrice, nil
}

// FetchBars returns daily bars covering the given lookback range.
func (f *YahooFetcher) FetchBars(ctx context.Context, symbol string, rng model.LookbackRange) ([]model.OHLCV, error) {
	key := "bars_" + symbol + "_" + string(rng)
	if f.cache != nil {
		if cached, found := f.cache.Get(key); found {
			return cached.([]model.OHLCV), nil
		}
	}
	bars, _, err := f.fetchChart(ctx, symbol, rng)
	if err != nil {
		return nil, err
	}
	if f.cache != nil && len(bars) > 0 {
		f.cache.Set(key, bars, cache.DefaultExpiration)
	}
	return bars, nil
}

// FetchCurrentPrice returns the live market price, falling back to the
// latest daily close when the provider omits the live quote.
func (f *YahooFetcher) FetchCurrentPrice(ctx context.Context, symbol string) (float64, error) {
	key := "price_" + symbol
	if f.cache != nil {
		if cached, found := f.cache.Get(key); found {
			return cached.(float64), nil
		}
	}
	bars, live, err := f.fetchChart(ctx, symbol, model.Range1d)
	if err != nil {
		return 0, err
	}
	price := live
	if price == 0 {
		if len(bars) == 0 {
			return 0, fmt.Errorf("yahoo %s: %w", symbol, ErrNoData)
		}
		price = bars[len(bars)-1].Close
	}
	if f.cache != nil && price > 0 {
		f.cache.Set(key, price, cache.DefaultExpiration)
	}
	return price, nil
}
