package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"WolfHunter/internal/model"
)

const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

// Yahoo has no 3m, 10m or 4h interval; those are built from finer candles.
var yahooPlans = map[model.Timeframe]intervalPlan{
	model.Timeframe1m:  {"1m", 1},
	model.Timeframe3m:  {"1m", 3},
	model.Timeframe5m:  {"5m", 1},
	model.Timeframe10m: {"5m", 2},
	model.Timeframe15m: {"15m", 1},
	model.Timeframe30m: {"30m", 1},
	model.Timeframe1h:  {"60m", 1},
	model.Timeframe4h:  {"60m", 4},
	model.Timeframe1d:  {"1d", 1},
}

// Chart ranges Yahoo accepts, shortest first.
var yahooRanges = []struct {
	name string
	span time.Duration
}{
	{"1d", 24 * time.Hour},
	{"5d", 5 * 24 * time.Hour},
	{"1mo", 30 * 24 * time.Hour},
	{"3mo", 90 * 24 * time.Hour},
	{"6mo", 180 * 24 * time.Hour},
	{"1y", 365 * 24 * time.Hour},
	{"2y", 2 * 365 * 24 * time.Hour},
}

// YahooFetcher implements Fetcher using Yahoo Finance public API.
type YahooFetcher struct {
	BaseURL   string
	Symbol    string
	Client    *http.Client
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(baseURL, symbol, proxyURL string) *YahooFetcher {
	if baseURL == "" {
		baseURL = DefaultYahooBaseURL
	}
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &YahooFetcher{
		BaseURL: baseURL,
		Symbol:  symbol,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		SymbolMap: map[string]string{
			"BTCUSDT": "BTC-USD",
			"ETHUSDT": "ETH-USD",
			"SOLUSDT": "SOL-USD",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol() string {
	if mapped, ok := f.SymbolMap[f.Symbol]; ok {
		return mapped
	}
	return f.Symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func at(vals []*float64, i int) (float64, bool) {
	if i >= len(vals) || vals[i] == nil {
		return 0, false
	}
	return *vals[i], true
}

// chartRange picks the shortest range that covers span.
func chartRange(span time.Duration) string {
	for _, r := range yahooRanges {
		if span <= r.span {
			return r.name
		}
	}
	return yahooRanges[len(yahooRanges)-1].name
}

func (f *YahooFetcher) FetchCandles(ctx context.Context, tf model.Timeframe, limit int) (*model.Series, error) {
	plan, err := lookupPlan(yahooPlans, tf)
	if err != nil {
		return nil, err
	}
	span := time.Duration(plan.nativeLimit(limit, 0)) * tf.Duration() / time.Duration(plan.factor)
	candles, err := f.fetchChart(ctx, plan.interval, chartRange(span))
	if err != nil {
		return nil, unavailable(f.Name(), err)
	}
	candles = aggregateCandles(candles, tf.Duration(), plan.factor)
	return normalize(tf, candles, limit)
}

func (f *YahooFetcher) fetchChart(ctx context.Context, interval, rng string) ([]model.Candle, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		f.BaseURL, url.PathEscape(f.yahooSymbol()), interval, rng)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 ||
		len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: no data returned")
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	candles := make([]model.Candle, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		o, okO := at(quote.Open, i)
		h, okH := at(quote.High, i)
		l, okL := at(quote.Low, i)
		c, okC := at(quote.Close, i)
		if !okO || !okH || !okL || !okC {
			continue // null rows mark gaps in trading
		}
		v, _ := at(quote.Volume, i)
		candles = append(candles, model.Candle{
			Timestamp: ts * 1000,
			Open:      o,
			High:      h,
			Low:       l,
			Close:     c,
			Volume:    v,
		})
	}
	return candles, nil
}
