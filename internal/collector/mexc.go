package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"WolfHunter/internal/model"

	"github.com/tidwall/gjson"
)

const (
	DefaultMEXCBaseURL = "https://api.mexc.com"
	mexcMaxLimit       = 1000
)

// MEXC has no 3m or 10m klines; those are built from 1m and 5m.
var mexcPlans = map[model.Timeframe]intervalPlan{
	model.Timeframe1m:  {"1m", 1},
	model.Timeframe3m:  {"1m", 3},
	model.Timeframe5m:  {"5m", 1},
	model.Timeframe10m: {"5m", 2},
	model.Timeframe15m: {"15m", 1},
	model.Timeframe30m: {"30m", 1},
	model.Timeframe1h:  {"60m", 1},
	model.Timeframe4h:  {"4h", 1},
	model.Timeframe1d:  {"1d", 1},
}

// MEXCFetcher implements Fetcher using the public MEXC spot klines endpoint.
type MEXCFetcher struct {
	BaseURL string
	Symbol  string
	Client  *http.Client
}

// NewMEXCFetcher creates a new fetcher with optional proxy support.
func NewMEXCFetcher(baseURL, symbol, proxyURL string) *MEXCFetcher {
	if baseURL == "" {
		baseURL = DefaultMEXCBaseURL
	}
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &MEXCFetcher{
		BaseURL: baseURL,
		Symbol:  symbol,
		Client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: transport,
		},
	}
}

func (f *MEXCFetcher) Name() string { return "mexc" }

func (f *MEXCFetcher) FetchCandles(ctx context.Context, tf model.Timeframe, limit int) (*model.Series, error) {
	plan, err := lookupPlan(mexcPlans, tf)
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("symbol", f.Symbol)
	q.Set("interval", plan.interval)
	q.Set("limit", strconv.Itoa(plan.nativeLimit(limit, mexcMaxLimit)))
	endpoint := fmt.Sprintf("%s/api/v3/klines?%s", f.BaseURL, q.Encode())

	candles, err := f.fetchKlines(ctx, endpoint)
	if err != nil {
		return nil, unavailable(f.Name(), err)
	}
	candles = aggregateCandles(candles, tf.Duration(), plan.factor)
	return normalize(tf, candles, limit)
}

func (f *MEXCFetcher) fetchKlines(ctx context.Context, endpoint string) ([]model.Candle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mexc klines: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("mexc read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mexc klines: status %d, body: %s", resp.StatusCode, string(body))
	}
	return parseMEXCKlines(body)
}

// parseMEXCKlines decodes rows of [openTime, open, high, low, close, volume, closeTime, ...].
func parseMEXCKlines(body []byte) ([]model.Candle, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("mexc decode: invalid json")
	}
	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return nil, fmt.Errorf("mexc api error: %s (code %d)", root.Get("msg").String(), root.Get("code").Int())
	}

	var candles []model.Candle
	var rowErr error
	root.ForEach(func(_, row gjson.Result) bool {
		fields := row.Array()
		if len(fields) < 6 {
			rowErr = fmt.Errorf("mexc decode: kline row has %d fields", len(fields))
			return false
		}
		candles = append(candles, model.Candle{
			Timestamp: fields[0].Int(),
			Open:      fields[1].Float(),
			High:      fields[2].Float(),
			Low:       fields[3].Float(),
			Close:     fields[4].Float(),
			Volume:    fields[5].Float(),
		})
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}
	return candles, nil
}
