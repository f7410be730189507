package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"WolfHunter/internal/model"

	bybit_api "github.com/bybit-exchange/bybit.go.api"
)

const bybitMaxLimit = 1000

// Bybit has no 10m interval; it is built from 5m.
var bybitPlans = map[model.Timeframe]intervalPlan{
	model.Timeframe1m:  {"1", 1},
	model.Timeframe3m:  {"3", 1},
	model.Timeframe5m:  {"5", 1},
	model.Timeframe10m: {"5", 2},
	model.Timeframe15m: {"15", 1},
	model.Timeframe30m: {"30", 1},
	model.Timeframe1h:  {"60", 1},
	model.Timeframe4h:  {"240", 1},
	model.Timeframe1d:  {"D", 1},
}

// BybitFetcher implements Fetcher using the Bybit v5 market kline endpoint.
type BybitFetcher struct {
	Symbol   string
	Category string
	client   *bybit_api.Client
}

// NewBybitFetcher creates a fetcher against Bybit mainnet. Market data needs no credentials.
func NewBybitFetcher(symbol, category string) *BybitFetcher {
	if category == "" {
		category = "spot"
	}
	return &BybitFetcher{
		Symbol:   symbol,
		Category: category,
		client:   bybit_api.NewBybitHttpClient("", "", bybit_api.WithBaseURL(bybit_api.MAINNET)),
	}
}

func (f *BybitFetcher) Name() string { return "bybit" }

func (f *BybitFetcher) FetchCandles(ctx context.Context, tf model.Timeframe, limit int) (*model.Series, error) {
	plan, err := lookupPlan(bybitPlans, tf)
	if err != nil {
		return nil, err
	}
	params := map[string]interface{}{
		"category": f.Category,
		"symbol":   f.Symbol,
		"interval": plan.interval,
		"limit":    plan.nativeLimit(limit, bybitMaxLimit),
	}
	resp, err := f.client.NewUtaBybitServiceWithParams(params).GetMarketKline(ctx)
	if err != nil {
		return nil, unavailable(f.Name(), err)
	}
	candles, err := parseBybitKlines(resp)
	if err != nil {
		return nil, unavailable(f.Name(), err)
	}
	candles = aggregateCandles(candles, tf.Duration(), plan.factor)
	return normalize(tf, candles, limit)
}

// parseBybitKlines decodes rows of [startMs, open, high, low, close, volume, turnover].
// Bybit lists newest first; ordering is left to normalize.
func parseBybitKlines(resp interface{}) ([]model.Candle, error) {
	serverResp, ok := resp.(*bybit_api.ServerResponse)
	if !ok {
		return nil, fmt.Errorf("bybit kline: unexpected response type %T", resp)
	}
	if serverResp.RetCode != 0 {
		return nil, fmt.Errorf("bybit api error: %s (code %d)", serverResp.RetMsg, serverResp.RetCode)
	}

	raw, err := json.Marshal(serverResp.Result)
	if err != nil {
		return nil, fmt.Errorf("bybit decode: %w", err)
	}
	var result struct {
		List [][]string `json:"list"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("bybit decode: %w", err)
	}

	candles := make([]model.Candle, 0, len(result.List))
	for _, row := range result.List {
		if len(row) < 6 {
			return nil, fmt.Errorf("bybit decode: kline row has %d fields", len(row))
		}
		ts, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bybit decode start time %q: %w", row[0], err)
		}
		var vals [5]float64
		for i := range vals {
			v, err := strconv.ParseFloat(row[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("bybit decode field %d %q: %w", i+1, row[i+1], err)
			}
			vals[i] = v
		}
		candles = append(candles, model.Candle{
			Timestamp: ts,
			Open:      vals[0],
			High:      vals[1],
			Low:       vals[2],
			Close:     vals[3],
			Volume:    vals[4],
		})
	}
	return candles, nil
}
