package collector

import (
	"fmt"
	"sort"
	"time"

	"WolfHunter/internal/model"
)

// intervalPlan describes how to build a timeframe from an exchange's native interval.
type intervalPlan struct {
	interval string // exchange interval code
	factor   int    // native candles per target candle
}

// nativeLimit is how many native candles to request so limit target candles come back complete.
func (p intervalPlan) nativeLimit(limit, maxLimit int) int {
	n := limit*p.factor + p.factor
	if p.factor == 1 {
		n = limit
	}
	if maxLimit > 0 && n > maxLimit {
		n = maxLimit
	}
	return n
}

func lookupPlan(plans map[model.Timeframe]intervalPlan, tf model.Timeframe) (intervalPlan, error) {
	plan, ok := plans[tf]
	if !ok {
		return intervalPlan{}, fmt.Errorf("%w: %q", model.ErrInvalidTimeframe, tf)
	}
	return plan, nil
}

// aggregateCandles merges native candles into UTC-aligned buckets of the given
// length: open of the first, max high, min low, close of the last, summed volume.
// A leading bucket with fewer than factor candles is dropped; the trailing one is
// the bucket still forming and is kept.
func aggregateCandles(candles []model.Candle, bucket time.Duration, factor int) []model.Candle {
	if len(candles) == 0 || factor <= 1 {
		return candles
	}
	bucketMs := bucket.Milliseconds()

	var out []model.Candle
	var counts []int
	for _, c := range candles {
		key := c.Timestamp - c.Timestamp%bucketMs
		if n := len(out); n > 0 && out[n-1].Timestamp == key {
			cur := &out[n-1]
			if c.High > cur.High {
				cur.High = c.High
			}
			if c.Low < cur.Low {
				cur.Low = c.Low
			}
			cur.Close = c.Close
			cur.Volume += c.Volume
			counts[n-1]++
			continue
		}
		out = append(out, model.Candle{Timestamp: key, Open: c.Open, High: c.High, Low: c.Low, Close: c.Close, Volume: c.Volume})
		counts = append(counts, 1)
	}
	if len(out) > 1 && counts[0] < factor {
		out = out[1:]
	}
	return out
}

// normalize sorts, removes duplicate timestamps (the later row wins), trims to
// the newest limit candles and wraps the result in a Series.
func normalize(tf model.Timeframe, candles []model.Candle, limit int) (*model.Series, error) {
	sort.SliceStable(candles, func(i, j int) bool { return candles[i].Timestamp < candles[j].Timestamp })
	deduped := candles[:0]
	for _, c := range candles {
		if n := len(deduped); n > 0 && deduped[n-1].Timestamp == c.Timestamp {
			deduped[n-1] = c
			continue
		}
		deduped = append(deduped, c)
	}
	if limit > 0 && len(deduped) > limit {
		deduped = deduped[len(deduped)-limit:]
	}
	return model.NewSeries(tf, deduped)
}
