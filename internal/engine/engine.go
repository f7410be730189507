package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"WolfHunter/internal/calculator"
	"WolfHunter/internal/collector"
	"WolfHunter/internal/metrics"
	"WolfHunter/internal/model"
	"WolfHunter/internal/strategy"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// DefaultLimit is how many candles each evaluation requests.
const DefaultLimit = 100

type entry struct {
	result      *model.Result
	invalidated bool
}

// Engine evaluates timeframes and caches each result for the timeframe's TTL.
// A failed recompute falls back to the last good result, flagged stale.
type Engine struct {
	Fetcher collector.Fetcher
	Params  calculator.Params
	Limit   int
	Now     func() time.Time

	mu    sync.RWMutex
	cache map[model.Timeframe]*entry
	group singleflight.Group
}

// New creates an engine with default indicator parameters and the wall clock.
func New(fetcher collector.Fetcher) *Engine {
	return &Engine{
		Fetcher: fetcher,
		Params:  calculator.DefaultParams,
		Limit:   DefaultLimit,
		Now:     time.Now,
		cache:   make(map[model.Timeframe]*entry),
	}
}

// Evaluate returns the evaluation for tf, recomputing it when the cached one has expired.
// Concurrent callers for the same timeframe share one recompute.
func (e *Engine) Evaluate(ctx context.Context, tf model.Timeframe) (*model.Result, error) {
	if !tf.Valid() {
		return nil, fmt.Errorf("evaluate: %w: %q", model.ErrInvalidTimeframe, tf)
	}
	if res, ok := e.fresh(tf); ok {
		metrics.CacheLookups.WithLabelValues(tf.String(), metrics.LookupHit).Inc()
		return res, nil
	}

	// The recompute is shared, so one caller's cancellation must not fail the others.
	shared := context.WithoutCancel(ctx)
	v, err, _ := e.group.Do(tf.String(), func() (interface{}, error) {
		// Another caller may have finished the recompute while we waited.
		if res, ok := e.fresh(tf); ok {
			return res, nil
		}
		metrics.CacheLookups.WithLabelValues(tf.String(), metrics.LookupMiss).Inc()
		return e.refresh(shared, tf)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Result), nil
}

// Invalidate forces the next Evaluate for tf to recompute. The current result
// stays available as a stale fallback.
func (e *Engine) Invalidate(tf model.Timeframe) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ent, ok := e.cache[tf]; ok {
		ent.invalidated = true
	}
}

func (e *Engine) fresh(tf model.Timeframe) (*model.Result, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ent, ok := e.cache[tf]
	if !ok || ent.invalidated {
		return nil, false
	}
	if !e.now().Before(ent.result.ComputedAt.Add(tf.TTL())) {
		return nil, false
	}
	return ent.result, true
}

func (e *Engine) refresh(ctx context.Context, tf model.Timeframe) (*model.Result, error) {
	started := time.Now()

	series, err := e.Fetcher.FetchCandles(ctx, tf, e.limit())
	if err != nil {
		metrics.FetchErrors.WithLabelValues(e.Fetcher.Name(), tf.String()).Inc()
		if !errors.Is(err, model.ErrDataUnavailable) {
			err = fmt.Errorf("%w: %w", model.ErrDataUnavailable, err)
		}
		return e.fallback(tf, fmt.Errorf("fetch %s candles: %w", tf, err))
	}

	res, err := e.compute(tf, series)
	if err != nil {
		return e.fallback(tf, fmt.Errorf("evaluate %s: %w", tf, err))
	}

	e.mu.Lock()
	if e.cache == nil {
		e.cache = make(map[model.Timeframe]*entry)
	}
	e.cache[tf] = &entry{result: res}
	e.mu.Unlock()

	metrics.EvaluationDuration.WithLabelValues(tf.String()).Observe(time.Since(started).Seconds())
	metrics.BuyScore.WithLabelValues(tf.String()).Set(float64(res.BuyScore))
	return res, nil
}

func (e *Engine) compute(tf model.Timeframe, series *model.Series) (*model.Result, error) {
	ind, err := calculator.ComputeIndicators(series, e.Params)
	if err != nil {
		return nil, err
	}
	snap := strategy.Snapshot{Series: series, Indicators: ind}
	eval, err := strategy.Evaluate(snap)
	if err != nil {
		return nil, err
	}
	return &model.Result{
		ID:         uuid.NewString(),
		Timeframe:  tf,
		Series:     series,
		Indicators: ind,
		Signals:    eval.Signals,
		BuyScore:   eval.BuyScore,
		Level:      eval.Level,
		EntryPrice: eval.EntryPrice,
		ComputedAt: e.now(),
	}, nil
}

// fallback serves a stale copy of the last good result, or returns err when there is none.
func (e *Engine) fallback(tf model.Timeframe, err error) (*model.Result, error) {
	e.mu.RLock()
	ent, ok := e.cache[tf]
	e.mu.RUnlock()
	if !ok {
		return nil, err
	}
	metrics.CacheLookups.WithLabelValues(tf.String(), metrics.LookupStale).Inc()
	log.Printf("[WARN] %v, serving result computed at %s", err, ent.result.ComputedAt.Format(time.RFC3339))

	stale := *ent.result
	stale.Stale = true
	return &stale, nil
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Engine) limit() int {
	if e.Limit > 0 {
		return e.Limit
	}
	return DefaultLimit
}
