package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Cache lookup outcomes.
const (
	LookupHit   = "hit"
	LookupMiss  = "miss"
	LookupStale = "stale"
)

var (
	CacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wolfhunter_cache_lookups_total",
		Help: "Evaluation requests by timeframe and outcome (hit, miss, stale)",
	}, []string{"timeframe", "result"})

	FetchErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wolfhunter_fetch_errors_total",
		Help: "Failed candle fetches by provider and timeframe",
	}, []string{"provider", "timeframe"})

	EvaluationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wolfhunter_evaluation_duration_seconds",
		Help:    "Time spent fetching and evaluating one timeframe",
		Buckets: prometheus.DefBuckets,
	}, []string{"timeframe"})

	BuyScore = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "wolfhunter_buy_score",
		Help: "Latest computed buy score per timeframe",
	}, []string{"timeframe"})

	AlertsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wolfhunter_alerts_sent_total",
		Help: "Buy alerts delivered by timeframe",
	}, []string{"timeframe"})
)

func init() {
	prometheus.MustRegister(CacheLookups, FetchErrors, EvaluationDuration, BuyScore, AlertsSent)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
