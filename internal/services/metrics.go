package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// EngineMetrics collects the engine-level Prometheus series.
type EngineMetrics struct {
	RequestsTotal *prometheus.CounterVec
	ItemsTotal    prometheus.Counter
	CacheHits     prometheus.Counter
	CacheMisses   prometheus.Counter
	LastAvgScore  prometheus.Gauge
	Duration      prometheus.Histogram
}

func NewEngineMetrics() *EngineMetrics {
	return &EngineMetrics{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cinerec_recommendations_generated_total",
			Help: "Recommendation requests served, by outcome.",
		}, []string{"outcome"}),
		ItemsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cinerec_recommendation_items_total",
			Help: "Total recommendation items returned.",
		}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cinerec_recommendation_cache_hits_total",
			Help: "Recommendation cache hits.",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cinerec_recommendation_cache_misses_total",
			Help: "Recommendation cache misses.",
		}),
		LastAvgScore: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "cinerec_recommendations_last_avg_score",
			Help: "Mean fused score of the most recently generated list.",
		}),
		Duration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "cinerec_recommendation_duration_seconds",
			Help:    "End to end recommendation generation latency.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
