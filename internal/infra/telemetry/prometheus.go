package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusMetrics struct {
	suggestDuration *prometheus.HistogramVec
	cacheLookups    *prometheus.CounterVec
	registrySize    prometheus.Gauge
	suggestionCount prometheus.Histogram
}

func NewPrometheusMetrics(registerer prometheus.Registerer) *PrometheusMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &PrometheusMetrics{
		suggestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nlrouter_suggest_duration_seconds",
				Help:    "Duration of suggestion requests in seconds",
				Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"status", "cache"},
		),
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nlrouter_cache_lookups_total",
				Help: "Total number of response cache lookups",
			},
			[]string{"result"},
		),
		registrySize: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "nlrouter_registry_tools",
				Help: "Current number of registered tools",
			},
		),
		suggestionCount: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "nlrouter_suggestions_returned",
				Help:    "Number of suggestions returned per request",
				Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
			},
		),
	}
}

func (p *PrometheusMetrics) ObserveSuggest(duration time.Duration, cache CacheOutcome, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	if cache == "" {
		cache = CacheOutcomeNone
	}
	p.suggestDuration.WithLabelValues(status, string(cache)).Observe(duration.Seconds())
	if cache != CacheOutcomeNone {
		p.cacheLookups.WithLabelValues(string(cache)).Inc()
	}
}

func (p *PrometheusMetrics) ObserveSuggestionCount(count int) {
	p.suggestionCount.Observe(float64(count))
}

func (p *PrometheusMetrics) SetRegistrySize(count int) {
	p.registrySize.Set(float64(count))
}
