package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry

	// HTTP request rate. Watch for: sudden drops (service down) or spikes (traffic surge).
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency per request. Watch for: p95/p99 latency increases.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight. Watch for: saturation, capacity limits.
	HTTPRequestsInFlight prometheus.Gauge

	// OpenWeatherMap call rate per endpoint. Watch for: error vs success ratio.
	UpstreamCallsTotal *prometheus.CounterVec

	// Upstream latency per endpoint. Watch for: p95 approaching the endpoint deadline.
	UpstreamDuration *prometheus.HistogramVec

	// Upstream failures by classified kind (timeout, http_status, connection, decode).
	UpstreamErrorsTotal *prometheus.CounterVec

	// Cache hits by backend. Hit rate = hits / forecastQueriesTotal.
	CacheHitsTotal *prometheus.CounterVec

	// Swallowed cache failures by operation. Non-zero values mean degraded caching, not failed requests.
	CacheErrorsTotal *prometheus.CounterVec

	// Expired cache files removed by the prune job.
	CachePrunedFilesTotal prometheus.Counter

	// Bundles rebuilt from the narrow endpoints because the primary failed.
	FallbackSynthesisTotal prometheus.Counter

	// Fetches where the fallback path failed too; these surface to the caller.
	FallbackFailuresTotal prometheus.Counter

	// Total forecast lookups. Watch for: traffic volume, rate() for QPS.
	ForecastQueriesTotal prometheus.Counter

	// Rate limit denials. Watch for: overload, capacity exceeded.
	RateLimitDeniedTotal prometheus.Counter
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	UpstreamCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstreamCallsTotal",
			Help: "Total number of OpenWeatherMap API calls per endpoint",
		},
		[]string{"endpoint", "status"},
	)
	UpstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstreamDurationSeconds",
			Help:    "OpenWeatherMap API latency in seconds (per request)",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 15},
		},
		[]string{"endpoint", "status"},
	)
	UpstreamErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstreamErrorsTotal",
			Help: "Upstream call failures by classified kind",
		},
		[]string{"endpoint", "kind"},
	)
	CacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cacheHitsTotal",
			Help: "Total number of cache hits by backend",
		},
		[]string{"cacheType"},
	)
	CacheErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cacheErrorsTotal",
			Help: "Swallowed cache read/write failures by operation",
		},
		[]string{"operation"},
	)
	CachePrunedFilesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cachePrunedFilesTotal",
			Help: "Expired cache files removed by the prune job",
		},
	)
	FallbackSynthesisTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fallbackSynthesisTotal",
			Help: "Forecast bundles synthesized from the narrow endpoints",
		},
	)
	FallbackFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fallbackFailuresTotal",
			Help: "Fetches where the fallback path failed after the primary did",
		},
	)
	ForecastQueriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "forecastQueriesTotal",
			Help: "Total number of forecast lookups",
		},
	)
	RateLimitDeniedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rateLimitDeniedTotal",
			Help: "Total number of requests denied by rate limiter (429)",
		},
	)

	registry.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight,
		UpstreamCallsTotal, UpstreamDuration, UpstreamErrorsTotal,
		CacheHitsTotal, CacheErrorsTotal, CachePrunedFilesTotal,
		FallbackSynthesisTotal, FallbackFailuresTotal,
		ForecastQueriesTotal, RateLimitDeniedTotal,
	)
}

// ObserveUpstreamCall records one upstream API call outcome.
func ObserveUpstreamCall(endpoint, status string, d time.Duration) {
	UpstreamCallsTotal.WithLabelValues(endpoint, status).Inc()
	UpstreamDuration.WithLabelValues(endpoint, status).Observe(d.Seconds())
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
