package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the service
type Metrics struct {
	Registry             *prometheus.Registry
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	ProduceQueriesTotal  *prometheus.CounterVec
	ProduceQueryDuration prometheus.Histogram
	CacheLookupsTotal    *prometheus.CounterVec
	EstimatesTotal       *prometheus.CounterVec
	RecipesTotal         *prometheus.CounterVec
}

// New constructs and registers all metrics on a dedicated registry
func New() *Metrics {
	registry := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farmstand_http_requests_total",
			Help: "Total HTTP requests served, by route and status.",
		},
		[]string{"method", "route", "status"},
	)
	httpDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "farmstand_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	produceQueries := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farmstand_produce_queries_total",
			Help: "Produce query service calls by outcome.",
		},
		[]string{"outcome"},
	)
	produceDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "farmstand_produce_query_duration_seconds",
			Help:    "Produce query latency including retries.",
			Buckets: prometheus.DefBuckets,
		},
	)
	cacheLookups := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farmstand_cache_lookups_total",
			Help: "Seller cache lookups by result.",
		},
		[]string{"result"},
	)
	estimates := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farmstand_estimates_total",
			Help: "Price estimates by outcome.",
		},
		[]string{"outcome"},
	)
	recipes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farmstand_recipe_generations_total",
			Help: "Recipe generations by outcome.",
		},
		[]string{"outcome"},
	)

	registry.MustRegister(
		httpRequests,
		httpDuration,
		produceQueries,
		produceDuration,
		cacheLookups,
		estimates,
		recipes,
	)

	return &Metrics{
		Registry:             registry,
		HTTPRequestsTotal:    httpRequests,
		HTTPRequestDuration:  httpDuration,
		ProduceQueriesTotal:  produceQueries,
		ProduceQueryDuration: produceDuration,
		CacheLookupsTotal:    cacheLookups,
		EstimatesTotal:       estimates,
		RecipesTotal:         recipes,
	}
}

// ObserveHTTPRequest records one served request
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveProduceQuery records a produce query outcome and its latency
func (m *Metrics) ObserveProduceQuery(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ProduceQueriesTotal.WithLabelValues(outcome).Inc()
	m.ProduceQueryDuration.Observe(elapsed.Seconds())
}

// ObserveCacheLookup records a seller cache hit or miss
func (m *Metrics) ObserveCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookupsTotal.WithLabelValues(result).Inc()
}

// ObserveEstimate records an estimate outcome
func (m *Metrics) ObserveEstimate(outcome string) {
	if m == nil {
		return
	}
	m.EstimatesTotal.WithLabelValues(outcome).Inc()
}

// ObserveRecipeGeneration records a recipe generation outcome
func (m *Metrics) ObserveRecipeGeneration(outcome string) {
	if m == nil {
		return
	}
	m.RecipesTotal.WithLabelValues(outcome).Inc()
}
