package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	m := New()

	m.ObserveHTTPRequest("GET", "/health", 200, 3*time.Millisecond)
	m.ObserveHTTPRequest("GET", "/health", 200, time.Millisecond)
	m.ObserveHTTPRequest("GET", "", 404, time.Millisecond)
	m.ObserveProduceQuery("success", 20*time.Millisecond)
	m.ObserveProduceQuery("error", time.Second)
	m.ObserveCacheLookup(true)
	m.ObserveCacheLookup(false)
	m.ObserveCacheLookup(false)
	m.ObserveEstimate("superseded")
	m.ObserveRecipeGeneration("success")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/health", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProduceQueriesTotal.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookupsTotal.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookupsTotal.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EstimatesTotal.WithLabelValues("superseded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecipesTotal.WithLabelValues("success")))
}

func TestMetrics_Gather(t *testing.T) {
	m := New()
	m.ObserveEstimate("success")

	families, err := m.Registry.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "farmstand_estimates_total")
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveHTTPRequest("GET", "/", 200, time.Millisecond)
		m.ObserveProduceQuery("success", time.Millisecond)
		m.ObserveCacheLookup(true)
		m.ObserveEstimate("success")
		m.ObserveRecipeGeneration("error")
	})
}
