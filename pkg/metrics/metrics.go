package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CacheMetrics counts cache gateway outcomes. A nil *CacheMetrics is valid
// and records nothing, so tests can construct components without touching
// the default registry.
type CacheMetrics struct {
	requests *prometheus.CounterVec
}

func NewCacheMetrics(service string) *CacheMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ecommerce",
		Subsystem: service,
		Name:      "cache_requests_total",
		Help:      "Cache gateway requests by outcome.",
	}, []string{"outcome"})

	prometheus.MustRegister(requests)
	return &CacheMetrics{requests: requests}
}

func (m *CacheMetrics) Hit() {
	if m == nil {
		return
	}
	m.requests.WithLabelValues("hit").Inc()
}

func (m *CacheMetrics) Miss() {
	if m == nil {
		return
	}
	m.requests.WithLabelValues("miss").Inc()
}

func (m *CacheMetrics) Error() {
	if m == nil {
		return
	}
	m.requests.WithLabelValues("error").Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}
