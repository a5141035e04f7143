package app

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// httpMetrics bundles the Prometheus collectors shared by all routes.
type httpMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

func newHTTPMetrics(reg prometheus.Registerer) *httpMetrics {
	m := &httpMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ambassador_http_requests_total",
				Help: "Total count of HTTP requests received.",
			},
			[]string{"method", "path", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ambassador_http_request_duration_seconds",
				Help:    "Histogram of request durations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ambassador_http_inflight_requests",
			Help: "Number of requests currently being handled.",
		}),
	}
	reg.MustRegister(m.requests, m.duration, m.inFlight)
	return m
}

// middleware instruments every request. The route template (not the raw
// URL) is the path label, which keeps cardinality bounded for routes
// with :id parameters.
func (m *httpMetrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		m.inFlight.Inc()
		defer m.inFlight.Dec()

		start := time.Now()
		c.Next()
		elapsed := time.Since(start).Seconds()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		labels := []string{c.Request.Method, path, strconv.Itoa(c.Writer.Status())}

		m.requests.WithLabelValues(labels...).Inc()
		m.duration.WithLabelValues(labels...).Observe(elapsed)
	}
}

// handler exposes /metrics from the default registry.
func (m *httpMetrics) handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
