package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Labels stay bounded: path is the route template, never the raw URL, except
// for unmatched requests.
var (
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "promo",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		},
		[]string{"method", "path", "status"},
	)

	httpLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "promo",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	httpInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "promo",
			Name:      "http_requests_inflight",
			Help:      "HTTP requests currently being served.",
		},
	)

	// Ingest batches dominate request sizes, so both directions are tracked.
	sizeBuckets = prometheus.ExponentialBuckets(256, 4, 9) // 256B..16MiB

	httpReqSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "promo",
			Name:      "http_request_size_bytes",
			Help:      "Declared HTTP request body size in bytes.",
			Buckets:   sizeBuckets,
		},
		[]string{"method", "path"},
	)

	httpRespSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "promo",
			Name:      "http_response_size_bytes",
			Help:      "HTTP response body size in bytes.",
			Buckets:   sizeBuckets,
		},
		[]string{"method", "path"},
	)
)

func init() {
	prometheus.MustRegister(httpReqs, httpLat, httpInflight, httpReqSize, httpRespSize)
}

// Metrics records Prometheus request metrics. Serve them with
// promhttp.Handler on /metrics.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		c.Next()

		method, path := c.Request.Method, routePath(c)
		httpReqs.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpLat.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		if n := c.Request.ContentLength; n > 0 {
			httpReqSize.WithLabelValues(method, path).Observe(float64(n))
		}
		// Size is -1 when nothing was written.
		if n := c.Writer.Size(); n >= 0 {
			httpRespSize.WithLabelValues(method, path).Observe(float64(n))
		}
	}
}
