package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTP-level instrumentation for the broker API. Labels stay bounded: the
// path label is the registered route template (c.FullPath()), never the raw
// URL, so per-queue IDs do not explode cardinality.
var (
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mq_http_requests_total",
			Help: "Total HTTP requests served by the broker API.",
		},
		[]string{"method", "path", "status"},
	)

	// Latency omits the status label to keep histogram cardinality down.
	httpLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	httpInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mq_http_requests_inflight",
			Help: "HTTP requests currently being handled.",
		},
	)

	// Buckets sized for JSON envelopes around base64 message bodies, from
	// small acks up to the publish size limit.
	httpRespSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "mq_http_response_size_bytes",
			Help: "HTTP response size in bytes.",
			Buckets: []float64{
				200, 500, 1 << 10, 4 << 10, 16 << 10,
				64 << 10, 256 << 10, 1 << 20, 4 << 20,
			},
		},
		[]string{"method", "path"},
	)
)

func init() {
	prometheus.MustRegister(httpReqs, httpLat, httpInflight, httpRespSize)
}

// Metrics returns a middleware that records request counts, latency,
// in-flight concurrency, and response sizes for every route.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			// Unmatched routes (404s) fall back to the raw path.
			path = c.Request.URL.Path
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		httpReqs.WithLabelValues(method, path, status).Inc()
		httpLat.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		if size := c.Writer.Size(); size >= 0 {
			httpRespSize.WithLabelValues(method, path).Observe(float64(size))
		}
	}
}
