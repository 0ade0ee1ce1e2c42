package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors. It implements app.Recorder.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	sessions        *prometheus.CounterVec
	percentages     *prometheus.HistogramVec
}

// New registers the collectors on a dedicated registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "endpoint"},
		),
		sessions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assessment_sessions_total",
				Help: "Assessment session lifecycle transitions",
			},
			[]string{"event", "domain", "test_type"},
		),
		percentages: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "assessment_session_percentage",
				Help:    "Percentage scored by completed sessions",
				Buckets: prometheus.LinearBuckets(10, 10, 10),
			},
			[]string{"domain"},
		),
	}
	m.registry.MustRegister(m.requests, m.requestDuration, m.sessions, m.percentages)
	return m
}

func (m *Metrics) SessionCreated(domainID, testType string) {
	m.sessions.WithLabelValues("created", domainID, testType).Inc()
}

func (m *Metrics) SessionCompleted(domainID string, percentage int) {
	m.sessions.WithLabelValues("completed", domainID, "").Inc()
	m.percentages.WithLabelValues(domainID).Observe(float64(percentage))
}

func (m *Metrics) SessionAbandoned() {
	m.sessions.WithLabelValues("abandoned", "", "").Inc()
}

// Middleware records request counts and latency per route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		m.requests.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
