package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"alcyxob/training-engine/internal/domain"
)

// Metrics holds the service collectors. It satisfies engine.Recorder.
type Metrics struct {
	PlansBuilt         *prometheus.CounterVec
	Recommendations    *prometheus.CounterVec
	AdaptationsApplied *prometheus.CounterVec
	RequestCounter     *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// NewMetrics creates the collectors and registers them with reg. Passing a
// fresh prometheus.NewRegistry() keeps tests isolated.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		PlansBuilt: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plans_built_total",
				Help: "Total number of training plans built",
			},
			[]string{"model"},
		),
		Recommendations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recommendations_total",
				Help: "Decision engine recommendations by type",
			},
			[]string{"type"},
		),
		AdaptationsApplied: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adaptations_applied_total",
				Help: "Journaled plan revisions by kind",
			},
			[]string{"kind"},
		),
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "endpoint"},
		),
		gatherer: reg,
	}
	reg.MustRegister(m.PlansBuilt, m.Recommendations, m.AdaptationsApplied, m.RequestCounter, m.RequestDuration)
	return m
}

func (m *Metrics) PlanBuilt(model domain.ModelKey) {
	m.PlansBuilt.WithLabelValues(string(model)).Inc()
}

func (m *Metrics) Recommendation(t domain.RecommendationType) {
	m.Recommendations.WithLabelValues(string(t)).Inc()
}

func (m *Metrics) AdaptationApplied(kind domain.JournalEntryType) {
	m.AdaptationsApplied.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		m.RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		m.RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
