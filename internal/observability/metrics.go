package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Verification outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeTimeout = "timeout"
)

// Metrics stores Prometheus collectors used by the proxy.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal        *prometheus.CounterVec
	httpRequestDuration      *prometheus.HistogramVec
	verificationsTotal       *prometheus.CounterVec
	verificationDuration     prometheus.Histogram
	queueDepth               prometheus.Gauge
	batchesTotal             prometheus.Counter
	batchEmails              prometheus.Histogram
	submissionsRejectedTotal prometheus.Counter
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "verify_proxy",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "verify_proxy",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds by method and path.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		verificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "verify_proxy",
				Name:      "verifications_total",
				Help:      "Total number of upstream verification calls by outcome.",
			},
			[]string{"outcome"},
		),
		verificationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "verify_proxy",
				Name:      "verification_duration_seconds",
				Help:      "Upstream verification call duration in seconds.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			},
		),
		queueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "verify_proxy",
				Name:      "queue_depth",
				Help:      "Current number of verification jobs waiting in the queue.",
			},
		),
		batchesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "verify_proxy",
				Name:      "batches_total",
				Help:      "Total number of batch verification requests accepted.",
			},
		),
		batchEmails: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "verify_proxy",
				Name:      "batch_emails",
				Help:      "Number of emails per accepted batch request.",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 11),
			},
		),
		submissionsRejectedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "verify_proxy",
				Name:      "submissions_rejected_total",
				Help:      "Total number of queue submissions rejected during shutdown.",
			},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.verificationsTotal,
		m.verificationDuration,
		m.queueDepth,
		m.batchesTotal,
		m.batchEmails,
		m.submissionsRejectedTotal,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) HTTPMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := routePath(c)
		// Avoid self-scrape noise for request counters.
		if path == "/metrics" {
			return err
		}

		m.recordHTTPRequest(c.Method(), path, statusFromResult(c, err), time.Since(start))
		return err
	}
}

func (m *Metrics) IncVerification(outcome string) {
	if m == nil {
		return
	}
	m.verificationsTotal.WithLabelValues(normalizeOutcome(outcome)).Inc()
}

func (m *Metrics) ObserveVerificationDuration(duration time.Duration) {
	if m == nil {
		return
	}
	seconds := duration.Seconds()
	if seconds < 0 {
		seconds = 0
	}
	m.verificationDuration.Observe(seconds)
}

func (m *Metrics) SetQueueDepth(depth int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(depth))
}

func (m *Metrics) IncBatch(emailCount int) {
	if m == nil {
		return
	}
	m.batchesTotal.Inc()
	m.batchEmails.Observe(float64(emailCount))
}

func (m *Metrics) IncSubmissionRejected() {
	if m == nil {
		return
	}
	m.submissionsRejectedTotal.Inc()
}

func (m *Metrics) recordHTTPRequest(method string, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	methodLabel := strings.ToUpper(strings.TrimSpace(method))
	if methodLabel == "" {
		methodLabel = "UNKNOWN"
	}
	pathLabel := strings.TrimSpace(path)
	if pathLabel == "" {
		pathLabel = "unmatched"
	}

	m.httpRequestsTotal.WithLabelValues(methodLabel, pathLabel, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(methodLabel, pathLabel).Observe(duration.Seconds())
}

func routePath(c *fiber.Ctx) string {
	if c == nil {
		return "unmatched"
	}

	if route := c.Route(); route != nil {
		if path := strings.TrimSpace(route.Path); path != "" {
			return path
		}
	}
	return "unmatched"
}

func statusFromResult(c *fiber.Ctx, err error) int {
	if err != nil {
		if fiberErr, ok := err.(*fiber.Error); ok {
			return fiberErr.Code
		}
		return fiber.StatusInternalServerError
	}

	if c == nil {
		return fiber.StatusOK
	}

	status := c.Response().StatusCode()
	if status == 0 {
		return fiber.StatusOK
	}
	return status
}

func normalizeOutcome(outcome string) string {
	normalized := strings.ToLower(strings.TrimSpace(outcome))
	switch normalized {
	case OutcomeSuccess, OutcomeError, OutcomeTimeout:
		return normalized
	}
	return "unknown"
}
