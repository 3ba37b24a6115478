package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsVerificationCounters(t *testing.T) {
	t.Parallel()

	m := NewMetrics()

	m.IncVerification(OutcomeSuccess)
	m.IncVerification(OutcomeSuccess)
	m.IncVerification(OutcomeTimeout)
	m.IncVerification(OutcomeError)
	m.IncVerification("bogus")

	if got := testutil.ToFloat64(m.verificationsTotal.WithLabelValues(OutcomeSuccess)); got != 2 {
		t.Fatalf("success count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.verificationsTotal.WithLabelValues(OutcomeTimeout)); got != 1 {
		t.Fatalf("timeout count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.verificationsTotal.WithLabelValues(OutcomeError)); got != 1 {
		t.Fatalf("error count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.verificationsTotal.WithLabelValues("unknown")); got != 1 {
		t.Fatalf("unknown count = %v, want 1", got)
	}
}

func TestMetricsQueueDepthGauge(t *testing.T) {
	t.Parallel()

	m := NewMetrics()

	m.SetQueueDepth(7)
	if got := testutil.ToFloat64(m.queueDepth); got != 7 {
		t.Fatalf("queue depth = %v, want 7", got)
	}

	m.SetQueueDepth(0)
	if got := testutil.ToFloat64(m.queueDepth); got != 0 {
		t.Fatalf("queue depth = %v, want 0", got)
	}
}

func TestMetricsBatchAndRejectionCounters(t *testing.T) {
	t.Parallel()

	m := NewMetrics()

	m.IncBatch(120)
	m.IncBatch(3)
	m.IncSubmissionRejected()

	if got := testutil.ToFloat64(m.batchesTotal); got != 2 {
		t.Fatalf("batches total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.submissionsRejectedTotal); got != 1 {
		t.Fatalf("rejected total = %v, want 1", got)
	}
}

func TestMetricsNilReceiverIsSafe(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.IncVerification(OutcomeSuccess)
	m.ObserveVerificationDuration(time.Second)
	m.SetQueueDepth(1)
	m.IncBatch(10)
	m.IncSubmissionRejected()
}

func TestMetricsHTTPMiddlewareRecordsRequests(t *testing.T) {
	t.Parallel()

	m := NewMetrics()

	app := fiber.New()
	app.Use(m.HTTPMiddleware())
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	resp.Body.Close()

	if got := testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/health", "200")); got != 1 {
		t.Fatalf("http request count = %v, want 1", got)
	}
}

func TestMetricsHandlerExposesCollectors(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	m.IncVerification(OutcomeSuccess)

	recorder := httptest.NewRecorder()
	m.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", recorder.Code)
	}
	if body := recorder.Body.String(); !strings.Contains(body, "verify_proxy_verifications_total") {
		t.Fatal("exposition should contain verify_proxy_verifications_total")
	}
}
