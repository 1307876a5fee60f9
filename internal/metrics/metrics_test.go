package metrics_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"printshop/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := metrics.New()

	m.ObserveWebhook("payment.captured", "applied")
	m.ObserveWebhook("payment.captured", "applied")
	m.ObserveGateway("create_order", errors.New("boom"))
	m.ObserveBlob("put", nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.WebhookEvents.WithLabelValues("payment.captured", "applied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GatewayCalls.WithLabelValues("create_order", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BlobOperations.WithLabelValues("put", "ok")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.ObserveWebhook("order.paid", "applied")
		m.ObserveRequest("GET", "/healthz", 200, time.Millisecond)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := metrics.New()
	m.ObserveRequest(http.MethodGet, "/api/v1/orders/user", 200, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "printshop_http_requests_total")
}
