package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sanctuary-app/internal/domain/access"
	"sanctuary-app/internal/domain/checkout"
	"sanctuary-app/internal/entitlement"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ entitlement.Recorder = (*Collector)(nil)

func TestCollectorCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordCheckoutRequest("created")
	c.RecordCheckoutRequest("created")
	c.RecordCheckoutRequest("invalid")
	c.RecordResolution(checkout.OutcomePaid)
	c.RecordAccessCheck(access.AccessGranted)

	assert.InDelta(t, 2, testutil.ToFloat64(c.checkoutRequests.WithLabelValues("created")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.checkoutRequests.WithLabelValues("invalid")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.resolutions.WithLabelValues("paid")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.accessChecks.WithLabelValues("granted")), 0)
}

func TestCollectorHistograms(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordProcessorLatency("get_session", 120*time.Millisecond)
	c.RecordHTTPRequest(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	assert.Equal(t, 1, testutil.CollectAndCount(c.processorLatency))
	assert.InDelta(t, 1, testutil.ToFloat64(c.httpRequests.WithLabelValues("GET", "unmatched", "404")), 0)
}

func TestHandlerServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordCheckoutRequest("created")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `sanctuary_checkout_requests_total{result="created"} 1`)
}
