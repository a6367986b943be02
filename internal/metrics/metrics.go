// Package metrics exposes Prometheus counters for the checkout flow and HTTP
// traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"sanctuary-app/internal/domain/access"
	"sanctuary-app/internal/domain/checkout"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector implements entitlement.Recorder on Prometheus.
type Collector struct {
	checkoutRequests *prometheus.CounterVec
	resolutions      *prometheus.CounterVec
	accessChecks     *prometheus.CounterVec
	processorLatency *prometheus.HistogramVec
	httpRequests     *prometheus.CounterVec
	httpLatency      *prometheus.HistogramVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		checkoutRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sanctuary_checkout_requests_total",
			Help: "Checkout requests by result.",
		}, []string{"result"}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sanctuary_checkout_resolutions_total",
			Help: "Checkout session resolutions by outcome.",
		}, []string{"outcome"}),
		accessChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sanctuary_access_checks_total",
			Help: "Access checks by resulting state.",
		}, []string{"state"}),
		processorLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sanctuary_payment_processor_latency_seconds",
			Help:    "Latency of payment processor calls.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sanctuary_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"method", "route", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sanctuary_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		c.checkoutRequests,
		c.resolutions,
		c.accessChecks,
		c.processorLatency,
		c.httpRequests,
		c.httpLatency,
	)
	return c
}

func (c *Collector) RecordCheckoutRequest(result string) {
	c.checkoutRequests.WithLabelValues(result).Inc()
}

func (c *Collector) RecordResolution(outcome checkout.Outcome) {
	c.resolutions.WithLabelValues(string(outcome)).Inc()
}

func (c *Collector) RecordAccessCheck(state access.AccessState) {
	c.accessChecks.WithLabelValues(string(state)).Inc()
}

func (c *Collector) RecordProcessorLatency(op string, d time.Duration) {
	c.processorLatency.WithLabelValues(op).Observe(d.Seconds())
}

// RecordHTTPRequest is fed by the request logging middleware. route is the
// registered pattern, not the raw path.
func (c *Collector) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler serves the Prometheus scrape endpoint.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
