// Package metrics defines the Prometheus collectors of the REST API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors and the registry they are registered with.
type Metrics struct {
	registry *prometheus.Registry

	activeRequests  prometheus.Gauge
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	contactsChanged *prometheus.CounterVec
}

// New creates the collectors and registers them with a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		activeRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "contacts_active_rest_requests",
			Help: "Number of REST requests currently being served.",
		}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contacts_rest_requests_total",
			Help: "Number of REST requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "contacts_rest_request_duration_seconds",
			Help:    "Latency of REST requests by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		contactsChanged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contacts_changed_total",
			Help: "Number of successfully created, updated and deleted contacts.",
		}, []string{"operation"}),
	}
	m.registry.MustRegister(
		m.activeRequests,
		m.requestsTotal,
		m.requestDuration,
		m.contactsChanged,
		collectors.NewGoCollector(),
	)
	return m
}

// Middleware records every request that passes through the router.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		m.activeRequests.Inc()
		start := time.Now()
		c.Next()
		m.activeRequests.Dec()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
		m.requestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// ContactChanged counts a successful create, update or delete.
func (m *Metrics) ContactChanged(operation string) {
	m.contactsChanged.WithLabelValues(operation).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
