// Package metrics exposes request and portal state metrics in the Prometheus format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"unsritalk/internal/models"
)

const namespace = "unsritalk"

// Source is the live portal state. The store satisfies it.
type Source interface {
	Snapshot() models.Snapshot
	Degraded() bool
}

type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// New builds a registry with process and Go runtime collectors. With a non-nil source it
// also reports portal totals and whether persistence is degraded.
func New(source Source) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.latency,
	)

	if source != nil {
		m.registry.MustRegister(
			gauge("users", "Registered users.", func() float64 {
				return float64(len(source.Snapshot().Users))
			}),
			gauge("chats", "Private and group chats.", func() float64 {
				return float64(len(source.Snapshot().Chats))
			}),
			gauge("announcements", "Published announcements.", func() float64 {
				return float64(len(source.Snapshot().Announcements))
			}),
			gauge("storage_degraded", "1 when writes are kept in memory only.", func() float64 {
				if source.Degraded() {
					return 1
				}
				return 0
			}),
		)
	}
	return m
}

func gauge(name, help string, fn func() float64) prometheus.GaugeFunc {
	return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "portal",
		Name:      name,
		Help:      help,
	}, fn)
}

// Middleware records every request under its route template, so chat ids do not blow up
// label cardinality. Unmatched paths are grouped as "unmatched".
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.latency.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
