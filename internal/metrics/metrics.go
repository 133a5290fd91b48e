// Package metrics exposes Prometheus counters for HTTP traffic, booklist
// commits and background cleanup.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "shelf_manager"

// Metrics owns a private registry. A nil *Metrics records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	requests         *prometheus.CounterVec
	latency          *prometheus.HistogramVec
	commits          *prometheus.CounterVec
	booklistsCreated prometheus.Counter
	itemsAttached    prometheus.Counter
	cleanupRemoved   *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booklist_commits_total",
			Help:      "Booklist build saves by commit mode and outcome.",
		}, []string{"mode", "outcome"}),
		booklistsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booklists_created_total",
			Help:      "Booklists written by successful commits.",
		}),
		itemsAttached: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booklist_items_attached_total",
			Help:      "Booklist items written by successful commits.",
		}),
		cleanupRemoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cleanup_removed_total",
			Help:      "Rows removed by background cleanup tasks.",
		}, []string{"task"}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.latency,
		m.commits,
		m.booklistsCreated,
		m.itemsAttached,
		m.cleanupRemoved,
	)
	return m
}

// Middleware counts requests and observes latency, labelled by route pattern.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.latency.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
}

func (m *Metrics) ObserveCommit(mode string, booklists, items int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.commits.WithLabelValues(mode, "failure").Inc()
		return
	}
	m.commits.WithLabelValues(mode, "success").Inc()
	m.booklistsCreated.Add(float64(booklists))
	m.itemsAttached.Add(float64(items))
}

func (m *Metrics) ObserveCleanup(task string, removed int64) {
	if m == nil {
		return
	}
	m.cleanupRemoved.WithLabelValues(task).Add(float64(removed))
}
