// Package poolmetrics exports a pool's Metrics snapshot as Prometheus
// collectors, so the same counters that back the pool's own invariants
// can also be scraped.
package poolmetrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smartdb-go/smartdb/pool"
)

// Exporter adapts one named pool's Metrics snapshot into Prometheus
// gauges and counters, refreshed on each scrape.
type Exporter struct {
	pool *pool.Pool
	name string

	acquireAttempts  *prometheus.Desc
	acquireSuccesses *prometheus.Desc
	acquireFailures  *prometheus.Desc
	acquireTimeouts  *prometheus.Desc
	waitEvents       *prometheus.Desc
	factoryFailures  *prometheus.Desc
	avgWaitMicros    *prometheus.Desc
	peakInUse        *prometheus.Desc
	total            *prometheus.Desc
	idle             *prometheus.Desc
}

// New builds an Exporter for p, labeled with name (typically the
// connection name the pool was created for).
func New(name string, p *pool.Pool) *Exporter {
	labels := []string{"pool"}
	return &Exporter{
		pool: p,
		name: name,
		acquireAttempts: prometheus.NewDesc(
			"smartdb_pool_acquire_attempts_total", "Total acquire attempts.", labels, nil),
		acquireSuccesses: prometheus.NewDesc(
			"smartdb_pool_acquire_successes_total", "Total successful acquires.", labels, nil),
		acquireFailures: prometheus.NewDesc(
			"smartdb_pool_acquire_failures_total", "Total failed acquires.", labels, nil),
		acquireTimeouts: prometheus.NewDesc(
			"smartdb_pool_acquire_timeouts_total", "Total acquires that timed out waiting.", labels, nil),
		waitEvents: prometheus.NewDesc(
			"smartdb_pool_wait_events_total", "Total times an acquire had to wait.", labels, nil),
		factoryFailures: prometheus.NewDesc(
			"smartdb_pool_factory_failures_total", "Total connection factory failures.", labels, nil),
		avgWaitMicros: prometheus.NewDesc(
			"smartdb_pool_average_acquire_wait_microseconds", "Average acquire wait, in microseconds.", labels, nil),
		peakInUse: prometheus.NewDesc(
			"smartdb_pool_peak_in_use", "Peak simultaneous in-use connections.", labels, nil),
		total: prometheus.NewDesc(
			"smartdb_pool_total", "Current total connections (idle + in-use).", labels, nil),
		idle: prometheus.NewDesc(
			"smartdb_pool_idle", "Current idle connections.", labels, nil),
	}
}

// Describe implements prometheus.Collector.
func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	ch <- e.acquireAttempts
	ch <- e.acquireSuccesses
	ch <- e.acquireFailures
	ch <- e.acquireTimeouts
	ch <- e.waitEvents
	ch <- e.factoryFailures
	ch <- e.avgWaitMicros
	ch <- e.peakInUse
	ch <- e.total
	ch <- e.idle
}

// Collect implements prometheus.Collector, reading a fresh snapshot on
// every call so scrapes always see current values.
func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	stats := e.pool.Stats()

	ch <- prometheus.MustNewConstMetric(e.acquireAttempts, prometheus.CounterValue, float64(stats.AcquireAttempts), e.name)
	ch <- prometheus.MustNewConstMetric(e.acquireSuccesses, prometheus.CounterValue, float64(stats.AcquireSuccesses), e.name)
	ch <- prometheus.MustNewConstMetric(e.acquireFailures, prometheus.CounterValue, float64(stats.AcquireFailures), e.name)
	ch <- prometheus.MustNewConstMetric(e.acquireTimeouts, prometheus.CounterValue, float64(stats.AcquireTimeouts), e.name)
	ch <- prometheus.MustNewConstMetric(e.waitEvents, prometheus.CounterValue, float64(stats.WaitEvents), e.name)
	ch <- prometheus.MustNewConstMetric(e.factoryFailures, prometheus.CounterValue, float64(stats.FactoryFailures), e.name)
	ch <- prometheus.MustNewConstMetric(e.avgWaitMicros, prometheus.GaugeValue, float64(stats.AverageAcquireWaitMicros), e.name)
	ch <- prometheus.MustNewConstMetric(e.peakInUse, prometheus.GaugeValue, float64(stats.PeakInUse), e.name)
	ch <- prometheus.MustNewConstMetric(e.total, prometheus.GaugeValue, float64(e.pool.Total()), e.name)
	ch <- prometheus.MustNewConstMetric(e.idle, prometheus.GaugeValue, float64(e.pool.Idle()), e.name)
}

// Registry wraps a dedicated Prometheus registry that exporters can be
// registered against, separate from the default global registry.
type Registry struct {
	reg *prometheus.Registry
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{reg: prometheus.NewRegistry()}
}

// Register adds an Exporter to the registry.
func (r *Registry) Register(e *Exporter) error {
	return r.reg.Register(e)
}

// Handler returns an http.Handler that serves the registry's metrics in
// the Prometheus text exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
