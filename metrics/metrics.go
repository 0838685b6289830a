// Package metrics exports pipeline measurements to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/meigma/assetpipe"
)

var _ assetpipe.Metrics = (*Collector)(nil)

// Collector is the Prometheus implementation of assetpipe.Metrics.
type Collector struct {
	requests     *prometheus.CounterVec
	reads        *prometheus.CounterVec
	readBytes    *prometheus.HistogramVec
	decodes      *prometheus.CounterVec
	cacheEntries prometheus.Gauge
}

// New creates a collector and registers it with reg. A nil reg registers
// with the default registry.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	return &Collector{
		requests: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetpipe_requests_total",
				Help: "Accessor requests by asset kind and how they were satisfied",
			},
			[]string{"kind", "outcome"}, // outcome: "hit", "preloaded", "loaded"
		),
		reads: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetpipe_reads_total",
				Help: "Asset payload reads by the load worker",
			},
			[]string{"kind", "status"}, // status: "ok", "error"
		),
		readBytes: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "assetpipe_read_bytes",
				Help: "Distribution of asset payload sizes read by the load worker",
				Buckets: []float64{
					1024,     // 1KB - materials
					16384,    // 16KB
					131072,   // 128KB - small meshes
					1048576,  // 1MB
					4194304,  // 4MB - textures
					16777216, // 16MB
					67108864, // 64MB
				},
			},
			[]string{"kind"},
		),
		decodes: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetpipe_decodes_total",
				Help: "Decode worker attempts by asset kind and status",
			},
			[]string{"kind", "status"},
		),
		cacheEntries: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "assetpipe_eviction_cache_entries",
				Help: "Current number of entries in the eviction cache",
			},
		),
	}
}

// ObserveOutcome records n requests of kind satisfied with outcome.
func (c *Collector) ObserveOutcome(kind assetpipe.Kind, outcome assetpipe.Outcome, n int) {
	c.requests.WithLabelValues(kind.String(), outcome.String()).Add(float64(n))
}

// ObserveRead records one asset read.
func (c *Collector) ObserveRead(kind assetpipe.Kind, ok bool, bytes int) {
	c.reads.WithLabelValues(kind.String(), status(ok)).Inc()
	if ok {
		c.readBytes.WithLabelValues(kind.String()).Observe(float64(bytes))
	}
}

// ObserveDecode records one decode worker attempt.
func (c *Collector) ObserveDecode(kind assetpipe.Kind, ok bool) {
	c.decodes.WithLabelValues(kind.String(), status(ok)).Inc()
}

// SetCacheEntries reports the current eviction cache size.
func (c *Collector) SetCacheEntries(n int) {
	c.cacheEntries.Set(float64(n))
}

func status(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
