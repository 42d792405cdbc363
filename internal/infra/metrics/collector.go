// Package metrics exports issue cache activity as Prometheus counters.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/runoshun/git-issue/internal/issuecache"
)

// Ensure Collector implements issuecache.Observer.
var _ issuecache.Observer = (*Collector)(nil)

// Collector counts cache hits, misses and gateway calls on its own registry.
type Collector struct {
	registry *prometheus.Registry
	hits     *prometheus.CounterVec
	misses   *prometheus.CounterVec
	gateway  *prometheus.CounterVec
}

// NewCollector creates a Collector with a fresh registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "git_issue_cache_hits_total",
			Help: "Reads answered from the local issue cache.",
		}, []string{"op"}),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "git_issue_cache_misses_total",
			Help: "Reads that required a gateway call.",
		}, []string{"op"}),
		gateway: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "git_issue_gateway_calls_total",
			Help: "Completed gateway calls by outcome.",
		}, []string{"op", "result"}),
	}
	c.registry.MustRegister(c.hits, c.misses, c.gateway)
	return c
}

// Registry returns the registry holding the cache counters.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Hit implements issuecache.Observer.
func (c *Collector) Hit(op issuecache.Op) {
	c.hits.WithLabelValues(string(op)).Inc()
}

// Miss implements issuecache.Observer.
func (c *Collector) Miss(op issuecache.Op) {
	c.misses.WithLabelValues(string(op)).Inc()
}

// GatewayDone implements issuecache.Observer.
func (c *Collector) GatewayDone(op issuecache.Op, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.gateway.WithLabelValues(string(op), result).Inc()
}

// WriteTextfile writes all counters to path in the Prometheus text format,
// suitable for the node exporter's textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
