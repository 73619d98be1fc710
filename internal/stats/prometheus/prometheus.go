// Package prometheus provides a Prometheus-based stats collector.
package prometheus

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/discochess/gamereview/internal/stats"
)

// Collector implements stats.Collector using Prometheus metrics.
// Metrics are registered lazily on first use.
type Collector struct {
	registry prometheus.Registerer

	mu         sync.Mutex
	counters   map[string]prometheus.Counter
	gauges     map[string]prometheus.Gauge
	histograms map[string]prometheus.Histogram
}

// Compile-time check that Collector implements stats.Collector.
var _ stats.Collector = (*Collector)(nil)

// New creates a new Prometheus collector.
// If registry is nil, prometheus.DefaultRegisterer is used.
func New(registry prometheus.Registerer) *Collector {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	return &Collector{
		registry:   registry,
		counters:   make(map[string]prometheus.Counter),
		gauges:     make(map[string]prometheus.Gauge),
		histograms: make(map[string]prometheus.Histogram),
	}
}

// IncCounter increments a counter metric.
func (c *Collector) IncCounter(name string, delta int64) {
	c.counter(name).Add(float64(delta))
}

// SetGauge sets a gauge metric.
func (c *Collector) SetGauge(name string, value int64) {
	c.gauge(name).Set(float64(value))
}

// ObserveHistogram records a value in a histogram.
func (c *Collector) ObserveHistogram(name string, value float64) {
	c.histogram(name).Observe(value)
}

func (c *Collector) counter(name string) prometheus.Counter {
	c.mu.Lock()
	defer c.mu.Unlock()

	if counter, ok := c.counters[name]; ok {
		return counter
	}

	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: name})
	if err := c.registry.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				counter = existing
			}
		}
	}
	c.counters[name] = counter
	return counter
}

func (c *Collector) gauge(name string) prometheus.Gauge {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gauge, ok := c.gauges[name]; ok {
		return gauge
	}

	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: name})
	if err := c.registry.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				gauge = existing
			}
		}
	}
	c.gauges[name] = gauge
	return gauge
}

func (c *Collector) histogram(name string) prometheus.Histogram {
	c.mu.Lock()
	defer c.mu.Unlock()

	if histogram, ok := c.histograms[name]; ok {
		return histogram
	}

	histogram := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    name,
		Help:    name,
		Buckets: prometheus.DefBuckets,
	})
	if err := c.registry.Register(histogram); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				histogram = existing
			}
		}
	}
	c.histograms[name] = histogram
	return histogram
}
