// Package metrics wraps github.com/rcrowley/go-metrics behind
// NewRegisteredCounter/NewRegisteredMeter helpers and additionally
// exposes the registry to Prometheus, since scraping is the usual way
// to surface go-metrics values outside process logs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	gometrics "github.com/rcrowley/go-metrics"
)

// DefaultRegistry is the process-wide go-metrics registry every
// NewRegisteredCounter/Meter call attaches to.
var DefaultRegistry = gometrics.DefaultRegistry

// NewRegisteredCounter creates and registers a new Counter, or returns
// the existing one if name is already registered.
func NewRegisteredCounter(name string, r gometrics.Registry) gometrics.Counter {
	if r == nil {
		r = DefaultRegistry
	}
	return gometrics.GetOrRegisterCounter(name, r)
}

// NewRegisteredMeter creates and registers a new Meter.
func NewRegisteredMeter(name string, r gometrics.Registry) gometrics.Meter {
	if r == nil {
		r = DefaultRegistry
	}
	return gometrics.GetOrRegisterMeter(name, r)
}

// Collector adapts DefaultRegistry into a prometheus.Collector so it can
// be registered on a prometheus.Registry and scraped like any other
// process metric.
type Collector struct {
	namespace string
}

// NewCollector returns a Collector that prefixes every exported metric
// name with namespace (e.g. "ledgercore").
func NewCollector(namespace string) *Collector {
	return &Collector{namespace: namespace}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	// Dynamic set of metrics: descriptions are emitted lazily from Collect,
	// the same unchecked-collector pattern prometheus client_golang
	// documents for registries whose metric set grows at runtime.
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	DefaultRegistry.Each(func(name string, i interface{}) {
		fqName := c.namespace + "_" + sanitize(name)
		switch m := i.(type) {
		case gometrics.Counter:
			ch <- prometheus.MustNewConstMetric(
				prometheus.NewDesc(fqName, name+" (counter)", nil, nil),
				prometheus.CounterValue, float64(m.Count()))
		case gometrics.Meter:
			snap := m.Snapshot()
			ch <- prometheus.MustNewConstMetric(
				prometheus.NewDesc(fqName+"_total", name+" (meter count)", nil, nil),
				prometheus.CounterValue, float64(snap.Count()))
			ch <- prometheus.MustNewConstMetric(
				prometheus.NewDesc(fqName+"_rate1m", name+" (meter 1m rate)", nil, nil),
				prometheus.GaugeValue, snap.Rate1())
		case gometrics.Gauge:
			ch <- prometheus.MustNewConstMetric(
				prometheus.NewDesc(fqName, name+" (gauge)", nil, nil),
				prometheus.GaugeValue, float64(m.Value()))
		}
	})
}

func sanitize(name string) string {
	out := make([]byte, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			out[i] = c
		default:
			out[i] = '_'
		}
	}
	return string(out)
}
