// Package promtext exposes flushed metrics for Prometheus scraping.
// Grounded on the teacher's use of github.com/prometheus/client_golang in
// internal/metricdata/prometheus.go — the teacher only ever uses the query
// API (api/prometheus/v1) to read from an external Prometheus; this package
// uses the same dependency's exposition half (the prometheus package's
// collector registry plus promhttp's scrape handler) since a metrics
// library needs to publish, not query.
//
// Every flushed value is exposed as a Gauge regardless of Kind: Bucket
// already reduces each period to its own running snapshot (a count, a sum,
// a mean, ...) before publishing, so none of the values reaching this
// OutputScope are safe to treat as a Prometheus Counter (which must only
// increase across the process lifetime) without re-deriving cumulative
// totals this package has no way to reconstruct.
package promtext

import (
	"net/http"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/ClusterCockpit/cc-metrics/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var invalidNameChar = regexp.MustCompile(`[^a-zA-Z0-9_]`)

func sanitize(name metrics.MetricName) string {
	joined := strings.Join([]string(name), "_")
	return invalidNameChar.ReplaceAllString(joined, "_")
}

func sortedLabelNames(labels metrics.Labels) []string {
	names := make([]string, 0, len(labels))
	for k := range labels {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Registry exposes flushed metrics as Prometheus gauges behind an HTTP
// handler suitable for mounting at "/metrics".
type Registry struct {
	reg *prometheus.Registry

	mu     sync.Mutex
	gauges map[string]*prometheus.GaugeVec
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{reg: prometheus.NewRegistry(), gauges: make(map[string]*prometheus.GaugeVec)}
}

// Handler returns the http.Handler to mount for Prometheus scraping.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

func (r *Registry) gaugeFor(name metrics.MetricName, labelNames []string) *prometheus.GaugeVec {
	r.mu.Lock()
	defer r.mu.Unlock()

	promName := sanitize(name)
	if gv, ok := r.gauges[promName]; ok {
		return gv
	}
	gv := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: promName}, labelNames)
	r.reg.MustRegister(gv)
	r.gauges[promName] = gv
	return gv
}

// NewMetric implements metrics.OutputScope: writes Set the gauge named
// after the metric to the written value, with the write's labels as the
// gauge's label set.
func (r *Registry) NewMetric(name metrics.MetricName, kind metrics.Kind) metrics.OutputMetric {
	id := metrics.MetricId{Kind: kind, Name: name.Clone()}
	return metrics.NewOutputMetric(id, func(v metrics.Value, labels metrics.Labels) error {
		names := sortedLabelNames(labels)
		gv := r.gaugeFor(name, names)
		lv := prometheus.Labels(labels)
		gv.With(lv).Set(float64(v))
		return nil
	})
}

// Flush is a no-op: Prometheus scrapes pull current gauge state on demand,
// there is nothing to push.
func (r *Registry) Flush() error { return nil }
