package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all metrics for the routing core.
type Registry struct {
	// Routing
	RoutesTotal   *prometheus.CounterVec
	RouteDuration prometheus.Histogram

	// Hardware
	HardwareCommandsTotal *prometheus.CounterVec
	RouterOnline          *prometheus.GaugeVec

	// Feedback
	FeedbackTotal *prometheus.CounterVec

	// Presets
	PresetRecallsTotal   *prometheus.CounterVec
	PresetRecallDuration prometheus.Histogram

	registry *prometheus.Registry
}

// NewRegistry creates a registry with every metric initialised, plus the
// Go runtime and process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{registry: reg}
	r.initRoutingMetrics()
	r.initHardwareMetrics()
	r.initPresetMetrics()

	return r
}

// PrometheusRegistry returns the underlying Prometheus registry.
func (r *Registry) PrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry for Prometheus scrapes.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
