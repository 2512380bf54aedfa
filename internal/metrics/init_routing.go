package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initRoutingMetrics() {
	r.RoutesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "graylogic_av_routes_total",
			Help: "Total number of route requests by outcome",
		},
		[]string{"status"}, // success, not_found, no_path, malformed, command_failed, locked
	)

	r.RouteDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "graylogic_av_route_duration_seconds",
			Help:    "Time from route request to last hardware command in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	r.FeedbackTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "graylogic_av_feedback_total",
			Help: "Total number of switcher feedback reports by result",
		},
		[]string{"result"}, // resolved, cleared, unmapped, unknown_device
	)
}

func (r *Registry) initHardwareMetrics() {
	r.HardwareCommandsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "graylogic_av_hardware_commands_total",
			Help: "Total number of crosspoint commands sent to switchers",
		},
		[]string{"router", "status"}, // success, error
	)

	r.RouterOnline = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "graylogic_av_router_online",
			Help: "Whether a matrix switcher is online (1=yes, 0=no)",
		},
		[]string{"router"},
	)
}

func (r *Registry) initPresetMetrics() {
	r.PresetRecallsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "graylogic_av_preset_recalls_total",
			Help: "Total number of preset recalls by outcome",
		},
		[]string{"status"}, // completed, partial, failed, cancelled
	)

	r.PresetRecallDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "graylogic_av_preset_recall_duration_seconds",
			Help:    "Time to run every step of a preset, delays included",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)
}
