package metrics

import "time"

// RecordRoute records the outcome and duration of a route request.
func (r *Registry) RecordRoute(status string, duration time.Duration) {
	r.RoutesTotal.WithLabelValues(status).Inc()
	r.RouteDuration.Observe(duration.Seconds())
}

// RecordHardwareCommand records one crosspoint command.
func (r *Registry) RecordHardwareCommand(router string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	r.HardwareCommandsTotal.WithLabelValues(router, status).Inc()
}

// RecordFeedback records how a feedback report was handled.
func (r *Registry) RecordFeedback(result string) {
	r.FeedbackTotal.WithLabelValues(result).Inc()
}

// SetRouterOnline sets the connectivity gauge for a switcher.
func (r *Registry) SetRouterOnline(router string, online bool) {
	if online {
		r.RouterOnline.WithLabelValues(router).Set(1)
	} else {
		r.RouterOnline.WithLabelValues(router).Set(0)
	}
}

// RecordPresetRecall records the outcome and duration of a preset recall.
func (r *Registry) RecordPresetRecall(status string, duration time.Duration) {
	r.PresetRecallsTotal.WithLabelValues(status).Inc()
	r.PresetRecallDuration.Observe(duration.Seconds())
}
