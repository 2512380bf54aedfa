package notify

import (
	"time"

	"github.com/nerrad567/gray-logic-av/internal/preset"
	"github.com/nerrad567/gray-logic-av/internal/routing"
)

// TelemetryWriter is the subset of *influxdb.Client used for telemetry.
// Writes must not block.
type TelemetryWriter interface {
	WriteRouteEvent(destinationID, sourceID, origin string, timestamp time.Time)
	WriteRouterStatus(routerID string, online bool, timestamp time.Time)
	WritePresetRecall(presetID, status string, completed, failed int, duration time.Duration, timestamp time.Time)
}

// Telemetry records dispatcher and preset events as time-series points.
type Telemetry struct {
	w TelemetryWriter
}

// NewTelemetry creates a telemetry listener writing through w.
func NewTelemetry(w TelemetryWriter) *Telemetry {
	return &Telemetry{w: w}
}

// RouteChanged writes a route point.
func (t *Telemetry) RouteChanged(ev routing.RouteEvent) {
	t.w.WriteRouteEvent(ev.DestinationID, ev.Source.ID, string(ev.Origin), ev.Timestamp)
}

// RouterConnectivityChanged writes a router status point.
func (t *Telemetry) RouterConnectivityChanged(ev routing.ConnectivityEvent) {
	t.w.WriteRouterStatus(ev.RouterID, ev.Online, ev.Timestamp)
}

// PresetRecalled writes a preset recall point.
func (t *Telemetry) PresetRecalled(exec preset.Execution) {
	t.w.WritePresetRecall(exec.PresetID, string(exec.Status), exec.StepsCompleted, exec.StepsFailed,
		time.Duration(exec.DurationMS)*time.Millisecond, exec.CompletedAt)
}
