package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names written by the routing core.
const (
	measurementRoute        = "av_route"
	measurementRouterStatus = "av_router_status"
	measurementPresetRecall = "av_preset_recall"
)

// WriteRouteEvent records that a destination now shows a source.
//
// Destination and origin are tags; the source ID is a field so a chart
// of one destination shows its source over time.
//
// Parameters:
//   - destinationID: Destination whose source changed (e.g., "DISP1")
//   - sourceID: Source now shown, or "NONE" when cleared
//   - origin: "command" or "feedback"
//   - timestamp: When the change was observed
func (c *Client) WriteRouteEvent(destinationID, sourceID, origin string, timestamp time.Time) {
	c.writePoint(write.NewPoint(
		measurementRoute,
		map[string]string{
			"destination_id": destinationID,
			"origin":         origin,
		},
		map[string]interface{}{
			"source_id": sourceID,
		},
		timestamp,
	))
}

// WriteRouterStatus records a matrix switcher connectivity change.
func (c *Client) WriteRouterStatus(routerID string, online bool, timestamp time.Time) {
	value := 0
	if online {
		value = 1
	}
	c.writePoint(write.NewPoint(
		measurementRouterStatus,
		map[string]string{
			"router_id": routerID,
		},
		map[string]interface{}{
			"online": value,
		},
		timestamp,
	))
}

// WritePresetRecall records the outcome of one preset recall.
func (c *Client) WritePresetRecall(presetID, status string, completed, failed int, duration time.Duration, timestamp time.Time) {
	c.writePoint(write.NewPoint(
		measurementPresetRecall,
		map[string]string{
			"preset_id": presetID,
			"status":    status,
		},
		map[string]interface{}{
			"completed":   completed,
			"failed":      failed,
			"duration_ms": duration.Milliseconds(),
		},
		timestamp,
	))
}

// WritePoint writes a custom point with full control over tags and fields.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	c.writePoint(write.NewPoint(measurement, tags, fields, time.Now()))
}

func (c *Client) writePoint(point *write.Point) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(point)
}
