// Package notify forwards dispatcher events to the rest of the site.
//
// Each type here implements routing.Listener and preset.Listener:
//   - Publisher: retained route and connectivity state on the MQTT bus,
//     plus non-retained route and preset events
//   - Telemetry: route, connectivity and preset recall points in InfluxDB
//
// Listener methods are called synchronously by the dispatcher, so
// Publisher queues messages and sends them from its own goroutine.
package notify
