// Package mqtt connects the routing core to the site MQTT broker.
//
// Matrices without a native driver are reached through bridges on the bus,
// and route state is published for panels and other building systems:
//
//	core ──► graylogic/command/matrix/{address}        crosspoint commands
//	core ◄── graylogic/state/matrix/{address}          crosspoint feedback
//	core ◄── graylogic/health/matrix/{address}         bridge liveness
//	core ──► graylogic/core/route/{destination}/state  retained route state
//	core ──► graylogic/core/event/{name}               route and preset events
//
// The client reconnects on its own and restores subscriptions afterwards.
// A retained last-will on graylogic/system/status/{client_id} marks the
// core offline.
// Use TLS and broker credentials outside a development bench.
package mqtt
