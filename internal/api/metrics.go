package api

import (
	"net/http"
	"runtime"
	"time"

	"github.com/nerrad567/gray-logic-av/internal/routing"
)

// SystemMetrics represents the complete system metrics response.
type SystemMetrics struct {
	Timestamp     string         `json:"timestamp"`
	Version       string         `json:"version"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	Runtime       RuntimeMetrics `json:"runtime"`
	WebSocket     WSMetrics      `json:"websocket"`
	MQTT          MQTTMetrics    `json:"mqtt"`
	Routing       RoutingMetrics `json:"routing"`
	Presets       int            `json:"presets"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// WSMetrics contains WebSocket hub statistics.
type WSMetrics struct {
	ConnectedClients int `json:"connected_clients"`
}

// MQTTMetrics contains MQTT client statistics.
type MQTTMetrics struct {
	Enabled   bool `json:"enabled"`
	Connected bool `json:"connected"`
}

// RoutingMetrics summarises the dispatcher's inventory and live state.
type RoutingMetrics struct {
	Sources       int `json:"sources"`
	Destinations  int `json:"destinations"`
	Routed        int `json:"routed"`
	Locked        int `json:"locked"`
	Routers       int `json:"routers"`
	RoutersOnline int `json:"routers_online"`
	TopologyNodes int `json:"topology_nodes"`
	TopologyEdges int `json:"topology_edges"`
}

// handleMetrics returns system metrics as JSON.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	metrics := SystemMetrics{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / 1024 / 1024,
			MemoryTotalMB: float64(memStats.TotalAlloc) / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
		WebSocket: WSMetrics{
			ConnectedClients: s.hub.ClientCount(),
		},
		Routing: s.routingMetrics(),
	}

	if s.presets != nil {
		metrics.Presets = s.presets.Registry().Count()
	}

	if s.mqtt != nil {
		metrics.MQTT = MQTTMetrics{
			Enabled:   true,
			Connected: s.mqtt.IsConnected(),
		}
	}

	writeJSON(w, http.StatusOK, metrics)
}

func (s *Server) routingMetrics() RoutingMetrics {
	d := s.dispatcher
	dests := d.Destinations()
	routers := d.Routers()
	top := d.Topology()

	m := RoutingMetrics{
		Sources:       len(d.Sources()),
		Destinations:  len(dests),
		Routers:       len(routers),
		TopologyNodes: top.Graph.VertexCount(),
		TopologyEdges: top.Graph.EdgeCount(),
	}
	for _, dst := range dests {
		if !routing.IsNoRoute(d.CurrentRoute(dst.ID)) {
			m.Routed++
		}
		if d.Locked(dst.ID) {
			m.Locked++
		}
	}
	for _, r := range routers {
		if r.Online {
			m.RoutersOnline++
		}
	}
	return m
}
