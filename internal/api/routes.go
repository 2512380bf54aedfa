package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-av/internal/audit"
	"github.com/nerrad567/gray-logic-av/internal/room"
	"github.com/nerrad567/gray-logic-av/internal/routing"
	"github.com/nerrad567/gray-logic-av/internal/topology"
)

// routeRequest is the request body for POST /routes.
type routeRequest struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// routeAllRequest is the request body for POST /routes/all.
type routeAllRequest struct {
	Input string `json:"input"`
}

// lockRequest is the request body for PUT /destinations/{id}/lock.
type lockRequest struct {
	Locked *bool `json:"locked"`
}

// RouteView is the current state of one destination.
type RouteView struct {
	DestinationID string      `json:"destination_id"`
	Source        room.Source `json:"source"`
	Routed        bool        `json:"routed"`
	Locked        bool        `json:"locked"`
	Chain         []string    `json:"chain,omitempty"`
}

// DestinationView is a configured destination with its live state.
type DestinationView struct {
	room.Destination
	CurrentSource room.Source `json:"current_source"`
	Locked        bool        `json:"locked"`
}

// RouteResult is the outcome for one destination of POST /routes/all.
type RouteResult struct {
	DestinationID string `json:"destination_id"`
	Status        string `json:"status"`
	Error         string `json:"error,omitempty"`
}

// TopologyView is the graph the dispatcher routes over.
type TopologyView struct {
	Vertices    []topology.Vertex `json:"vertices"`
	Edges       []topology.Edge   `json:"edges"`
	VertexCount int               `json:"vertex_count"`
	EdgeCount   int               `json:"edge_count"`
}

// handleListSources returns every configured source.
func (s *Server) handleListSources(w http.ResponseWriter, _ *http.Request) {
	sources := s.dispatcher.Sources()
	writeJSON(w, http.StatusOK, map[string]any{
		"sources": sources,
		"count":   len(sources),
	})
}

// handleListDestinations returns every destination with its current source.
func (s *Server) handleListDestinations(w http.ResponseWriter, _ *http.Request) {
	dests := s.dispatcher.Destinations()
	views := make([]DestinationView, 0, len(dests))
	for _, d := range dests {
		views = append(views, DestinationView{
			Destination:   d,
			CurrentSource: s.dispatcher.CurrentRoute(d.ID),
			Locked:        s.dispatcher.Locked(d.ID),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"destinations": views,
		"count":        len(views),
	})
}

// handleListRouters returns the status of every matrix.
func (s *Server) handleListRouters(w http.ResponseWriter, _ *http.Request) {
	routers := s.dispatcher.Routers()
	writeJSON(w, http.StatusOK, map[string]any{
		"routers": routers,
		"count":   len(routers),
	})
}

// handleGetRouterStatus returns the status of one matrix.
func (s *Server) handleGetRouterStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	status, ok := s.dispatcher.Router(id)
	if !ok {
		writeNotFound(w, "router not found: "+id)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// handleListRoutes returns the current route of every destination.
func (s *Server) handleListRoutes(w http.ResponseWriter, _ *http.Request) {
	dests := s.dispatcher.Destinations()
	routes := make([]RouteView, 0, len(dests))
	for _, d := range dests {
		routes = append(routes, s.routeView(d.ID))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"routes": routes,
		"count":  len(routes),
	})
}

// handleGetRoute returns the current source and active chain of a destination.
func (s *Server) handleGetRoute(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "destination")
	if !s.hasDestination(id) {
		writeNotFound(w, "destination not found: "+id)
		return
	}
	writeJSON(w, http.StatusOK, s.routeView(id))
}

// handleMakeRoute routes a source to a destination.
func (s *Server) handleMakeRoute(w http.ResponseWriter, r *http.Request) {
	var req routeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Input == "" || req.Output == "" {
		writeBadRequest(w, "input and output are required")
		return
	}

	if err := s.dispatcher.MakeRoute(r.Context(), req.Input, req.Output); err != nil {
		s.logger.Warn("route request failed",
			"input", req.Input,
			"output", req.Output,
			"subject", subjectFrom(r.Context()),
			"error", err,
		)
		writeRoutingError(w, err)
		return
	}

	s.logger.Info("route request completed",
		"input", req.Input,
		"output", req.Output,
		"subject", subjectFrom(r.Context()),
	)
	writeJSON(w, http.StatusOK, s.routeView(req.Output))
}

// handleRouteToAll routes a source to every destination.
// Per-destination failures are reported in the body; the request itself
// only fails when the source is unknown.
func (s *Server) handleRouteToAll(w http.ResponseWriter, r *http.Request) {
	var req routeAllRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Input == "" {
		writeBadRequest(w, "input is required")
		return
	}
	if !s.hasSource(req.Input) {
		writeNotFound(w, "source not found: "+req.Input)
		return
	}

	outcomes := s.dispatcher.RouteToAll(r.Context(), req.Input)

	results := make([]RouteResult, 0, len(outcomes))
	failed := 0
	for _, o := range outcomes {
		res := RouteResult{DestinationID: o.DestinationID, Status: routing.StatusSuccess}
		if o.Err != nil {
			_, res.Status = routingErrorStatus(o.Err)
			res.Error = o.Err.Error()
			failed++
		}
		results = append(results, res)
	}

	s.logger.Info("route to all completed",
		"input", req.Input,
		"destinations", len(outcomes),
		"failed", failed,
	)
	writeJSON(w, http.StatusOK, map[string]any{
		"input":     req.Input,
		"results":   results,
		"succeeded": len(outcomes) - failed,
		"failed":    failed,
	})
}

// handleLockDestination locks or unlocks a destination on its router.
func (s *Server) handleLockDestination(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req lockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Locked == nil {
		writeBadRequest(w, "locked is required")
		return
	}

	if err := s.dispatcher.LockDestination(r.Context(), id, *req.Locked); err != nil {
		s.logger.Warn("lock request failed", "destination", id, "locked", *req.Locked, "error", err)
		writeRoutingError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, s.routeView(id))
}

// handleGetTopology returns every vertex and edge of the routing graph.
func (s *Server) handleGetTopology(w http.ResponseWriter, _ *http.Request) {
	top := s.dispatcher.Topology()
	writeJSON(w, http.StatusOK, TopologyView{
		Vertices:    top.Vertices(),
		Edges:       top.Graph.Edges(),
		VertexCount: top.Graph.VertexCount(),
		EdgeCount:   top.Graph.EdgeCount(),
	})
}

// handleListAuditLogs returns paginated route history with optional filters.
//
// Query parameters:
//   - action: route, feedback or connectivity
//   - entity_type: destination or router
//   - entity_id: a destination or router ID
//   - limit: max results (default 50, max 200)
//   - offset: pagination offset
func (s *Server) handleListAuditLogs(w http.ResponseWriter, r *http.Request) {
	if s.auditRepo == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "audit logging not configured")
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		Action:     q.Get("action"),
		EntityType: q.Get("entity_type"),
		EntityID:   q.Get("entity_id"),
	}

	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	result, err := s.auditRepo.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("failed to list audit logs", "error", err)
		writeInternalError(w, "failed to list audit logs")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) routeView(destID string) RouteView {
	src := s.dispatcher.CurrentRoute(destID)
	return RouteView{
		DestinationID: destID,
		Source:        src,
		Routed:        !routing.IsNoRoute(src),
		Locked:        s.dispatcher.Locked(destID),
		Chain:         s.dispatcher.ActiveChain(destID),
	}
}

func (s *Server) hasDestination(id string) bool {
	for _, d := range s.dispatcher.Destinations() {
		if d.ID == id {
			return true
		}
	}
	return false
}

func (s *Server) hasSource(id string) bool {
	for _, src := range s.dispatcher.Sources() {
		if src.ID == id {
			return true
		}
	}
	return false
}
