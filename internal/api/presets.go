package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-av/internal/preset"
)

// triggerAPI marks recalls made through the REST API.
const triggerAPI = "api"

// enabledRequest is the request body for PUT /presets/{id}/enabled.
type enabledRequest struct {
	Enabled *bool `json:"enabled"`
}

// presetsAvailable writes 503 and returns false when no engine is configured.
func (s *Server) presetsAvailable(w http.ResponseWriter) bool {
	if s.presets == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "presets not configured")
		return false
	}
	return true
}

// handleListPresets returns every preset in room-file order.
func (s *Server) handleListPresets(w http.ResponseWriter, _ *http.Request) {
	if !s.presetsAvailable(w) {
		return
	}
	presets := s.presets.Registry().List()
	writeJSON(w, http.StatusOK, map[string]any{
		"presets": presets,
		"count":   len(presets),
	})
}

// handleGetPreset returns one preset.
func (s *Server) handleGetPreset(w http.ResponseWriter, r *http.Request) {
	if !s.presetsAvailable(w) {
		return
	}
	p, err := s.presets.Registry().Get(chi.URLParam(r, "id"))
	if err != nil {
		writeNotFound(w, "preset not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleRecallPreset runs a preset and returns the execution record.
// Step failures are reported in the record with a 200 status; only an
// unknown or disabled preset is an HTTP error.
func (s *Server) handleRecallPreset(w http.ResponseWriter, r *http.Request) {
	if !s.presetsAvailable(w) {
		return
	}
	id := chi.URLParam(r, "id")

	exec, err := s.presets.Recall(r.Context(), id, triggerAPI)
	switch {
	case errors.Is(err, preset.ErrPresetNotFound):
		writeNotFound(w, "preset not found")
		return
	case errors.Is(err, preset.ErrPresetDisabled):
		writeError(w, http.StatusConflict, ErrCodeConflict, "preset is disabled")
		return
	case err != nil:
		writeInternalError(w, "preset recall failed")
		return
	}

	s.logger.Info("preset recalled",
		"preset_id", id,
		"status", exec.Status,
		"subject", subjectFrom(r.Context()),
		"request_id", r.Context().Value(ctxKeyRequestID),
	)
	writeJSON(w, http.StatusOK, exec)
}

// handleSetPresetEnabled enables or disables a preset until restart.
func (s *Server) handleSetPresetEnabled(w http.ResponseWriter, r *http.Request) {
	if !s.presetsAvailable(w) {
		return
	}
	id := chi.URLParam(r, "id")

	var req enabledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Enabled == nil {
		writeBadRequest(w, "enabled is required")
		return
	}

	if err := s.presets.Registry().SetEnabled(id, *req.Enabled); err != nil {
		writeNotFound(w, "preset not found")
		return
	}

	p, _ := s.presets.Registry().Get(id) //nolint:errcheck // exists: SetEnabled succeeded
	writeJSON(w, http.StatusOK, p)
}
