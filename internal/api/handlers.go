package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/everai-labs/simulation-engine/internal/clients"
	"github.com/everai-labs/simulation-engine/internal/models"
	"github.com/everai-labs/simulation-engine/internal/simulation"
)

// Response helpers

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error: &apiError{
			Code:    code,
			Message: message,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// respondServiceError translates orchestrator failures to wire status codes.
// This is the only place error kinds become HTTP statuses.
func respondServiceError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, simulation.ErrSimulationNotFound):
		respondError(w, http.StatusNotFound, "not_found", "simulation not found")
	case errors.Is(err, simulation.ErrAgentNotConfigured):
		respondError(w, http.StatusBadRequest, "agent_not_configured", "simulation does not have an agent configured")
	case errors.Is(err, clients.ErrUpstream):
		slog.Error("upstream provider failure", "error", err, "operation", operation)
		respondError(w, http.StatusBadGateway, "upstream_error", err.Error())
	default:
		slog.Error("operation failed", "error", err, "operation", operation)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to "+operation)
	}
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "not_ready", "service not ready")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

// Simulation handlers

func (s *Server) handleCreateSimulation(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSimulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "name is required")
		return
	}

	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "user_id is required")
		return
	}

	if len(req.Script) == 0 {
		respondError(w, http.StatusBadRequest, "validation_error", "script must not be empty")
		return
	}

	for i, line := range req.Script {
		if line.Role == "" || line.ScriptSentence == "" {
			respondError(w, http.StatusBadRequest, "validation_error",
				"script line "+strconv.Itoa(i)+" must carry role and script_sentence")
			return
		}
	}

	resp, err := s.service.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err, "create simulation")
		return
	}

	respondJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleUpdateSimulation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "simulation id is required")
		return
	}

	var req models.UpdateSimulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "user_id is required")
		return
	}

	if req.Status != nil && !models.SimulationStatus(*req.Status).IsValid() {
		respondError(w, http.StatusBadRequest, "validation_error", "invalid status: "+*req.Status)
		return
	}

	resp, err := s.service.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err, "update simulation")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetSimulation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "simulation id is required")
		return
	}

	sim, err := s.service.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "get simulation")
		return
	}

	respondJSON(w, http.StatusOK, sim)
}

func (s *Server) handleListSimulations(w http.ResponseWriter, r *http.Request) {
	filters := models.ListFilters{
		DivisionID: r.URL.Query().Get("division_id"),
		Status:     models.SimulationStatus(r.URL.Query().Get("status")),
		Limit:      50, // default
		Offset:     0,
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			filters.Limit = limit
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			filters.Offset = offset
		}
	}

	sims, err := s.service.List(r.Context(), filters)
	if err != nil {
		respondServiceError(w, err, "list simulations")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"simulations": sims,
		"total":       len(sims),
	})
}

func (s *Server) handlePreviewSimulation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "simulation id is required")
		return
	}

	var req models.PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "user_id is required")
		return
	}

	resp, err := s.service.Preview(r.Context(), id, req.UserID)
	if err != nil {
		respondServiceError(w, err, "start preview")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListPreviews(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "simulation id is required")
		return
	}

	if s.previews == nil {
		respondError(w, http.StatusNotFound, "not_available", "preview trail is not configured")
		return
	}

	limit := int64(20)
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.ParseInt(limitStr, 10, 64); err == nil && l > 0 {
			limit = l
		}
	}

	entries, err := s.previews.Recent(r.Context(), id, limit)
	if err != nil {
		slog.Error("failed to read preview trail", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to read preview trail")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"previews": entries,
		"total":    len(entries),
	})
}

// Voice catalog handlers

func (s *Server) handleListVoices(w http.ResponseWriter, r *http.Request) {
	voices := s.catalog.List()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"voices": voices,
		"total":  len(voices),
	})
}

func (s *Server) handleGetVoice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "voice id is required")
		return
	}

	voice := s.catalog.Get(id)
	if voice == nil {
		respondError(w, http.StatusNotFound, "not_found", "voice not found")
		return
	}

	respondJSON(w, http.StatusOK, voice)
}
