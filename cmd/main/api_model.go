package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/CTAG07/Trickchain/pkg/workspace"
)

// ModelAPI holds the dependencies for the Markov model API handlers.
type ModelAPI struct {
	ws     *workspace.Workspace
	logger *slog.Logger
}

// NewModelAPI creates a new instance of the ModelAPI.
func NewModelAPI(ws *workspace.Workspace, logger *slog.Logger) *ModelAPI {
	return &ModelAPI{
		ws:     ws,
		logger: logger,
	}
}

// RegisterRoutes sets up the routing for all /api/model endpoints.
func (m *ModelAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/model/vocabulary", m.handleVocabulary)
	mux.HandleFunc("/api/model/stats", m.handleStats)
	mux.HandleFunc("/api/model/export", m.handleExport)
	mux.HandleFunc("/api/model/prune", m.handlePrune)
}

type PruneRequest struct {
	MinFreq int `json:"minFreq"`
}

// VocabularyResponse lists the legal start anchors and every known trick.
type VocabularyResponse struct {
	Vocabulary []string `json:"vocabulary"`
	Tricks     []string `json:"tricks"`
}

// handleVocabulary lists the tokens usable as start and end anchors.
func (m *ModelAPI) handleVocabulary(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	vocabulary, tricks, err := m.ws.Vocabulary()
	if err != nil {
		respondWithWorkspaceError(w, m.logger, "get vocabulary", err)
		return
	}
	respondWithJSON(w, http.StatusOK, VocabularyResponse{Vocabulary: vocabulary, Tricks: tricks})
}

// handleStats returns the statistics of the current model.
func (m *ModelAPI) handleStats(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	stats, err := m.ws.Stats()
	if err != nil {
		respondWithWorkspaceError(w, m.logger, "get model stats", err)
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}

// handleExport streams the current model as a JSON attachment.
func (m *ModelAPI) handleExport(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	summary, err := m.ws.Summary()
	if err != nil {
		respondWithWorkspaceError(w, m.logger, "export model", err)
		return
	}

	// Encode first so a failure can still be reported as JSON.
	var buf bytes.Buffer
	if err = m.ws.ExportModel(&buf); err != nil {
		respondWithWorkspaceError(w, m.logger, "export model", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.json\"", summary.Name))
	_, _ = buf.WriteTo(w)
}

// handlePrune drops rare transitions from the current model.
func (m *ModelAPI) handlePrune(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	var req PruneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MinFreq < 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON request body, minFreq must not be negative")
		return
	}
	stats, err := m.ws.Prune(r.Context(), req.MinFreq)
	if err != nil {
		respondWithWorkspaceError(w, m.logger, "prune model", err)
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}
