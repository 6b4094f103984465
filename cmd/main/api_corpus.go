package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/CTAG07/Trickchain/pkg/corpus"
	"github.com/CTAG07/Trickchain/pkg/workspace"
)

// maxUploadBytes bounds the size of an uploaded corpus request.
const maxUploadBytes = 4 << 20

// CorpusAPI holds the dependencies for the corpus API handlers.
type CorpusAPI struct {
	ws     *workspace.Workspace
	logger *slog.Logger
}

// NewCorpusAPI creates a new instance of the CorpusAPI.
func NewCorpusAPI(ws *workspace.Workspace, logger *slog.Logger) *CorpusAPI {
	return &CorpusAPI{
		ws:     ws,
		logger: logger,
	}
}

// RegisterRoutes sets up the routing for all /api/corpora and /api/corpus endpoints.
func (c *CorpusAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/corpora", c.handleListAndUpload)
	mux.HandleFunc("/api/corpora/select", c.handleSelect)
	mux.HandleFunc("/api/corpora/", c.handleCorpusByName)
	mux.HandleFunc("/api/corpus", c.handleCurrent)
	mux.HandleFunc("/api/corpus/orders", c.handleOrders)
}

type UploadCorpusRequest struct {
	Name     string   `json:"name"`
	Language string   `json:"language"`
	Text     string   `json:"text"`
	Labels   []string `json:"labels"`
}

type SelectCorpusRequest struct {
	Name string `json:"name"`
}

// handleListAndUpload handles GET for listing and POST for uploading corpora.
func (c *CorpusAPI) handleListAndUpload(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		entries, err := c.ws.Corpora(r.Context())
		if err != nil {
			respondWithWorkspaceError(w, c.logger, "list corpora", err)
			return
		}
		if entries == nil {
			entries = []workspace.CorpusEntry{}
		}
		respondWithJSON(w, http.StatusOK, entries)

	case http.MethodPost:
		var req UploadCorpusRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUploadBytes)).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid JSON request body")
			return
		}
		if req.Name == "" || strings.Contains(req.Name, "/") {
			respondWithError(w, http.StatusBadRequest, "A corpus name without slashes is required")
			return
		}

		info, err := c.ws.Upload(r.Context(), req.Name, req.Language, req.Text, req.Labels)
		if err != nil {
			respondWithWorkspaceError(w, c.logger, "upload corpus", err)
			return
		}
		c.logger.Info("Corpus uploaded", "name", info.Name, "sequences", info.Sequences)
		respondWithJSON(w, http.StatusCreated, info)

	default:
		w.Header().Set("Allow", "GET, POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleSelect switches the workspace to another corpus.
func (c *CorpusAPI) handleSelect(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	var req SelectCorpusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON request body, a corpus name is required")
		return
	}

	summary, err := c.ws.Select(r.Context(), req.Name)
	if err != nil {
		respondWithWorkspaceError(w, c.logger, "select corpus", err)
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}

// handleCorpusByName deletes a stored corpus.
func (c *CorpusAPI) handleCorpusByName(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/api/corpora/")
	if name == "" || strings.Contains(name, "/") {
		respondWithError(w, http.StatusNotFound, "Corpus not specified")
		return
	}
	if !allowMethod(w, r, http.MethodDelete) {
		return
	}

	if err := c.ws.Remove(r.Context(), name); err != nil {
		respondWithWorkspaceError(w, c.logger, "remove corpus", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCurrent describes the selected corpus.
func (c *CorpusAPI) handleCurrent(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	summary, err := c.ws.Summary()
	if err != nil {
		respondWithWorkspaceError(w, c.logger, "describe corpus", err)
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}

// handleOrders lists the labelled training sequences of the selected corpus.
func (c *CorpusAPI) handleOrders(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	orders, err := c.ws.Orders()
	if err != nil {
		respondWithWorkspaceError(w, c.logger, "list orders", err)
		return
	}
	if orders == nil {
		orders = []corpus.Sequence{}
	}
	respondWithJSON(w, http.StatusOK, orders)
}
