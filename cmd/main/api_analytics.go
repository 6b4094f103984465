package main

import (
	"log/slog"
	"net/http"

	"github.com/CTAG07/Trickchain/pkg/analytics"
	"github.com/CTAG07/Trickchain/pkg/workspace"
)

// AnalyticsAPI holds the dependencies for the corpus analytics handlers.
type AnalyticsAPI struct {
	ws     *workspace.Workspace
	cm     *ConfigManager
	logger *slog.Logger
}

// NewAnalyticsAPI creates a new instance of the AnalyticsAPI.
func NewAnalyticsAPI(ws *workspace.Workspace, cm *ConfigManager, logger *slog.Logger) *AnalyticsAPI {
	return &AnalyticsAPI{
		ws:     ws,
		cm:     cm,
		logger: logger,
	}
}

// RegisterRoutes sets up the routing for all /api/analytics endpoints.
func (a *AnalyticsAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/analytics/frequency", a.handleFrequency)
	mux.HandleFunc("/api/analytics/graph", a.handleGraph)
	mux.HandleFunc("/api/analytics/hubs", a.handleHubs)
	mux.HandleFunc("/api/analytics/explore", a.handleExplore)
}

// handleFrequency returns the token frequency table, ordered by count.
func (a *AnalyticsAPI) handleFrequency(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	order, err := analytics.ParseOrder(r.URL.Query().Get("order"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	top, err := queryInt(r, "top", a.cm.Get().Analytics.DefaultTopN)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	counts, err := a.ws.Frequency(order, top)
	if err != nil {
		respondWithWorkspaceError(w, a.logger, "count tokens", err)
		return
	}
	if counts == nil {
		counts = []analytics.TokenCount{}
	}
	respondWithJSON(w, http.StatusOK, counts)
}

// handleGraph returns the transition network as JSON, or as Graphviz DOT
// when format=dot is given.
func (a *AnalyticsAPI) handleGraph(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	minCount, err := queryInt(r, "minCount", a.cm.Get().Analytics.DefaultMinCount)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	g, err := a.ws.Graph(minCount)
	if err != nil {
		respondWithWorkspaceError(w, a.logger, "build transition graph", err)
		return
	}

	switch r.URL.Query().Get("format") {
	case "", "json":
		respondWithJSON(w, http.StatusOK, g)
	case "dot":
		summary, err := a.ws.Summary()
		if err != nil {
			respondWithWorkspaceError(w, a.logger, "render transition graph", err)
			return
		}
		data, err := g.MarshalDOT(summary.Name)
		if err != nil {
			respondWithWorkspaceError(w, a.logger, "render transition graph", err)
			return
		}
		w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
		_, _ = w.Write(data)
	default:
		respondWithError(w, http.StatusBadRequest, "format must be json or dot")
	}
}

// handleHubs ranks the tricks of the transition network.
func (a *AnalyticsAPI) handleHubs(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	cfg := a.cm.Get().Analytics
	minCount, err := queryInt(r, "minCount", cfg.DefaultMinCount)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	top, err := queryInt(r, "top", cfg.DefaultTopN)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	hubs, err := a.ws.Hubs(minCount, top, cfg.Damping)
	if err != nil {
		respondWithWorkspaceError(w, a.logger, "rank hubs", err)
		return
	}
	if hubs == nil {
		hubs = []analytics.Hub{}
	}
	respondWithJSON(w, http.StatusOK, hubs)
}

// handleExplore returns the neighbours of a trick and the orders using it.
func (a *AnalyticsAPI) handleExplore(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	token := r.URL.Query().Get("token")
	if token == "" {
		respondWithError(w, http.StatusBadRequest, "query parameter \"token\" is required")
		return
	}

	focus, err := a.ws.Explore(token)
	if err != nil {
		respondWithWorkspaceError(w, a.logger, "explore token", err)
		return
	}
	respondWithJSON(w, http.StatusOK, focus)
}
